package orders

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"MiniOrders/pkg/kit"
)

const maxBodyBytes = 1 << 20

const (
	msgNotFound    = "Could not locate Order"
	msgInvalidData = "Invalid data"
	msgServerError = "server error"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

type orderReq struct {
	Name string `json:"name"`
}

func (s *Server) register(r chi.Router) {
	r.Get("/orders", s.list)
	r.Post("/orders", s.create)
	r.Get("/orders/{id:[0-9]+}", s.get)
	r.Put("/orders/{id:[0-9]+}", s.update)
	r.Delete("/orders/{id:[0-9]+}", s.delete)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	out, err := s.Store.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeStoreError(w, r, err, "list orders", 0)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, msgNotFound, nil)
		return
	}

	o, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "get order", id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req orderReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, msgInvalidData, nil)
		return
	}

	o, err := s.Store.Create(r.Context(), req.Name)
	if err != nil {
		s.writeStoreError(w, r, err, "create order", 0)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, o)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, msgNotFound, nil)
		return
	}

	var req orderReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		// a missing order wins over a bad body
		if _, err := s.Store.Get(r.Context(), id); err != nil {
			s.writeStoreError(w, r, err, "update order", id)
			return
		}
		kit.WriteError(w, r, http.StatusBadRequest, msgInvalidData, nil)
		return
	}

	o, err := s.Store.Update(r.Context(), id, req.Name)
	if err != nil {
		s.writeStoreError(w, r, err, "update order", id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, msgNotFound, nil)
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "delete order", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID fails for ids that overflow int64 or are not positive.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string, id int64) {
	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, msgNotFound, map[string]any{"id": id})
	case errors.Is(err, ErrInvalidInput):
		kit.WriteError(w, r, http.StatusBadRequest, msgInvalidData, nil)
	case isTimeoutErr(err):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		if s.Log != nil {
			s.Log.Error(op+" failed",
				zap.Error(err),
				zap.Int64("order_id", id),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		}
		kit.WriteError(w, r, http.StatusInternalServerError, msgServerError, nil)
	}
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
