package orders

import (
	"context"
	"errors"
	"strings"
)

type Order struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

var (
	ErrNotFound     = errors.New("order not found")
	ErrInvalidInput = errors.New("invalid order data")
	ErrPersistence  = errors.New("order persistence failed")
)

// Store is implemented by FileStore (default) and PostgresStore.
type Store interface {
	List(ctx context.Context, query string) ([]Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	Create(ctx context.Context, name string) (Order, error)
	Update(ctx context.Context, id int64, name string) (Order, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidInput
	}
	return name, nil
}

// matchesQuery reports whether name contains q, ignoring case. q must already be trimmed.
func matchesQuery(name, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(q))
}
