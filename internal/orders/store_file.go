package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	dataDirPerm  = 0o755
	dataFilePerm = 0o644
)

// snapshot is the on-disk layout. JSON object keys are the decimal order ids.
type snapshot struct {
	NextID int64           `json:"next_id"`
	Orders map[int64]Order `json:"orders"`
}

// FileStore keeps every order in memory and rewrites the whole backing file
// after each successful mutation. A single RWMutex covers mutate+save, so the
// file always matches memory once a call returns.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	m      map[int64]Order
	nextID int64

	log     *zap.Logger
	metrics *StoreMetrics
}

type FileStoreOption func(*FileStore)

func WithLogger(log *zap.Logger) FileStoreOption {
	return func(s *FileStore) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *StoreMetrics) FileStoreOption {
	return func(s *FileStore) { s.metrics = m }
}

// NewFileStore creates the data directory if needed and loads the snapshot at path.
// A missing, empty or undecodable file yields an empty store.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		m:      map[int64]Order{},
		nextID: 1,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), dataDirPerm); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %w", ErrPersistence, err)
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	s.metrics.setStored(len(s.m))
	s.log.Info("order store loaded",
		zap.String("path", s.path),
		zap.Int("orders", len(s.m)),
		zap.Int64("next_id", s.nextID),
	)
	return s, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrPersistence, s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.log.Warn("order snapshot is not decodable, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return nil
	}

	var maxID int64
	for id, o := range snap.Orders {
		if id <= 0 {
			s.log.Warn("skipping order with non-positive id", zap.Int64("id", id))
			continue
		}
		o.ID = id
		s.m[id] = o
		if id > maxID {
			maxID = id
		}
	}

	s.nextID = max(snap.NextID, maxID+1, 1)
	return nil
}

// save must be called with the write lock held.
func (s *FileStore) save() error {
	raw, err := json.MarshalIndent(snapshot{NextID: s.nextID, Orders: s.m}, "", "  ")
	if err != nil {
		s.metrics.snapshotWritten(false)
		return fmt.Errorf("%w: encode snapshot: %w", ErrPersistence, err)
	}
	if err := os.WriteFile(s.path, raw, dataFilePerm); err != nil {
		s.metrics.snapshotWritten(false)
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, s.path, err)
	}

	s.metrics.snapshotWritten(true)
	s.metrics.setStored(len(s.m))
	return nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, query string) ([]Order, error) {
	q := strings.TrimSpace(query)

	s.mu.RLock()
	out := make([]Order, 0, len(s.m))
	for _, o := range s.m {
		if matchesQuery(o.Name, q) {
			out = append(out, o)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, id int64) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.m[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *FileStore) Create(ctx context.Context, name string) (Order, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Order{}, err
	}
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := Order{ID: s.nextID, Name: name}
	s.m[o.ID] = o
	s.nextID++

	if err := s.save(); err != nil {
		delete(s.m, o.ID)
		s.nextID--
		return Order{}, err
	}
	return o, nil
}

func (s *FileStore) Update(ctx context.Context, id int64, name string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.m[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	name, err := normalizeName(name)
	if err != nil {
		return Order{}, err
	}

	o := Order{ID: id, Name: name}
	s.m[id] = o

	if err := s.save(); err != nil {
		s.m[id] = prev
		return Order{}, err
	}
	return o, nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.m[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.m, id)

	if err := s.save(); err != nil {
		s.m[id] = prev
		return err
	}
	return nil
}
