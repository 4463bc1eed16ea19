package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// Schema is applied by EnsureSchema. BIGSERIAL never hands out an id twice,
// matching the file store's counter.
const Schema = `
	CREATE TABLE IF NOT EXISTS orders (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)
`

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore expects db to be opened with the "pgx" driver.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, Schema); err != nil {
			return fmt.Errorf("%w: create schema: %w", ErrPersistence, err)
		}
		return nil
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context, query string) ([]Order, error) {
	q := strings.TrimSpace(query)
	out := make([]Order, 0, 16)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name
			FROM orders
			WHERE $1 = '' OR strpos(lower(name), lower($1)) > 0
			ORDER BY id ASC
		`, q)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var o Order
			if err := rows.Scan(&o.ID, &o.Name); err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrPersistence, err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, name
			FROM orders
			WHERE id = $1
		`, id).Scan(&o.ID, &o.Name)
	})
	if err := rowErr(err, "get"); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *PostgresStore) Create(ctx context.Context, name string) (Order, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Order{}, err
	}

	o := Order{Name: name}
	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			INSERT INTO orders (name)
			VALUES ($1)
			RETURNING id
		`, name).Scan(&o.ID)
	})
	if err != nil {
		return Order{}, fmt.Errorf("%w: create: %w", ErrPersistence, err)
	}
	return o, nil
}

// Update reports ErrNotFound before validating name, same as FileStore.
func (s *PostgresStore) Update(ctx context.Context, id int64, name string) (Order, error) {
	name, nameErr := normalizeName(name)
	if nameErr != nil {
		if _, err := s.Get(ctx, id); err != nil {
			return Order{}, err
		}
		return Order{}, nameErr
	}

	o := Order{ID: id}
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			UPDATE orders
			SET name = $2
			WHERE id = $1
			RETURNING name
		`, id, name).Scan(&o.Name)
	})
	if err := rowErr(err, "update"); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	var n int64
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: delete: %w", ErrPersistence, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func rowErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
