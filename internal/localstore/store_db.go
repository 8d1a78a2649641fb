package localstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Session(id string) Storage {
	return sessionStorage{id: id, store: s}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Expire(ctx context.Context, cutoff time.Time, keep []string) (int, error) {
	if keep == nil {
		keep = []string{}
	}
	var n int64
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM client_storage
			WHERE session_id IN (
				SELECT session_id FROM client_storage
				GROUP BY session_id
				HAVING max(updated_at) < $1
			)
			AND session_id <> ALL($2::text[])
		`, cutoff, keep)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "expire client storage")
	}
	return int(n), nil
}

func (s *PostgresStore) get(ctx context.Context, session, key string) ([]byte, bool, error) {
	var v []byte
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT value
			FROM client_storage
			WHERE session_id = $1 AND key = $2
		`, session, key).Scan(&v)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %s", key)
	}
	return v, true, nil
}

func (s *PostgresStore) set(ctx context.Context, session, key string, value []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO client_storage (session_id, key, value, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (session_id, key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = now()
		`, session, key, value)
		if err != nil {
			return errors.Wrapf(err, "set %s", key)
		}
		return nil
	})
}

func (s *PostgresStore) remove(ctx context.Context, session, key string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			DELETE FROM client_storage
			WHERE session_id = $1 AND key = $2
		`, session, key)
		if err != nil {
			return errors.Wrapf(err, "remove %s", key)
		}
		return nil
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
