package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Create(ctx context.Context, nu NewUser) (User, error) {
	hash, err := hashPassword(nu.Password, 0)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:    nu.ID,
		Email: normalizeEmail(nu.Email),
		Name:  nu.Name,
		Hash:  hash,
		Role:  nu.Role,
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			INSERT INTO users (id, email, name, pass_hash, role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at
		`, u.ID, u.Email, u.Name, u.Hash, u.Role).Scan(&u.CreatedAt)
	})
	if isUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

const userColumns = `id, email, name, pass_hash, role, created_at`

func (s *PostgresStore) getBy(ctx context.Context, column, value string) (User, bool, error) {
	var u User
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT `+userColumns+`
			FROM users
			WHERE `+column+` = $1
		`, value).Scan(&u.ID, &u.Email, &u.Name, &u.Hash, &u.Role, &u.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *PostgresStore) Verify(ctx context.Context, email, password string) (User, error) {
	u, ok, err := s.getBy(ctx, "email", normalizeEmail(email))
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := checkPassword(u, password); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, bool, error) {
	return s.getBy(ctx, "id", id)
}

func (s *PostgresStore) SetPassword(ctx context.Context, id, password string) error {
	hash, err := hashPassword(password, 0)
	if err != nil {
		return err
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `UPDATE users SET pass_hash = $2 WHERE id = $1`, id, hash)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
