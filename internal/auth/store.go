package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID        string
	Email     string
	Name      string
	Hash      []byte
	Role      string
	CreatedAt time.Time
}

type NewUser struct {
	ID       string
	Email    string
	Name     string
	Password string
	Role     string
}

type UserStore interface {
	Create(ctx context.Context, nu NewUser) (User, error)
	Verify(ctx context.Context, email, password string) (User, error)
	GetByID(ctx context.Context, id string) (User, bool, error)
	SetPassword(ctx context.Context, id, password string) error
	Ping(ctx context.Context) error
}

func normalizeEmail(s string) string    { return strings.ToLower(strings.TrimSpace(s)) }
func normalizePassword(s string) string { return strings.TrimSpace(s) }

func hashPassword(password string, cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(normalizePassword(password)), cost)
}

func checkPassword(u User, password string) error {
	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(normalizePassword(password))); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
