package ports

import (
	"context"

	"github.com/wordlab/study-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login accepts a username or an email as login.
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
}

// TokenVerifier resolves a bearer token to the caller's identity.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}
