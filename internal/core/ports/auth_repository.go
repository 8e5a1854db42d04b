package ports

import (
	"context"

	"github.com/wordlab/study-api/internal/core/domain"
)

// AuthRepository defines the interface for user persistence.
type AuthRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByLogin looks a user up by username or email.
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	// Exists reports whether any user already holds username or email.
	Exists(ctx context.Context, username, email string) (bool, error)
}
