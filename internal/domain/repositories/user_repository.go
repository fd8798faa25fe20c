package repositories

import (
	"context"

	"github.com/oseikb/bookline/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create persists a new user and fills in the generated ID
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByEmail retrieves a user by email (emails are stored lowercased)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByToken retrieves a user by API token; used by the auth
	// middleware for bearer-token lookup
	GetByToken(ctx context.Context, token string) (*entities.User, error)

	// UpdateToken stores a freshly issued API token on the user row
	UpdateToken(ctx context.Context, id int64, token string) error
}
