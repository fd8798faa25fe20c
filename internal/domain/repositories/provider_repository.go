package repositories

import (
	"context"

	"github.com/oseikb/bookline/internal/domain/entities"
)

// ProviderRepository defines the interface for provider lookups
type ProviderRepository interface {
	// GetByID retrieves a provider by ID
	GetByID(ctx context.Context, id int64) (*entities.Provider, error)

	// List returns all providers ordered by name
	List(ctx context.Context) ([]*entities.Provider, error)

	// Create persists a new provider and fills in the generated ID
	Create(ctx context.Context, provider *entities.Provider) error
}

// ServiceRepository defines the interface for service lookups
type ServiceRepository interface {
	// GetByID retrieves a service by ID
	GetByID(ctx context.Context, id int64) (*entities.Service, error)

	// List returns all services ordered by name
	List(ctx context.Context) ([]*entities.Service, error)

	// Create persists a new service and fills in the generated ID
	Create(ctx context.Context, service *entities.Service) error
}
