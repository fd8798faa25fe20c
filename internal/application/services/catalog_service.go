package services

import (
	"context"

	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/repositories"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

// CatalogService exposes the provider and service catalogs. Providers carry
// the weekly schedules slot generation reads; services are informational
// labels on bookings.
type CatalogService struct {
	providers repositories.ProviderRepository
	services  repositories.ServiceRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(providers repositories.ProviderRepository, services repositories.ServiceRepository) *CatalogService {
	return &CatalogService{
		providers: providers,
		services:  services,
	}
}

// ListProviders returns all providers ordered by name.
func (s *CatalogService) ListProviders(ctx context.Context) ([]*entities.Provider, error) {
	return s.providers.List(ctx)
}

// ListServices returns all services ordered by name.
func (s *CatalogService) ListServices(ctx context.Context) ([]*entities.Service, error) {
	return s.services.List(ctx)
}

// CreateProvider validates and persists a provider; used by seeding.
func (s *CatalogService) CreateProvider(ctx context.Context, provider *entities.Provider) error {
	if provider.Name == "" {
		return apperrors.NewValidationError("provider name is required")
	}
	return s.providers.Create(ctx, provider)
}

// CreateService validates and persists a service; used by seeding.
func (s *CatalogService) CreateService(ctx context.Context, service *entities.Service) error {
	if service.Name == "" {
		return apperrors.NewValidationError("service name is required")
	}
	if service.DurationMinutes <= 0 {
		return apperrors.NewValidationError("service duration must be positive")
	}
	return s.services.Create(ctx, service)
}
