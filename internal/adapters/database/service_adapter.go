package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/domain/repositories"
	"github.com/oseikb/bookline/internal/infrastructure/clients/postgres"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

// ServiceAdapter implements the ServiceRepository interface
type ServiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a service by ID
func (a *ServiceAdapter) GetByID(ctx context.Context, id int64) (*entities.Service, error) {
	query, args, err := a.db.Select("id", "name", "duration_minutes").
		From("services").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	service := &entities.Service{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.DurationMinutes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get service", err)
	}

	return service, nil
}

// List returns all services ordered by name
func (a *ServiceAdapter) List(ctx context.Context) ([]*entities.Service, error) {
	query, args, err := a.db.Select("id", "name", "duration_minutes").
		From("services").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list services", err)
	}
	defer rows.Close()

	var services []*entities.Service
	for rows.Next() {
		service := &entities.Service{}
		if err := rows.Scan(&service.ID, &service.Name, &service.DurationMinutes); err != nil {
			return nil, apperrors.NewInternalError("failed to scan service", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate services", err)
	}

	return services, nil
}

// Create persists a new service and fills in the generated ID
func (a *ServiceAdapter) Create(ctx context.Context, service *entities.Service) error {
	query, args, err := a.db.Insert("services").
		Rows(goqu.Record{
			"name":             service.Name,
			"duration_minutes": service.DurationMinutes,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&service.ID); err != nil {
		return apperrors.NewInternalError("failed to create service", err)
	}

	return nil
}
