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

// ProviderAdapter implements the ProviderRepository interface
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id int64) (*entities.Provider, error) {
	query, args, err := a.db.Select("id", "name", "working_hours").
		From("providers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	provider := &entities.Provider{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&provider.ID,
		&provider.Name,
		&provider.WorkingHours,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}

	return provider, nil
}

// List returns all providers ordered by name
func (a *ProviderAdapter) List(ctx context.Context) ([]*entities.Provider, error) {
	query, args, err := a.db.Select("id", "name", "working_hours").
		From("providers").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list providers", err)
	}
	defer rows.Close()

	var providers []*entities.Provider
	for rows.Next() {
		provider := &entities.Provider{}
		if err := rows.Scan(&provider.ID, &provider.Name, &provider.WorkingHours); err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate providers", err)
	}

	return providers, nil
}

// Create persists a new provider and fills in the generated ID
func (a *ProviderAdapter) Create(ctx context.Context, provider *entities.Provider) error {
	query, args, err := a.db.Insert("providers").
		Rows(goqu.Record{
			"name":          provider.Name,
			"working_hours": provider.WorkingHours,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&provider.ID); err != nil {
		return apperrors.NewInternalError("failed to create provider", err)
	}

	return nil
}
