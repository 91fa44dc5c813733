package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/crmsync/internal/database"
	"github.com/stwalsh4118/crmsync/internal/models"
)

// CityRepository defines the write operations for cities.
type CityRepository interface {
	// Upsert inserts the city or replaces the stored row with the same id,
	// returning the row as stored.
	Upsert(ctx context.Context, city models.City) (*models.City, error)
}

type cityRepository struct {
	db *database.Database
}

// NewCityRepository creates a new instance of CityRepository.
func NewCityRepository(db *database.Database) CityRepository {
	return &cityRepository{db: db}
}

func (r *cityRepository) Upsert(ctx context.Context, city models.City) (*models.City, error) {
	query := `
		INSERT INTO public."Cities" (id, "name", is_public)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			"name" = EXCLUDED."name",
			is_public = EXCLUDED.is_public
		RETURNING id, "name", is_public
	`

	rows, err := r.db.Pool.Query(ctx, query, city.ID, city.Name, city.IsPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert city %s: %w", city.ID, err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.City])
	if err != nil {
		return nil, fmt.Errorf("failed to read upserted city %s: %w", city.ID, err)
	}
	return &stored, nil
}
