package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/crmsync/internal/database"
	"github.com/stwalsh4118/crmsync/internal/models"
)

// MegaProjectRepository defines the write operations for mega-projects.
type MegaProjectRepository interface {
	Upsert(ctx context.Context, mp models.MegaProject) (*models.MegaProject, error)
}

type megaProjectRepository struct {
	db *database.Database
}

// NewMegaProjectRepository creates a new instance of MegaProjectRepository.
func NewMegaProjectRepository(db *database.Database) MegaProjectRepository {
	return &megaProjectRepository{db: db}
}

// Upsert inserts the mega-project or overwrites every column of the stored
// row with the same id.
func (r *megaProjectRepository) Upsert(ctx context.Context, mp models.MegaProject) (*models.MegaProject, error) {
	query := `
		INSERT INTO public."Mega_Projects" (
			id, "name", address, slogan, description, "attributes",
			gallery, latitude, longitude, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			"name" = EXCLUDED."name",
			address = EXCLUDED.address,
			slogan = EXCLUDED.slogan,
			description = EXCLUDED.description,
			"attributes" = EXCLUDED."attributes",
			gallery = EXCLUDED.gallery,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			is_public = EXCLUDED.is_public
		RETURNING id, "name", address, slogan, description, "attributes",
			gallery, latitude, longitude, is_public
	`

	rows, err := r.db.Pool.Query(ctx, query,
		mp.ID, mp.Name, mp.Address, mp.Slogan, mp.Description, mp.AttributeIDs,
		mp.Gallery, mp.Latitude, mp.Longitude, mp.IsPublic,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert mega-project %s: %w", mp.ID, err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.MegaProject])
	if err != nil {
		return nil, fmt.Errorf("failed to read upserted mega-project %s: %w", mp.ID, err)
	}
	return &stored, nil
}
