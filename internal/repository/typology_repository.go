package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/crmsync/internal/database"
	"github.com/stwalsh4118/crmsync/internal/models"
)

// TypologyRepository defines the write operations for typologies.
type TypologyRepository interface {
	Upsert(ctx context.Context, t models.Typology) (*models.Typology, error)

	// Truncate removes every typology. The project sync calls it once
	// before rebuilding the table from the CRM.
	Truncate(ctx context.Context) error
}

type typologyRepository struct {
	db *database.Database
}

// NewTypologyRepository creates a new instance of TypologyRepository.
func NewTypologyRepository(db *database.Database) TypologyRepository {
	return &typologyRepository{db: db}
}

func (r *typologyRepository) Upsert(ctx context.Context, t models.Typology) (*models.Typology, error) {
	query := `
		INSERT INTO public."Typologies" (
			id, project_id, "name", description, price_from, price_up, rooms, bathrooms,
			built_area, private_area, plans, gallery,
			min_separation, min_deposit, delivery_time, available_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			project_id = EXCLUDED.project_id,
			"name" = EXCLUDED."name",
			description = EXCLUDED.description,
			price_from = EXCLUDED.price_from,
			price_up = EXCLUDED.price_up,
			rooms = EXCLUDED.rooms,
			bathrooms = EXCLUDED.bathrooms,
			built_area = EXCLUDED.built_area,
			private_area = EXCLUDED.private_area,
			plans = EXCLUDED.plans,
			gallery = EXCLUDED.gallery,
			min_separation = EXCLUDED.min_separation,
			min_deposit = EXCLUDED.min_deposit,
			delivery_time = EXCLUDED.delivery_time,
			available_count = EXCLUDED.available_count
		RETURNING id, project_id, "name", description, price_from, price_up, rooms, bathrooms,
			built_area, private_area, plans, gallery,
			min_separation, min_deposit, delivery_time, available_count
	`

	rows, err := r.db.Pool.Query(ctx, query,
		t.ID, t.ProjectID, t.Name, t.Description, t.PriceFrom, t.PriceUp, t.Rooms, t.Bathrooms,
		t.BuiltArea, t.PrivateArea, t.Plans.NonEmptyOrNil(), t.Gallery.NonEmptyOrNil(),
		t.MinSeparation, t.MinDeposit, t.DeliveryTime, t.AvailableCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert typology %s (project %s): %w", t.ID, t.ProjectID, err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Typology])
	if err != nil {
		return nil, fmt.Errorf("failed to read upserted typology %s: %w", t.ID, err)
	}
	return &stored, nil
}

func (r *typologyRepository) Truncate(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `TRUNCATE TABLE public."Typologies" RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("failed to truncate typologies: %w", err)
	}
	return nil
}
