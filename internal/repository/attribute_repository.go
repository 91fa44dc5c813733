package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/crmsync/internal/database"
	"github.com/stwalsh4118/crmsync/internal/models"
)

// AttributeRepository defines the write operations for project attributes.
type AttributeRepository interface {
	Upsert(ctx context.Context, attr models.Attribute) (*models.Attribute, error)
}

type attributeRepository struct {
	db *database.Database
}

// NewAttributeRepository creates a new instance of AttributeRepository.
func NewAttributeRepository(db *database.Database) AttributeRepository {
	return &attributeRepository{db: db}
}

// Upsert inserts the attribute or renames the stored one with the same id.
func (r *attributeRepository) Upsert(ctx context.Context, attr models.Attribute) (*models.Attribute, error) {
	query := `
		INSERT INTO public."Project_Attributes" (id, "name")
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			"name" = EXCLUDED."name"
		RETURNING id, "name"
	`

	rows, err := r.db.Pool.Query(ctx, query, attr.ID, attr.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert attribute %s: %w", attr.ID, err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Attribute])
	if err != nil {
		return nil, fmt.Errorf("failed to read upserted attribute %s: %w", attr.ID, err)
	}
	return &stored, nil
}
