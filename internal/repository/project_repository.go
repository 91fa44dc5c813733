package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/crmsync/internal/database"
	"github.com/stwalsh4118/crmsync/internal/models"
)

// ProjectRepository defines the write operations for projects.
type ProjectRepository interface {
	// Upsert writes every CRM-sourced column. Gallery, urban plans and the
	// typology aggregates are left untouched; they belong to PatchFiles.
	Upsert(ctx context.Context, p models.Project) (*models.Project, error)

	// PatchFiles updates only the file and aggregate columns of project hc.
	// Empty URL lists keep the stored value. It reports false when no project
	// with that hc exists.
	PatchFiles(ctx context.Context, hc string, files models.ProjectFiles) (bool, error)
}

type projectRepository struct {
	db *database.Database
}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository(db *database.Database) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `hc, "name", slogan, address, small_description, long_description, sic,
	salary_minimum_count, discount_description, price_from_general, price_up_general,
	"type", mega_project_id, status, highlighted, built_area, private_area, rooms,
	bathrooms, latitude, longitude, is_public, "attributes", city,
	gallery, urban_plans, min_delivery_time, min_deposit`

func (r *projectRepository) Upsert(ctx context.Context, p models.Project) (*models.Project, error) {
	query := `
		INSERT INTO public."Projects" (
			hc, "name", slogan, address, small_description, long_description, sic,
			salary_minimum_count, discount_description, price_from_general, price_up_general,
			"type", mega_project_id, status, highlighted, built_area, private_area, rooms,
			bathrooms, latitude, longitude, is_public, "attributes", city
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
		ON CONFLICT (hc) DO UPDATE SET
			"name" = EXCLUDED."name",
			slogan = EXCLUDED.slogan,
			address = EXCLUDED.address,
			small_description = EXCLUDED.small_description,
			long_description = EXCLUDED.long_description,
			sic = EXCLUDED.sic,
			salary_minimum_count = EXCLUDED.salary_minimum_count,
			discount_description = EXCLUDED.discount_description,
			price_from_general = EXCLUDED.price_from_general,
			price_up_general = EXCLUDED.price_up_general,
			"type" = EXCLUDED."type",
			mega_project_id = EXCLUDED.mega_project_id,
			status = EXCLUDED.status,
			highlighted = EXCLUDED.highlighted,
			built_area = EXCLUDED.built_area,
			private_area = EXCLUDED.private_area,
			rooms = EXCLUDED.rooms,
			bathrooms = EXCLUDED.bathrooms,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			is_public = EXCLUDED.is_public,
			"attributes" = EXCLUDED."attributes",
			city = EXCLUDED.city
		RETURNING ` + projectColumns

	rows, err := r.db.Pool.Query(ctx, query,
		p.HC, p.Name, p.Slogan, p.Address, p.ShortDescription, p.LongDescription, p.SIC,
		p.SalaryMinimumCount, p.DiscountDescription, p.PriceFromGeneral, p.PriceUpGeneral,
		p.Type, p.MegaProjectID, p.Status, p.Highlighted, p.BuiltArea, p.PrivateArea, p.Rooms,
		p.Bathrooms, p.Latitude, p.Longitude, p.IsPublic, p.AttributeIDs, p.City,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert project %s: %w", p.HC, err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Project])
	if err != nil {
		return nil, fmt.Errorf("failed to read upserted project %s: %w", p.HC, err)
	}
	return &stored, nil
}

// PatchFiles leaves a stored URL list in place when the new one is empty:
// an empty listing cannot be told apart from an unreachable bucket. The
// aggregates are always overwritten.
func (r *projectRepository) PatchFiles(ctx context.Context, hc string, files models.ProjectFiles) (bool, error) {
	query := `
		UPDATE public."Projects"
		SET
			gallery = COALESCE($1::jsonb, gallery),
			urban_plans = COALESCE($2::jsonb, urban_plans),
			min_delivery_time = $3,
			min_deposit = $4
		WHERE hc = $5
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		files.Gallery.NonEmptyOrNil(),
		files.UrbanPlans.NonEmptyOrNil(),
		files.MinDeliveryTime,
		files.MinDeposit,
		hc,
	)
	if err != nil {
		return false, fmt.Errorf("failed to patch files for project %s: %w", hc, err)
	}
	return tag.RowsAffected() > 0, nil
}
