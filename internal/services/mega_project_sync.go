package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/crmsync/internal/crm"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/models"
	"github.com/stwalsh4118/crmsync/internal/repository"
)

// MegaProjectSyncer synchronizes commercial mega-projects.
type MegaProjectSyncer interface {
	Sync(ctx context.Context) (*MegaProjectSummary, error)
}

type megaProjectSyncer struct {
	crm      QueryClient
	repo     repository.MegaProjectRepository
	pageSize int
	log      *logger.Logger
}

type megaProjectRecord struct {
	ID string `validate:"required"`
}

// NewMegaProjectSyncer creates a new instance of MegaProjectSyncer.
func NewMegaProjectSyncer(client QueryClient, repo repository.MegaProjectRepository, pageSize int, log *logger.Logger) MegaProjectSyncer {
	return &megaProjectSyncer{
		crm:      client,
		repo:     repo,
		pageSize: pageSize,
		log:      log.WithComponent("sync.mega_projects"),
	}
}

func (s *megaProjectSyncer) query() crm.SelectQuery {
	return crm.SelectQuery{
		Fields: []string{
			"id", "Name", "Direccion_MP", "Slogan_comercial", "Descripcion",
			"Record_Image", "Latitud_MP", "Longitud_MP",
		},
		From:  "Mega_Proyectos",
		Where: "Mega_proyecto_comercial = true",
		Limit: s.pageSize,
	}
}

// Sync upserts every commercial mega-project with its attribute ids and
// gallery. Unlike projects, a failed attribute lookup or write aborts the
// whole run.
func (s *megaProjectSyncer) Sync(ctx context.Context) (*MegaProjectSummary, error) {
	run := startRun(s.log, EntityMegaProjects)
	summary := &MegaProjectSummary{}

	err := forEachPage(ctx, s.crm, s.query(), func(page crm.Page) error {
		for _, row := range page.Records {
			summary.ProcessedCount++

			rec := megaProjectRecord{ID: row.ID()}
			if err := validate.Struct(rec); err != nil {
				run.log.Warn("Skipping mega-project without id", map[string]interface{}{
					"name": row.String("Name"),
				})
				summary.ErrorCount++
				continue
			}

			related, err := s.crm.SearchRelated(ctx, "Atributos_Mega_Proyecto", crm.EqualsCriteria("Parent_Id.id", rec.ID))
			if err != nil {
				return fmt.Errorf("failed to fetch attributes of mega-project %s: %w", rec.ID, err)
			}

			mp := models.MegaProject{
				ID:           rec.ID,
				Name:         row.String("Name"),
				Address:      row.String("Direccion_MP"),
				Slogan:       row.String("Slogan_comercial"),
				Description:  row.String("Descripcion"),
				AttributeIDs: relatedIDs(related, "Atributo.id"),
				Gallery:      splitGallery(row.String("Record_Image")),
				Latitude:     parseFloat(row.Value("Latitud_MP")),
				Longitude:    parseFloat(row.Value("Longitud_MP")),
				IsPublic:     false,
			}

			if _, err := s.repo.Upsert(ctx, mp); err != nil {
				summary.ErrorCount++
				return fmt.Errorf("%w: mega-project %s: %w", ErrWrite, mp.ID, err)
			}

			run.log.Debug("Mega-project upserted", map[string]interface{}{
				"mega_project_id": mp.ID,
				"attributes":      len(mp.AttributeIDs),
				"gallery":         len(mp.Gallery),
			})
			summary.InsertedCount++
		}
		return nil
	})
	if err != nil {
		run.finish(summary.InsertedCount, summary.ErrorCount, err)
		return nil, err
	}

	run.finish(summary.InsertedCount, summary.ErrorCount, nil)
	return summary, nil
}
