package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/crmsync/internal/crm"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/models"
	"github.com/stwalsh4118/crmsync/internal/repository"
)

// AttributeSyncer synchronizes the attribute catalogue.
type AttributeSyncer interface {
	Sync(ctx context.Context) (*AttributeSummary, error)
}

type attributeSyncer struct {
	crm      QueryClient
	repo     repository.AttributeRepository
	pageSize int
	log      *logger.Logger
}

type attributeRecord struct {
	ID   string `validate:"required"`
	Name string `validate:"required"`
}

// NewAttributeSyncer creates a new instance of AttributeSyncer.
func NewAttributeSyncer(client QueryClient, repo repository.AttributeRepository, pageSize int, log *logger.Logger) AttributeSyncer {
	return &attributeSyncer{
		crm:      client,
		repo:     repo,
		pageSize: pageSize,
		log:      log.WithComponent("sync.attributes"),
	}
}

func (s *attributeSyncer) query() crm.SelectQuery {
	return crm.SelectQuery{
		Fields: []string{"id", "Nombre_atributo"},
		From:   "Parametros",
		Where:  "Tipo = 'Atributo'",
		Limit:  s.pageSize,
	}
}

func (s *attributeSyncer) Sync(ctx context.Context) (*AttributeSummary, error) {
	run := startRun(s.log, EntityAttributes)
	summary := &AttributeSummary{}

	err := forEachPage(ctx, s.crm, s.query(), func(page crm.Page) error {
		for _, row := range page.Records {
			rec := attributeRecord{ID: row.ID(), Name: row.String("Nombre_atributo")}
			if err := validate.Struct(rec); err != nil {
				run.log.Warn("Skipping invalid attribute", map[string]interface{}{
					"attribute_id": rec.ID,
					"error":        err.Error(),
				})
				summary.ErrorCount++
				continue
			}

			if _, err := s.repo.Upsert(ctx, models.Attribute(rec)); err != nil {
				run.log.Error("Failed to upsert attribute", fmt.Errorf("%w: %w", ErrWrite, err), map[string]interface{}{
					"attribute_id": rec.ID,
				})
				summary.ErrorCount++
				continue
			}
			summary.ProcessedCount++
		}
		return nil
	})
	if err != nil {
		run.finish(summary.ProcessedCount, summary.ErrorCount, err)
		return nil, fmt.Errorf("failed to fetch attributes: %w", err)
	}

	run.finish(summary.ProcessedCount, summary.ErrorCount, nil)
	return summary, nil
}
