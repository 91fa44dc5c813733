package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/stwalsh4118/crmsync/internal/crm"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/models"
	"github.com/stwalsh4118/crmsync/internal/repository"
)

// CitySyncer synchronizes the cities referenced by CRM projects.
type CitySyncer interface {
	Sync(ctx context.Context) (*CitySummary, error)
}

type citySyncer struct {
	crm      QueryClient
	repo     repository.CityRepository
	pageSize int
	log      *logger.Logger
}

type cityRecord struct {
	ID   string `validate:"required"`
	Name string `validate:"required"`
}

// NewCitySyncer creates a new instance of CitySyncer.
func NewCitySyncer(client QueryClient, repo repository.CityRepository, pageSize int, log *logger.Logger) CitySyncer {
	return &citySyncer{
		crm:      client,
		repo:     repo,
		pageSize: pageSize,
		log:      log.WithComponent("sync.cities"),
	}
}

func (s *citySyncer) query() crm.SelectQuery {
	return crm.SelectQuery{
		Fields: []string{"Ciudad.Name", "Ciudad.id"},
		From:   "Proyectos_Comerciales",
		Where:  "Ciudad is not null",
		Limit:  s.pageSize,
	}
}

// Sync reads the city of every project, keeps one row per city id and
// upserts it. Cities are always stored as public.
func (s *citySyncer) Sync(ctx context.Context) (*CitySummary, error) {
	run := startRun(s.log, EntityCities)

	var rows []crm.Record
	err := forEachPage(ctx, s.crm, s.query(), func(page crm.Page) error {
		rows = append(rows, page.Records...)
		return nil
	})
	if err != nil {
		run.finish(0, 0, err)
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}

	// Each project repeats its city; rows without a city id are not cities.
	withID := lo.Filter(rows, func(r crm.Record, _ int) bool { return r.String("Ciudad.id") != "" })
	unique := latestPerCity(withID)

	run.log.Info("Unique cities found", map[string]interface{}{
		"rows":   len(rows),
		"unique": len(unique),
	})

	summary := &CitySummary{}
	for _, row := range unique {
		rec := cityRecord{ID: row.String("Ciudad.id"), Name: cityName(row.String("Ciudad.Name"))}
		if err := validate.Struct(rec); err != nil {
			run.log.Warn("Skipping invalid city", map[string]interface{}{
				"city_id":  rec.ID,
				"raw_name": row.String("Ciudad.Name"),
				"error":    err.Error(),
			})
			summary.ErrorCount++
			continue
		}

		city := models.City{ID: rec.ID, Name: rec.Name, IsPublic: true}
		if _, err := s.repo.Upsert(ctx, city); err != nil {
			run.log.Error("Failed to upsert city", fmt.Errorf("%w: %w", ErrWrite, err), map[string]interface{}{
				"city_id": city.ID,
			})
			summary.ErrorCount++
			continue
		}

		run.log.Debug("City upserted", map[string]interface{}{"city_id": city.ID, "name": city.Name})
		summary.ProcessedCount++
	}

	run.finish(summary.ProcessedCount, summary.ErrorCount, nil)
	return summary, nil
}

// latestPerCity keeps the last row seen for each city id, in the order the
// ids first appear.
func latestPerCity(rows []crm.Record) []crm.Record {
	cityID := func(r crm.Record) string { return r.String("Ciudad.id") }

	latest := lo.KeyBy(rows, cityID)
	ids := lo.Uniq(lo.Map(rows, func(r crm.Record, _ int) string { return cityID(r) }))
	return lo.Map(ids, func(id string, _ int) crm.Record { return latest[id] })
}
