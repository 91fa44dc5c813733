// Package services holds the entity synchronizers that copy CRM records into
// the local database, and the orchestrator that runs them in order.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stwalsh4118/crmsync/internal/crm"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/metrics"
	"github.com/stwalsh4118/crmsync/internal/storage"
)

// Service-level errors
var (
	ErrWrite    = errors.New("database write failed")
	ErrTruncate = errors.New("failed to reset typologies")
)

// Entity names used in logs and metrics.
const (
	EntityCities       = "cities"
	EntityAttributes   = "attributes"
	EntityMegaProjects = "mega_projects"
	EntityProjects     = "projects"
)

// QueryClient is the subset of the CRM client the synchronizers use.
type QueryClient interface {
	RunSelectQuery(ctx context.Context, q crm.SelectQuery) (crm.Page, error)
	SearchRelated(ctx context.Context, module, criteria string, fields ...string) ([]crm.Record, error)
}

// FileLister lists public file URLs under a bucket prefix. It never fails;
// listing problems yield an empty result.
type FileLister interface {
	ListPublicURLs(ctx context.Context, prefix string) []storage.File
}

var validate = validator.New()

// forEachPage runs q from offset 0 and calls fn with every non-empty page
// until the CRM reports no more records. Any query error ends the loop.
func forEachPage(ctx context.Context, client QueryClient, q crm.SelectQuery, fn func(crm.Page) error) error {
	for offset := 0; ; offset += q.Limit {
		page, err := client.RunSelectQuery(ctx, q.WithOffset(offset))
		if err != nil {
			return err
		}
		if len(page.Records) == 0 {
			return nil
		}
		if err := fn(page); err != nil {
			return err
		}
		if !page.HasMore {
			return nil
		}
	}
}

// syncRun carries the per-run log context and timing of one synchronizer run.
type syncRun struct {
	entity string
	start  time.Time
	log    *logger.Logger
}

func startRun(log *logger.Logger, entity string) *syncRun {
	runLog := log.With(map[string]interface{}{
		"sync_run_id": uuid.NewString(),
		"entity":      entity,
	})
	runLog.Info("Synchronization started", nil)

	return &syncRun{entity: entity, start: time.Now(), log: runLog}
}

func (r *syncRun) finish(processed, failed int, err error) {
	duration := time.Since(r.start)
	metrics.RecordSyncRun(r.entity, duration, processed, failed, err)

	if err != nil {
		r.log.Error("Synchronization aborted", err, map[string]interface{}{
			"processed":   processed,
			"duration_ms": duration.Milliseconds(),
		})
		return
	}
	r.log.Info("Synchronization completed", map[string]interface{}{
		"processed":   processed,
		"errors":      failed,
		"duration_ms": duration.Milliseconds(),
	})
}
