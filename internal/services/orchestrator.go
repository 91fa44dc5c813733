package services

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/crmsync/internal/logger"
)

// FullSyncer runs every synchronizer.
type FullSyncer interface {
	SyncAll(ctx context.Context) (*FullSummary, error)
}

// Orchestrator runs the synchronizers in the order cities, mega-projects,
// attributes, projects. Projects reference rows written by the earlier
// steps, though nothing checks that they exist.
type Orchestrator struct {
	cities       CitySyncer
	megaProjects MegaProjectSyncer
	attributes   AttributeSyncer
	projects     ProjectSyncer
	log          *logger.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	cities CitySyncer,
	megaProjects MegaProjectSyncer,
	attributes AttributeSyncer,
	projects ProjectSyncer,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		cities:       cities,
		megaProjects: megaProjects,
		attributes:   attributes,
		projects:     projects,
		log:          log.WithComponent("sync.all"),
	}
}

// SyncAll runs the four synchronizers one after another. The first fatal
// error stops the run and later steps are not started.
func (o *Orchestrator) SyncAll(ctx context.Context) (*FullSummary, error) {
	start := time.Now()
	o.log.Info("Full synchronization started", nil)

	var (
		result FullSummary
		err    error
	)

	if result.Cities, err = o.cities.Sync(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", EntityCities, err)
	}
	if result.MegaProjects, err = o.megaProjects.Sync(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", EntityMegaProjects, err)
	}
	if result.Attributes, err = o.attributes.Sync(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", EntityAttributes, err)
	}
	if result.Projects, err = o.projects.Sync(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", EntityProjects, err)
	}

	o.log.Info("Full synchronization completed", map[string]interface{}{
		"duration_ms":     time.Since(start).Milliseconds(),
		"failed_projects": len(result.Projects.FailedProjects),
	})
	return &result, nil
}
