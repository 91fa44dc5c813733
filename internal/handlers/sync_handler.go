package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/crmsync/internal/errors"
	"github.com/stwalsh4118/crmsync/internal/middleware"
	"github.com/stwalsh4118/crmsync/internal/services"
)

// SyncHandler exposes the synchronizers as POST endpoints.
type SyncHandler struct {
	cities       services.CitySyncer
	megaProjects services.MegaProjectSyncer
	attributes   services.AttributeSyncer
	projects     services.ProjectSyncer
	all          services.FullSyncer
}

// NewSyncHandler creates a new SyncHandler instance.
func NewSyncHandler(
	cities services.CitySyncer,
	megaProjects services.MegaProjectSyncer,
	attributes services.AttributeSyncer,
	projects services.ProjectSyncer,
	all services.FullSyncer,
) *SyncHandler {
	return &SyncHandler{
		cities:       cities,
		megaProjects: megaProjects,
		attributes:   attributes,
		projects:     projects,
		all:          all,
	}
}

// CitySyncResponse is the body of POST /sync/cities.
type CitySyncResponse struct {
	Message string `json:"message"`
	*services.CitySummary
}

// MegaProjectSyncResponse is the body of POST /sync/mega.
type MegaProjectSyncResponse struct {
	Message string `json:"message"`
	*services.MegaProjectSummary
}

// AttributeSyncResponse is the body of POST /sync/attributes.
type AttributeSyncResponse struct {
	Message string `json:"message"`
	*services.AttributeSummary
}

// ProjectSyncResponse is the body of POST /sync/projects.
type ProjectSyncResponse struct {
	Message string `json:"message"`
	*services.ProjectSummary
}

// FullSyncResponse is the body of POST /sync/all.
type FullSyncResponse struct {
	Message string                `json:"message"`
	Results *services.FullSummary `json:"results"`
}

// Cities handles POST /sync/cities.
func (h *SyncHandler) Cities(c *gin.Context) {
	summary, err := h.cities.Sync(runContext(c))
	if err != nil {
		apierrors.InternalServerError(c, "City synchronization failed", err)
		return
	}
	c.JSON(http.StatusOK, CitySyncResponse{Message: "cities synchronization completed", CitySummary: summary})
}

// MegaProjects handles POST /sync/mega.
func (h *SyncHandler) MegaProjects(c *gin.Context) {
	summary, err := h.megaProjects.Sync(runContext(c))
	if err != nil {
		apierrors.InternalServerError(c, "Mega-project synchronization failed", err)
		return
	}
	c.JSON(http.StatusOK, MegaProjectSyncResponse{Message: "mega-projects synchronization completed", MegaProjectSummary: summary})
}

// Attributes handles POST /sync/attributes.
func (h *SyncHandler) Attributes(c *gin.Context) {
	summary, err := h.attributes.Sync(runContext(c))
	if err != nil {
		apierrors.InternalServerError(c, "Attribute synchronization failed", err)
		return
	}
	c.JSON(http.StatusOK, AttributeSyncResponse{Message: "attributes synchronization completed", AttributeSummary: summary})
}

// Projects handles POST /sync/projects.
func (h *SyncHandler) Projects(c *gin.Context) {
	summary, err := h.projects.Sync(runContext(c))
	if err != nil {
		apierrors.InternalServerError(c, "Project synchronization failed", err)
		return
	}
	c.JSON(http.StatusOK, ProjectSyncResponse{Message: "projects synchronization completed", ProjectSummary: summary})
}

// All handles POST /sync/all.
func (h *SyncHandler) All(c *gin.Context) {
	results, err := h.all.SyncAll(runContext(c))
	if err != nil {
		apierrors.InternalServerError(c, "Full synchronization failed", err)
		return
	}
	c.JSON(http.StatusOK, FullSyncResponse{Message: "full synchronization completed", Results: results})
}

// runContext detaches the sync run from the client connection: a run that
// has started finishes even if the caller hangs up.
func runContext(c *gin.Context) context.Context {
	ctx := context.WithoutCancel(c.Request.Context())
	if log := middleware.GetLogger(c); log != nil {
		log.Info("Synchronization triggered", map[string]interface{}{"path": c.FullPath()})
	}
	return ctx
}
