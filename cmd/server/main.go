package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/crmsync/internal/config"
	"github.com/stwalsh4118/crmsync/internal/crm"
	"github.com/stwalsh4118/crmsync/internal/database"
	apierrors "github.com/stwalsh4118/crmsync/internal/errors"
	"github.com/stwalsh4118/crmsync/internal/handlers"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/middleware"
	"github.com/stwalsh4118/crmsync/internal/repository"
	"github.com/stwalsh4118/crmsync/internal/services"
	"github.com/stwalsh4118/crmsync/internal/storage"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	log.Info("Starting CRM sync service", map[string]interface{}{
		"version":     handlers.Version,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to apply schema", err, nil)
		}
		log.Info("Schema applied", nil)
	}

	crmClient := crm.NewClient(cfg.CRM, crm.NewTokenCache(cfg.CRM, log), log)

	files, err := storage.NewGCSLister(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to create object storage client", err, map[string]interface{}{
			"bucket": cfg.Storage.BucketName,
		})
	}
	defer files.Close()

	pageSize := cfg.CRM.PageSize
	citySyncer := services.NewCitySyncer(crmClient, repository.NewCityRepository(db), pageSize, log)
	megaProjectSyncer := services.NewMegaProjectSyncer(crmClient, repository.NewMegaProjectRepository(db), pageSize, log)
	attributeSyncer := services.NewAttributeSyncer(crmClient, repository.NewAttributeRepository(db), pageSize, log)
	projectSyncer := services.NewProjectSyncer(
		crmClient,
		files,
		repository.NewProjectRepository(db),
		repository.NewTypologyRepository(db),
		pageSize,
		log,
	)
	orchestrator := services.NewOrchestrator(citySyncer, megaProjectSyncer, attributeSyncer, projectSyncer, log)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Order matters: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/", healthHandler.Root)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	syncHandler := handlers.NewSyncHandler(citySyncer, megaProjectSyncer, attributeSyncer, projectSyncer, orchestrator)
	sync := router.Group("/sync")
	{
		sync.POST("/cities", syncHandler.Cities)
		sync.POST("/mega", syncHandler.MegaProjects)
		sync.POST("/attributes", syncHandler.Attributes)
		sync.POST("/projects", syncHandler.Projects)
		sync.POST("/all", syncHandler.All)
	}

	router.NoRoute(apierrors.NotFound)

	// No write timeout: a full sync holds the response open until it finishes.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
