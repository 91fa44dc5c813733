package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/stwalsh4118/crmsync/internal/crm"
	"github.com/stwalsh4118/crmsync/internal/logger"
	"github.com/stwalsh4118/crmsync/internal/models"
	"github.com/stwalsh4118/crmsync/internal/repository"
	"github.com/stwalsh4118/crmsync/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Related modules and the fields projected from typologies.
const (
	projectAttributesModule = "Atributos"
	typologiesModule        = "Tipologias"
	parentIDField           = "Parent_Id.id"
)

var typologyFields = []string{
	"id", "Nombre", "Descripci_n", "Precio_desde", "Habitaciones", "Ba_os",
	"Area_construida", "Area_privada", "Separacion_minima", "Cuota_inicial_minima",
	"Tiempo_de_entrega", "Unidades_disponibles",
}

// ProjectSyncer synchronizes projects together with their typologies and files.
type ProjectSyncer interface {
	Sync(ctx context.Context) (*ProjectSummary, error)
}

type projectSyncer struct {
	crm        QueryClient
	files      FileLister
	projects   repository.ProjectRepository
	typologies repository.TypologyRepository
	pageSize   int
	log        *logger.Logger
}

type projectRecord struct {
	HC string `validate:"required"`
}

type typologyRecord struct {
	ID string `validate:"required"`
}

// NewProjectSyncer creates a new instance of ProjectSyncer.
func NewProjectSyncer(
	client QueryClient,
	files FileLister,
	projects repository.ProjectRepository,
	typologies repository.TypologyRepository,
	pageSize int,
	log *logger.Logger,
) ProjectSyncer {
	return &projectSyncer{
		crm:        client,
		files:      files,
		projects:   projects,
		typologies: typologies,
		pageSize:   pageSize,
		log:        log.WithComponent("sync.projects"),
	}
}

func (s *projectSyncer) query() crm.SelectQuery {
	return crm.SelectQuery{
		Fields: []string{
			"id", "Name", "Slogan", "Direccion", "Descripcion_corta", "Descripcion_larga",
			"SIG", "Sala_de_ventas.Name", "Cantidad_SMMLV", "Descripcion_descuento",
			"Precios_desde", "Precios_hasta", "Tipo_de_proyecto", "Mega_Proyecto.id",
			"Estado", "Proyecto_destacado", "Area_construida_desde", "Area_construida_hasta",
			"Habitaciones", "Ba_os", "Latitud", "Longitud", "Ciudad.id",
		},
		From:  "Proyectos_Comerciales",
		Where: "id is not null",
		Limit: s.pageSize,
	}
}

// Sync rebuilds the typology table and refreshes every project. Problems
// with a single project are recorded in the summary and do not stop the run;
// only the typology reset and page queries are fatal.
func (s *projectSyncer) Sync(ctx context.Context) (*ProjectSummary, error) {
	run := startRun(s.log, EntityProjects)

	if err := s.typologies.Truncate(ctx); err != nil {
		err = fmt.Errorf("%w: %w", ErrTruncate, err)
		run.finish(0, 0, err)
		return nil, err
	}

	summary := newProjectSummary()
	err := forEachPage(ctx, s.crm, s.query(), func(page crm.Page) error {
		for _, row := range page.Records {
			s.syncProject(ctx, run.log, row, summary)
		}
		return nil
	})
	if err != nil {
		run.finish(summary.InsertedCount, summary.ErrorCount, err)
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	run.log.Info("Typologies synchronized", map[string]interface{}{
		"processed": summary.Typologies.ProcessedCount,
		"inserted":  summary.Typologies.InsertedCount,
		"errors":    summary.Typologies.ErrorCount,
	})
	run.finish(summary.InsertedCount, summary.ErrorCount, nil)
	return summary, nil
}

func (s *projectSyncer) syncProject(ctx context.Context, log *logger.Logger, row crm.Record, summary *ProjectSummary) {
	summary.ProcessedCount++

	rec := projectRecord{HC: row.ID()}
	if err := validate.Struct(rec); err != nil {
		log.Warn("Skipping project without id", map[string]interface{}{"name": row.String("Name")})
		summary.addFailure(nil, orDefault(row.String("Name"), "unknown"), "project has no id")
		return
	}

	projectLog := log.With(map[string]interface{}{"hc": rec.HC})
	if err := s.syncOne(ctx, projectLog, rec.HC, row, summary); err != nil {
		projectLog.Warn("Project synchronization failed", map[string]interface{}{"reason": err.Error()})
		summary.addFailure(&rec.HC, orDefault(row.String("Name"), "unnamed"), err.Error())
	}
}

// syncOne writes one project, its typologies and its files. The project row
// is written before its typologies are fetched, so a later failure leaves the
// row in place without files.
func (s *projectSyncer) syncOne(ctx context.Context, log *logger.Logger, hc string, row crm.Record, summary *ProjectSummary) error {
	attrs, err := s.crm.SearchRelated(ctx, projectAttributesModule, crm.EqualsCriteria(parentIDField, hc))
	if err != nil {
		return fmt.Errorf("failed to fetch attributes: %w", err)
	}

	project := buildProject(hc, row, relatedIDs(attrs, "Atributo.id"))
	if _, err := s.projects.Upsert(ctx, project); err != nil {
		return fmt.Errorf("%w: project: %w", ErrWrite, err)
	}
	summary.InsertedCount++
	log.Debug("Project upserted", map[string]interface{}{"status": project.Status, "rooms": project.Rooms})

	related, err := s.crm.SearchRelated(ctx, typologiesModule, crm.EqualsCriteria(parentIDField, hc), typologyFields...)
	if err != nil {
		return fmt.Errorf("failed to fetch typologies: %w", err)
	}

	written := make([]models.Typology, 0, len(related))
	for _, t := range related {
		if typology, ok := s.syncTypology(ctx, log, hc, t, &summary.Typologies); ok {
			written = append(written, *typology)
		}
	}

	gallery, urbanPlans := listImagePair(ctx, s.files, projectGalleryPrefix(hc), projectUrbanPlansPrefix(hc))
	files := models.ProjectFiles{
		Gallery:         gallery,
		UrbanPlans:      urbanPlans,
		MinDeliveryTime: minOf(lo.Map(written, func(t models.Typology, _ int) *int { return t.DeliveryTime })),
		MinDeposit:      minOf(lo.Map(written, func(t models.Typology, _ int) *int { return t.MinDeposit })),
	}

	found, err := s.projects.PatchFiles(ctx, hc, files)
	if err != nil {
		return fmt.Errorf("%w: project files: %w", ErrWrite, err)
	}
	if !found {
		log.Warn("Project disappeared before its files were stored", nil)
	}
	if len(gallery) > 0 || len(urbanPlans) > 0 {
		summary.UpdatedWithFilesCount++
	}

	log.Info("Project synchronized", map[string]interface{}{
		"typologies":  len(written),
		"gallery":     len(gallery),
		"urban_plans": len(urbanPlans),
	})
	return nil
}

// syncTypology writes one typology with its files. Failures are recorded in
// summary and reported as false.
func (s *projectSyncer) syncTypology(ctx context.Context, log *logger.Logger, projectID string, row crm.Record, summary *TypologySummary) (*models.Typology, bool) {
	name := row.String("Nombre")

	rec := typologyRecord{ID: row.ID()}
	if err := validate.Struct(rec); err != nil {
		log.Warn("Skipping typology without id", map[string]interface{}{"name": name})
		summary.addFailure(nil, projectID, orDefault(name, "unknown"), "typology has no id")
		return nil, false
	}
	summary.ProcessedCount++

	gallery, plans := listImagePair(ctx, s.files, typologyGalleryPrefix(rec.ID), typologyPlansPrefix(rec.ID))
	typology := buildTypology(rec.ID, projectID, row, gallery, plans)

	if _, err := s.typologies.Upsert(ctx, typology); err != nil {
		err = fmt.Errorf("%w: typology: %w", ErrWrite, err)
		log.Warn("Typology synchronization failed", map[string]interface{}{
			"typology_id": rec.ID,
			"reason":      err.Error(),
		})
		summary.addFailure(&rec.ID, projectID, orDefault(name, "unnamed"), err.Error())
		return nil, false
	}

	summary.InsertedCount++
	return &typology, true
}

func buildProject(hc string, row crm.Record, attributeIDs models.StringList) models.Project {
	return models.Project{
		HC:                  hc,
		Name:                row.String("Name"),
		Slogan:              row.String("Slogan"),
		Address:             row.String("Direccion"),
		ShortDescription:    row.String("Descripcion_corta"),
		LongDescription:     row.String("Descripcion_larga"),
		SIC:                 row.String("SIG"),
		SalaryMinimumCount:  parseInt(row.Value("Cantidad_SMMLV")),
		DiscountDescription: row.String("Descripcion_descuento"),
		PriceFromGeneral:    parseFloat(row.Value("Precios_desde")),
		PriceUpGeneral:      parseFloat(row.Value("Precios_hasta")),
		Type:                row.String("Tipo_de_proyecto"),
		MegaProjectID:       optionalString(row.String("Mega_Proyecto.id")),
		Status:              projectStatus(row.Value("Estado")),
		Highlighted:         row.Bool("Proyecto_destacado"),
		BuiltArea:           parseFloat(row.Value("Area_construida_desde")),
		PrivateArea:         parseFloat(row.Value("Area_construida_hasta")),
		Rooms:               roomCount(row.Value("Habitaciones")),
		Bathrooms:           roomCount(row.Value("Ba_os")),
		Latitude:            parseFloat(row.Value("Latitud")),
		Longitude:           parseFloat(row.Value("Longitud")),
		IsPublic:            false,
		AttributeIDs:        attributeIDs.NonEmptyOrNil(),
		City:                optionalString(row.String("Ciudad.id")),
	}
}

func buildTypology(id, projectID string, row crm.Record, gallery, plans models.StringList) models.Typology {
	return models.Typology{
		ID:             id,
		ProjectID:      projectID,
		Name:           row.String("Nombre"),
		Description:    row.String("Descripci_n"),
		PriceFrom:      parseFloat(row.Value("Precio_desde")),
		PriceUp:        0,
		Rooms:          roomCount(row.Value("Habitaciones")),
		Bathrooms:      roomCount(row.Value("Ba_os")),
		BuiltArea:      parseFloat(row.Value("Area_construida")),
		PrivateArea:    parseFloat(row.Value("Area_privada")),
		Plans:          plans.NonEmptyOrNil(),
		Gallery:        gallery.NonEmptyOrNil(),
		MinSeparation:  optionalInt(row.Value("Separacion_minima")),
		MinDeposit:     optionalInt(row.Value("Cuota_inicial_minima")),
		DeliveryTime:   optionalInt(row.Value("Tiempo_de_entrega")),
		AvailableCount: optionalInt(row.Value("Unidades_disponibles")),
	}
}

// listImagePair lists two prefixes concurrently and keeps the image URLs of each.
func listImagePair(ctx context.Context, lister FileLister, first, second string) (models.StringList, models.StringList) {
	var a, b []storage.File

	var g errgroup.Group
	g.Go(func() error {
		a = lister.ListPublicURLs(ctx, first)
		return nil
	})
	g.Go(func() error {
		b = lister.ListPublicURLs(ctx, second)
		return nil
	})
	_ = g.Wait()

	return imageURLs(a), imageURLs(b)
}

func projectGalleryPrefix(hc string) string    { return "projects/" + hc + "/gallery/" }
func projectUrbanPlansPrefix(hc string) string { return "projects/" + hc + "/urban_plans/" }
func typologyGalleryPrefix(id string) string   { return "typologies/" + id + "/gallery/" }
func typologyPlansPrefix(id string) string     { return "typologies/" + id + "/plans/" }
