package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	api "manifest/internal/adapters/in/http"
	"manifest/internal/adapters/out/feedback"
	"manifest/internal/adapters/out/geocode/ors"
	"manifest/internal/adapters/out/memory"
	"manifest/internal/adapters/out/postgres"
	"manifest/internal/adapters/out/redisstore"
	"manifest/internal/adapters/out/sensor"
	"manifest/internal/core/application/geoannotator"
	"manifest/internal/core/application/manifest"
	"manifest/internal/core/application/scangate"
	"manifest/internal/core/application/usecases/commands"
	"manifest/internal/core/application/usecases/queries"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/services"
	"manifest/internal/core/ports"
	"manifest/internal/jobs"
	"manifest/internal/pkg/errs"
)

const (
	geocodeCachePrefix = "manifest:geocode:"
	geocodeCacheTTL    = 30 * 24 * time.Hour
)

// CompositionRoot owns every long-lived component of the process. redisClient
// and gormDB may be nil; the memory snapshot store and a sync-less setup are
// used instead.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	registry   *prometheus.Registry
	redis      redis.UniversalClient
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	store     *manifest.Store
	sensor    *sensor.Remote
	gate      *scangate.Gate
	annotator *geoannotator.Annotator
}

func NewCompositionRoot(cfg Config, logger *slog.Logger, redisClient redis.UniversalClient, gormDB *gorm.DB) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	recorder, err := feedback.NewRecorder(registry, logger)
	if err != nil {
		return nil, err
	}

	var snapshots ports.SnapshotStore
	if redisClient != nil {
		snapshots = redisstore.NewSnapshotStore(redisClient, cfg.ManifestKey)
	} else {
		logger.Warn("REDIS_ADDR is not set, the manifest will not survive a restart")
		snapshots = memory.NewSnapshotStore()
	}

	issuer := item.NewScanIssuer()
	c := &CompositionRoot{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		redis:    redisClient,
		gormDB:   gormDB,
		store:    manifest.NewStore(snapshots, recorder, logger, manifest.WithScanIssuer(issuer)),
		sensor:   sensor.NewRemote(logger),
	}
	if gormDB != nil {
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	}
	c.gate = scangate.NewGate(c.store, issuer, c.sensor, recorder, logger,
		scangate.WithDispositionPrompt(cfg.DispositionPrompt))
	c.annotator = geoannotator.NewAnnotator(c.store, c.geocoder(), logger)

	return c, nil
}

func (c *CompositionRoot) geocoder() ports.Geocoder {
	if !c.cfg.GeocoderEnabled() {
		c.logger.Warn("ORS_API_KEY is not set, geocoding is disabled")
		return unconfiguredGeocoder{}
	}

	var g ports.Geocoder = ors.NewGeocoder(c.cfg.ORSBaseURL, c.cfg.ORSAPIKey, ors.WithCountry(c.cfg.PhoneRegion))
	if c.redis != nil {
		g = redisstore.NewCachedGeocoder(g, c.redis, geocodeCachePrefix, geocodeCacheTTL, c.logger)
	}
	return g
}

func (c *CompositionRoot) Store() *manifest.Store {
	return c.store
}

func (c *CompositionRoot) Registry() *prometheus.Registry {
	return c.registry
}

func (c *CompositionRoot) CreateAddItemCommandHandler() commands.AddItemCommandHandler {
	return commands.NewAddItemCommandHandler(c.store)
}

func (c *CompositionRoot) CreateUpdateItemCommandHandler() commands.UpdateItemCommandHandler {
	return commands.NewUpdateItemCommandHandler(c.store)
}

func (c *CompositionRoot) CreateRemoveItemCommandHandler() commands.RemoveItemCommandHandler {
	return commands.NewRemoveItemCommandHandler(c.store)
}

func (c *CompositionRoot) CreateMarkAbsentCommandHandler() commands.MarkAbsentCommandHandler {
	return commands.NewMarkAbsentCommandHandler(c.store)
}

func (c *CompositionRoot) CreateSetPeerStatusCommandHandler() commands.SetPeerStatusCommandHandler {
	return commands.NewSetPeerStatusCommandHandler(c.store, c.cfg.ExtendedStatuses)
}

func (c *CompositionRoot) CreateReorderItemsCommandHandler() commands.ReorderItemsCommandHandler {
	return commands.NewReorderItemsCommandHandler(c.store)
}

func (c *CompositionRoot) CreatePurgeDeliveredCommandHandler() commands.PurgeDeliveredCommandHandler {
	return commands.NewPurgeDeliveredCommandHandler(c.store)
}

func (c *CompositionRoot) CreateImportItemsCommandHandler() commands.ImportItemsCommandHandler {
	return commands.NewImportItemsCommandHandler(c.store)
}

func (c *CompositionRoot) CreateGeocodeItemsCommandHandler() commands.GeocodeItemsCommandHandler {
	return commands.NewGeocodeItemsCommandHandler(c.store, c.annotator)
}

// CreateSyncManifestCommandHandler returns nil when no sync backend is configured.
func (c *CompositionRoot) CreateSyncManifestCommandHandler() *commands.SyncManifestCommandHandler {
	if c.uowFactory == nil {
		return nil
	}
	var f commands.SyncUoWFactory = FuncSyncUoWFactory(func() commands.SyncUoW {
		return c.uowFactory.Create()
	})
	h := commands.NewSyncManifestCommandHandler(c.store, f, c.logger)
	return &h
}

func (c *CompositionRoot) CreateDispatcher() *commands.Dispatcher {
	return commands.NewDispatcher(
		c.CreateMarkAbsentCommandHandler(),
		c.CreateSetPeerStatusCommandHandler(),
		c.CreateRemoveItemCommandHandler(),
		c.CreateGeocodeItemsCommandHandler(),
		c.gate,
	)
}

func (c *CompositionRoot) CreateListItemsQueryHandler() queries.ListItemsQueryHandler {
	return queries.NewListItemsQueryHandler(c.store, services.NewOrderingEngine())
}

// CreateGetDaySummaryQueryHandler returns nil when no sync backend is configured.
func (c *CompositionRoot) CreateGetDaySummaryQueryHandler() *queries.GetDaySummaryQueryHandler {
	if c.gormDB == nil {
		return nil
	}
	h := queries.NewGetDaySummaryQueryHandler(c.gormDB)
	return &h
}

// HTTPServer builds the echo instance serving the REST API, health and metrics.
func (c *CompositionRoot) HTTPServer() (*echo.Echo, error) {
	server := api.NewServer(api.Dependencies{
		AddItem:      c.CreateAddItemCommandHandler(),
		UpdateItem:   c.CreateUpdateItemCommandHandler(),
		Reorder:      c.CreateReorderItemsCommandHandler(),
		Purge:        c.CreatePurgeDeliveredCommandHandler(),
		Import:       c.CreateImportItemsCommandHandler(),
		Geocode:      c.CreateGeocodeItemsCommandHandler(),
		Dispatcher:   c.CreateDispatcher(),
		ListItems:    c.CreateListItemsQueryHandler(),
		DaySummary:   c.CreateGetDaySummaryQueryHandler(),
		Items:        c.store,
		Sessions:     c.gate,
		Extractor:    services.NewCandidateExtractor(c.cfg.PhoneRegion),
		GeocodeDelay: c.cfg.GeocodeDelay,
	}, c.logger)
	return api.NewEcho(server, c.registry)
}

// JobManager schedules the geocode backfill when a geocoder is configured and the
// manifest sync when a sync backend is configured.
func (c *CompositionRoot) JobManager() *jobs.JobManager {
	var geocodeJob *jobs.GeocodeBackfillJob
	if c.cfg.GeocoderEnabled() {
		h := c.CreateGeocodeItemsCommandHandler()
		geocodeJob = jobs.NewGeocodeBackfillJob(&h, c.cfg.GeocodeSchedule, c.cfg.GeocodeDelay, c.logger)
	}

	var syncJob *jobs.ManifestSyncJob
	if h := c.CreateSyncManifestCommandHandler(); h != nil {
		syncJob = jobs.NewManifestSyncJob(h, c.cfg.SyncSchedule, c.logger)
	}

	return jobs.NewJobManager(geocodeJob, syncJob)
}

// Shutdown ends any open scan session, flushes the manifest and releases the
// connections.
func (c *CompositionRoot) Shutdown(ctx context.Context) error {
	c.gate.Close()

	var problems []error
	if err := c.store.Flush(ctx); err != nil {
		problems = append(problems, err)
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			problems = append(problems, err)
		}
	}
	if c.gormDB != nil {
		if sqlDB, err := c.gormDB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				problems = append(problems, err)
			}
		}
	}
	return errors.Join(problems...)
}

type FuncSyncUoWFactory func() commands.SyncUoW

func (f FuncSyncUoWFactory) Create() commands.SyncUoW {
	return f()
}

// unconfiguredGeocoder stands in when no API key is available.
type unconfiguredGeocoder struct{}

func (unconfiguredGeocoder) Geocode(context.Context, string) (ports.GeocodeResult, error) {
	return ports.GeocodeResult{}, errs.NewExternalServiceError("geocoder", errors.New("ORS_API_KEY is not configured"))
}
