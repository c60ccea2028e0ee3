// Package http exposes the manifest over a JSON REST API built on echo.
package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"manifest/internal/core/application/scangate"
	"manifest/internal/core/application/usecases/commands"
	"manifest/internal/core/application/usecases/queries"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/domain/services"
	"manifest/internal/pkg/errs"
)

// ItemReader reads the live manifest.
type ItemReader interface {
	Get(id kernel.UUID) (*item.Item, error)
	List(filter item.StatusFilter) []*item.Item
}

// SessionTracker exposes the scan session that is currently open.
type SessionTracker interface {
	Current() (*scangate.Session, bool)
	Close()
}

// Dependencies are the use cases behind the routes. DaySummary is nil when no
// sync backend is configured; the summary route is then not registered.
type Dependencies struct {
	AddItem      commands.AddItemCommandHandler
	UpdateItem   commands.UpdateItemCommandHandler
	Reorder      commands.ReorderItemsCommandHandler
	Purge        commands.PurgeDeliveredCommandHandler
	Import       commands.ImportItemsCommandHandler
	Geocode      commands.GeocodeItemsCommandHandler
	Dispatcher   *commands.Dispatcher
	ListItems    queries.ListItemsQueryHandler
	DaySummary   *queries.GetDaySummaryQueryHandler
	Items        ItemReader
	Sessions     SessionTracker
	Extractor    services.CandidateExtractor
	GeocodeDelay time.Duration
}

// Server implements the REST handlers.
type Server struct {
	addItem      commands.AddItemCommandHandler
	updateItem   commands.UpdateItemCommandHandler
	reorder      commands.ReorderItemsCommandHandler
	purge        commands.PurgeDeliveredCommandHandler
	importItems  commands.ImportItemsCommandHandler
	geocode      commands.GeocodeItemsCommandHandler
	dispatcher   *commands.Dispatcher
	listItems    queries.ListItemsQueryHandler
	daySummary   *queries.GetDaySummaryQueryHandler
	items        ItemReader
	sessions     SessionTracker
	extractor    services.CandidateExtractor
	geocodeDelay time.Duration

	logger *slog.Logger
}

// NewServer creates a Server.
func NewServer(deps Dependencies, logger *slog.Logger) *Server {
	return &Server{
		addItem:      deps.AddItem,
		updateItem:   deps.UpdateItem,
		reorder:      deps.Reorder,
		purge:        deps.Purge,
		importItems:  deps.Import,
		geocode:      deps.Geocode,
		dispatcher:   deps.Dispatcher,
		listItems:    deps.ListItems,
		daySummary:   deps.DaySummary,
		items:        deps.Items,
		sessions:     deps.Sessions,
		extractor:    deps.Extractor,
		geocodeDelay: deps.GeocodeDelay,
		logger:       logger.With("component", "http"),
	}
}

// NewEcho builds the echo instance: validator, error handler, request metrics,
// /health, /metrics and the API routes.
func NewEcho(s *Server, reg *prometheus.Registry) (*echo.Echo, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "manifest",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	if err := reg.Register(requests); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = s.handleError
	e.Use(countRequests(requests))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	s.Register(e.Group("/api/v1"))
	return e, nil
}

// Register mounts the API routes on g.
func (s *Server) Register(g *echo.Group) {
	g.GET("/items", s.ListItems)
	g.POST("/items", s.CreateItem)
	g.POST("/items/reorder", s.ReorderItems)
	g.POST("/items/geocode", s.GeocodeItems)
	g.DELETE("/items/delivered", s.PurgeDelivered)
	g.GET("/items/:id", s.GetItem)
	g.PATCH("/items/:id", s.UpdateItem)
	g.DELETE("/items/:id", s.DeleteItem)
	g.POST("/items/:id/actions", s.RunAction)

	g.POST("/scan-sessions", s.OpenScanSession)
	g.POST("/scan-sessions/current/decode", s.DecodeScan)
	g.POST("/scan-sessions/current/finalize", s.FinalizeScan)
	g.DELETE("/scan-sessions/current", s.CancelScan)

	g.GET("/export", s.Export)
	g.POST("/import", s.Import)
	g.POST("/label-candidates", s.LabelCandidates)

	if s.daySummary != nil {
		g.GET("/summary", s.DaySummary)
	}
}

func countRequests(requests *prometheus.CounterVec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil {
				status = statusFor(err)
			}
			requests.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return c.Validate(req)
}

func pathID(c echo.Context) (kernel.UUID, error) {
	return parseID("id", c.Param("id"))
}

func parseID(name, raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		if errs.IsValidation(err) {
			return kernel.UUID{}, err
		}
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
