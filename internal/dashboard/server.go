// Package dashboard serves the mortality dashboard: an HTML page, a JSON API
// over the aggregator, PNG charts, and workbook downloads. The table is loaded
// once by the caller and only read afterwards, so handlers share it without
// locking.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
	"github.com/KaramelBytes/causeboard/internal/chart"
	"github.com/KaramelBytes/causeboard/internal/logging"
	"github.com/KaramelBytes/causeboard/internal/mortality"
)

// Options are the request defaults applied when a query parameter is absent.
type Options struct {
	DefaultState  string
	ExcludeCause  string
	ExcludeTotals bool
	Sort          aggregate.SortOrder
	Chart         chart.Options
	// Registry receives the server metrics and backs /metrics. A fresh
	// registry is created when nil.
	Registry *prometheus.Registry
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	logger   *slog.Logger
	table    *mortality.Table
	opts     Options
	metrics  *Metrics
	registry *prometheus.Registry
}

// New creates a dashboard server over an already loaded table.
func New(logger *slog.Logger, table *mortality.Table, opts Options) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	if table == nil {
		panic("dashboard: table is required")
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if opts.Chart.Width <= 0 || opts.Chart.Height <= 0 {
		opts.Chart = chart.DefaultOptions()
	}
	s := &Server{
		logger:   logger.With("dataset", table.ID),
		table:    table,
		opts:     opts,
		metrics:  NewMetrics(reg),
		registry: reg,
	}
	s.metrics.DatasetRecords.Set(float64(table.Len()))
	return s
}

// RegisterRoutes attaches dashboard endpoints to the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.handleIndex)
	r.Get("/-/healthy", s.handleHealthy)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Get("/years", s.handleYears)
		r.Get("/deaths", s.handleDeaths)
		r.Get("/timeline", s.handleTimeline)
	})
	r.Route("/charts", func(r chi.Router) {
		r.Get("/deaths.png", s.handleDeathsChart)
		r.Get("/timeline.png", s.handleTimelineChart)
	})
	r.Get("/export/deaths.xlsx", s.handleExport)
}

// Handler returns the full middleware stack wrapped around the routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(s.logger))
	r.Use(s.metrics.Instrument)
	r.Use(middleware.Recoverer)
	r.Use(s.datasetHeader)
	s.RegisterRoutes(r)
	return r
}

func (s *Server) datasetHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dataset-Id", s.table.ID)
		next.ServeHTTP(w, r)
	})
}
