// Package server exposes the journal and its analytics as a JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/enrich"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/tax"
)

// LogStore is the read side of the audit trail.
type LogStore interface {
	ListLogs(ctx context.Context, limit int) ([]journal.LogEntry, error)
	UnreadLogCount(ctx context.Context) (int, error)
}

// SQLRunner executes console queries.
type SQLRunner interface {
	Exec(ctx context.Context, query string) (journal.QueryResult, error)
}

// Analyzer builds a pre-trade snapshot of a ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (enrich.Analysis, error)
}

// Config holds server configuration
type Config struct {
	Addr        string
	CORSOrigins []string

	Ledger   journal.Ledger
	Logs     LogStore   // optional
	Console  SQLRunner  // nil keeps /api/sql disabled
	Analyzer Analyzer   // nil answers /api/analyze with 503
	Rates    *tax.Rates // nil means tax.DefaultRates

	Gatherer prometheus.Gatherer // defaults to the global registry
	Log      zerolog.Logger
	Now      func() time.Time
}

type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	ledger   journal.Ledger
	logs     LogStore
	console  SQLRunner
	analyzer Analyzer
	rates    tax.Rates
	now      func() time.Time
}

func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		ledger:   cfg.Ledger,
		logs:     cfg.Logs,
		console:  cfg.Console,
		analyzer: cfg.Analyzer,
		rates:    tax.DefaultRates(),
		now:      cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if cfg.Rates != nil {
		s.rates = *cfg.Rates
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s.setupMiddleware(cfg.CORSOrigins)
	s.setupRoutes(gatherer)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))

	if len(origins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes(g prometheus.Gatherer) {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/trades", func(r chi.Router) {
			r.Get("/", s.handleListTrades)
			r.Post("/", s.handleAddTrade)
			r.Delete("/{id}", s.handleDeleteTrade)
		})
		r.Get("/capital", s.handleCapital)
		r.Post("/capital", s.handleAddCapital)

		r.Get("/stats", s.handleStats)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/hourly", s.handleHourly)
		r.Get("/prices", s.handlePrices)
		r.Get("/weekdays", s.handleWeekdays)
		r.Get("/streaks", s.handleStreaks)
		r.Get("/taxes", s.handleTaxes)
		r.Get("/dashboard", s.handleDashboard)

		r.Get("/logs", s.handleLogs)
		r.Post("/sql", s.handleSQL)
		r.Get("/analyze/{ticker}", s.handleAnalyze)
	})
}

// Handler is the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqLog := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
