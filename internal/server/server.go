package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"stockCorrelation/internal/analysis"
	"stockCorrelation/internal/charts"
)

// Config holds server configuration
type Config struct {
	Port     string
	Log      zerolog.Logger
	Source   analysis.Source
	Defaults analysis.Params // prefilled form values
	Charts   charts.Options
	Webhook  http.HandlerFunc // optional, mounted at /telegram/webhook

	CORSOrigins []string // allowed origins for /api, none disables CORS
}

// Server serves the interactive analysis form.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	source   analysis.Source
	defaults analysis.Params
	charts   charts.Options
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		source:   cfg.Source,
		defaults: cfg.Defaults,
		charts:   cfg.Charts,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.Webhook, cfg.CORSOrigins)

	s.server = &http.Server{
		Addr:         net.JoinHostPort("", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
}

func (s *Server) setupRoutes(webhook http.HandlerFunc, origins []string) {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Get("/", s.handleIndex)
	s.router.Get("/analyze", s.handleAnalyze)
	s.router.Get("/download/stock_prices.csv", s.handleDownloadPrices)
	s.router.Get("/download/portfolio_value.csv", s.handleDownloadPortfolio)
	s.router.Get("/charts/{file}", s.handleChart)
	s.router.Route("/api", func(r chi.Router) {
		if len(origins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: origins,
				AllowedMethods: []string{"GET", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Get("/analysis", s.handleAPI)
	})

	if webhook != nil {
		s.router.Post("/telegram/webhook", webhook)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
