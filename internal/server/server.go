package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/truthcheck/internal/model"
	"github.com/ppiankov/truthcheck/internal/pipeline"
)

// HistoryLister lists stored analyses, newest first
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]model.HistoryEntry, error)
}

// Server exposes the check pipeline over HTTP
type Server struct {
	service *pipeline.Service
	history HistoryLister
	cfg     model.ServerConfig
	logger  *zap.Logger
	router  *chi.Mux
}

// New creates a server; history may be nil
func New(service *pipeline.Service, history HistoryLister, cfg model.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}

	s := &Server{
		service: service,
		history: history,
		cfg:     cfg,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/image", s.handleAnalyzeImage)
		r.Get("/history", s.handleHistory)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured address until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// StatusFor maps a pipeline error to its HTTP status
func StatusFor(err error) int {
	var (
		cfgErr    *model.ConfigurationError
		extErr    *model.ExtractionError
		searchErr *model.SearchError
	)
	switch {
	case model.IsQuotaExceeded(err):
		return http.StatusTooManyRequests
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.As(err, &extErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &searchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
