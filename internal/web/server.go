// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the recommender over HTTP: two HTML pages for people
// and a small JSON API for programs, plus health and Prometheus endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/movie-recommender/internal/logging"
	"github.com/pdiddy/movie-recommender/internal/recommend"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

const (
	DefaultAddr         = ":8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 60 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Enricher turns ranked recommendations into display records.
type Enricher interface {
	Enrich(ctx context.Context, recs []types.Recommendation) []types.DisplayRecord
}

// Server holds the handlers' dependencies.
type Server struct {
	rec       *recommend.Recommender
	enricher  Enricher
	cfg       types.ServerConfig
	minRating float64
}

// NewServer returns a Server. minRating is the rating filter applied when
// a request does not set min_rating.
func NewServer(rec *recommend.Recommender, enricher Enricher, cfg types.ServerConfig, minRating float64) *Server {
	return &Server{rec: rec, enricher: enricher, cfg: cfg, minRating: minRating}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if s.cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}

		r.Get("/", s.handleIndex)
		r.Get("/recommend", s.handleRecommendPage)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/recommendations", s.handleRecommendations)
			r.Get("/titles", s.handleTitles)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  orDuration(s.cfg.ReadTimeout, DefaultReadTimeout),
		WriteTimeout: orDuration(s.cfg.WriteTimeout, DefaultWriteTimeout),
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("web server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func orDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
