// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/movie-recommender/internal/catalog"
	"github.com/pdiddy/movie-recommender/internal/logging"
	"github.com/pdiddy/movie-recommender/internal/metadata"
	"github.com/pdiddy/movie-recommender/internal/recommend"
	"github.com/pdiddy/movie-recommender/internal/tmdb"
	"github.com/pdiddy/movie-recommender/internal/web"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation web UI and JSON API",
	Long: `Serve loads the catalog once, failing immediately if an artifact is
missing or malformed, then serves the web UI, the JSON API, /healthz and
/metrics until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}

	store := catalog.NewStore(cfg.Catalog)
	if _, err := store.Catalog(); err != nil {
		logging.Error().Err(err).Msg("loading catalog")
		return err
	}

	rec := recommend.NewRecommender(store, cfg.Recommend.K)
	srv := web.NewServer(rec, newEnricher(cfg.TMDB), cfg.Server, cfg.Recommend.MinRating)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

// newEnricher builds the TMDb-backed metadata enricher.
func newEnricher(cfg types.TMDBConfig) *metadata.Enricher {
	if cfg.APIKey == "" {
		logging.Warn().Msg("no TMDb API key configured; posters, ratings and trailers will be unavailable")
	}
	return metadata.NewEnricher(tmdb.NewClient(cfg), cfg.Workers)
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Int("rate-limit", 120, "requests per IP per minute (0 disables)")
	serveCmd.Flags().Bool("trust-proxy", false, "take client addresses from X-Forwarded-For (only behind a reverse proxy)")
	serveCmd.Flags().Float64("min-rating", 5.0, "default minimum TMDb rating")
	serveCmd.Flags().Int("k", 10, "recommendations per query")

	bindFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	bindFlag("server.rate_limit", serveCmd.Flags().Lookup("rate-limit"))
	bindFlag("server.trust_proxy", serveCmd.Flags().Lookup("trust-proxy"))

	// recommend shares these keys, so bind only for the command that runs.
	serveCmd.PreRun = bindRecommendFlags

	rootCmd.AddCommand(serveCmd)
}
