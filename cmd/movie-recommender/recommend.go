// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/movie-recommender/internal/catalog"
	"github.com/pdiddy/movie-recommender/internal/metadata"
	"github.com/pdiddy/movie-recommender/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <title>",
	Short: "Print the movies most similar to a title",
	Long: `Recommend ranks the catalog by similarity to the given title, fetches
TMDb metadata for each result, and drops movies rated below --min-rating.

With --no-metadata the ranked list is printed with scores only and TMDb is
not contacted. The title must match a catalog title exactly, so quote it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	noMetadata, _ := cmd.Flags().GetBool("no-metadata")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	q := recommend.Query{
		Title:     args[0],
		K:         cfg.Recommend.K,
		MinRating: cfg.Recommend.MinRating,
	}
	if err := q.Validate(); err != nil {
		return err
	}

	rec := recommend.NewRecommender(catalog.NewStore(cfg.Catalog), q.K)
	recs, err := rec.Recommend(q.Title, q.K)
	if err != nil {
		return err
	}

	if noMetadata {
		if jsonOutput {
			return recommend.FormatJSON(recs, os.Stdout)
		}
		recommend.FormatTable(q.Title, recs, os.Stdout)
		return nil
	}

	records := newEnricher(cfg.TMDB).Enrich(context.Background(), recs)
	records = metadata.FilterByRating(records, q.MinRating)
	if jsonOutput {
		return metadata.FormatJSON(records, os.Stdout)
	}
	metadata.FormatTable(q.Title, q.MinRating, records, os.Stdout)
	return nil
}

// bindRecommendFlags binds --k and --min-rating for the running command.
func bindRecommendFlags(cmd *cobra.Command, args []string) {
	bindFlag("recommend.k", cmd.Flags().Lookup("k"))
	bindFlag("recommend.min_rating", cmd.Flags().Lookup("min-rating"))
}

func init() {
	recommendCmd.Flags().Int("k", 10, fmt.Sprintf("number of recommendations (1-%d)", recommend.MaxK))
	recommendCmd.Flags().Float64("min-rating", 5.0, "minimum TMDb rating (0-10, 0 keeps unrated movies)")
	recommendCmd.Flags().Bool("no-metadata", false, "skip TMDb and print similarity scores only")
	recommendCmd.Flags().Bool("json", false, "output results as JSON")

	recommendCmd.PreRun = bindRecommendFlags

	rootCmd.AddCommand(recommendCmd)
}
