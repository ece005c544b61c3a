// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata turns ranked recommendations into display records by
// fetching TMDb details and trailers, then applies the rating filter.
//
// Fetch failures never abort a result set. Each failed field becomes an
// unavailable types.Field carrying a *FetchError, and the presentation
// layer decides how to show it.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pdiddy/movie-recommender/internal/logging"
	"github.com/pdiddy/movie-recommender/internal/metrics"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

// DefaultWorkers is the number of movies fetched concurrently.
const DefaultWorkers = 4

// Fetcher retrieves display metadata for a movie. The two calls are
// independent: either may fail without affecting the other.
type Fetcher interface {
	FetchDetails(ctx context.Context, movieID int) (types.Details, error)
	FetchTrailer(ctx context.Context, movieID int) (string, error)
}

// Field names used in FetchError and metrics.
const (
	FieldPoster      = "poster_url"
	FieldOverview    = "overview"
	FieldReleaseDate = "release_date"
	FieldRating      = "rating"
	FieldTrailer     = "trailer_url"
)

// FetchError records why one display field of one movie is unavailable.
type FetchError struct {
	MovieID int
	Field   string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s for movie %d: %v", e.Field, e.MovieID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Enricher fetches metadata for recommendations.
type Enricher struct {
	fetcher Fetcher
	workers int
}

// NewEnricher returns an Enricher using f. workers <= 0 selects
// DefaultWorkers.
func NewEnricher(f Fetcher, workers int) *Enricher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Enricher{fetcher: f, workers: workers}
}

// Enrich returns one display record per recommendation, in the same order.
// Movies are fetched concurrently; each record is written to its own slot.
func (e *Enricher) Enrich(ctx context.Context, recs []types.Recommendation) []types.DisplayRecord {
	out := make([]types.DisplayRecord, len(recs))
	if len(recs) == 0 {
		return out
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(e.workers, len(recs))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = e.enrichOne(ctx, recs[i])
			}
		}()
	}

	for i := range recs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, rec types.Recommendation) types.DisplayRecord {
	id := rec.Movie.ID
	r := types.DisplayRecord{
		Rank:    rec.Rank,
		MovieID: id,
		Title:   rec.Movie.Title,
		Score:   rec.Score,
	}

	d, err := e.fetcher.FetchDetails(ctx, id)
	if err != nil {
		logFailure(id, "details", err)
		r.PosterURL = types.Unavailable[string](&FetchError{MovieID: id, Field: FieldPoster, Err: err})
		r.Overview = types.Unavailable[string](&FetchError{MovieID: id, Field: FieldOverview, Err: err})
		r.ReleaseDate = types.Unavailable[string](&FetchError{MovieID: id, Field: FieldReleaseDate, Err: err})
		r.Rating = types.Unavailable[float64](&FetchError{MovieID: id, Field: FieldRating, Err: err})
	} else {
		r.PosterURL = wrapField(id, FieldPoster, d.PosterURL)
		r.Overview = wrapField(id, FieldOverview, d.Overview)
		r.ReleaseDate = wrapField(id, FieldReleaseDate, d.ReleaseDate)
		r.Rating = wrapField(id, FieldRating, d.Rating)
	}

	trailer, err := e.fetcher.FetchTrailer(ctx, id)
	if err != nil {
		logFailure(id, "trailer", err)
		r.TrailerURL = types.Unavailable[string](&FetchError{MovieID: id, Field: FieldTrailer, Err: err})
	} else {
		r.TrailerURL = types.Available(trailer)
	}

	for field := range r.FieldErrors() {
		metrics.MetadataFieldFailures.WithLabelValues(field).Inc()
	}
	return r
}

// wrapField attaches movie and field context to an unavailable field.
func wrapField[T any](movieID int, name string, f types.Field[T]) types.Field[T] {
	if f.OK() {
		return f
	}
	err := f.Err
	if err == nil {
		err = types.ErrNotAvailable
	}
	return types.Unavailable[T](&FetchError{MovieID: movieID, Field: name, Err: err})
}

func logFailure(movieID int, call string, err error) {
	if errors.Is(err, types.ErrNotAvailable) {
		logging.Debug().Int("movie_id", movieID).Str("call", call).Err(err).Msg("metadata not available")
		return
	}
	logging.Warn().Int("movie_id", movieID).Str("call", call).Err(err).Msg("metadata fetch failed")
}

// FilterByRating keeps the records whose rating is at least minRating,
// preserving order. A record without a rating passes only when minRating
// is zero.
func FilterByRating(records []types.DisplayRecord, minRating float64) []types.DisplayRecord {
	kept := make([]types.DisplayRecord, 0, len(records))
	for _, r := range records {
		if minRating <= 0 || (r.Rating.OK() && r.Rating.Value >= minRating) {
			kept = append(kept, r)
		}
	}
	return kept
}
