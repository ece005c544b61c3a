// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend ranks catalog movies by similarity to a query movie.
//
// Recommend is a pure function of the catalog, the query title and k: it
// reads the query's matrix row, drops the query itself, and stable-sorts
// the rest by descending score so that equal scores keep catalog order.
package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/movie-recommender/internal/catalog"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

// DefaultK is the number of recommendations returned when none is requested.
const DefaultK = 10

var (
	// ErrUnknownMovie matches every *UnknownMovieError via errors.Is.
	ErrUnknownMovie = errors.New("unknown movie")

	// ErrInvalidK is returned for k < 1.
	ErrInvalidK = errors.New("k must be at least 1")
)

// UnknownMovieError reports a query title that matches no catalog entry.
type UnknownMovieError struct {
	Title string
}

func (e *UnknownMovieError) Error() string {
	return fmt.Sprintf("unknown movie %q", e.Title)
}

// Is lets errors.Is(err, ErrUnknownMovie) match.
func (e *UnknownMovieError) Is(target error) bool { return target == ErrUnknownMovie }

type candidate struct {
	index int
	score float64
}

// Recommend returns the k movies most similar to the first catalog movie
// titled queryTitle, best first. The result has min(k, N-1) entries and
// never contains the query's own position. NaN scores rank after all
// other scores.
func Recommend(c *catalog.Catalog, queryTitle string, k int) ([]types.Recommendation, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}

	q, ok := c.IndexOf(queryTitle)
	if !ok {
		return nil, &UnknownMovieError{Title: queryTitle}
	}

	scores, err := c.Row(q)
	if err != nil {
		return nil, fmt.Errorf("reading similarity row for %q: %w", queryTitle, err)
	}

	candidates := make([]candidate, 0, len(scores))
	for j, s := range scores {
		if j == q {
			continue
		}
		candidates = append(candidates, candidate{index: j, score: s})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return ranksHigher(candidates[a].score, candidates[b].score)
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]types.Recommendation, len(candidates))
	for i, cand := range candidates {
		m, err := c.Movie(cand.index)
		if err != nil {
			return nil, err
		}
		results[i] = types.Recommendation{Rank: i + 1, Movie: m, Score: types.Score(cand.score)}
	}
	return results, nil
}

// ranksHigher orders scores descending with NaN after every number, which
// keeps the comparison a strict weak ordering.
func ranksHigher(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}

// Recommender serves recommendations from a shared catalog store.
type Recommender struct {
	store *catalog.Store
	k     int
}

// NewRecommender returns a Recommender over store. k <= 0 selects DefaultK.
func NewRecommender(store *catalog.Store, k int) *Recommender {
	if k <= 0 {
		k = DefaultK
	}
	return &Recommender{store: store, k: k}
}

// K returns the default result size.
func (r *Recommender) K() int { return r.k }

// Recommend ranks movies similar to title. k <= 0 uses the Recommender's
// default.
func (r *Recommender) Recommend(title string, k int) ([]types.Recommendation, error) {
	c, err := r.store.Catalog()
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = r.k
	}
	return Recommend(c, title, k)
}

// Titles returns every catalog title in catalog order.
func (r *Recommender) Titles() ([]string, error) {
	c, err := r.store.Catalog()
	if err != nil {
		return nil, err
	}
	return c.Titles(), nil
}
