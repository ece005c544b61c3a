// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/movie-recommender/internal/logging"
	"github.com/pdiddy/movie-recommender/internal/metrics"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

// Load reads the catalog described by cfg. A bundle path takes precedence
// over the movie list and matrix paths. Every failure is a *DataLoadError.
func Load(ctx context.Context, cfg types.CatalogConfig) (*Catalog, error) {
	if cfg.BundlePath != "" {
		c, err := LoadBundle(ctx, cfg.BundlePath)
		if err != nil {
			return nil, &DataLoadError{Path: cfg.BundlePath, Err: err}
		}
		return c, nil
	}

	if cfg.MoviesPath == "" || cfg.MatrixPath == "" {
		return nil, &DataLoadError{Err: fmt.Errorf("movie list and matrix paths are required when no bundle is configured")}
	}

	movies, err := ReadMovies(cfg.MoviesPath)
	if err != nil {
		return nil, &DataLoadError{Path: cfg.MoviesPath, Err: err}
	}
	m, err := ReadMatrix(cfg.MatrixPath)
	if err != nil {
		return nil, &DataLoadError{Path: cfg.MatrixPath, Err: err}
	}
	c, err := New(movies, m)
	if err != nil {
		return nil, &DataLoadError{Err: err}
	}
	return c, nil
}

// Store hands out the catalog, loading it on first use. Every later call
// returns the same *Catalog, or the same error if the first load failed.
// Share one Store per process; tests build their own with NewStaticStore.
type Store struct {
	once sync.Once
	load func() (*Catalog, error)
	cat  *Catalog
	err  error
}

// NewStore returns a Store that loads artifacts per cfg.
func NewStore(cfg types.CatalogConfig) *Store {
	return &Store{load: func() (*Catalog, error) {
		return Load(context.Background(), cfg)
	}}
}

// NewStaticStore returns a Store that always yields c.
func NewStaticStore(c *Catalog) *Store {
	return &Store{load: func() (*Catalog, error) { return c, nil }}
}

// Catalog returns the loaded catalog.
func (s *Store) Catalog() (*Catalog, error) {
	s.once.Do(func() {
		s.cat, s.err = s.load()
		if s.err != nil {
			return
		}
		metrics.CatalogMovies.Set(float64(s.cat.Len()))
		logging.Info().Int("movies", s.cat.Len()).Msg("catalog loaded")
		if dups := s.cat.DuplicateTitles(); len(dups) > 0 {
			logging.Warn().Strs("titles", dups).Int("count", len(dups)).
				Msg("duplicate titles in catalog; only the first occurrence of each can be queried")
		}
	})
	return s.cat, s.err
}
