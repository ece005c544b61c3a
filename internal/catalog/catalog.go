// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the ordered movie list and its precomputed
// similarity matrix. Movie i in the list corresponds to row and column i
// of the matrix.
//
// Artifacts are read once at startup (see Store) from either a movie list
// plus a matrix file, or a single SQLite bundle written by the pack
// command. The catalog is read-only afterwards.
package catalog

import (
	"fmt"

	"github.com/pdiddy/movie-recommender/pkg/types"
)

// Catalog pairs the movie list with the similarity matrix.
type Catalog struct {
	movies     []types.Movie
	matrix     *Matrix
	firstIndex map[string]int
	duplicates []string
}

// New pairs movies with m. It fails with ErrDimensionMismatch when
// len(movies) differs from m.Dim(). Duplicate titles are allowed: the
// first occurrence is the one IndexOf resolves, and the rest are listed
// by DuplicateTitles.
func New(movies []types.Movie, m *Matrix) (*Catalog, error) {
	if m == nil {
		return nil, fmt.Errorf("nil similarity matrix")
	}
	if len(movies) != m.Dim() {
		return nil, fmt.Errorf("%w: %d movies, %d×%d matrix", ErrDimensionMismatch, len(movies), m.Dim(), m.Dim())
	}

	c := &Catalog{
		movies:     append([]types.Movie(nil), movies...),
		matrix:     m,
		firstIndex: make(map[string]int, len(movies)),
	}
	reported := make(map[string]bool)
	for i, mv := range c.movies {
		if _, seen := c.firstIndex[mv.Title]; seen {
			if !reported[mv.Title] {
				c.duplicates = append(c.duplicates, mv.Title)
				reported[mv.Title] = true
			}
			continue
		}
		c.firstIndex[mv.Title] = i
	}
	return c, nil
}

// Len returns the number of movies.
func (c *Catalog) Len() int { return len(c.movies) }

// Movie returns the movie at position i.
func (c *Catalog) Movie(i int) (types.Movie, error) {
	if i < 0 || i >= len(c.movies) {
		return types.Movie{}, fmt.Errorf("%w: movie %d not in [0,%d)", ErrIndexOutOfRange, i, len(c.movies))
	}
	return c.movies[i], nil
}

// Movies returns a copy of the movie list in catalog order.
func (c *Catalog) Movies() []types.Movie {
	return append([]types.Movie(nil), c.movies...)
}

// Titles returns every title in catalog order, duplicates included.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.movies))
	for i, m := range c.movies {
		titles[i] = m.Title
	}
	return titles
}

// IndexOf returns the position of the first movie whose title equals
// title exactly.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.firstIndex[title]
	return i, ok
}

// Row returns a copy of the similarity scores of movie i against every
// catalog position.
func (c *Catalog) Row(i int) ([]float64, error) {
	return c.matrix.Row(i)
}

// Matrix returns the similarity matrix.
func (c *Catalog) Matrix() *Matrix { return c.matrix }

// DuplicateTitles lists titles that occur more than once, in order of
// their first repeat.
func (c *Catalog) DuplicateTitles() []string {
	return append([]string(nil), c.duplicates...)
}
