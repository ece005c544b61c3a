// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the movie-recommender.
// Movie and Recommendation belong to the catalog and ranking core;
// Field, Details and DisplayRecord carry metadata fetched from TMDb through
// to rendering. Configuration structs live in config.go.
package types

import (
	"math"
	"strconv"
)

// Movie is one catalog entry. ID is the TMDb movie identifier; Title is
// what users select by. Movies are immutable once the catalog is loaded.
type Movie struct {
	ID    int    `json:"movie_id" yaml:"movie_id"`
	Title string `json:"title" yaml:"title"`
}

// Recommendation pairs a catalog movie with its similarity score to the
// query movie. Rank is 1-based and follows descending score order.
type Recommendation struct {
	Rank  int     `json:"rank" yaml:"rank"`
	Movie Movie   `json:"movie" yaml:"movie"`
	Score Score   `json:"score" yaml:"score"`
}

// Score is a similarity value. Matrices may hold NaN or infinite entries,
// which JSON cannot represent, so those encode as null.
type Score float64

// MarshalJSON encodes a finite score as a number and anything else as null.
func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}
