// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/movie-recommender/pkg/types"
)

// A bundle is a single SQLite file holding both catalog artifacts:
//
//	movies(position, movie_id, title)  one row per catalog position
//	similarity(position, scores)       scores is N little-endian float64 values
var bundleSchema = []string{
	`CREATE TABLE movies (
		position INTEGER PRIMARY KEY,
		movie_id INTEGER NOT NULL,
		title TEXT NOT NULL
	)`,
	`CREATE TABLE similarity (
		position INTEGER PRIMARY KEY,
		scores BLOB NOT NULL
	)`,
}

// WriteBundle writes c to a new SQLite bundle at path. An existing file
// at path is an error.
func WriteBundle(ctx context.Context, path string, c *Catalog) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("bundle %s already exists", path)
	}

	db, err := sql.Open("sqlite3", bundleDSN(path, "rwc"))
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer db.Close()

	for _, stmt := range bundleSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating bundle schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	movieStmt, err := tx.PrepareContext(ctx, `INSERT INTO movies (position, movie_id, title) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing movie insert: %w", err)
	}
	defer movieStmt.Close()

	rowStmt, err := tx.PrepareContext(ctx, `INSERT INTO similarity (position, scores) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing similarity insert: %w", err)
	}
	defer rowStmt.Close()

	for i, m := range c.movies {
		if _, err := movieStmt.ExecContext(ctx, i, m.ID, m.Title); err != nil {
			return fmt.Errorf("inserting movie %d: %w", i, err)
		}
		row, err := c.matrix.Row(i)
		if err != nil {
			return err
		}
		if _, err := rowStmt.ExecContext(ctx, i, encodeRow(row)); err != nil {
			return fmt.Errorf("inserting similarity row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bundle: %w", err)
	}
	return nil
}

// LoadBundle reads a catalog from the SQLite bundle at path. The bundle is
// opened read-only. Positions must be contiguous from 0 and every
// similarity row must hold exactly one value per movie.
func LoadBundle(ctx context.Context, path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", bundleDSN(path, "ro"))
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}
	defer db.Close()

	movieRows, err := db.QueryContext(ctx, `SELECT position, movie_id, title FROM movies ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying movies: %w", err)
	}
	defer movieRows.Close()

	var movies []types.Movie
	for movieRows.Next() {
		var pos int
		var m types.Movie
		if err := movieRows.Scan(&pos, &m.ID, &m.Title); err != nil {
			return nil, fmt.Errorf("scanning movie: %w", err)
		}
		if pos != len(movies) {
			return nil, fmt.Errorf("movie positions not contiguous: expected %d, got %d", len(movies), pos)
		}
		movies = append(movies, m)
	}
	if err := movieRows.Err(); err != nil {
		return nil, fmt.Errorf("reading movies: %w", err)
	}

	n := len(movies)
	simRows, err := db.QueryContext(ctx, `SELECT position, scores FROM similarity ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying similarity: %w", err)
	}
	defer simRows.Close()

	data := make([]float64, 0, n*n)
	count := 0
	for simRows.Next() {
		var pos int
		var blob []byte
		if err := simRows.Scan(&pos, &blob); err != nil {
			return nil, fmt.Errorf("scanning similarity row: %w", err)
		}
		if pos != count {
			return nil, fmt.Errorf("similarity positions not contiguous: expected %d, got %d", count, pos)
		}
		row, err := decodeRow(blob, n)
		if err != nil {
			return nil, fmt.Errorf("similarity row %d: %w", pos, err)
		}
		data = append(data, row...)
		count++
	}
	if err := simRows.Err(); err != nil {
		return nil, fmt.Errorf("reading similarity: %w", err)
	}
	if count != n {
		return nil, fmt.Errorf("%w: %d movies, %d similarity rows", ErrDimensionMismatch, n, count)
	}

	m, err := NewMatrix(n, data)
	if err != nil {
		return nil, err
	}
	return New(movies, m)
}

// uriEscaper escapes the characters that end or alter the path part of an
// SQLite file: URI.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// bundleDSN builds a file: URI for path opened with the given SQLite mode.
func bundleDSN(path, mode string) string {
	return "file:" + uriEscaper.Replace(path) + "?mode=" + mode
}

func encodeRow(row []float64) []byte {
	buf := make([]byte, 8*len(row))
	for i, v := range row {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeRow(blob []byte, n int) ([]float64, error) {
	if len(blob) != 8*n {
		return nil, fmt.Errorf("%w: row has %d bytes, want %d", ErrDimensionMismatch, len(blob), 8*n)
	}
	row := make([]float64, n)
	for i := range row {
		row[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}
	return row, nil
}
