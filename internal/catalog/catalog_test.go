// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/movie-recommender/pkg/types"
)

// --- test helpers ---

var fixtureMovies = []types.Movie{
	{ID: 1, Title: "A"},
	{ID: 2, Title: "B"},
	{ID: 3, Title: "C"},
	{ID: 4, Title: "D"},
}

var fixtureRows = [][]float64{
	{1.0, 0.9, 0.5, 0.9},
	{0.9, 1.0, 0.2, 0.3},
	{0.5, 0.2, 1.0, 0.7},
	{0.9, 0.3, 0.7, 1.0},
}

func fixtureMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := MatrixFromRows(fixtureRows)
	require.NoError(t, err)
	return m
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// --- Matrix ---

func TestMatrix_BoundsChecked(t *testing.T) {
	m := fixtureMatrix(t)
	assert.Equal(t, 4, m.Dim())

	v, err := m.At(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)

	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		_, err := m.At(idx[0], idx[1])
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "At(%d,%d)", idx[0], idx[1])
	}

	_, err = m.Row(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMatrix_RowIsCopy(t *testing.T) {
	m := fixtureMatrix(t)
	row, err := m.Row(0)
	require.NoError(t, err)
	row[1] = -5

	v, err := m.At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)
}

func TestMatrixFromRows_NotSquare(t *testing.T) {
	_, err := MatrixFromRows([][]float64{{1, 2}, {3}})
	assert.ErrorContains(t, err, "not square")
}

func TestNewMatrix_WrongLength(t *testing.T) {
	_, err := NewMatrix(2, []float64{1, 2, 3})
	assert.Error(t, err)
}

// --- Catalog ---

func TestNew_DimensionMismatch(t *testing.T) {
	_, err := New(fixtureMovies[:3], fixtureMatrix(t))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNew_FirstTitleWinsAndDuplicatesReported(t *testing.T) {
	movies := []types.Movie{
		{ID: 10, Title: "Heat"},
		{ID: 11, Title: "Alien"},
		{ID: 12, Title: "Heat"},
		{ID: 13, Title: "Heat"},
	}
	c, err := New(movies, fixtureMatrix(t))
	require.NoError(t, err)

	idx, ok := c.IndexOf("Heat")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []string{"Heat"}, c.DuplicateTitles())
	assert.Equal(t, []string{"Heat", "Alien", "Heat", "Heat"}, c.Titles())

	_, ok = c.IndexOf("heat")
	assert.False(t, ok, "lookup is exact")
}

func TestCatalog_MovieOutOfRange(t *testing.T) {
	c, err := New(fixtureMovies, fixtureMatrix(t))
	require.NoError(t, err)

	m, err := c.Movie(2)
	require.NoError(t, err)
	assert.Equal(t, types.Movie{ID: 3, Title: "C"}, m)

	_, err = c.Movie(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

// --- ReadMovies ---

func TestReadMovies(t *testing.T) {
	dir := t.TempDir()
	jsonList := []byte(`[{"movie_id": 19995, "title": "Avatar"}, {"id": 285, "title": "Pirates of the Caribbean: At World's End"}]`)
	yamlList := []byte("- movie_id: 19995\n  title: Avatar\n- id: 285\n  title: \"Pirates of the Caribbean: At World's End\"\n")
	want := []types.Movie{
		{ID: 19995, Title: "Avatar"},
		{ID: 285, Title: "Pirates of the Caribbean: At World's End"},
	}

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"json", "movies.json", jsonList},
		{"yaml", "movies.yaml", yamlList},
		{"yml", "movies.yml", yamlList},
		{"gzipped json", "movies.json.gz", gzipBytes(t, jsonList)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.data)
			got, err := ReadMovies(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReadMovies_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		file   string
		data   string
		errMsg string
	}{
		{"missing id", "a.json", `[{"title": "Avatar"}]`, "missing movie_id"},
		{"missing title", "b.json", `[{"movie_id": 1}]`, "missing title"},
		{"malformed json", "c.json", `[{"movie_id": 1,`, "parsing movie list JSON"},
		{"unknown extension", "d.csv", "movie_id,title\n", "unsupported movie list format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, []byte(tt.data))
			_, err := ReadMovies(path)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

// --- ReadMatrix ---

func TestReadMatrix_Formats(t *testing.T) {
	dir := t.TempDir()
	m := fixtureMatrix(t)

	var f64, f32 bytes.Buffer
	require.NoError(t, EncodeSIMX(&f64, m, DTypeFloat64))
	require.NoError(t, EncodeSIMX(&f32, m, DTypeFloat32))
	jsonRows := []byte(`[[1.0,0.9,0.5,0.9],[0.9,1.0,0.2,0.3],[0.5,0.2,1.0,0.7],[0.9,0.3,0.7,1.0]]`)

	tests := []struct {
		name  string
		data  []byte
		delta float64
	}{
		{"simx float64", f64.Bytes(), 0},
		{"simx float32", f32.Bytes(), 1e-6},
		{"gzipped simx", gzipBytes(t, f64.Bytes()), 0},
		{"json", jsonRows, 0},
		{"gzipped json", gzipBytes(t, jsonRows), 0},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, filepath.Base(t.Name())+string(rune('a'+i)), tt.data)
			got, err := ReadMatrix(path)
			require.NoError(t, err)
			require.Equal(t, 4, got.Dim())
			for r := range fixtureRows {
				row, err := got.Row(r)
				require.NoError(t, err)
				assert.InDeltaSlice(t, fixtureRows[r], row, tt.delta)
			}
		})
	}
}

func TestReadMatrix_Errors(t *testing.T) {
	dir := t.TempDir()
	var full bytes.Buffer
	require.NoError(t, EncodeSIMX(&full, fixtureMatrix(t), DTypeFloat64))

	badVersion := append([]byte(nil), full.Bytes()...)
	badVersion[4] = 9

	badDType := append([]byte(nil), full.Bytes()...)
	badDType[12] = 3

	tests := []struct {
		name   string
		data   []byte
		errMsg string
	}{
		{"truncated simx", full.Bytes()[:full.Len()-8], "reading SIMX row 3"},
		{"bad version", badVersion, "unsupported SIMX version"},
		{"bad dtype", badDType, "unsupported SIMX dtype"},
		{"ragged json", []byte(`[[1,2],[3]]`), "not square"},
		{"not a matrix", []byte(`{"rows": 2}`), "parsing matrix JSON"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, string(rune('a'+i))+".bin", tt.data)
			_, err := ReadMatrix(path)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestDecodeMatrix_EmptyJSON(t *testing.T) {
	m, err := DecodeMatrix(bufio.NewReader(bytes.NewReader([]byte("[]"))))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Dim())
}

func TestWriteMatrixFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "similarity.simx.gz")
	require.NoError(t, WriteMatrixFile(path, fixtureMatrix(t), DTypeFloat32))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, gzipMagic, raw[:2])

	m, err := ReadMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Dim())
}

// --- Load ---

func writeArtifacts(t *testing.T, movies []types.Movie, m *Matrix) types.CatalogConfig {
	t.Helper()
	dir := t.TempDir()
	var list bytes.Buffer
	require.NoError(t, WriteMoviesJSON(&list, movies))
	cfg := types.CatalogConfig{
		MoviesPath: writeFile(t, dir, "movies.json", list.Bytes()),
		MatrixPath: filepath.Join(dir, "similarity.simx.gz"),
	}
	require.NoError(t, WriteMatrixFile(cfg.MatrixPath, m, DTypeFloat64))
	return cfg
}

func TestLoad_Files(t *testing.T) {
	cfg := writeArtifacts(t, fixtureMovies, fixtureMatrix(t))
	c, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, fixtureMovies, c.Movies())
}

func TestLoad_DataLoadErrors(t *testing.T) {
	good := writeArtifacts(t, fixtureMovies, fixtureMatrix(t))
	mismatch := writeArtifacts(t, fixtureMovies[:3], fixtureMatrix(t))

	tests := []struct {
		name     string
		cfg      types.CatalogConfig
		wantPath string
		wantErr  error
	}{
		{"missing movie list", types.CatalogConfig{MoviesPath: "/nonexistent/movies.json", MatrixPath: good.MatrixPath}, "/nonexistent/movies.json", os.ErrNotExist},
		{"missing matrix", types.CatalogConfig{MoviesPath: good.MoviesPath, MatrixPath: "/nonexistent/sim.gz"}, "/nonexistent/sim.gz", os.ErrNotExist},
		{"dimension mismatch", mismatch, "", ErrDimensionMismatch},
		{"no paths", types.CatalogConfig{}, "", nil},
		{"missing bundle", types.CatalogConfig{BundlePath: "/nonexistent/catalog.db"}, "/nonexistent/catalog.db", os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataLoad)

			var dle *DataLoadError
			require.True(t, errors.As(err, &dle))
			assert.Equal(t, tt.wantPath, dle.Path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// --- Bundle ---

func TestBundle_RoundTrip(t *testing.T) {
	c, err := New(fixtureMovies, fixtureMatrix(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.db")
	require.NoError(t, WriteBundle(context.Background(), path, c))

	got, err := Load(context.Background(), types.CatalogConfig{BundlePath: path})
	require.NoError(t, err)
	assert.Equal(t, fixtureMovies, got.Movies())
	for i := range fixtureRows {
		row, err := got.Row(i)
		require.NoError(t, err)
		assert.Equal(t, fixtureRows[i], row)
	}
}

func TestBundle_PathWithURISpecialCharacters(t *testing.T) {
	c, err := New(fixtureMovies, fixtureMatrix(t))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "run#1")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "catalog?v=2 100%.db")

	require.NoError(t, WriteBundle(context.Background(), path, c))
	_, err = os.Stat(path)
	require.NoError(t, err, "bundle must be written at the literal path")

	got, err := LoadBundle(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, fixtureMovies, got.Movies())
}

func TestBundleDSN(t *testing.T) {
	assert.Equal(t, "file:data/catalog.db?mode=ro", bundleDSN("data/catalog.db", "ro"))
	assert.Equal(t, "file:/tmp/a%3fb%23c%25d.db?mode=rwc", bundleDSN("/tmp/a?b#c%d.db", "rwc"))
}

func TestWriteBundle_RefusesExistingFile(t *testing.T) {
	c, err := New(fixtureMovies, fixtureMatrix(t))
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "catalog.db", []byte("x"))
	err = WriteBundle(context.Background(), path, c)
	assert.ErrorContains(t, err, "already exists")
}

// --- Store ---

func TestStore_LoadsOnce(t *testing.T) {
	c, err := New(fixtureMovies, fixtureMatrix(t))
	require.NoError(t, err)

	var calls int32
	s := &Store{load: func() (*Catalog, error) {
		atomic.AddInt32(&calls, 1)
		return c, nil
	}}

	var wg sync.WaitGroup
	results := make([]*Catalog, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.Catalog()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Same(t, c, r)
	}
}

func TestStore_CachesFailure(t *testing.T) {
	var calls int32
	s := &Store{load: func() (*Catalog, error) {
		atomic.AddInt32(&calls, 1)
		return nil, &DataLoadError{Path: "movies.json", Err: os.ErrNotExist}
	}}

	_, err1 := s.Catalog()
	_, err2 := s.Catalog()
	assert.ErrorIs(t, err1, ErrDataLoad)
	assert.Same(t, err1, err2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewStore_FromConfig(t *testing.T) {
	cfg := writeArtifacts(t, fixtureMovies, fixtureMatrix(t))
	s := NewStore(cfg)

	first, err := s.Catalog()
	require.NoError(t, err)
	second, err := s.Catalog()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 4, first.Len())
}
