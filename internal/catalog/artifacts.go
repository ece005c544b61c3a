// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/movie-recommender/pkg/types"
)

// SIMX is the binary matrix format:
//
//	magic   [4]byte  "SIMX"
//	version uint32   1
//	dim     uint32   N
//	dtype   uint8    4 (float32) or 8 (float64)
//	values  N*N      little-endian, row-major
const (
	simxMagic   = "SIMX"
	simxVersion = 1

	// DTypeFloat32 and DTypeFloat64 select the SIMX value width.
	DTypeFloat32 = 4
	DTypeFloat64 = 8
)

// maxDim bounds the dimension accepted from a SIMX header so a corrupt
// header cannot trigger a huge allocation.
const maxDim = 1 << 16

var gzipMagic = []byte{0x1f, 0x8b}

// movieRecord is the on-disk shape of one movie list entry. Both
// "movie_id" and "id" are accepted for the identifier.
type movieRecord struct {
	MovieID *int   `json:"movie_id" yaml:"movie_id"`
	ID      *int   `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
}

// ReadMovies reads a movie list artifact. The format is chosen by file
// extension: .json, .yaml or .yml (each optionally followed by .gz).
func ReadMovies(path string) ([]types.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := maybeGunzip(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}

	var records []movieRecord
	switch ext := artifactExt(path); ext {
	case ".json":
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("parsing movie list JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("parsing movie list YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported movie list format %q", ext)
	}

	movies := make([]types.Movie, len(records))
	for i, rec := range records {
		m, err := rec.toMovie()
		if err != nil {
			return nil, fmt.Errorf("movie record %d: %w", i, err)
		}
		movies[i] = m
	}
	return movies, nil
}

func (r movieRecord) toMovie() (types.Movie, error) {
	var id int
	switch {
	case r.MovieID != nil:
		id = *r.MovieID
	case r.ID != nil:
		id = *r.ID
	default:
		return types.Movie{}, fmt.Errorf("missing movie_id")
	}
	if strings.TrimSpace(r.Title) == "" {
		return types.Movie{}, fmt.Errorf("missing title for movie %d", id)
	}
	return types.Movie{ID: id, Title: r.Title}, nil
}

// WriteMoviesJSON writes movies in the JSON movie list format.
func WriteMoviesJSON(w io.Writer, movies []types.Movie) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(movies)
}

// ReadMatrix reads a similarity matrix artifact. Gzip compression is
// detected from the content, and so is the encoding: SIMX binary when the
// stream starts with the SIMX magic, JSON rows otherwise.
func ReadMatrix(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := maybeGunzip(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	return DecodeMatrix(r)
}

// DecodeMatrix decodes an uncompressed SIMX or JSON matrix from r.
func DecodeMatrix(r *bufio.Reader) (*Matrix, error) {
	head, err := r.Peek(len(simxMagic))
	if err == nil && string(head) == simxMagic {
		return decodeSIMX(r)
	}

	var rows [][]float64
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("parsing matrix JSON: %w", err)
	}
	return MatrixFromRows(rows)
}

func decodeSIMX(r io.Reader) (*Matrix, error) {
	var hdr struct {
		Magic   [4]byte
		Version uint32
		Dim     uint32
		DType   uint8
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading SIMX header: %w", err)
	}
	if hdr.Version != simxVersion {
		return nil, fmt.Errorf("unsupported SIMX version %d", hdr.Version)
	}
	if hdr.Dim > maxDim {
		return nil, fmt.Errorf("SIMX dimension %d exceeds limit %d", hdr.Dim, maxDim)
	}
	n := int(hdr.Dim)

	// Rows are read one at a time so a truncated file fails before the
	// full matrix is allocated.
	var data []float64
	switch hdr.DType {
	case DTypeFloat32:
		row := make([]float32, n)
		for i := 0; i < n; i++ {
			if err := binary.Read(r, binary.LittleEndian, row); err != nil {
				return nil, fmt.Errorf("reading SIMX row %d: %w", i, err)
			}
			for _, v := range row {
				data = append(data, float64(v))
			}
		}
	case DTypeFloat64:
		row := make([]float64, n)
		for i := 0; i < n; i++ {
			if err := binary.Read(r, binary.LittleEndian, row); err != nil {
				return nil, fmt.Errorf("reading SIMX row %d: %w", i, err)
			}
			data = append(data, row...)
		}
	default:
		return nil, fmt.Errorf("unsupported SIMX dtype %d", hdr.DType)
	}
	if n == 0 {
		data = []float64{}
	}
	return NewMatrix(n, data)
}

// EncodeSIMX writes m in SIMX format with the given dtype.
func EncodeSIMX(w io.Writer, m *Matrix, dtype uint8) error {
	if dtype != DTypeFloat32 && dtype != DTypeFloat64 {
		return fmt.Errorf("unsupported SIMX dtype %d", dtype)
	}
	hdr := struct {
		Magic   [4]byte
		Version uint32
		Dim     uint32
		DType   uint8
	}{Version: simxVersion, Dim: uint32(m.Dim()), DType: dtype}
	copy(hdr.Magic[:], simxMagic)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return err
	}
	if dtype == DTypeFloat64 {
		if err := binary.Write(bw, binary.LittleEndian, m.data); err != nil {
			return err
		}
		return bw.Flush()
	}
	buf := make([]byte, 4)
	for _, v := range m.data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMatrixFile writes m to path in SIMX format, gzip-compressed when
// the path ends in .gz.
func WriteMatrixFile(path string, m *Matrix, dtype uint8) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, ".gz") {
		return EncodeSIMX(f, m, dtype)
	}
	zw := gzip.NewWriter(f)
	if err := EncodeSIMX(zw, m, dtype); err != nil {
		return err
	}
	return zw.Close()
}

// maybeGunzip returns a reader that transparently decompresses r when it
// starts with the gzip magic bytes.
func maybeGunzip(r *bufio.Reader) (*bufio.Reader, error) {
	head, err := r.Peek(len(gzipMagic))
	if err != nil || !bytes.Equal(head, gzipMagic) {
		return r, nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	return bufio.NewReader(zr), nil
}

// artifactExt returns the lowercase extension of path ignoring a trailing .gz.
func artifactExt(path string) string {
	p := strings.ToLower(path)
	p = strings.TrimSuffix(p, ".gz")
	return filepath.Ext(p)
}
