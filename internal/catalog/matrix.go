// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by Matrix accessors for indices outside
// [0, Dim()).
var ErrIndexOutOfRange = errors.New("matrix index out of range")

// Matrix is a dense N×N similarity matrix stored row-major. It is never
// modified after construction.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix wraps data as an n×n matrix. len(data) must equal n*n.
func NewMatrix(n int, data []float64) (*Matrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative matrix dimension %d", n)
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("matrix of dimension %d needs %d values, got %d", n, n*n, len(data))
	}
	return &Matrix{n: n, data: data}, nil
}

// MatrixFromRows builds a matrix from a slice of rows. Every row must have
// len(rows) entries.
func MatrixFromRows(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("matrix is not square: row %d has %d values, want %d", i, len(row), n)
		}
		data = append(data, row...)
	}
	return &Matrix{n: n, data: data}, nil
}

// Dim returns N.
func (m *Matrix) Dim() int { return m.n }

// At returns the score at row i, column j.
func (m *Matrix) At(i, j int) (float64, error) {
	if err := m.check(i); err != nil {
		return 0, err
	}
	if err := m.check(j); err != nil {
		return 0, err
	}
	return m.data[i*m.n+j], nil
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) ([]float64, error) {
	if err := m.check(i); err != nil {
		return nil, err
	}
	row := make([]float64, m.n)
	copy(row, m.data[i*m.n:(i+1)*m.n])
	return row, nil
}

func (m *Matrix) check(i int) error {
	if i < 0 || i >= m.n {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, m.n)
	}
	return nil
}
