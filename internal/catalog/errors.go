// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
)

// ErrDataLoad matches every *DataLoadError via errors.Is.
var ErrDataLoad = errors.New("catalog data load failed")

// ErrDimensionMismatch reports a movie list whose length differs from the
// matrix dimension.
var ErrDimensionMismatch = errors.New("movie count does not match matrix dimension")

// DataLoadError reports a missing, malformed or inconsistent catalog
// artifact. It is fatal: the application cannot serve without a catalog.
type DataLoadError struct {
	// Path is the artifact that failed, empty when the failure concerns
	// the pairing of two artifacts.
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loading catalog: %v", e.Err)
	}
	return fmt.Sprintf("loading catalog artifact %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDataLoad) match any DataLoadError.
func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }
