// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"

	"github.com/goccy/go-json"
)

// ErrNotAvailable marks a metadata value the remote service does not have,
// as opposed to a failed call. Gateways wrap it in their own errors.
var ErrNotAvailable = errors.New("not available")

// Field is a single metadata value that may have failed to load. A Field
// is either available (OK reports true and Value is set) or unavailable,
// in which case Err holds the reason when one is known. The zero Field is
// unavailable with no error, meaning the value was never fetched.
type Field[T any] struct {
	Value T
	Err   error
	ok    bool
}

// Available returns a Field holding v.
func Available[T any](v T) Field[T] {
	return Field[T]{Value: v, ok: true}
}

// Unavailable returns a Field that failed with err.
func Unavailable[T any](err error) Field[T] {
	return Field[T]{Err: err}
}

// OK reports whether the value was fetched.
func (f Field[T]) OK() bool { return f.ok }

// Or returns the value when available and fallback otherwise.
func (f Field[T]) Or(fallback T) T {
	if f.ok {
		return f.Value
	}
	return fallback
}

// MarshalJSON encodes an available Field as its value and an unavailable
// one as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.ok {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Details holds the fields returned by a single TMDb movie details call.
// Each field is tracked separately because the API may omit any of them.
type Details struct {
	PosterURL   Field[string]
	Overview    Field[string]
	ReleaseDate Field[string]
	Rating      Field[float64]
}

// DisplayRecord is everything the presentation layer shows for one
// recommended movie. Title, MovieID, Rank and Score come from the catalog
// and always exist; the remaining fields come from TMDb.
type DisplayRecord struct {
	Rank        int
	MovieID     int
	Title       string
	Score       Score
	PosterURL   Field[string]
	Overview    Field[string]
	ReleaseDate Field[string]
	Rating      Field[float64]
	TrailerURL  Field[string]
}

// FieldErrors returns the error message of every unavailable field keyed
// by field name. Fields that were never fetched are skipped.
func (r DisplayRecord) FieldErrors() map[string]string {
	errs := make(map[string]string)
	add := func(name string, err error) {
		if err != nil {
			errs[name] = err.Error()
		}
	}
	add("poster_url", r.PosterURL.Err)
	add("overview", r.Overview.Err)
	add("release_date", r.ReleaseDate.Err)
	add("rating", r.Rating.Err)
	add("trailer_url", r.TrailerURL.Err)
	if len(errs) == 0 {
		return nil
	}
	return errs
}
