// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxK bounds the number of recommendations a caller may request.
const MaxK = 50

// ErrInvalidQuery matches every validation failure from Query.Validate.
var ErrInvalidQuery = errors.New("invalid recommendation query")

var validate = validator.New()

// Query is a user request for recommendations. K of zero means the
// Recommender's default.
type Query struct {
	Title     string  `validate:"required"`
	K         int     `validate:"gte=0,lte=50"`
	MinRating float64 `validate:"gte=0,lte=10"`
}

// Validate checks the query bounds: a non-empty title, 0 <= K <= MaxK and
// 0 <= MinRating <= 10.
func (q Query) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Title":
		return "title is required"
	case "K":
		return fmt.Sprintf("k must be between 1 and %d", MaxK)
	case "MinRating":
		return "min_rating must be between 0 and 10"
	default:
		return fe.Error()
	}
}
