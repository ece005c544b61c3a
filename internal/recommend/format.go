// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/movie-recommender/pkg/types"
)

// FormatTable writes score-only recommendations as a human-readable table.
func FormatTable(query string, recs []types.Recommendation, w io.Writer) {
	if len(recs) == 0 {
		fmt.Fprintf(w, "No recommendations for %q.\n", query)
		return
	}

	fmt.Fprintf(w, "Movies similar to %q\n\n", query)
	fmt.Fprintf(w, "%-4s  %-50s  %-8s  %s\n", "Rank", "Title", "TMDb ID", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 76))
	for _, r := range recs {
		fmt.Fprintf(w, "%-4d  %-50s  %-8d  %.4f\n", r.Rank, truncate(r.Movie.Title, 50), r.Movie.ID, r.Score)
	}
}

// FormatJSON writes recommendations as indented JSON.
func FormatJSON(recs []types.Recommendation, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
