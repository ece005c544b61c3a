// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/movie-recommender/pkg/types"
)

const googleSearchBase = "https://www.google.com/search?q="

// SearchURL returns a Google search link for title.
func SearchURL(title string) string {
	return googleSearchBase + strings.ReplaceAll(url.QueryEscape(title), "+", "%20")
}

// RecordView is the JSON shape of a display record. Unavailable fields
// encode as null and their reasons are listed under errors.
type RecordView struct {
	Rank        int                  `json:"rank"`
	MovieID     int                  `json:"movie_id"`
	Title       string               `json:"title"`
	Score       types.Score          `json:"score"`
	PosterURL   types.Field[string]  `json:"poster_url"`
	Overview    types.Field[string]  `json:"overview"`
	ReleaseDate types.Field[string]  `json:"release_date"`
	Rating      types.Field[float64] `json:"rating"`
	TrailerURL  types.Field[string]  `json:"trailer_url"`
	SearchURL   string               `json:"search_url"`
	Errors      map[string]string    `json:"errors,omitempty"`
}

// View converts records to their JSON shape.
func View(records []types.DisplayRecord) []RecordView {
	views := make([]RecordView, len(records))
	for i, r := range records {
		views[i] = RecordView{
			Rank:        r.Rank,
			MovieID:     r.MovieID,
			Title:       r.Title,
			Score:       r.Score,
			PosterURL:   r.PosterURL,
			Overview:    r.Overview,
			ReleaseDate: r.ReleaseDate,
			Rating:      r.Rating,
			TrailerURL:  r.TrailerURL,
			SearchURL:   SearchURL(r.Title),
			Errors:      r.FieldErrors(),
		}
	}
	return views
}

// FormatTable writes display records as a human-readable table.
func FormatTable(query string, minRating float64, records []types.DisplayRecord, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintf(w, "No recommendations for %q at minimum rating %.1f.\n", query, minRating)
		return
	}

	fmt.Fprintf(w, "Recommended movies for %q (minimum rating %.1f)\n\n", query, minRating)
	fmt.Fprintf(w, "%-4s  %-40s  %-10s  %-6s  %-6s  %s\n",
		"Rank", "Title", "Released", "Rating", "Score", "Trailer")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range records {
		rating := "n/a"
		if r.Rating.OK() {
			rating = fmt.Sprintf("%.1f", r.Rating.Value)
		}
		fmt.Fprintf(w, "%-4d  %-40s  %-10s  %-6s  %-6.3f  %s\n",
			r.Rank,
			truncate(r.Title, 40),
			r.ReleaseDate.Or("n/a"),
			rating,
			r.Score,
			r.TrailerURL.Or("not available"))
	}

	fmt.Fprintf(w, "\n%d results\n", len(records))
}

// FormatJSON writes display records as indented JSON.
func FormatJSON(records []types.DisplayRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(View(records))
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
