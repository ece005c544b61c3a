// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/pdiddy/movie-recommender/internal/logging"
	"github.com/pdiddy/movie-recommender/internal/metadata"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	indexPage   = "index.html"
	resultsPage = "results.html"
	errorPage   = "error.html"
)

// pages are parsed at init time to fail fast on template errors.
var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{indexPage, resultsPage, errorPage} {
		pages[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
}

type pageData struct {
	Titles    []string
	Query     string
	MinRating float64
	Cards     []card
	Status    int
	Message   string
}

// card is one result on the recommendations page. Empty strings mean the
// value is unavailable.
type card struct {
	Rank        int
	Title       string
	Score       float64
	PosterURL   string
	Overview    string
	ReleaseDate string
	Rating      string
	TrailerURL  string
	SearchURL   string
}

func cards(records []types.DisplayRecord) []card {
	out := make([]card, len(records))
	for i, r := range records {
		c := card{
			Rank:        r.Rank,
			Title:       r.Title,
			Score:       float64(r.Score),
			PosterURL:   r.PosterURL.Or(""),
			Overview:    r.Overview.Or(""),
			ReleaseDate: r.ReleaseDate.Or(""),
			TrailerURL:  r.TrailerURL.Or(""),
			SearchURL:   metadata.SearchURL(r.Title),
		}
		if r.Rating.OK() {
			c.Rating = fmt.Sprintf("%.1f/10", r.Rating.Value)
		}
		out[i] = c
	}
	return out
}

// render executes a page into a buffer so a template failure still
// produces a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		logging.Error().Err(err).Str("page", page).Msg("rendering page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, status int, err error) {
	s.render(w, status, errorPage, pageData{Status: status, Message: err.Error()})
}
