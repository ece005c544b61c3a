// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/movie-recommender/internal/catalog"
	"github.com/pdiddy/movie-recommender/internal/logging"
	"github.com/pdiddy/movie-recommender/internal/metadata"
	"github.com/pdiddy/movie-recommender/internal/metrics"
	"github.com/pdiddy/movie-recommender/internal/recommend"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

// recommendationsResponse is the body of GET /api/v1/recommendations.
type recommendationsResponse struct {
	Query     string                `json:"query"`
	MinRating float64               `json:"min_rating"`
	Results   []metadata.RecordView `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	titles, err := s.rec.Titles()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "movies": len(titles)})
}

func (s *Server) handleTitles(w http.ResponseWriter, _ *http.Request) {
	titles, err := s.rec.Titles()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err == nil {
		var records []types.DisplayRecord
		records, err = s.run(r.Context(), q)
		if err == nil {
			writeJSON(w, http.StatusOK, recommendationsResponse{
				Query:     q.Title,
				MinRating: q.MinRating,
				Results:   metadata.View(records),
			})
			return
		}
	}
	writeError(w, statusFor(err), err.Error())
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	titles, err := s.rec.Titles()
	if err != nil {
		s.renderError(w, statusFor(err), err)
		return
	}
	s.render(w, http.StatusOK, indexPage, pageData{Titles: titles, MinRating: s.minRating})
}

func (s *Server) handleRecommendPage(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.renderError(w, statusFor(err), err)
		return
	}
	records, err := s.run(r.Context(), q)
	if err != nil {
		s.renderError(w, statusFor(err), err)
		return
	}
	s.render(w, http.StatusOK, resultsPage, pageData{
		Query:     q.Title,
		MinRating: q.MinRating,
		Cards:     cards(records),
	})
}

// run validates q, ranks, enriches and filters.
func (s *Server) run(ctx context.Context, q recommend.Query) ([]types.DisplayRecord, error) {
	if err := q.Validate(); err != nil {
		metrics.Recommendations.WithLabelValues("invalid").Inc()
		return nil, err
	}

	recs, err := s.rec.Recommend(q.Title, q.K)
	if err != nil {
		outcome := "error"
		if errors.Is(err, recommend.ErrUnknownMovie) {
			outcome = "unknown_movie"
		}
		metrics.Recommendations.WithLabelValues(outcome).Inc()
		return nil, err
	}

	records := metadata.FilterByRating(s.enricher.Enrich(ctx, recs), q.MinRating)
	metrics.Recommendations.WithLabelValues("ok").Inc()
	logging.Debug().Str("title", q.Title).Int("ranked", len(recs)).Int("shown", len(records)).
		Float64("min_rating", q.MinRating).Msg("recommendations served")
	return records, nil
}

// parseQuery reads title, k and min_rating. The title is kept verbatim
// since catalog lookup is exact. A missing min_rating falls back to the
// server default; a missing k to the recommender's.
func (s *Server) parseQuery(r *http.Request) (recommend.Query, error) {
	v := r.URL.Query()
	q := recommend.Query{
		Title:     v.Get("title"),
		MinRating: s.minRating,
	}

	if raw := strings.TrimSpace(v.Get("k")); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: k must be an integer", recommend.ErrInvalidQuery)
		}
		q.K = k
	}
	if raw := strings.TrimSpace(v.Get("min_rating")); raw != "" {
		mr, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("%w: min_rating must be a number", recommend.ErrInvalidQuery)
		}
		q.MinRating = mr
	}
	return q, nil
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, recommend.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, recommend.ErrUnknownMovie):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDataLoad):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("encoding response")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
