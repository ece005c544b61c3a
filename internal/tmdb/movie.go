// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tmdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/movie-recommender/pkg/types"
)

const youtubeEmbedBase = "https://www.youtube.com/embed/"

// FetchDetails returns the poster URL, overview, release date and rating
// for movieID. A transport, status or decoding failure is returned as an
// error. Fields TMDb leaves empty come back unavailable with
// ErrMissingField while the others stay usable.
func (c *Client) FetchDetails(ctx context.Context, movieID int) (types.Details, error) {
	body, err := c.get(ctx, "details", fmt.Sprintf("/movie/%d", movieID))
	if err != nil {
		return types.Details{}, err
	}

	var md movieDetails
	if err := json.Unmarshal(body, &md); err != nil {
		return types.Details{}, fmt.Errorf("parsing TMDb details for movie %d: %w", movieID, err)
	}
	return c.toDetails(md), nil
}

func (c *Client) toDetails(md movieDetails) types.Details {
	var d types.Details

	if p := derefString(md.PosterPath); p != "" {
		d.PosterURL = types.Available(c.PosterURL(p))
	} else {
		d.PosterURL = types.Unavailable[string](fmt.Errorf("poster: %w", ErrMissingField))
	}

	if o := derefString(md.Overview); o != "" {
		d.Overview = types.Available(o)
	} else {
		d.Overview = types.Unavailable[string](fmt.Errorf("overview: %w", ErrMissingField))
	}

	if r := derefString(md.ReleaseDate); r != "" {
		d.ReleaseDate = types.Available(r)
	} else {
		d.ReleaseDate = types.Unavailable[string](fmt.Errorf("release date: %w", ErrMissingField))
	}

	if md.VoteAverage != nil {
		d.Rating = types.Available(*md.VoteAverage)
	} else {
		d.Rating = types.Unavailable[float64](fmt.Errorf("rating: %w", ErrMissingField))
	}
	return d
}

// PosterURL builds the full image URL for a TMDb poster path.
func (c *Client) PosterURL(posterPath string) string {
	return strings.TrimRight(c.imageBaseURL, "/") + "/" + strings.TrimLeft(posterPath, "/")
}

// FetchTrailer returns a YouTube embed URL for the first video of type
// Trailer, or ErrNoTrailer when there is none.
func (c *Client) FetchTrailer(ctx context.Context, movieID int) (string, error) {
	body, err := c.get(ctx, "videos", fmt.Sprintf("/movie/%d/videos", movieID))
	if err != nil {
		return "", err
	}

	var vr videosResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return "", fmt.Errorf("parsing TMDb videos for movie %d: %w", movieID, err)
	}

	for _, v := range vr.Results {
		if v.Type != "Trailer" || v.Key == "" {
			continue
		}
		if v.Site != "" && !strings.EqualFold(v.Site, "YouTube") {
			continue
		}
		return youtubeEmbedBase + v.Key, nil
	}
	return "", ErrNoTrailer
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// TMDb API JSON structures.
type movieDetails struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	PosterPath  *string  `json:"poster_path"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"`
	VoteAverage *float64 `json:"vote_average"`
	VoteCount   int      `json:"vote_count"`
}

type videosResponse struct {
	ID      int         `json:"id"`
	Results []videoInfo `json:"results"`
}

type videoInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}
