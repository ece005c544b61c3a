// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tmdb is a client for the two TMDb endpoints the recommender
// needs: movie details and movie videos. Calls are throttled by a token
// bucket, retried on 429/503, and guarded by a circuit breaker so a TMDb
// outage fails fast instead of stalling every request.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/pdiddy/movie-recommender/internal/httputil"
	"github.com/pdiddy/movie-recommender/internal/logging"
	"github.com/pdiddy/movie-recommender/internal/metrics"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

const (
	DefaultBaseURL           = "https://api.themoviedb.org/3"
	DefaultImageBaseURL      = "https://image.tmdb.org/t/p/w500"
	DefaultLanguage          = "en-US"
	DefaultRequestsPerSecond = 20.0
	DefaultTimeout           = 10 * time.Second
	DefaultUserAgent         = "movie-recommender/0.1"

	// maxBodyBytes bounds a single TMDb response body.
	maxBodyBytes = 4 << 20
)

var (
	// ErrNoTrailer is returned when a movie has no video of type Trailer.
	ErrNoTrailer = fmt.Errorf("trailer %w", types.ErrNotAvailable)

	// ErrMissingField marks a details field TMDb returned empty or null.
	ErrMissingField = fmt.Errorf("field %w from TMDb", types.ErrNotAvailable)
)

// StatusError reports an unexpected HTTP status from TMDb.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDb %s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// Client calls the TMDb API.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	userAgent    string
	maxRetries   int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API root (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLimiter replaces the request throttle.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithBreakerSettings replaces the circuit breaker configuration.
func WithBreakerSettings(s gobreaker.Settings) Option {
	return func(c *Client) { c.breaker = gobreaker.NewCircuitBreaker[[]byte](s) }
}

// NewClient returns a Client configured from cfg. Zero values in cfg fall
// back to the package defaults.
func NewClient(cfg types.TMDBConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	c := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		apiKey:       cfg.APIKey,
		baseURL:      orDefault(cfg.BaseURL, DefaultBaseURL),
		imageBaseURL: orDefault(cfg.ImageBaseURL, DefaultImageBaseURL),
		language:     orDefault(cfg.Language, DefaultLanguage),
		userAgent:    orDefault(cfg.UserAgent, DefaultUserAgent),
		maxRetries:   cfg.MaxRetries,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](DefaultBreakerSettings())

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultBreakerSettings opens the breaker after five consecutive
// failures and probes again after 30 seconds. Client errors other than
// 429 (for example 404 for an unknown movie) do not count as failures.
func DefaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.TMDBBreakerState.Set(float64(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("TMDb circuit breaker changed state")
		},
	}
}

// get fetches path (relative to the API root) with the key and language
// parameters and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{"language": {c.language}}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	defer func() {
		metrics.TMDBRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
		if err != nil {
			metrics.TMDBRequests.WithLabelValues(endpoint, "error").Inc()
			return nil, fmt.Errorf("TMDb %s request: %w", endpoint, err)
		}
		defer resp.Body.Close()

		metrics.TMDBRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("reading TMDb %s response: %w", endpoint, err)
		}
		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.TMDBRequests.WithLabelValues(endpoint, "open").Inc()
		return nil, fmt.Errorf("TMDb %s skipped: %w", endpoint, err)
	}
	return body, err
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
