// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "movie-recommender/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig locates the catalog artifacts. Either BundlePath or both
// MoviesPath and MatrixPath must be set; BundlePath wins when present.
type CatalogConfig struct {
	// MoviesPath is the movie list artifact (.json, .yaml or .yml).
	MoviesPath string `json:"movies_path" yaml:"movies_path" mapstructure:"movies_path"`

	// MatrixPath is the similarity matrix artifact (SIMX binary or JSON,
	// optionally gzip-compressed).
	MatrixPath string `json:"matrix_path" yaml:"matrix_path" mapstructure:"matrix_path"`

	// BundlePath is a SQLite bundle produced by the pack command.
	BundlePath string `json:"bundle_path,omitempty" yaml:"bundle_path,omitempty" mapstructure:"bundle_path"`
}

// TMDBConfig holds settings for the TMDb metadata client.
type TMDBConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey authenticates requests (api_key query parameter).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the API root (default https://api.themoviedb.org/3).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// ImageBaseURL prefixes poster paths (default https://image.tmdb.org/t/p/w500).
	ImageBaseURL string `json:"image_base_url" yaml:"image_base_url" mapstructure:"image_base_url"`

	// Language is sent as the language query parameter (default en-US).
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// RequestsPerSecond throttles outgoing calls (default 20).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Workers bounds concurrent metadata fetches per request (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// RecommendConfig holds ranking and filtering defaults.
type RecommendConfig struct {
	// K is the number of recommendations per query (default 10).
	K int `json:"k" yaml:"k" mapstructure:"k"`

	// MinRating is the default minimum TMDb rating shown (default 5.0).
	MinRating float64 `json:"min_rating" yaml:"min_rating" mapstructure:"min_rating"`
}

// ServerConfig holds settings for the web server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// ReadTimeout and WriteTimeout bound each request.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// RateLimit is the number of requests allowed per IP per minute
	// (0 disables rate limiting).
	RateLimit int `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a reverse proxy that sets them;
	// otherwise clients could pick their own rate-limit key.
	TrustProxy bool `json:"trust_proxy" yaml:"trust_proxy" mapstructure:"trust_proxy"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// AppConfig groups all configuration sections.
type AppConfig struct {
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	TMDB      TMDBConfig      `json:"tmdb" yaml:"tmdb" mapstructure:"tmdb"`
	Recommend RecommendConfig `json:"recommend" yaml:"recommend" mapstructure:"recommend"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
