// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movierec"

var (
	// CatalogMovies is the number of movies in the loaded catalog.
	CatalogMovies = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_movies",
		Help:      "Number of movies in the loaded catalog.",
	})

	// Recommendations counts recommendation requests by outcome:
	// ok, unknown_movie, invalid, error.
	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Recommendation requests by outcome.",
	}, []string{"outcome"})

	// TMDBRequests counts TMDb API calls by endpoint and result status
	// (HTTP status code, "error" for transport failures, "open" when the
	// circuit breaker rejected the call).
	TMDBRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tmdb_requests_total",
		Help:      "TMDb API calls by endpoint and status.",
	}, []string{"endpoint", "status"})

	// TMDBRequestDuration observes TMDb call latency including retries.
	TMDBRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tmdb_request_duration_seconds",
		Help:      "TMDb API call latency including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	// TMDBBreakerState is 0 closed, 1 half-open, 2 open.
	TMDBBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tmdb_circuit_breaker_state",
		Help:      "TMDb circuit breaker state (0 closed, 1 half-open, 2 open).",
	})

	// MetadataFieldFailures counts display fields rendered as unavailable.
	MetadataFieldFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metadata_field_failures_total",
		Help:      "Display fields that could not be fetched, by field.",
	}, []string{"field"})

	// HTTPRequestDuration observes web handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Web request latency by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
