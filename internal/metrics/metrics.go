// Package metrics provides Prometheus metrics for the companion service.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bmc_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Catalog Metrics
	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bmc_catalog_size",
			Help: "Number of cards in the loaded catalog",
		},
	)

	CatalogRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bmc_catalog_refreshes_total",
			Help: "Total number of catalog feed refreshes",
		},
	)

	// Matching Metrics
	MatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmc_match_requests_total",
			Help: "Product resolution requests by outcome",
		},
		[]string{"result"}, // "matched", "unmatched", "excluded"
	)

	// Import Metrics
	ImportSessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bmc_import_sessions_total",
			Help: "Total number of deck import sessions created",
		},
	)

	CartSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmc_cart_submissions_total",
			Help: "Cart submission attempts by outcome",
		},
		[]string{"result"}, // "success", "failure", "not_found"
	)

	// Price Lookup Metrics
	PriceLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmc_price_lookups_total",
			Help: "Price lookups by source",
		},
		[]string{"source"}, // "cache", "api", "unavailable", "error"
	)

	PriceLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bmc_price_lookup_duration_seconds",
			Help:    "Price API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
)
