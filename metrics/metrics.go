package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iqw_token_refreshes_total",
			Help: "Upstream OAuth token refresh attempts by outcome",
		},
		[]string{"outcome"},
	)

	TokenCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iqw_token_cache_hits_total",
			Help: "Token requests served from the in-process cache",
		},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iqw_upstream_requests_total",
			Help: "Upstream API requests by endpoint and status class",
		},
		[]string{"endpoint", "status"},
	)

	DocumentsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iqw_documents_parsed_total",
			Help: "Evidence documents parsed by outcome (records or empty)",
		},
		[]string{"outcome"},
	)

	EmailsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iqw_emails_extracted_total",
			Help: "Email records extracted from evidence documents",
		},
	)

	ExtractionCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iqw_extraction_cache_total",
			Help: "Extraction cache lookups by result",
		},
		[]string{"result"},
	)
)
