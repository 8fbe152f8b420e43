package seo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// URLsRegistered tracks the number of new URLs registered.
	URLsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagewatch_urls_registered_total",
		Help: "The total number of URLs registered.",
	})
	// ChecksSucceeded tracks the number of checks that were persisted.
	ChecksSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagewatch_checks_total",
		Help: "The total number of successfully persisted checks.",
	})
	// CheckFailures tracks checks aborted by a fetch failure.
	CheckFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagewatch_check_failures_total",
		Help: "The total number of checks that failed to reach the target.",
	})
	// FetchDuration observes how long outbound GETs take.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagewatch_fetch_duration_seconds",
		Help:    "Duration of outbound page fetches.",
		Buckets: prometheus.DefBuckets,
	})
)
