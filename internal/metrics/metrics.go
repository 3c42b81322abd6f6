// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ValuesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tablesort_values_classified_total",
		Help: "Total number of cell values classified, by detected kind.",
	}, []string{"kind"})

	Sorts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tablesort_sorts_total",
		Help: "Total number of table sorts, by input source.",
	}, []string{"source"})

	SortErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tablesort_sort_errors_total",
		Help: "Total number of rejected sort requests, by input source.",
	}, []string{"source"})

	RuleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tablesort_row_rule_errors_total",
		Help: "Total number of row rule evaluations that failed, by input source.",
	}, []string{"source"})

	SortDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tablesort_sort_duration_seconds",
		Help:    "Duration of table sorts.",
		Buckets: prometheus.DefBuckets,
	})

	ActiveSorts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tablesort_active_sorts",
		Help: "Number of sorts currently running.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tablesort_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter.",
	})
)

// Sort sources.
const (
	SourceJSON = "json"
	SourceHTML = "html"
)
