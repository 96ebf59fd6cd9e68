// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EnquiriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiries_total",
			Help: "Total number of enquiries dispatched per module",
		},
		[]string{"module"},
	)

	EnquiryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiry_failures_total",
			Help: "Total number of failed enquiry dispatches",
		},
		[]string{"module", "error_code"},
	)

	EnquiryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "enquiry_duration_seconds",
			Help: "Duration of one dispatch, query round trip included",
		},
		[]string{"module"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiry_cache_hits_total",
			Help: "Rendered responses served from the cache",
		},
		[]string{"module"},
	)

	FiltersIgnored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_values_ignored_total",
			Help: "Optional filter values dropped because they failed to parse",
		},
		[]string{"module", "param"},
	)
)
