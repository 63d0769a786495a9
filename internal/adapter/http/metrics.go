package adapthttp

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"macrolens/internal/domain"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macrolens_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "macrolens_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	foodAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macrolens_food_analysis_total",
			Help: "Total number of photo analyses by outcome",
		},
		[]string{"outcome"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macrolens_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"class"},
	)
)

func observeAnalysis(err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		outcome = "rejected"
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "failed"
	}
	foodAnalyses.WithLabelValues(outcome).Inc()
}
