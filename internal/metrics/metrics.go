// Package metrics exposes the Prometheus instrumentation for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// Quote outcomes: available, unavailable, invalid_input, error
	ShippingQuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipping_quotes_total",
		Help: "Shipping quote resolutions by outcome.",
	}, []string{"outcome"})

	CheckoutSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout session creations by result.",
	}, []string{"result"})
)

const (
	QuoteAvailable    = "available"
	QuoteUnavailable  = "unavailable"
	QuoteInvalidInput = "invalid_input"
	QuoteError        = "error"

	CheckoutCreated = "created"
	CheckoutFailed  = "failed"
)
