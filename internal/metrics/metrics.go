// Package metrics registers the Prometheus instruments for the payment
// router. Metrics are registered globally via promauto; tests measure
// increments rather than absolute values.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_router_payments_total",
		Help: "Processed payments by final status and provider.",
	}, []string{"status", "provider"})

	providerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_router_provider_failures_total",
		Help: "Provider attempt failures by provider and failure kind (error or declined).",
	}, []string{"provider", "kind"})

	fallbackAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_router_fallback_attempts_total",
		Help: "Attempts made on a non-preferred provider after the preferred one failed.",
	})

	processDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_router_process_duration_seconds",
		Help:    "End-to-end duration of orchestrator Process calls.",
		Buckets: prometheus.DefBuckets,
	})
)

// PaymentsTotal returns the payments counter for recording and tests.
func PaymentsTotal() *prometheus.CounterVec { return paymentsTotal }

// ProviderFailuresTotal returns the provider failure counter.
func ProviderFailuresTotal() *prometheus.CounterVec { return providerFailuresTotal }

// FallbackAttemptsTotal returns the fallback attempt counter.
func FallbackAttemptsTotal() prometheus.Counter { return fallbackAttemptsTotal }

// ProcessDurationSeconds returns the processing duration histogram.
func ProcessDurationSeconds() prometheus.Histogram { return processDurationSeconds }
