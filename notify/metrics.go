package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	toastShowTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toast_show_total",
			Help: "Total number of toast submissions by outcome",
		},
		[]string{"backend", "template", "result"},
	)

	toastShowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toast_show_duration_seconds",
			Help:    "Duration of toast submissions in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)

	toastEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toast_events_total",
			Help: "Lifecycle events raised by the notification service",
		},
		[]string{"backend", "event"},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "toast_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"backend"},
	)
)

// Show results.
const (
	resultShown       = "shown"
	resultFailed      = "failed"
	resultRateLimited = "rate_limited"
	resultCircuitOpen = "circuit_open"
)

func recordShow(backend, template, result string) {
	toastShowTotal.With(prometheus.Labels{
		"backend":  backend,
		"template": template,
		"result":   result,
	}).Inc()
}

func recordEvent(backend, event string) {
	toastEventsTotal.With(prometheus.Labels{
		"backend": backend,
		"event":   event,
	}).Inc()
}

// recordCircuitBreakerState records the circuit breaker state.
func recordCircuitBreakerState(backend string, state gobreaker.State) {
	var stateValue float64
	switch state {
	case gobreaker.StateClosed:
		stateValue = 0
	case gobreaker.StateHalfOpen:
		stateValue = 1
	case gobreaker.StateOpen:
		stateValue = 2
	}

	circuitBreakerState.With(prometheus.Labels{
		"backend": backend,
	}).Set(stateValue)
}
