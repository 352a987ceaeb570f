package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jongio/azd-toast/toast"
)

// GuardConfig configures a Guard.
type GuardConfig struct {
	// Backend labels metrics and the circuit breaker.
	Backend string

	// RatePerSecond limits submissions. Zero or less disables limiting.
	RatePerSecond float64
	Burst         int

	// BreakerFailures is the minimum number of requests in an interval
	// before the breaker may trip. Zero or less disables the breaker.
	BreakerFailures int
	BreakerTimeout  time.Duration
}

// DefaultGuardConfig returns the limits used by the CLI.
func DefaultGuardConfig(backend string) GuardConfig {
	return GuardConfig{
		Backend:         backend,
		RatePerSecond:   2,
		Burst:           5,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Guard decorates a Service with rate limiting, a circuit breaker and
// Prometheus metrics. Lifecycle events pass through it and are counted.
type Guard struct {
	Service
	config  GuardConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuard wraps next.
func NewGuard(next Service, config GuardConfig) *Guard {
	g := &Guard{Service: next, config: config}

	if config.RatePerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), burst)
	}

	if config.BreakerFailures > 0 {
		settings := gobreaker.Settings{
			Name:        config.Backend,
			MaxRequests: 1,
			Interval:    config.BreakerTimeout,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= uint32(config.BreakerFailures) && failureRatio >= 0.6
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Warn("circuit breaker state changed", "backend", name, "from", from.String(), "to", to.String())
				recordCircuitBreakerState(name, to)
			},
		}
		g.breaker = gobreaker.NewCircuitBreaker(settings)
		recordCircuitBreakerState(config.Backend, gobreaker.StateClosed)
	}
	return g
}

// Show submits s through the limiter and breaker.
func (g *Guard) Show(ctx context.Context, s toast.Submission) (toast.Handle, error) {
	template := toast.BindingTemplate(s.Content)
	if template == "" {
		template = "custom"
	}

	if g.limiter != nil && !g.limiter.Allow() {
		recordShow(g.config.Backend, template, resultRateLimited)
		return toast.Handle{}, ErrRateLimited
	}

	if s.Events != nil {
		s.Events = &countingEvents{next: s.Events, backend: g.config.Backend}
	}

	start := time.Now()
	h, err := g.execute(func() (toast.Handle, error) {
		return g.Service.Show(ctx, s)
	})
	toastShowDuration.WithLabelValues(g.config.Backend).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, ErrCircuitOpen):
		recordShow(g.config.Backend, template, resultCircuitOpen)
	case err != nil:
		recordShow(g.config.Backend, template, resultFailed)
	default:
		recordShow(g.config.Backend, template, resultShown)
	}
	return h, err
}

func (g *Guard) execute(fn func() (toast.Handle, error)) (toast.Handle, error) {
	if g.breaker == nil {
		return fn()
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return toast.Handle{}, fmt.Errorf("%w: %s", ErrCircuitOpen, g.config.Backend)
	}
	if err != nil {
		return toast.Handle{}, err
	}
	return out.(toast.Handle), nil
}

// State returns the breaker state, closed when the breaker is disabled.
func (g *Guard) State() gobreaker.State {
	if g.breaker == nil {
		return gobreaker.StateClosed
	}
	return g.breaker.State()
}

type countingEvents struct {
	next    toast.Events
	backend string
}

func (c *countingEvents) Activated(args toast.ActivatedEventArgs) {
	recordEvent(c.backend, "activated")
	c.next.Activated(args)
}

func (c *countingEvents) Dismissed(args toast.DismissedEventArgs) {
	recordEvent(c.backend, "dismissed_"+args.Reason.String())
	c.next.Dismissed(args)
}

func (c *countingEvents) Failed(args toast.FailedEventArgs) {
	recordEvent(c.backend, "failed")
	c.next.Failed(args)
}

var _ Service = (*Guard)(nil)
