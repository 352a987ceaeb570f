package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jongio/azd-toast/toast"
)

// flakyService fails every Show while err is set.
type flakyService struct {
	*Recorder
	err error
}

func (f *flakyService) Show(ctx context.Context, s toast.Submission) (toast.Handle, error) {
	if f.err != nil {
		return toast.Handle{}, f.err
	}
	return f.Recorder.Show(ctx, s)
}

func testSubmission(t *testing.T) toast.Submission {
	t.Helper()
	doc, err := (&toast.Toast{Lines: []string{"hello"}}).Content(toast.Catalog{})
	require.NoError(t, err)
	return toast.Submission{AppID: "guard-test", Content: doc}
}

func TestGuard_PassThrough(t *testing.T) {
	rec := NewRecorder()
	g := NewGuard(rec, GuardConfig{Backend: "guard-pass"})

	before := testutil.ToFloat64(toastShowTotal.WithLabelValues("guard-pass", "ToastText01", resultShown))
	h, err := g.Show(context.Background(), testSubmission(t))
	require.NoError(t, err)
	assert.True(t, rec.Visible(h))
	assert.Equal(t, before+1, testutil.ToFloat64(toastShowTotal.WithLabelValues("guard-pass", "ToastText01", resultShown)))
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestGuard_RateLimited(t *testing.T) {
	g := NewGuard(NewRecorder(), GuardConfig{Backend: "guard-rate", RatePerSecond: 0.001, Burst: 2})
	ctx := context.Background()

	_, err := g.Show(ctx, testSubmission(t))
	require.NoError(t, err)
	_, err = g.Show(ctx, testSubmission(t))
	require.NoError(t, err)

	_, err = g.Show(ctx, testSubmission(t))
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1.0, testutil.ToFloat64(toastShowTotal.WithLabelValues("guard-rate", "ToastText01", resultRateLimited)))
}

func TestGuard_CircuitOpens(t *testing.T) {
	boom := errors.New("daemon gone")
	svc := &flakyService{Recorder: NewRecorder(), err: boom}
	g := NewGuard(svc, GuardConfig{Backend: "guard-breaker", BreakerFailures: 3, BreakerTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.Show(ctx, testSubmission(t))
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("guard-breaker")))

	svc.err = nil
	_, err := g.Show(ctx, testSubmission(t))
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1.0, testutil.ToFloat64(toastShowTotal.WithLabelValues("guard-breaker", "ToastText01", resultCircuitOpen)))
}

func TestGuard_CountsEvents(t *testing.T) {
	rec := NewRecorder()
	g := NewGuard(rec, GuardConfig{Backend: "guard-events"})
	events := &eventLog{}

	sub := testSubmission(t)
	sub.Events = events
	h, err := g.Show(context.Background(), sub)
	require.NoError(t, err)

	require.NoError(t, rec.Activate(h, "go"))
	assert.Equal(t, []string{"go"}, events.activated)
	assert.Equal(t, 1.0, testutil.ToFloat64(toastEventsTotal.WithLabelValues("guard-events", "activated")))
}
