package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jongio/azd-toast/toast"
)

// Recorder is an in-memory Service. It keeps every submission and lets the
// caller raise lifecycle events, which makes it suitable for tests and dry
// runs.
type Recorder struct {
	toast.Catalog

	mu          sync.Mutex
	next        int
	submissions []toast.Submission
	byID        map[string]toast.Submission
	visible     map[string]string // app id -> handle id
	hidden      []toast.Handle
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		byID:    make(map[string]toast.Submission),
		visible: make(map[string]string),
	}
}

// Show records s. A previous instance under the same app id is replaced
// silently, as the platform does.
func (r *Recorder) Show(_ context.Context, s toast.Submission) (toast.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	id := strconv.Itoa(r.next)
	if prev, ok := r.visible[s.AppID]; ok {
		delete(r.byID, prev)
	}
	r.submissions = append(r.submissions, s)
	r.byID[id] = s
	r.visible[s.AppID] = id
	return toast.Handle{AppID: s.AppID, ID: id}, nil
}

// Hide withdraws h and raises Dismissed with ApplicationHidden.
func (r *Recorder) Hide(_ context.Context, h toast.Handle) error {
	r.mu.Lock()
	s, ok := r.take(h.ID)
	r.hidden = append(r.hidden, h)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if s.Events != nil {
		s.Events.Dismissed(toast.DismissedEventArgs{Reason: toast.ApplicationHidden})
	}
	return nil
}

// take removes a visible submission. Caller must hold r.mu.
func (r *Recorder) take(id string) (toast.Submission, bool) {
	s, ok := r.byID[id]
	if !ok {
		return s, false
	}
	delete(r.byID, id)
	if r.visible[s.AppID] == id {
		delete(r.visible, s.AppID)
	}
	return s, true
}

// IsAvailable always returns true.
func (r *Recorder) IsAvailable() bool { return true }

// Close is a no-op.
func (r *Recorder) Close() error { return nil }

// Submissions returns every submission in order.
func (r *Recorder) Submissions() []toast.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toast.Submission(nil), r.submissions...)
}

// Hidden returns the handles passed to Hide.
func (r *Recorder) Hidden() []toast.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toast.Handle(nil), r.hidden...)
}

// Visible reports whether h is still on screen.
func (r *Recorder) Visible(h toast.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[h.ID]
	return ok
}

// Activate simulates the user activating h with the given arguments.
func (r *Recorder) Activate(h toast.Handle, arguments string) error {
	r.mu.Lock()
	s, ok := r.take(h.ID)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h.ID)
	}
	if s.Events != nil {
		s.Events.Activated(toast.ActivatedEventArgs{Arguments: arguments})
	}
	return nil
}

// Dismiss simulates h leaving the screen for reason.
func (r *Recorder) Dismiss(h toast.Handle, reason toast.DismissalReason) error {
	r.mu.Lock()
	s, ok := r.take(h.ID)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h.ID)
	}
	if s.Events != nil {
		s.Events.Dismissed(toast.DismissedEventArgs{Reason: reason})
	}
	return nil
}

// Fail simulates an asynchronous delivery failure of h.
func (r *Recorder) Fail(h toast.Handle, err error) error {
	r.mu.Lock()
	s, ok := r.take(h.ID)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h.ID)
	}
	if s.Events != nil {
		s.Events.Failed(toast.FailedEventArgs{Err: err})
	}
	return nil
}

var _ Service = (*Recorder)(nil)
