package toast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/jongio/azd-toast/dispatch"
	"github.com/jongio/azd-toast/logutil"
)

// Notification shows a Toast through a Service and relays its lifecycle
// callbacks.
type Notification struct {
	Toast

	// Context receives callbacks when set. Otherwise callbacks run on the
	// goroutine the service raised them on.
	Context dispatch.Context

	OnActivated func(n *Notification, e ActivatedEventArgs)
	OnDismissed func(n *Notification, e DismissedEventArgs)
	OnFailed    func(n *Notification, e FailedEventArgs)

	appID   string
	service Service
	log     *logutil.ComponentLogger

	mu         sync.Mutex
	current    *Handle
	generation uint64
}

// New returns a notification shown under appID. A blank appID is replaced by
// a random UUID.
func New(service Service, appID string) *Notification {
	if strings.TrimSpace(appID) == "" {
		appID = uuid.NewString()
	}
	return &Notification{
		appID:   appID,
		service: service,
		log:     log.WithNotification(appID),
	}
}

// AppID returns the identifier the notification is shown under.
func (n *Notification) AppID() string {
	return n.appID
}

// Visible reports whether an instance shown by n has not yet been activated,
// hidden, dismissed or failed.
func (n *Notification) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current != nil
}

// Show builds the content from the current Toast fields and submits it.
func (n *Notification) Show(ctx context.Context) error {
	doc, err := n.Content(n.service)
	if err != nil {
		return err
	}
	return n.ShowContent(ctx, doc)
}

// ShowXML parses xml and submits it as is.
func (n *Notification) ShowXML(ctx context.Context, xml string) error {
	doc, err := ParseContent(xml)
	if err != nil {
		return err
	}
	return n.ShowContent(ctx, doc)
}

// ShowContent submits a finished document. The document must not be modified
// afterwards.
func (n *Notification) ShowContent(ctx context.Context, doc *etree.Document) error {
	if doc == nil || doc.Root() == nil {
		return fmt.Errorf("%w: empty document", ErrMalformedContent)
	}

	n.mu.Lock()
	n.generation++
	gen := n.generation
	n.mu.Unlock()

	h, err := n.service.Show(ctx, Submission{
		AppID:          n.appID,
		Content:        doc,
		ExpirationTime: n.ExpirationTime,
		Events:         &relay{n: n, gen: gen},
	})
	if err != nil {
		// the failed submission never shows, so the previous instance keeps
		// its generation and its events still apply
		n.mu.Lock()
		if n.generation == gen {
			n.generation--
		}
		n.mu.Unlock()
		return fmt.Errorf("show toast: %w", err)
	}

	n.mu.Lock()
	if n.generation == gen {
		n.current = &h
	}
	n.mu.Unlock()

	n.log.Debug("toast shown", "handle", h.ID)
	return nil
}

// Hide withdraws the instance currently shown by n. It does nothing when no
// instance is shown.
func (n *Notification) Hide(ctx context.Context) error {
	n.mu.Lock()
	h := n.current
	n.current = nil
	n.generation++
	n.mu.Unlock()

	if h == nil {
		return nil
	}
	if err := n.service.Hide(ctx, *h); err != nil {
		return fmt.Errorf("hide toast: %w", err)
	}
	n.log.Debug("toast hidden", "handle", h.ID)
	return nil
}

// release forgets the current instance if it belongs to gen.
func (n *Notification) release(gen uint64) {
	n.mu.Lock()
	if n.generation == gen {
		n.current = nil
	}
	n.mu.Unlock()
}

func (n *Notification) deliver(event string, fn func()) {
	if n.Context == nil {
		fn()
		return
	}
	if err := n.Context.Send(fn); err != nil {
		level := n.log.Warn
		if errors.Is(err, dispatch.ErrClosed) {
			level = n.log.Debug
		}
		level("toast callback dropped", "event", event, "error", err)
	}
}

// relay receives callbacks for one submission.
type relay struct {
	n   *Notification
	gen uint64
}

func (r *relay) Activated(e ActivatedEventArgs) {
	r.n.release(r.gen)
	if h := r.n.OnActivated; h != nil {
		r.n.deliver("activated", func() { h(r.n, e) })
	}
}

func (r *relay) Dismissed(e DismissedEventArgs) {
	r.n.release(r.gen)
	if h := r.n.OnDismissed; h != nil {
		r.n.deliver("dismissed", func() { h(r.n, e) })
	}
}

func (r *relay) Failed(e FailedEventArgs) {
	r.n.release(r.gen)
	r.n.log.Warn("toast failed", "error", e.Err)
	if h := r.n.OnFailed; h != nil {
		r.n.deliver("failed", func() { h(r.n, e) })
	}
}
