package toast

import (
	"context"
	"time"

	"github.com/beevik/etree"
)

// Service is the notification service a Notification submits to.
type Service interface {
	TemplateSource

	// Show submits content under s.AppID, replacing any instance the service
	// is still showing for the same id, and returns a handle to it.
	Show(ctx context.Context, s Submission) (Handle, error)

	// Hide withdraws a previously shown instance.
	Hide(ctx context.Context, h Handle) error
}

// Submission is a finished toast handed to a Service. The service takes
// ownership of Content.
type Submission struct {
	AppID          string
	Content        *etree.Document
	ExpirationTime *time.Time

	// Events receives lifecycle callbacks for this instance. May be nil.
	Events Events
}

// Handle identifies a shown instance.
type Handle struct {
	AppID string
	ID    string
}

// Events receives lifecycle callbacks raised by a Service. Services may call
// these from any goroutine.
type Events interface {
	Activated(ActivatedEventArgs)
	Dismissed(DismissedEventArgs)
	Failed(FailedEventArgs)
}

// ActivatedEventArgs describes a user activation. Arguments holds the launch
// string for a body click or the command arguments for a button.
type ActivatedEventArgs struct {
	Arguments string
}

// DismissalReason says why a toast left the screen without activation.
type DismissalReason int

const (
	UserCanceled DismissalReason = iota
	ApplicationHidden
	TimedOut
)

func (r DismissalReason) String() string {
	switch r {
	case UserCanceled:
		return "user-canceled"
	case ApplicationHidden:
		return "application-hidden"
	case TimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

type DismissedEventArgs struct {
	Reason DismissalReason
}

// FailedEventArgs carries an asynchronous failure reported by the service.
type FailedEventArgs struct {
	Err error
}
