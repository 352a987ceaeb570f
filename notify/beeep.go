package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"github.com/jongio/azd-toast/toast"
)

// beeepService implements Service using the cross-platform beeep library.
// beeep cannot withdraw a notification or report interaction, so Hide is a
// no-op and no events are raised.
type beeepService struct {
	toast.Catalog
	config Config
	next   atomic.Uint64
}

func newBeeepService(config Config) *beeepService {
	beeep.AppName = config.AppName
	return &beeepService{config: config}
}

// Show flattens the toast to title, body and icon.
func (b *beeepService) Show(_ context.Context, s toast.Submission) (toast.Handle, error) {
	sum := summarize(s.Content)
	if err := beeep.Notify(sum.Title, sum.Body, sum.Icon); err != nil {
		return toast.Handle{}, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	id := strconv.FormatUint(b.next.Add(1), 10)
	log.WithNotification(s.AppID).Debug("beeep notification sent", "handle", id)
	return toast.Handle{AppID: s.AppID, ID: id}, nil
}

func (b *beeepService) Hide(_ context.Context, h toast.Handle) error {
	log.WithNotification(h.AppID).Debug("beeep cannot withdraw notifications", "handle", h.ID)
	return nil
}

// IsAvailable returns true since beeep handles platform detection internally.
func (b *beeepService) IsAvailable() bool {
	return true
}

// Close is a no-op for beeep.
func (b *beeepService) Close() error {
	return nil
}
