//go:build linux

package notify

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jongio/azd-toast/toast"
)

const platformBackend = BackendDBus

const (
	notificationsDest      = "org.freedesktop.Notifications"
	notificationsPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsInterface = "org.freedesktop.Notifications"

	signalActionInvoked      = notificationsInterface + ".ActionInvoked"
	signalNotificationClosed = notificationsInterface + ".NotificationClosed"

	// defaultActionKey is invoked when the notification body is clicked.
	defaultActionKey = "default"
)

// Close reasons defined by the Desktop Notifications Specification.
const (
	closedExpired   uint32 = 1
	closedDismissed uint32 = 2
	closedByCall    uint32 = 3
)

// dbusService implements Service over the freedesktop notification D-Bus API.
type dbusService struct {
	toast.Catalog
	config Config
	conn   *dbus.Conn

	mu       sync.Mutex
	byAppID  map[string]uint32
	visible  map[uint32]*dbusInstance
	signals  chan *dbus.Signal
	loopDone chan struct{}
}

type dbusInstance struct {
	appID  string
	launch string
	events toast.Events
}

// newPlatformService connects to the session bus.
func newPlatformService(config Config) (Service, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to session bus: %v", ErrNotAvailable, err)
	}
	s, err := newDBusService(config, conn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newDBusService(config Config, conn *dbus.Conn) (*dbusService, error) {
	s := &dbusService{
		config:   config,
		conn:     conn,
		byAppID:  make(map[string]uint32),
		visible:  make(map[uint32]*dbusInstance),
		signals:  make(chan *dbus.Signal, 16),
		loopDone: make(chan struct{}),
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notificationsPath),
		dbus.WithMatchInterface(notificationsInterface),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: subscribing to notification signals: %v", ErrNotAvailable, err)
	}
	conn.Signal(s.signals)

	go s.loop()
	return s, nil
}

// Show sends the flattened toast with Notify, replacing the last instance
// shown under the same app id.
func (s *dbusService) Show(ctx context.Context, sub toast.Submission) (toast.Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	sum := summarize(sub.Content)
	actions := dbusActions(sum)
	hints := dbusHints(sum)
	expire := expireTimeout(sub.ExpirationTime, time.Now())

	s.mu.Lock()
	replaces := s.byAppID[sub.AppID]
	s.mu.Unlock()

	obj := s.conn.Object(notificationsDest, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsInterface+".Notify", 0,
		s.config.AppName, // app_name
		replaces,         // replaces_id
		sum.Icon,         // app_icon
		sum.Title,        // summary
		sum.Body,         // body
		actions,
		hints,
		expire,
	)
	if call.Err != nil {
		return toast.Handle{}, fmt.Errorf("%w: %v", ErrNotificationFailed, call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return toast.Handle{}, fmt.Errorf("%w: decoding notification id: %v", ErrNotificationFailed, err)
	}

	s.mu.Lock()
	if replaces != 0 && replaces != id {
		delete(s.visible, replaces)
	}
	s.byAppID[sub.AppID] = id
	s.visible[id] = &dbusInstance{appID: sub.AppID, launch: sum.Launch, events: sub.Events}
	s.mu.Unlock()

	log.WithNotification(sub.AppID).Debug("dbus notification sent", "id", id, "replaces", replaces)
	return toast.Handle{AppID: sub.AppID, ID: strconv.FormatUint(uint64(id), 10)}, nil
}

// Hide calls CloseNotification. The resulting NotificationClosed signal
// raises Dismissed with ApplicationHidden.
func (s *dbusService) Hide(ctx context.Context, h toast.Handle) error {
	id, err := strconv.ParseUint(h.ID, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownHandle, h.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	obj := s.conn.Object(notificationsDest, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsInterface+".CloseNotification", 0, uint32(id))
	if call.Err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, call.Err)
	}
	return nil
}

func (s *dbusService) loop() {
	defer close(s.loopDone)
	for sig := range s.signals {
		s.handleSignal(sig)
	}
}

func (s *dbusService) handleSignal(sig *dbus.Signal) {
	if sig == nil || len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}

	switch sig.Name {
	case signalActionInvoked:
		key, _ := sig.Body[1].(string)
		inst := s.take(id)
		if inst == nil || inst.events == nil {
			return
		}
		args := key
		if key == defaultActionKey {
			args = inst.launch
		}
		inst.events.Activated(toast.ActivatedEventArgs{Arguments: args})

	case signalNotificationClosed:
		reason, _ := sig.Body[1].(uint32)
		// already removed when an action was invoked
		inst := s.take(id)
		if inst == nil || inst.events == nil {
			return
		}
		inst.events.Dismissed(toast.DismissedEventArgs{Reason: dismissalReason(reason)})
	}
}

func (s *dbusService) take(id uint32) *dbusInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.visible[id]
	if !ok {
		return nil
	}
	delete(s.visible, id)
	if s.byAppID[inst.appID] == id {
		delete(s.byAppID, inst.appID)
	}
	return inst
}

// IsAvailable checks that the notification daemon answers on the bus.
func (s *dbusService) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	var name, vendor, version, specVersion string
	call := s.conn.Object(notificationsDest, notificationsPath).
		CallWithContext(ctx, notificationsInterface+".GetServerInformation", 0)
	if call.Err != nil {
		return false
	}
	return call.Store(&name, &vendor, &version, &specVersion) == nil
}

// Close disconnects from the bus and stops the signal loop.
func (s *dbusService) Close() error {
	s.conn.RemoveSignal(s.signals)
	err := s.conn.Close()
	close(s.signals)
	<-s.loopDone
	return err
}

func dbusActions(sum summary) []string {
	actions := []string{}
	if sum.Launch != "" {
		actions = append(actions, defaultActionKey, "")
	}
	for _, a := range sum.Actions {
		actions = append(actions, a.Key, a.Label)
	}
	return actions
}

func dbusHints(sum summary) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{}
	if sum.Silent {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	} else if name := freedesktopSound(sum.Sound); name != "" {
		hints["sound-name"] = dbus.MakeVariant(name)
	}
	if sum.Loop {
		// looping sounds belong to alarms and calls
		hints["urgency"] = dbus.MakeVariant(byte(2))
	}
	return hints
}

// expireTimeout converts an absolute expiration to the Notify timeout in
// milliseconds; -1 lets the server decide.
func expireTimeout(exp *time.Time, now time.Time) int32 {
	if exp == nil {
		return -1
	}
	ms := exp.Sub(now).Milliseconds()
	switch {
	case ms < 1:
		return 1
	case ms > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(ms)
	}
}

func dismissalReason(reason uint32) toast.DismissalReason {
	switch reason {
	case closedExpired:
		return toast.TimedOut
	case closedByCall:
		return toast.ApplicationHidden
	case closedDismissed:
		return toast.UserCanceled
	default:
		return toast.UserCanceled
	}
}
