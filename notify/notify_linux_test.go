//go:build linux

package notify

import (
	"slices"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jongio/azd-toast/toast"
)

func newSignalTestService() *dbusService {
	return &dbusService{
		config:  DefaultConfig(),
		byAppID: make(map[string]uint32),
		visible: make(map[uint32]*dbusInstance),
	}
}

func TestDBusService_ActionInvoked(t *testing.T) {
	s := newSignalTestService()
	events := &eventLog{}
	s.byAppID["app"] = 7
	s.visible[7] = &dbusInstance{appID: "app", launch: "https://example.com", events: events}
	s.visible[8] = &dbusInstance{appID: "other", events: events}

	s.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), "default"}})
	s.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(8), "snooze"}})
	// the close that follows an action is not a dismissal
	s.handleSignal(&dbus.Signal{Name: signalNotificationClosed, Body: []interface{}{uint32(7), closedDismissed}})

	if want := []string{"https://example.com", "snooze"}; !slices.Equal(events.activated, want) {
		t.Errorf("activated = %q, want %q", events.activated, want)
	}
	if len(events.dismissed) != 0 {
		t.Errorf("unexpected dismissals: %v", events.dismissed)
	}
	if len(s.byAppID) != 0 {
		t.Errorf("byAppID not cleared: %v", s.byAppID)
	}
}

func TestDBusService_NotificationClosed(t *testing.T) {
	tests := []struct {
		reason uint32
		want   toast.DismissalReason
	}{
		{closedExpired, toast.TimedOut},
		{closedDismissed, toast.UserCanceled},
		{closedByCall, toast.ApplicationHidden},
		{4, toast.UserCanceled},
	}
	for _, tt := range tests {
		s := newSignalTestService()
		events := &eventLog{}
		s.visible[1] = &dbusInstance{appID: "app", events: events}

		s.handleSignal(&dbus.Signal{Name: signalNotificationClosed, Body: []interface{}{uint32(1), tt.reason}})
		if want := []toast.DismissalReason{tt.want}; !slices.Equal(events.dismissed, want) {
			t.Errorf("reason %d: dismissed = %v, want %v", tt.reason, events.dismissed, want)
		}
	}
}

func TestDBusService_IgnoresForeignSignals(t *testing.T) {
	s := newSignalTestService()
	events := &eventLog{}
	s.visible[1] = &dbusInstance{appID: "app", events: events}

	s.handleSignal(nil)
	s.handleSignal(&dbus.Signal{Name: signalNotificationClosed, Body: []interface{}{uint32(99), closedExpired}})
	s.handleSignal(&dbus.Signal{Name: signalNotificationClosed, Body: []interface{}{"bad", closedExpired}})

	if len(events.dismissed) != 0 {
		t.Errorf("unexpected dismissals: %v", events.dismissed)
	}
	if len(s.visible) != 1 {
		t.Errorf("visible has %d entries, want 1", len(s.visible))
	}
}

func TestDBusActionsAndHints(t *testing.T) {
	sum := summary{
		Launch:  "go",
		Sound:   toast.AudioLoopingAlarm,
		Loop:    true,
		Actions: []summaryAction{{Key: "yes", Label: "Yes"}},
	}
	if got, want := dbusActions(sum), []string{"default", "", "yes", "Yes"}; !slices.Equal(got, want) {
		t.Errorf("dbusActions() = %q, want %q", got, want)
	}

	hints := dbusHints(sum)
	if got := hints["sound-name"].Value(); got != "alarm-clock-elapsed" {
		t.Errorf("sound-name = %v", got)
	}
	if got := hints["urgency"].Value(); got != byte(2) {
		t.Errorf("urgency = %v, want 2", got)
	}

	silent := dbusHints(summary{Sound: toast.AudioMail, Silent: true})
	if got := silent["suppress-sound"].Value(); got != true {
		t.Errorf("suppress-sound = %v", got)
	}
	if _, ok := silent["sound-name"]; ok {
		t.Error("silent toast still names a sound")
	}

	if got := dbusActions(summary{}); got == nil || len(got) != 0 {
		t.Errorf("dbusActions(empty) = %#v, want an empty slice", got)
	}
}

func TestExpireTimeout(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	soon := now.Add(1500 * time.Millisecond)
	far := now.Add(1000 * time.Hour)

	tests := []struct {
		name string
		at   *time.Time
		want int32
	}{
		{"unset", nil, -1},
		{"past", &past, 1},
		{"soon", &soon, 1500},
		{"far", &far, 2147483647},
	}
	for _, tt := range tests {
		if got := expireTimeout(tt.at, now); got != tt.want {
			t.Errorf("%s: expireTimeout() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
