//go:build windows

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jongio/azd-toast/toast"
)

func newTestPowerShell(run func(ctx context.Context, script string) ([]byte, error)) *powershellService {
	return &powershellService{config: DefaultConfig(), run: run}
}

// recordScripts returns a runner that appends every script to dst.
func recordScripts(dst *[]string) func(context.Context, string) ([]byte, error) {
	return func(_ context.Context, script string) ([]byte, error) {
		*dst = append(*dst, script)
		return nil, nil
	}
}

func mustContent(t *testing.T, p *powershellService, lines ...string) toast.Submission {
	t.Helper()
	doc, err := (&toast.Toast{Lines: lines}).Content(p)
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	return toast.Submission{Content: doc}
}

func assertContains(t *testing.T, script string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
}

func TestPowerShellService_Show(t *testing.T) {
	var scripts []string
	p := newTestPowerShell(recordScripts(&scripts))

	sub := mustContent(t, p, "It's done")
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	sub.AppID = "my.app"
	sub.ExpirationTime = &exp

	h, err := p.Show(context.Background(), sub)
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if h != (toast.Handle{AppID: "my.app", ID: "t1"}) {
		t.Errorf("handle = %+v", h)
	}

	if len(scripts) != 1 {
		t.Fatalf("ran %d scripts, want 1", len(scripts))
	}
	assertContains(t, scripts[0],
		"It''s done",
		"$toast.Tag = 't1'",
		"$toast.Group = 'my.app'",
		"2030-01-02T03:04:05Z",
		"CreateToastNotifier('my.app')",
	)
}

func TestPowerShellService_ShowFailure(t *testing.T) {
	p := newTestPowerShell(func(context.Context, string) ([]byte, error) {
		return []byte("boom"), errors.New("exit status 1")
	})
	sub := mustContent(t, p, "x")
	sub.AppID = "a"

	_, err := p.Show(context.Background(), sub)
	if !errors.Is(err, ErrNotificationFailed) {
		t.Fatalf("expected ErrNotificationFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error does not carry the script output: %v", err)
	}
}

func TestPowerShellService_Hide(t *testing.T) {
	var scripts []string
	p := newTestPowerShell(recordScripts(&scripts))

	if err := p.Hide(context.Background(), toast.Handle{AppID: "my.app", ID: "t7"}); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}
	if len(scripts) != 1 {
		t.Fatalf("ran %d scripts, want 1", len(scripts))
	}
	assertContains(t, scripts[0], "History.Remove('t7', 'my.app', 'my.app')")
}

func TestPowerShellService_RegistersAppOnce(t *testing.T) {
	var scripts []string
	p := newTestPowerShell(recordScripts(&scripts))
	p.programsDir = `C:\Users\me\Start Menu\Programs`
	p.exePath = `C:\bin\toast.exe`

	sub := mustContent(t, p, "x")
	sub.AppID = "my.app"
	for i := 0; i < 2; i++ {
		if _, err := p.Show(context.Background(), sub); err != nil {
			t.Fatalf("Show() error = %v", err)
		}
	}

	if len(scripts) != 3 {
		t.Fatalf("ran %d scripts, want registration plus two toasts", len(scripts))
	}
	assertContains(t, scripts[0],
		`$shortcutPath = 'C:\Users\me\Start Menu\Programs\my.app.lnk'`,
		`$link.TargetPath = 'C:\bin\toast.exe'`,
		"[ToastShortcut.Helper]::SetAppID($shortcutPath, 'my.app')",
	)
	assertContains(t, scripts[1], "CreateToastNotifier('my.app')")
	assertContains(t, scripts[2], "CreateToastNotifier('my.app')")
}

func TestPowerShellService_RegistrationFailureStillShows(t *testing.T) {
	calls := 0
	p := newTestPowerShell(func(_ context.Context, script string) ([]byte, error) {
		calls++
		if strings.Contains(script, "SetAppID") {
			return []byte("access denied"), errors.New("exit status 1")
		}
		return nil, nil
	})
	p.programsDir = `C:\Programs`
	p.exePath = `C:\bin\toast.exe`

	sub := mustContent(t, p, "x")
	sub.AppID = "a"
	if _, err := p.Show(context.Background(), sub); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("ran %d scripts, want 2", calls)
	}
}

func TestPowerShellService_NoStartMenuSkipsRegistration(t *testing.T) {
	var scripts []string
	p := newTestPowerShell(recordScripts(&scripts))

	sub := mustContent(t, p, "x")
	sub.AppID = "a"
	if _, err := p.Show(context.Background(), sub); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if len(scripts) != 1 {
		t.Errorf("ran %d scripts, want only the toast", len(scripts))
	}
}

func TestBuildRegisterScript_Quotes(t *testing.T) {
	script := buildRegisterScript(`C:\O'Brien\x.lnk`, `C:\bin\toast.exe`, "it's.app")
	assertContains(t, script,
		`$shortcutPath = 'C:\O''Brien\x.lnk'`,
		"SetAppID($shortcutPath, 'it''s.app')",
		"if (Test-Path -LiteralPath $shortcutPath) { return }",
	)
}

func TestShortcutName(t *testing.T) {
	tests := map[string]string{
		"my.app":   "my.app.lnk",
		`a/b:c`:    "a_b_c.lnk",
		"trail. ":  "trail.lnk",
		"x\x01y?z": "x_y_z.lnk",
	}
	for in, want := range tests {
		if got := shortcutName(in); got != want {
			t.Errorf("shortcutName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("é", 40) // 80 bytes
	if g := group(long); !utf8.ValidString(g) || g != strings.Repeat("é", 32) {
		t.Errorf("group() = %q", g)
	}
	if got := truncateRunes("abc", 5); got != "abc" {
		t.Errorf("truncateRunes(abc, 5) = %q", got)
	}
	if got := truncateRunes("a€", 3); got != "a" {
		t.Errorf("truncateRunes(a€, 3) = %q, want a", got)
	}
	if got := notifierID(strings.Repeat("x", 200)); len(got) != maxAppIDLength {
		t.Errorf("notifierID() length = %d", len(got))
	}
}

func TestPsQuote(t *testing.T) {
	tests := map[string]string{
		"plain":  "'plain'",
		"it's":   "'it''s'",
		"a\x00b": "'ab'",
		"$x `y":  "'$x `y'",
	}
	for in, want := range tests {
		if got := psQuote(in); got != want {
			t.Errorf("psQuote(%q) = %q, want %q", in, got, want)
		}
	}
}
