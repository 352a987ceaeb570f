package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jongio/azd-toast/cliout"
	"github.com/jongio/azd-toast/config"
	"github.com/jongio/azd-toast/dispatch"
	"github.com/jongio/azd-toast/notify"
	"github.com/jongio/azd-toast/toast"
)

func TestMain(m *testing.M) {
	var code int
	dispatch.Run(func() { code = m.Run() })
	os.Exit(code)
}

// run executes the root command with a throwaway config and captures output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithConfig(t, filepath.Join(t.TempDir(), "config.yaml"), args...)
}

func runWithConfig(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvAppID, "")
	t.Setenv(config.EnvBackend, "")

	var buf bytes.Buffer
	prev := cliout.SetOutput(&buf)
	t.Cleanup(func() {
		cliout.SetOutput(prev)
		_ = cliout.SetFormat("default")
	})

	root := newRootCommand()
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.Execute()
	return buf.String(), err
}

// decode unmarshals JSON command output into v.
func decode(t *testing.T, out string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
}

func TestShow_DryRun(t *testing.T) {
	out, err := run(t, "-o", "json", "show", "--dry-run", "--app-id", "dry.run",
		"--action", "Open=open", "--action", "Later", "--audio", "mail",
		"Deploy complete", "3 services updated")
	if err != nil {
		t.Fatalf("show --dry-run failed: %v", err)
	}

	var got showResult
	decode(t, out, &got)
	if got.AppID != "dry.run" || got.Template != "ToastText03" {
		t.Errorf("result = %+v", got)
	}

	doc, err := toast.ParseContent(got.XML)
	if err != nil {
		t.Fatalf("dry-run XML does not parse: %v", err)
	}
	actions := doc.FindElements("//actions/action")
	if len(actions) != 2 {
		t.Fatalf("found %d actions, want 2", len(actions))
	}
	if got := actions[0].SelectAttrValue("arguments", ""); got != "open" {
		t.Errorf("first action arguments = %q", got)
	}
	if got := doc.FindElement("//audio").SelectAttrValue("src", ""); got != toast.AudioMail {
		t.Errorf("audio = %q", got)
	}
}

func TestShow_MemoryBackend(t *testing.T) {
	out, err := run(t, "--backend", "memory", "-o", "json", "show", "--app-id", "mem.app", "Hello")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}

	var got showResult
	decode(t, out, &got)
	if got.AppID != "mem.app" || got.Template != "ToastText01" {
		t.Errorf("result = %+v", got)
	}
}

func TestShow_MainThreadCallbacks(t *testing.T) {
	out, err := run(t, "--backend", "memory", "-o", "json", "show", "--app-id", "main.thread",
		"--callbacks", "main", "--wait", "--wait-timeout", "20ms", "Hello")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}

	var got showResult
	decode(t, out, &got)
	if got.Outcome != "timeout" {
		t.Errorf("outcome = %q, want timeout", got.Outcome)
	}

	_, err = run(t, "show", "--dry-run", "--callbacks", "ui", "x")
	if err == nil || !strings.Contains(err.Error(), "invalid --callbacks") {
		t.Errorf("expected invalid --callbacks error, got %v", err)
	}
}

func TestShow_Errors(t *testing.T) {
	if _, err := run(t, "show", "--dry-run"); !errors.Is(err, errNoLines) {
		t.Errorf("no lines: error = %v, want errNoLines", err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown audio", []string{"show", "--dry-run", "--audio", "kazoo", "x"}, "unknown audio"},
		{"too many lines", []string{"show", "--dry-run", "a", "b", "c", "d"}, "accepts at most 3 arg(s)"},
		{"unknown backend", []string{"--backend", "fax", "show", "x"}, "unknown notification backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestConfig_SetAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if _, err := runWithConfig(t, path, "config", "set", "appId", "com.example.ci"); err != nil {
		t.Fatalf("config set appId failed: %v", err)
	}
	if _, err := runWithConfig(t, path, "config", "set", "defaults.expiration", "10m"); err != nil {
		t.Fatalf("config set defaults.expiration failed: %v", err)
	}

	out, err := runWithConfig(t, path, "-o", "json", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	var got configResult
	decode(t, out, &got)
	if got.Path != path {
		t.Errorf("path = %q, want %q", got.Path, path)
	}
	if got.Config.AppID != "com.example.ci" {
		t.Errorf("appId = %q", got.Config.AppID)
	}
	if got.Config.Defaults.Expiration != 10*time.Minute {
		t.Errorf("defaults.expiration = %v", got.Config.Defaults.Expiration)
	}

	if _, err := runWithConfig(t, path, "config", "set", "timeout", "soon"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNoColorFlag(t *testing.T) {
	out, err := run(t, "--no-color", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("output contains color codes: %q", out)
	}
	if !strings.Contains(out, "(unset)") {
		t.Errorf("expected unset app id in output:\n%s", out)
	}
}

func TestTemplate_Selected(t *testing.T) {
	out, err := run(t, "-o", "json", "template", "--image", "Short", "A much longer second line")
	if err != nil {
		t.Fatalf("template failed: %v", err)
	}

	var got templateInfo
	decode(t, out, &got)
	if got.Template != "ToastImageAndText02" || got.Lines != 2 || !got.Image {
		t.Errorf("result = %+v", got)
	}
	if !strings.Contains(got.XML, `template="ToastImageAndText02"`) {
		t.Errorf("XML does not name the template:\n%s", got.XML)
	}
}

func TestTemplate_List(t *testing.T) {
	out, err := run(t, "-o", "json", "template", "--list")
	if err != nil {
		t.Fatalf("template --list failed: %v", err)
	}

	var got []templateInfo
	decode(t, out, &got)
	if len(got) != 8 {
		t.Errorf("listed %d templates, want 8", len(got))
	}
}

func TestBuildToast_Defaults(t *testing.T) {
	a := &app{cfg: config.Default()}
	a.cfg.Defaults.Silent = true
	a.cfg.Defaults.Expiration = time.Minute

	tst, err := buildToast(a, &showOptions{launch: "go"}, []string{"x"})
	if err != nil {
		t.Fatalf("buildToast() error = %v", err)
	}
	if tst.Audio == nil || !tst.Audio.Silent {
		t.Errorf("default silence not applied: %+v", tst.Audio)
	}
	if tst.ExpirationTime == nil {
		t.Fatal("default expiration not applied")
	}
	if d := time.Until(*tst.ExpirationTime); d < 55*time.Second || d > time.Minute {
		t.Errorf("expiration in %v, want about a minute", d)
	}
	if tst.Launch != "go" {
		t.Errorf("launch = %q", tst.Launch)
	}

	_, err = buildToast(a, &showOptions{actions: []string{"=args"}}, []string{"x"})
	if err == nil || !strings.Contains(err.Error(), "no label") {
		t.Errorf("expected missing label error, got %v", err)
	}
}

func TestBackendValue(t *testing.T) {
	var b backendValue
	if err := b.Set("DBUS"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if b.String() != "dbus" || !b.set || b.Type() != "backend" {
		t.Errorf("backendValue = %+v", b)
	}
	if err := b.Set("fax"); !errors.Is(err, notify.ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
