//go:build windows

package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/jongio/azd-toast/toast"
)

const platformBackend = BackendPowerShell

const (
	// maxAppIDLength bounds the AppUserModelID passed to CreateToastNotifier.
	maxAppIDLength = 128
	// maxGroupLength is the WinRT limit for toast tags and groups.
	maxGroupLength = 64
)

// powershellService implements Service with the WinRT toast API driven
// through PowerShell. The rendered document is handed over verbatim, so the
// platform renders the legacy template itself.
type powershellService struct {
	toast.Catalog
	config Config
	next   atomic.Uint64
	run    func(ctx context.Context, script string) ([]byte, error)

	// programsDir is the Start Menu folder shortcuts are created in. Empty
	// disables registration.
	programsDir string
	exePath     string

	regMu      sync.Mutex
	registered map[string]bool
}

// newPlatformService creates the Windows service.
func newPlatformService(config Config) (Service, error) {
	p := &powershellService{config: config, run: runPowerShell, registered: make(map[string]bool)}
	if appData := os.Getenv("APPDATA"); appData != "" {
		p.programsDir = filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs")
	}
	if exe, err := os.Executable(); err == nil {
		p.exePath = exe
	}
	return p, nil
}

func runPowerShell(ctx context.Context, script string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "powershell.exe", "-NoProfile", "-NonInteractive", "-Command", script)
	return cmd.CombinedOutput()
}

// Show submits the document with a tag unique to this process and the app id
// as group, so Hide can remove it from the action center.
func (p *powershellService) Show(ctx context.Context, sub toast.Submission) (toast.Handle, error) {
	if sub.Content == nil || sub.Content.Root() == nil {
		return toast.Handle{}, fmt.Errorf("%w: empty content", ErrNotificationFailed)
	}
	xml, err := sub.Content.WriteToString()
	if err != nil {
		return toast.Handle{}, fmt.Errorf("%w: serializing content: %v", ErrNotificationFailed, err)
	}

	p.ensureRegistered(ctx, sub.AppID)

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	tag := "t" + strconv.FormatUint(p.next.Add(1), 10)
	script := buildShowScript(sub.AppID, tag, xml, sub.ExpirationTime)
	if out, err := p.run(ctx, script); err != nil {
		return toast.Handle{}, fmt.Errorf("%w: %v (output: %s)", ErrNotificationFailed, err, strings.TrimSpace(string(out)))
	}

	log.WithNotification(sub.AppID).Debug("toast sent", "tag", tag)
	return toast.Handle{AppID: sub.AppID, ID: tag}, nil
}

// ensureRegistered creates a Start Menu shortcut carrying appID as its
// AppUserModelID. Windows drops toasts from ids without one. Each id is
// attempted once per process and a failure only produces a note, since an
// id registered by an installer still works.
func (p *powershellService) ensureRegistered(ctx context.Context, appID string) {
	p.regMu.Lock()
	defer p.regMu.Unlock()
	if p.registered == nil {
		p.registered = make(map[string]bool)
	}
	if p.registered[appID] {
		return
	}
	p.registered[appID] = true

	logger := log.WithNotification(appID)
	if p.programsDir == "" || p.exePath == "" {
		logger.Info("could not register notification app", "error", "start menu folder or executable path unknown")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	shortcut := filepath.Join(p.programsDir, shortcutName(appID))
	if out, err := p.run(ctx, buildRegisterScript(shortcut, p.exePath, notifierID(appID))); err != nil {
		logger.Info("could not register notification app", "error", err, "output", strings.TrimSpace(string(out)))
		return
	}
	logger.Debug("notification app registered", "shortcut", shortcut)
}

// Hide removes the toast from the notification history.
func (p *powershellService) Hide(ctx context.Context, h toast.Handle) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	script := buildHideScript(h.AppID, h.ID)
	if out, err := p.run(ctx, script); err != nil {
		return fmt.Errorf("%w: %v (output: %s)", ErrNotificationFailed, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// IsAvailable checks if PowerShell is on PATH.
func (p *powershellService) IsAvailable() bool {
	_, err := exec.LookPath("powershell.exe")
	return err == nil
}

// Close is a no-op.
func (p *powershellService) Close() error {
	return nil
}

const winrtPreamble = `$ErrorActionPreference = 'Stop'
[void][Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime]
[void][Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime]
`

func buildShowScript(appID, tag, xml string, expiration *time.Time) string {
	var b strings.Builder
	b.WriteString(winrtPreamble)
	fmt.Fprintf(&b, "$xml = New-Object Windows.Data.Xml.Dom.XmlDocument\n")
	fmt.Fprintf(&b, "$xml.LoadXml(%s)\n", psQuote(xml))
	fmt.Fprintf(&b, "$toast = New-Object Windows.UI.Notifications.ToastNotification $xml\n")
	fmt.Fprintf(&b, "$toast.Tag = %s\n", psQuote(tag))
	fmt.Fprintf(&b, "$toast.Group = %s\n", psQuote(group(appID)))
	if expiration != nil {
		fmt.Fprintf(&b, "$toast.ExpirationTime = [DateTimeOffset]::Parse(%s)\n", psQuote(expiration.UTC().Format(time.RFC3339)))
	}
	fmt.Fprintf(&b, "[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(%s).Show($toast)\n", psQuote(notifierID(appID)))
	return b.String()
}

// registerHelper sets PKEY_AppUserModel_ID on an existing shortcut.
const registerHelper = `Add-Type -TypeDefinition @'
using System;
using System.Runtime.InteropServices;
using System.Runtime.InteropServices.ComTypes;
namespace ToastShortcut {
    [ComImport, Guid("886D8EEB-8CF2-4446-8D02-CDBA1DBDCF99"), InterfaceType(ComInterfaceType.InterfaceIsIUnknown)]
    public interface IPropertyStore {
        int GetCount(out uint count);
        int GetAt(uint index, out PropertyKey key);
        int GetValue(ref PropertyKey key, out PropVariant value);
        int SetValue(ref PropertyKey key, ref PropVariant value);
        int Commit();
    }
    [StructLayout(LayoutKind.Sequential, Pack = 4)]
    public struct PropertyKey {
        public Guid FormatID;
        public uint PropertyID;
    }
    [StructLayout(LayoutKind.Explicit)]
    public struct PropVariant {
        [FieldOffset(0)] public ushort VarType;
        [FieldOffset(8)] public IntPtr Pointer;
    }
    [ComImport, Guid("00021401-0000-0000-C000-000000000046")]
    public class ShellLink { }
    public static class Helper {
        public static void SetAppID(string path, string appID) {
            var link = (IPersistFile)new ShellLink();
            link.Load(path, 2);
            var key = new PropertyKey { FormatID = new Guid("9F4C2855-9F79-4B39-A8D0-E1D42DE1D5F3"), PropertyID = 5 };
            var value = new PropVariant { VarType = 31, Pointer = Marshal.StringToCoTaskMemUni(appID) };
            var store = (IPropertyStore)link;
            store.SetValue(ref key, ref value);
            store.Commit();
            link.Save(path, true);
            Marshal.FreeCoTaskMem(value.Pointer);
            Marshal.ReleaseComObject(link);
        }
    }
}
'@
`

func buildRegisterScript(shortcut, target, appID string) string {
	var b strings.Builder
	b.WriteString("$ErrorActionPreference = 'Stop'\n")
	fmt.Fprintf(&b, "$shortcutPath = %s\n", psQuote(shortcut))
	b.WriteString("if (Test-Path -LiteralPath $shortcutPath) { return }\n")
	b.WriteString("$shell = New-Object -ComObject WScript.Shell\n")
	b.WriteString("$link = $shell.CreateShortcut($shortcutPath)\n")
	fmt.Fprintf(&b, "$link.TargetPath = %s\n", psQuote(target))
	b.WriteString("$link.Save()\n")
	b.WriteString(registerHelper)
	fmt.Fprintf(&b, "[ToastShortcut.Helper]::SetAppID($shortcutPath, %s)\n", psQuote(appID))
	return b.String()
}

// shortcutName maps appID to a file name for the Start Menu shortcut.
func shortcutName(appID string) string {
	name := strings.Map(func(r rune) rune {
		if r < 32 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, truncateRunes(appID, maxAppIDLength))
	return strings.TrimRight(name, ". ") + ".lnk"
}

func buildHideScript(appID, tag string) string {
	return winrtPreamble + fmt.Sprintf(
		"[Windows.UI.Notifications.ToastNotificationManager]::History.Remove(%s, %s, %s)\n",
		psQuote(tag), psQuote(group(appID)), psQuote(notifierID(appID)))
}

// psQuote returns s as a single-quoted PowerShell literal. Control
// characters other than tab and newline are dropped.
func psQuote(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	// PowerShell also treats typographic quotes as string delimiters
	r := strings.NewReplacer("'", "''", "‘", "''", "’", "''", "‚", "''", "‛", "''")
	return "'" + r.Replace(s) + "'"
}

func notifierID(appID string) string {
	return truncateRunes(appID, maxAppIDLength)
}

// group derives the history group from the app id.
func group(appID string) string {
	return truncateRunes(appID, maxGroupLength)
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size > 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
