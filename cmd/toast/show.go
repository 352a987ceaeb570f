package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jongio/azd-toast/browser"
	"github.com/jongio/azd-toast/cliout"
	"github.com/jongio/azd-toast/dispatch"
	"github.com/jongio/azd-toast/toast"
)

type showOptions struct {
	image       string
	imageAlt    string
	audio       string
	silent      bool
	loop        bool
	actions     []string
	launch      string
	expire      time.Duration
	xmlFile     string
	appID       string
	dryRun      bool
	wait        bool
	waitTimeout time.Duration
	open        bool
	callbacks   string
}

func addShowFlags(fs *pflag.FlagSet, o *showOptions) {
	fs.StringVar(&o.image, "image", "", "Image URI shown with the text")
	fs.StringVar(&o.imageAlt, "image-alt", "", "Alternate text for the image")
	fs.StringVar(&o.audio, "audio", "", fmt.Sprintf("Sound to play %v or a sound URI", toast.AudioNames()))
	fs.BoolVar(&o.silent, "silent", false, "Play no sound")
	fs.BoolVar(&o.loop, "loop", false, "Loop the sound while the toast is shown")
	fs.StringArrayVar(&o.actions, "action", nil, "Action button as label or label=arguments (repeatable)")
	fs.StringVar(&o.launch, "launch", "", "Argument passed back when the toast is clicked")
	fs.DurationVar(&o.expire, "expire", 0, "Remove the toast from the notification center after this long")
	fs.StringVar(&o.xmlFile, "xml", "", "Show raw toast XML from a file ('-' for stdin) instead of lines")
	fs.StringVar(&o.appID, "app-id", "", "Application id (default: config appId or a random id)")
	fs.BoolVar(&o.dryRun, "dry-run", false, "Print the toast XML without showing it")
	fs.BoolVar(&o.wait, "wait", false, "Wait until the toast is activated or dismissed")
	fs.DurationVar(&o.waitTimeout, "wait-timeout", 0, "Give up waiting after this long (0 waits forever)")
	fs.BoolVar(&o.open, "open", false, "Open the activation argument in the browser when it is a URL")
	fs.StringVar(&o.callbacks, "callbacks", "queue", "Where toast events are handled: queue or main (the main thread)")
}

type showResult struct {
	AppID     string `json:"appId"`
	Template  string `json:"template"`
	XML       string `json:"xml,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

func newShowCommand(a *app) *cobra.Command {
	o := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show [line...]",
		Short: "Show a toast with up to three lines of text",
		Example: `  toast show "Build finished"
  toast show "Deploy complete" "3 services updated" --launch https://example.com --open --wait
  toast show --xml toast.xml`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), a, o, args, cmd.InOrStdin())
		},
	}

	addShowFlags(cmd.Flags(), o)
	return cmd
}

// buildToast turns positional lines and flags into a toast description.
func buildToast(a *app, o *showOptions, lines []string) (*toast.Toast, error) {
	if len(lines) == 0 {
		return nil, errNoLines
	}
	t := &toast.Toast{Lines: lines, Launch: o.launch}

	if o.image != "" {
		t.Image = &toast.Image{Src: o.image, Alt: o.imageAlt}
	}

	audio := o.audio
	if audio == "" {
		audio = a.cfg.Defaults.Audio
	}
	silent := o.silent || a.cfg.Defaults.Silent
	if audio != "" || silent || o.loop {
		t.Audio = &toast.Audio{Silent: silent, Loop: o.loop}
		if audio != "" {
			src, ok := toast.ParseAudio(audio)
			if !ok {
				return nil, fmt.Errorf("unknown audio %q (known: %s)", audio, strings.Join(toast.AudioNames(), ", "))
			}
			t.Audio.Src = src
		}
	}

	for _, spec := range o.actions {
		label, arguments, _ := strings.Cut(spec, "=")
		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("action %q has no label", spec)
		}
		t.Commands = append(t.Commands, &toast.Command{Content: label, Arguments: arguments})
	}

	expire := o.expire
	if expire == 0 {
		expire = a.cfg.Defaults.Expiration
	}
	if expire > 0 {
		exp := time.Now().Add(expire)
		t.ExpirationTime = &exp
	}
	return t, nil
}

func readXML(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	// #nosec G304 -- path is supplied by the user on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func runShow(ctx context.Context, a *app, o *showOptions, args []string, stdin io.Reader) error {
	var (
		t   *toast.Toast
		raw string
		err error
	)
	if o.callbacks != "queue" && o.callbacks != "main" {
		return fmt.Errorf("invalid --callbacks %q (valid options: queue, main)", o.callbacks)
	}
	if o.xmlFile != "" {
		if len(args) > 0 {
			return fmt.Errorf("--xml cannot be combined with text lines")
		}
		if raw, err = readXML(o.xmlFile, stdin); err != nil {
			return err
		}
	} else if t, err = buildToast(a, o, args); err != nil {
		return err
	}

	appID := o.appID
	if appID == "" {
		appID = a.cfg.AppID
	}

	if o.dryRun {
		return printDryRun(t, raw, appID)
	}

	svc, err := a.newService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	n := toast.New(svc, appID)
	if o.callbacks == "main" {
		n.Context = dispatch.MainThread{}
	} else {
		queue := dispatch.NewQueue(4)
		defer queue.Close()
		n.Context = queue
	}

	outcomes := make(chan showResult, 1)
	report := func(r showResult) {
		select {
		case outcomes <- r:
		default:
		}
	}
	openHook := browser.OpenOnActivate(browser.TargetDefault)
	n.OnActivated = func(n *toast.Notification, e toast.ActivatedEventArgs) {
		if o.open {
			openHook(n, e)
		}
		report(showResult{Outcome: "activated", Arguments: e.Arguments})
	}
	n.OnDismissed = func(_ *toast.Notification, e toast.DismissedEventArgs) {
		report(showResult{Outcome: "dismissed:" + e.Reason.String()})
	}
	n.OnFailed = func(_ *toast.Notification, e toast.FailedEventArgs) {
		report(showResult{Outcome: "failed", Arguments: fmt.Sprint(e.Err)})
	}

	if t != nil {
		n.Toast = *t
		err = n.Show(ctx)
	} else {
		err = n.ShowXML(ctx, raw)
	}
	if err != nil {
		return err
	}

	result := showResult{AppID: n.AppID()}
	if t != nil {
		if tt, err := t.Template(); err == nil {
			result.Template = tt.String()
		}
	}

	if o.wait {
		waitCtx := ctx
		if o.waitTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(ctx, o.waitTimeout)
			defer cancel()
		}
		select {
		case r := <-outcomes:
			result.Outcome, result.Arguments = r.Outcome, r.Arguments
		case <-waitCtx.Done():
			result.Outcome = "canceled"
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				result.Outcome = "timeout"
			}
			if err := n.Hide(context.WithoutCancel(ctx)); err != nil {
				cliout.Warning("could not hide toast: %v", err)
			}
		}
	}

	return cliout.Print(result, func() {
		cliout.Success("Toast shown")
		cliout.Label("App ID", result.AppID)
		if result.Template != "" {
			cliout.Label("Template", result.Template)
		}
		if result.Outcome != "" {
			cliout.Label("Outcome", result.Outcome)
		}
		if result.Arguments != "" {
			cliout.Label("Arguments", result.Arguments)
		}
	})
}

func printDryRun(t *toast.Toast, raw, appID string) error {
	var (
		doc *etree.Document
		err error
	)
	if t != nil {
		doc, err = t.Content(toast.Catalog{})
	} else {
		doc, err = toast.ParseContent(raw)
	}
	if err != nil {
		return err
	}

	doc.Indent(2)
	xml, err := doc.WriteToString()
	if err != nil {
		return err
	}

	result := showResult{AppID: appID, Template: toast.BindingTemplate(doc), XML: xml}
	return cliout.Print(result, func() {
		cliout.Plain("%s", strings.TrimRight(xml, "\n"))
	})
}
