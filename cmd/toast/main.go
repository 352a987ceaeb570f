// Command toast builds and shows desktop toast notifications.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jongio/azd-toast/cliout"
	"github.com/jongio/azd-toast/config"
	"github.com/jongio/azd-toast/dispatch"
	"github.com/jongio/azd-toast/logutil"
	"github.com/jongio/azd-toast/notify"
	"github.com/jongio/azd-toast/version"
)

// app holds state shared by all commands once flags are parsed.
type app struct {
	configPath string
	debug      bool
	output     string
	noColor    bool
	backend    backendValue

	cfg config.Config
}

func main() {
	code := 0
	// show --callbacks main delivers toast events on the main thread
	dispatch.Run(func() { code = execute() })
	os.Exit(code)
}

func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		switch cliout.GetFormat() {
		case cliout.FormatJSON:
			_ = cliout.PrintJSON(map[string]string{"error": err.Error()})
		default:
			cliout.Error("%v", err)
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "toast",
		Short:         "Show desktop toast notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	addGlobalFlags(root.PersistentFlags(), a)

	root.AddCommand(
		newShowCommand(a),
		newTemplateCommand(a),
		newMCPCommand(a),
		newConfigCommand(a),
		version.NewCommand(version.New("toast")),
	)
	return root
}

func addGlobalFlags(fs *pflag.FlagSet, a *app) {
	fs.StringVar(&a.configPath, "config", "", "Path to the config file (default: user config dir)")
	fs.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	fs.StringVarP(&a.output, "output", "o", "default", "Output format: default or json")
	fs.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	fs.Var(&a.backend, "backend", fmt.Sprintf("Notification backend %v", notify.Backends()))
}

func (a *app) init() error {
	if err := cliout.SetFormat(a.output); err != nil {
		return err
	}
	if a.noColor {
		cliout.NoColor()
	}

	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.backend.set {
		cfg.Backend = string(a.backend.value)
	}
	a.cfg = cfg

	logutil.SetupLogger(a.debug || cfg.Debug, cfg.StructuredLogs)
	logutil.Debug("configuration loaded", "path", path, "backend", cfg.Backend)
	return nil
}

// resolveConfigPath returns --config or the default location, remembering
// the result for commands that write the file.
func (a *app) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	p, err := config.Path()
	if err != nil {
		return "", err
	}
	a.configPath = p
	return p, nil
}

// newService creates the configured notification service behind a guard.
func (a *app) newService() (notify.Service, error) {
	nc, err := a.cfg.NotifyConfig()
	if err != nil {
		return nil, err
	}
	svc, err := notify.New(nc)
	if err != nil {
		return nil, err
	}
	if !svc.IsAvailable() {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: backend %s", notify.ErrNotAvailable, nc.Backend)
	}
	return notify.NewGuard(svc, a.cfg.GuardConfig(string(nc.Backend))), nil
}

// backendValue is a pflag.Value restricted to known backends.
type backendValue struct {
	value notify.Backend
	set   bool
}

func (b *backendValue) String() string { return string(b.value) }

func (b *backendValue) Set(s string) error {
	v, err := notify.ParseBackend(s)
	if err != nil {
		return err
	}
	b.value = v
	b.set = true
	return nil
}

func (b *backendValue) Type() string { return "backend" }

var _ pflag.Value = (*backendValue)(nil)

var errNoLines = errors.New("at least one line of text is required")
