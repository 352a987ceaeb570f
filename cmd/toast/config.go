package main

import (
	"github.com/spf13/cobra"

	"github.com/jongio/azd-toast/cliout"
	"github.com/jongio/azd-toast/config"
)

type configResult struct {
	Path   string        `json:"path"`
	Config config.Config `json:"config"`
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printConfig(a.configPath, a.cfg)
			},
		},
		&cobra.Command{
			Use:     "set <key> <value>",
			Short:   "Set one value in the configuration file",
			Example: "  toast config set appId com.example.builds\n  toast config set defaults.expiration 10m",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return setConfig(a.configPath, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the keys accepted by set",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				keys := config.Keys()
				return cliout.Print(keys, func() {
					for _, k := range keys {
						cliout.Plain("%s", k)
					}
				})
			},
		},
	)
	return cmd
}

func printConfig(path string, cfg config.Config) error {
	orUnset := func(s string) string {
		if s == "" {
			return cliout.Muted("(unset)")
		}
		return s
	}
	return cliout.Print(configResult{Path: path, Config: cfg}, func() {
		cliout.Label("File", path)
		cliout.Label("App ID", orUnset(cfg.AppID))
		cliout.Label("Backend", cfg.Backend)
		cliout.Label("Timeout", cfg.Timeout.String())
		cliout.Label("Audio", orUnset(cfg.Defaults.Audio))
		expiration := ""
		if cfg.Defaults.Expiration > 0 {
			expiration = cfg.Defaults.Expiration.String()
		}
		cliout.Label("Expiration", orUnset(expiration))
	})
}

// setConfig edits the file itself so environment overrides are not persisted.
func setConfig(path, key, value string) error {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	return cliout.Print(configResult{Path: path, Config: cfg}, func() {
		cliout.Info("Saved %s = %s to %s", key, value, path)
	})
}
