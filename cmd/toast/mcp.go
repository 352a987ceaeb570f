package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jongio/azd-toast/logutil"
	"github.com/jongio/azd-toast/mcpserver"
	"github.com/jongio/azd-toast/version"
)

func newMCPCommand(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the toast tools over the Model Context Protocol (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if metricsAddr != "" {
				stop := serveMetrics(metricsAddr)
				defer stop()
			}

			s := mcpserver.NewServer(svc, mcpserver.Options{
				AppID:         a.cfg.AppID,
				Version:       version.New("toast").Version,
				RatePerSecond: a.cfg.RateLimit.PerSecond,
				Burst:         a.cfg.RateLimit.Burst,
			})
			return s.Serve()
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	return cmd
}

// serveMetrics exposes /metrics in the background and returns a shutdown func.
func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logutil.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logutil.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
