package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/qapish/qapish/internal/api"
	"github.com/qapish/qapish/internal/certs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the catalog, order and auth endpoints under /api, Prometheus
metrics under /metrics, and the web front end from the static directory.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8081, or :$PORT)")
	cmd.Flags().String("static-dir", "", "directory holding the built web front end")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed development certificate")
	cmd.Flags().String("cert-dir", "", "directory for the development certificate")

	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.static_dir", cmd.Flags().Lookup("static-dir"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("server.cert_dir", cmd.Flags().Lookup("cert-dir"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	source, cleanup, err := buildSource(ctx, settings)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cfg := api.DefaultConfig()
	cfg.Addr = settings.ServerAddr
	cfg.StaticDir = settings.StaticDir
	if settings.TLS {
		manager := certs.NewFileManager(settings.CertDir)
		cfg.TLS, err = manager.TLSConfig()
		if err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		slog.Info("Serving HTTPS", "certificate", manager.CertFile())
	}

	slog.Info("Starting API", "addr", cfg.Addr, "catalog", settings.CatalogMode)
	return api.NewServer(cfg, source, slog.Default(), registry).ListenAndServe(ctx)
}
