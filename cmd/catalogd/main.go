// Package main runs the catalog service daemon.
package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"catalogcore/internal/adapters/catalogapi"
	"catalogcore/internal/adapters/exportapi"
	"catalogcore/internal/blob"
	"catalogcore/internal/config"
	"catalogcore/internal/core"
	"catalogcore/internal/infra/blob/s3"
	"catalogcore/internal/source"
	"catalogcore/internal/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("catalogd failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "catalogd",
		Short:         "Feature catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (optional)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Load the catalog and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serveCatalog(cmd.Context(), cfg)
		},
	}
	root.AddCommand(serve)
	return root
}

func serveCatalog(ctx context.Context, cfg config.Config) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "catalogd"})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	svc, err := buildService(cfg, registry)
	if err != nil {
		return err
	}

	recordSource, err := source.New(source.Driver(cfg.Source.Driver), cfg.SourcePath())
	if err != nil {
		return err
	}
	if err := svc.LoadFromSource(ctx, recordSource); err != nil {
		// The server still comes up so the state endpoint can report the
		// failure instead of crash looping on a bad data file.
		logger.Error("catalog load failed", "driver", cfg.Source.Driver, "err", err)
	} else {
		logger.Info("catalog loaded", "driver", cfg.Source.Driver, "records", svc.LoadState().Count)
	}

	store, err := blob.NewStore(ctx, blob.Driver(cfg.Blob.Driver), cfg.Blob.FSRoot, s3.OpenFromEnv)
	if err != nil {
		return err
	}
	worker := exportapi.NewWorker(svc, store, logAuditor{logger: logger})
	worker.Start()

	reporter := telemetry.NewReporter(cfg.Telemetry.Endpoint, logger)

	handler := catalogapi.NewHandler(svc, logger)
	handler.Exports = worker
	handler.Visits = reporter

	mux := http.NewServeMux()
	mux.Handle("/api/v1/catalog/", handler)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.Listen, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "blob", store.Driver())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("export worker shutdown: %w", err)
	}
	return <-errCh
}

// logAuditor writes export audit entries to the structured log.
type logAuditor struct {
	logger *log.Logger
}

func (a logAuditor) Record(_ context.Context, entry exportapi.AuditEntry) {
	a.logger.Info("export audit",
		"action", entry.Action,
		"export_id", entry.ExportID,
		"status", entry.Status,
		"actor", entry.Actor,
		"detail", entry.Detail,
	)
}

func buildService(cfg config.Config, registry *prometheus.Registry) (*core.Service, error) {
	switch strings.ToLower(cfg.Metrics.Driver) {
	case "prometheus", "":
		recorder, err := core.NewPrometheusMetricsRecorder(registry)
		if err != nil {
			return nil, err
		}
		return core.NewService(core.WithMetrics(recorder)), nil
	case "expvar":
		return core.NewService(core.WithMetrics(core.NewExpvarMetricsRecorder("catalog_service"))), nil
	case "none":
		return core.NewService(), nil
	default:
		return nil, fmt.Errorf("unknown metrics driver %q", cfg.Metrics.Driver)
	}
}
