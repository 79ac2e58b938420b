package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"standcore/internal/blob"
	"standcore/internal/core"
	"standcore/internal/export"
	"standcore/internal/ingest"
	"standcore/internal/observability"
	"standcore/pkg/domain"
)

const exportWaitTimeout = 5 * time.Minute

func runCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile one site and persist the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "standcore.yaml", "Config file path (YAML)")
	return cmd
}

func runReconcile(parent context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, flush, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer flush()

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint failed", "addr", cfg.Metrics.Listen, "error", err)
			}
		}()
		defer func() { _ = server.Close() }()
		logger.Info("metrics endpoint listening", "addr", cfg.Metrics.Listen)
	}

	store, err := core.OpenRunStore()
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer func() { _ = store.Close() }()

	tables, err := ingest.LoadTables(cfg.Inputs)
	if err != nil {
		return fmt.Errorf("load input tables: %w", err)
	}
	logger.Info("input tables loaded",
		"site", cfg.SiteID,
		"observations", len(tables.Observations),
		"individuals", len(tables.Individuals),
		"allometry", len(tables.Allometry),
		"surveys", len(tables.Surveys))

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
	}
	if len(cfg.Methods) > 0 {
		opts = append(opts, core.WithMethods(cfg.Methods...))
	}
	if cfg.Outlier.GrowthSpikeCmPerYr > 0 && cfg.Outlier.DeclineSpikeCmPerYr > 0 {
		opts = append(opts, core.WithOutlierThresholds(cfg.Outlier.GrowthSpikeCmPerYr, cfg.Outlier.DeclineSpikeCmPerYr))
	}
	if cfg.Concurrency > 0 {
		opts = append(opts, core.WithPlotConcurrency(cfg.Concurrency))
	}
	pipeline := core.NewPipeline(opts...)

	result, err := pipeline.Run(ctx, core.SiteInput{
		SiteID:       cfg.SiteID,
		Observations: tables.Observations,
		Individuals:  tables.Individuals,
		Allometry:    tables.Allometry,
		SurveyEvents: tables.Surveys,
	})
	if err != nil {
		return fmt.Errorf("reconcile site %s: %w", cfg.SiteID, err)
	}

	record := domain.RunRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}
	if err := store.SaveRun(ctx, record); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	logger.Info("run persisted",
		"run", record.ID,
		"site", result.SiteID,
		"individual_years", len(result.IndividualYears),
		"plot_years", len(result.PlotYears),
		"exceptions", len(result.Exceptions),
		"issues", len(result.Report.Issues))

	if cfg.Export.Enabled {
		if err := runExport(ctx, cfg.Export, record, logger); err != nil {
			return fmt.Errorf("export run %s: %w", record.ID, err)
		}
	}

	fmt.Printf("run %s: %d plot-years, %d individual-years, %d exceptions, %d issues\n",
		record.ID, len(result.PlotYears), len(result.IndividualYears),
		len(result.Exceptions), len(result.Report.Issues))
	return nil
}

func runExport(ctx context.Context, cfg ExportConfig, record domain.RunRecord, logger core.Logger) error {
	store, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	worker := export.NewWorker(store, auditLog{logger: logger})
	worker.Start()
	defer func() { _ = worker.Stop(context.Background()) }()

	tables := make([]export.Table, 0, len(cfg.Tables))
	for _, table := range cfg.Tables {
		tables = append(tables, export.Table(table))
	}
	formats := make([]export.Format, 0, len(cfg.Formats))
	for _, format := range cfg.Formats {
		formats = append(formats, export.Format(format))
	}

	queued, err := worker.Enqueue(ctx, export.Input{
		RunID:       record.ID,
		Result:      record.Result,
		Tables:      tables,
		Formats:     formats,
		RequestedBy: cfg.RequestedBy,
		Reason:      cfg.Reason,
	})
	if err != nil {
		return err
	}

	final, err := waitForExport(ctx, worker, queued.ID)
	if err != nil {
		return err
	}
	if final.Status == export.StatusFailed {
		return fmt.Errorf("export failed: %s", final.Error)
	}
	for _, artifact := range final.Artifacts {
		logger.Info("artifact stored",
			"key", artifact.Key,
			"table", string(artifact.Table),
			"format", string(artifact.Format),
			"rows", artifact.Rows,
			"bytes", artifact.SizeBytes)
	}
	return nil
}

// waitForExport polls the worker until the job leaves the queue.
func waitForExport(ctx context.Context, worker *export.Worker, id string) (export.Record, error) {
	deadline := time.NewTimer(exportWaitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		record, ok := worker.Get(id)
		if !ok {
			return export.Record{}, fmt.Errorf("export %s vanished", id)
		}
		if record.Status == export.StatusSucceeded || record.Status == export.StatusFailed {
			return record, nil
		}
		select {
		case <-ctx.Done():
			return export.Record{}, ctx.Err()
		case <-deadline.C:
			return export.Record{}, fmt.Errorf("export %s timed out", id)
		case <-ticker.C:
		}
	}
}

// auditLog writes export audit entries to the structured log.
type auditLog struct {
	logger core.Logger
}

func (l auditLog) Record(_ context.Context, entry export.AuditEntry) {
	l.logger.Info("export audit",
		"id", entry.ID,
		"action", entry.Action,
		"run", entry.RunID,
		"site", entry.SiteID,
		"status", string(entry.Status))
}
