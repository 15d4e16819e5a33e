package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mvp-joe/autofix/internal/config"
	"github.com/mvp-joe/autofix/internal/diagnostic"
	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/mvp-joe/autofix/internal/language"
	"github.com/mvp-joe/autofix/internal/llm"
	"github.com/mvp-joe/autofix/internal/pipeline"
	"go.uber.org/zap"
)

// reportOverrides are command-line replacements for the report section.
type reportOverrides struct {
	path    string
	format  string
	changed bool // --report was given, even as ""
}

// noReport disables the fix report regardless of configuration.
var noReport = &reportOverrides{changed: true}

// buildPipeline loads configuration and constructs every collaborator once.
// The returned cleanup releases the reply cache.
func buildPipeline(ctx context.Context, logger *zap.Logger, report *reportOverrides) (*pipeline.Pipeline, func(), error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.NewLoader(cwd).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	service, err := llm.NewService(ctx, cfg.Service.LLM())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create reasoning service: %w", err)
	}

	cleanup := func() {}
	if cfg.Cache.Enabled {
		cached, err := fixer.NewCachingService(service, cfg.Cache.Capacity, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create reply cache: %w", err)
		}
		service = cached
		cleanup = cached.Close
	}

	orchestrator, err := fixer.NewOrchestrator(service, cfg.Retry.Policy(),
		fixer.WithLogger(logger),
		fixer.WithRequestsPerMinute(cfg.Retry.RequestsPerMinute),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	writer, err := reportWriter(cfg.Report, report)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	collector := diagnostic.NewCollector(diagnostic.NewExecRunner(cfg.Checker.Timeout), logger)

	logger.Debug("pipeline ready",
		zap.String("service", service.Name()),
		zap.Int("max_attempts", cfg.Retry.MaxAttempts),
		zap.Duration("backoff", cfg.Retry.Backoff),
		zap.Bool("cache", cfg.Cache.Enabled))

	p := pipeline.New(language.DefaultRegistry(), collector, orchestrator, pipeline.Config{
		Window: cfg.Context.Window,
		Report: writer,
	}, logger)

	return p, cleanup, nil
}

// reportWriter applies overrides to the configured report. A nil writer
// means no report is written.
func reportWriter(cfg config.ReportConfig, report *reportOverrides) (*pipeline.ReportWriter, error) {
	path, format := cfg.Path, cfg.Format
	if report != nil {
		if report.changed {
			// format follows the new path's extension unless --format is given
			path, format = report.path, ""
		}
		if report.format != "" {
			format = report.format
		}
	}
	if path == "" {
		return nil, nil
	}
	return pipeline.NewReportWriter(path, pipeline.ReportFormat(format))
}
