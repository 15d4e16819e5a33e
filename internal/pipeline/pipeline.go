// Package pipeline runs the diagnostic-to-fix flow for one source file:
// collect diagnostics, attach context, request fixes, parse the reply.
//
// Two modes are supported:
//   - Batched: linter diagnostics with context windows go out in one
//     structured request; the reply is validated per fix object and
//     optionally persisted as a report.
//   - Single-shot: a failed compile sends the whole file plus the compiler
//     output and expects free text with one fenced code block.
//
// Runs are synchronous. Temporary files created for source-mode runs are
// removed on every exit path.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mvp-joe/autofix/internal/diagnostic"
	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/mvp-joe/autofix/internal/language"
	"github.com/mvp-joe/autofix/internal/response"
	"github.com/mvp-joe/autofix/internal/sourcectx"
	"go.uber.org/zap"
)

var (
	// ErrSourceUnavailable is returned when the target file cannot be read.
	ErrSourceUnavailable = errors.New("source file unavailable")

	// ErrNoLinter is returned when batched mode is requested for a language
	// without a per-line analyser.
	ErrNoLinter = errors.New("language has no line-level analyser")
)

// FixRequester sends a fix request and returns the raw reply.
// *fixer.Orchestrator implements it.
type FixRequester interface {
	RequestFix(ctx context.Context, req *fixer.Request) (string, error)
}

// Config holds per-pipeline settings.
type Config struct {
	// Window is the number of context lines on each side of a diagnostic.
	Window int

	// Report persists batched fixes. Nil disables the report.
	Report *ReportWriter

	// TempDir is where source-mode files are written. Empty means os.TempDir().
	TempDir string
}

// Pipeline wires the collector, orchestrator and parser together.
type Pipeline struct {
	registry  *language.Registry
	collector *diagnostic.Collector
	fixer     FixRequester
	cfg       Config
	logger    *zap.Logger
}

// New creates a pipeline. A nil logger disables logging.
func New(registry *language.Registry, collector *diagnostic.Collector, requester FixRequester, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Window < 0 {
		cfg.Window = 0
	}
	return &Pipeline{
		registry:  registry,
		collector: collector,
		fixer:     requester,
		cfg:       cfg,
		logger:    logger,
	}
}

// RunFile analyses an existing file. An empty lang is detected from the
// file name.
func (p *Pipeline) RunFile(ctx context.Context, filePath, lang string, mode fixer.Mode) (*Outcome, error) {
	profile, err := p.profileFor(filePath, lang)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, filePath)
	}

	return p.run(ctx, filePath, profile, mode)
}

// RunSource writes code to a fresh temporary directory, analyses it, and
// removes the directory before returning. Class-based languages get the
// file name their compiler requires.
func (p *Pipeline) RunSource(ctx context.Context, code, lang string, mode fixer.Mode) (*Outcome, error) {
	profile, err := p.registry.Resolve(lang)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(p.tempDir(), "autofix-"+uuid.NewString())
	if err := os.Mkdir(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("failed to remove temp dir", zap.String("dir", dir), zap.Error(err))
		}
	}()

	name := profile.SourceFilename(code, "snippet")
	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, []byte(code), 0600); err != nil {
		return nil, fmt.Errorf("failed to write temp source: %w", err)
	}

	outcome, err := p.run(ctx, filePath, profile, mode)
	if err != nil {
		return nil, err
	}
	outcome.FilePath = name
	return outcome, nil
}

func (p *Pipeline) profileFor(filePath, lang string) (language.Profile, error) {
	if lang != "" {
		return p.registry.Resolve(lang)
	}
	return p.registry.Detect(filePath)
}

func (p *Pipeline) tempDir() string {
	if p.cfg.TempDir != "" {
		return p.cfg.TempDir
	}
	return os.TempDir()
}

func (p *Pipeline) run(ctx context.Context, filePath string, profile language.Profile, mode fixer.Mode) (*Outcome, error) {
	switch mode {
	case fixer.ModeBatched:
		return p.runBatched(ctx, filePath, profile)
	case fixer.ModeSingleShot, "":
		return p.runSingleShot(ctx, filePath, profile)
	default:
		return nil, fmt.Errorf("unknown mode %q (must be %s or %s)", mode, fixer.ModeBatched, fixer.ModeSingleShot)
	}
}

func (p *Pipeline) runBatched(ctx context.Context, filePath string, profile language.Profile) (*Outcome, error) {
	if !profile.HasLinter() {
		return nil, fmt.Errorf("%w: %s supports single-shot mode only", ErrNoLinter, profile.DisplayName)
	}
	linter := *profile.Linter

	diags, err := p.collector.Collect(ctx, filePath, linter)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Status:      StatusNoIssues,
		Mode:        fixer.ModeBatched,
		FilePath:    filePath,
		Language:    profile.Name,
		Tool:        linter.Tool,
		Diagnostics: diags,
		Fixes:       []response.FixResult{},
	}
	if len(diags) == 0 {
		return outcome, nil
	}

	items := p.attachContext(filePath, diags)
	req := fixer.NewBatchRequest(profile, linter.Tool, items, fixer.FormatStructuredJSON)

	raw, err := p.fixer.RequestFix(ctx, req)
	if err != nil {
		return nil, err
	}

	parsed, err := response.Parse(raw, req.Format)
	if err != nil {
		return nil, err
	}

	fixes, stray := response.RestrictToLines(parsed.Fixes, req.Lines())
	dropped := parsed.Dropped + stray
	if dropped > 0 {
		p.logger.Warn("dropped fix objects from reply",
			zap.String("request_id", req.ID),
			zap.Int("dropped", dropped),
			zap.Int("invalid", parsed.Dropped),
			zap.Int("unknown_line", stray))
	}

	outcome.Status = StatusFixed
	outcome.Fixes = fixes
	outcome.Dropped = dropped

	if p.cfg.Report != nil {
		if err := p.cfg.Report.Write(fixes); err != nil {
			return nil, err
		}
		outcome.ReportPath = p.cfg.Report.Path
	}
	return outcome, nil
}

// attachContext builds one item per anchored diagnostic. Windows that
// cannot be extracted degrade to the placeholder instead of failing.
func (p *Pipeline) attachContext(filePath string, diags []diagnostic.Diagnostic) []fixer.Item {
	lines, readErr := sourcectx.ReadLines(filePath)

	items := make([]fixer.Item, 0, len(diags))
	for _, d := range diags {
		if !d.HasLine() {
			continue
		}

		item := fixer.Item{Diagnostic: d}
		err := readErr
		if err == nil {
			item.Context, err = sourcectx.FromLines(filePath, lines, d.Line, p.cfg.Window)
		}
		if err != nil {
			p.logger.Debug("context unavailable, using placeholder",
				zap.String("file", filePath),
				zap.Int("line", d.Line),
				zap.Error(err))
		}
		items = append(items, item)
	}
	return items
}

func (p *Pipeline) runSingleShot(ctx context.Context, filePath string, profile language.Profile) (*Outcome, error) {
	diags, err := p.collector.Collect(ctx, filePath, profile.Compiler)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Status:      StatusNoIssues,
		Mode:        fixer.ModeSingleShot,
		FilePath:    filePath,
		Language:    profile.Name,
		Tool:        profile.Compiler.Tool,
		Diagnostics: diags,
		Fixes:       []response.FixResult{},
	}
	if len(diags) == 0 {
		return outcome, nil
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	errorOutput := diags[0].RawToolOutput
	req := fixer.NewSingleShotRequest(profile, filePath, string(source), errorOutput, fixer.FormatFreeText)

	raw, err := p.fixer.RequestFix(ctx, req)
	if err != nil {
		return nil, err
	}

	parsed, err := response.Parse(raw, req.Format)
	if err != nil {
		return nil, err
	}

	outcome.Status = StatusFixed
	outcome.Fixes = parsed.Fixes
	outcome.ErrorOutput = errorOutput
	outcome.Explanation = raw
	return outcome, nil
}
