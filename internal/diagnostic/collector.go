package diagnostic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mvp-joe/autofix/internal/language"
	"go.uber.org/zap"
)

// Collector runs checkers and normalizes their output into diagnostics.
type Collector struct {
	runner Runner
	logger *zap.Logger

	// TempDir holds per-run output directories. Empty means os.TempDir().
	TempDir string
}

// NewCollector creates a collector. A nil logger disables logging.
func NewCollector(runner Runner, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{runner: runner, logger: logger}
}

// Collect runs checker against filePath and returns its diagnostics in
// report order.
//
// Behavior by checker format:
//   - cppcheck-xml: one diagnostic per <error> with a resolvable line.
//     Malformed XML is logged and yields an empty result.
//   - text: exit 0 yields no diagnostics; a non-zero exit yields exactly one
//     unanchored diagnostic holding the whole tool output.
//
// A checker that cannot be started yields ErrCheckerUnavailable.
//
// Checkers that write build output get a private directory for {out},
// removed before Collect returns, so the source directory is left as found.
func (c *Collector) Collect(ctx context.Context, filePath string, checker language.Command) ([]Diagnostic, error) {
	var outDir string
	if checker.NeedsOutDir() {
		dir, err := c.makeOutDir()
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				c.logger.Warn("failed to remove checker output directory", zap.String("dir", dir), zap.Error(err))
			}
		}()
		outDir = dir
	}

	argv := checker.Argv(filePath, outDir)

	result, err := c.runner.Run(ctx, argv, filepath.Dir(filePath))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("checker finished",
		zap.String("tool", checker.Tool),
		zap.String("file", filePath),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("took", result.Duration))

	output := selectStream(result, checker.Output)

	switch checker.Format {
	case language.FormatCppcheckXML:
		diags, err := ParseCppcheckXML(output)
		if err != nil {
			if errors.Is(err, ErrMalformedOutput) {
				c.logger.Warn("malformed diagnostic output, treating as no findings",
					zap.String("tool", checker.Tool),
					zap.String("file", filePath),
					zap.Int("bytes", len(output)),
					zap.Error(err))
				return []Diagnostic{}, nil
			}
			return nil, err
		}
		return diags, nil

	case language.FormatText:
		if result.ExitCode == 0 {
			return []Diagnostic{}, nil
		}
		if len(bytes.TrimSpace(output)) == 0 {
			output = combined(result)
		}
		return []Diagnostic{compilerFailure(string(output), result.ExitCode)}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, checker.Format)
	}
}

func (c *Collector) makeOutDir() (string, error) {
	base := c.TempDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "autofix-out-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create checker output directory: %w", err)
	}
	return dir, nil
}

// compilerFailure wraps a failed compile as a single unanchored diagnostic.
// The message is the first non-empty line of output.
func compilerFailure(output string, exitCode int) Diagnostic {
	message := fmt.Sprintf("checker exited with status %d", exitCode)
	for _, line := range strings.Split(output, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			message = trimmed
			break
		}
	}
	return Diagnostic{
		Message:       message,
		Severity:      SeverityError,
		RawToolOutput: output,
	}
}

func selectStream(result *RunResult, stream language.Stream) []byte {
	switch stream {
	case language.StreamStdout:
		return result.Stdout
	case language.StreamCombined:
		return combined(result)
	default:
		return result.Stderr
	}
}

func combined(result *RunResult) []byte {
	out := make([]byte, 0, len(result.Stderr)+len(result.Stdout))
	out = append(out, result.Stderr...)
	out = append(out, result.Stdout...)
	return out
}
