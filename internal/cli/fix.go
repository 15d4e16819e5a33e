package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/mvp-joe/autofix/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	fixLang       string
	fixMode       string
	fixReportPath string
	fixFormat     string
	fixJSON       bool
)

// fixCmd represents the fix command
var fixCmd = &cobra.Command{
	Use:   "fix <file>",
	Short: "Analyse a source file and suggest fixes",
	Long: `Analyse a source file and ask the reasoning service for fixes.

Modes:
  batched  Run the linter (cppcheck for C and C++), send every finding with
           its surrounding lines in one request, and write the validated
           fixes to a report (bug_report.json by default).
  single   Run the compiler's syntax check and, if it fails, send the error
           with the whole file and print the explanation and corrected code.

When --mode is omitted, batched is used for languages with a linter and
single for the rest.

Examples:
  autofix fix main.cpp
  autofix fix script.py
  autofix fix lib.c --report findings.yaml
  autofix fix Main.java --mode single --json`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().StringVarP(&fixLang, "lang", "l", "", "language (cpp, c, python, java, javascript); inferred from the file name when omitted")
	fixCmd.Flags().StringVarP(&fixMode, "mode", "m", "", "batched or single")
	fixCmd.Flags().StringVar(&fixReportPath, "report", pipeline.DefaultReportPath, "fix report path for batched mode; empty disables the report")
	fixCmd.Flags().StringVar(&fixFormat, "format", "", "report format (json or yaml); inferred from --report when omitted")
	fixCmd.Flags().BoolVar(&fixJSON, "json", false, "print the outcome as JSON")

	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	mode, err := parseMode(fixMode)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p, cleanup, err := buildPipeline(ctx, logger, &reportOverrides{
		path:    fixReportPath,
		format:  fixFormat,
		changed: cmd.Flags().Changed("report"),
	})
	if err != nil {
		return err
	}
	defer cleanup()

	filePath := args[0]
	return runAndPrint(cmd, fixJSON, "Analysing "+filePath, func(ctx context.Context) (*pipeline.Outcome, error) {
		return runWithFallback(ctx, p, filePath, fixLang, mode)
	})
}

// parseMode validates a --mode value. Empty means choose by language.
func parseMode(s string) (fixer.Mode, error) {
	switch fixer.Mode(s) {
	case "", fixer.ModeBatched, fixer.ModeSingleShot:
		return fixer.Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q (must be batched or single)", s)
	}
}

// runWithFallback runs batched mode when no mode was chosen and falls back
// to single-shot for languages without a linter.
func runWithFallback(ctx context.Context, p *pipeline.Pipeline, filePath, lang string, mode fixer.Mode) (*pipeline.Outcome, error) {
	if mode != "" {
		return p.RunFile(ctx, filePath, lang, mode)
	}
	outcome, err := p.RunFile(ctx, filePath, lang, fixer.ModeBatched)
	if errors.Is(err, pipeline.ErrNoLinter) {
		return p.RunFile(ctx, filePath, lang, fixer.ModeSingleShot)
	}
	return outcome, err
}

// runAndPrint runs with a spinner and prints the outcome to stdout, or the
// failure message to stderr and errAnalysisFailed.
func runAndPrint(cmd *cobra.Command, asJSON bool, description string, run func(ctx context.Context) (*pipeline.Outcome, error)) error {
	s := startSpinner(os.Stderr, description, !quiet && !verbose)
	outcome, err := run(cmd.Context())
	s.Stop()

	if err != nil {
		newRenderer(cmd.ErrOrStderr(), quiet || asJSON).Failure(err)
		return errAnalysisFailed
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}
	newRenderer(cmd.OutOrStdout(), quiet).Outcome(outcome)
	return nil
}
