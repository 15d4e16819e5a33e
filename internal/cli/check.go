package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/mvp-joe/autofix/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	checkLang string
	checkFile string
	checkJSON bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a code snippet read from stdin",
	Long: `Check a code snippet and explain the first compile failure.

The code is written to a private temporary directory (Java sources are
named after their public class), checked with the language's compiler,
and removed afterwards whatever the result.

Examples:
  pbpaste | autofix check --lang cpp
  autofix check --lang java --file Snippet.txt`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkLang, "lang", "l", "", "language of the snippet (required)")
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "-", "read the snippet from this file; - reads stdin")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the outcome as JSON")
	_ = checkCmd.MarkFlagRequired("lang")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	code, err := readSnippet(cmd.InOrStdin(), checkFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("no code to check")
	}

	p, cleanup, err := buildPipeline(cmd.Context(), logger, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	return runAndPrint(cmd, checkJSON, "Checking "+checkLang+" snippet", func(ctx context.Context) (*pipeline.Outcome, error) {
		return p.RunSource(ctx, code, checkLang, fixer.ModeSingleShot)
	})
}

func readSnippet(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
