package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mvp-joe/autofix/internal/language"
	"github.com/spf13/cobra"
)

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their checkers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printLanguages(cmd.OutOrStdout(), language.DefaultRegistry())
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

var (
	languageHeaderStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	languageCellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

func printLanguages(out io.Writer, registry *language.Registry) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return languageHeaderStyle
			}
			return languageCellStyle
		}).
		Headers("LANGUAGE", "EXTENSION", "COMPILER", "LINTER")

	for _, p := range registry.Profiles() {
		linter := "-"
		if p.HasLinter() {
			linter = p.Linter.String()
		}
		t.Row(string(p.Name), p.Extension, p.Compiler.String(), linter)
	}
	fmt.Fprintln(out, t.String())
}
