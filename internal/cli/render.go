package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/mvp-joe/autofix/internal/diagnostic"
	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/mvp-joe/autofix/internal/pipeline"
)

var (
	successColor  = color.New(color.FgGreen, color.Bold)
	failureColor  = color.New(color.FgRed, color.Bold)
	headingColor  = color.New(color.FgYellow, color.Bold)
	locationColor = color.New(color.FgCyan)
)

// renderer prints outcomes. In plain mode it writes Outcome.Message()
// verbatim so output can be parsed by scripts.
type renderer struct {
	out      io.Writer
	plain    bool
	markdown *glamour.TermRenderer
}

func newRenderer(out io.Writer, plain bool) *renderer {
	r := &renderer{out: out, plain: plain}
	if !plain {
		// a nil markdown renderer falls back to raw text
		r.markdown, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
	}
	return r
}

func (r *renderer) Outcome(o *pipeline.Outcome) {
	if r.plain {
		fmt.Fprintln(r.out, o.Message())
		return
	}

	if o.Status == pipeline.StatusNoIssues {
		successColor.Fprintln(r.out, "✓ "+o.Message())
		return
	}

	if o.Mode == fixer.ModeSingleShot {
		failureColor.Fprintln(r.out, "BUG DETECTED:")
		fmt.Fprintln(r.out, strings.TrimRight(o.ErrorOutput, "\n"))
		fmt.Fprintln(r.out)
		headingColor.Fprintln(r.out, "AI EXPLANATION & FIX:")
		fmt.Fprint(r.out, r.render(o.Explanation))
		return
	}

	r.batched(o)
}

func (r *renderer) batched(o *pipeline.Outcome) {
	headingColor.Fprintf(r.out, "%d finding(s) from %s in %s\n", len(o.Diagnostics), o.Tool, o.FilePath)
	for _, d := range o.Diagnostics {
		fmt.Fprintf(r.out, "  %s %s %s\n",
			locationColor.Sprintf("line %d", d.Line),
			severityColor(d.Severity).Sprintf("[%s]", d.Severity),
			d.Message)
	}
	fmt.Fprintln(r.out)

	for _, f := range o.Fixes {
		var md strings.Builder
		fmt.Fprintf(&md, "### Line %s: %s\n\n%s\n\n", f.Line, f.Issue, f.Explanation)
		fmt.Fprintf(&md, "```%s\n%s\n```\n", o.Language, strings.TrimRight(f.SuggestedFix, "\n"))
		fmt.Fprint(r.out, r.render(md.String()))
	}

	if o.Dropped > 0 {
		failureColor.Fprintf(r.out, "%d reply object(s) discarded (missing fields or unknown line)\n", o.Dropped)
	}
	if o.ReportPath != "" {
		successColor.Fprintf(r.out, "Report saved to %s\n", o.ReportPath)
	}
}

// Failure prints the failure message for a run that could not complete.
func (r *renderer) Failure(err error) {
	msg := pipeline.FailureMessage(err)
	if r.plain {
		fmt.Fprintln(r.out, msg)
		return
	}
	failureColor.Fprintln(r.out, "✗ "+msg)
}

func (r *renderer) render(markdown string) string {
	if r.markdown == nil {
		return markdown + "\n"
	}
	out, err := r.markdown.Render(markdown)
	if err != nil {
		return markdown + "\n"
	}
	return out
}

func severityColor(s diagnostic.Severity) *color.Color {
	switch s {
	case diagnostic.SeverityError:
		return failureColor
	case diagnostic.SeverityWarning, diagnostic.SeverityPortability:
		return headingColor
	default:
		return locationColor
	}
}
