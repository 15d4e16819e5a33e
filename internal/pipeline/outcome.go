package pipeline

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/autofix/internal/diagnostic"
	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/mvp-joe/autofix/internal/language"
	"github.com/mvp-joe/autofix/internal/response"
)

// Status summarizes a completed run.
type Status string

const (
	StatusNoIssues Status = "no_issues"
	StatusFixed    Status = "fixed"
)

// Outcome is the result of a run that completed. Runs that could not
// complete return an error instead; see FailureMessage.
type Outcome struct {
	Status      Status                  `json:"status"`
	Mode        fixer.Mode              `json:"mode"`
	FilePath    string                  `json:"file_path"`
	Language    language.Name           `json:"language"`
	Tool        string                  `json:"tool"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
	Fixes       []response.FixResult    `json:"fixes"`
	Dropped     int                     `json:"dropped"`

	// Single-shot only.
	ErrorOutput string `json:"error_output,omitempty"`
	Explanation string `json:"explanation,omitempty"`

	ReportPath string `json:"report_path,omitempty"` // Set when a fix report was written
}

// Message returns the human-readable result line.
func (o *Outcome) Message() string {
	if o.Status == StatusNoIssues {
		if o.Mode == fixer.ModeSingleShot {
			return fmt.Sprintf("%s compiled successfully. No action needed.", o.FilePath)
		}
		return fmt.Sprintf("No issues found in %s.", o.FilePath)
	}

	if o.Mode == fixer.ModeSingleShot {
		return o.Composite()
	}

	msg := fmt.Sprintf("Found %d issue(s) in %s; %d fix(es) suggested.", len(o.Diagnostics), o.FilePath, len(o.Fixes))
	if o.Dropped > 0 {
		msg += fmt.Sprintf(" %d reply object(s) discarded.", o.Dropped)
	}
	if o.ReportPath != "" {
		msg += fmt.Sprintf(" Report saved to %s.", o.ReportPath)
	}
	return msg
}

// Composite pairs the raw checker output with the service's explanation.
func (o *Outcome) Composite() string {
	return fmt.Sprintf("BUG DETECTED:\n%s\n\nAI EXPLANATION & FIX:\n%s", o.ErrorOutput, o.Explanation)
}

// FailureMessage renders a run error so that each failure kind reads
// differently from the others and from "no issues found".
func FailureMessage(err error) string {
	const prefix = "Analysis could not be completed"

	var reqErr *fixer.RequestError
	switch {
	case errors.Is(err, language.ErrUnsupportedLanguage):
		return fmt.Sprintf("%s: %v", prefix, err)
	case errors.Is(err, diagnostic.ErrCheckerUnavailable):
		return fmt.Sprintf("%s: the checker could not be run: %v", prefix, err)
	case errors.Is(err, ErrSourceUnavailable):
		return fmt.Sprintf("%s: %v", prefix, err)
	case errors.Is(err, ErrNoLinter):
		return fmt.Sprintf("%s: %v", prefix, err)
	case errors.Is(err, response.ErrMalformedResponse):
		return fmt.Sprintf("%s: the reasoning service returned a reply that could not be parsed: %v", prefix, err)
	case errors.As(err, &reqErr) && reqErr.Kind == fixer.KindRateLimited:
		return fmt.Sprintf("%s: the reasoning service is rate limited (gave up after %d attempts): %v", prefix, reqErr.Attempts, reqErr.Err)
	case errors.As(err, &reqErr) && reqErr.Kind == fixer.KindMalformedInput:
		return fmt.Sprintf("%s: the fix request was rejected as malformed: %v", prefix, reqErr.Err)
	case errors.As(err, &reqErr):
		return fmt.Sprintf("%s: the reasoning service failed: %v", prefix, reqErr.Err)
	default:
		return fmt.Sprintf("%s: %v", prefix, err)
	}
}
