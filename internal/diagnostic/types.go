package diagnostic

import "strings"

// Severity is the normalized severity of a finding.
type Severity string

const (
	SeverityStyle       Severity = "style"
	SeverityWarning     Severity = "warning"
	SeverityError       Severity = "error"
	SeverityPerformance Severity = "performance"
	SeverityPortability Severity = "portability"
	SeverityInformation Severity = "information"
)

// ParseSeverity maps a tool severity string onto the normalized set.
// Unknown values (cppcheck's "none", "debug") map to information.
func ParseSeverity(s string) Severity {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityStyle, SeverityWarning, SeverityError, SeverityPerformance, SeverityPortability, SeverityInformation:
		return sev
	default:
		return SeverityInformation
	}
}

// Diagnostic is one reported issue. Values are never modified after the
// collector produces them.
type Diagnostic struct {
	Line          int      `json:"line"`             // 1-indexed; 0 when the tool gave no line anchor
	Message       string   `json:"message"`          // Tool message
	Severity      Severity `json:"severity"`         // Normalized severity
	ID            string   `json:"id,omitempty"`     // Tool rule id (cppcheck "id" attribute)
	Column        int      `json:"column,omitempty"` // 1-indexed column when reported
	RawToolOutput string   `json:"raw_tool_output"`  // Verbatim fragment of the tool output
}

// HasLine reports whether the diagnostic is anchored to a source line.
func (d Diagnostic) HasLine() bool {
	return d.Line > 0
}
