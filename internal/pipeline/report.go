package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mvp-joe/autofix/internal/response"
	"gopkg.in/yaml.v3"
)

// ReportFormat selects the fix report encoding.
type ReportFormat string

const (
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"

	DefaultReportPath = "bug_report.json"
)

// reportEntry is the persisted shape: four strings per fix.
type reportEntry struct {
	Line         string `json:"line" yaml:"line"`
	Issue        string `json:"issue" yaml:"issue"`
	Explanation  string `json:"explanation" yaml:"explanation"`
	SuggestedFix string `json:"suggested_fix" yaml:"suggested_fix"`
}

// ReportWriter persists batched fixes. Writes are serialized.
type ReportWriter struct {
	Path   string
	Format ReportFormat

	mu sync.Mutex
}

// NewReportWriter returns a writer for path. An empty format is inferred
// from the extension.
func NewReportWriter(path string, format ReportFormat) (*ReportWriter, error) {
	if path == "" {
		path = DefaultReportPath
	}
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = ReportYAML
		default:
			format = ReportJSON
		}
	}
	if format != ReportJSON && format != ReportYAML {
		return nil, fmt.Errorf("unknown report format %q (must be json or yaml)", format)
	}
	return &ReportWriter{Path: path, Format: format}, nil
}

// Write replaces the report with fixes.
func (w *ReportWriter) Write(fixes []response.FixResult) error {
	entries := make([]reportEntry, 0, len(fixes))
	for _, f := range fixes {
		entries = append(entries, reportEntry{
			Line:         f.Line,
			Issue:        f.Issue,
			Explanation:  f.Explanation,
			SuggestedFix: f.SuggestedFix,
		})
	}

	data, err := w.encode(entries)
	if err != nil {
		return fmt.Errorf("failed to encode fix report: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := os.WriteFile(w.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fix report: %w", err)
	}
	return nil
}

func (w *ReportWriter) encode(entries []reportEntry) ([]byte, error) {
	var buf bytes.Buffer
	switch w.Format {
	case ReportYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(4)
		if err := enc.Encode(entries); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(entries); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
