package fixer

import (
	"github.com/google/uuid"
	"github.com/mvp-joe/autofix/internal/diagnostic"
	"github.com/mvp-joe/autofix/internal/language"
	"github.com/mvp-joe/autofix/internal/sourcectx"
)

// Mode selects how a request embeds its input.
type Mode string

const (
	// ModeBatched embeds every diagnostic with its context window.
	ModeBatched Mode = "batched"

	// ModeSingleShot embeds the full file and one aggregate error blob.
	ModeSingleShot Mode = "single"
)

// Item pairs a diagnostic with its context window. Context is nil when
// extraction failed; the prompt then carries sourcectx.Placeholder.
type Item struct {
	Diagnostic diagnostic.Diagnostic
	Context    *sourcectx.CodeContext
}

// Request is built once per batch and consumed once by RequestFix.
type Request struct {
	ID       string
	Mode     Mode
	Format   ResponseFormat
	Language language.Profile

	// Batched mode.
	Items []Item
	Tool  string // Checker that produced the diagnostics

	// Single-shot mode.
	FilePath    string
	Source      string
	ErrorOutput string
}

// NewBatchRequest builds a batched request for linter diagnostics.
func NewBatchRequest(profile language.Profile, tool string, items []Item, format ResponseFormat) *Request {
	return &Request{
		ID:       uuid.NewString(),
		Mode:     ModeBatched,
		Format:   format,
		Language: profile,
		Items:    items,
		Tool:     tool,
	}
}

// NewSingleShotRequest builds a request carrying a whole file and the
// compiler output that rejected it.
func NewSingleShotRequest(profile language.Profile, filePath, source, errorOutput string, format ResponseFormat) *Request {
	return &Request{
		ID:          uuid.NewString(),
		Mode:        ModeSingleShot,
		Format:      format,
		Language:    profile,
		FilePath:    filePath,
		Source:      source,
		ErrorOutput: errorOutput,
	}
}

// Lines returns the anchored diagnostic lines of a batched request.
func (r *Request) Lines() []int {
	lines := make([]int, 0, len(r.Items))
	for _, it := range r.Items {
		if it.Diagnostic.HasLine() {
			lines = append(lines, it.Diagnostic.Line)
		}
	}
	return lines
}
