// Package response decodes reasoning-service replies into fix records.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/mvp-joe/autofix/internal/fixer"
)

// ErrMalformedResponse indicates a structured reply that could not be
// decoded into a sequence of fix objects. It is terminal for the batch.
var ErrMalformedResponse = errors.New("malformed response")

var validate = validator.New()

// FixResult is one suggested fix. Structured replies fill the four schema
// fields; free-text replies fill SuggestedFix and RawText.
type FixResult struct {
	Line         string `json:"line" yaml:"line" mapstructure:"line" validate:"required"`
	Issue        string `json:"issue" yaml:"issue" mapstructure:"issue" validate:"required"`
	Explanation  string `json:"explanation" yaml:"explanation" mapstructure:"explanation" validate:"required"`
	SuggestedFix string `json:"suggested_fix" yaml:"suggested_fix" mapstructure:"suggested_fix" validate:"required"`

	RawText  string `json:"raw_text,omitempty" yaml:"raw_text,omitempty" mapstructure:"-"`
	Degraded bool   `json:"degraded,omitempty" yaml:"degraded,omitempty" mapstructure:"-"` // No fenced block; SuggestedFix is the whole reply
}

// LineNumber returns the first integer in Line.
func (f FixResult) LineNumber() (int, bool) {
	m := digitsRe.FindString(f.Line)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

var digitsRe = regexp.MustCompile(`\d+`)

// Result is a parsed reply.
type Result struct {
	Format  fixer.ResponseFormat `json:"format"`
	Fixes   []FixResult          `json:"fixes"`
	Dropped int                  `json:"dropped"` // Structured objects that failed validation
}

// Parse decodes raw according to the format that was requested.
func Parse(raw string, format fixer.ResponseFormat) (*Result, error) {
	switch format {
	case fixer.FormatStructuredJSON, "":
		return ParseStructured(raw)
	case fixer.FormatFreeText:
		return &Result{Format: fixer.FormatFreeText, Fixes: []FixResult{ParseFreeText(raw)}}, nil
	default:
		return nil, fmt.Errorf("unknown response format %q", format)
	}
}

// ParseStructured decodes a JSON array of fix objects. A top-level object
// with a "fixes" array and a reply wrapped in a fenced block are accepted.
// Objects failing validation are counted in Dropped, not returned.
func ParseStructured(raw string) (*Result, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		fixes, ok := v["fixes"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected an array of fix objects, got an object", ErrMalformedResponse)
		}
		items = fixes
	default:
		return nil, fmt.Errorf("%w: expected an array of fix objects, got %T", ErrMalformedResponse, doc)
	}

	result := &Result{Format: fixer.FormatStructuredJSON, Fixes: make([]FixResult, 0, len(items))}
	for _, item := range items {
		fix, err := decodeFix(item)
		if err != nil {
			result.Dropped++
			continue
		}
		result.Fixes = append(result.Fixes, fix)
	}
	return result, nil
}

func decodeDocument(raw string) (any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	var doc any
	err := json.Unmarshal([]byte(text), &doc)
	if err == nil {
		return doc, nil
	}

	if block, ok := ExtractCodeBlock(text); ok {
		if json.Unmarshal([]byte(block.Code), &doc) == nil {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
}

// decodeFix converts one generic object, coercing scalar fields to strings
// so a numeric "line" survives.
func decodeFix(item any) (FixResult, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return FixResult{}, fmt.Errorf("fix entry is %T, not an object", item)
	}

	var fix FixResult
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fix,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return FixResult{}, err
	}
	if err := decoder.Decode(obj); err != nil {
		return FixResult{}, err
	}
	if err := validate.Struct(fix); err != nil {
		return FixResult{}, err
	}
	return fix, nil
}

// ParseFreeText returns the first fenced block of raw as the fix, or the
// whole of raw, unmodified and marked Degraded, when there is none.
func ParseFreeText(raw string) FixResult {
	if block, ok := ExtractCodeBlock(raw); ok {
		return FixResult{SuggestedFix: block.Code, RawText: raw}
	}
	return FixResult{SuggestedFix: raw, RawText: raw, Degraded: true}
}

// RestrictToLines keeps only fixes whose line names one of lines, so every
// surviving fix answers a diagnostic that was actually sent. A line listed
// n times admits at most n fixes; the first n in reply order win.
func RestrictToLines(fixes []FixResult, lines []int) (kept []FixResult, dropped int) {
	budget := make(map[int]int, len(lines))
	for _, l := range lines {
		budget[l]++
	}

	kept = make([]FixResult, 0, len(fixes))
	for _, f := range fixes {
		n, ok := f.LineNumber()
		if ok && budget[n] > 0 {
			budget[n]--
			kept = append(kept, f)
			continue
		}
		dropped++
	}
	return kept, dropped
}
