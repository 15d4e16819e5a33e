// Package sourcectx extracts bounded windows of source lines around a
// diagnostic, with the offending line marked.
package sourcectx

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultWindow is the number of lines kept on each side of the anchor.
	DefaultWindow = 3

	// Marker prefixes the anchor line inside a window.
	Marker = ">>> "

	// Placeholder stands in for a window that could not be extracted.
	Placeholder = "Context unavailable"
)

// ErrContextUnavailable is returned when the file cannot be read or the
// requested line is outside the file.
var ErrContextUnavailable = errors.New("context unavailable")

// CodeContext is a window of source lines around one anchor line.
// Lines[MarkedIndex] carries the Marker prefix.
type CodeContext struct {
	FilePath     string   `json:"file_path"`
	AnchorLine   int      `json:"anchor_line"`   // 1-indexed line the window is built around
	StartLine    int      `json:"start_line"`    // 1-indexed line of Lines[0]
	WindowBefore int      `json:"window_before"` // Lines actually kept before the anchor
	WindowAfter  int      `json:"window_after"`  // Lines actually kept after the anchor
	Lines        []string `json:"lines"`
	MarkedIndex  int      `json:"marked_index"`
}

// String joins the window into a newline-terminated block.
func (c *CodeContext) String() string {
	if c == nil || len(c.Lines) == 0 {
		return ""
	}
	return strings.Join(c.Lines, "\n") + "\n"
}

// MarkedLine returns the anchor line's text without the marker.
func (c *CodeContext) MarkedLine() string {
	return strings.TrimPrefix(c.Lines[c.MarkedIndex], Marker)
}

// Extract reads filePath and returns the window around lineNumber.
// A negative window is treated as zero.
func Extract(filePath string, lineNumber, window int) (*CodeContext, error) {
	if lineNumber <= 0 {
		return nil, fmt.Errorf("%w: line %d is not a positive line number", ErrContextUnavailable, lineNumber)
	}

	lines, err := ReadLines(filePath)
	if err != nil {
		return nil, err
	}

	return FromLines(filePath, lines, lineNumber, window)
}

// ReadLines loads a file as lines without their terminators.
func ReadLines(filePath string) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits text into lines, dropping "\r" before "\n" and the empty
// element after a trailing newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// FromLines builds the window from already loaded lines. The window is
// symmetric by request but clamped at file bounds without padding; the
// input slice is never modified.
func FromLines(filePath string, lines []string, lineNumber, window int) (*CodeContext, error) {
	if lineNumber <= 0 {
		return nil, fmt.Errorf("%w: line %d is not a positive line number", ErrContextUnavailable, lineNumber)
	}
	if lineNumber > len(lines) {
		return nil, fmt.Errorf("%w: line %d is beyond end of %s (%d lines)", ErrContextUnavailable, lineNumber, filePath, len(lines))
	}
	if window < 0 {
		window = 0
	}

	idx := lineNumber - 1
	start := max(0, idx-window)
	end := min(len(lines), idx+window+1)

	out := make([]string, end-start)
	copy(out, lines[start:end])
	marked := idx - start
	out[marked] = Marker + out[marked]

	return &CodeContext{
		FilePath:     filePath,
		AnchorLine:   lineNumber,
		StartLine:    start + 1,
		WindowBefore: idx - start,
		WindowAfter:  end - idx - 1,
		Lines:        out,
		MarkedIndex:  marked,
	}, nil
}
