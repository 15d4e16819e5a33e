package fixer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mvp-joe/autofix/internal/sourcectx"
)

// promptBug is the per-diagnostic shape embedded in batched prompts.
type promptBug struct {
	Line     string `json:"line"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Context  string `json:"context"`
}

const structuredInstructions = `Return a valid JSON array of objects. Each object must have:
"line", "issue", "explanation", and "suggested_fix".
Use the "line" value of the bug each object answers. Return only the JSON array.`

const freeTextInstructions = `Explain each problem simply, then provide the corrected code in a single fenced code block.`

// SystemPrompt returns the persona framing for a language.
func SystemPrompt(displayName string) string {
	return fmt.Sprintf("You are a senior %s expert specializing in debugging and code repair.", displayName)
}

// BuildPrompt renders a request into the system and user messages.
// Requests that cannot be rendered yield ErrMalformedInput.
func BuildPrompt(req *Request) (Prompt, error) {
	if req == nil {
		return Prompt{}, fmt.Errorf("%w: request is nil", ErrMalformedInput)
	}
	if req.Language.Name == "" {
		return Prompt{}, fmt.Errorf("%w: language is required", ErrMalformedInput)
	}

	format := req.Format
	if format == "" {
		format = FormatStructuredJSON
	}
	if format != FormatStructuredJSON && format != FormatFreeText {
		return Prompt{}, fmt.Errorf("%w: unknown response format %q", ErrMalformedInput, req.Format)
	}

	var user string
	var err error
	switch req.Mode {
	case ModeBatched:
		user, err = batchedUserPrompt(req, format)
	case ModeSingleShot:
		user, err = singleShotUserPrompt(req, format)
	default:
		err = fmt.Errorf("%w: unknown mode %q", ErrMalformedInput, req.Mode)
	}
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{
		System: SystemPrompt(req.Language.DisplayName),
		User:   user,
		Format: format,
	}, nil
}

func batchedUserPrompt(req *Request, format ResponseFormat) (string, error) {
	if len(req.Items) == 0 {
		return "", fmt.Errorf("%w: batched request has no diagnostics", ErrMalformedInput)
	}

	bugs := make([]promptBug, 0, len(req.Items))
	for i, it := range req.Items {
		if !it.Diagnostic.HasLine() {
			return "", fmt.Errorf("%w: diagnostic %d has no line", ErrMalformedInput, i)
		}
		snippet := sourcectx.Placeholder
		if it.Context != nil {
			snippet = it.Context.String()
		}
		bugs = append(bugs, promptBug{
			Line:     strconv.Itoa(it.Diagnostic.Line),
			Message:  it.Diagnostic.Message,
			Severity: string(it.Diagnostic.Severity),
			Context:  snippet,
		})
	}

	tool := req.Tool
	if tool == "" {
		tool = "static analysis"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these %s bugs found by %s.\n", req.Language.DisplayName, tool)
	b.WriteString(instructions(format))
	b.WriteString("\n\nBUGS TO ANALYZE:\n")

	// Context markers and code must reach the model unescaped.
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bugs); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return b.String(), nil
}

func singleShotUserPrompt(req *Request, format ResponseFormat) (string, error) {
	if strings.TrimSpace(req.ErrorOutput) == "" {
		return "", fmt.Errorf("%w: single-shot request has no error output", ErrMalformedInput)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The %s file '%s' failed to compile with this error:\n", req.Language.DisplayName, req.FilePath)
	b.WriteString(strings.TrimRight(req.ErrorOutput, "\n"))
	b.WriteString("\n\nFULL SOURCE CODE:\n")
	b.WriteString(strings.TrimRight(req.Source, "\n"))
	b.WriteString("\n\nAnalyze the error and explain why it happened. ")
	if format == FormatStructuredJSON {
		b.WriteString(instructions(format))
	} else {
		b.WriteString("Provide the full corrected code in a single fenced code block.")
	}
	b.WriteString("\n")
	return b.String(), nil
}

func instructions(format ResponseFormat) string {
	if format == FormatFreeText {
		return freeTextInstructions
	}
	return structuredInstructions
}
