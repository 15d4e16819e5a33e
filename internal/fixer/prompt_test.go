package fixer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mvp-joe/autofix/internal/diagnostic"
	"github.com/mvp-joe/autofix/internal/language"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_Batched(t *testing.T) {
	t.Parallel()

	req := batchRequest(t)
	prompt, err := BuildPrompt(req)
	require.NoError(t, err)

	assert.Equal(t, "You are a senior C++ expert specializing in debugging and code repair.", prompt.System)
	assert.Equal(t, FormatStructuredJSON, prompt.Format)
	assert.True(t, strings.HasPrefix(prompt.User, "Analyze these C++ bugs found by cppcheck.\n"))
	assert.Contains(t, prompt.User, `"suggested_fix"`)
	assert.Contains(t, prompt.User, ">>>   return *p;", "markers are not HTML-escaped")

	_, payload, ok := strings.Cut(prompt.User, "BUGS TO ANALYZE:\n")
	require.True(t, ok)

	var bugs []promptBug
	require.NoError(t, json.Unmarshal([]byte(payload), &bugs))
	require.Len(t, bugs, 1)
	assert.Equal(t, "3", bugs[0].Line)
	assert.Equal(t, "Null pointer dereference: p", bugs[0].Message)
	assert.Equal(t, "error", bugs[0].Severity)
	assert.Contains(t, bugs[0].Context, ">>>   return *p;")
}

func TestBuildPrompt_MissingContextUsesPlaceholder(t *testing.T) {
	t.Parallel()

	req := NewBatchRequest(cppProfile(t), "cppcheck", []Item{{
		Diagnostic: diagnostic.Diagnostic{Line: 99, Message: "gone", Severity: diagnostic.SeverityStyle},
	}}, FormatStructuredJSON)

	prompt, err := BuildPrompt(req)
	require.NoError(t, err)
	assert.Contains(t, prompt.User, `"context": "Context unavailable"`)
}

func TestBuildPrompt_FreeTextBatched(t *testing.T) {
	t.Parallel()

	req := batchRequest(t)
	req.Format = FormatFreeText

	prompt, err := BuildPrompt(req)
	require.NoError(t, err)
	assert.Equal(t, FormatFreeText, prompt.Format)
	assert.Contains(t, prompt.User, "single fenced code block")
	assert.NotContains(t, prompt.User, `"suggested_fix"`)
}

func TestBuildPrompt_SingleShot(t *testing.T) {
	t.Parallel()

	py, err := language.DefaultRegistry().Resolve("python")
	require.NoError(t, err)

	req := NewSingleShotRequest(py, "x.py", "print(1\n", "SyntaxError: '(' was never closed\n", FormatFreeText)
	prompt, err := BuildPrompt(req)
	require.NoError(t, err)

	assert.Equal(t, "You are a senior Python expert specializing in debugging and code repair.", prompt.System)
	assert.Equal(t,
		"The Python file 'x.py' failed to compile with this error:\n"+
			"SyntaxError: '(' was never closed\n\n"+
			"FULL SOURCE CODE:\n"+
			"print(1\n\n"+
			"Analyze the error and explain why it happened. Provide the full corrected code in a single fenced code block.\n",
		prompt.User)
}

func TestBuildPrompt_Malformed(t *testing.T) {
	t.Parallel()

	cpp := cppProfile(t)

	tests := []struct {
		name string
		req  *Request
	}{
		{"nil request", nil},
		{"no language", &Request{Mode: ModeBatched, Items: []Item{{Diagnostic: diagnostic.Diagnostic{Line: 1}}}}},
		{"unknown format", &Request{Mode: ModeBatched, Language: cpp, Format: "xml", Items: []Item{{Diagnostic: diagnostic.Diagnostic{Line: 1}}}}},
		{"unknown mode", &Request{Mode: "streaming", Language: cpp}},
		{"empty batch", NewBatchRequest(cpp, "cppcheck", nil, FormatStructuredJSON)},
		{"unanchored diagnostic", NewBatchRequest(cpp, "cppcheck", []Item{{Diagnostic: diagnostic.Diagnostic{Message: "x"}}}, FormatStructuredJSON)},
		{"single shot without error output", NewSingleShotRequest(cpp, "a.cpp", "int main(){}", "  \n", FormatFreeText)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := BuildPrompt(tt.req)
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestBuildPrompt_DefaultsToStructured(t *testing.T) {
	t.Parallel()

	req := batchRequest(t)
	req.Format = ""

	prompt, err := BuildPrompt(req)
	require.NoError(t, err)
	assert.Equal(t, FormatStructuredJSON, prompt.Format)
}

func TestRequest_Lines(t *testing.T) {
	t.Parallel()

	req := NewBatchRequest(cppProfile(t), "cppcheck", []Item{
		{Diagnostic: diagnostic.Diagnostic{Line: 4}},
		{Diagnostic: diagnostic.Diagnostic{Line: 0}},
		{Diagnostic: diagnostic.Diagnostic{Line: 9}},
	}, FormatStructuredJSON)

	assert.Equal(t, []int{4, 9}, req.Lines())
	assert.NotEmpty(t, req.ID)
	assert.NotEqual(t, req.ID, NewBatchRequest(cppProfile(t), "cppcheck", nil, FormatStructuredJSON).ID)
}
