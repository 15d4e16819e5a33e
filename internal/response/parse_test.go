package response

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixJSON(line, issue, explanation, fix string) string {
	return fmt.Sprintf(`{"line":%q,"issue":%q,"explanation":%q,"suggested_fix":%q}`, line, issue, explanation, fix)
}

func TestParseStructured(t *testing.T) {
	t.Parallel()

	raw := "[" + fixJSON("10", "Null pointer", "p is null", "if (p) { *p = 1; }") + "]"

	res, err := ParseStructured(raw)
	require.NoError(t, err)
	assert.Equal(t, fixer.FormatStructuredJSON, res.Format)
	assert.Equal(t, 0, res.Dropped)
	require.Len(t, res.Fixes, 1)
	assert.Equal(t, FixResult{
		Line:         "10",
		Issue:        "Null pointer",
		Explanation:  "p is null",
		SuggestedFix: "if (p) { *p = 1; }",
	}, res.Fixes[0])
}

// TestParseStructured_DropsMalformedObjects checks that k well-formed and
// j malformed objects yield exactly k results.
func TestParseStructured_DropsMalformedObjects(t *testing.T) {
	t.Parallel()

	malformed := []string{
		`{"line":"3","issue":"x","explanation":"y"}`,
		`{"issue":"x","explanation":"y","suggested_fix":"z"}`,
		`{"line":"3","issue":"","explanation":"y","suggested_fix":"z"}`,
		`"just a string"`,
		`42`,
		`{"line":"3","issue":"x","explanation":"y","suggested_fix":{"code":"z"}}`,
	}

	for k := 0; k <= 3; k++ {
		for j := 0; j <= len(malformed); j++ {
			t.Run(fmt.Sprintf("k=%d_j=%d", k, j), func(t *testing.T) {
				t.Parallel()

				var parts []string
				for i := 0; i < max(k, j); i++ {
					if i < k {
						parts = append(parts, fixJSON(fmt.Sprint(i+1), "issue", "why", "fix"))
					}
					if i < j {
						parts = append(parts, malformed[i])
					}
				}

				res, err := ParseStructured("[" + strings.Join(parts, ",") + "]")
				require.NoError(t, err)
				assert.Len(t, res.Fixes, k)
				assert.Equal(t, j, res.Dropped)
				for i, f := range res.Fixes {
					assert.Equal(t, fmt.Sprint(i+1), f.Line, "order preserved")
				}
			})
		}
	}
}

func TestParseStructured_Coercion(t *testing.T) {
	t.Parallel()

	res, err := ParseStructured(`[{"line":10,"issue":"leak","explanation":"free it","suggested_fix":"free(p);","severity":"error"}]`)
	require.NoError(t, err)
	require.Len(t, res.Fixes, 1)
	assert.Equal(t, "10", res.Fixes[0].Line)
}

func TestParseStructured_AcceptedShapes(t *testing.T) {
	t.Parallel()

	one := fixJSON("7", "i", "e", "f")

	tests := []struct {
		name string
		raw  string
	}{
		{"bare array", "[" + one + "]"},
		{"surrounding whitespace", "\n  [" + one + "]\n"},
		{"fixes wrapper", `{"fixes":[` + one + `]}`},
		{"fenced json", "Sure:\n```json\n[" + one + "]\n```\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := ParseStructured(tt.raw)
			require.NoError(t, err)
			require.Len(t, res.Fixes, 1)
			assert.Equal(t, "7", res.Fixes[0].Line)
		})
	}
}

func TestParseStructured_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"prose", "I could not find any bugs."},
		{"truncated", `[{"line":"1","issue":"x"`},
		{"object without fixes", `{"line":"1","issue":"x","explanation":"y","suggested_fix":"z"}`},
		{"scalar", `"ok"`},
		{"fenced prose", "```\nnot json\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseStructured(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestParseStructured_EmptyArray(t *testing.T) {
	t.Parallel()

	res, err := ParseStructured("[]")
	require.NoError(t, err)
	assert.Empty(t, res.Fixes)
	assert.Equal(t, 0, res.Dropped)
}

func TestParse_FreeText(t *testing.T) {
	t.Parallel()

	raw := "Here is the fix:\n```python\nprint(1)\n```"
	res, err := Parse(raw, fixer.FormatFreeText)
	require.NoError(t, err)
	require.Len(t, res.Fixes, 1)
	assert.Equal(t, "print(1)", res.Fixes[0].SuggestedFix)
	assert.Equal(t, raw, res.Fixes[0].RawText)
	assert.False(t, res.Fixes[0].Degraded)
}

func TestParse_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Parse("x", "xml")
	assert.ErrorContains(t, err, "unknown response format")
}

func TestParseFreeText_NoBlockIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"The variable is never initialised; initialise it before use.",
		"",
		"inline ```code``` only",
		"  leading and trailing space \n",
	}

	for _, raw := range inputs {
		first := ParseFreeText(raw)
		second := ParseFreeText(raw)

		assert.Equal(t, raw, first.SuggestedFix)
		assert.Equal(t, raw, first.RawText)
		assert.True(t, first.Degraded)
		assert.Equal(t, first, second)
	}
}

func TestExtractCodeBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		wantLang string
		wantCode string
		wantOK   bool
	}{
		{"tagged", "Here is the fix:\n```python\nprint(1)\n```", "python", "print(1)", true},
		{"untagged", "```\nint x = 0;\n```", "", "int x = 0;", true},
		{"cpp hint", "```c++\nint main() {}\n```", "c++", "int main() {}", true},
		{"first of two", "```go\na\n```\ntext\n```go\nb\n```", "go", "a", true},
		{"multiline verbatim", "```java\nclass A {\n    int x;\n}\n```", "java", "class A {\n    int x;\n}", true},
		{"keeps indentation", "```\n    indented\n```", "", "    indented", true},
		{"crlf", "```js\r\nlet a = 1;\r\n```", "js", "let a = 1;", true},
		{"no closing fence", "```python\nprint(1)\n", "", "", false},
		{"no fence", "plain text", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block, ok := ExtractCodeBlock(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLang, block.Lang)
			assert.Equal(t, tt.wantCode, block.Code)
		})
	}
}

func TestRestrictToLines(t *testing.T) {
	t.Parallel()

	fixes := []FixResult{
		{Line: "10"},
		{Line: "Line 12"},
		{Line: "99"},
		{Line: "n/a"},
	}

	kept, dropped := RestrictToLines(fixes, []int{10, 12})
	assert.Equal(t, []FixResult{{Line: "10"}, {Line: "Line 12"}}, kept)
	assert.Equal(t, 2, dropped)

	t.Run("one fix per diagnostic on a line", func(t *testing.T) {
		t.Parallel()

		fixes := []FixResult{
			{Line: "10", Issue: "first"},
			{Line: "10", Issue: "repeat"},
			{Line: "12", Issue: "other"},
		}
		kept, dropped := RestrictToLines(fixes, []int{10, 12})
		assert.Equal(t, []FixResult{{Line: "10", Issue: "first"}, {Line: "12", Issue: "other"}}, kept)
		assert.Equal(t, 1, dropped)
	})

	t.Run("two diagnostics on one line admit two fixes", func(t *testing.T) {
		t.Parallel()

		fixes := []FixResult{
			{Line: "7", Issue: "a"},
			{Line: "line 7", Issue: "b"},
			{Line: "7", Issue: "c"},
		}
		kept, dropped := RestrictToLines(fixes, []int{7, 7})
		assert.Equal(t, []FixResult{{Line: "7", Issue: "a"}, {Line: "line 7", Issue: "b"}}, kept)
		assert.Equal(t, 1, dropped)
	})
}
