package response

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9_+.#-]*)[ \\t]*\\r?\\n(.*?)\\r?\\n?```")

// CodeBlock is a fenced region found in free text.
type CodeBlock struct {
	Lang string
	Code string
}

// ExtractCodeBlock returns the interior of the first fenced code block in s,
// verbatim. ok is false when s has no fenced block.
func ExtractCodeBlock(s string) (block CodeBlock, ok bool) {
	m := fenceRe.FindStringSubmatch(s)
	if m == nil {
		return CodeBlock{}, false
	}
	return CodeBlock{Lang: strings.ToLower(m[1]), Code: m[2]}, true
}
