// Package sanitize strips unsafe markup from externally sourced text.
// Every adapter runs content through Clean before scoring, and nothing
// fetched from an external surface reaches storage unsanitized.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	angleBracketRegex  = regexp.MustCompile(`[<>]`)
	jsURIRegex         = regexp.MustCompile(`(?i)javascript:`)
	eventAttrRegex     = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	numericEntityRegex = regexp.MustCompile(`&#x?[0-9a-fA-F]+;?`)
)

// Clean removes angle brackets, javascript: URIs, inline event-handler
// attribute patterns, and HTML numeric entities. It is total: any input
// yields a string, never an error.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	out := angleBracketRegex.ReplaceAllString(text, "")
	out = jsURIRegex.ReplaceAllString(out, "")
	out = eventAttrRegex.ReplaceAllString(out, "")
	out = numericEntityRegex.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// Truncate caps text at n runes, appending an ellipsis marker when content
// was dropped.
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
