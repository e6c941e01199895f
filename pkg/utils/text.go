package utils

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
	blankLinesRe  = regexp.MustCompile(`\n\s*\n+`)
	htmlBlockTags = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/tr|/li|/h[1-6])\s*/?>`)
)

// CleanHTMLText removes HTML tags and decodes the common entities.
// Block level tags become line breaks so label: value lines survive.
func CleanHTMLText(text string) string {
	cleaned := htmlBlockTags.ReplaceAllString(text, "\n")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, "")

	cleaned = strings.ReplaceAll(cleaned, "&nbsp;", " ")
	cleaned = strings.ReplaceAll(cleaned, "&amp;", "&")
	cleaned = strings.ReplaceAll(cleaned, "&lt;", "<")
	cleaned = strings.ReplaceAll(cleaned, "&gt;", ">")
	cleaned = strings.ReplaceAll(cleaned, "&#39;", "'")
	cleaned = strings.ReplaceAll(cleaned, "&quot;", "\"")

	cleaned = blankLinesRe.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}

// FirstSubmatch returns the trimmed first capture group of re in text
func FirstSubmatch(re *regexp.Regexp, text string) (string, bool) {
	match := re.FindStringSubmatch(text)
	if len(match) < 2 {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

// Truncate shortens value to max runes, used to keep log lines bounded
func Truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max]) + "..."
}
