// Package intake contains the contact-intake core: input sanitization, the
// declarative field validation engine, the contact schema, and spam checks.
// It is pure and free of transport/storage concerns.
package intake

import (
	"regexp"
	"strings"
)

var (
	// reScriptStyle removes script and style elements together with their
	// contents. Whatever those elements carry is never legitimate
	// submission text. Greedy non-nesting scan.
	reScriptStyle = regexp.MustCompile(`(?is)<(script|style)\b[^>]*>.*?</(?:script|style)\s*>`)

	// reTag matches markup-like tags only: '<', optional '/', a letter,
	// then up to the closing '>'. Free text such as "2 < 3" has no letter
	// straight after '<' and survives, as does a '<' that never closes.
	reTag = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)

	reWhitespaceRun = regexp.MustCompile(`\s+`)
)

// SanitizeText strips markup-like tags, collapses whitespace runs to single
// spaces, and trims. The tag removal is one-way and lossy on purpose: the
// admin area renders these values and entity escaping alone has burned us
// before with copy-pasted rich text.
func SanitizeText(value string) string {
	value = reScriptStyle.ReplaceAllString(value, "")
	value = reTag.ReplaceAllString(value, "")
	value = reWhitespaceRun.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// SanitizeEmail trims and lowercases an email address.
func SanitizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// SanitizePhone trims and removes internal whitespace from a phone number.
func SanitizePhone(value string) string {
	return reWhitespaceRun.ReplaceAllString(strings.TrimSpace(value), "")
}
