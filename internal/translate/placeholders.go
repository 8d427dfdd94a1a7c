package translate

import (
	"regexp"
	"strings"
)

// KeepTag is the XML tag the provider is told to leave untranslated.
const KeepTag = "keep"

var (
	placeholderRe = regexp.MustCompile(`\{[^}]+\}`)
	keptRe        = regexp.MustCompile(`<keep>(\{[^}]+\})</keep>`)
)

// Protect wraps every {name} placeholder in <keep> tags.
func Protect(text string) string {
	return placeholderRe.ReplaceAllString(text, "<keep>$0</keep>")
}

// Restore removes the <keep> tags added by Protect and trims the result.
func Restore(text string) string {
	return strings.TrimSpace(keptRe.ReplaceAllString(text, "$1"))
}
