package dupes

import (
	"strings"
	"unicode"
)

// Tokens is a normalized word sequence.
type Tokens []string

// TokenSet is an unordered set of normalized words.
type TokenSet map[string]struct{}

// NewTokenSet collects the distinct tokens of a sequence.
func NewTokenSet(tokens Tokens) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether token is in the set.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// isWordRune matches ASCII letters, digits and underscore.
// Letters outside ASCII are dropped, so non-Latin scripts tokenize poorly.
func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// Normalize lowercases text, strips everything but word characters and
// whitespace, and splits the result into words.
func Normalize(text string) Tokens {
	stripped := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return nil
	}
	return Tokens(fields)
}

// NormalizeWord normalizes a single whitespace-free piece of text.
func NormalizeWord(piece string) string {
	return strings.Map(func(r rune) rune {
		if isWordRune(r) {
			return r
		}
		return -1
	}, strings.ToLower(piece))
}
