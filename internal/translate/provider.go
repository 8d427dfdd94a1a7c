// Package translate fills untranslated catalog entries through a machine
// translation provider.
package translate

import "context"

// Options tunes a translation request.
type Options struct {
	// Formality is the DeepL formality level: less, more, prefer_less,
	// prefer_more or default.
	Formality string
}

// Provider translates batches of texts between two languages.
//
// Implementations must return exactly one result per input text, in order.
type Provider interface {
	Name() string
	TranslateBatch(ctx context.Context, texts []string, source, target string, opts Options) ([]string, error)
}
