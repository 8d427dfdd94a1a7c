package translate

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/asynkron/tpo/internal/catalog"
	"github.com/asynkron/tpo/internal/logger"
)

const previewLength = 40

// Service fills translation gaps for one invocation. It carries the provider
// and the main language explicitly; nothing is held in package state.
type Service struct {
	provider     Provider
	mainLanguage string
	opts         Options
	log          *logger.Logger

	// OnProgress is called after each language has been processed.
	OnProgress func(language string, done, total int)
}

// Outcome reports what happened to one language.
type Outcome struct {
	Language   string
	Path       string
	Translated int
	Err        error
}

// NewService creates a Service translating from mainLanguage.
func NewService(p Provider, mainLanguage string, opts Options, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{provider: p, mainLanguage: mainLanguage, opts: opts, log: log}
}

// Fill translates the entries listed in diff, stores them in file and writes
// file back to path. When the provider fails nothing is written and the
// language is left untouched. It returns the number of entries filled.
func (s *Service) Fill(ctx context.Context, file *catalog.File, path string, diff catalog.Diff) (int, error) {
	var missing []catalog.MissingEntry
	for _, m := range diff.Missing {
		if m.Original != "" {
			missing = append(missing, m)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	source, err := SourceCode(s.mainLanguage)
	if err != nil {
		return 0, err
	}
	target, err := TargetCode(diff.Language)
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(missing))
	for i, m := range missing {
		texts[i] = Protect(m.Original)
	}

	s.log.Info(fmt.Sprintf("🌍  Translating language: [%s]", diff.Language),
		"entries", len(texts), "provider", s.provider.Name())

	translated, err := s.provider.TranslateBatch(ctx, texts, source, target, s.opts)
	if err != nil {
		s.log.Error("Error translating batch", "language", diff.Language, "error", err)
		return 0, fmt.Errorf("translating %s: %w", diff.Language, err)
	}
	if len(translated) != len(missing) {
		return 0, fmt.Errorf("translating %s: provider returned %d results for %d texts",
			diff.Language, len(translated), len(missing))
	}

	for i, m := range missing {
		text := Restore(translated[i])
		msg := file.Set(m.MsgID, text)

		// Messages appended in memory have no line yet.
		loc := catalog.Location{File: path, Line: msg.Line}
		s.log.Info(fmt.Sprintf(" • %s → %s [%s]", m.MsgID, preview(text), loc))
	}

	if err := file.WriteFile(path); err != nil {
		return 0, err
	}
	s.log.Info(fmt.Sprintf("✅  Updated [%s] (%d entries)", diff.Language, len(missing)))
	return len(missing), nil
}

// FillFile parses the catalog at path and fills it.
func (s *Service) FillFile(ctx context.Context, path string, diff catalog.Diff) (int, error) {
	file, err := catalog.ParseFile(path)
	if err != nil {
		return 0, err
	}
	return s.Fill(ctx, file, path, diff)
}

// FillAll processes every incomplete diff in order. A failing language does
// not stop the others; the failures are joined into the returned error.
func (s *Service) FillAll(ctx context.Context, files []catalog.CatalogFile, diffs []catalog.Diff) ([]Outcome, error) {
	var pending []catalog.Diff
	for _, d := range diffs {
		if !d.Complete() {
			pending = append(pending, d)
		}
	}

	outcomes := make([]Outcome, 0, len(pending))
	var errs []error
	for i, d := range pending {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		o := Outcome{Language: d.Language}
		cf, ok := catalog.Find(files, d.Language)
		if !ok {
			o.Err = fmt.Errorf("%w for language: %s", catalog.ErrNoCatalogs, d.Language)
		} else {
			o.Path = cf.Path
			o.Translated, o.Err = s.FillFile(ctx, cf.Path, d)
		}
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
		outcomes = append(outcomes, o)

		if s.OnProgress != nil {
			s.OnProgress(d.Language, i+1, len(pending))
		}
	}
	return outcomes, errors.Join(errs...)
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength]) + "..."
}
