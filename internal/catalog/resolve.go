package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// LocalePlaceholder marks the language segment of a locales path pattern.
const LocalePlaceholder = "{locale}"

var (
	// ErrMissingLocalePlaceholder is returned for a locales path without {locale}.
	ErrMissingLocalePlaceholder = errors.New(`localesPath must include "{locale}"`)

	// ErrNoCatalogs is returned when a language filter matches no catalog file.
	ErrNoCatalogs = errors.New("no catalog files found")
)

// CatalogFile is a resolved language catalog on disk.
type CatalogFile struct {
	Language string
	Path     string
}

// Resolver finds catalog files for a locales path pattern such as
// "locales/{locale}/messages.po".
type Resolver struct {
	Pattern string
	Exclude []string // glob patterns matched against slash-separated paths
}

// Resolve walks the directory before the {locale} segment and returns every
// file whose path matches the pattern, sorted by language.
func (r Resolver) Resolve() ([]CatalogFile, error) {
	if !strings.Contains(r.Pattern, LocalePlaceholder) {
		return nil, ErrMissingLocalePlaceholder
	}

	abs, err := filepath.Abs(r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", r.Pattern, err)
	}
	abs = filepath.ToSlash(abs)
	matcher, err := patternRegexp(abs)
	if err != nil {
		return nil, err
	}

	excludes := make([]glob.Glob, 0, len(r.Exclude))
	for _, ex := range r.Exclude {
		g, err := glob.Compile(ex, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", ex, err)
		}
		excludes = append(excludes, g)
	}

	prefix, _, _ := strings.Cut(abs, LocalePlaceholder)
	baseDir := filepath.FromSlash(prefix)
	if !strings.HasSuffix(prefix, "/") {
		baseDir = filepath.Dir(baseDir)
	}
	ext := filepath.Ext(abs)

	langs := make(map[string]string)
	err = filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || (ext != "" && filepath.Ext(path) != ext) {
			return nil
		}
		slashed := filepath.ToSlash(path)
		for _, g := range excludes {
			if g.Match(slashed) || g.Match(filepath.Base(path)) {
				return nil
			}
		}
		if lang, ok := matchLocale(matcher, slashed); ok {
			langs[lang] = path
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("walking %s: %w", baseDir, err)
	}

	files := make([]CatalogFile, 0, len(langs))
	for lang, path := range langs {
		files = append(files, CatalogFile{Language: lang, Path: path})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Language < files[j].Language
	})
	return files, nil
}

// patternRegexp turns "/abs/locales/{locale}/app.po" into an anchored
// expression capturing the locale segment.
func patternRegexp(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, LocalePlaceholder)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("^" + strings.Join(quoted, `([^/]+)`) + "$")
}

// matchLocale returns the captured locale. Repeated placeholders must agree.
func matchLocale(re *regexp.Regexp, path string) (string, bool) {
	m := re.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	for _, other := range m[2:] {
		if other != m[1] {
			return "", false
		}
	}
	return m[1], true
}

// Only filters files down to a single language. An empty language keeps all.
func Only(files []CatalogFile, language string) ([]CatalogFile, error) {
	if language == "" {
		return files, nil
	}
	for _, f := range files {
		if f.Language == language {
			return []CatalogFile{f}, nil
		}
	}
	return nil, fmt.Errorf("%w for language: %s", ErrNoCatalogs, language)
}

// Find returns the catalog file for a language.
func Find(files []CatalogFile, language string) (CatalogFile, bool) {
	for _, f := range files {
		if f.Language == language {
			return f, true
		}
	}
	return CatalogFile{}, false
}
