package catalog

import "strings"

// MissingEntry is a message the target language has not translated yet.
type MissingEntry struct {
	MsgID    string
	Original string // main-language text, or the msgid when that is empty
	Source   *Location
}

// Diff summarizes how a target catalog compares to the main language.
type Diff struct {
	Language     string
	Total        int
	Untranslated int
	Missing      []MissingEntry
}

// Complete reports whether nothing is left to translate.
func (d Diff) Complete() bool {
	return d.Untranslated == 0
}

// DiffAgainst compares target with the main catalog. An entry is missing when
// the target lacks its msgid or holds only whitespace for it.
func DiffAgainst(main, target *Catalog) Diff {
	translated := make(map[string]string, len(target.Entries))
	for _, e := range target.Entries {
		if e.MsgCtxt != "" {
			continue
		}
		translated[e.MsgID] = e.MsgStr
	}

	d := Diff{Language: target.Language}
	for _, e := range main.Entries {
		if e.MsgCtxt != "" {
			continue
		}
		d.Total++
		if strings.TrimSpace(translated[e.MsgID]) != "" {
			continue
		}
		original := e.MsgStr
		if original == "" {
			original = e.MsgID
		}
		d.Missing = append(d.Missing, MissingEntry{
			MsgID:    e.MsgID,
			Original: original,
			Source:   e.Source,
		})
	}
	d.Untranslated = len(d.Missing)
	return d
}

// DiffAll diffs every non-main catalog against the main language, keeping
// input order. The bool result is false when the main catalog is absent.
func DiffAll(catalogs []*Catalog, mainLanguage string) ([]Diff, bool) {
	var main *Catalog
	for _, c := range catalogs {
		if c.Language == mainLanguage {
			main = c
			break
		}
	}
	if main == nil {
		return nil, false
	}

	diffs := make([]Diff, 0, len(catalogs)-1)
	for _, c := range catalogs {
		if c.Language == mainLanguage {
			continue
		}
		diffs = append(diffs, DiffAgainst(main, c))
	}
	return diffs, true
}
