// Package catalog reads and writes gettext PO catalogs and exposes them as
// flat, ordered entry sequences per language.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Location is a source reference parsed from a "#:" comment.
// Line is zero when the reference carries no line component.
type Location struct {
	File string
	Line int
}

// ParseLocation parses the first reference of a "#:" comment such as
// "src/app.ts:42 src/other.ts:7". It returns nil for an empty reference.
func ParseLocation(ref string) *Location {
	fields := strings.Fields(ref)
	if len(fields) == 0 {
		return nil
	}
	first := fields[0]
	if idx := strings.LastIndexByte(first, ':'); idx > 0 {
		if line, err := strconv.Atoi(first[idx+1:]); err == nil && line > 0 {
			return &Location{File: first[:idx], Line: line}
		}
	}
	return &Location{File: first}
}

func (l Location) String() string {
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}

// Entry is one translatable message of a language catalog.
type Entry struct {
	MsgCtxt string
	MsgID   string
	MsgStr  string
	Source  *Location
}

// Catalog is the ordered entry sequence of one language file.
type Catalog struct {
	Language string
	Path     string
	Entries  []Entry
}

// Entries flattens a parsed file. The header and obsolete messages are
// excluded; plural messages contribute their first form.
func Entries(f *File) []Entry {
	entries := make([]Entry, 0, len(f.Messages))
	for _, m := range f.Messages {
		if m.MsgID == "" || m.Obsolete {
			continue
		}
		msgstr := m.MsgStr
		if m.MsgIDPlural != "" {
			msgstr = m.MsgStrPlural[0]
		}
		var src *Location
		if len(m.References) > 0 {
			src = ParseLocation(m.References[0])
		}
		entries = append(entries, Entry{
			MsgCtxt: m.MsgCtxt,
			MsgID:   m.MsgID,
			MsgStr:  msgstr,
			Source:  src,
		})
	}
	return entries
}

// Load parses the PO file at path and returns its catalog.
func Load(language, path string) (*Catalog, error) {
	f, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Language: language,
		Path:     path,
		Entries:  Entries(f),
	}, nil
}

// LoadAll loads every resolved catalog file in order.
func LoadAll(files []CatalogFile) ([]*Catalog, error) {
	catalogs := make([]*Catalog, 0, len(files))
	for _, cf := range files {
		c, err := Load(cf.Language, cf.Path)
		if err != nil {
			return nil, fmt.Errorf("loading %s catalog: %w", cf.Language, err)
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, nil
}
