package dupes

import "github.com/asynkron/tpo/internal/catalog"

// Member is one entry of a duplicate group.
type Member struct {
	Entry  catalog.Entry
	Tokens Tokens
	File   string // catalog file the entry was read from
}

// Text returns the raw translated string.
func (m Member) Text() string {
	return m.Entry.MsgStr
}

// Location formats "<catalog file>:<line>" using the line of the entry's
// source reference, or just the catalog file when there is none.
func (m Member) Location() string {
	if m.Entry.Source != nil && m.Entry.Source.Line > 0 {
		return catalog.Location{File: m.File, Line: m.Entry.Source.Line}.String()
	}
	return m.File
}

// Group is a set of entries sharing content. Members[0] is the representative.
type Group struct {
	Members []Member
}

// Representative returns the entry that founded the group.
func (g Group) Representative() Member {
	return g.Members[0]
}

// Size returns the member count.
func (g Group) Size() int {
	return len(g.Members)
}

// Duplicate reports whether the group holds more than one entry.
func (g Group) Duplicate() bool {
	return len(g.Members) > 1
}

// representative pairs a founding token sequence with the index of its group.
type representative struct {
	tokens Tokens
	group  int
}

// Grouper partitions one language's entries into duplicate groups.
//
// Entries are compared only against group representatives, in the order the
// representatives were created, and join the first one they match. Membership
// is therefore anchored on representatives: an entry that only resembles a
// later member of a group starts a group of its own.
type Grouper struct {
	file   string
	opts   Options
	reps   []representative
	groups []Group
	stats  Stats
}

// NewGrouper creates a grouper for the catalog file at path.
func NewGrouper(file string, opts Options) (*Grouper, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Grouper{file: file, opts: opts}, nil
}

// Add places an entry into a group. It returns false when the entry carries
// no words and was skipped.
func (g *Grouper) Add(entry catalog.Entry) bool {
	g.stats.Entries++

	tokens := Normalize(entry.MsgStr)
	if len(tokens) == 0 {
		g.stats.Skipped++
		return false
	}
	member := Member{Entry: entry, Tokens: tokens, File: g.file}

	for _, rep := range g.reps {
		g.stats.Comparisons++
		if Matches(tokens, rep.tokens, g.opts) {
			g.groups[rep.group].Members = append(g.groups[rep.group].Members, member)
			return true
		}
	}

	g.reps = append(g.reps, representative{tokens: tokens, group: len(g.groups)})
	g.groups = append(g.groups, Group{Members: []Member{member}})
	g.stats.Representatives++
	return true
}

// Groups returns the duplicate groups in first-seen order.
func (g *Grouper) Groups() []Group {
	var dups []Group
	for _, grp := range g.groups {
		if grp.Duplicate() {
			dups = append(dups, grp)
		}
	}
	return dups
}

// Stats returns the counters collected so far.
func (g *Grouper) Stats() Stats {
	return g.stats
}

// FindGroups groups a whole entry sequence in catalog order.
func FindGroups(file string, entries []catalog.Entry, opts Options) ([]Group, Stats, error) {
	g, err := NewGrouper(file, opts)
	if err != nil {
		return nil, Stats{}, err
	}
	for _, e := range entries {
		g.Add(e)
	}
	return g.Groups(), g.Stats(), nil
}
