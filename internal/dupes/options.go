// Package dupes finds exact and near-duplicate translations inside a single
// language catalog.
//
// Entries are normalized into word tokens, compared against the group
// representatives seen so far and, on the first match, appended to that
// representative's group. Near-duplicates are found with a fixed-offset
// diagonal walk that tolerates a bounded number of substituted words.
package dupes

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMinRunLength    = errors.New("minimum run length must be >= 1")
	ErrInvalidMaxGap          = errors.New("maximum gap must be >= 0")
	ErrGapWithoutMinRunLength = errors.New("a gap tolerance can only be used together with a minimum run length")
)

// Options tunes duplicate detection.
type Options struct {
	// MinRunLength enables fuzzy matching: two strings match when they share
	// a diagonal run of at least this many words. Zero means exact matching only.
	MinRunLength int
	// MaxGap is the number of mismatched words tolerated inside a run.
	MaxGap int
}

// Fuzzy reports whether fuzzy matching is enabled.
func (o Options) Fuzzy() bool {
	return o.MinRunLength > 0
}

// Validate checks the option combination.
func (o Options) Validate() error {
	if o.MinRunLength < 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidMinRunLength, o.MinRunLength)
	}
	if o.MaxGap < 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidMaxGap, o.MaxGap)
	}
	if o.MaxGap > 0 && !o.Fuzzy() {
		return ErrGapWithoutMinRunLength
	}
	return nil
}

func (o Options) String() string {
	if !o.Fuzzy() {
		return "strict full match"
	}
	return fmt.Sprintf("words=%d, similarity=%d", o.MinRunLength, o.MaxGap)
}

// Stats holds counters for one language scan.
type Stats struct {
	Entries         int // entries offered to the grouper
	Skipped         int // entries that normalized to nothing
	Representatives int // distinct groups, singletons included
	Comparisons     int // representative comparisons performed
}
