package dupes

// Equal reports whether two token sequences are identical.
func Equal(a, b Tokens) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LongestDiagonalRun returns the longest run of aligned tokens between a and
// b, starting anywhere in either, that contains at most maxGap mismatches.
//
// The alignment offset is fixed for the whole run: a mismatch is tolerated as
// a substitution, never as an insertion or deletion. With maxGap 0 this is
// the longest common contiguous run.
func LongestDiagonalRun(a, b Tokens, maxGap int) int {
	longest := 0
	for i := range a {
		for j := range b {
			k, gaps := 0, 0
			for i+k < len(a) && j+k < len(b) {
				if a[i+k] != b[j+k] {
					if gaps >= maxGap {
						break
					}
					gaps++
				}
				k++
			}
			if k > longest {
				longest = k
			}
		}
	}
	return longest
}

// Matches reports whether a and b are duplicates under opts.
// Identical sequences always match.
func Matches(a, b Tokens, opts Options) bool {
	if Equal(a, b) {
		return true
	}
	if !opts.Fuzzy() {
		return false
	}
	return LongestDiagonalRun(a, b, opts.MaxGap) >= opts.MinRunLength
}
