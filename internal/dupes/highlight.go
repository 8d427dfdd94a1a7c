package dupes

import "strings"

// SharedTokens returns the words present in every member of the group.
func SharedTokens(g Group) TokenSet {
	if len(g.Members) == 0 {
		return TokenSet{}
	}
	shared := NewTokenSet(g.Members[0].Tokens)
	for _, m := range g.Members[1:] {
		set := NewTokenSet(m.Tokens)
		for t := range shared {
			if !set.Has(t) {
				delete(shared, t)
			}
		}
	}
	return shared
}

// Piece is a whitespace-delimited fragment of a raw translation.
type Piece struct {
	Text   string
	Shared bool
}

// Highlight splits raw on whitespace and flags the pieces whose normalized
// form is in shared. Pieces keep their original casing and punctuation.
func Highlight(raw string, shared TokenSet) []Piece {
	fields := strings.Fields(raw)
	pieces := make([]Piece, len(fields))
	for i, f := range fields {
		word := NormalizeWord(f)
		pieces[i] = Piece{Text: f, Shared: word != "" && shared.Has(word)}
	}
	return pieces
}

// Render joins pieces with single spaces, passing shared pieces through mark
// and the rest through plain. A nil func leaves the text unchanged.
func Render(pieces []Piece, mark, plain func(string) string) string {
	var sb strings.Builder
	for i, p := range pieces {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case p.Shared && mark != nil:
			sb.WriteString(mark(p.Text))
		case !p.Shared && plain != nil:
			sb.WriteString(plain(p.Text))
		default:
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
