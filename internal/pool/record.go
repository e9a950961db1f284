package pool

import (
	"strings"
	"unicode"
)

// Record is one candidate seed. Records are immutable once loaded; the
// attribute map is never written after construction.
type Record struct {
	ID string
	// Category is a pre-assigned bucket label ("Day" column), empty when the
	// pool leaves classification to the rule set.
	Category   string
	ThemeName  string
	ThemeLabel string

	attrs map[Attr]int
}

// NewRecord builds a record from canonical attribute values. Keys absent from
// attrs are treated as absent, not zero.
func NewRecord(id string, attrs map[Attr]int) Record {
	cp := make(map[Attr]int, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return Record{ID: id, attrs: cp}
}

// Value returns the attribute value, zero when absent.
func (r Record) Value(a Attr) int {
	return r.attrs[a]
}

// Has reports whether the attribute had a non-empty cell.
func (r Record) Has(a Attr) bool {
	_, ok := r.attrs[a]
	return ok
}

// Score is the projected run score.
func (r Record) Score() int { return r.Value(Score) }

// TwosCount is the number of rank-2 cards in the starting deck.
func (r Record) TwosCount() int { return r.Value(Twos) }

// Attrs returns a copy of the present attributes.
func (r Record) Attrs() map[Attr]int {
	cp := make(map[Attr]int, len(r.attrs))
	for k, v := range r.attrs {
		cp[k] = v
	}
	return cp
}

// CleanID strips C0/C1 control characters and surrounding whitespace that
// upstream search tooling sometimes leaves in seed identifiers.
func CleanID(id string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, id))
}

// parseCell parses the leading integer of a cell the way the pool exporter
// writes them ("3", "3.0", "+2"). A cell without leading digits yields 0.
func parseCell(raw string) int {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			break
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return -n
	}
	return n
}
