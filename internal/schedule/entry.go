package schedule

import (
	"dailywee/internal/pool"
)

// Entry is the compact calendar projection of one day. Notable attribute
// fields are omitted from JSON when zero or absent.
type Entry struct {
	ID    string `json:"id"`
	Theme string `json:"t"`
	Label string `json:"j"`
	Score int    `json:"s"`
	Twos  int    `json:"w"`

	WeeA1       int `json:"wj1,omitempty"`
	WeeA2       int `json:"wj2,omitempty"`
	ChadA1      int `json:"hc1,omitempty"`
	ChadA2      int `json:"hc2,omitempty"`
	HackA1      int `json:"hk1,omitempty"`
	HackA2      int `json:"hk2,omitempty"`
	Blueprint   int `json:"bp,omitempty"`
	Brainstorm  int `json:"bs,omitempty"`
	Showman     int `json:"sh,omitempty"`
	RedSealTwo  int `json:"rs,omitempty"`
	ThemeCardA1 int `json:"t1,omitempty"`
	ThemeCardA2 int `json:"t2,omitempty"`
}

func (e *Entry) field(a pool.Attr) *int {
	switch a {
	case pool.WeeA1:
		return &e.WeeA1
	case pool.WeeA2:
		return &e.WeeA2
	case pool.ChadA1:
		return &e.ChadA1
	case pool.ChadA2:
		return &e.ChadA2
	case pool.HackA1:
		return &e.HackA1
	case pool.HackA2:
		return &e.HackA2
	case pool.Blueprint:
		return &e.Blueprint
	case pool.Brainstorm:
		return &e.Brainstorm
	case pool.Showman:
		return &e.Showman
	case pool.RedSealTwo:
		return &e.RedSealTwo
	case pool.ThemeCardA1:
		return &e.ThemeCardA1
	case pool.ThemeCardA2:
		return &e.ThemeCardA2
	}
	return nil
}

// Notable returns the non-zero notable attributes of the entry.
func (e *Entry) Notable() map[pool.Attr]int {
	out := map[pool.Attr]int{}
	for _, a := range pool.Notable {
		if v := *e.field(a); v != 0 {
			out[a] = v
		}
	}
	return out
}

// Project builds the calendar entry for a record shown under a theme. Theme
// name and label cells on the record take precedence over the theme's own.
func Project(r pool.Record, th Theme) *Entry {
	e := &Entry{
		ID:    pool.CleanID(r.ID),
		Theme: th.Name,
		Label: th.Label,
		Score: r.Score(),
		Twos:  r.TwosCount(),
	}
	if r.ThemeName != "" {
		e.Theme = r.ThemeName
	}
	if r.ThemeLabel != "" {
		e.Label = r.ThemeLabel
	}
	for _, a := range pool.Notable {
		if v := r.Value(a); v != 0 {
			*e.field(a) = v
		}
	}
	return e
}

// Calendar is the positional day sequence; a nil entry marks a day with no
// seed available.
type Calendar []*Entry

// Missing returns the offsets with no entry.
func (c Calendar) Missing() []int {
	var out []int
	for i, e := range c {
		if e == nil {
			out = append(out, i)
		}
	}
	return out
}
