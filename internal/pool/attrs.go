package pool

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Attr names a canonical numeric attribute of a seed record.
type Attr string

const (
	Score Attr = "score"
	Twos  Attr = "twos"

	WeeA1       Attr = "wj1"
	WeeA2       Attr = "wj2"
	ChadA1      Attr = "hc1"
	ChadA2      Attr = "hc2"
	HackA1      Attr = "hk1"
	HackA2      Attr = "hk2"
	Blueprint   Attr = "bp"
	Brainstorm  Attr = "bs"
	Showman     Attr = "sh"
	RedSealTwo  Attr = "rs"
	ThemeCardA1 Attr = "t1"
	ThemeCardA2 Attr = "t2"

	Perkeo Attr = "perkeo"

	NegativeWee  Attr = "neg_wee"
	NegativeChad Attr = "neg_chad"
	NegativeHack Attr = "neg_hack"

	PolychromeWee  Attr = "poly_wee"
	HolographicWee Attr = "holo_wee"
	FoilWee        Attr = "foil_wee"
)

// Text fields carried by a record besides its numeric attributes.
const (
	fieldID         = "id"
	fieldCategory   = "category"
	fieldThemeName  = "theme_name"
	fieldThemeLabel = "theme_label"
)

// Notable lists the attributes copied into calendar entries, in output order.
var Notable = []Attr{
	WeeA1, WeeA2, ChadA1, ChadA2, HackA1, HackA2,
	Blueprint, Brainstorm, Showman, RedSealTwo, ThemeCardA1, ThemeCardA2,
}

// Aliases maps every canonical attribute to the header spellings seen in
// exported pools. The first alias with a non-empty cell wins.
var Aliases = map[Attr][]string{
	Score: {"score", "s"},
	Twos:  {"Two", "twos", "w"},

	WeeA1:       {"WeeJoker A1", "WeeJoker_Ante1", "wj1"},
	WeeA2:       {"WeeJoker A2", "WeeJoker_Ante2", "wj2"},
	ChadA1:      {"HangingChad A1", "HanginChad_Ante1", "hc1"},
	ChadA2:      {"HangingChad A2", "HanginChad_Ante2", "hc2"},
	HackA1:      {"Hack A1", "Hack_Ante1", "hk1"},
	HackA2:      {"Hack A2", "Hack_Ante2", "hk2"},
	Blueprint:   {"Blueprint A1", "blueprint_early", "bp"},
	Brainstorm:  {"Brainstorm A1", "brainstorm_early", "bs"},
	Showman:     {"Showman A1", "Showman_Ante1", "Showman A1-2", "sh"},
	RedSealTwo:  {"red_Seal_Two", "rs"},
	ThemeCardA1: {"Theme_Card_Ante1", "t1"},
	ThemeCardA2: {"Theme_Card_Ante2", "t2"},

	Perkeo: {"Perkeo", "Perkeo A1-4"},

	NegativeWee:  {"Negative WeeJoker A1-2", "Negative_WeeJoker"},
	NegativeChad: {"Negative HangingChad A1-2"},
	NegativeHack: {"Negative Hack A1-2"},

	PolychromeWee:  {"Polychrome WeeJoker A1-2"},
	HolographicWee: {"Holographic WeeJoker A1-2"},
	FoilWee:        {"Foil WeeJoker A1-2"},
}

var textAliases = map[string][]string{
	fieldID:         {"seed", "id"},
	fieldCategory:   {"Day"},
	fieldThemeName:  {"themeName"},
	fieldThemeLabel: {"themeJoker"},
}

var folder = cases.Fold()

// NormalizeHeader folds case and drops every rune that is not a letter or
// digit, so "Hack A1", "hack_a1" and "HACK-A1" compare equal.
func NormalizeHeader(h string) string {
	h = folder.String(strings.TrimSpace(h))
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
