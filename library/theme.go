package library

import "strings"

// Theme classifies a book. The set is closed; anything unrecognized
// parses to ThemeOther.
type Theme string

const (
	ThemeFiction    Theme = "FICTION"
	ThemeNonFiction Theme = "NON_FICTION"
	ThemeScience    Theme = "SCIENCE"
	ThemeReligion   Theme = "RELIGION"
	ThemePolitics   Theme = "POLITICS"
	ThemeHistory    Theme = "HISTORY"
	ThemeBiography  Theme = "BIOGRAPHY"
	ThemeTechnology Theme = "TECHNOLOGY"
	ThemeChildren   Theme = "CHILDREN"
	ThemeOther      Theme = "OTHER"
)

// Themes lists every valid theme in declaration order.
func Themes() []Theme {
	return []Theme{
		ThemeFiction, ThemeNonFiction, ThemeScience, ThemeReligion,
		ThemePolitics, ThemeHistory, ThemeBiography, ThemeTechnology,
		ThemeChildren, ThemeOther,
	}
}

var themeSet = func() map[Theme]bool {
	m := make(map[Theme]bool, len(Themes()))
	for _, t := range Themes() {
		m[t] = true
	}
	return m
}()

// ThemeFromName resolves the exact enum literal (case-insensitive).
// Unlike ParseTheme it does not fall back to OTHER.
func ThemeFromName(s string) (Theme, bool) {
	t := Theme(strings.ToUpper(strings.TrimSpace(s)))
	return t, themeSet[t]
}

// ParseTheme is the lenient parser used at catalog-add time: it maps
// spaces to underscores, ignores case, and yields ThemeOther for blank
// or unrecognized input.
func ParseTheme(s string) Theme {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	if t, ok := ThemeFromName(s); ok {
		return t
	}
	return ThemeOther
}

// Valid reports whether t is a member of the closed theme set.
func (t Theme) Valid() bool { return themeSet[t] }
