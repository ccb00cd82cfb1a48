package canon

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-wikikb"
)

// A Quantity is what a measured field measures.
type Quantity int

const (
	Area Quantity = iota
	Length
	Height
	Flow
)

var quantityNames = []string{"area", "length", "height", "flow"}

func (q Quantity) String() string {
	if int(q) < len(quantityNames) {
		return quantityNames[q]
	}
	return "quantity(" + strconv.Itoa(int(q)) + ")"
}

// Unit is the canonical unit values of q are given in.
func (q Quantity) Unit() string {
	switch q {
	case Area:
		return "km2"
	case Length:
		return "km"
	case Height:
		return "m"
	case Flow:
		return "m3/s"
	}
	return ""
}

const (
	mile = 1.609344
	foot = 0.3048
	yard = 0.9144
)

// Factors into the canonical unit, keyed by normalized spelling.
var unitFactors = map[Quantity]map[string]float64{
	Area: {
		"km2": 1, "sq km": 1, "sqkm": 1, "square kilometres": 1, "square kilometers": 1,
		"m2": 1e-6, "ha": 0.01, "hectare": 0.01, "hectares": 0.01,
		"acre": 0.0040468564224, "acres": 0.0040468564224,
		"sqmi": mile * mile, "sq mi": mile * mile, "mi2": mile * mile,
		"square mile": mile * mile, "square miles": mile * mile,
	},
	Length: {
		"km": 1, "kilometre": 1, "kilometres": 1, "kilometer": 1, "kilometers": 1,
		"m": 0.001, "metre": 0.001, "metres": 0.001, "meter": 0.001, "meters": 0.001,
		"mi": mile, "mile": mile, "miles": mile,
		"ft": foot / 1000, "feet": foot / 1000, "yd": yard / 1000, "nmi": 1.852,
	},
	Height: {
		"m": 1, "metre": 1, "metres": 1, "meter": 1, "meters": 1,
		"ft": foot, "feet": foot, "foot": foot, "yd": yard,
		"km": 1000,
	},
	Flow: {
		"m3/s": 1, "cumecs": 1, "cusecs": foot * foot * foot,
		"cuft/s": foot * foot * foot, "ft3/s": foot * foot * foot, "cu ft/s": foot * foot * foot,
		"l/s": 0.001,
	},
}

func unitKey(unit string) string {
	unit = strings.NewReplacer("²", "2", "³", "3", "\u00a0", " ").Replace(unit)
	unit = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), ".")
	return strings.Join(strings.Fields(unit), " ")
}

// KnownUnit is true if unit is a spelling of a unit of q.
func KnownUnit(unit string, q Quantity) bool {
	_, ok := unitFactors[q][unitKey(unit)]
	return ok
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Convert expresses value in unit as the canonical unit of q,
// rounded to two decimals.  Values already in the canonical unit
// come back as they are.  Unknown units fail.
func Convert(value float64, unit string, q Quantity) (string, bool) {
	f, ok := unitFactors[q][unitKey(unit)]
	switch {
	case !ok:
		return "", false
	case f == 1:
		return formatNumber(value), true
	}
	return formatNumber(math.Round(value*f*100) / 100), true
}

// A UnitParser reads measured values out of infobox fields.
type UnitParser struct {
	profile  *Profile
	numberRE *regexp.Regexp
}

// NewUnitParser builds a parser for the profile's number format.
func NewUnitParser(p *Profile) *UnitParser {
	seps := regexp.QuoteMeta(p.DecimalSeparator + p.GroupingSeparator)
	return &UnitParser{
		profile:  p,
		numberRE: regexp.MustCompile(`[-−]?\d(?:[\d\x{a0}\x{202f}` + seps + `]*\d)?`),
	}
}

var convertRangeWords = map[string]bool{
	"-": true, "–": true, "to": true, "and": true, "or": true, "by": true, "x": true, "+/-": true,
}

// number parses a number written with the profile's separators.
func (u *UnitParser) number(s string) (float64, bool) {
	s = strings.NewReplacer("\u00a0", "", "\u202f", "", "−", "-").Replace(strings.TrimSpace(s))
	if g := u.profile.GroupingSeparator; g != "" {
		s = strings.ReplaceAll(s, g, "")
	}
	if d := u.profile.DecimalSeparator; d != "" && d != "." {
		s = strings.ReplaceAll(s, d, ".")
	}
	s = strings.ReplaceAll(s, " ", "")
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// numberValue is what a number template shows: its value, and the
// unit {{val}} puts after it.  Other templates show nothing.
func (u *UnitParser) numberValue(t wikikb.Template) string {
	if name, arg, ok := strings.Cut(t.Name, ":"); ok {
		if foldedIn(strings.TrimSpace(name), u.profile.NumberTemplates) {
			return " " + strings.TrimSpace(arg) + " "
		}
		return ""
	}
	pos := t.Positional()
	if !foldedIn(t.Name, u.profile.NumberTemplates) || len(pos) == 0 {
		return ""
	}
	rv := pos[0]
	named := t.Named()
	for _, k := range []string{"u", "ul"} {
		if named[k] != "" {
			rv += " " + named[k]
			break
		}
	}
	return " " + rv + " "
}

// plain reduces a field to text, number templates to their values.
func (u *UnitParser) plain(raw string) string {
	s := wikikb.StripRefs(wikikb.StripComments(raw))
	s = wikikb.RewriteTemplates(s, u.numberValue)
	return u.profile.Namespaces.Clean(s)
}

// Number reads the first number in raw, e.g. a population count.
func (u *UnitParser) Number(raw string) (string, bool) {
	text := u.plain(raw)
	m := u.numberRE.FindString(text)
	if m == "" {
		return "", false
	}
	f, ok := u.number(m)
	if !ok {
		return "", false
	}
	return formatNumber(f), true
}

// Parse reads a measured value and converts it to q's canonical
// unit.  A number without a unit is taken as canonical.
func (u *UnitParser) Parse(raw string, q Quantity) (string, bool) {
	return u.ParseIn(raw, q, q.Unit())
}

// ParseIn is Parse for fields whose name implies a unit, e.g.
// "elevation_ft".
func (u *UnitParser) ParseIn(raw string, q Quantity, unit string) (string, bool) {
	s := wikikb.StripRefs(wikikb.StripComments(raw))
	if t, ok := findTemplate(s, []string{"convert", "cvt"}); ok {
		return u.convertTemplate(t, q)
	}

	text := u.plain(s)
	loc := u.numberRE.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	v, ok := u.number(text[loc[0]:loc[1]])
	if !ok {
		return "", false
	}
	words := strings.Fields(text[loc[1]:])
	for n := 2; n > 0; n-- {
		if len(words) < n {
			continue
		}
		cand := strings.TrimRight(strings.Join(words[:n], " "), ",;:)")
		if KnownUnit(cand, q) {
			return Convert(v, cand, q)
		}
	}
	if len(words) > 0 && startsWithLetter(words[0]) {
		return "", false
	}
	return Convert(v, unit, q)
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

// convertTemplate reads {{convert|N|unit|...}}, and the first value
// of {{convert|N|-|M|unit|...}} ranges.
func (u *UnitParser) convertTemplate(t wikikb.Template, q Quantity) (string, bool) {
	pos := t.Positional()
	if len(pos) < 2 {
		return "", false
	}
	v, ok := u.number(pos[0])
	if !ok {
		return "", false
	}
	unit := pos[1]
	if convertRangeWords[strings.ToLower(unit)] && len(pos) >= 4 {
		unit = pos[3]
	}
	return Convert(v, unit, q)
}
