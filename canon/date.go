package canon

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-wikikb"
)

var canonicalDateRE *regexp.Regexp

func init() {
	part := `(-?\d{4}|\?{4})-(\d{2}|\?\?)-(\d{2}|\?\?)`
	canonicalDateRE = regexp.MustCompile(`^` + part + `(?:/` + part + `)?$`)
}

// A Point is a partial calendar date.  Years before the current era
// are negative and use astronomical numbering, so 1 BC is year 0.
type Point struct {
	Year    int
	HasYear bool
	// 1-12, 0 when unknown.
	Month int
	// 1-31, 0 when unknown.
	Day int
}

// IsZero is true when nothing about the point is known.
func (p Point) IsZero() bool {
	return !p.HasYear && p.Month == 0 && p.Day == 0
}

func (p Point) String() string {
	if p.IsZero() {
		return ""
	}
	y := "????"
	if p.HasYear {
		if p.Year < 0 {
			y = fmt.Sprintf("-%04d", -p.Year)
		} else {
			y = fmt.Sprintf("%04d", p.Year)
		}
	}
	m, d := "??", "??"
	if p.Month > 0 {
		m = fmt.Sprintf("%02d", p.Month)
	}
	if p.Day > 0 {
		d = fmt.Sprintf("%02d", p.Day)
	}
	return y + "-" + m + "-" + d
}

func (p Point) key() [3]int {
	return [3]int{p.Year, p.Month, p.Day}
}

// before orders points with known years; unknown parts count as 0.
func (p Point) before(q Point) bool {
	a, b := p.key(), q.key()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// A Date is a canonical date, or a range of them.
type Date struct {
	From  Point
	To    Point
	Range bool
}

// IsZero is true for a date normalization could not produce.
func (d Date) IsZero() bool {
	return d.From.IsZero() && !d.Range
}

// String renders YYYY-MM-DD, or from/to for ranges, with unknown
// parts as question marks.
func (d Date) String() string {
	if d.Range {
		return d.From.String() + "/" + d.To.String()
	}
	return d.From.String()
}

func single(p Point) Date {
	return Date{From: p}
}

func yearOnly(y int) Point {
	return Point{Year: y, HasYear: true}
}

// span builds an ordered range.
func span(a, b Point) Date {
	if a.HasYear && b.HasYear && b.before(a) {
		a, b = b, a
	}
	return Date{From: a, To: b, Range: true}
}

// A DateRole says which date a field holds.  It picks the member of
// a pair when a template carries two dates.
type DateRole int

const (
	RoleGeneric DateRole = iota
	RoleBirth
	RoleDeath
	RoleStart
	RoleEnd
)

// A DateNormalizer maps the many ways dates are written to a Date.
type DateNormalizer struct {
	profile *Profile

	centuryRE  *regexp.Regexp
	dmyRE      *regexp.Regexp
	mdyRE      *regexp.Regexp
	dottedRE   *regexp.Regexp
	isoRE      *regexp.Regexp
	monthYrRE  *regexp.Regexp
	yearSpanRE *regexp.Regexp
	yearRE     *regexp.Regexp
	monthRE    *regexp.Regexp
	rangeSepRE *regexp.Regexp
	ageRE      *regexp.Regexp
	bcRE       *regexp.Regexp
	adRE       *regexp.Regexp
}

func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, 0, len(sorted))
	for _, w := range sorted {
		if w == "" {
			continue
		}
		quoted = append(quoted, strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`))
	}
	if len(quoted) == 0 {
		return `\x{0}`
	}
	return strings.Join(quoted, "|")
}

// NewDateNormalizer compiles the profile's vocabulary.
func NewDateNormalizer(p *Profile) *DateNormalizer {
	months := make([]string, 0, len(p.Months))
	for m := range p.Months {
		months = append(months, m)
	}
	mon := `(` + alternation(months) + `)\.?`
	const pre, post = `(?:^|[^\p{L}\d])`, `(?:[^\p{L}\d]|$)`
	// a bare year may only have approximation words around it
	circa := `(?:(?:` + alternation(p.CircaWords) + `)\s*)*`
	dashes := `\s*(?:[-–—‒−/]|\s(?:` + alternation(p.RangeWords) + `)\s)\s*`

	return &DateNormalizer{
		profile: p,
		centuryRE: regexp.MustCompile(`(?i)(?:(` + alternation(p.FirstHalf) + `)|(` +
			alternation(p.SecondHalf) + `))?\s*(\d{1,2})\.?(?:st|nd|rd|th)?[\s-]+(?:` +
			alternation(p.CenturyWords) + `)`),
		dmyRE:      regexp.MustCompile(`(?i)` + pre + `(\d{1,2})(?:st|nd|rd|th)?\.?\s*` + mon + `,?\s+(\d{1,4})` + post),
		mdyRE:      regexp.MustCompile(`(?i)` + pre + mon + `\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{1,4})` + post),
		dottedRE:   regexp.MustCompile(`(?:^|[^\d.])(\d{1,2})\.\s*(\d{1,2})\.\s*(\d{3,4})(?:\D|$)`),
		isoRE:      regexp.MustCompile(`(?:^|\D)(\d{4})-(\d{2})-(\d{2})(?:\D|$)`),
		monthYrRE:  regexp.MustCompile(`(?i)` + pre + mon + `,?\s+(\d{1,4})` + post),
		yearSpanRE: regexp.MustCompile(`(?i)^` + circa + `(\d{1,4})` + dashes + circa + `(\d{1,4})\s*` + circa + `$`),
		yearRE:     regexp.MustCompile(`(?i)^` + circa + `(\d{1,4})\s*` + circa + `$`),
		monthRE:    regexp.MustCompile(`(?i)` + pre + mon + post),
		rangeSepRE: regexp.MustCompile(`(?i)^[\s,]*(?:[-–—‒−]|` + alternation(p.RangeWords) + `)[\s,]*$`),
		ageRE:      regexp.MustCompile(`(?i)\(\s*(?:` + alternation(p.AgeWords) + `)\s*\d+\s*\)`),
		bcRE:       regexp.MustCompile(`(?i)` + pre + `(?:` + alternation(p.BCMarkers) + `)` + post),
		adRE:       regexp.MustCompile(`(?i)` + pre + `(?:` + alternation(p.ADMarkers) + `)` + post),
	}
}

type dateInput struct {
	// markup with templates still in place
	raw string
	// what a reader sees, templates reduced to their values
	text string
	bc   bool
	role DateRole
}

// A dateRule either claims the input and returns its dates, or
// passes.  Rules run in order and the first claim wins, so later
// rules may assume earlier shapes are gone.
type dateRule struct {
	name  string
	apply func(n *DateNormalizer, in *dateInput) (Date, Date, bool)
}

var dateRules = []dateRule{
	{"century", (*DateNormalizer).centuryRule},
	{"template", (*DateNormalizer).templateRule},
	{"dual", (*DateNormalizer).dualRule},
	{"freetext", (*DateNormalizer).freeTextRule},
	{"year", (*DateNormalizer).yearRule},
}

// Normalize turns a date field into a canonical Date.  The second
// result is set when the markup also carries the paired date, e.g. a
// death date template that records the birth date as well.  Both are
// zero when the text can't be understood.
func (n *DateNormalizer) Normalize(text string, role DateRole) (Date, Date) {
	trimmed := strings.TrimSpace(text)
	if d, ok := parseCanonical(trimmed); ok {
		return d, Date{}
	}

	in := n.prepare(text, role)
	for _, r := range dateRules {
		if a, b, ok := r.apply(n, in); ok {
			return a, b
		}
	}
	return Date{}, Date{}
}

func (n *DateNormalizer) prepare(text string, role DateRole) *dateInput {
	raw := wikikb.StripComments(text)
	raw = wikikb.StripRefs(raw)
	raw = n.profile.Namespaces.UnwrapLinks(raw)
	raw = wikikb.StripTags(raw)
	raw = wikikb.StripFormatting(raw)

	free := wikikb.RewriteTemplates(raw, func(t wikikb.Template) string {
		pos := t.Positional()
		switch {
		case foldedIn(t.Name, n.profile.CircaTemplates) && len(pos) > 0:
			return " " + pos[len(pos)-1] + " "
		case len(pos) == 1 && len(t.Named()) == 0:
			return " " + pos[0] + " "
		}
		return " "
	})
	free = wikikb.CollapseSpace(n.ageRE.ReplaceAllString(free, " "))

	in := &dateInput{raw: raw, role: role}
	if n.bcRE.MatchString(free) {
		in.bc = true
		free = n.bcRE.ReplaceAllString(free, " ")
	}
	in.text = wikikb.CollapseSpace(n.adRE.ReplaceAllString(free, " "))
	return in
}

func parseCanonical(s string) (Date, bool) {
	m := canonicalDateRE.FindStringSubmatch(s)
	if m == nil {
		return Date{}, false
	}
	point := func(y, mo, d string) Point {
		p := Point{}
		if v, err := strconv.Atoi(y); err == nil {
			p.Year, p.HasYear = v, true
		}
		p.Month, _ = strconv.Atoi(mo)
		p.Day, _ = strconv.Atoi(d)
		return p
	}
	d := Date{From: point(m[1], m[2], m[3])}
	if m[4] != "" {
		d.To = point(m[4], m[5], m[6])
		d.Range = true
	}
	// all question marks says nothing, and renders as nothing
	if d.From.IsZero() || d.Range && d.To.IsZero() {
		return Date{}, false
	}
	return d, true
}

// bcYear converts a year written with a BC marker.  There is no
// year zero in that notation.
func bcYear(y int) int {
	return -(y - 1)
}

func (n *DateNormalizer) year(in *dateInput, y int) int {
	if in.bc {
		return bcYear(y)
	}
	return y
}

func validPoint(y, m, d int) Point {
	p := Point{Year: y, HasYear: true}
	if m >= 1 && m <= 12 {
		p.Month = m
		if d >= 1 && d <= 31 {
			p.Day = d
		}
	}
	return p
}

func (n *DateNormalizer) centuryRule(in *dateInput) (Date, Date, bool) {
	m := n.centuryRE.FindStringSubmatch(in.text)
	if m == nil {
		return Date{}, Date{}, false
	}
	c, err := strconv.Atoi(m[3])
	if err != nil || c < 1 {
		return Date{}, Date{}, false
	}
	// the century's years as written, counting up
	first, last := (c-1)*100+1, c*100
	if in.bc {
		// written years run down from c*100 BC
		first, last = c*100, (c-1)*100+1
	}
	switch {
	case m[1] != "":
		if in.bc {
			last = first - 49
		} else {
			last = first + 49
		}
	case m[2] != "":
		if in.bc {
			first = first - 50
		} else {
			first = first + 50
		}
	}
	if in.bc {
		first, last = bcYear(first), bcYear(last)
	}
	return span(yearOnly(first), yearOnly(last)), Date{}, true
}

// findTemplate looks for the first template with one of names,
// nested ones included.
func findTemplate(raw string, names []string) (wikikb.Template, bool) {
	for i := strings.Index(raw, "{{"); i >= 0; {
		t := wikikb.ParseTemplate(raw[i:wikikb.MatchBraces(raw, i)])
		if foldedIn(t.Name, names) {
			return t, true
		}
		next := strings.Index(raw[i+2:], "{{")
		if next < 0 {
			break
		}
		i += 2 + next
	}
	return wikikb.Template{}, false
}

func (n *DateNormalizer) slot(v string, month bool) int {
	v = strings.TrimSpace(v)
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	if month {
		return n.profile.Months[strings.ToLower(strings.TrimSuffix(v, "."))]
	}
	return 0
}

// triple reads y|m|d slots starting at off.  Missing slots stay
// unknown.
func (n *DateNormalizer) triple(pos []string, off int, yearsOnly bool) (Point, bool) {
	if off >= len(pos) {
		return Point{}, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(pos[off]))
	if err != nil {
		return Point{}, false
	}
	if yearsOnly {
		return yearOnly(y), true
	}
	var m, d int
	if off+1 < len(pos) {
		m = n.slot(pos[off+1], true)
	}
	if off+2 < len(pos) {
		d = n.slot(pos[off+2], false)
	}
	return validPoint(y, m, d), true
}

func (n *DateNormalizer) templateRule(in *dateInput) (Date, Date, bool) {
	t, ok := findTemplate(in.raw, n.profile.DateTemplates)
	if !ok {
		return Date{}, Date{}, false
	}
	pos := t.Positional()
	named := t.Named()
	if len(pos) == 0 && named["year"] != "" {
		pos = []string{named["year"], named["month"], named["day"]}
	}
	yearsOnly := strings.Contains(t.Name, "year")
	step := 3
	if yearsOnly {
		step = 1
	}
	first, ok := n.triple(pos, 0, yearsOnly)
	if !ok {
		return Date{}, Date{}, false
	}
	a, b := single(first), Date{}
	if second, ok := n.triple(pos, step, yearsOnly); ok {
		b = single(second)
	}
	// death templates carry the birth date second
	if in.role == RoleBirth && strings.HasPrefix(t.Name, "death") && !b.IsZero() {
		a, b = b, a
	}
	return a, b, true
}

func (n *DateNormalizer) dualRule(in *dateInput) (Date, Date, bool) {
	t, ok := findTemplate(in.raw, n.profile.DualDateTemplates)
	if !ok {
		return Date{}, Date{}, false
	}
	pos := t.Positional()
	if len(pos) >= 6 {
		a, okA := n.triple(pos, 0, false)
		b, okB := n.triple(pos, 3, false)
		if okA && okB {
			if a.before(b) {
				a = b
			}
			return single(a), Date{}, true
		}
	}
	if len(pos) >= 2 {
		sub := &dateInput{text: pos[0] + " " + pos[1], bc: in.bc, role: in.role}
		if a, _, ok := n.freeTextRule(sub); ok {
			return a, Date{}, true
		}
		if a, _, ok := n.yearRule(sub); ok {
			return a, Date{}, true
		}
	}
	return Date{}, Date{}, false
}

// freeTextMatch finds the first written out date in s and where it
// starts and ends.
func (n *DateNormalizer) freeTextMatch(in *dateInput, s string) (Point, int, int, bool) {
	type shape struct {
		re      *regexp.Regexp
		y, m, d int
	}
	shapes := []shape{
		{n.dmyRE, 3, 2, 1},
		{n.mdyRE, 3, 1, 2},
		{n.dottedRE, 3, 2, 1},
		{n.isoRE, 1, 2, 3},
		{n.monthYrRE, 2, 1, 0},
	}
	for _, sh := range shapes {
		m := sh.re.FindStringSubmatchIndex(s)
		if m == nil {
			continue
		}
		group := func(i int) string { return s[m[2*i]:m[2*i+1]] }
		y, _ := strconv.Atoi(group(sh.y))
		mo := n.slot(group(sh.m), true)
		d := 0
		if sh.d > 0 {
			d, _ = strconv.Atoi(group(sh.d))
		}
		if mo == 0 {
			continue
		}
		// "June 12" is a day, not the year 12
		if sh.d == 0 && !in.bc && len(group(sh.y)) < 3 {
			continue
		}
		return validPoint(n.year(in, y), mo, d), m[2], m[2*sh.y+1], true
	}
	return Point{}, 0, 0, false
}

func (n *DateNormalizer) freeTextRule(in *dateInput) (Date, Date, bool) {
	p, _, end, ok := n.freeTextMatch(in, in.text)
	if !ok {
		return Date{}, Date{}, false
	}
	rest := in.text[end:]
	if q, start, _, ok := n.freeTextMatch(in, rest); ok && n.rangeSepRE.MatchString(rest[:start]) {
		return span(p, q), Date{}, true
	}
	return single(p), Date{}, true
}

// yearRule claims a bare year or year range and nothing else.
func (n *DateNormalizer) yearRule(in *dateInput) (Date, Date, bool) {
	if n.monthRE.MatchString(in.text) {
		return Date{}, Date{}, false
	}
	if m := n.yearSpanRE.FindStringSubmatch(in.text); m != nil {
		a, _ := strconv.Atoi(m[1])
		second := m[2]
		if !in.bc && len(second) < len(m[1]) {
			second = m[1][:len(m[1])-len(second)] + second
		}
		b, _ := strconv.Atoi(second)
		return span(yearOnly(n.year(in, a)), yearOnly(n.year(in, b))), Date{}, true
	}
	if m := n.yearRE.FindStringSubmatch(in.text); m != nil {
		y, _ := strconv.Atoi(m[1])
		return single(yearOnly(n.year(in, y))), Date{}, true
	}
	return Date{}, Date{}, false
}
