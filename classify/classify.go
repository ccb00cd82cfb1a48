// Package classify decides which kind of entity a page describes.
//
// Every kind carries a few lists of patterns.  A page earns a point
// per matching category, per matching infobox name pattern, per
// matching title pattern and per required infobox field it has.  The
// best scoring kind wins, ties going to the kind declared first.
package classify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dustin/go-wikikb"
)

// ErrNoPatterns is returned for a pattern file declaring no kinds.
var ErrNoPatterns = errors.New("no identification patterns")

// A Kind is an entity kind, optionally qualified, e.g. "geo:island".
type Kind string

const (
	Person          Kind = "person"
	FictionalPerson Kind = "person:fictional"
	PersonGroup     Kind = "person:group"
	Country         Kind = "country"
	FormerCountry   Kind = "country:former"
	Settlement      Kind = "settlement"
	Watercourse     Kind = "watercourse"
	Waterarea       Kind = "waterarea"
	Relief          Kind = "geo:relief"
	Waterfall       Kind = "geo:waterfall"
	Island          Kind = "geo:island"
	Peninsula       Kind = "geo:peninsula"
	Continent       Kind = "geo:continent"
	Organisation    Kind = "organisation"
	Event           Kind = "event"
)

// Kinds lists every kind an extractor exists for.
var Kinds = []Kind{
	Person, FictionalPerson, PersonGroup, Country, FormerCountry,
	Settlement, Watercourse, Waterarea,
	Relief, Waterfall, Island, Peninsula, Continent,
	Organisation, Event,
}

// Family is the kind without its qualifier: "geo" for "geo:island".
func (k Kind) Family() string {
	if i := strings.IndexByte(string(k), ':'); i >= 0 {
		return string(k[:i])
	}
	return string(k)
}

// Sub is the qualifier, if any.
func (k Kind) Sub() string {
	if i := strings.IndexByte(string(k), ':'); i >= 0 {
		return string(k[i+1:])
	}
	return ""
}

func known(k Kind) bool {
	for _, x := range Kinds {
		if x == k {
			return true
		}
	}
	return false
}

type rawPattern struct {
	Kind       string   `yaml:"kind"`
	Categories []string `yaml:"categories"`
	Infobox    []string `yaml:"infobox"`
	Title      []string `yaml:"title"`
	Fields     []string `yaml:"fields"`
}

// A Pattern is the compiled identification rules of one kind.
type Pattern struct {
	Kind       Kind
	Categories []*regexp.Regexp
	Infobox    []*regexp.Regexp
	Title      []*regexp.Regexp
	Fields     []string
}

// Patterns holds one Pattern per kind, in priority order.
type Patterns struct {
	kinds []Pattern
}

func compile(kind string, exprs []string) ([]*regexp.Regexp, error) {
	rv := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, fmt.Errorf("kind %v: %w", kind, err)
		}
		rv = append(rv, re)
	}
	return rv, nil
}

// ParsePatterns reads a YAML pattern document.
func ParsePatterns(r io.Reader) (*Patterns, error) {
	var doc struct {
		Kinds []rawPattern `yaml:"kinds"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing patterns: %w", err)
	}
	if len(doc.Kinds) == 0 {
		return nil, ErrNoPatterns
	}

	rv := &Patterns{}
	seen := map[Kind]bool{}
	for _, raw := range doc.Kinds {
		k := Kind(raw.Kind)
		if !known(k) {
			return nil, fmt.Errorf("unknown kind %q", raw.Kind)
		}
		if seen[k] {
			return nil, fmt.Errorf("kind %q declared twice", raw.Kind)
		}
		seen[k] = true

		p := Pattern{Kind: k}
		var err error
		if p.Categories, err = compile(raw.Kind, raw.Categories); err != nil {
			return nil, err
		}
		if p.Infobox, err = compile(raw.Kind, raw.Infobox); err != nil {
			return nil, err
		}
		if p.Title, err = compile(raw.Kind, raw.Title); err != nil {
			return nil, err
		}
		for _, f := range raw.Fields {
			p.Fields = append(p.Fields, wikikb.FoldKey(f))
		}
		rv.kinds = append(rv.kinds, p)
	}
	return rv, nil
}

// LoadPatterns reads the pattern file at fn.  There's no running
// without one, so a missing file is an error wrapping
// wikikb.ErrResourceMissing.
func LoadPatterns(fn string) (*Patterns, error) {
	f, err := os.Open(fn)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", wikikb.ErrResourceMissing, fn)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ParsePatterns(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", fn, err)
	}
	return p, nil
}

// Priority lists the kinds in the order ties are broken in, which is
// the order the pattern file declares them.
func (p *Patterns) Priority() []Kind {
	rv := make([]Kind, 0, len(p.kinds))
	for _, k := range p.kinds {
		rv = append(rv, k.Kind)
	}
	return rv
}

// Pattern returns the rules of kind k.
func (p *Patterns) Pattern(k Kind) (Pattern, bool) {
	for _, x := range p.kinds {
		if x.Kind == k {
			return x, true
		}
	}
	return Pattern{}, false
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func matching(res []*regexp.Regexp, s string) int {
	n := 0
	for _, re := range res {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// Score returns the points of one kind for a page.
func (pat Pattern) Score(title string, sp *wikikb.StructuredPage) int {
	points := 0
	for _, c := range sp.Categories {
		if matchAny(pat.Categories, c) {
			points++
		}
	}
	if sp.InfoboxName != "" {
		points += matching(pat.Infobox, sp.InfoboxName)
	}
	points += matching(pat.Title, title)
	for _, f := range pat.Fields {
		if sp.Field(f) != "" {
			points++
		}
	}
	return points
}

// Classify scores a page against every kind.
func (p *Patterns) Classify(title string, sp *wikikb.StructuredPage) Score {
	rv := make(Score, 0, len(p.kinds))
	for _, pat := range p.kinds {
		rv = append(rv, Entry{Kind: pat.Kind, Points: pat.Score(title, sp)})
	}
	return rv
}

// An Entry is the points one kind scored.
type Entry struct {
	Kind   Kind
	Points int
}

// A Score holds every kind's points in priority order.
type Score []Entry

// Winner is the best scoring kind.  There is none when nothing
// scored.
func (s Score) Winner() (Kind, bool) {
	best := -1
	for i, e := range s {
		if e.Points > 0 && (best < 0 || e.Points > s[best].Points) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return s[best].Kind, true
}

// Tied is true when another kind scored as much as the winner.
func (s Score) Tied() bool {
	w, ok := s.Winner()
	if !ok {
		return false
	}
	top := s.Points(w)
	for _, e := range s {
		if e.Kind != w && e.Points == top {
			return true
		}
	}
	return false
}

// Points returns the points of kind k.
func (s Score) Points(k Kind) int {
	for _, e := range s {
		if e.Kind == k {
			return e.Points
		}
	}
	return 0
}

func (s Score) String() string {
	parts := make([]string, 0, len(s))
	for _, e := range s {
		if e.Points > 0 {
			parts = append(parts, fmt.Sprintf("%v=%d", e.Kind, e.Points))
		}
	}
	return strings.Join(parts, " ")
}
