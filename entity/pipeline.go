package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/canon"
	"github.com/dustin/go-wikikb/classify"
)

var boldRE = regexp.MustCompile(`'''(.+?)'''`)

// A Pipeline extracts records from pages.  It only reads its fields,
// so one Pipeline can serve any number of goroutines.
type Pipeline struct {
	Patterns  *classify.Patterns
	Profile   *canon.Profile
	Redirects wikikb.Redirects
	Log       *zap.SugaredLogger

	dates  *canon.DateNormalizer
	places *canon.PlaceNormalizer
	names  *canon.AliasExtractor
	units  *canon.UnitParser
}

// NewPipeline builds a Pipeline.  A nil profile means English and a
// nil logger discards everything.
func NewPipeline(patterns *classify.Patterns, profile *canon.Profile,
	redirects wikikb.Redirects, log *zap.SugaredLogger) *Pipeline {

	if profile == nil {
		profile = canon.English()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{
		Patterns:  patterns,
		Profile:   profile,
		Redirects: redirects,
		Log:       log,

		dates:  canon.NewDateNormalizer(profile),
		places: canon.NewPlaceNormalizer(profile),
		names:  canon.NewAliasExtractor(profile),
		units:  canon.NewUnitParser(profile),
	}
}

// Extract classifies the page and fills the record of the winning
// kind.  A page no kind claims gives a nil Entity and no error.
func (p *Pipeline) Extract(page *wikikb.Page) (Entity, error) {
	sp := p.Profile.Namespaces.ParseStructure(page.Text())
	score := p.Patterns.Classify(page.Title, sp)
	kind, ok := score.Winner()
	if !ok {
		return nil, nil
	}
	if score.Tied() {
		p.Log.Debugf("Ambiguous classification of %q (%v), taking %v",
			page.Title, score, kind)
	}

	x := &extraction{p: p, page: page, sp: sp, kind: kind}
	h := x.header()
	switch kind.Family() {
	case "person":
		return x.person(h), nil
	case "country":
		return x.country(h), nil
	case "settlement":
		return x.settlement(h), nil
	case "watercourse":
		return x.watercourse(h), nil
	case "waterarea":
		return x.waterarea(h), nil
	case "geo":
		return x.geo(h), nil
	case "organisation":
		return x.organisation(h), nil
	case "event":
		return x.event(h), nil
	}
	return nil, fmt.Errorf("no extractor for kind %v", kind)
}

// extraction is the state of one page going through the pipeline.
type extraction struct {
	p    *Pipeline
	page *wikikb.Page
	sp   *wikikb.StructuredPage
	kind classify.Kind
}

// Name drops the disambiguating parenthetical from a title.
func Name(title string) string {
	title = strings.TrimSpace(title)
	if strings.HasSuffix(title, ")") {
		if i := strings.LastIndex(title, " ("); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return title
}

func (x *extraction) header() Header {
	prof := x.p.Profile
	link := wikikb.Link(prof.LinkBase, x.page.Title)
	h := Header{
		Kind:          x.kind,
		Name:          Name(x.page.Title),
		OriginalTitle: x.page.Title,
		Link:          link,
		Description:   FirstSentence(prof.Namespaces.Clean(x.sp.LeadParagraph)),
		Images:        x.images(),
	}
	h.Redirects = append(h.Redirects, x.p.Redirects[link]...)
	h.Aliases = x.aliases(h.Name)
	return h
}

// nameFields are the infobox fields holding names, whether they are
// in the wiki's own language and what kind of name they are.  Native
// names are in the language of the place, not the wiki's.
var nameFields = []struct {
	field   string
	primary bool
	typ     string
}{
	{"name", true, ""},
	{"native name", false, "native"},
	{"birth name", false, "birth"},
	{"other names", false, ""},
	{"nickname", false, "nickname"},
	{"pseudonym", false, "pseudonym"},
}

func (x *extraction) aliases(name string) []canon.Alias {
	set := canon.NewAliasSet()
	set.Add(canon.Alias{Text: name}, false)
	lang := x.p.Profile.Language
	for _, nf := range nameFields {
		for i, v := range x.fields(nf.field) {
			// only the first key holds the name in the wiki's language
			primary := nf.primary && i == 0
			for _, a := range x.p.names.Extract(v, primary, nf.typ) {
				set.Add(a, primary && a.Lang == lang)
			}
		}
	}
	for _, m := range boldRE.FindAllStringSubmatch(x.sp.LeadParagraph, -1) {
		for _, a := range x.p.names.Extract(m[1], false, "bold") {
			set.Add(a, false)
		}
	}
	return set.Finalize(name, x.p.Profile)
}

func (x *extraction) images() []string {
	ns := x.p.Profile.Namespaces
	seen := map[string]bool{}
	var rv []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			rv = append(rv, name)
		}
	}
	for _, k := range x.p.Profile.Keys("image") {
		add(ns.ImageName(x.sp.Fields[wikikb.FoldKey(k)]))
	}
	for _, img := range x.sp.Images {
		add(img)
	}
	return rv
}

// FirstSentence cuts text after its first full stop, skipping the
// stops of initials and short abbreviations.
func FirstSentence(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] != '.' || i+1 < len(text) && text[i+1] != ' ' {
			continue
		}
		word := text[strings.LastIndexAny(text[:i], " (")+1 : i]
		if len([]rune(word)) <= 2 && !isNumeric(word) {
			continue
		}
		if rest := strings.TrimLeft(text[i+1:], " "); rest != "" {
			r := []rune(rest)[0]
			if unicode.IsLower(r) {
				continue
			}
		}
		return strings.TrimSpace(text[:i+1])
	}
	return strings.TrimSpace(text)
}

func isNumeric(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

func (x *extraction) field(name string) string {
	return x.sp.Field(x.p.Profile.Keys(name)...)
}

// fields is every distinct value of a logical field, in key order.
func (x *extraction) fields(name string) []string {
	var rv []string
	seen := map[string]bool{}
	for _, k := range x.p.Profile.Keys(name) {
		v := strings.TrimSpace(x.sp.Fields[wikikb.FoldKey(k)])
		if v != "" && !seen[v] {
			seen[v] = true
			rv = append(rv, v)
		}
	}
	return rv
}

// fieldKey is field, also telling which key held the value.
func (x *extraction) fieldKey(name string) (string, string) {
	for _, k := range x.p.Profile.Keys(name) {
		if v := strings.TrimSpace(x.sp.Fields[wikikb.FoldKey(k)]); v != "" {
			return wikikb.FoldKey(k), v
		}
	}
	return "", ""
}

// date takes the first of the field's keys holding a usable date.
func (x *extraction) date(name string, role canon.DateRole) (canon.Date, canon.Date) {
	for _, v := range x.fields(name) {
		if a, b := x.p.dates.Normalize(v, role); !a.IsZero() {
			return a, b
		}
	}
	return canon.Date{}, canon.Date{}
}

func (x *extraction) place(name string) string {
	return x.p.places.Normalize(x.field(name))
}

func (x *extraction) list(name string) []string {
	v := x.place(name)
	if v == "" {
		return nil
	}
	return strings.Split(v, ", ")
}

func (x *extraction) text(name string) string {
	return x.p.Profile.Namespaces.Clean(x.field(name))
}

// impliedUnit reads a unit off a key like "elevation ft" or
// "area total sq mi".
func impliedUnit(key string, q canon.Quantity) string {
	words := strings.Fields(key)
	for n := 2; n > 0; n-- {
		if len(words) > n {
			if u := strings.Join(words[len(words)-n:], " "); canon.KnownUnit(u, q) {
				return u
			}
		}
	}
	return q.Unit()
}

func (x *extraction) measure(name string, q canon.Quantity) string {
	key, v := x.fieldKey(name)
	if v == "" {
		return ""
	}
	rv, ok := x.p.units.ParseIn(v, q, impliedUnit(key, q))
	if !ok {
		x.p.Log.Debugf("Can't read %v of %q from %q", q, x.page.Title, v)
	}
	return rv
}

func (x *extraction) number(name string) string {
	v := x.field(name)
	if v == "" {
		return ""
	}
	rv, _ := x.p.units.Number(v)
	return rv
}

// coord looks in the infobox first, then at the page's coordinate
// template.  Declared and plain absence are both just unknown.
func (x *extraction) coord() *wikikb.Coord {
	ns := x.p.Profile.Namespaces
	c, err := ns.CoordFromFields(x.sp.Fields)
	if errors.Is(err, wikikb.NoCoordFound) && x.sp.CoordMarkup != "" {
		c, err = ns.ParseCoords(x.sp.CoordMarkup)
	}
	switch {
	case err == nil:
		return &c
	case errors.Is(err, wikikb.NoCoordFound), errors.Is(err, wikikb.ErrCoordMissing):
	default:
		x.p.Log.Debugf("Error parsing coordinates of %q: %v", x.page.Title, err)
	}
	return nil
}
