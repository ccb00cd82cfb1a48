package canon

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/dustin/go-wikikb"
)

// LangUnknown tags an alias whose language couldn't be determined.
const LangUnknown = "???"

// An Alias is an alternative name of an entity.
type Alias struct {
	Text string
	Lang string
	// "", "nickname", "pseudonym", "quoted", "birth", "native" or
	// "bold".
	Type string
	// Set when the same name came in again with different
	// attributes.  The first ones are kept.
	Conflicted bool
}

var folder = cases.Fold()

func aliasKey(text string) string {
	return folder.String(norm.NFC.String(wikikb.CollapseSpace(text)))
}

// An AliasSet collects aliases in insertion order.  Names that fold
// to the same text are the same alias.  At most one of them is the
// name in the wiki's own language.
type AliasSet struct {
	order   []string
	byKey   map[string]*Alias
	primary string
}

// NewAliasSet returns an empty set.
func NewAliasSet() *AliasSet {
	return &AliasSet{byKey: map[string]*Alias{}}
}

func fill(have *string, want string) bool {
	switch {
	case want == "" || *have == want:
		return true
	case *have == "":
		*have = want
		return true
	}
	return false
}

// Add inserts a, or fills in what the existing alias of the same
// name lacks.  primary marks it as named in the wiki's own language;
// only the first alias so marked keeps that.
func (s *AliasSet) Add(a Alias, primary bool) {
	a.Text = wikikb.CollapseSpace(norm.NFC.String(a.Text))
	k := aliasKey(a.Text)
	if k == "" {
		return
	}
	if primary && s.primary == "" {
		s.primary = k
	}
	have, ok := s.byKey[k]
	if !ok {
		s.byKey[k] = &a
		s.order = append(s.order, k)
		return
	}
	langOK := fill(&have.Lang, a.Lang)
	typeOK := fill(&have.Type, a.Type)
	if !langOK || !typeOK || a.Conflicted {
		have.Conflicted = true
	}
}

// Merge adds every alias of other.
func (s *AliasSet) Merge(other *AliasSet) {
	for _, k := range other.order {
		s.Add(*other.byKey[k], k == other.primary)
	}
}

// Len is the number of distinct aliases.
func (s *AliasSet) Len() int {
	return len(s.order)
}

// All returns copies of the aliases in insertion order.
func (s *AliasSet) All() []Alias {
	rv := make([]Alias, 0, len(s.order))
	for _, k := range s.order {
		rv = append(rv, *s.byKey[k])
	}
	return rv
}

// Finalize settles languages and drops the title itself.  Without
// an alias marked primary, the first one lacking a language takes
// the profile's language, unless some alias already carries it.
// Any other alias lacking one is tagged LangUnknown.
func (s *AliasSet) Finalize(title string, p *Profile) []Alias {
	primary := s.primary
	if primary == "" && !s.hasLang(p.Language) {
		for _, k := range s.order {
			if s.byKey[k].Lang == "" {
				primary = k
				break
			}
		}
	}
	titleKey := aliasKey(title)
	var rv []Alias
	for _, k := range s.order {
		a := *s.byKey[k]
		if a.Lang == "" {
			a.Lang = LangUnknown
			if k == primary {
				a.Lang = p.Language
			}
		}
		if k == titleKey {
			continue
		}
		rv = append(rv, a)
	}
	return rv
}

func (s *AliasSet) hasLang(lang string) bool {
	for _, a := range s.byKey {
		if a.Lang == lang {
			return true
		}
	}
	return false
}

var (
	aliasBrRE    = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	parenRE      = regexp.MustCompile(`\s*\(([^()]*)\)`)
	quotedRE     = regexp.MustCompile(`["„“”«»]([^"„“”«»]+)["„“”«»]`)
	initialsRE   = regexp.MustCompile(`^(\p{Lu}\.\s*)+$`)
	bulletRE     = regexp.MustCompile(`^[*#:\s]+`)
	edgePunctRE  = regexp.MustCompile(`^[\s,.:;]+|[\s,:;]+$`)
	langPrefixRE = regexp.MustCompile(`^lang-([a-z]{2,3}(?:-[a-z]+)?)$`)
)

type aliasSeg struct {
	text string
	lang string
	typ  string
}

// An aliasStep rewrites the segments produced so far.  Steps run in
// order and each relies on the ones before it.
type aliasStep struct {
	name  string
	apply func(x *AliasExtractor, in []aliasSeg) []aliasSeg
}

var aliasSteps = []aliasStep{
	{"lists", (*AliasExtractor).expandLists},
	{"split", (*AliasExtractor).splitItems},
	{"language", (*AliasExtractor).resolveLanguage},
	{"templates", (*AliasExtractor).stripMarkup},
	{"commas", (*AliasExtractor).splitCommas},
	{"alternatives", (*AliasExtractor).expandAlternatives},
	{"variants", (*AliasExtractor).expandVariants},
	{"quoted", (*AliasExtractor).splitQuoted},
}

// An AliasExtractor splits a name field into aliases.
type AliasExtractor struct {
	profile *Profile
	altRE   *regexp.Regexp
}

// NewAliasExtractor compiles the profile's vocabulary.
func NewAliasExtractor(p *Profile) *AliasExtractor {
	return &AliasExtractor{
		profile: p,
		altRE: regexp.MustCompile(`(?i)^(.*?)\s*\(\s*(?:` + alternation(p.AlternativeWords) +
			`)\s+([^()]+?)\s*\)\s*(.*)$`),
	}
}

// Extract returns the aliases in raw.  In a primary field, the first
// name with no language of its own gets the profile's language,
// unless another name there already has it.  nameType tags every
// alias except quoted ones.
func (x *AliasExtractor) Extract(raw string, primary bool, nameType string) []Alias {
	segs := []aliasSeg{{text: raw, typ: nameType}}
	for _, st := range aliasSteps {
		segs = st.apply(x, segs)
	}
	var rv []Alias
	stamped := !primary
	for _, s := range segs {
		text := wikikb.CollapseSpace(edgePunctRE.ReplaceAllString(s.text, ""))
		if text == "" {
			continue
		}
		if s.lang == x.profile.Language {
			stamped = true
		}
		rv = append(rv, Alias{Text: text, Lang: s.lang, Type: s.typ})
	}
	for i := range rv {
		if stamped {
			break
		}
		if rv[i].Lang == "" {
			rv[i].Lang = x.profile.Language
			stamped = true
		}
	}
	return rv
}

// listItems replaces list templates by their items joined with sep.
func listItems(s string, names []string, sep string) string {
	for {
		var found *wikikb.Template
		for _, t := range wikikb.FindTemplates(s) {
			if foldedIn(t.Name, names) {
				found = &t
				break
			}
		}
		if found == nil {
			return s
		}
		s = s[:found.Start] + strings.Join(found.Positional(), sep) + s[found.End:]
	}
}

func (x *AliasExtractor) expandLists(in []aliasSeg) []aliasSeg {
	for i := range in {
		s := wikikb.StripRefs(wikikb.StripComments(in[i].text))
		s = listItems(s, x.profile.ListTemplates, ";")
		in[i].text = aliasBrRE.ReplaceAllString(s, ";")
	}
	return in
}

// splitDepth0 splits s at any of seps outside templates and links.
func splitDepth0(s string, seps string) []string {
	var rv []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{") || strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case (strings.HasPrefix(s[i:], "}}") || strings.HasPrefix(s[i:], "]]")) && depth > 0:
			depth--
			i++
		case depth == 0 && strings.IndexByte(seps, s[i]) >= 0:
			rv = append(rv, s[start:i])
			start = i + 1
		}
	}
	return append(rv, s[start:])
}

func (x *AliasExtractor) splitItems(in []aliasSeg) []aliasSeg {
	var rv []aliasSeg
	for _, seg := range in {
		for _, part := range splitDepth0(seg.text, ";\n") {
			part = strings.TrimSpace(bulletRE.ReplaceAllString(part, ""))
			if part != "" {
				rv = append(rv, aliasSeg{text: part, lang: seg.lang, typ: seg.typ})
			}
		}
	}
	return rv
}

func (x *AliasExtractor) resolveLanguage(in []aliasSeg) []aliasSeg {
	for i := range in {
		s := in[i].text
		for _, t := range wikikb.FindTemplates(s) {
			pos := t.Positional()
			lang, text := "", ""
			switch m := langPrefixRE.FindStringSubmatch(t.Name); {
			case t.Name == "lang" && len(pos) >= 2:
				lang, text = pos[0], pos[1]
			case m != nil && len(pos) >= 1:
				lang, text = m[1], pos[len(pos)-1]
			default:
				continue
			}
			if in[i].lang == "" {
				in[i].lang = strings.ToLower(lang)
			}
			s = strings.Replace(s, s[t.Start:t.End], text, 1)
			break
		}
		s = parenRE.ReplaceAllStringFunc(s, func(p string) string {
			inner := parenRE.FindStringSubmatch(p)[1]
			inner = strings.TrimSuffix(strings.TrimSpace(inner), ":")
			inner = strings.TrimPrefix(inner, "in ")
			if code, ok := x.profile.LanguageCode(wikikb.Clean(inner)); ok {
				if in[i].lang == "" {
					in[i].lang = code
				}
				return ""
			}
			return p
		})
		in[i].text = s
	}
	return in
}

// readable is what a template leaves behind in a name: its only
// parameter, or nothing.
func (x *AliasExtractor) readable(t wikikb.Template) string {
	if foldedIn(t.Name, x.profile.IconTemplates) {
		return ""
	}
	if pos := t.Positional(); len(pos) == 1 {
		return pos[0]
	}
	return ""
}

func (x *AliasExtractor) stripMarkup(in []aliasSeg) []aliasSeg {
	for i := range in {
		s := wikikb.RewriteTemplates(in[i].text, x.readable)
		s = x.profile.Namespaces.UnwrapLinks(s)
		s = wikikb.StripFormatting(s)
		in[i].text = wikikb.CollapseSpace(wikikb.StripTags(s))
	}
	return in
}

func (x *AliasExtractor) splitCommas(in []aliasSeg) []aliasSeg {
	var rv []aliasSeg
	for _, seg := range in {
		var parts []string
		depth, start := 0, 0
		s := seg.text
		for i := 0; i <= len(s); i++ {
			if i < len(s) {
				switch s[i] {
				case '(':
					depth++
				case ')':
					if depth > 0 {
						depth--
					}
				}
				if s[i] != ',' || depth > 0 {
					continue
				}
			}
			part := strings.TrimSpace(s[start:i])
			start = i + 1
			if len(parts) > 0 && x.profile.isTitleAbbreviation(part) {
				parts[len(parts)-1] += ", " + part
				continue
			}
			parts = append(parts, part)
		}
		for _, p := range parts {
			if p != "" {
				rv = append(rv, aliasSeg{text: p, lang: seg.lang, typ: seg.typ})
			}
		}
	}
	return rv
}

func replaceLastWord(head, word string) string {
	i := strings.LastIndexByte(head, ' ')
	if i < 0 {
		return word
	}
	return head[:i+1] + word
}

func (x *AliasExtractor) expandAlternatives(in []aliasSeg) []aliasSeg {
	var rv []aliasSeg
	for _, seg := range in {
		m := x.altRE.FindStringSubmatch(seg.text)
		if m == nil {
			seg.text = parenRE.ReplaceAllString(seg.text, "")
			rv = append(rv, seg)
			continue
		}
		head, alt, tail := strings.TrimSpace(m[1]), m[2], strings.TrimSpace(m[3])
		first, second := seg, seg
		first.text = wikikb.CollapseSpace(head + " " + tail)
		second.text = wikikb.CollapseSpace(replaceLastWord(head, alt) + " " + tail)
		rv = append(rv, first, second)
	}
	return rv
}

func (x *AliasExtractor) expandVariants(in []aliasSeg) []aliasSeg {
	var rv []aliasSeg
	for _, seg := range in {
		parts := strings.Split(seg.text, "/")
		// a slash inside a single word is part of the name
		if len(parts) < 2 || !strings.Contains(seg.text, " ") {
			rv = append(rv, seg)
			continue
		}
		base := strings.TrimSpace(parts[0])
		first := seg
		first.text = base
		rv = append(rv, first)
		for _, v := range parts[1:] {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			next := seg
			next.text = v
			if !strings.Contains(v, " ") {
				next.text = replaceLastWord(base, v)
			}
			rv = append(rv, next)
		}
	}
	return rv
}

func (x *AliasExtractor) splitQuoted(in []aliasSeg) []aliasSeg {
	var rv []aliasSeg
	for _, seg := range in {
		var quoted []aliasSeg
		seg.text = quotedRE.ReplaceAllStringFunc(seg.text, func(q string) string {
			inner := strings.TrimSpace(quotedRE.FindStringSubmatch(q)[1])
			if initialsRE.MatchString(inner) {
				return inner
			}
			quoted = append(quoted, aliasSeg{text: inner, lang: seg.lang, typ: "quoted"})
			return " "
		})
		seg.text = wikikb.CollapseSpace(seg.text)
		rv = append(rv, seg)
		rv = append(rv, quoted...)
	}
	return rv
}
