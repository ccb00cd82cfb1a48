package wikikb

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var refSelfRE, refPairRE, refOpenRE, tagRE, brRE, emphRE, extLinkRE, spaceRE *regexp.Regexp

func init() {
	refSelfRE = regexp.MustCompile(`(?is)<ref\b[^>]*?/\s*>`)
	refPairRE = regexp.MustCompile(`(?is)<ref\b[^>]*>.*?</ref\s*>`)
	refOpenRE = regexp.MustCompile(`(?i)<ref\b[^>]*>`)
	tagRE = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)
	brRE = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	emphRE = regexp.MustCompile(`'{2,5}`)
	extLinkRE = regexp.MustCompile(`\[(?:https?:)?//[^\s\]]+(?:\s+([^\]]*))?\]`)
	spaceRE = regexp.MustCompile(`[ \t\x{00a0}]+`)
}

// Namespaces are the per language names markup refers to things by.
// All names are matched case insensitively.
type Namespaces struct {
	Infobox      []string `yaml:"infobox"`
	Category     []string `yaml:"category"`
	File         []string `yaml:"file"`
	Coord        []string `yaml:"coord"`
	CoordMissing []string `yaml:"coord_missing"`
}

// DefaultNamespaces are the English wikipedia names.
var DefaultNamespaces = Namespaces{
	Infobox:      []string{"infobox"},
	Category:     []string{"category"},
	File:         []string{"file", "image"},
	Coord:        []string{"coord"},
	CoordMissing: []string{"coord missing"},
}

// FoldKey case folds and trims an infobox key or template name.
func FoldKey(s string) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
	return cases.Fold().String(s)
}

func hasPrefixFold(s string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return s[len(p):], true
		}
	}
	return s, false
}

// StripComments removes html comments.  An unterminated comment
// swallows the rest of the text.
func StripComments(s string) string {
	for {
		i := strings.Index(s, "<!--")
		if i < 0 {
			return s
		}
		j := strings.Index(s[i+4:], "-->")
		if j < 0 {
			return s[:i]
		}
		s = s[:i] + s[i+4+j+3:]
	}
}

// StripRefs removes <ref> footnotes.
func StripRefs(s string) string {
	s = refSelfRE.ReplaceAllString(s, "")
	s = refPairRE.ReplaceAllString(s, "")
	if loc := refOpenRE.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return s
}

// StripTables removes {| ... |} tables, nested ones included.
func StripTables(s string) string {
	var b strings.Builder
	depth := 0
	start := 0
	for i := 0; i+1 < len(s); i++ {
		switch {
		case s[i] == '{' && s[i+1] == '|' && (i == 0 || s[i-1] != '{'):
			if depth == 0 {
				b.WriteString(s[start:i])
			}
			depth++
			i++
		case depth > 0 && s[i] == '|' && s[i+1] == '}':
			depth--
			i++
			if depth == 0 {
				start = i + 1
			}
		}
	}
	if depth == 0 {
		b.WriteString(s[start:])
	}
	return b.String()
}

// MatchBraces returns the offset just past the }} closing the
// template opened at s[i:].  Unbalanced input returns len(s).
func MatchBraces(s string, i int) int {
	depth := 0
	for j := i; j+1 < len(s); j++ {
		switch {
		case s[j] == '{' && s[j+1] == '{':
			depth++
			j++
		case s[j] == '}' && s[j+1] == '}':
			depth--
			j++
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s)
}

// matchBrackets is MatchBraces for [[links]].
func matchBrackets(s string, i int) int {
	depth := 0
	for j := i; j+1 < len(s); j++ {
		switch {
		case s[j] == '[' && s[j+1] == '[':
			depth++
			j++
		case s[j] == ']' && s[j+1] == ']':
			depth--
			j++
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s)
}

// SplitParams splits template contents on the pipes that are not
// inside a nested template or link.
func SplitParams(inner string) []string {
	var rv []string
	braces, brackets := 0, 0
	start := 0
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		var next byte
		if i+1 < len(inner) {
			next = inner[i+1]
		}
		switch {
		case c == '{' && next == '{':
			braces++
			i++
		case c == '}' && next == '}':
			if braces > 0 {
				braces--
			}
			i++
		case c == '[' && next == '[':
			brackets++
			i++
		case c == ']' && next == ']':
			if brackets > 0 {
				brackets--
			}
			i++
		case c == '|' && braces == 0 && brackets == 0:
			rv = append(rv, inner[start:i])
			start = i + 1
		}
	}
	return append(rv, inner[start:])
}

// A Template is one {{name|param|key=value}} invocation.
type Template struct {
	Name   string
	Params []string
	Start  int
	End    int
}

// ParseTemplate parses the raw text of a single template, braces
// included.
func ParseTemplate(raw string) Template {
	inner := strings.TrimPrefix(raw, "{{")
	inner = strings.TrimSuffix(inner, "}}")
	parts := SplitParams(inner)
	return Template{
		Name:   FoldKey(parts[0]),
		Params: parts[1:],
		End:    len(raw),
	}
}

// Positional returns the trimmed parameters without a name.
func (t Template) Positional() []string {
	var rv []string
	for _, p := range t.Params {
		if _, _, named := splitNamed(p); named {
			continue
		}
		rv = append(rv, strings.TrimSpace(p))
	}
	return rv
}

// Named returns the key=value parameters, keys folded.  The first
// occurrence of a key wins.
func (t Template) Named() map[string]string {
	rv := map[string]string{}
	for _, p := range t.Params {
		k, v, named := splitNamed(p)
		if !named {
			continue
		}
		if _, seen := rv[k]; !seen {
			rv[k] = v
		}
	}
	return rv
}

// splitNamed splits "key = value" when the = is not nested.
func splitNamed(p string) (string, string, bool) {
	braces, brackets := 0, 0
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			brackets++
		case ']':
			brackets--
		case '<':
			// html attributes carry = signs
			return "", "", false
		case '=':
			if braces == 0 && brackets == 0 {
				k := FoldKey(p[:i])
				if k == "" {
					return "", "", false
				}
				return k, strings.TrimSpace(p[i+1:]), true
			}
		}
	}
	return "", "", false
}

// FindTemplates returns the top level templates in s.
func FindTemplates(s string) []Template {
	var rv []Template
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '{' || s[i+1] != '{' {
			continue
		}
		end := MatchBraces(s, i)
		t := ParseTemplate(s[i:end])
		t.Start, t.End = i, end
		rv = append(rv, t)
		i = end - 1
	}
	return rv
}

// Innermost finds a template with no template inside it.
func Innermost(s string) (start, end int, ok bool) {
	open := -1
	for i := 0; i+1 < len(s); i++ {
		switch {
		case s[i] == '{' && s[i+1] == '{':
			open = i
			i++
		case s[i] == '}' && s[i+1] == '}' && open >= 0:
			return open, i + 2, true
		}
	}
	return 0, 0, false
}

// RewriteTemplates replaces templates layer by layer, innermost
// first, with whatever fn makes of them.  Unbalanced leftovers are
// dropped.
func RewriteTemplates(s string, fn func(Template) string) string {
	for {
		start, end, ok := Innermost(s)
		if !ok {
			break
		}
		repl := fn(ParseTemplate(s[start:end]))
		repl = strings.ReplaceAll(strings.ReplaceAll(repl, "{{", ""), "}}", "")
		s = s[:start] + repl + s[end:]
	}
	if i := strings.Index(s, "{{"); i >= 0 {
		s = s[:i]
	}
	return strings.ReplaceAll(s, "}}", "")
}

// StripTemplates removes every template.
func StripTemplates(s string) string {
	return RewriteTemplates(s, func(Template) string { return "" })
}

// UnwrapLinks replaces links by the text they show.  Links into
// the file and category namespaces disappear.
func (ns Namespaces) UnwrapLinks(s string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, "[[")
		if i < 0 {
			break
		}
		b.WriteString(s[:i])
		end := matchBrackets(s, i)
		inner := strings.TrimSuffix(s[i+2:end], "]]")
		b.WriteString(ns.linkText(inner))
		s = s[end:]
	}
	b.WriteString(s)
	return extLinkRE.ReplaceAllString(b.String(), "$1")
}

func (ns Namespaces) linkText(inner string) string {
	target := strings.TrimSpace(inner)
	if p := strings.Index(target, "|"); p >= 0 {
		target = target[:p]
	}
	if _, hidden := hasPrefixFold(strings.TrimLeft(target, " "), colonize(ns.File)); hidden {
		return ""
	}
	if _, hidden := hasPrefixFold(target, colonize(ns.Category)); hidden {
		return ""
	}
	parts := SplitParams(inner)
	label := strings.TrimSpace(parts[len(parts)-1])
	if len(parts) > 1 && label == "" {
		// the pipe trick hides the parenthetical
		label = strings.TrimSpace(target)
		if p := strings.Index(label, " ("); p > 0 {
			label = label[:p]
		}
	}
	label = strings.TrimPrefix(label, ":")
	if strings.Contains(label, "[[") {
		label = ns.UnwrapLinks(label)
	}
	return label
}

func colonize(names []string) []string {
	rv := make([]string, 0, len(names))
	for _, n := range names {
		rv = append(rv, n+":")
	}
	return rv
}

// UnwrapLinks replaces links using the English namespaces.
func UnwrapLinks(s string) string {
	return DefaultNamespaces.UnwrapLinks(s)
}

// StripFormatting removes bold and italic quote runs.
func StripFormatting(s string) string {
	return emphRE.ReplaceAllString(s, "")
}

// StripTags removes html tags, keeping their contents, and decodes
// entities.  Line breaks become spaces.
func StripTags(s string) string {
	s = brRE.ReplaceAllString(s, " ")
	s = tagRE.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.ReplaceAll(s, "\u00a0", " ")
}

// CollapseSpace squeezes runs of blanks and trims the ends.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}

// Clean reduces markup to the plain text a reader would see.
func (ns Namespaces) Clean(s string) string {
	s = StripComments(s)
	s = StripRefs(s)
	s = StripTables(s)
	s = StripTemplates(s)
	s = ns.UnwrapLinks(s)
	s = StripFormatting(s)
	s = StripTags(s)
	return CollapseSpace(s)
}

// Clean reduces markup to plain text using the English namespaces.
func Clean(s string) string {
	return DefaultNamespaces.Clean(s)
}
