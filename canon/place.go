package canon

import (
	"regexp"
	"strings"

	"github.com/dustin/go-wikikb"
)

var emptyParenRE = regexp.MustCompile(`\(\s*[,;]?\s*\)`)

// A PlaceNormalizer reduces a place field to one readable string.
type PlaceNormalizer struct {
	profile *Profile
	ageRE   *regexp.Regexp
	alias   *AliasExtractor
}

// NewPlaceNormalizer compiles the profile's vocabulary.
func NewPlaceNormalizer(p *Profile) *PlaceNormalizer {
	return &PlaceNormalizer{
		profile: p,
		ageRE:   regexp.MustCompile(`(?i)\(\s*(?:` + alternation(p.AgeWords) + `)\s*\d+[^)]*\)`),
		alias:   NewAliasExtractor(p),
	}
}

// Normalize turns e.g. "[[Prague]],<br>{{flagicon|CZE}} [[Czechoslovakia]]"
// into "Prague, Czechoslovakia".  Flags and age notes go away and
// list items are joined with commas.
func (n *PlaceNormalizer) Normalize(raw string) string {
	s := wikikb.StripRefs(wikikb.StripComments(raw))
	s = listItems(s, n.profile.ListTemplates, ";")
	s = aliasBrRE.ReplaceAllString(s, ";")
	s = wikikb.RewriteTemplates(s, n.alias.readable)
	s = n.profile.Namespaces.UnwrapLinks(s)
	s = wikikb.StripTags(wikikb.StripFormatting(s))
	s = n.ageRE.ReplaceAllString(s, "")
	s = emptyParenRE.ReplaceAllString(s, "")

	var items []string
	for _, item := range splitDepth0(s, ";\n") {
		item = wikikb.CollapseSpace(bulletRE.ReplaceAllString(item, ""))
		item = strings.Trim(item, " ,;")
		if item != "" {
			items = append(items, item)
		}
	}
	return wikikb.CollapseSpace(strings.Join(items, ", "))
}
