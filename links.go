package wikikb

import (
	"regexp"
	"strings"
)

var linkRE, nowikiRE *regexp.Regexp

func init() {
	linkRE = regexp.MustCompile(`\[\[([^\|\]]+)`)
	nowikiRE = regexp.MustCompile(`(?ms)<nowiki>.*?</nowiki>`)
}

// FindLinks finds all the links from within an article body.
func FindLinks(text string) []string {
	cleaned := nowikiRE.ReplaceAllString(StripComments(text), "")
	matches := linkRE.FindAllStringSubmatch(cleaned, -1)

	rv := make([]string, 0, len(matches))
	for _, x := range matches {
		rv = append(rv, x[1])
	}

	return rv
}

// FindCategories finds the targets of all the category links in an
// article body, in order and with duplicates.  Sort keys are
// dropped.
func (ns Namespaces) FindCategories(text string) []string {
	var rv []string
	for _, l := range FindLinks(text) {
		l = strings.TrimSpace(l)
		rest, ok := hasPrefixFold(l, colonize(ns.Category))
		if !ok {
			continue
		}
		if c := strings.TrimSpace(rest); c != "" {
			rv = append(rv, c)
		}
	}
	return rv
}

// FindCategories finds categories using the English namespace.
func FindCategories(text string) []string {
	return DefaultNamespaces.FindCategories(text)
}
