package wikikb

import (
	"strings"
)

// A StructuredPage is what the extractors get to see of a page.
type StructuredPage struct {
	// Subtype of the infobox, e.g. "settlement" for
	// {{Infobox settlement}}.  Empty without an infobox.
	InfoboxName string
	// Infobox parameters with folded keys.  The first occurrence
	// of a key wins.
	Fields map[string]string
	// Infobox keys in the order they appear.
	FieldOrder []string
	// Category link targets, in order, duplicates included.
	Categories []string
	// First paragraph of the article text.
	LeadParagraph string
	// Raw text of the first coordinate template on the page.
	CoordMarkup string
	// Inline image file names.
	Images []string
}

// Field returns the first non-empty field among keys.
func (sp *StructuredPage) Field(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(sp.Fields[FoldKey(k)]); v != "" {
			return v
		}
	}
	return ""
}

// HasInfobox is true if an infobox was found.
func (sp *StructuredPage) HasInfobox() bool {
	return sp.Fields != nil
}

// findInfobox returns the bounds of the first infobox template.
func (ns Namespaces) findInfobox(text string) (start, end int, name string) {
	for _, t := range FindTemplates(text) {
		rest, ok := hasPrefixFold(t.Name, ns.Infobox)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		rest = strings.TrimSpace(strings.TrimLeft(rest, "-–"))
		return t.Start, t.End, rest
	}
	return -1, -1, ""
}

// ParseStructure extracts the parts of a page the rest of the
// pipeline works from.  A page without an infobox still gets its
// categories, lead paragraph, coordinates and images.
func (ns Namespaces) ParseStructure(text string) *StructuredPage {
	text = StripComments(text)
	sp := &StructuredPage{
		Categories:  ns.FindCategories(text),
		CoordMarkup: ns.FindCoordTemplate(text),
		Images:      ns.FindImages(text),
	}

	start, end, name := ns.findInfobox(text)
	firstSection := text
	if i := strings.Index(text, "\n=="); i >= 0 {
		firstSection = text[:i]
	}
	if start >= 0 {
		sp.InfoboxName = name
		sp.Fields = map[string]string{}
		t := ParseTemplate(text[start:end])
		for _, p := range t.Params {
			k, v, named := splitNamed(p)
			if !named {
				continue
			}
			if _, seen := sp.Fields[k]; seen {
				continue
			}
			sp.Fields[k] = v
			sp.FieldOrder = append(sp.FieldOrder, k)
		}
		if start < len(firstSection) {
			cut := end
			if cut > len(firstSection) {
				cut = len(firstSection)
			}
			firstSection = firstSection[:start] + firstSection[cut:]
		}
	}
	sp.LeadParagraph = ns.leadParagraph(firstSection)
	return sp
}

// ParseStructure uses the English namespaces.
func ParseStructure(text string) *StructuredPage {
	return DefaultNamespaces.ParseStructure(text)
}

// leadParagraph finds the first block of lines whose first line
// starts with emphasis, i.e. the bold article name.  The block ends
// at a blank line or at a line holding only markup nobody reads.
func (ns Namespaces) leadParagraph(section string) string {
	lines := strings.Split(section, "\n")
	for i, l := range lines {
		if !strings.HasPrefix(strings.TrimSpace(l), "''") {
			continue
		}
		block := []string{strings.TrimSpace(l)}
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" || ns.markupOnly(next) {
				break
			}
			block = append(block, next)
		}
		return strings.Join(block, " ")
	}
	return ""
}

// markupOnly is true for a line of category links, file links and
// templates.
func (ns Namespaces) markupOnly(line string) bool {
	rest := StripTemplates(StripComments(line))
	return strings.TrimSpace(ns.UnwrapLinks(rest)) == ""
}
