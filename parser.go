package wikikb

import (
	"encoding/xml"
	"io"
	"strings"
)

// The toplevel site info describing basic dump properties.
type SiteInfo struct {
	SiteName   string `xml:"sitename"`
	DBName     string `xml:"dbname"`
	Base       string `xml:"base"`
	Generator  string `xml:"generator"`
	Case       string `xml:"case"`
	Namespaces []struct {
		Key   string `xml:"key,attr"`
		Case  string `xml:"case,attr"`
		Value string `xml:",chardata"`
	} `xml:"namespaces>namespace"`
}

// LinkBase is the prefix articles in this dump are published under,
// e.g. "https://en.wikipedia.org/wiki/".
func (si SiteInfo) LinkBase() string {
	if i := strings.LastIndex(si.Base, "/wiki/"); i >= 0 {
		return si.Base[:i+len("/wiki/")]
	}
	return ""
}

// A user who contributed a revision.
type Contributor struct {
	ID       uint64 `xml:"id"`
	Username string `xml:"username"`
}

// A revision to a page.
type Revision struct {
	ID          uint64      `xml:"id"`
	Timestamp   string      `xml:"timestamp"`
	Contributor Contributor `xml:"contributor"`
	Comment     string      `xml:"comment"`
	Text        string      `xml:"text"`
}

// Redirect is the target of a redirect page.
type Redirect struct {
	Title string `xml:"title,attr"`
}

// A wiki page.
type Page struct {
	Title     string     `xml:"title"`
	Namespace int        `xml:"ns"`
	ID        uint64     `xml:"id"`
	Redirect  Redirect   `xml:"redirect"`
	Revisions []Revision `xml:"revision"`
}

// IsRedirect is true for pages that only point somewhere else.
func (p *Page) IsRedirect() bool {
	return p.Redirect.Title != ""
}

// Text is the markup of the latest revision in the dump.
func (p *Page) Text() string {
	if len(p.Revisions) == 0 {
		return ""
	}
	return p.Revisions[len(p.Revisions)-1].Text
}

// That which emits wiki pages.
type Parser interface {
	// Get the next page from the parser
	Next() (*Page, error)
	// Get the toplevel site info from the stream
	SiteInfo() SiteInfo
}

type singleStreamParser struct {
	siteInfo SiteInfo
	x        *xml.Decoder
}

// NewParser gets a wikipedia dump parser reading from the given reader.
func NewParser(r io.Reader) (Parser, error) {
	d := xml.NewDecoder(r)
	_, err := d.Token()
	if err != nil {
		return nil, err
	}

	si := SiteInfo{}
	err = d.Decode(&si)
	if err != nil {
		return nil, err
	}

	return &singleStreamParser{
		siteInfo: si,
		x:        d,
	}, nil
}

func (p *singleStreamParser) Next() (rv *Page, err error) {
	rv = new(Page)
	err = p.x.Decode(rv)
	if err != nil {
		return nil, err
	}
	return
}

func (p *singleStreamParser) SiteInfo() SiteInfo {
	return p.siteInfo
}
