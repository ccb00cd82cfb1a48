package wikikb

import (
	"io"
	"strings"
	"testing"
)

const dump = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.10/">
  <siteinfo>
    <sitename>Wikipedia</sitename>
    <dbname>enwiki</dbname>
    <base>https://en.wikipedia.org/wiki/Main_Page</base>
    <generator>MediaWiki 1.41</generator>
    <case>first-letter</case>
  </siteinfo>
  <page>
    <title>Prague</title>
    <ns>0</ns>
    <id>1</id>
    <revision>
      <id>10</id>
      <text xml:space="preserve">'''Prague''' is a city.</text>
    </revision>
  </page>
  <page>
    <title>Praha</title>
    <ns>0</ns>
    <id>2</id>
    <redirect title="Prague" />
    <revision>
      <id>11</id>
      <text xml:space="preserve">#REDIRECT [[Prague]]</text>
    </revision>
  </page>
</mediawiki>`

func TestParser(t *testing.T) {
	p, err := NewParser(strings.NewReader(dump))
	if err != nil {
		t.Fatalf("Error creating parser: %v", err)
	}
	if got := p.SiteInfo().LinkBase(); got != "https://en.wikipedia.org/wiki/" {
		t.Fatalf("Expected link base, got %q", got)
	}

	page, err := p.Next()
	if err != nil {
		t.Fatalf("Error reading first page: %v", err)
	}
	if page.Title != "Prague" || page.IsRedirect() || page.Text() != "'''Prague''' is a city." {
		t.Fatalf("Unexpected first page: %#v", page)
	}

	page, err = p.Next()
	if err != nil {
		t.Fatalf("Error reading second page: %v", err)
	}
	if !page.IsRedirect() || page.Redirect.Title != "Prague" {
		t.Fatalf("Expected redirect to Prague, got %#v", page)
	}

	if _, err = p.Next(); err != io.EOF {
		t.Fatalf("Expected EOF, got %v", err)
	}
}
