package wikikb

import (
	"io"
	"reflect"
	"testing"
)

func readTitles(t *testing.T, p Parser) []string {
	var rv []string
	for {
		page, err := p.Next()
		if err == io.EOF {
			return rv
		}
		if err != nil {
			t.Fatalf("Error reading page %d: %v", len(rv)+1, err)
		}
		rv = append(rv, page.Title)
	}
}

func TestIndexedParserOrder(t *testing.T) {
	exp := []string{"Karel Čapek", "Capek", "Talk:Brno", "Brno", "Foo"}
	for i := 0; i < 20; i++ {
		p, c, err := OpenDump(3, "testdata/multistream-index.txt.bz2",
			"testdata/multistream.xml.bz2")
		if err != nil {
			t.Fatalf("Error opening multistream dump: %v", err)
		}
		if p.SiteInfo().DBName != "enwiki" {
			t.Fatalf("Expected enwiki site info, got %+v", p.SiteInfo())
		}
		got := readTitles(t, p)
		c.Close()
		if !reflect.DeepEqual(exp, got) {
			t.Fatalf("Expected %q in dump order, got %q", exp, got)
		}
	}
}

func TestIndexedParserMissingIndex(t *testing.T) {
	p, err := NewIndexedParser("testdata/nothere.bz2", "testdata/multistream.xml.bz2", 2)
	if err != nil {
		t.Fatalf("Expected the failure to come from Next, got %v", err)
	}
	if _, err := p.Next(); err == nil || err == io.EOF {
		t.Fatalf("Expected an index error, got %v", err)
	}
}
