package main

import (
	"bytes"
	"testing"

	"go.uber.org/zap"

	"github.com/dustin/go-wikikb"
)

func TestCollect(t *testing.T) {
	p, c, err := wikikb.OpenDump(1, "../../testdata/sample.xml")
	if err != nil {
		t.Fatalf("Error opening dump: %v", err)
	}
	defer c.Close()

	buf := &bytes.Buffer{}
	pages, found, err := collect(p, buf, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Error collecting: %v", err)
	}
	if pages != 5 || found != 1 {
		t.Errorf("Expected 1 redirect in 5 pages, got %v in %v", found, pages)
	}

	r, err := wikikb.LoadRedirects(buf)
	if err != nil {
		t.Fatalf("Error loading what was written: %v", err)
	}
	link := "https://en.wikipedia.org/wiki/Karel_Čapek"
	if got := r[link]; len(got) != 1 || got[0] != "Capek" {
		t.Errorf("Expected Capek redirecting to %v, got %v", link, r)
	}
}
