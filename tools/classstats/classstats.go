// Count how the pages of a wikipedia dump classify, to tune pattern
// files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/canon"
	"github.com/dustin/go-wikikb/classify"
	"github.com/dustin/go-wikikb/logging"
)

const reportfreq = int64(10000)

type counts struct {
	mu      sync.Mutex
	kinds   map[classify.Kind]int64
	none    int64
	tied    int64
	samples map[classify.Kind][]string
}

func (c *counts) add(k classify.Kind, ok, tied bool, title string, keep int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.none++
		return
	}
	c.kinds[k]++
	if tied {
		c.tied++
	}
	if len(c.samples[k]) < keep {
		c.samples[k] = append(c.samples[k], title)
	}
}

func pageHandler(pats *classify.Patterns, ns wikikb.Namespaces, c *counts, keep int,
	ch <-chan *wikikb.Page, wg *sync.WaitGroup) {

	defer wg.Done()
	for p := range ch {
		score := pats.Classify(p.Title, ns.ParseStructure(p.Text()))
		k, ok := score.Winner()
		c.add(k, ok, score.Tied(), p.Title, keep)
	}
}

func process(p wikikb.Parser, pats *classify.Patterns, ns wikikb.Namespaces,
	numWorkers, keep int, log *zap.SugaredLogger) (*counts, error) {

	c := &counts{
		kinds:   map[classify.Kind]int64{},
		samples: map[classify.Kind][]string{},
	}
	ch := make(chan *wikikb.Page, 1000)
	wg := &sync.WaitGroup{}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go pageHandler(pats, ns, c, keep, ch, wg)
	}

	pages := int64(0)
	start := time.Now()
	prev := start
	var err error
	for err == nil {
		var page *wikikb.Page
		page, err = p.Next()
		if err != nil {
			break
		}
		if page.IsRedirect() || page.Namespace != 0 {
			continue
		}
		ch <- page

		pages++
		if pages%reportfreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Infof("Processed %s pages total (%.2f/s)",
				humanize.Comma(pages), float64(reportfreq)/d.Seconds())
			prev = now
		}
	}
	close(ch)
	wg.Wait()
	if err == io.EOF {
		err = nil
	}
	log.Infof("Ended after %v: %s articles", time.Since(start), humanize.Comma(pages))
	return c, err
}

func report(w io.Writer, c *counts) {
	kinds := make([]classify.Kind, 0, len(c.kinds))
	for k := range c.kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if c.kinds[kinds[i]] != c.kinds[kinds[j]] {
			return c.kinds[kinds[i]] > c.kinds[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	for _, k := range kinds {
		samples := append([]string(nil), c.samples[k]...)
		sort.Strings(samples)
		fmt.Fprintf(w, "%-18s %12s  %q\n", k, humanize.Comma(c.kinds[k]), samples)
	}
	fmt.Fprintf(w, "%-18s %12s\n", "(none)", humanize.Comma(c.none))
	fmt.Fprintf(w, "%-18s %12s\n", "(tied)", humanize.Comma(c.tied))
}

func main() {
	patterns := flag.String("patterns", "data/patterns_en.yaml", "Identification pattern file")
	profile := flag.String("profile", "", "Language profile (English if empty)")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "Number of classifying workers")
	keep := flag.Int("samples", 3, "Example titles to show per kind")
	level := flag.String("log", "info", "Log level")
	flag.Parse()

	log, err := logging.New(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pats, err := classify.LoadPatterns(*patterns)
	if err != nil {
		log.Fatalf("Error loading patterns: %v", err)
	}
	prof := canon.English()
	if *profile != "" {
		if prof, err = canon.LoadProfile(*profile); err != nil {
			log.Warnf("Using the English profile: %v", err)
		}
	}
	p, closer, err := wikikb.OpenDump(*workers, flag.Args()...)
	if err != nil {
		log.Fatalf("Error opening dump: %v", err)
	}
	defer closer.Close()

	c, err := process(p, pats, prof.Namespaces, *workers, *keep, log)
	if err != nil {
		log.Warnf("Stopped early: %v", err)
	}
	report(os.Stdout, c)
}
