// Build the redirect table of a wikipedia dump.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/logging"
)

const reportfreq = int64(100000)

// collect writes a link<TAB>title line for every redirect page.
func collect(p wikikb.Parser, w io.Writer, log *zap.SugaredLogger) (int64, int64, error) {
	base := p.SiteInfo().LinkBase()
	bw := bufio.NewWriter(w)

	pages, found := int64(0), int64(0)
	start := time.Now()
	prev := start
	var err error
	for err == nil {
		var page *wikikb.Page
		page, err = p.Next()
		if err != nil {
			break
		}
		if page.IsRedirect() && page.Namespace == 0 {
			if err = wikikb.WriteRedirect(bw, base, page); err != nil {
				break
			}
			found++
		}

		pages++
		if pages%reportfreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Infof("Processed %s pages total (%.2f/s)",
				humanize.Comma(pages), float64(reportfreq)/d.Seconds())
			prev = now
		}
	}
	if err == io.EOF {
		err = nil
	}
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	log.Infof("Ended after %v: %s redirects in %s pages",
		time.Since(start), humanize.Comma(found), humanize.Comma(pages))
	return pages, found, err
}

func main() {
	out := flag.String("o", "redirects.tsv", "Output file")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "Multistream decoding workers")
	level := flag.String("log", "info", "Log level")
	flag.Parse()

	log, err := logging.New(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	p, closer, err := wikikb.OpenDump(*workers, flag.Args()...)
	if err != nil {
		log.Fatalf("Error opening dump: %v", err)
	}
	defer closer.Close()

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Error creating %v: %v", *out, err)
	}
	if _, _, err := collect(p, f, log); err != nil {
		log.Fatalf("Error collecting redirects: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Error closing %v: %v", *out, err)
	}
}
