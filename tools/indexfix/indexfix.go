// Rewrite a multistream index with the 32 bit offset wraparound of old
// dumps undone, or summarize its streams.
package main

import (
	"bufio"
	"compress/bzip2"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/logging"
)

// fix copies index entries to w, returning how many there were.
func fix(r io.Reader, w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	ir := wikikb.NewIndexReader(r)
	n := int64(0)
	for {
		e, err := ir.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("entry %d: %w", n+1, err)
		}
		fmt.Fprintln(bw, e.String())
		n++
	}
	return n, bw.Flush()
}

// summarize writes offset<TAB>count per stream, returning how many
// streams there were.
func summarize(r io.Reader, w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	isr, err := wikikb.NewIndexSummaryReader(r)
	if err != nil {
		return 0, err
	}
	n := int64(0)
	for {
		offset, count, err := isr.Next()
		if err != nil && err != io.EOF {
			return n, err
		}
		fmt.Fprintf(bw, "%d\t%d\n", offset, count)
		n++
		if err == io.EOF {
			break
		}
	}
	return n, bw.Flush()
}

func main() {
	summary := flag.Bool("summary", false, "Print stream offsets and page counts instead")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [-summary] wikipedia.index[.bz2]\n", os.Args[0])
		os.Exit(1)
	}

	log, err := logging.New("info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	fn := flag.Arg(0)
	f, err := os.Open(fn)
	if err != nil {
		log.Fatalf("Error opening %v: %v", fn, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(fn, ".bz2") {
		r = bzip2.NewReader(f)
	}

	what, do := "entries", fix
	if *summary {
		what, do = "streams", summarize
	}
	n, err := do(r, os.Stdout)
	if err != nil {
		log.Fatalf("Error reading %v: %v", fn, err)
	}
	log.Infof("Wrote %s %s", humanize.Comma(n), what)
}
