package wikikb

import (
	"compress/bzip2"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// An indexChunk is one bzip2 stream of the dump.  seq is its
// position in the index.
type indexChunk struct {
	seq    int
	offset int64
	count  int
}

type decodedChunk struct {
	seq   int
	pages []*Page
}

type multiStreamParser struct {
	siteInfo SiteInfo

	workerch chan indexChunk
	decoded  chan decodedChunk
	entries  chan *Page

	errMu sync.Mutex
	err   error
}

func (p *multiStreamParser) fail(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

func multiStreamIndexWorker(indexfn string, p *multiStreamParser) {
	defer close(p.workerch)

	r, err := os.Open(indexfn)
	if err != nil {
		p.fail(fmt.Errorf("opening %v: %w", indexfn, err))
		return
	}
	defer r.Close()

	isr, err := NewIndexSummaryReader(bzip2.NewReader(r))
	if err != nil {
		p.fail(fmt.Errorf("creating index summary: %w", err))
		return
	}
	for seq := 0; ; seq++ {
		offset, count, err := isr.Next()
		if count > 0 {
			p.workerch <- indexChunk{seq, offset, count}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			p.fail(fmt.Errorf("reading index stream: %w", err))
			return
		}
	}
}

// decodeChunk reads the pages of one stream.  A stream cut short
// gives the pages before the damage.
func decodeChunk(r io.ReadSeeker, c indexChunk) ([]*Page, error) {
	if _, err := r.Seek(c.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to offset %v: %w", c.offset, err)
	}
	d := xml.NewDecoder(bzip2.NewReader(r))
	pages := make([]*Page, 0, c.count)
	for i := 0; i < c.count; i++ {
		newpage := new(Page)
		if err := d.Decode(newpage); err != nil {
			return pages, fmt.Errorf("decoding stream at %v: %w", c.offset, err)
		}
		pages = append(pages, newpage)
	}
	return pages, nil
}

func multiStreamWorker(datafn string, wg *sync.WaitGroup,
	p *multiStreamParser) {
	defer wg.Done()

	r, err := os.Open(datafn)
	if err != nil {
		p.fail(fmt.Errorf("opening %v: %w", datafn, err))
		for range p.workerch {
		}
		return
	}
	defer r.Close()

	for c := range p.workerch {
		pages, err := decodeChunk(r, c)
		if err != nil {
			p.fail(err)
		}
		p.decoded <- decodedChunk{c.seq, pages}
	}
}

// multiStreamOrderer hands out decoded streams in index order.  It
// holds at most the streams the workers finished ahead of the
// oldest one still being decoded.
func multiStreamOrderer(p *multiStreamParser) {
	defer close(p.entries)
	pending := map[int][]*Page{}
	next := 0
	for dc := range p.decoded {
		pending[dc.seq] = dc.pages
		for {
			pages, ok := pending[next]
			if !ok {
				break
			}
			for _, page := range pages {
				p.entries <- page
			}
			delete(pending, next)
			next++
		}
	}
	// Only reached with gaps left by a failed index.
	seqs := make([]int, 0, len(pending))
	for seq := range pending {
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)
	for _, seq := range seqs {
		for _, page := range pending[seq] {
			p.entries <- page
		}
	}
}

// NewIndexedParser gets a wikipedia dump parser reading from a
// multistream dump and its index.
//
// Streams are decoded by numWorkers goroutines, but pages come out
// in dump order.
func NewIndexedParser(indexfn, datafn string, numWorkers int) (Parser, error) {
	r, err := os.Open(datafn)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	d := xml.NewDecoder(bzip2.NewReader(r))
	_, err = d.Token()
	if err != nil {
		return nil, err
	}

	si := SiteInfo{}
	err = d.Decode(&si)
	if err != nil {
		return nil, err
	}

	if numWorkers < 1 {
		numWorkers = 1
	}

	rv := &multiStreamParser{
		siteInfo: si,
		workerch: make(chan indexChunk, 1000),
		decoded:  make(chan decodedChunk, numWorkers),
		entries:  make(chan *Page, 1000),
	}

	wg := sync.WaitGroup{}
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go multiStreamWorker(datafn, &wg, rv)
	}

	go multiStreamIndexWorker(indexfn, rv)
	go multiStreamOrderer(rv)

	go func() {
		wg.Wait()
		close(rv.decoded)
	}()

	return rv, nil
}

func (p *multiStreamParser) Next() (rv *Page, err error) {
	var ok bool
	rv, ok = <-p.entries
	if !ok {
		p.errMu.Lock()
		defer p.errMu.Unlock()
		if p.err != nil {
			return nil, p.err
		}
		return nil, io.EOF
	}
	return
}

func (p *multiStreamParser) SiteInfo() SiteInfo {
	return p.siteInfo
}
