// Package batch drives pages from a dump through extraction and into
// a sink, a bounded batch at a time.
//
// A batch is read, handed to a fixed pool of workers and waited for
// as a whole.  Its surviving records are numbered and written in the
// order their pages were read before the next batch starts, so the
// output never depends on how the workers were scheduled.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/entity"
	"github.com/dustin/go-wikikb/metrics"
	"github.com/dustin/go-wikikb/sink"
)

const DefaultBatchSize = 4000

// A Source emits pages until io.EOF.  wikikb.Parser is one.
type Source interface {
	Next() (*wikikb.Page, error)
}

// An Extractor turns a page into a record, or nil for pages that
// aren't entities.  It must be safe for concurrent use.
type Extractor interface {
	Extract(*wikikb.Page) (entity.Entity, error)
}

// Scheduler runs one extraction.  Zero values get defaults.
type Scheduler struct {
	Source    Source
	Pipeline  Extractor
	Sink      sink.Sink
	BatchSize int
	Workers   int
	// Stop after reading this many pages.  Zero is no limit.
	Limit   int64
	Log     *zap.SugaredLogger
	Metrics *metrics.Metrics

	jobs chan job
}

// Stats summarizes a run.
type Stats struct {
	Pages    int64
	Skipped  int64
	Entities int64
	Errors   int64
	Batches  int
	Duration time.Duration
}

var errPanic = errors.New("panic")

type outcome struct {
	e   entity.Entity
	err error
}

type job struct {
	page *wikikb.Page
	out  *outcome
	wg   *sync.WaitGroup
}

func (s *Scheduler) extract(p *wikikb.Page) (rv outcome) {
	defer func() {
		if r := recover(); r != nil {
			rv = outcome{err: fmt.Errorf("%w: %v", errPanic, r)}
		}
	}()
	e, err := s.Pipeline.Extract(p)
	return outcome{e: e, err: err}
}

func (s *Scheduler) worker(jobs <-chan job) {
	for j := range jobs {
		*j.out = s.extract(j.page)
		j.wg.Done()
	}
}

func (s *Scheduler) defaults() {
	if s.BatchSize <= 0 {
		s.BatchSize = DefaultBatchSize
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}
	if s.Log == nil {
		s.Log = zap.NewNop().Sugar()
	}
}

// Run reads the source to its end or to the limit.  A failing page
// is counted and logged, never retried.  Errors reading the source or
// writing the sink end the run after the pages before them are done.
func (s *Scheduler) Run(ctx context.Context) (Stats, error) {
	s.defaults()

	s.jobs = make(chan job, s.Workers)
	defer close(s.jobs)
	for i := 0; i < s.Workers; i++ {
		go s.worker(s.jobs)
	}

	var st Stats
	var nextID int
	start := time.Now()
	prev, prevPages := start, int64(0)
	for {
		pages, readErr := s.read(ctx, &st)
		if len(pages) > 0 {
			if err := s.process(ctx, pages, &st, &nextID); err != nil {
				st.Duration = time.Since(start)
				return st, err
			}
			now := time.Now()
			s.Log.Infof("Processed %s pages total (%.2f/s)",
				humanize.Comma(st.Pages), float64(st.Pages-prevPages)/now.Sub(prev).Seconds())
			prev, prevPages = now, st.Pages
		}
		if readErr != nil {
			st.Duration = time.Since(start)
			if readErr == io.EOF {
				readErr = nil
			}
			s.Log.Infof("Ended after %v: %s pages, %s entities, %s errors",
				st.Duration, humanize.Comma(st.Pages), humanize.Comma(st.Entities),
				humanize.Comma(st.Errors))
			return st, readErr
		}
	}
}

// read fills a batch.  It returns io.EOF with the last batch when the
// source or the limit runs out.
func (s *Scheduler) read(ctx context.Context, st *Stats) ([]*wikikb.Page, error) {
	batch := make([]*wikikb.Page, 0, s.BatchSize)
	for len(batch) < s.BatchSize {
		if s.Limit > 0 && st.Pages >= s.Limit {
			return batch, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.Source.Next()
		if err != nil {
			return batch, err
		}
		st.Pages++
		if s.Metrics != nil {
			s.Metrics.IncPages()
		}
		if p.IsRedirect() || p.Namespace != 0 {
			st.Skipped++
			continue
		}
		batch = append(batch, p)
	}
	return batch, nil
}

func (s *Scheduler) process(ctx context.Context, pages []*wikikb.Page,
	st *Stats, nextID *int) error {

	start := time.Now()
	results := make([]outcome, len(pages))
	wg := &sync.WaitGroup{}
	wg.Add(len(pages))
	for i, p := range pages {
		s.jobs <- job{page: p, out: &results[i], wg: wg}
	}
	wg.Wait()

	recs := make([]sink.Record, 0, len(pages))
	for i, r := range results {
		if r.err != nil {
			reason := "error"
			if errors.Is(r.err, errPanic) {
				reason = "panic"
			}
			st.Errors++
			if s.Metrics != nil {
				s.Metrics.IncPageErrors(reason)
			}
			s.Log.Warnf("Error extracting %q: %v", pages[i].Title, r.err)
			continue
		}
		if r.e == nil {
			continue
		}
		*nextID++
		h := entity.HeaderOf(r.e)
		h.ID = *nextID
		recs = append(recs, sink.NewRecord(r.e))
		if s.Metrics != nil {
			s.Metrics.IncEntities(string(h.Kind))
		}
	}
	st.Entities += int64(len(recs))
	st.Batches++

	err := s.Sink.Write(ctx, recs)
	if s.Metrics != nil {
		s.Metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return fmt.Errorf("writing batch %d: %w", st.Batches, err)
	}
	return nil
}
