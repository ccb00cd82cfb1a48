package batch

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/classify"
	"github.com/dustin/go-wikikb/entity"
	"github.com/dustin/go-wikikb/metrics"
	"github.com/dustin/go-wikikb/sink"
)

type pageList struct {
	pages []*wikikb.Page
	err   error
	read  int
}

func (l *pageList) Next() (*wikikb.Page, error) {
	if l.read >= len(l.pages) {
		if l.err != nil {
			return nil, l.err
		}
		return nil, io.EOF
	}
	l.read++
	return l.pages[l.read-1], nil
}

func titled(n int) *pageList {
	l := &pageList{}
	for i := 1; i <= n; i++ {
		l.pages = append(l.pages, &wikikb.Page{Title: "Page " + strconv.Itoa(i)})
	}
	return l
}

// fakeExtractor makes an event out of every page, sleeping a little
// to shuffle the workers.  Titles containing "none" give nothing,
// "fail" an error and "boom" a panic.
type fakeExtractor struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeExtractor) Extract(p *wikikb.Page) (entity.Entity, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	time.Sleep(time.Duration(rand.Intn(200)) * time.Microsecond)
	switch {
	case strings.Contains(p.Title, "none"):
		return nil, nil
	case strings.Contains(p.Title, "fail"):
		return nil, errors.New("can't")
	case strings.Contains(p.Title, "boom"):
		panic("boom")
	}
	return &entity.Event{Header: entity.Header{Kind: classify.Event,
		Name: p.Title, OriginalTitle: p.Title}}, nil
}

type memSink struct {
	batches [][]sink.Record
	err     error
}

func (m *memSink) Write(ctx context.Context, recs []sink.Record) error {
	m.batches = append(m.batches, recs)
	return m.err
}

func (m *memSink) Close() error { return nil }

func (m *memSink) all() []sink.Record {
	var rv []sink.Record
	for _, b := range m.batches {
		rv = append(rv, b...)
	}
	return rv
}

func TestRunOrder(t *testing.T) {
	out := &memSink{}
	s := &Scheduler{
		Source:    titled(250),
		Pipeline:  &fakeExtractor{},
		Sink:      out,
		BatchSize: 100,
		Workers:   8,
	}
	st, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 250, st.Pages)
	assert.EqualValues(t, 250, st.Entities)
	assert.Equal(t, 3, st.Batches)
	require.Len(t, out.batches, 3)
	assert.Len(t, out.batches[2], 50)

	for i, r := range out.all() {
		exp := strconv.Itoa(i+1) + "\tevent\tPage " + strconv.Itoa(i+1) + "\t"
		if !strings.HasPrefix(r.Line, exp) {
			t.Fatalf("Expected line %d to start %q, got %q", i, exp, r.Line)
		}
	}
}

func TestRunSkipsAndFailures(t *testing.T) {
	src := &pageList{pages: []*wikikb.Page{
		{Title: "A"},
		{Title: "Redirected", Redirect: wikikb.Redirect{Title: "A"}},
		{Title: "Talk:A", Namespace: 1},
		{Title: "fail here"},
		{Title: "none here"},
		{Title: "boom here"},
		{Title: "B"},
	}}
	ex := &fakeExtractor{}
	out := &memSink{}
	m := metrics.New()
	s := &Scheduler{Source: src, Pipeline: ex, Sink: out, BatchSize: 3, Workers: 2, Metrics: m}
	st, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 7, st.Pages)
	assert.EqualValues(t, 2, st.Skipped)
	assert.EqualValues(t, 2, st.Errors)
	assert.EqualValues(t, 2, st.Entities)
	assert.Equal(t, 5, ex.calls)

	recs := out.all()
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].Key)
	assert.True(t, strings.HasPrefix(recs[0].Line, "1\t"), recs[0].Line)
	assert.Equal(t, "B", recs[1].Key)
	assert.True(t, strings.HasPrefix(recs[1].Line, "2\t"), recs[1].Line)
}

func TestRunLimit(t *testing.T) {
	src := titled(50)
	out := &memSink{}
	s := &Scheduler{Source: src, Pipeline: &fakeExtractor{}, Sink: out, BatchSize: 4, Limit: 10}
	st, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, st.Pages)
	assert.Equal(t, 10, src.read)
	assert.Len(t, out.all(), 10)
	assert.Equal(t, 3, st.Batches)
}

func TestRunSourceError(t *testing.T) {
	broken := errors.New("truncated dump")
	src := titled(5)
	src.err = broken
	out := &memSink{}
	s := &Scheduler{Source: src, Pipeline: &fakeExtractor{}, Sink: out, BatchSize: 3}
	st, err := s.Run(context.Background())
	assert.ErrorIs(t, err, broken)
	// the pages read before the failure are still written
	assert.Len(t, out.all(), 5)
	assert.EqualValues(t, 5, st.Entities)
}

func TestRunSinkError(t *testing.T) {
	full := errors.New("disk full")
	out := &memSink{err: full}
	s := &Scheduler{Source: titled(10), Pipeline: &fakeExtractor{}, Sink: out, BatchSize: 3}
	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, full)
	assert.Len(t, out.batches, 1)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := &memSink{}
	s := &Scheduler{Source: titled(10), Pipeline: &fakeExtractor{}, Sink: out}
	st, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, st.Pages)
	assert.Empty(t, out.batches)
}

func TestRunEmpty(t *testing.T) {
	out := &memSink{}
	s := &Scheduler{Source: titled(0), Pipeline: &fakeExtractor{}, Sink: out}
	st, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Batches)
	assert.Empty(t, out.batches)
}
