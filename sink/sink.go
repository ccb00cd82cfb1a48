// Package sink stores batches of serialized records.
package sink

import (
	"context"
	"errors"

	"github.com/dustin/go-wikikb/entity"
	"github.com/dustin/go-wikikb/tsv"
)

// A Record is an entity rendered for storage.
type Record struct {
	// Key identifies the record in the document stores.  It's the
	// page title, which is unique within a dump.
	Key  string
	Kind string
	Line string
	Doc  map[string]interface{}
}

// NewRecord serializes e.
func NewRecord(e entity.Entity) Record {
	h := entity.HeaderOf(e)
	return Record{
		Key:  h.OriginalTitle,
		Kind: string(h.Kind),
		Line: tsv.Line(e),
		Doc:  tsv.Document(e),
	}
}

// A Sink receives whole batches in order.
type Sink interface {
	Write(ctx context.Context, recs []Record) error
	Close() error
}

type multi []Sink

// Multi writes every batch to each of the given sinks.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Write(ctx context.Context, recs []Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, recs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
