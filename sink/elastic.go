package sink

import (
	"context"

	"github.com/dustin/go-elasticsearch"
)

// Elastic indexes records through the bulk API, one bulk request
// per batch.  The document type is the record's kind.
type Elastic struct {
	index string
	ch    chan *elasticsearch.UpdateInstruction
	done  chan struct{}
}

// A nil instruction ends the batch.
func bulkHandler(esurl string, ch <-chan *elasticsearch.UpdateInstruction, done chan<- struct{}) {
	es := elasticsearch.ElasticSearch{URL: esurl}
	bulkLoader := es.Bulk()
	for ui := range ch {
		if ui == nil {
			bulkLoader.SendBatch()
			continue
		}
		bulkLoader.Update(ui)
	}
	bulkLoader.Quit()
	close(done)
}

func NewElastic(esurl, index string) *Elastic {
	e := &Elastic{
		index: index,
		ch:    make(chan *elasticsearch.UpdateInstruction, 1000),
		done:  make(chan struct{}),
	}
	go bulkHandler(esurl, e.ch, e.done)
	return e
}

func (e *Elastic) Write(ctx context.Context, recs []Record) error {
	for _, r := range recs {
		ui := &elasticsearch.UpdateInstruction{
			Id:    r.Key,
			Index: e.index,
			Type:  r.Kind,
			Body:  r.Doc,
		}
		select {
		case e.ch <- ui:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case e.ch <- nil:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Close sends what's left and waits for the loader to stop.
func (e *Elastic) Close() error {
	close(e.ch)
	<-e.done
	return nil
}
