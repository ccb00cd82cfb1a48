package sink

import (
	"context"
	"fmt"

	"github.com/couchbase/go-couchbase"
)

// Couchbase stores records in a bucket keyed by title.
type Couchbase struct {
	bucket *couchbase.Bucket
}

func NewCouchbase(server, bucket string) (*Couchbase, error) {
	b, err := couchbase.GetBucket(server, "default", bucket)
	if err != nil {
		return nil, fmt.Errorf("connecting to couchbase: %w", err)
	}
	return &Couchbase{bucket: b}, nil
}

func (c *Couchbase) Write(ctx context.Context, recs []Record) error {
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.bucket.Set(r.Key, 0, r.Doc); err != nil {
			return fmt.Errorf("setting %v: %w", r.Key, err)
		}
	}
	return nil
}

func (c *Couchbase) Close() error {
	c.bucket.Close()
	return nil
}
