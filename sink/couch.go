package sink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-couch"
	"github.com/dustin/httputil"
	"go.uber.org/zap"
)

// conflictMsg starts the error go-couch reports for a document id
// that is already taken.
var conflictMsg = strings.TrimSpace(httputil.HTTPError(&http.Response{
	StatusCode: http.StatusConflict,
	Status:     "409 Conflict",
	Request:    &http.Request{Method: "PUT", URL: &url.URL{}},
	Body:       io.NopCloser(strings.NewReader("")),
}).Error())

func isConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(conflictMsg, "409") && strings.HasPrefix(msg, conflictMsg) {
		return true
	}
	return strings.Contains(msg, "409 Conflict") || strings.Contains(msg, `"error":"conflict"`)
}

// Couch stores records as CouchDB documents keyed by title.
type Couch struct {
	db  couch.Database
	log *zap.SugaredLogger
}

// NewCouch connects to the database at dburl.
func NewCouch(dburl string, log *zap.SugaredLogger) (*Couch, error) {
	db, err := couch.Connect(dburl)
	if err != nil {
		return nil, fmt.Errorf("connecting to couchdb: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Couch{db: db, log: log}, nil
}

func escapeTitle(in string) string {
	return strings.Replace(strings.Replace(in, "/", "%2f", -1),
		"+", "%2b", -1)
}

func (c *Couch) Write(ctx context.Context, recs []Record) error {
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := make(map[string]interface{}, len(r.Doc)+1)
		for k, v := range r.Doc {
			doc[k] = v
		}
		doc["_id"] = escapeTitle(r.Key)

		_, _, err := c.db.Insert(doc)
		switch {
		case err == nil:
		case isConflict(err):
			// An earlier run wrote it.
			c.log.Debugf("Keeping existing document for %v", r.Key)
		default:
			return fmt.Errorf("inserting %v: %w", r.Key, err)
		}
	}
	return nil
}

func (c *Couch) Close() error {
	return nil
}
