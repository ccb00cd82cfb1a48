package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCouch answers the few CouchDB calls the sink makes.  Documents
// can be created once; a title containing "Broken" fails outright.
type fakeCouch struct {
	mu   sync.Mutex
	docs map[string]map[string]interface{}
}

func (f *fakeCouch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	enc := json.NewEncoder(w)
	switch {
	case r.Method == "GET" && r.URL.Path == "/_all_dbs":
		enc.Encode([]string{"wikikb"})
	case r.Method == "GET" && r.URL.Path == "/wikikb":
		enc.Encode(map[string]string{"db_name": "wikikb"})
	case r.Method == "PUT" && strings.Contains(r.URL.Path, "Broken"):
		w.WriteHeader(http.StatusInternalServerError)
		enc.Encode(map[string]string{"error": "internal", "reason": "broken"})
	case r.Method == "PUT":
		if _, ok := f.docs[r.URL.Path]; ok {
			w.WriteHeader(http.StatusConflict)
			enc.Encode(map[string]string{"error": "conflict", "reason": "Document update conflict."})
			return
		}
		doc := map[string]interface{}{}
		json.NewDecoder(r.Body).Decode(&doc)
		f.docs[r.URL.Path] = doc
		w.WriteHeader(http.StatusCreated)
		enc.Encode(map[string]interface{}{"ok": true, "id": r.URL.Path, "rev": "1-a"})
	default:
		w.WriteHeader(http.StatusNotFound)
		enc.Encode(map[string]string{"error": "not_found", "reason": "missing"})
	}
}

func newFakeCouch(t *testing.T) (*fakeCouch, *Couch) {
	f := &fakeCouch{docs: map[string]map[string]interface{}{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := NewCouch(srv.URL+"/wikikb", zap.NewNop().Sugar())
	require.NoError(t, err)
	return f, c
}

func TestCouchKeepsExisting(t *testing.T) {
	f, c := newFakeCouch(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, records()))
	assert.Len(t, f.docs, 2)

	// a second run over the same titles hits conflicts and keeps going
	require.NoError(t, c.Write(ctx, records()))
	assert.Len(t, f.docs, 2)
	require.NoError(t, c.Close())
}

func TestCouchFailure(t *testing.T) {
	_, c := newFakeCouch(t)
	recs := records()
	recs[0].Key = "Broken thing"
	err := c.Write(context.Background(), recs)
	require.Error(t, err)
	assert.False(t, isConflict(err))
	assert.Contains(t, err.Error(), "Broken thing")
}

func TestEscapeTitle(t *testing.T) {
	assert.Equal(t, "AC%2fDC", escapeTitle("AC/DC"))
	assert.Equal(t, "C%2b%2b", escapeTitle("C++"))
}
