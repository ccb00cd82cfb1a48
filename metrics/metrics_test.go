package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value finds the sample of name whose labels include want.
func value(t *testing.T, m *Metrics, name string, want map[string]string) float64 {
	mfs, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, mt := range mf.GetMetric() {
			for _, lp := range mt.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v != lp.GetValue() {
					continue metric
				}
			}
			return mt.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncPages()
	m.IncPages()
	m.IncEntities("person")
	m.IncPageErrors("panic")

	assert.Equal(t, 2.0, value(t, m, "wikikb_pages_total", nil))
	assert.Equal(t, 1.0, value(t, m, "wikikb_entities_total", map[string]string{"kind": "person"}))
	assert.Equal(t, 0.0, value(t, m, "wikikb_entities_total", map[string]string{"kind": "event"}))
	assert.Equal(t, 1.0, value(t, m, "wikikb_page_errors_total", map[string]string{"reason": "panic"}))
}

func TestPrivateRegistries(t *testing.T) {
	// registering twice on the default registry would panic
	a, b := New(), New()
	a.IncPages()
	assert.Equal(t, 1.0, value(t, a, "wikikb_pages_total", nil))
	assert.Equal(t, 0.0, value(t, b, "wikikb_pages_total", nil))
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncEntities("settlement")
	m.BatchDuration.Observe(0.5)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	res, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `wikikb_entities_total{kind="settlement"} 1`), text)
	assert.True(t, strings.Contains(text, "wikikb_batch_duration_seconds_count 1"), text)
}
