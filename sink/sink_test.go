package sink

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustin/go-wikikb/classify"
	"github.com/dustin/go-wikikb/entity"
)

func records() []Record {
	return []Record{
		NewRecord(&entity.Event{Header: entity.Header{ID: 1, Kind: classify.Event,
			Name: "World War I", OriginalTitle: "World War I"}}),
		NewRecord(&entity.Person{Header: entity.Header{ID: 2, Kind: classify.Person,
			Name: "Mercury", OriginalTitle: "Mercury (singer)"}}),
	}
}

func TestNewRecord(t *testing.T) {
	r := records()[1]
	assert.Equal(t, "Mercury (singer)", r.Key)
	assert.Equal(t, "person", r.Kind)
	assert.True(t, strings.HasPrefix(r.Line, "2\tperson\tMercury\tMercury (singer)\t"), r.Line)
	assert.Equal(t, "Mercury", r.Doc["name"])
}

func TestFile(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewFile(buf)
	recs := records()
	require.NoError(t, f.Write(context.Background(), recs[:1]))
	// flushed per batch
	assert.Equal(t, recs[0].Line+"\n", buf.String())
	require.NoError(t, f.Write(context.Background(), recs[1:]))
	require.NoError(t, f.Close())
	assert.Equal(t, recs[0].Line+"\n"+recs[1].Line+"\n", buf.String())
}

func TestCreateFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "kb.tsv")
	f, err := CreateFile(fn)
	require.NoError(t, err)
	recs := records()
	require.NoError(t, f.Write(context.Background(), recs))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"), 2)
}

func TestFileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buf := &bytes.Buffer{}
	err := NewFile(buf).Write(ctx, records())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

type failing struct{ closed bool }

var errFailing = errors.New("nope")

func (f *failing) Write(context.Context, []Record) error { return errFailing }
func (f *failing) Close() error                          { f.closed = true; return nil }

func TestMulti(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	bad := &failing{}
	m := Multi(NewFile(a), bad, NewFile(b))

	err := m.Write(context.Background(), records())
	assert.ErrorIs(t, err, errFailing)
	// the failure doesn't stop the others
	assert.Equal(t, a.String(), b.String())
	assert.NotZero(t, a.Len())

	require.NoError(t, m.Close())
	assert.True(t, bad.closed)
}
