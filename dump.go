package wikikb

import (
	"compress/bzip2"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrDumpArgs is returned by OpenDump for anything but one or two
// file names.
var ErrDumpArgs = errors.New("need either a single stream dump, or index and multi-stream")

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenDump opens a dump.  A single name is a single stream dump,
// bzip2 compressed if it ends in ".bz2".  Two names are a multistream
// index and its data, read by numWorkers goroutines.  The Closer
// releases the underlying file.
func OpenDump(numWorkers int, names ...string) (Parser, io.Closer, error) {
	switch len(names) {
	case 1:
		f, err := os.Open(names[0])
		if err != nil {
			return nil, nil, err
		}
		var r io.Reader = f
		if strings.HasSuffix(names[0], ".bz2") {
			r = bzip2.NewReader(f)
		}
		p, err := NewParser(r)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return p, f, nil
	case 2:
		p, err := NewIndexedParser(names[0], names[1], numWorkers)
		if err != nil {
			return nil, nil, err
		}
		return p, nopCloser{}, nil
	}
	return nil, nil, ErrDumpArgs
}
