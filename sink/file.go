package sink

import (
	"bufio"
	"context"
	"io"
	"os"
)

// File writes one tab separated line per record.
type File struct {
	w  *bufio.Writer
	c  io.Closer
	nl []byte
}

// NewFile writes records to w.  Close closes w if it can.
func NewFile(w io.Writer) *File {
	f := &File{w: bufio.NewWriter(w), nl: []byte{'\n'}}
	f.c, _ = w.(io.Closer)
	return f
}

// CreateFile truncates or creates the named output.
func CreateFile(fn string) (*File, error) {
	f, err := os.Create(fn)
	if err != nil {
		return nil, err
	}
	return NewFile(f), nil
}

// Write appends the batch and flushes it.
func (f *File) Write(ctx context.Context, recs []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range recs {
		if _, err := f.w.WriteString(r.Line); err != nil {
			return err
		}
		if _, err := f.w.Write(f.nl); err != nil {
			return err
		}
	}
	return f.w.Flush()
}

func (f *File) Close() error {
	err := f.w.Flush()
	if f.c != nil {
		if cerr := f.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
