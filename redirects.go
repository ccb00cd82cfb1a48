package wikikb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrResourceMissing is returned when an optional input file does
// not exist.  Callers warn and carry on with an empty value.
var ErrResourceMissing = errors.New("resource missing")

// Redirects maps an article link to the titles redirecting to it.
type Redirects map[string][]string

// Link builds the article link for a title.
func Link(base, title string) string {
	return base + strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// LoadRedirects reads link<TAB>title lines.  Blank and malformed
// lines are skipped.
func LoadRedirects(r io.Reader) (Redirects, error) {
	rv := Redirects{}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		parts := strings.SplitN(s.Text(), "\t", 2)
		if len(parts) != 2 {
			continue
		}
		link, title := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if link == "" || title == "" {
			continue
		}
		rv[link] = append(rv[link], title)
	}
	return rv, s.Err()
}

// LoadRedirectsFile loads a redirect table from disk.  A file that
// isn't there yields an empty table and ErrResourceMissing.
func LoadRedirectsFile(fn string) (Redirects, error) {
	f, err := os.Open(fn)
	if errors.Is(err, os.ErrNotExist) {
		return Redirects{}, fmt.Errorf("%w: %v", ErrResourceMissing, fn)
	}
	if err != nil {
		return Redirects{}, err
	}
	defer f.Close()
	return LoadRedirects(f)
}

// WriteRedirect writes one line of a redirect table.
func WriteRedirect(w io.Writer, base string, p *Page) error {
	_, err := fmt.Fprintf(w, "%s\t%s\n", Link(base, p.Redirect.Title), p.Title)
	return err
}
