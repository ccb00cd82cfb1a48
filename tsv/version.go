package tsv

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Version identifies one run over one corpus.
type Version struct {
	Corpus string
	Time   time.Time
	RunID  uuid.UUID
}

// NewVersion stamps a run over corpus starting now.
func NewVersion(corpus string) Version {
	return Version{Corpus: corpus, Time: time.Now().UTC(), RunID: uuid.New()}
}

func (v Version) String() string {
	return fmt.Sprintf("%s\t%s\t%s", v.Corpus, v.Time.Format(time.RFC3339), v.RunID)
}

// WriteTo writes the stamp as a single line.
func (v Version) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintln(w, v.String())
	return int64(n), err
}
