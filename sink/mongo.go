package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/mgo.v2"
)

// Links are unique within a dump, so a second insert of the same
// record is a duplicate from an earlier run.
var linkIndex = mgo.Index{
	Key:        []string{"link"},
	Unique:     true,
	DropDups:   true,
	Background: true,
	Sparse:     true,
}

// Mongo inserts records into one collection.
type Mongo struct {
	session *mgo.Session
	c       *mgo.Collection
	log     *zap.SugaredLogger
}

func NewMongo(dburl, dbname, collection string, log *zap.SugaredLogger) (*Mongo, error) {
	session, err := mgo.Dial(dburl)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	c := session.DB(dbname).C(collection)
	if err := c.EnsureIndex(linkIndex); err != nil {
		session.Close()
		return nil, fmt.Errorf("creating link index: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Mongo{session: session, c: c, log: log}, nil
}

func (m *Mongo) Write(ctx context.Context, recs []Record) error {
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := m.c.Insert(r.Doc)
		switch {
		case err == nil:
		case mgo.IsDup(err):
			m.log.Debugf("Duplicate key inserting %s", r.Key)
		default:
			return fmt.Errorf("inserting %s: %w", r.Key, err)
		}
	}
	return nil
}

func (m *Mongo) Close() error {
	m.session.Close()
	return nil
}
