// Package entity turns classified pages into knowledge base records.
//
// There is one record type per entity family.  All of them embed a
// Header and nothing outside this package can implement Entity, so a
// type switch over the variants is exhaustive.
package entity

import (
	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/canon"
	"github.com/dustin/go-wikikb/classify"
)

// Header holds what every record has.
type Header struct {
	// Assigned once the record is known to be written.
	ID            int
	Kind          classify.Kind
	Name          string
	Aliases       []canon.Alias
	Redirects     []string
	Description   string
	OriginalTitle string
	Images        []string
	Link          string
}

func (h *Header) header() *Header { return h }

// An Entity is one of the record types below.
type Entity interface {
	header() *Header
}

// HeaderOf returns the shared part of e.
func HeaderOf(e Entity) *Header {
	return e.header()
}

// Person covers people, fictional characters and groups of people.
type Person struct {
	Header
	// "M", "F" or empty.
	Gender      string
	Birth       canon.Date
	Death       canon.Date
	BirthPlace  string
	DeathPlace  string
	Nationality []string
	Occupations []string
}

// Country covers current and former states.
type Country struct {
	Header
	Capital     string
	Population  string
	Area        string
	Coord       *wikikb.Coord
	Established canon.Date
	Dissolved   canon.Date
}

type Settlement struct {
	Header
	Country    string
	Population string
	Area       string
	Elevation  string
	Coord      *wikikb.Coord
}

// Watercourse is a river, stream or canal.
type Watercourse struct {
	Header
	Length    string
	BasinArea string
	Discharge string
	Source    string
	Mouth     string
	Countries []string
	Coord     *wikikb.Coord
}

// Waterarea is a lake, sea or reservoir.
type Waterarea struct {
	Header
	Area      string
	Depth     string
	Countries []string
	Coord     *wikikb.Coord
}

// Geo is any other geographical feature.  Subkind says which.
type Geo struct {
	Header
	Subkind    string
	Area       string
	Elevation  string
	Population string
	Countries  []string
	Coord      *wikikb.Coord
}

type Organisation struct {
	Header
	Founded   canon.Date
	Dissolved canon.Date
	Location  string
	Type      string
}

type Event struct {
	Header
	Start     canon.Date
	End       canon.Date
	Locations []string
	Type      string
}
