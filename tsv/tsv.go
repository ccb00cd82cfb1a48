// Package tsv serializes records as tab separated lines.
//
// Every kind has a fixed list of columns.  The first column of a
// header line names the kind, e.g. "<person>ID", and the columns
// holding several values or possibly nothing are flagged with {m}
// and {e} respectively ({me} for both).
package tsv

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/canon"
	"github.com/dustin/go-wikikb/classify"
	"github.com/dustin/go-wikikb/entity"
)

// A Column describes one field of a line.
type Column struct {
	Name     string
	Multi    bool
	Nullable bool
}

// Flags renders the {m}/{e} marker of the column.
func (c Column) Flags() string {
	f := ""
	if c.Multi {
		f += "m"
	}
	if c.Nullable {
		f += "e"
	}
	if f == "" {
		return ""
	}
	return "{" + f + "}"
}

type field struct {
	Column
	value func(entity.Entity) []string
}

func one(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func single(name string, get func(entity.Entity) string) field {
	return field{Column{Name: name, Nullable: true}, func(e entity.Entity) []string { return one(get(e)) }}
}

func multi(name string, get func(entity.Entity) []string) field {
	return field{Column{Name: name, Multi: true, Nullable: true}, get}
}

func required(name string, get func(entity.Entity) string) field {
	return field{Column{Name: name}, func(e entity.Entity) []string { return []string{get(e)} }}
}

func date(d canon.Date) string {
	return d.String()
}

func coord(c *wikikb.Coord, lat bool) string {
	switch {
	case c == nil:
		return ""
	case lat:
		return strconv.FormatFloat(c.Lat, 'f', -1, 64)
	}
	return strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// Alias renders text#lang=xx, adding #ntype=t for typed names.
func Alias(a canon.Alias) string {
	s := a.Text + "#lang=" + a.Lang
	if a.Type != "" {
		s += "#ntype=" + a.Type
	}
	return s
}

var headerFields = []field{
	required("ID", func(e entity.Entity) string { return strconv.Itoa(entity.HeaderOf(e).ID) }),
	required("TYPE", func(e entity.Entity) string { return string(entity.HeaderOf(e).Kind) }),
	required("NAME", func(e entity.Entity) string { return entity.HeaderOf(e).Name }),
	required("ORIGINAL TITLE", func(e entity.Entity) string { return entity.HeaderOf(e).OriginalTitle }),
	multi("ALIASES", func(e entity.Entity) []string {
		var rv []string
		for _, a := range entity.HeaderOf(e).Aliases {
			rv = append(rv, Alias(a))
		}
		return rv
	}),
	multi("REDIRECTS", func(e entity.Entity) []string { return entity.HeaderOf(e).Redirects }),
	single("DESCRIPTION", func(e entity.Entity) string { return entity.HeaderOf(e).Description }),
	multi("IMAGES", func(e entity.Entity) []string { return entity.HeaderOf(e).Images }),
	required("LINK", func(e entity.Entity) string { return entity.HeaderOf(e).Link }),
}

func person(e entity.Entity) *entity.Person             { return e.(*entity.Person) }
func country(e entity.Entity) *entity.Country           { return e.(*entity.Country) }
func settlement(e entity.Entity) *entity.Settlement     { return e.(*entity.Settlement) }
func watercourse(e entity.Entity) *entity.Watercourse   { return e.(*entity.Watercourse) }
func waterarea(e entity.Entity) *entity.Waterarea       { return e.(*entity.Waterarea) }
func geo(e entity.Entity) *entity.Geo                   { return e.(*entity.Geo) }
func organisation(e entity.Entity) *entity.Organisation { return e.(*entity.Organisation) }
func event(e entity.Entity) *entity.Event               { return e.(*entity.Event) }

var kindFields = map[string][]field{
	"person": {
		single("GENDER", func(e entity.Entity) string { return person(e).Gender }),
		single("DATE OF BIRTH", func(e entity.Entity) string { return date(person(e).Birth) }),
		single("PLACE OF BIRTH", func(e entity.Entity) string { return person(e).BirthPlace }),
		single("DATE OF DEATH", func(e entity.Entity) string { return date(person(e).Death) }),
		single("PLACE OF DEATH", func(e entity.Entity) string { return person(e).DeathPlace }),
		multi("NATIONALITY", func(e entity.Entity) []string { return person(e).Nationality }),
		multi("OCCUPATIONS", func(e entity.Entity) []string { return person(e).Occupations }),
	},
	"country": {
		single("CAPITAL", func(e entity.Entity) string { return country(e).Capital }),
		single("POPULATION", func(e entity.Entity) string { return country(e).Population }),
		single("AREA KM2", func(e entity.Entity) string { return country(e).Area }),
		single("LATITUDE", func(e entity.Entity) string { return coord(country(e).Coord, true) }),
		single("LONGITUDE", func(e entity.Entity) string { return coord(country(e).Coord, false) }),
		single("ESTABLISHED", func(e entity.Entity) string { return date(country(e).Established) }),
		single("DISSOLVED", func(e entity.Entity) string { return date(country(e).Dissolved) }),
	},
	"settlement": {
		single("COUNTRY", func(e entity.Entity) string { return settlement(e).Country }),
		single("POPULATION", func(e entity.Entity) string { return settlement(e).Population }),
		single("AREA KM2", func(e entity.Entity) string { return settlement(e).Area }),
		single("ELEVATION M", func(e entity.Entity) string { return settlement(e).Elevation }),
		single("LATITUDE", func(e entity.Entity) string { return coord(settlement(e).Coord, true) }),
		single("LONGITUDE", func(e entity.Entity) string { return coord(settlement(e).Coord, false) }),
	},
	"watercourse": {
		single("LENGTH KM", func(e entity.Entity) string { return watercourse(e).Length }),
		single("BASIN AREA KM2", func(e entity.Entity) string { return watercourse(e).BasinArea }),
		single("DISCHARGE M3/S", func(e entity.Entity) string { return watercourse(e).Discharge }),
		single("SOURCE", func(e entity.Entity) string { return watercourse(e).Source }),
		single("MOUTH", func(e entity.Entity) string { return watercourse(e).Mouth }),
		multi("COUNTRIES", func(e entity.Entity) []string { return watercourse(e).Countries }),
		single("LATITUDE", func(e entity.Entity) string { return coord(watercourse(e).Coord, true) }),
		single("LONGITUDE", func(e entity.Entity) string { return coord(watercourse(e).Coord, false) }),
	},
	"waterarea": {
		single("AREA KM2", func(e entity.Entity) string { return waterarea(e).Area }),
		single("DEPTH M", func(e entity.Entity) string { return waterarea(e).Depth }),
		multi("COUNTRIES", func(e entity.Entity) []string { return waterarea(e).Countries }),
		single("LATITUDE", func(e entity.Entity) string { return coord(waterarea(e).Coord, true) }),
		single("LONGITUDE", func(e entity.Entity) string { return coord(waterarea(e).Coord, false) }),
	},
	"geo": {
		required("SUBKIND", func(e entity.Entity) string { return geo(e).Subkind }),
		single("AREA KM2", func(e entity.Entity) string { return geo(e).Area }),
		single("ELEVATION M", func(e entity.Entity) string { return geo(e).Elevation }),
		single("POPULATION", func(e entity.Entity) string { return geo(e).Population }),
		multi("COUNTRIES", func(e entity.Entity) []string { return geo(e).Countries }),
		single("LATITUDE", func(e entity.Entity) string { return coord(geo(e).Coord, true) }),
		single("LONGITUDE", func(e entity.Entity) string { return coord(geo(e).Coord, false) }),
	},
	"organisation": {
		single("FOUNDED", func(e entity.Entity) string { return date(organisation(e).Founded) }),
		single("DISSOLVED", func(e entity.Entity) string { return date(organisation(e).Dissolved) }),
		single("LOCATION", func(e entity.Entity) string { return organisation(e).Location }),
		single("TYPE OF ORGANISATION", func(e entity.Entity) string { return organisation(e).Type }),
	},
	"event": {
		single("START", func(e entity.Entity) string { return date(event(e).Start) }),
		single("END", func(e entity.Entity) string { return date(event(e).End) }),
		multi("LOCATIONS", func(e entity.Entity) []string { return event(e).Locations }),
		single("TYPE OF EVENT", func(e entity.Entity) string { return event(e).Type }),
	},
}

func fieldsOf(k classify.Kind) []field {
	rv := make([]field, 0, len(headerFields)+8)
	rv = append(rv, headerFields...)
	return append(rv, kindFields[k.Family()]...)
}

// Columns lists the columns of kind k in order.
func Columns(k classify.Kind) []Column {
	var rv []Column
	for _, f := range fieldsOf(k) {
		rv = append(rv, f.Column)
	}
	return rv
}

// Header renders the header line of kind k, without the newline.
func Header(k classify.Kind) string {
	cols := Columns(k)
	names := make([]string, 0, len(cols))
	for i, c := range cols {
		name := c.Flags() + c.Name
		if i == 0 {
			name = "<" + string(k) + ">" + name
		}
		names = append(names, name)
	}
	return strings.Join(names, "\t")
}

// WriteHeaders writes the header line of every kind.
func WriteHeaders(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, k := range classify.Kinds {
		if _, err := bw.WriteString(Header(k) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var flatten = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func clean(s string) string {
	return strings.TrimSpace(flatten.Replace(s))
}

// Row returns the column values of e.  Values of multi valued
// columns are joined with |.
func Row(e entity.Entity) []string {
	fields := fieldsOf(entity.HeaderOf(e).Kind)
	rv := make([]string, 0, len(fields))
	for _, f := range fields {
		vals := f.value(e)
		parts := make([]string, 0, len(vals))
		for _, v := range vals {
			v = clean(v)
			if f.Multi {
				v = strings.ReplaceAll(v, "|", " ")
			}
			if v != "" {
				parts = append(parts, v)
			}
		}
		rv = append(rv, strings.Join(parts, "|"))
	}
	return rv
}

// Line is Row joined with tabs, without the newline.
func Line(e entity.Entity) string {
	return strings.Join(Row(e), "\t")
}

// Document maps column names to values for the document stores.
// Multi valued columns become lists and empty columns are left out.
func Document(e entity.Entity) map[string]interface{} {
	doc := map[string]interface{}{}
	for _, f := range fieldsOf(entity.HeaderOf(e).Kind) {
		key := strings.ToLower(strings.ReplaceAll(f.Name, " ", "_"))
		var vals []string
		for _, v := range f.value(e) {
			if v = clean(v); v != "" {
				vals = append(vals, v)
			}
		}
		switch {
		case len(vals) == 0:
		case f.Multi:
			doc[key] = vals
		default:
			doc[key] = vals[0]
		}
	}
	return doc
}
