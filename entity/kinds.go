package entity

import (
	"strings"
	"unicode"

	"github.com/dustin/go-wikikb/canon"
)

func (x *extraction) person(h Header) *Person {
	rv := &Person{Header: h}
	rv.Gender = x.gender()

	birth, _ := x.date("birth date", canon.RoleBirth)
	// death templates often carry the birth date too
	death, pairedBirth := x.date("death date", canon.RoleDeath)
	if birth.IsZero() {
		birth = pairedBirth
	}
	rv.Birth, rv.Death = birth, death

	rv.BirthPlace = x.place("birth place")
	rv.DeathPlace = x.place("death place")
	rv.Nationality = x.list("nationality")
	rv.Occupations = x.list("occupation")
	return rv
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// gender trusts an infobox field, then counts gendered words in the
// categories and the lead paragraph.
func (x *extraction) gender() string {
	switch strings.ToLower(x.text("gender")) {
	case "m", "male", "man":
		return "M"
	case "f", "female", "woman":
		return "F"
	}

	prof := x.p.Profile
	count := func(text string, vocab []string) int {
		n := 0
		for _, w := range words(text) {
			for _, v := range vocab {
				if w == v {
					n++
				}
			}
		}
		return n
	}
	var female, male int
	for _, c := range x.sp.Categories {
		female += count(c, prof.FemaleWords)
		male += count(c, prof.MaleWords)
	}
	lead := prof.Namespaces.Clean(x.sp.LeadParagraph)
	female += count(lead, prof.FemaleWords)
	male += count(lead, prof.MaleWords)

	switch {
	case female > male:
		return "F"
	case male > female:
		return "M"
	}
	return ""
}

func (x *extraction) country(h Header) *Country {
	rv := &Country{
		Header:     h,
		Capital:    x.place("capital"),
		Population: x.number("population"),
		Area:       x.measure("area", canon.Area),
		Coord:      x.coord(),
	}
	rv.Established, _ = x.date("established", canon.RoleStart)
	rv.Dissolved, _ = x.date("dissolved", canon.RoleEnd)
	return rv
}

func (x *extraction) settlement(h Header) *Settlement {
	return &Settlement{
		Header:     h,
		Country:    x.place("country"),
		Population: x.number("population"),
		Area:       x.measure("area", canon.Area),
		Elevation:  x.measure("elevation", canon.Height),
		Coord:      x.coord(),
	}
}

func (x *extraction) watercourse(h Header) *Watercourse {
	return &Watercourse{
		Header:    h,
		Length:    x.measure("length", canon.Length),
		BasinArea: x.measure("basin area", canon.Area),
		Discharge: x.measure("discharge", canon.Flow),
		Source:    x.place("source"),
		Mouth:     x.place("mouth"),
		Countries: x.list("countries"),
		Coord:     x.coord(),
	}
}

func (x *extraction) waterarea(h Header) *Waterarea {
	return &Waterarea{
		Header:    h,
		Area:      x.measure("area", canon.Area),
		Depth:     x.measure("depth", canon.Height),
		Countries: x.list("countries"),
		Coord:     x.coord(),
	}
}

func (x *extraction) geo(h Header) *Geo {
	return &Geo{
		Header:     h,
		Subkind:    x.kind.Sub(),
		Area:       x.measure("area", canon.Area),
		Elevation:  x.measure("elevation", canon.Height),
		Population: x.number("population"),
		Countries:  x.list("countries"),
		Coord:      x.coord(),
	}
}

func (x *extraction) organisation(h Header) *Organisation {
	rv := &Organisation{
		Header:   h,
		Location: x.place("location"),
		Type:     x.text("type"),
	}
	rv.Founded, _ = x.date("founded", canon.RoleStart)
	rv.Dissolved, _ = x.date("organisation end", canon.RoleEnd)
	return rv
}

func (x *extraction) event(h Header) *Event {
	rv := &Event{
		Header:    h,
		Locations: x.list("location"),
		Type:      x.text("type"),
	}
	rv.Start, _ = x.date("start", canon.RoleStart)
	rv.End, _ = x.date("end", canon.RoleEnd)
	// a date field holding the whole span
	if rv.Start.Range && rv.End.IsZero() {
		rv.Start, rv.End = canon.Date{From: rv.Start.From}, canon.Date{From: rv.Start.To}
	}
	return rv
}
