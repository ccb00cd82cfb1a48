package wikikb

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoCoordFound is returned when the text has no coordinate template.
var NoCoordFound = errors.New("No coord data found.")

// ErrCoordMissing is returned for an explicit "coordinates missing"
// marker.  The page declares it has no known location.
var ErrCoordMissing = errors.New("coordinates declared missing")

var notSexagesimal = errors.New("Not a sexagesimal value")

// A Coord is a point in signed decimal degrees.
type Coord struct {
	Lon float64
	Lat float64
}

func (c Coord) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// dms sums degrees, minutes and seconds and applies the hemisphere.
func dms(parts []string, hemi string) (rv float64, err error) {
	if len(parts) == 0 || len(parts) > 3 {
		return 0, notSexagesimal
	}
	div := 1.0
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		rv += f / div
		div *= 60
	}

	if hemi == "S" || hemi == "W" {
		rv = -rv
	}
	return rv, nil
}

func hemisphere(p string, want string) bool {
	p = strings.ToUpper(p)
	return p == want[:1] || p == want[1:]
}

func parseSexagesimal(parts []string) (Coord, error) {
	ns := -1
	for i, p := range parts {
		if hemisphere(p, "NS") {
			ns = i
			break
		}
	}
	if ns < 1 {
		return Coord{}, notSexagesimal
	}
	ew := -1
	for i := ns + 1; i < len(parts); i++ {
		if hemisphere(parts[i], "EW") {
			ew = i
			break
		}
	}
	if ew < ns+2 {
		return Coord{}, notSexagesimal
	}

	lat, err := dms(parts[:ns], strings.ToUpper(parts[ns]))
	if err != nil {
		return Coord{}, err
	}
	lon, err := dms(parts[ns+1:ew], strings.ToUpper(parts[ew]))
	if err != nil {
		return Coord{}, err
	}
	return Coord{Lat: lat, Lon: lon}, nil
}

func parseFloat(parts []string) (rv Coord, err error) {
	if len(parts) < 2 {
		return Coord{}, notSexagesimal
	}
	rv.Lat, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coord{}, err
	}
	rv.Lon, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coord{}, err
	}
	return rv, nil
}

// ParseCoordParams parses the parameters of a coordinate template,
// either deg|min|sec|N|deg|min|sec|E with minutes and seconds
// optional, or a decimal lat|lon pair.
func ParseCoordParams(params []string) (rv Coord, err error) {
	var parts []string
	for _, p := range params {
		p = strings.TrimSpace(p)
		if p == "" || strings.Contains(p, ":") || strings.Contains(p, "=") {
			continue
		}
		parts = append(parts, p)
	}

	firstnumber := len(parts)
	for i, part := range parts {
		if isNumber(part) {
			firstnumber = i
			break
		}
	}
	parts = parts[firstnumber:]

	rv, err = parseSexagesimal(parts)
	if err == notSexagesimal {
		rv, err = parseFloat(parts)
	}
	if err != nil {
		return Coord{}, fmt.Errorf("unparseable coordinates %q: %w",
			strings.Join(params, "|"), err)
	}

	if math.Abs(rv.Lat) > 90 {
		return Coord{}, fmt.Errorf("Invalid latitude: %v", rv.Lat)
	}
	if math.Abs(rv.Lon) > 180 {
		return Coord{}, fmt.Errorf("Invalid longitude: %v", rv.Lon)
	}
	return rv, nil
}

func nameIn(name string, names []string) bool {
	for _, n := range names {
		if name == FoldKey(n) {
			return true
		}
	}
	return false
}

// FindCoordTemplate returns the raw text of the first coordinate
// template, looking inside other templates too.  A missing marker
// counts.
func (ns Namespaces) FindCoordTemplate(text string) string {
	cleaned := nowikiRE.ReplaceAllString(StripComments(text), "")
	for i := strings.Index(cleaned, "{{"); i >= 0; {
		end := MatchBraces(cleaned, i)
		raw := cleaned[i:end]
		t := ParseTemplate(raw)
		if nameIn(t.Name, ns.Coord) || nameIn(t.Name, ns.CoordMissing) {
			return raw
		}
		next := strings.Index(cleaned[i+2:], "{{")
		if next < 0 {
			break
		}
		i += 2 + next
	}
	return ""
}

// ParseCoords parses geographical coordinates as specified in
// http://en.wikipedia.org/wiki/Wikipedia:WikiProject_Geographical_coordinates
func (ns Namespaces) ParseCoords(text string) (Coord, error) {
	raw := ns.FindCoordTemplate(text)
	if raw == "" {
		return Coord{}, NoCoordFound
	}
	t := ParseTemplate(raw)
	if nameIn(t.Name, ns.CoordMissing) {
		return Coord{}, ErrCoordMissing
	}
	return ParseCoordParams(t.Params)
}

// ParseCoords parses coordinates using the English template names.
func ParseCoords(text string) (Coord, error) {
	return DefaultNamespaces.ParseCoords(text)
}

var coordFieldSets = [][]string{
	{"latd", "latm", "lats", "latns", "longd", "longm", "longs", "longew"},
	{"lat deg", "lat min", "lat sec", "lat dir", "lon deg", "lon min", "lon sec", "lon dir"},
	{"lat d", "lat m", "lat s", "lat ns", "long d", "long m", "long s", "long ew"},
}

// CoordFromFields builds a coordinate out of infobox fields: a
// coordinates field holding a template, split degree fields, or
// plain latitude/longitude decimals.
func (ns Namespaces) CoordFromFields(fields map[string]string) (Coord, error) {
	for _, k := range []string{"coordinates", "coords", "coord", "location coordinates"} {
		if v := fields[k]; v != "" {
			return ns.ParseCoords(v)
		}
	}
	for _, set := range coordFieldSets {
		if fields[set[0]] == "" || fields[set[4]] == "" {
			continue
		}
		var parts []string
		for i, k := range set {
			v := strings.TrimSpace(Clean(fields[k]))
			switch {
			case v != "":
				parts = append(parts, v)
			case i == 3:
				parts = append(parts, "N")
			case i == 7:
				parts = append(parts, "E")
			}
		}
		return ParseCoordParams(parts)
	}
	lat, lon := fields["latitude"], fields["longitude"]
	if lat != "" && lon != "" {
		return ParseCoordParams([]string{Clean(lat), Clean(lon)})
	}
	return Coord{}, NoCoordFound
}
