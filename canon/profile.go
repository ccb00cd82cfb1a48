// Package canon holds the canonicalizers: dates, aliases, places and
// units.  They all consult a Profile for the language dependent bits.
package canon

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dustin/go-wikikb"
)

// A Profile is the per language table the canonicalizers consult.
type Profile struct {
	// Code of the wiki language, e.g. "en".  The first alias with no
	// language of its own is tagged with it.
	Language string `yaml:"language"`
	// Prefix of article links, e.g. "https://en.wikipedia.org/wiki/".
	LinkBase string `yaml:"link_base"`

	Namespaces wikikb.Namespaces `yaml:"namespaces"`

	// Month names and abbreviations, lower case, to month number.
	Months map[string]int `yaml:"months"`
	// Markers of years before the current era.
	BCMarkers []string `yaml:"bc_markers"`
	// Markers of current era years, removed before parsing.
	ADMarkers []string `yaml:"ad_markers"`
	// Word for century, and phrases for its halves.
	CenturyWords []string `yaml:"century_words"`
	FirstHalf    []string `yaml:"first_half"`
	SecondHalf   []string `yaml:"second_half"`
	// Words joining two ends of a range besides dashes.
	RangeWords []string `yaml:"range_words"`
	// Templates holding y|m|d slots.
	DateTemplates []string `yaml:"date_templates"`
	// Templates holding a julian and a gregorian date.
	DualDateTemplates []string `yaml:"dual_date_templates"`
	// Templates whose last parameter is an approximate value.
	CircaTemplates []string `yaml:"circa_templates"`
	// Words that may stand next to a bare year, as in "c. 1850".
	CircaWords []string `yaml:"circa_words"`

	// Free text language names, lower case, to codes.
	Languages map[string]string `yaml:"languages"`
	// Abbreviations after a comma that belong to the name before it.
	TitleAbbreviations []string `yaml:"title_abbreviations"`
	// Words introducing an alternative form inside parentheses.
	AlternativeWords []string `yaml:"alternative_words"`
	// Templates turning their parameters into a list.
	ListTemplates []string `yaml:"list_templates"`
	// Templates rendering only an icon.
	IconTemplates []string `yaml:"icon_templates"`
	// Words of an age annotation, as in "(aged 85)".
	AgeWords []string `yaml:"age_words"`

	// Templates and parser functions showing a formatted number, as
	// in {{formatnum:1234}} or {{val|12|u=km}}.
	NumberTemplates []string `yaml:"number_templates"`

	DecimalSeparator  string `yaml:"decimal_separator"`
	GroupingSeparator string `yaml:"grouping_separator"`

	// Logical field name to the infobox keys carrying it.
	Fields map[string][]string `yaml:"fields"`
	// Category keywords for gender detection.
	FemaleWords []string `yaml:"female_words"`
	MaleWords   []string `yaml:"male_words"`
}

// English is the built in profile.
func English() *Profile {
	return &Profile{
		Language:   "en",
		LinkBase:   "https://en.wikipedia.org/wiki/",
		Namespaces: wikikb.DefaultNamespaces,
		Months: map[string]int{
			"january": 1, "february": 2, "march": 3, "april": 4,
			"may": 5, "june": 6, "july": 7, "august": 8,
			"september": 9, "october": 10, "november": 11, "december": 12,
			"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
			"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
		},
		BCMarkers:    []string{"BCE", "BC", "B.C.E.", "B.C."},
		ADMarkers:    []string{"CE", "AD", "A.D.", "C.E."},
		CenturyWords: []string{"century"},
		FirstHalf:    []string{"first half of the", "1st half of the", "early"},
		SecondHalf:   []string{"second half of the", "2nd half of the", "late"},
		RangeWords:   []string{"to", "until"},
		DateTemplates: []string{
			"birth date", "birth date and age", "birth date and age2",
			"death date", "death date and age", "birth year", "birth year and age",
			"death year", "death year and age", "start date", "start date and age",
			"end date", "end date and age", "dob", "bda", "dda", "film date",
		},
		DualDateTemplates: []string{"oldstyledate", "oldstyledatedy", "oldstyledatenoyear", "os-ns", "julian-gregorian"},
		CircaTemplates:    []string{"circa", "c.", "ca", "floruit", "fl."},
		CircaWords:        []string{"c.", "c", "ca.", "ca", "circa", "approx.", "about", "around", "fl.", "?"},
		Languages: map[string]string{
			"english": "en", "czech": "cs", "slovak": "sk", "german": "de",
			"french": "fr", "italian": "it", "spanish": "es", "polish": "pl",
			"russian": "ru", "hungarian": "hu", "latin": "la", "greek": "el",
			"dutch": "nl", "portuguese": "pt", "ukrainian": "uk", "japanese": "ja",
			"chinese": "zh", "arabic": "ar", "swedish": "sv", "norwegian": "no",
			"danish": "da", "finnish": "fi", "turkish": "tr", "hebrew": "he",
		},
		TitleAbbreviations: []string{
			"Jr.", "Jr", "Sr.", "Sr", "II", "III", "IV", "SJ", "S.J.", "OP", "O.P.",
			"OSB", "O.S.B.", "OFM", "O.F.M.", "PhD", "Ph.D.", "MD", "M.D.",
			"KBE", "OBE", "MBE", "CBE", "FRS", "Esq.",
		},
		AlternativeWords: []string{"also", "or", "aka", "a.k.a.", "also known as"},
		ListTemplates:    []string{"plainlist", "plain list", "ubl", "unbulleted list", "hlist", "flatlist", "flat list", "bulleted list", "ublist"},
		IconTemplates:    []string{"flag icon", "flagicon", "flagdeco", "flagicon image", "flag image", "icon"},
		AgeWords:         []string{"aged", "age"},

		NumberTemplates:  []string{"formatnum", "nts", "ntsh", "nts-", "val", "num", "round", "decimals"},

		DecimalSeparator:  ".",
		GroupingSeparator: ",",

		Fields: map[string][]string{
			"name":             {"name", "official name", "conventional long name", "common name"},
			"native name":      {"native name", "native name lang", "name native", "local name"},
			"other names":      {"other names", "alias", "aliases", "also known as", "other name"},
			"birth name":       {"birth name", "birthname"},
			"nickname":         {"nickname", "nicknames"},
			"pseudonym":        {"pseudonym", "pen name", "pseudonyms"},
			"birth date":       {"birth date", "born", "date of birth"},
			"birth place":      {"birth place", "place of birth"},
			"death date":       {"death date", "died", "date of death"},
			"death place":      {"death place", "place of death"},
			"nationality":      {"nationality", "citizenship"},
			"occupation":       {"occupation", "occupations", "profession"},
			"gender":           {"gender", "sex"},
			"capital":          {"capital"},
			"population":       {"population total", "population estimate", "population census", "population"},
			"area":             {"area total km2", "area km2", "area total", "area", "area total sq mi"},
			"established":      {"established date", "established date1", "sovereignty date", "founded", "date start", "year start", "life span"},
			"dissolved":        {"date end", "year end", "dissolved", "abolished"},
			"country":          {"subdivision name", "country", "countries"},
			"countries":        {"countries", "basin countries", "country", "subdivision name", "location"},
			"elevation":        {"elevation m", "elevation", "elevation ft", "height m", "height"},
			"length":           {"length km", "length", "length mi"},
			"basin area":       {"basin size", "basin area", "basin size km2", "drainage area"},
			"discharge":        {"discharge1 avg", "discharge", "discharge avg", "average discharge"},
			"source":           {"source1", "source", "source1 location"},
			"mouth":            {"mouth", "mouth location", "mouth place"},
			"depth":            {"max depth", "max-depth", "depth", "average depth", "mean-depth"},
			"founded":          {"founded", "foundation", "formation", "established", "founded date"},
			"organisation end": {"defunct", "dissolved", "extinction", "fate date"},
			"location":         {"location", "headquarters", "hq location", "place", "location city"},
			"type":             {"type", "organization type", "genre", "industry"},
			"start":            {"date", "start date", "begin", "date start"},
			"end":              {"end date", "end", "date end"},
			"image":            {"image", "image name", "image skyline", "image map", "image flag", "flag", "logo", "photo"},
		},
		FemaleWords: []string{"women", "female", "actresses", "queens", "she", "her"},
		MaleWords:   []string{"men", "male", "actors", "kings", "he", "his"},
	}
}

// LoadProfile reads a YAML profile and lays it over the English
// one.  Lists in the file replace the defaults, maps are merged
// into them.  A file that isn't there yields the English profile
// and a wrapped wikikb.ErrResourceMissing.
func LoadProfile(fn string) (*Profile, error) {
	p := English()
	data, err := os.ReadFile(fn)
	if errors.Is(err, os.ErrNotExist) {
		return p, fmt.Errorf("%w: %v", wikikb.ErrResourceMissing, fn)
	}
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return English(), fmt.Errorf("parsing profile %v: %w", fn, err)
	}
	return p, nil
}

// Keys returns the infobox keys for a logical field.
func (p *Profile) Keys(field string) []string {
	if keys, ok := p.Fields[field]; ok {
		return keys
	}
	return []string{field}
}

// LanguageCode looks a free text language name up.
func (p *Profile) LanguageCode(name string) (string, bool) {
	code, ok := p.Languages[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

func (p *Profile) isTitleAbbreviation(tok string) bool {
	for _, a := range p.TitleAbbreviations {
		if strings.EqualFold(tok, a) {
			return true
		}
	}
	return false
}

func foldedIn(name string, names []string) bool {
	for _, n := range names {
		if name == wikikb.FoldKey(n) {
			return true
		}
	}
	return false
}
