package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustin/go-wikikb"
)

const writerPage = `{{Infobox writer
| name        = Karel Čapek
| birth_date  = {{birth date|1890|1|9}}
| birth_place = [[Malé Svatoňovice]]
| occupation  = Writer
}}
'''Karel Čapek''' was a Czech writer.

[[Category:1890 births]]
[[Category:Czech writers]]
`

const cityPage = `{{Infobox settlement
| name             = Brno
| population_total = 380000
| subdivision_name = [[Czech Republic]]
}}
'''Brno''' is a city.

[[Category:Cities in the Czech Republic]]
`

func loadEnglish(t *testing.T) *Patterns {
	p, err := LoadPatterns("../data/patterns_en.yaml")
	require.NoError(t, err)
	return p
}

func TestLoadPatterns(t *testing.T) {
	p := loadEnglish(t)
	assert.Equal(t, Kinds, p.Priority())

	pat, ok := p.Pattern(Settlement)
	require.True(t, ok)
	assert.Contains(t, pat.Fields, "population total")
}

func TestClassify(t *testing.T) {
	p := loadEnglish(t)
	tests := []struct {
		title string
		text  string
		exp   Kind
	}{
		{"Karel Čapek", writerPage, Person},
		{"Brno", cityPage, Settlement},
		{"Europe", "'''Europe''' is a continent.", Continent},
		{"Vltava", "{{Infobox river|name=Vltava|mouth=[[Elbe]]|length=430 km}}\n[[Category:Rivers of the Czech Republic]]", Watercourse},
	}
	for _, test := range tests {
		sp := wikikb.ParseStructure(test.text)
		score := p.Classify(test.title, sp)
		got, ok := score.Winner()
		require.True(t, ok, "no winner for %v: %v", test.title, score)
		assert.Equal(t, test.exp, got, "%v scored %v", test.title, score)
	}
}

func TestClassifyScores(t *testing.T) {
	p := loadEnglish(t)
	score := p.Classify("Karel Čapek", wikikb.ParseStructure(writerPage))
	// one category, one infobox pattern, three fields
	assert.Equal(t, 5, score.Points(Person))
	assert.Equal(t, 0, score.Points(Event))
}

func TestClassifyNothing(t *testing.T) {
	p := loadEnglish(t)
	score := p.Classify("Foo", wikikb.ParseStructure("'''Foo''' is a thing."))
	_, ok := score.Winner()
	assert.False(t, ok, "got a winner from %v", score)
	assert.False(t, score.Tied())
}

func TestClassifyDeterministic(t *testing.T) {
	p := loadEnglish(t)
	sp := wikikb.ParseStructure(writerPage)
	first, _ := p.Classify("Karel Čapek", sp).Winner()
	for i := 0; i < 10; i++ {
		again, _ := p.Classify("Karel Čapek", sp).Winner()
		assert.Equal(t, first, again)
	}
}

func TestTieGoesToPriority(t *testing.T) {
	doc := func(kinds ...string) string {
		var b strings.Builder
		b.WriteString("kinds:\n")
		for _, k := range kinds {
			b.WriteString("  - kind: " + k + "\n    categories: ['^Things$']\n")
		}
		return b.String()
	}
	sp := wikikb.ParseStructure("[[Category:Things]]")

	p, err := ParsePatterns(strings.NewReader(doc("settlement", "person")))
	require.NoError(t, err)
	score := p.Classify("x", sp)
	got, _ := score.Winner()
	assert.Equal(t, Settlement, got)
	assert.True(t, score.Tied())

	p, err = ParsePatterns(strings.NewReader(doc("person", "settlement")))
	require.NoError(t, err)
	got, _ = p.Classify("x", sp).Winner()
	assert.Equal(t, Person, got)
}

func TestParsePatternsErrors(t *testing.T) {
	_, err := ParsePatterns(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoPatterns)

	_, err = ParsePatterns(strings.NewReader("kinds:\n  - kind: dragon\n"))
	assert.ErrorContains(t, err, "unknown kind")

	_, err = ParsePatterns(strings.NewReader("kinds:\n  - kind: person\n  - kind: person\n"))
	assert.ErrorContains(t, err, "twice")

	_, err = ParsePatterns(strings.NewReader("kinds:\n  - kind: person\n    title: ['(']\n"))
	assert.Error(t, err)

	_, err = LoadPatterns("testdata/nonexistent.yaml")
	assert.ErrorIs(t, err, wikikb.ErrResourceMissing)
}

func TestKindParts(t *testing.T) {
	assert.Equal(t, "geo", Island.Family())
	assert.Equal(t, "island", Island.Sub())
	assert.Equal(t, "person", Person.Family())
	assert.Equal(t, "", Person.Sub())
}
