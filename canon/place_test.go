package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlace(t *testing.T) {
	n := NewPlaceNormalizer(English())
	tests := []struct {
		in  string
		exp string
	}{
		{"[[Prague]],<br>{{flagicon|CZE}} [[Czechoslovakia]]", "Prague, Czechoslovakia"},
		{"[[Vienna]], [[Austria-Hungary|Austria]] (aged 85)", "Vienna, Austria"},
		{"{{plainlist|\n* [[Prague]]\n* [[Brno]]}}", "Prague, Brno"},
		{"{{nowrap|[[Kraków]], [[Poland]]}}<ref>x</ref>", "Kraków, Poland"},
		{"<!-- unknown -->", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.exp, n.Normalize(test.in), "normalizing %q", test.in)
	}
}
