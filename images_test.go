package wikikb

import (
	"reflect"
	"testing"
)

var snezka = `
{{Short description|Mountain on the Czech–Polish border}}
{{Infobox mountain
| name        = Sněžka
| photo       = Sněžka 2016.jpg
| photo_caption = Sněžka from the north
| elevation_m = 1603
| coordinates = {{coord|50|44|10|N|15|44|24|E|type:mountain_region:CZ}}
}}
'''Sněžka''' ({{lang-pl|Śnieżka}}) is the highest mountain of the [[Krkonoše]].

== Geology ==
[[File:Snezka geology map.svg|thumb|right|200px|Rocks of the summit, after [[Karel Čapek|Čapek]]'s sketch]]
The summit is built of [[hornfels]].<ref>[http://example.org/snezka Summit rocks], accessed 2020</ref>
<!--[[File:Old summit hut.jpg|thumb|The hut before 1967]]-->

== Tourism ==
[[Image:Snezka cable car.JPG| thumb | left | 150px | The cable car from [[Pec pod Sněžkou]] ]]
[[ File:Summit chapel.jpeg|thumb|The chapel of St. Lawrence]]
<nowiki>[[File:Not a file.jpg]]</nowiki>
Visitor numbers are in [[File:Snezka visitors.pdf|the yearly report]].

== References ==
{{reflist}}

[[Category:Mountains of the Czech Republic]]
[[pl:Śnieżka]]
`

func TestImageSearch(t *testing.T) {
	exp := []string{
		"Snezka geology map.svg",
		"Old summit hut.jpg",
		"Snezka cable car.JPG",
		"Summit chapel.jpeg",
		"Snezka visitors.pdf",
	}
	found := FindFiles(snezka)

	if !reflect.DeepEqual(exp, found) {
		t.Fatalf("Expected %#v, got %#v", exp, found)
	}
}

func TestFindImagesArticle(t *testing.T) {
	exp := []string{
		"Snezka geology map.svg",
		"Snezka cable car.JPG",
		"Summit chapel.jpeg",
	}
	found := DefaultNamespaces.FindImages(snezka)
	if !reflect.DeepEqual(exp, found) {
		t.Fatalf("Expected %#v, got %#v", exp, found)
	}
}

func TestImageUrling(t *testing.T) {
	tests := []struct {
		src string
		exp string
	}{
		{
			"BoredEncrustedShell.JPG",
			"http://upload.wikimedia.org/wikipedia/commons/1/10/BoredEncrustedShell.JPG",
		},
		{
			"AURI B-25.jpg",
			"http://upload.wikimedia.org/wikipedia/commons/9/93/AURI_B-25.jpg",
		},
	}

	for _, test := range tests {
		got := URLForFile(test.src)
		if got != test.exp {
			t.Fatalf("Expected %v, got %v", test.exp, got)
		}
	}
}

func TestFindImagesSkipsComments(t *testing.T) {
	text := `[[File:Keep.png|thumb]] <!-- [[File:Hidden.jpg]] --> [[Image:Map.svg]] [[File:Data.pdf]] [[soubor:Nope.jpg]]`
	exp := []string{"Keep.png", "Map.svg"}
	found := DefaultNamespaces.FindImages(text)
	if !reflect.DeepEqual(exp, found) {
		t.Fatalf("Expected %#v, got %#v", exp, found)
	}
}

func TestImageName(t *testing.T) {
	tests := []struct {
		in, exp string
	}{
		{"Prague.jpg", "Prague.jpg"},
		{" [[File:Prague Castle.JPG|250px|The castle]]", "Prague Castle.JPG"},
		{"Image:Flag.svg <!-- flag -->", "Flag.svg"},
		{"no image here", ""},
		{"Document.pdf", ""},
	}
	for _, test := range tests {
		if got := DefaultNamespaces.ImageName(test.in); got != test.exp {
			t.Errorf("Expected %q for %q, got %q", test.exp, test.in, got)
		}
	}
}
