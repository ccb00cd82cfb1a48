package wikikb

import (
	"reflect"
	"testing"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		in, exp string
	}{
		{"a<!-- b -->c", "ac"},
		{"a<!-- b --> c <!--d-->e", "a c e"},
		{"keep <!-- unterminated", "keep "},
	}
	for _, test := range tests {
		if got := StripComments(test.in); got != test.exp {
			t.Errorf("Expected %q for %q, got %q", test.exp, test.in, got)
		}
	}
}

func TestStripRefs(t *testing.T) {
	tests := []struct {
		in, exp string
	}{
		{`born 1900<ref>{{cite web|url=x}}</ref> in Prague`, "born 1900 in Prague"},
		{`born 1900<ref name="a/b" /> in Prague`, "born 1900 in Prague"},
		{`born<ref name=x>a</ref> 1900<REF>b</REF>`, "born 1900"},
		{`text<ref>never closed`, "text"},
	}
	for _, test := range tests {
		if got := StripRefs(test.in); got != test.exp {
			t.Errorf("Expected %q for %q, got %q", test.exp, test.in, got)
		}
	}
}

func TestStripTables(t *testing.T) {
	in := "before\n{| class=wikitable\n|-\n| a || {|\n| nested\n|}\n|}\nafter"
	if got := StripTables(in); got != "before\n\nafter" {
		t.Fatalf("Expected table removed, got %q", got)
	}
	if got := StripTables("x {| unterminated"); got != "x " {
		t.Fatalf("Expected truncation, got %q", got)
	}
	if got := StripTables("{{foo|}}"); got != "{{foo|}}" {
		t.Fatalf("Expected template untouched, got %q", got)
	}
}

func TestMatchBraces(t *testing.T) {
	s := "x {{a|{{b|c}}|d}} y"
	if end := MatchBraces(s, 2); s[2:end] != "{{a|{{b|c}}|d}}" {
		t.Fatalf("Expected balanced template, got %q", s[2:end])
	}
	s = "{{a|{{b}}"
	if end := MatchBraces(s, 0); end != len(s) {
		t.Fatalf("Expected unbalanced to run to the end, got %v", end)
	}
}

func TestSplitParams(t *testing.T) {
	got := SplitParams("name|a=[[x|y]]|b={{t|1|2}}| c ")
	exp := []string{"name", "a=[[x|y]]", "b={{t|1|2}}", " c "}
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("Expected %#v, got %#v", exp, got)
	}
}

func TestTemplateParams(t *testing.T) {
	tpl := ParseTemplate("{{Birth date and age|1990|3|5|df=yes|DF=no}}")
	if tpl.Name != "birth date and age" {
		t.Fatalf("Expected folded name, got %q", tpl.Name)
	}
	if exp := []string{"1990", "3", "5"}; !reflect.DeepEqual(exp, tpl.Positional()) {
		t.Fatalf("Expected %v, got %v", exp, tpl.Positional())
	}
	if got := tpl.Named()["df"]; got != "yes" {
		t.Fatalf("Expected first df to win, got %q", got)
	}
}

func TestRewriteTemplatesInnermostFirst(t *testing.T) {
	var seen []string
	got := RewriteTemplates("a {{outer|{{inner|x}}}} b", func(t Template) string {
		seen = append(seen, t.Name)
		p := t.Positional()
		if len(p) == 0 {
			return ""
		}
		return p[len(p)-1]
	})
	if got != "a x b" {
		t.Fatalf("Expected %q, got %q", "a x b", got)
	}
	if exp := []string{"inner", "outer"}; !reflect.DeepEqual(exp, seen) {
		t.Fatalf("Expected order %v, got %v", exp, seen)
	}
	if got := StripTemplates("a {{broken|{{x}} b"); got != "a " {
		t.Fatalf("Expected unbalanced template truncated, got %q", got)
	}
}

func TestUnwrapLinks(t *testing.T) {
	tests := []struct {
		in, exp string
	}{
		{"[[Prague]]", "Prague"},
		{"[[Prague|capital]] city", "capital city"},
		{"[[Paris (Texas)|]]", "Paris"},
		{"[[File:X.jpg|thumb|a [[caption]]]]text", "text"},
		{"[[Category:People]]", ""},
		{"[[:Category:People|people]]", "people"},
		{"see [http://example.com the site] or [http://x.org]", "see the site or "},
	}
	for _, test := range tests {
		if got := UnwrapLinks(test.in); got != test.exp {
			t.Errorf("Expected %q for %q, got %q", test.exp, test.in, got)
		}
	}
}

func TestClean(t *testing.T) {
	in := `'''Jiří Novák'''<ref>x</ref> ({{lang-cs|x}}) was a [[Czech people|Czech]]&nbsp;writer<br/>and <small>poet</small>.`
	exp := "Jiří Novák () was a Czech writer and poet."
	if got := Clean(in); got != exp {
		t.Fatalf("Expected %q, got %q", exp, got)
	}
}

func TestFindCategories(t *testing.T) {
	text := "x [[Category:1950 births|Novak]] [[category: Czech writers]]\n" +
		"[[Kategorie:Čeští spisovatelé]] [[Category:1950 births]]"
	exp := []string{"1950 births", "Czech writers", "1950 births"}
	if got := FindCategories(text); !reflect.DeepEqual(exp, got) {
		t.Fatalf("Expected %#v, got %#v", exp, got)
	}
	cs := Namespaces{Category: []string{"Kategorie"}}
	if got := cs.FindCategories(text); !reflect.DeepEqual([]string{"Čeští spisovatelé"}, got) {
		t.Fatalf("Expected czech category, got %#v", got)
	}
}
