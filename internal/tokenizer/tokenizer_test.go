package tokenizer

import (
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func TestSplitWords_KeepsBrackets(t *testing.T) {
	got := SplitWords("vous…[00:00:12] Salut à tous [King Krule – Lonely Blue] bam")
	want := []string{"vous…[00:00:12]", "salut", "à", "tous", "[king", "krule", "–", "lonely", "blue]", "bam"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitWords = %q, want %q", got, want)
	}
}

func TestSplitWords_Junk(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"12 chats", []string{"chats"}},
		{"coûte 30€ ou 15%", []string{"coûte", "ou"}},
		{"prix 20$", []string{"prix"}},
		{"*** fin", []string{"fin"}},
		{"**** garde", []string{"****", "garde"}},
		{"3e étage", []string{"3e", "étage"}},
		{"", []string{}},
		{"   \t\n  ", []string{}},
	}
	for _, c := range cases {
		got := SplitWords(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitWords(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSplitWords_NormalizesWhitespace(t *testing.T) {
	got := SplitWords("  Bonjour   à\ttous \n les  amis ")
	want := []string{"bonjour", "à", "tous", "les", "amis"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitWords = %q, want %q", got, want)
	}
}

func TestSplitWords_ComposesDiacritics(t *testing.T) {
	// "e" + combining acute vs precomposed "é".
	got := SplitWords("E\u0301te\u0301 été")
	if len(got) != 2 || got[0] != got[1] || got[0] != "été" {
		t.Errorf("SplitWords = %q, want two identical \"été\" tokens", got)
	}
}

func TestSplitWords_NeverReturnsJunk(t *testing.T) {
	junk := regexp.MustCompile(`^[0-9]+([€$£%]+)?$`)
	inputs := []string{
		"1 2 3 4 5",
		"  a  1%  b 22€€ c ",
		"le 14 juillet 1789 et 100% des 2$",
		" mot  42",
	}
	for _, in := range inputs {
		for _, tok := range SplitWords(in) {
			if strings.TrimSpace(tok) == "" {
				t.Errorf("SplitWords(%q) returned empty token", in)
			}
			if junk.MatchString(tok) {
				t.Errorf("SplitWords(%q) returned junk token %q", in, tok)
			}
		}
	}
}

func TestGroupWords(t *testing.T) {
	got := GroupWords(SplitWords("vous… Salut à tous double double"))
	want := map[string]int{"vous…": 1, "salut": 1, "à": 1, "tous": 1, "double": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupWords = %v, want %v", got, want)
	}
}

func TestGroupWordsInList(t *testing.T) {
	got := GroupWordsInList([]string{"Bonjour Podcast Podcast", "épisode Podcast"})
	want := map[string]int{"bonjour": 1, "podcast": 3, "épisode": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupWordsInList = %v, want %v", got, want)
	}
}

func TestGroupWordsInList_TotalMatchesTokenCount(t *testing.T) {
	paragraphs := []string{"un deux 3 trois", "*** quatre 50% cinq", "", "six six six"}
	tokens := 0
	for _, p := range paragraphs {
		tokens += len(SplitWords(p))
	}
	total := 0
	for _, n := range GroupWordsInList(paragraphs) {
		total += n
	}
	if total != tokens {
		t.Errorf("total count = %d, want %d", total, tokens)
	}
}

func TestGroupWordsInList_OrderIndependent(t *testing.T) {
	a := GroupWordsInList([]string{"alpha beta", "beta gamma", "gamma gamma"})
	b := GroupWordsInList([]string{"gamma gamma", "alpha beta", "beta gamma"})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("order changed counts: %v vs %v", a, b)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: "  Bonjour ", want: "bonjour"},
		{in: "ÉTÉ", want: "été"},
		{in: "C’EST", want: "c’est"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
