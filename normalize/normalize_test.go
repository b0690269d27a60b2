package normalize

import (
	"strings"
	"testing"
)

func TestTextStripsAccentsAndPunctuation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Avis d'annulation", "avis d annulation"},
		{"Société à Mission", "societe a mission"},
		{"  Marché   public :  études ", "marche public etudes"},
		{"RÉNOVATION ÉNERGÉTIQUE", "renovation energetique"},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTextHyphenAndApostropheVariantsCollapse(t *testing.T) {
	variants := []string{"avis d'annulation", "avis d-annulation", "avis d annulation"}
	want := Text(variants[0])
	for _, v := range variants {
		if got := Text(v); got != want {
			t.Errorf("variant %q normalized to %q, want %q", v, got, want)
		}
	}
}

func TestKeyComponentTruncates(t *testing.T) {
	long := strings.Repeat("a", 3*MaxKeyComponentLen)
	got := KeyComponent(long)
	if len(got) != MaxKeyComponentLen {
		t.Errorf("KeyComponent length = %d, want %d", len(got), MaxKeyComponentLen)
	}
}

func TestStripAccentsKeepsNonAccentedRunes(t *testing.T) {
	if got := StripAccents("déjà-vu 42"); got != "deja-vu 42" {
		t.Errorf("StripAccents = %q", got)
	}
}
