package relevance

import (
	"strings"
	"testing"
)

func TestDefaultLexiconCompiles(t *testing.T) {
	lex := DefaultLexicon()
	if len(lex.categories) == 0 {
		t.Fatal("embedded lexicon compiled to zero categories")
	}

	groups := make(map[Group]bool)
	for _, cat := range lex.categories {
		groups[cat.group] = true
		for _, term := range cat.terms {
			if term != strings.ToLower(term) || strings.ContainsAny(term, "'-éàè") {
				t.Errorf("term %q in %q is not normalized", term, cat.name)
			}
		}
	}
	for _, g := range []Group{GroupSector, GroupExpertise, GroupPosture, GroupRedFlag, GroupReference} {
		if !groups[g] {
			t.Errorf("embedded lexicon is missing group %s", g)
		}
	}
}

func TestCompileSortsTermsLongestFirst(t *testing.T) {
	lex := mustCompile(t, Table{Categories: []Category{{
		Name:   "c",
		Group:  GroupSector,
		Weight: 1,
		Terms:  []string{"mission", "société à mission", "comité de mission"},
	}}})

	terms := lex.categories[0].terms
	for i := 1; i < len(terms); i++ {
		if len(terms[i]) > len(terms[i-1]) {
			t.Fatalf("terms not sorted longest-first: %v", terms)
		}
	}
}

func TestCompileRejectsInvalidTables(t *testing.T) {
	cases := []struct {
		name  string
		table Table
	}{
		{"empty table", Table{}},
		{"unknown group", Table{Categories: []Category{{Name: "x", Group: "bogus", Weight: 1, Terms: []string{"a"}}}}},
		{"zero weight scored group", Table{Categories: []Category{{Name: "x", Group: GroupSector, Terms: []string{"a"}}}}},
		{"no terms", Table{Categories: []Category{{Name: "x", Group: GroupSector, Weight: 1}}}},
		{"duplicate name", Table{Categories: []Category{
			{Name: "x", Group: GroupSector, Weight: 1, Terms: []string{"a"}},
			{Name: "x", Group: GroupSector, Weight: 1, Terms: []string{"b"}},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Compile(tc.table); err == nil {
				t.Error("expected a compile error")
			}
		})
	}
}

func TestLoadLexiconMissingFile(t *testing.T) {
	if _, err := LoadLexicon("does-not-exist.yaml"); err == nil {
		t.Error("expected an error for a missing lexicon file")
	}
}
