// Package relevance scores tender notices against a weighted keyword lexicon
// and gates the expensive downstream analysis on the result.
package relevance

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"tendertriage/normalize"

	"gopkg.in/yaml.v3"
)

// Group names one dimension of relevance in the lexicon.
type Group string

const (
	GroupSector    Group = "sector"    // target sectors, highest weight
	GroupExpertise Group = "expertise" // engagement/expertise types, medium weight
	GroupPosture   Group = "posture"   // engagement-posture signals, bonus-only weight
	GroupRedFlag   Group = "red_flag"  // disqualifying signals, penalty-only
	GroupReference Group = "reference" // reference-buyer allow-list, bonus-only
)

// Signal tags a category for the bonus/penalty pass. Most categories carry
// none.
type Signal string

const (
	SignalMissionExpertise Signal = "mission_expertise"
	SignalMissionSector    Signal = "mission_sector"
	SignalGovernance       Signal = "governance"
)

// Category is one named group of weighted keywords in the lexicon table.
type Category struct {
	Name   string   `yaml:"name"`
	Group  Group    `yaml:"group"`
	Weight float64  `yaml:"weight"`
	Signal Signal   `yaml:"signal,omitempty"`
	Terms  []string `yaml:"terms"`
}

// Table is the raw lexicon as loaded from YAML, before compilation.
type Table struct {
	Categories []Category `yaml:"categories"`
}

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// compiledCategory holds a category with its terms normalized and sorted
// longest-first so the overlap scan prefers the longest matching phrase.
type compiledCategory struct {
	name   string
	group  Group
	weight float64
	signal Signal
	terms  []string
}

// Lexicon is the compiled, immutable pattern set. Compile once at process
// start; scoring over it is pure and safe for concurrent use.
type Lexicon struct {
	categories []compiledCategory
}

// DefaultLexicon compiles the embedded lexicon table. The embedded table is
// part of the build, so a failure here is a programming error.
func DefaultLexicon() *Lexicon {
	lex, err := parseAndCompile(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
	return lex
}

// LoadLexicon reads and compiles a lexicon table from a YAML file, allowing
// deployments to override the embedded default.
func LoadLexicon(path string) (*Lexicon, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	return parseAndCompile(b)
}

func parseAndCompile(b []byte) (*Lexicon, error) {
	var table Table
	if err := yaml.Unmarshal(b, &table); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	return Compile(table)
}

// Compile validates and normalizes a lexicon table.
func Compile(table Table) (*Lexicon, error) {
	if len(table.Categories) == 0 {
		return nil, fmt.Errorf("lexicon has no categories")
	}

	lex := &Lexicon{categories: make([]compiledCategory, 0, len(table.Categories))}
	seen := make(map[string]bool)

	for _, cat := range table.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("lexicon category with empty name")
		}
		if seen[cat.Name] {
			return nil, fmt.Errorf("duplicate lexicon category %q", cat.Name)
		}
		seen[cat.Name] = true

		switch cat.Group {
		case GroupSector, GroupExpertise, GroupPosture, GroupRedFlag, GroupReference:
		default:
			return nil, fmt.Errorf("category %q has unknown group %q", cat.Name, cat.Group)
		}
		if cat.Group == GroupSector || cat.Group == GroupExpertise || cat.Group == GroupPosture {
			if cat.Weight <= 0 {
				return nil, fmt.Errorf("category %q must have a positive weight", cat.Name)
			}
		}
		if len(cat.Terms) == 0 {
			return nil, fmt.Errorf("category %q has no terms", cat.Name)
		}

		terms := make([]string, 0, len(cat.Terms))
		termSeen := make(map[string]bool)
		for _, t := range cat.Terms {
			n := normalize.Text(t)
			if n == "" || termSeen[n] {
				continue
			}
			termSeen[n] = true
			terms = append(terms, n)
		}
		if len(terms) == 0 {
			return nil, fmt.Errorf("category %q has no usable terms after normalization", cat.Name)
		}

		// Longest first, then lexicographic for determinism.
		sort.Slice(terms, func(i, j int) bool {
			if len(terms[i]) != len(terms[j]) {
				return len(terms[i]) > len(terms[j])
			}
			return terms[i] < terms[j]
		})

		lex.categories = append(lex.categories, compiledCategory{
			name:   cat.Name,
			group:  cat.Group,
			weight: cat.Weight,
			signal: cat.Signal,
			terms:  terms,
		})
	}

	return lex, nil
}
