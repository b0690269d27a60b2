package relevance

import (
	"reflect"
	"testing"

	"tendertriage/types"
)

func mustCompile(t *testing.T, table Table) *Lexicon {
	t.Helper()
	lex, err := Compile(table)
	if err != nil {
		t.Fatalf("failed to compile test lexicon: %v", err)
	}
	return lex
}

func findMatch(result types.ScoreResult, category string) *types.CategoryMatch {
	for i := range result.CategoryMatches {
		if result.CategoryMatches[i].Category == category {
			return &result.CategoryMatches[i]
		}
	}
	return nil
}

func TestScoreZeroMatches(t *testing.T) {
	scorer := NewScorer(DefaultLexicon())
	rec := &types.CanonicalRecord{
		Title:       "Achat de sel de déneigement pour la voirie",
		Description: "Livraison sur trois sites communaux.",
		BuyerName:   "Commune de Plouzané",
	}

	result := scorer.Score(rec)
	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
	if result.Confidence != types.ConfidenceLow {
		t.Errorf("confidence = %s, want LOW", result.Confidence)
	}

	verdict := Gate(result)
	if !verdict.Skip || verdict.Priority != types.PrioritySkip {
		t.Errorf("zero-score notice must gate to skip, got %+v", verdict)
	}
}

func TestNestedKeywordsNotDoubleCounted(t *testing.T) {
	lex := mustCompile(t, Table{Categories: []Category{{
		Name:   "mission",
		Group:  GroupExpertise,
		Weight: 10,
		Terms:  []string{"société à mission", "mission", "société"},
	}}})
	scorer := NewScorer(lex)

	rec := &types.CanonicalRecord{Title: "Devenir société à mission"}
	result := scorer.Score(rec)

	m := findMatch(result, "mission")
	if m == nil {
		t.Fatal("expected the mission category to match")
	}
	if !reflect.DeepEqual(m.Terms, []string{"societe a mission"}) {
		t.Errorf("nested keywords must not be double-counted, got %v", m.Terms)
	}
}

func TestStandaloneKeywordOutsideCoveredSpanCounts(t *testing.T) {
	lex := mustCompile(t, Table{Categories: []Category{{
		Name:   "mission",
		Group:  GroupExpertise,
		Weight: 10,
		Terms:  []string{"société à mission", "mission"},
	}}})
	scorer := NewScorer(lex)

	rec := &types.CanonicalRecord{Title: "Société à mission : pilotage de la mission"}
	result := scorer.Score(rec)

	m := findMatch(result, "mission")
	if m == nil {
		t.Fatal("expected the mission category to match")
	}
	if len(m.Terms) != 2 {
		t.Errorf("a standalone hit outside the covered span must count, got %v", m.Terms)
	}
}

func TestKeywordNeedsWordBoundaries(t *testing.T) {
	lex := mustCompile(t, Table{Categories: []Category{{
		Name:   "mission",
		Group:  GroupExpertise,
		Weight: 10,
		Terms:  []string{"mission"},
	}}})
	scorer := NewScorer(lex)

	rec := &types.CanonicalRecord{Title: "Commission d'appel d'offres"}
	if result := scorer.Score(rec); len(result.CategoryMatches) != 0 {
		t.Errorf("keyword inside a longer word must not match, got %+v", result.CategoryMatches)
	}
}

func TestLogGraduatedCategoryScore(t *testing.T) {
	lex := mustCompile(t, Table{Categories: []Category{{
		Name:   "secteur",
		Group:  GroupSector,
		Weight: 10,
		Terms:  []string{"bilan carbone", "décarbonation", "biodiversité"},
	}}})
	scorer := NewScorer(lex)

	// One distinct match: round(ln(2) * 10 * 3.5) = 24.
	one := scorer.Score(&types.CanonicalRecord{Title: "Bilan carbone du territoire"})
	if m := findMatch(one, "secteur"); m == nil || m.Score != 24 {
		t.Errorf("one match: got %+v, want category score 24", m)
	}

	// Three distinct matches: round(ln(4) * 10 * 3.5) = 49 (under the 50 cap).
	three := scorer.Score(&types.CanonicalRecord{
		Title:       "Bilan carbone et décarbonation",
		Description: "Étude sur la biodiversité locale.",
	})
	if m := findMatch(three, "secteur"); m == nil || m.Score != 49 {
		t.Errorf("three matches: got %+v, want category score 49", m)
	}

	// Repetition of one term does not grow the score.
	repeated := scorer.Score(&types.CanonicalRecord{
		Title:       "Bilan carbone",
		Description: "Un bilan carbone, encore un bilan carbone.",
	})
	if m := findMatch(repeated, "secteur"); m == nil || m.Score != 24 {
		t.Errorf("repeated term: got %+v, want category score 24", m)
	}
}

func confidenceLexicon(t *testing.T) *Lexicon {
	t.Helper()
	return mustCompile(t, Table{Categories: []Category{
		{Name: "secteur", Group: GroupSector, Weight: 10, Terms: []string{"bilan carbone"}},
		{Name: "expertise", Group: GroupExpertise, Weight: 10, Terms: []string{"audit rse"}},
		{Name: "posture", Group: GroupPosture, Weight: 3, Terms: []string{"entreprise engagée"}},
	}})
}

func TestConfidenceTiers(t *testing.T) {
	scorer := NewScorer(confidenceLexicon(t))

	// Sector (24) + expertise (24): combined 48 >= 40 with both critical
	// groups matched.
	both := scorer.Score(&types.CanonicalRecord{Title: "Bilan carbone et audit RSE"})
	if both.Confidence != types.ConfidenceHigh {
		t.Errorf("both critical groups: confidence = %s, want HIGH", both.Confidence)
	}

	// One critical group at 24 >= 15.
	one := scorer.Score(&types.CanonicalRecord{Title: "Bilan carbone"})
	if one.Confidence != types.ConfidenceMedium {
		t.Errorf("one critical group: confidence = %s, want MEDIUM", one.Confidence)
	}

	// Posture only: no critical group.
	posture := scorer.Score(&types.CanonicalRecord{Title: "Entreprise engagée"})
	if posture.Confidence != types.ConfidenceLow {
		t.Errorf("posture only: confidence = %s, want LOW", posture.Confidence)
	}
}

func bonusLexicon(t *testing.T) *Lexicon {
	t.Helper()
	return mustCompile(t, Table{Categories: []Category{
		{Name: "secteur", Group: GroupSector, Weight: 10, Terms: []string{"bilan carbone"}},
		{Name: "mission", Group: GroupExpertise, Weight: 12, Signal: SignalMissionExpertise, Terms: []string{"société à mission"}},
		{Name: "references", Group: GroupReference, Terms: []string{"ademe"}},
		{Name: "redflags", Group: GroupRedFlag, Terms: []string{"travaux de construction"}},
	}})
}

func TestReferenceBuyerBonusExcludesMissionBonus(t *testing.T) {
	scorer := NewScorer(bonusLexicon(t))

	// sector 24 + mission expertise round(ln(2)*12*3.5)=29 -> raw 53.
	base := &types.CanonicalRecord{
		Title:     "Bilan carbone et passage en société à mission",
		BuyerName: "Grand groupe industriel",
	}
	noRef := scorer.Score(base)
	if noRef.Score != 53+10 {
		t.Errorf("mission bonus: score = %d, want 63", noRef.Score)
	}

	// With a reference buyer the +15 applies and the mission bonus does not.
	withRef := &types.CanonicalRecord{Title: base.Title, BuyerName: "ADEME"}
	refScore := scorer.Score(withRef)
	if refScore.Score != 53+15 {
		t.Errorf("reference-buyer bonus is exclusive of the mission bonus: score = %d, want 68", refScore.Score)
	}
}

func TestRedFlagPenaltyAndNoSectorPenalty(t *testing.T) {
	scorer := NewScorer(bonusLexicon(t))

	// Red flag subtracts 30 but does not block: sector 24 + mission 29 + 10
	// bonus - 30 = 33.
	flagged := scorer.Score(&types.CanonicalRecord{
		Title:       "Bilan carbone et passage en société à mission",
		Description: "Inclut des travaux de construction.",
	})
	if len(flagged.RedFlags) == 0 {
		t.Fatal("expected a red flag match")
	}
	if flagged.Score != 33 {
		t.Errorf("red-flagged score = %d, want 33", flagged.Score)
	}

	// No sector match: mission 29 + 10 bonus - 15 = 24.
	noSector := scorer.Score(&types.CanonicalRecord{Title: "Passage en société à mission"})
	if noSector.Score != 24 {
		t.Errorf("no-sector score = %d, want 24", noSector.Score)
	}
}

func TestScoreIsPure(t *testing.T) {
	scorer := NewScorer(DefaultLexicon())
	rec := &types.CanonicalRecord{
		Title:       "Accompagnement RSE et bilan carbone",
		Description: "Mission de conseil en stratégie, concertation avec les parties prenantes.",
		BuyerName:   "Région Bretagne",
	}

	first := scorer.Score(rec)
	second := scorer.Score(rec)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("scoring is not deterministic:\n%+v\n%+v", first, second)
	}
}
