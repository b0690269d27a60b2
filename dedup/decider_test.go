package dedup

import (
	"context"
	"testing"

	"tendertriage/types"
)

func TestDecideNoMatchCreates(t *testing.T) {
	d := Decide(&types.CanonicalRecord{Title: "Nouveau marché"}, nil)
	if d.Action != types.ActionCreate {
		t.Errorf("action = %s, want CREATE", d.Action)
	}
}

func TestDecideUnchangedDuplicateSkips(t *testing.T) {
	match := &types.MatchResult{MatchedID: "existing", Strategy: types.MatchComposite}
	d := Decide(&types.CanonicalRecord{Title: "Marché de conseil"}, match)
	if d.Action != types.ActionSkip {
		t.Fatalf("action = %s, want SKIP", d.Action)
	}
	if d.Reason == "" {
		t.Error("skip verdict should carry a reason")
	}
}

func TestDecideCancellationByTitleWinsOverSkip(t *testing.T) {
	// A notice whose title carries "avis d'annulation" and which matches an
	// existing record must be CANCEL, not SKIP.
	match := &types.MatchResult{MatchedID: "existing", Strategy: types.MatchComposite}
	rec := &types.CanonicalRecord{Title: "Avis d'annulation : marché de conseil"}

	d := Decide(rec, match)
	if d.Action != types.ActionCancel {
		t.Fatalf("action = %s, want CANCEL", d.Action)
	}
	if d.ExistingID != "existing" {
		t.Errorf("existing id = %q, want %q", d.ExistingID, "existing")
	}
}

func TestDecideCancellationDetectionPriorities(t *testing.T) {
	match := &types.MatchResult{MatchedID: "x", Strategy: types.MatchUUID}

	cases := []struct {
		name string
		rec  types.CanonicalRecord
		want types.Action
	}{
		{"state flag", types.CanonicalRecord{State: types.StateCancelled, Title: "Marché de services"}, types.ActionCancel},
		{"nature label", types.CanonicalRecord{NatureLabel: "Annulation", Title: "Marché de services"}, types.ActionCancel},
		{"nature code", types.CanonicalRecord{NatureCode: "AVIS-ANNULE", Title: "Marché de services"}, types.ActionCancel},
		{"hyphen variant in title", types.CanonicalRecord{Title: "Avis d-annulation de procédure"}, types.ActionCancel},
		{"accented keyword", types.CanonicalRecord{Title: "Marché annulé par l'acheteur"}, types.ActionCancel},
		{"no cancellation signal", types.CanonicalRecord{Title: "Marché de services"}, types.ActionSkip},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if d := Decide(&tc.rec, match); d.Action != tc.want {
				t.Errorf("action = %s, want %s", d.Action, tc.want)
			}
		})
	}
}

func TestCancellationKeywordDoesNotFireInsideWords(t *testing.T) {
	// "annule" must not fire on substrings of unrelated words.
	rec := &types.CanonicalRecord{Title: "Commission d'appel d'offres, granules de bois"}
	if IsCancellation(rec) {
		t.Error("substring of an unrelated word must not read as a cancellation")
	}
}

func TestDecideRevisionLinkageRectifies(t *testing.T) {
	match := &types.MatchResult{MatchedID: "orig", Strategy: types.MatchUUID}

	linked := &types.CanonicalRecord{Title: "Rectificatif", LinkedNoticeRef: "25-101"}
	if d := Decide(linked, match); d.Action != types.ActionRectify || d.ExistingID != "orig" {
		t.Errorf("linked-notice ref: got %+v, want RECTIFY/orig", d)
	}

	prior := &types.CanonicalRecord{Title: "Rectificatif", PriorNoticesRef: "25-001;25-002"}
	if d := Decide(prior, match); d.Action != types.ActionRectify {
		t.Errorf("prior-notices ref: got %+v, want RECTIFY", d)
	}
}

func TestDecideCancellationBeatsRevisionLinkage(t *testing.T) {
	match := &types.MatchResult{MatchedID: "orig", Strategy: types.MatchUUID}
	rec := &types.CanonicalRecord{Title: "Avis d'annulation", LinkedNoticeRef: "25-101"}
	if d := Decide(rec, match); d.Action != types.ActionCancel {
		t.Errorf("action = %s, want CANCEL to take precedence", d.Action)
	}
}

func TestDeciderResolveSingleRecordPath(t *testing.T) {
	existing := &types.CanonicalRecord{Title: "Audit RSE", BuyerName: "Région", Deadline: deadline(t, "2025-05-01")}
	store := &fakeStore{records: []types.StoredRecord{
		{ID: "stored", CompositeKey: GenerateKeys(existing).CompositeKey},
	}}
	decider := NewDecider(store)

	d, err := decider.Resolve(context.Background(), existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Action != types.ActionSkip {
		t.Errorf("duplicate via store lookup: action = %s, want SKIP", d.Action)
	}

	fresh := &types.CanonicalRecord{Title: "Autre marché", BuyerName: "Ville"}
	d, err = decider.Resolve(context.Background(), fresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Action != types.ActionCreate {
		t.Errorf("unknown record: action = %s, want CREATE", d.Action)
	}
}
