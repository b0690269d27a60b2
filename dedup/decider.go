package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tendertriage/normalize"
	"tendertriage/types"
)

// Cancellation patterns, matched against accent-normalized text. Phrase
// patterns are checked before single keywords so a partial word inside a
// longer phrase cannot over-match. Apostrophes and hyphens collapse to
// spaces during normalization, so "avis d'annulation" and "avis d-annulation"
// both reduce to the first phrase.
var (
	cancellationPhrases = []string{
		"avis d annulation",
		"annulation d avis",
		"avis annule",
		"procedure annulee",
	}
	cancellationKeywords = []string{
		"annulation",
		"annule",
		"annulee",
	}
)

// Decide runs the per-record verdict state machine against the resolver's
// output. Pure function: decided once per record, never re-evaluated.
//
//  1. No match: CREATE.
//  2. Match and the notice is a cancellation: CANCEL.
//  3. Match and the notice declares itself a revision: RECTIFY.
//  4. Match, neither of the above: SKIP (unchanged duplicate).
func Decide(rec *types.CanonicalRecord, match *types.MatchResult) types.Decision {
	if match == nil {
		return types.Decision{Action: types.ActionCreate}
	}

	if IsCancellation(rec) {
		return types.Decision{Action: types.ActionCancel, ExistingID: match.MatchedID}
	}

	if declaresRevision(rec) {
		return types.Decision{Action: types.ActionRectify, ExistingID: match.MatchedID}
	}

	return types.Decision{Action: types.ActionSkip, Reason: "unchanged duplicate"}
}

// IsCancellation detects a cancellation notice. Checks run in decreasing
// priority: the explicit lifecycle state flag, then the nature label and
// nature code, then — lowest-priority fallback — the free-text title.
func IsCancellation(rec *types.CanonicalRecord) bool {
	if rec.State == types.StateCancelled {
		return true
	}
	if containsCancellation(rec.NatureLabel) || containsCancellation(rec.NatureCode) {
		return true
	}
	return containsCancellation(rec.Title)
}

func containsCancellation(text string) bool {
	if text == "" {
		return false
	}
	n := normalize.Text(text)
	for _, phrase := range cancellationPhrases {
		if strings.Contains(n, phrase) {
			return true
		}
	}
	for _, kw := range cancellationKeywords {
		if containsWord(n, kw) {
			return true
		}
	}
	return false
}

// containsWord matches kw as a whole word so "annule" does not fire on
// substrings of unrelated words.
func containsWord(text, kw string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || text[start-1] == ' '
		afterOK := end == len(text) || text[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

// declaresRevision reports whether the notice links itself to an earlier
// publication, either via a linked-notice reference or a prior-notices
// reference.
func declaresRevision(rec *types.CanonicalRecord) bool {
	return strings.TrimSpace(rec.LinkedNoticeRef) != "" || strings.TrimSpace(rec.PriorNoticesRef) != ""
}

// Decider wires the verdict state machine to a record store for the
// single-record path, and to a prebuilt index for batch runs.
type Decider struct {
	store RecordStore
}

// NewDecider creates a decider over an injected store.
func NewDecider(store RecordStore) *Decider {
	return &Decider{store: store}
}

// Resolve triages one notice using the store's key lookup (no index build).
func (d *Decider) Resolve(ctx context.Context, rec *types.CanonicalRecord) (types.Decision, error) {
	keys := GenerateKeys(rec)

	existing, strategy, err := d.store.FindByCompositeOrSecondaryKey(ctx, keys)
	if errors.Is(err, ErrNotFound) {
		return Decide(rec, nil), nil
	}
	if err != nil {
		return types.Decision{}, fmt.Errorf("failed to look up notice by keys: %w", err)
	}

	return Decide(rec, &types.MatchResult{MatchedID: existing.ID, Strategy: strategy}), nil
}

// ResolveWithIndex triages one notice against a prebuilt index. Pure.
func (d *Decider) ResolveWithIndex(rec *types.CanonicalRecord, ix *RecordIndex) types.Decision {
	return Decide(rec, Resolve(GenerateKeys(rec), ix))
}
