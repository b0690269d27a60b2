package dedup

import (
	"tendertriage/types"
)

// Resolve probes the index one tier at a time, highest reliability first, and
// stops at the first hit. Returns nil when no tier matches. Pure and
// lock-free; safe for concurrent use over the same index.
func Resolve(keys types.DedupKeys, ix *RecordIndex) *types.MatchResult {
	if keys.UUIDKey != "" {
		if rec, ok := ix.byUUID[keys.UUIDKey]; ok {
			return &types.MatchResult{MatchedID: rec.ID, Strategy: types.MatchUUID}
		}
	}
	if keys.CompositeKey != "" {
		if rec, ok := ix.byComposite[keys.CompositeKey]; ok {
			return &types.MatchResult{MatchedID: rec.ID, Strategy: types.MatchComposite}
		}
	}
	if keys.SecondaryKey != "" {
		if rec, ok := ix.bySecondary[keys.SecondaryKey]; ok {
			return &types.MatchResult{MatchedID: rec.ID, Strategy: types.MatchSecondary}
		}
	}
	return nil
}

// ResolveBatch resolves N incoming notices against one shared index in a
// single pass: O(N) after the one-time index build, instead of one store
// round-trip per notice. The result slice is aligned with the input; entries
// with no match are nil.
func ResolveBatch(records []*types.CanonicalRecord, ix *RecordIndex) []*types.MatchResult {
	results := make([]*types.MatchResult, len(records))
	for i, rec := range records {
		if rec == nil {
			continue
		}
		results[i] = Resolve(GenerateKeys(rec), ix)
	}
	return results
}
