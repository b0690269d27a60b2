package dedup

import (
	"context"
	"fmt"

	"tendertriage/types"
)

// RecordIndex is a one-time, read-only index over previously analyzed
// notices, keyed by each of the three dedup key tiers. It is rebuilt from a
// single bulk read at the start of every batch run and is immutable
// afterwards, so concurrent lookups need no locking.
type RecordIndex struct {
	byUUID      map[string]types.StoredRecord
	byComposite map[string]types.StoredRecord
	bySecondary map[string]types.StoredRecord
	byID        map[string]types.StoredRecord
}

// BuildIndex performs the one blocking read of a batch run and indexes the
// result. A store failure propagates: triaging against a silently empty index
// would re-create every known notice.
func BuildIndex(ctx context.Context, store RecordStore) (*RecordIndex, error) {
	records, err := store.BulkReadAnalyzed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build record index: %w", err)
	}
	return NewRecordIndex(records), nil
}

// NewRecordIndex indexes an already-fetched record set.
func NewRecordIndex(records []types.StoredRecord) *RecordIndex {
	ix := &RecordIndex{
		byUUID:      make(map[string]types.StoredRecord, len(records)),
		byComposite: make(map[string]types.StoredRecord, len(records)),
		bySecondary: make(map[string]types.StoredRecord, len(records)),
		byID:        make(map[string]types.StoredRecord, len(records)),
	}
	for _, rec := range records {
		ix.byID[rec.ID] = rec
		if rec.UUIDKey != "" {
			ix.byUUID[rec.UUIDKey] = rec
		}
		if rec.CompositeKey != "" {
			ix.byComposite[rec.CompositeKey] = rec
		}
		if rec.SecondaryKey != "" {
			ix.bySecondary[rec.SecondaryKey] = rec
		}
	}
	return ix
}

// Len reports how many notices carry at least a composite key.
func (ix *RecordIndex) Len() int {
	return len(ix.byComposite)
}

// Get returns the stored record behind a match result.
func (ix *RecordIndex) Get(match *types.MatchResult) (types.StoredRecord, bool) {
	if match == nil {
		return types.StoredRecord{}, false
	}
	rec, ok := ix.byID[match.MatchedID]
	return rec, ok
}
