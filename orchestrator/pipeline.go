package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tendertriage/analysis"
	"tendertriage/change"
	"tendertriage/config"
	"tendertriage/dedup"
	"tendertriage/relevance"
	"tendertriage/storage"
	"tendertriage/types"
)

// TriageStore is the store surface the pipeline needs: the resolver's read
// interface plus the write paths for the three mutating verdicts.
type TriageStore interface {
	dedup.RecordStore
	SaveAnalyzed(ctx context.Context, rec types.StoredRecord) error
	Delete(ctx context.Context, rec types.StoredRecord) error
}

// NoticeArchive is the optional cold store for full notice records.
type NoticeArchive interface {
	Put(ctx context.Context, record *types.CanonicalRecord) error
	Delete(ctx context.Context, id string) error
}

// Pipeline wires the triage stages together: resolve, decide, classify,
// score, gate, analyze, persist. The store and analyzer are injected so the
// pipeline itself carries no connection lifecycle.
type Pipeline struct {
	Store      TriageStore
	Classifier *change.Classifier
	Scorer     *relevance.Scorer
	Analyzer   analysis.Analyzer // nil disables generation
	Archive    NoticeArchive     // nil disables archiving
}

// NewPipeline builds a pipeline with the default classifier thresholds and
// the embedded lexicon.
func NewPipeline(store TriageStore, analyzer analysis.Analyzer, archive NoticeArchive) *Pipeline {
	return &Pipeline{
		Store:      store,
		Classifier: change.NewClassifier(change.DefaultThresholds()),
		Scorer:     relevance.NewScorer(relevance.DefaultLexicon()),
		Analyzer:   analyzer,
		Archive:    archive,
	}
}

// NoticeResult reports what happened to one notice during a run
type NoticeResult struct {
	Record   *types.CanonicalRecord `json:"record,omitempty"`
	Decision types.Decision         `json:"decision"`
	Verdict  *types.GateVerdict     `json:"verdict,omitempty"`
	Score    *types.ScoreResult     `json:"score,omitempty"`
	Changes  *types.ChangeSet       `json:"changes,omitempty"`
	Status   string                 `json:"status"` // "new", "duplicate", "gated", "cancelled", "rectified", "error"
	Error    string                 `json:"error,omitempty"`
}

// TriageBatch runs the full triage for a fetched batch. The prior-notice
// index is built from a single blocking read up front; the records are then
// triaged concurrently against that immutable snapshot.
func (p *Pipeline) TriageBatch(ctx context.Context, records []*types.CanonicalRecord) ([]NoticeResult, error) {
	ix, err := dedup.BuildIndex(ctx, p.Store)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d previously analyzed notices", ix.Len())

	results := make([]NoticeResult, len(records))
	jobs := make(chan int, len(records))

	var wg sync.WaitGroup
	for w := 0; w < config.TriageWorkerCount; w++ {
		go func() {
			for i := range jobs {
				results[i] = p.triageRecord(ctx, records[i], ix)
				wg.Done()
			}
		}()
	}

	for i := range records {
		wg.Add(1)
		jobs <- i
	}
	wg.Wait()
	close(jobs)

	return results, nil
}

// TriageOne triages a single notice via the store's key lookup, without an
// index build. This is the consumer path.
func (p *Pipeline) TriageOne(ctx context.Context, record *types.CanonicalRecord) (NoticeResult, error) {
	keys := dedup.GenerateKeys(record)

	existing, strategy, err := p.Store.FindByCompositeOrSecondaryKey(ctx, keys)
	var match *types.MatchResult
	switch {
	case err == nil:
		match = &types.MatchResult{MatchedID: existing.ID, Strategy: strategy}
	case errors.Is(err, dedup.ErrNotFound):
		// first sighting
	default:
		return NoticeResult{}, fmt.Errorf("failed to look up notice by keys: %w", err)
	}

	result := p.applyDecision(ctx, record, dedup.Decide(record, match), func(id string) (types.StoredRecord, bool) {
		if existing != nil && existing.ID == id {
			return *existing, true
		}
		return types.StoredRecord{}, false
	})
	if result.Status == "error" {
		return result, fmt.Errorf("%s", result.Error)
	}
	return result, nil
}

func (p *Pipeline) triageRecord(ctx context.Context, record *types.CanonicalRecord, ix *dedup.RecordIndex) NoticeResult {
	match := dedup.Resolve(dedup.GenerateKeys(record), ix)
	return p.applyDecision(ctx, record, dedup.Decide(record, match), func(id string) (types.StoredRecord, bool) {
		return ix.Get(&types.MatchResult{MatchedID: id})
	})
}

// applyDecision executes the side effects of one triage verdict. lookup
// resolves the existing stored record for CANCEL and RECTIFY.
func (p *Pipeline) applyDecision(ctx context.Context, record *types.CanonicalRecord, decision types.Decision, lookup func(id string) (types.StoredRecord, bool)) NoticeResult {
	result := NoticeResult{Record: record, Decision: decision}

	switch decision.Action {
	case types.ActionCreate:
		return p.createNotice(ctx, record, result)

	case types.ActionSkip:
		result.Status = "duplicate"
		return result

	case types.ActionCancel:
		existing, ok := lookup(decision.ExistingID)
		if !ok {
			result.Status = "error"
			result.Error = fmt.Sprintf("cancelled notice %s not found in store", decision.ExistingID)
			return result
		}
		if err := p.Store.Delete(ctx, existing); err != nil {
			result.Status = "error"
			result.Error = err.Error()
			return result
		}
		if p.Archive != nil {
			if err := p.Archive.Delete(ctx, existing.ID); err != nil {
				log.Printf("Warning: failed to retire archived notice %s: %v", existing.ID, err)
			}
		}
		result.Status = "cancelled"
		return result

	case types.ActionRectify:
		existing, ok := lookup(decision.ExistingID)
		if !ok {
			result.Status = "error"
			result.Error = fmt.Sprintf("rectified notice %s not found in store", decision.ExistingID)
			return result
		}
		return p.rectifyNotice(ctx, record, existing, result)
	}

	result.Status = "error"
	result.Error = fmt.Sprintf("unknown triage action %q", decision.Action)
	return result
}

// createNotice scores a first-seen notice and, if the gate lets it through,
// runs analysis and persists the triage projection.
func (p *Pipeline) createNotice(ctx context.Context, record *types.CanonicalRecord, result NoticeResult) NoticeResult {
	score := p.Scorer.Score(record)
	verdict := relevance.Gate(score)
	result.Score = &score
	result.Verdict = &verdict

	if verdict.Skip {
		result.Status = "gated"
		return result
	}

	if err := p.analyzeAndPersist(ctx, record, record.ID, score); err != nil {
		result.Status = "error"
		result.Error = err.Error()
		return result
	}

	result.Status = "new"
	return result
}

// rectifyNotice diffs the revision against the stored version. A substantial
// revision is re-scored and re-analyzed; a minor one carries the old score
// forward and only refreshes the diffable fields.
func (p *Pipeline) rectifyNotice(ctx context.Context, record *types.CanonicalRecord, existing types.StoredRecord, result NoticeResult) NoticeResult {
	changes := p.Classifier.Classify(existing, record)
	result.Changes = &changes

	if changes.IsSubstantial {
		score := p.Scorer.Score(record)
		verdict := relevance.Gate(score)
		result.Score = &score
		result.Verdict = &verdict

		if verdict.Skip {
			// The revision no longer clears the gate; keep the stored
			// version rather than retiring a notice we already analyzed.
			result.Status = "gated"
			return result
		}
		if err := p.analyzeAndPersist(ctx, record, existing.ID, score); err != nil {
			result.Status = "error"
			result.Error = err.Error()
			return result
		}
		result.Status = "rectified"
		return result
	}

	// Minor revision: no re-analysis, the prior score and timestamp stand.
	updated := storedFrom(record, existing.ID)
	updated.Score = existing.Score
	updated.AnalyzedAt = existing.AnalyzedAt
	if err := p.Store.SaveAnalyzed(ctx, updated); err != nil {
		result.Status = "error"
		result.Error = err.Error()
		return result
	}
	result.Status = "rectified"
	return result
}

func (p *Pipeline) analyzeAndPersist(ctx context.Context, record *types.CanonicalRecord, id string, score types.ScoreResult) error {
	if p.Analyzer != nil {
		if _, err := p.Analyzer.Analyze(ctx, record, score); err != nil {
			return fmt.Errorf("analysis failed for notice %s: %w", id, err)
		}
	}

	stored := storedFrom(record, id)
	stored.Score = score.Score
	stored.AnalyzedAt = time.Now()
	if err := p.Store.SaveAnalyzed(ctx, stored); err != nil {
		return err
	}

	if p.Archive != nil {
		if err := p.Archive.Put(ctx, record); err != nil {
			log.Printf("Warning: failed to archive notice %s: %v", id, err)
		}
	}
	return nil
}

// storedFrom projects a canonical record onto the persisted triage shape
func storedFrom(record *types.CanonicalRecord, id string) types.StoredRecord {
	keys := dedup.GenerateKeys(record)
	return types.StoredRecord{
		ID:                id,
		UUIDKey:           keys.UUIDKey,
		CompositeKey:      keys.CompositeKey,
		SecondaryKey:      keys.SecondaryKey,
		Title:             record.Title,
		BuyerName:         record.BuyerName,
		Region:            record.Region,
		MarketType:        record.MarketType,
		Budget:            record.Budget,
		Deadline:          record.Deadline,
		FinancialCriteria: record.FinancialCriteria(),
		TechnicalCriteria: record.TechnicalCriteria(),
	}
}

var _ NoticeArchive = (*storage.Archive)(nil)
var _ TriageStore = (*dedup.RedisStore)(nil)
