package types

// DedupKeys holds the three identity keys derived from a notice, ordered by
// reliability. CompositeKey is always producible; the other two tiers degrade
// to "" when their source fields are missing.
type DedupKeys struct {
	UUIDKey      string `json:"uuid_key,omitempty"`
	CompositeKey string `json:"composite_key"`
	SecondaryKey string `json:"secondary_key,omitempty"`
}

// MatchStrategy names the key tier that produced a match.
type MatchStrategy string

const (
	MatchUUID      MatchStrategy = "uuid"
	MatchComposite MatchStrategy = "composite"
	MatchSecondary MatchStrategy = "secondary"
)

// MatchResult reports the best existing record for an incoming notice. Only
// the first tier that hits is reported.
type MatchResult struct {
	MatchedID string        `json:"matched_id"`
	Strategy  MatchStrategy `json:"strategy"`
}

// Action is the triage verdict for one incoming notice.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionSkip    Action = "SKIP"
	ActionCancel  Action = "CANCEL"
	ActionRectify Action = "RECTIFY"
)

// Decision is the deduplication verdict. ExistingID is set for CANCEL and
// RECTIFY; Reason is set for SKIP. Decided once per record, never re-evaluated.
type Decision struct {
	Action     Action `json:"action"`
	ExistingID string `json:"existing_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Change records one field-level difference between the persisted version of
// a notice and its incoming revision. Exactly one of the metric fields is set
// depending on the field being diffed.
type Change struct {
	Field      string  `json:"field"`
	Old        string  `json:"old"`
	New        string  `json:"new"`
	ChangePct  float64 `json:"change_pct,omitempty"`
	DaysDelta  int     `json:"days_delta,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// ChangeSet is the ordered output of the change classifier. IsSubstantial is
// true iff at least one change triggered a substantiality rule.
type ChangeSet struct {
	Changes       []Change `json:"changes"`
	IsSubstantial bool     `json:"is_substantial"`
}

// Confidence qualifies how reliable a relevance score is, based on which
// critical lexicon categories matched.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// CategoryMatch lists the distinct lexicon terms matched for one category.
type CategoryMatch struct {
	Category string   `json:"category"`
	Group    string   `json:"group"`
	Terms    []string `json:"terms"`
	Score    int      `json:"score"`
}

// ScoreResult is the outcome of lexicon scoring for one notice. Derived
// purely from the compiled lexicon, no external state.
type ScoreResult struct {
	Score           int             `json:"score"`
	Confidence      Confidence      `json:"confidence"`
	CategoryMatches []CategoryMatch `json:"category_matches"`
	RedFlags        []string        `json:"red_flags,omitempty"`
}

// Priority ranks a notice for downstream analysis.
type Priority string

const (
	PrioritySkip   Priority = "SKIP"
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// GateVerdict is the skip-or-proceed decision that controls whether the
// expensive downstream analysis runs for a notice.
type GateVerdict struct {
	Skip     bool     `json:"skip"`
	Reason   string   `json:"reason,omitempty"`
	Priority Priority `json:"priority"`
}
