package config

// Change classification thresholds. These values are empirically tuned
// against real BOAMP rectificatifs; do not re-derive them.
const (
	// BudgetChangeThreshold is the fractional budget change above which a
	// revision is substantial (strictly greater than).
	BudgetChangeThreshold = 0.20

	// DeadlineShiftDaysThreshold is the absolute deadline shift, in days,
	// above which a revision is substantial (strictly greater than).
	DeadlineShiftDaysThreshold = 7

	// TitleSimilarityThreshold is the Levenshtein similarity below which a
	// title change is substantial (strictly less than).
	TitleSimilarityThreshold = 0.80
)

// Relevance scoring constants.
const (
	// LogScoreCoefficient scales the log-graduated category score:
	// round(min(cap, log(n+1) * weight * LogScoreCoefficient)).
	LogScoreCoefficient = 3.5

	// SectorScoreCap caps any single target-sector category contribution.
	SectorScoreCap = 50

	// ExpertiseScoreCap caps any single expertise category contribution.
	ExpertiseScoreCap = 40

	// PostureScoreCap caps any single engagement-posture category contribution.
	PostureScoreCap = 15
)

// Score adjustment constants applied after raw category scoring.
const (
	ReferenceBuyerBonus   = 15
	MissionExpertiseBonus = 10
	MissionSectorBonus    = 5
	GovernanceBonus       = 8
	MultiExpertiseBonus   = 5
	RedFlagPenalty        = 30
	NoSectorPenalty       = 15
)

// Analysis gate boundaries.
const (
	// GateMinScore: below this the notice is always skipped.
	GateMinScore = 20

	// GateRedFlagFloor: after the red-flag deduction, anything below this is
	// skipped regardless of confidence.
	GateRedFlagFloor = 15

	// GateLowBandCeiling bounds the [GateMinScore, GateLowBandCeiling) band
	// where only HIGH confidence proceeds.
	GateLowBandCeiling = 30

	// GateMidBandCeiling bounds the [GateLowBandCeiling, GateMidBandCeiling)
	// band where LOW confidence is still skipped.
	GateMidBandCeiling = 40

	// GateHighPriorityScore and GateMediumPriorityScore set the priority tiers
	// for notices that proceed.
	GateHighPriorityScore   = 60
	GateMediumPriorityScore = 40
)

// Orchestrator constants.
const (
	// ExtractWorkerCount is the size of the full-text extraction worker pool.
	ExtractWorkerCount = 5

	// TriageWorkerCount bounds concurrent per-record triage in a batch run.
	// Everything after the index build is pure and lock-free, so this is only
	// a politeness limit on downstream calls.
	TriageWorkerCount = 4

	// DefaultFeedCount is the default number of notices pulled per feed.
	DefaultFeedCount = 50
)
