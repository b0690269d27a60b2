package relevance

import (
	"fmt"

	"tendertriage/config"
	"tendertriage/types"
)

// Gate maps a score result to the skip-or-proceed decision that controls
// whether the expensive downstream analysis runs. Pure function.
//
// A HIGH confidence tier overrides a low raw score in the [20,30) band: it
// signals that both critical category groups matched even if posture terms
// are absent.
func Gate(sr types.ScoreResult) types.GateVerdict {
	if sr.Score < config.GateMinScore {
		return types.GateVerdict{
			Skip:     true,
			Reason:   fmt.Sprintf("score %d below minimum %d", sr.Score, config.GateMinScore),
			Priority: types.PrioritySkip,
		}
	}

	if len(sr.RedFlags) > 0 {
		if reduced := sr.Score - config.RedFlagPenalty; reduced < config.GateRedFlagFloor {
			return types.GateVerdict{
				Skip:     true,
				Reason:   fmt.Sprintf("red flags reduce score to %d", reduced),
				Priority: types.PrioritySkip,
			}
		}
	}

	if sr.Score < config.GateLowBandCeiling && sr.Confidence != types.ConfidenceHigh {
		return types.GateVerdict{
			Skip:     true,
			Reason:   fmt.Sprintf("score %d needs HIGH confidence, got %s", sr.Score, sr.Confidence),
			Priority: types.PrioritySkip,
		}
	}

	if sr.Score < config.GateMidBandCeiling && sr.Confidence == types.ConfidenceLow {
		return types.GateVerdict{
			Skip:     true,
			Reason:   fmt.Sprintf("score %d with LOW confidence is not worth the cost", sr.Score),
			Priority: types.PrioritySkip,
		}
	}

	return types.GateVerdict{Priority: priorityFor(sr)}
}

func priorityFor(sr types.ScoreResult) types.Priority {
	switch {
	case sr.Score >= config.GateHighPriorityScore || sr.Confidence == types.ConfidenceHigh:
		return types.PriorityHigh
	case sr.Score >= config.GateMediumPriorityScore || sr.Confidence == types.ConfidenceMedium:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}
