package relevance

import (
	"testing"

	"tendertriage/types"
)

func TestGateAlwaysSkipsBelowMinimum(t *testing.T) {
	for _, conf := range []types.Confidence{types.ConfidenceLow, types.ConfidenceMedium, types.ConfidenceHigh} {
		v := Gate(types.ScoreResult{Score: 19, Confidence: conf})
		if !v.Skip {
			t.Errorf("score 19 with %s confidence must skip", conf)
		}
		if v.Priority != types.PrioritySkip {
			t.Errorf("skipped verdict priority = %s, want SKIP", v.Priority)
		}
	}
}

func TestGateHighConfidenceOverridesLowScore(t *testing.T) {
	// Score 25 with HIGH confidence proceeds: HIGH signals both critical
	// categories matched even if posture terms are absent.
	high := Gate(types.ScoreResult{Score: 25, Confidence: types.ConfidenceHigh})
	if high.Skip {
		t.Errorf("score 25 with HIGH confidence must proceed, got %+v", high)
	}
	if high.Priority != types.PriorityHigh {
		t.Errorf("HIGH confidence proceeds at HIGH priority, got %s", high.Priority)
	}

	medium := Gate(types.ScoreResult{Score: 25, Confidence: types.ConfidenceMedium})
	if !medium.Skip {
		t.Error("score 25 with MEDIUM confidence must skip")
	}
}

func TestGateMidBandSkipsLowConfidence(t *testing.T) {
	low := Gate(types.ScoreResult{Score: 35, Confidence: types.ConfidenceLow})
	if !low.Skip {
		t.Error("score 35 with LOW confidence is not worth the cost")
	}

	medium := Gate(types.ScoreResult{Score: 35, Confidence: types.ConfidenceMedium})
	if medium.Skip {
		t.Errorf("score 35 with MEDIUM confidence must proceed, got %+v", medium)
	}
	if medium.Priority != types.PriorityMedium {
		t.Errorf("priority = %s, want MEDIUM", medium.Priority)
	}
}

func TestGateRedFlagDeduction(t *testing.T) {
	// 40 - 30 = 10 < 15: skipped regardless of confidence.
	flagged := Gate(types.ScoreResult{Score: 40, Confidence: types.ConfidenceHigh, RedFlags: []string{"travaux de construction"}})
	if !flagged.Skip {
		t.Errorf("red-flagged score 40 must skip, got %+v", flagged)
	}

	// 50 - 30 = 20 >= 15: survives the deduction and proceeds on its score.
	surviving := Gate(types.ScoreResult{Score: 50, Confidence: types.ConfidenceLow, RedFlags: []string{"gardiennage"}})
	if surviving.Skip {
		t.Errorf("red-flagged score 50 must survive, got %+v", surviving)
	}
	if surviving.Priority != types.PriorityMedium {
		t.Errorf("priority = %s, want MEDIUM", surviving.Priority)
	}
}

func TestGatePriorityTiers(t *testing.T) {
	cases := []struct {
		score int
		conf  types.Confidence
		want  types.Priority
	}{
		{65, types.ConfidenceLow, types.PriorityHigh},
		{45, types.ConfidenceHigh, types.PriorityHigh},
		{45, types.ConfidenceMedium, types.PriorityMedium},
		{30, types.ConfidenceHigh, types.PriorityHigh},
		{35, types.ConfidenceMedium, types.PriorityMedium},
	}

	for _, tc := range cases {
		v := Gate(types.ScoreResult{Score: tc.score, Confidence: tc.conf})
		if v.Skip {
			t.Errorf("score %d / %s should proceed", tc.score, tc.conf)
			continue
		}
		if v.Priority != tc.want {
			t.Errorf("score %d / %s: priority = %s, want %s", tc.score, tc.conf, v.Priority, tc.want)
		}
	}
}
