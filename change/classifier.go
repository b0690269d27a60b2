// Package change classifies the difference between the persisted version of
// a tender notice and an incoming revision of it. Minor revisions keep the
// previous relevance score; substantial ones trigger re-analysis.
package change

import (
	"fmt"
	"math"
	"strings"

	"tendertriage/config"
	"tendertriage/normalize"
	"tendertriage/types"
)

// Thresholds holds the substantiality boundaries. The defaults come from
// config and are empirically tuned; callers can override per instance.
type Thresholds struct {
	BudgetChange      float64 // strict > fraction
	DeadlineShiftDays int     // strict > days
	TitleSimilarity   float64 // strict < ratio
}

// DefaultThresholds returns the tuned production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BudgetChange:      config.BudgetChangeThreshold,
		DeadlineShiftDays: config.DeadlineShiftDaysThreshold,
		TitleSimilarity:   config.TitleSimilarityThreshold,
	}
}

// Classifier diffs old and new notice versions field by field. It is a total,
// pure function over its inputs: no error paths, no hidden state, identical
// output for identical input.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// Classify runs every substantiality rule independently and returns the
// ordered set of triggered changes. A revision is substantial if any rule
// triggered; a ChangeSet with no changes means the revision is minor.
func (c *Classifier) Classify(old types.StoredRecord, incoming *types.CanonicalRecord) types.ChangeSet {
	var cs types.ChangeSet

	// Budget: fractional change strictly above the threshold. Only applies
	// when both versions carry a budget; a missing budget is not a change.
	if old.Budget > 0 && incoming.Budget > 0 {
		pct := (incoming.Budget - old.Budget) / old.Budget
		if math.Abs(pct) > c.thresholds.BudgetChange {
			cs.Changes = append(cs.Changes, types.Change{
				Field:     "budget",
				Old:       formatAmount(old.Budget),
				New:       formatAmount(incoming.Budget),
				ChangePct: roundPct(pct * 100),
			})
			cs.IsSubstantial = true
		}
	}

	// Deadline: absolute shift strictly above the day threshold, sign-agnostic.
	if old.Deadline != nil && incoming.Deadline != nil {
		days := int(math.Round(math.Abs(incoming.Deadline.Sub(*old.Deadline).Hours()) / 24))
		if days > c.thresholds.DeadlineShiftDays {
			cs.Changes = append(cs.Changes, types.Change{
				Field:     "deadline",
				Old:       old.Deadline.Format("2006-01-02"),
				New:       incoming.Deadline.Format("2006-01-02"),
				DaysDelta: days,
			})
			cs.IsSubstantial = true
		}
	}

	// Qualification criteria: any difference at all is substantial, including
	// absent-to-present and present-to-absent (malformed blocks parse to "").
	if fin := incoming.FinancialCriteria(); fin != old.FinancialCriteria {
		cs.Changes = append(cs.Changes, types.Change{
			Field: "financial_criteria",
			Old:   old.FinancialCriteria,
			New:   fin,
		})
		cs.IsSubstantial = true
	}
	if tech := incoming.TechnicalCriteria(); tech != old.TechnicalCriteria {
		cs.Changes = append(cs.Changes, types.Change{
			Field: "technical_criteria",
			Old:   old.TechnicalCriteria,
			New:   tech,
		})
		cs.IsSubstantial = true
	}

	// Categorical fields: exact match only, any inequality is substantial.
	if newType := strings.TrimSpace(incoming.MarketType); newType != strings.TrimSpace(old.MarketType) {
		cs.Changes = append(cs.Changes, types.Change{
			Field: "market_type",
			Old:   old.MarketType,
			New:   incoming.MarketType,
		})
		cs.IsSubstantial = true
	}
	if newRegion := strings.TrimSpace(incoming.Region); newRegion != strings.TrimSpace(old.Region) {
		cs.Changes = append(cs.Changes, types.Change{
			Field: "region",
			Old:   old.Region,
			New:   incoming.Region,
		})
		cs.IsSubstantial = true
	}

	// Title: Levenshtein similarity strictly below the threshold. Compared on
	// accent-normalized text so formatting-only edits stay minor.
	sim := LevenshteinSimilarity(normalize.Text(old.Title), normalize.Text(incoming.Title))
	if sim < c.thresholds.TitleSimilarity {
		cs.Changes = append(cs.Changes, types.Change{
			Field:      "title",
			Old:        old.Title,
			New:        incoming.Title,
			Similarity: sim,
		})
		cs.IsSubstantial = true
	}

	return cs
}

// LevenshteinSimilarity returns (maxLen - editDistance) / maxLen over runes.
// Two empty strings are identical by convention: similarity 1.0. Symmetric.
func LevenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	return float64(maxLen-levenshteinDistance(ra, rb)) / float64(maxLen)
}

// levenshteinDistance computes the edit distance with the classic two-row DP.
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func formatAmount(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// roundPct keeps two decimals so a 20.01% change stays distinguishable from
// exactly 20%.
func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
