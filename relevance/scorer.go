package relevance

import (
	"math"
	"sort"
	"strings"

	"tendertriage/config"
	"tendertriage/normalize"
	"tendertriage/types"
)

// ScorerConfig exposes the tuned scoring constants for per-instance override.
type ScorerConfig struct {
	LogCoefficient float64
	SectorCap      int
	ExpertiseCap   int
	PostureCap     int
}

func applyScorerDefaults(cfg ScorerConfig) ScorerConfig {
	if cfg.LogCoefficient == 0 {
		cfg.LogCoefficient = config.LogScoreCoefficient
	}
	if cfg.SectorCap == 0 {
		cfg.SectorCap = config.SectorScoreCap
	}
	if cfg.ExpertiseCap == 0 {
		cfg.ExpertiseCap = config.ExpertiseScoreCap
	}
	if cfg.PostureCap == 0 {
		cfg.PostureCap = config.PostureScoreCap
	}
	return cfg
}

// Scorer scores notices against a compiled lexicon. Pure over (text, lexicon);
// no external state, safe for concurrent use.
type Scorer struct {
	lexicon *Lexicon
	cfg     ScorerConfig
}

// NewScorer creates a scorer over a compiled lexicon with default constants.
func NewScorer(lex *Lexicon) *Scorer {
	return NewScorerWithConfig(lex, ScorerConfig{})
}

// NewScorerWithConfig creates a scorer with overridden constants.
func NewScorerWithConfig(lex *Lexicon, cfg ScorerConfig) *Scorer {
	return &Scorer{lexicon: lex, cfg: applyScorerDefaults(cfg)}
}

// Score matches the notice's text against every lexicon category and returns
// the 0-100 relevance score with its confidence tier.
func (s *Scorer) Score(rec *types.CanonicalRecord) types.ScoreResult {
	text := normalize.Text(strings.Join([]string{
		rec.Title,
		rec.Description,
		strings.Join(rec.Keywords, " "),
		rec.BuyerName,
	}, " "))

	var (
		result         types.ScoreResult
		sectorScore    int
		expertiseScore int
		postureScore   int
		expertiseCats  int
		sectorMatched  bool
		referenceHit   bool
		missionExpert  bool
		missionSector  bool
		governanceHit  bool
	)

	for _, cat := range s.lexicon.categories {
		terms := matchCategory(text, cat.terms)
		if len(terms) == 0 {
			continue
		}

		score := 0
		switch cat.group {
		case GroupSector:
			score = s.categoryScore(len(terms), cat.weight, s.cfg.SectorCap)
			sectorScore += score
			sectorMatched = true
			if cat.signal == SignalMissionSector {
				missionSector = true
			}
		case GroupExpertise:
			score = s.categoryScore(len(terms), cat.weight, s.cfg.ExpertiseCap)
			expertiseScore += score
			expertiseCats++
			if cat.signal == SignalMissionExpertise {
				missionExpert = true
			}
		case GroupPosture:
			score = s.categoryScore(len(terms), cat.weight, s.cfg.PostureCap)
			postureScore += score
			if cat.signal == SignalGovernance {
				governanceHit = true
			}
		case GroupRedFlag:
			result.RedFlags = append(result.RedFlags, terms...)
		case GroupReference:
			referenceHit = true
		}

		result.CategoryMatches = append(result.CategoryMatches, types.CategoryMatch{
			Category: cat.name,
			Group:    string(cat.group),
			Terms:    terms,
			Score:    score,
		})
	}

	raw := clampScore(sectorScore + expertiseScore + postureScore)
	result.Confidence = confidenceTier(sectorScore, expertiseScore)
	result.Score = clampScore(s.adjust(raw, adjustments{
		referenceHit:  referenceHit,
		missionExpert: missionExpert,
		missionSector: missionSector,
		governanceHit: governanceHit,
		expertiseCats: expertiseCats,
		sectorMatched: sectorMatched,
		redFlagHit:    len(result.RedFlags) > 0,
	}))

	return result
}

// categoryScore applies the log-graduated formula: diversity of distinct
// matches grows the score, repetition of one term does not.
func (s *Scorer) categoryScore(matchCount int, weight float64, limit int) int {
	raw := math.Log(float64(matchCount)+1) * weight * s.cfg.LogCoefficient
	if max := float64(limit); raw > max {
		raw = max
	}
	return int(math.Round(raw))
}

// confidenceTier derives LOW/MEDIUM/HIGH from which critical category groups
// matched, before any bonus adjustment.
func confidenceTier(sectorScore, expertiseScore int) types.Confidence {
	combined := sectorScore + expertiseScore
	switch {
	case sectorScore > 0 && expertiseScore > 0 && combined >= 40,
		sectorScore >= 30,
		expertiseScore >= 30:
		return types.ConfidenceHigh
	case sectorScore >= 15, expertiseScore >= 15, combined >= 25:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

type adjustments struct {
	referenceHit  bool
	missionExpert bool
	missionSector bool
	governanceHit bool
	expertiseCats int
	sectorMatched bool
	redFlagHit    bool
}

// adjust applies the bonus/penalty pass. The reference-buyer bonus and the
// mission bonuses are mutually exclusive: the chain stops at the first hit.
func (s *Scorer) adjust(score int, adj adjustments) int {
	switch {
	case adj.referenceHit:
		score += config.ReferenceBuyerBonus
	case adj.missionExpert:
		score += config.MissionExpertiseBonus
	case adj.missionSector:
		score += config.MissionSectorBonus
	}

	if adj.governanceHit {
		score += config.GovernanceBonus
	}
	if adj.expertiseCats >= 2 {
		score += config.MultiExpertiseBonus
	}
	if adj.redFlagHit {
		score -= config.RedFlagPenalty
	}
	if !adj.sectorMatched {
		score -= config.NoSectorPenalty
	}
	return score
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// occurrence is one candidate term hit inside the notice text.
type occurrence struct {
	start, end int
	term       string
}

// matchCategory finds the distinct terms of one category present in the text.
// Hits are deduplicated with a single left-to-right scan that prefers the
// longest matching phrase and marks its span covered, so a shorter keyword
// nested inside an already-matched phrase is not double-counted ("société à
// mission" must not also count "mission").
func matchCategory(text string, terms []string) []string {
	var occs []occurrence
	for _, term := range terms {
		for _, start := range wordBoundaryIndexes(text, term) {
			occs = append(occs, occurrence{start: start, end: start + len(term), term: term})
		}
	}
	if len(occs) == 0 {
		return nil
	}

	sort.Slice(occs, func(i, j int) bool {
		if occs[i].start != occs[j].start {
			return occs[i].start < occs[j].start
		}
		return occs[i].end > occs[j].end
	})

	matched := make(map[string]bool)
	var out []string
	coveredEnd := 0
	for _, occ := range occs {
		if occ.start < coveredEnd {
			continue
		}
		coveredEnd = occ.end
		if !matched[occ.term] {
			matched[occ.term] = true
			out = append(out, occ.term)
		}
	}
	return out
}

// wordBoundaryIndexes returns every position where term occurs in text with
// word boundaries on both sides, so "mission" does not fire inside
// "commission".
func wordBoundaryIndexes(text, term string) []int {
	if term == "" {
		return nil
	}
	var idxs []int
	offset := 0
	for {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return idxs
		}
		start := offset + i
		end := start + len(term)
		beforeOK := start == 0 || text[start-1] == ' '
		afterOK := end == len(text) || text[end] == ' '
		if beforeOK && afterOK {
			idxs = append(idxs, start)
		}
		offset = start + 1
	}
}
