package deed

import (
	"fmt"
	"strings"

	"deedcheck/internal/domain"
)

// DefaultMatchThreshold is the minimum similarity accepted for a county match.
const DefaultMatchThreshold = 85.0

// countySuffixes are dropped when they trail a county name.
var countySuffixes = map[string]bool{
	"county": true,
	"co.":    true,
	"co":     true,
}

// CountyMatch is an accepted county normalization.
type CountyMatch struct {
	Canonical string  `json:"canonical"`
	Score     float64 `json:"score"`
}

// CandidateScore is one row of a diagnostic score table.
type CandidateScore struct {
	Canonical string  `json:"canonical"`
	Score     float64 `json:"score"`
}

// CountyNormalizer maps free-text county names onto a canonical vocabulary.
// It holds no mutable state and is safe for concurrent use.
type CountyNormalizer struct {
	scorer    Scorer
	threshold float64
}

// NewCountyNormalizer creates a normalizer. threshold must be within [0, 100].
func NewCountyNormalizer(scorer Scorer, threshold float64) (*CountyNormalizer, error) {
	if scorer == nil {
		return nil, fmt.Errorf("county normalizer: scorer is required")
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("county normalizer: threshold %.2f outside [0, 100]", threshold)
	}
	return &CountyNormalizer{scorer: scorer, threshold: threshold}, nil
}

// Threshold returns the acceptance threshold.
func (n *CountyNormalizer) Threshold() float64 { return n.threshold }

// Scorer returns the similarity strategy in use.
func (n *CountyNormalizer) Scorer() Scorer { return n.scorer }

// NormalizeCountyName trims, collapses whitespace, case-folds and strips a
// trailing "county"/"co." token.
func NormalizeCountyName(s string) string {
	toks := strings.Fields(strings.ToLower(s))
	if len(toks) > 1 && countySuffixes[toks[len(toks)-1]] {
		toks = toks[:len(toks)-1]
	}
	return strings.Join(toks, " ")
}

// Scores returns the score of raw against every known county, in vocabulary order.
func (n *CountyNormalizer) Scores(raw string, known []string) []CandidateScore {
	in := NormalizeCountyName(raw)
	out := make([]CandidateScore, 0, len(known))
	for _, name := range known {
		out = append(out, CandidateScore{Canonical: name, Score: n.scorer.Score(in, NormalizeCountyName(name))})
	}
	return out
}

// Normalize selects the highest-scoring canonical county. Ties go to the
// lexicographically smallest name. A best score below the threshold fails
// with NoConfidentMatch and no county is emitted.
func (n *CountyNormalizer) Normalize(raw string, known []string) (CountyMatch, error) {
	var best CandidateScore
	found := false
	for _, cs := range n.Scores(raw, known) {
		if !found || cs.Score > best.Score || (cs.Score == best.Score && cs.Canonical < best.Canonical) {
			best, found = cs, true
		}
	}

	if !found {
		return CountyMatch{}, newFailure(domain.FailureNoConfidentMatch, domain.StageCountyNormalize,
			fmt.Sprintf("score >= %.1f", n.threshold), raw,
			fmt.Sprintf("NoConfidentMatch: county_raw %q: reference vocabulary is empty", raw),
			FieldCountyRaw)
	}
	if best.Score < n.threshold {
		f := newFailure(domain.FailureNoConfidentMatch, domain.StageCountyNormalize,
			fmt.Sprintf("score >= %.1f", n.threshold), fmt.Sprintf("%.1f", best.Score),
			fmt.Sprintf("NoConfidentMatch: county_raw %q best candidate %q scored %.1f, below threshold %.1f (%s)",
				raw, best.Canonical, best.Score, n.threshold, n.scorer.Name()),
			FieldCountyRaw)
		f.BestCandidate = best.Canonical
		f.BestScore = best.Score
		return CountyMatch{}, f
	}
	return CountyMatch{Canonical: best.Canonical, Score: best.Score}, nil
}
