package validator

import (
	"fmt"
	"sort"

	"deedcheck/internal/validator/deed"
)

// DefaultScorer is the similarity strategy used when none is configured.
const DefaultScorer = "token_sort_partial"

// ScorerRegistry maps scorer names to similarity strategies.
type ScorerRegistry struct {
	scorers map[string]deed.Scorer
}

// NewScorerRegistry creates a registry pre-loaded with the built-in scorers.
func NewScorerRegistry() *ScorerRegistry {
	r := &ScorerRegistry{scorers: make(map[string]deed.Scorer)}
	for _, s := range deed.BuiltinScorers() {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a scorer.
func (r *ScorerRegistry) Register(s deed.Scorer) {
	r.scorers[s.Name()] = s
}

// Get returns the scorer for a given name, or nil if not found.
func (r *ScorerRegistry) Get(name string) deed.Scorer {
	return r.scorers[name]
}

// Names returns all registered scorer names, sorted.
func (r *ScorerRegistry) Names() []string {
	out := make([]string, 0, len(r.scorers))
	for name := range r.scorers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewNormalizer builds a county normalizer from a scorer name and threshold.
// An empty name selects DefaultScorer.
func (r *ScorerRegistry) NewNormalizer(name string, threshold float64) (*deed.CountyNormalizer, error) {
	if name == "" {
		name = DefaultScorer
	}
	s := r.Get(name)
	if s == nil {
		return nil, fmt.Errorf("unknown similarity scorer %q (available: %v)", name, r.Names())
	}
	return deed.NewCountyNormalizer(s, threshold)
}
