package deed

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scorer computes a symmetric similarity score in [0, 100] between two
// already-normalized strings.
type Scorer interface {
	Score(a, b string) float64
	Name() string
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc struct {
	name string
	fn   func(a, b string) float64
}

// NewScorerFunc wraps fn under the given name.
func NewScorerFunc(name string, fn func(a, b string) float64) ScorerFunc {
	return ScorerFunc{name: name, fn: fn}
}

func (s ScorerFunc) Score(a, b string) float64 { return s.fn(a, b) }
func (s ScorerFunc) Name() string               { return s.name }

// Built-in scorers.
var (
	RatioScorer            = NewScorerFunc("ratio", Ratio)
	PartialRatioScorer     = NewScorerFunc("partial_ratio", ScaledPartialRatio)
	TokenSortRatioScorer   = NewScorerFunc("token_sort_ratio", TokenSortRatio)
	TokenSortPartialScorer = NewScorerFunc("token_sort_partial", TokenSortPartialRatio)
)

// BuiltinScorers lists every scorer shipped with the package.
func BuiltinScorers() []Scorer {
	return []Scorer{RatioScorer, PartialRatioScorer, TokenSortRatioScorer, TokenSortPartialScorer}
}

// Ratio is the normalized Levenshtein similarity 100 * (1 - d / max(len)).
func Ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 && lb == 0 {
		return 100
	}
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(maxLen))
}

// PartialRatio is the best Ratio of the shorter string against every
// window of the same length in the longer string.
func PartialRatio(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	if len(shorter) == len(longer) {
		return Ratio(a, b)
	}

	s := string(shorter)
	var best float64
	for i := 0; i+len(shorter) <= len(longer); i++ {
		if r := Ratio(s, string(longer[i:i+len(shorter)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Partial matches between strings of very different length are discounted,
// and inputs shorter than minPartialRunes get no partial credit at all, so an
// OCR fragment such as "a" cannot match a whole county name.
const (
	minPartialRunes  = 3
	partialLenRatio  = 1.5
	partialLongRatio = 8
	partialScale     = 0.9
	partialLongScale = 0.6
)

// ScaledPartialRatio is PartialRatio discounted by the length ratio of its
// inputs. Below a ratio of 1.5 it equals PartialRatio; a shorter input under
// three runes falls back to Ratio.
func ScaledPartialRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la > lb {
		la, lb = lb, la
	}
	if la == 0 {
		return PartialRatio(a, b)
	}
	lenRatio := float64(lb) / float64(la)
	switch {
	case lenRatio < partialLenRatio:
		return PartialRatio(a, b)
	case la < minPartialRunes:
		return Ratio(a, b)
	case lenRatio > partialLongRatio:
		return PartialRatio(a, b) * partialLongScale
	default:
		return PartialRatio(a, b) * partialScale
	}
}

// TokenSortRatio sorts whitespace-separated tokens before comparing.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

// TokenSortPartialRatio sorts tokens, then applies ScaledPartialRatio.
func TokenSortPartialRatio(a, b string) float64 {
	return ScaledPartialRatio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}
