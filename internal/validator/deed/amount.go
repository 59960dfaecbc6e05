package deed

import (
	"fmt"
	"strconv"
	"strings"

	"deedcheck/internal/domain"
)

// MinorUnitsPerMajor converts written (major unit) amounts to the minor
// units used by numeric_amount.
const MinorUnitsPerMajor = 100

var unitWords = map[string]int64{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var teenWords = map[string]int64{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scaleWords = map[string]int64{
	"thousand": 1_000,
	"million":  1_000_000,
	"billion":  1_000_000_000,
}

// AmountParseError reports the token that stopped the written-amount grammar.
type AmountParseError struct {
	Token  string
	Reason string
}

func (e *AmountParseError) Error() string {
	if e.Token == "" {
		return e.Reason
	}
	return fmt.Sprintf("unexpected token %q: %s", e.Token, e.Reason)
}

func parseErr(token, reason string) *AmountParseError {
	return &AmountParseError{Token: token, Reason: reason}
}

// ParseWrittenAmount parses an English money phrase such as
// "One Million Two Hundred Thousand Dollars and 50/100" into minor units.
func ParseWrittenAmount(s string) (int64, error) {
	tokens := tokenizeAmount(s)
	if len(tokens) == 0 {
		return 0, parseErr("", "written amount is empty")
	}
	if tokens[len(tokens)-1] == "only" {
		tokens = tokens[:len(tokens)-1]
		if len(tokens) == 0 {
			return 0, parseErr("only", "no amount before \"only\"")
		}
	}

	currencyAt := -1
	for i, tok := range tokens {
		if tok == "dollar" || tok == "dollars" {
			currencyAt = i
			break
		}
	}

	var wholeToks, centsToks []string
	switch {
	case currencyAt >= 0:
		wholeToks, centsToks = tokens[:currencyAt], tokens[currencyAt+1:]
	case isCentsWord(tokens[len(tokens)-1]):
		// "Fifty Cents" with no major amount.
		centsToks = tokens
	default:
		wholeToks = tokens
	}

	var cents int64
	var haveFraction bool
	if n := len(wholeToks); n > 0 && strings.Contains(wholeToks[n-1], "/") {
		frac, err := parseFraction(wholeToks[n-1])
		if err != nil {
			return 0, err
		}
		cents, haveFraction = frac, true
		wholeToks = wholeToks[:n-1]
		if n := len(wholeToks); n > 0 && wholeToks[n-1] == "and" {
			wholeToks = wholeToks[:n-1]
		}
	}

	var whole int64
	if len(wholeToks) > 0 {
		v, err := parseCardinal(wholeToks)
		if err != nil {
			return 0, err
		}
		whole = v
	} else if currencyAt >= 0 && !haveFraction {
		return 0, parseErr(tokens[currencyAt], "currency word without an amount")
	}

	if len(centsToks) > 0 {
		if haveFraction {
			return 0, parseErr(centsToks[0], "cents given twice")
		}
		v, err := parseCents(centsToks, currencyAt < 0)
		if err != nil {
			return 0, err
		}
		cents = v
	}

	return whole*MinorUnitsPerMajor + cents, nil
}

// parseCents handles the tail after the currency word: "and Fifty Cents"
// or "and 50/100".
func parseCents(toks []string, standalone bool) (int64, error) {
	if !standalone {
		if toks[0] != "and" {
			return 0, parseErr(toks[0], "expected \"and\" before cents")
		}
		toks = toks[1:]
		if len(toks) == 0 {
			return 0, parseErr("and", "no cents amount after \"and\"")
		}
		if strings.Contains(toks[0], "/") {
			if len(toks) > 1 {
				return 0, parseErr(toks[1], "nothing may follow an NN/100 fraction")
			}
			return parseFraction(toks[0])
		}
	}
	last := toks[len(toks)-1]
	if !isCentsWord(last) {
		return 0, parseErr(last, "expected \"cents\" after the cents amount")
	}
	toks = toks[:len(toks)-1]
	if len(toks) == 0 {
		return 0, parseErr(last, "no cents amount before \"cents\"")
	}
	v, err := parseCardinal(toks)
	if err != nil {
		return 0, err
	}
	if v >= MinorUnitsPerMajor {
		return 0, parseErr(toks[0], fmt.Sprintf("cents amount %d must be below %d", v, MinorUnitsPerMajor))
	}
	return v, nil
}

func parseFraction(tok string) (int64, error) {
	num, den, ok := strings.Cut(tok, "/")
	if !ok || den != "100" {
		return 0, parseErr(tok, "only NN/100 fractions are accepted")
	}
	v, err := strconv.ParseInt(num, 10, 64)
	if err != nil || v < 0 || v >= MinorUnitsPerMajor || len(num) > 2 {
		return 0, parseErr(tok, "fraction numerator must be 0-99")
	}
	return v, nil
}

func isCentsWord(tok string) bool {
	return tok == "cent" || tok == "cents"
}

// parseCardinal parses a cardinal number phrase. Hundred multipliers
// must be 1-9 ("Twelve Hundred" is rejected) and scale words must be
// strictly descending with a non-zero multiplier.
func parseCardinal(toks []string) (int64, error) {
	if len(toks) == 1 && toks[0] == "zero" {
		return 0, nil
	}

	var (
		total     int64
		group     int64
		lastScale int64 = 1 << 62
		ones      bool
		tens      bool
		hundreds  bool
		sawNumber bool
		prev      string
	)

	for i, tok := range toks {
		switch {
		case tok == "and":
			if i == 0 || i == len(toks)-1 || prev == "and" {
				return 0, parseErr(tok, "misplaced \"and\"")
			}
		case tok == "zero":
			return 0, parseErr(tok, "\"zero\" is only valid on its own")
		case unitWords[tok] > 0:
			if ones {
				return 0, parseErr(tok, fmt.Sprintf("unit word cannot follow %q", prev))
			}
			group += unitWords[tok]
			ones = true
			sawNumber = true
		case teenWords[tok] > 0:
			if ones || tens {
				return 0, parseErr(tok, fmt.Sprintf("teen word cannot follow %q", prev))
			}
			group += teenWords[tok]
			ones = true
			sawNumber = true
		case tensWords[tok] > 0:
			if ones || tens {
				return 0, parseErr(tok, fmt.Sprintf("tens word cannot follow %q", prev))
			}
			group += tensWords[tok]
			tens = true
			sawNumber = true
		case tok == "hundred":
			if hundreds {
				return 0, parseErr(tok, "\"hundred\" repeated within one group")
			}
			if !ones || tens || group > 9 {
				if group > 9 {
					return 0, parseErr(tok, fmt.Sprintf("irregular form %d hundred is not supported", group))
				}
				return 0, parseErr(tok, "\"hundred\" needs a multiplier from one to nine")
			}
			group *= 100
			hundreds = true
			ones, tens = false, false
		case scaleWords[tok] > 0:
			scale := scaleWords[tok]
			if group == 0 {
				return 0, parseErr(tok, "scale word needs a non-zero multiplier")
			}
			if scale >= lastScale {
				return 0, parseErr(tok, fmt.Sprintf("scale word out of order after %q", prev))
			}
			total += group * scale
			lastScale = scale
			group = 0
			ones, tens, hundreds = false, false, false
		default:
			return 0, parseErr(tok, "not a number word")
		}
		prev = tok
	}

	if !sawNumber {
		return 0, parseErr(toks[0], "no number words found")
	}
	return total + group, nil
}

// tokenizeAmount case-folds, splits hyphenated words and strips
// punctuation that extractors commonly carry over from the deed.
func tokenizeAmount(s string) []string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.;:()")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ReconcileAmount parses the written amount and requires it to equal
// numericAmount exactly. It returns the parsed value in minor units.
func ReconcileAmount(numericAmount int64, writtenAmount string) (int64, error) {
	parsed, err := ParseWrittenAmount(writtenAmount)
	if err != nil {
		return 0, newFailure(domain.FailureUnparseableWrittenAmount, domain.StageAmountCheck,
			"English amount in words", writtenAmount,
			fmt.Sprintf("UnparseableWrittenAmount: written_amount %q: %v", writtenAmount, err),
			FieldWrittenAmount)
	}
	if parsed != numericAmount {
		return 0, newFailure(domain.FailureAmountMismatch, domain.StageAmountCheck,
			strconv.FormatInt(numericAmount, 10), strconv.FormatInt(parsed, 10),
			fmt.Sprintf("AmountMismatch: numeric_amount %d (%s) != written_amount %d (%s, %q)",
				numericAmount, FormatMinor(numericAmount), parsed, FormatMinor(parsed), writtenAmount),
			FieldNumericAmount, FieldWrittenAmount)
	}
	return parsed, nil
}

// FormatMinor renders minor units as a dollar string, e.g. 125000000 → "$1,250,000.00".
func FormatMinor(v int64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	whole := strconv.FormatInt(v/MinorUnitsPerMajor, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), v%MinorUnitsPerMajor)
}
