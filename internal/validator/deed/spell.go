package deed

import (
	"fmt"
	"strings"
)

var spellUnits = []string{
	"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var spellTens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

var spellScales = []struct {
	value int64
	word  string
}{
	{1_000_000_000, "Billion"},
	{1_000_000, "Million"},
	{1_000, "Thousand"},
}

// MaxSpellable is the largest cardinal SpellCardinal renders.
const MaxSpellable int64 = 999_999_999_999

// SpellCardinal renders n (0 ≤ n ≤ MaxSpellable) in the grammar accepted
// by ParseWrittenAmount, e.g. 1200000 → "One Million Two Hundred Thousand".
func SpellCardinal(n int64) (string, error) {
	if n < 0 || n > MaxSpellable {
		return "", fmt.Errorf("cannot spell %d: out of range [0, %d]", n, MaxSpellable)
	}
	if n == 0 {
		return spellUnits[0], nil
	}
	var words []string
	for _, sc := range spellScales {
		if n >= sc.value {
			words = append(words, spellGroup(n/sc.value)...)
			words = append(words, sc.word)
			n %= sc.value
		}
	}
	if n > 0 {
		words = append(words, spellGroup(n)...)
	}
	return strings.Join(words, " "), nil
}

// SpellAmount renders minor units as a money phrase, e.g.
// 100050 → "One Thousand Dollars and Fifty Cents".
func SpellAmount(minor int64) (string, error) {
	if minor < 0 {
		return "", fmt.Errorf("cannot spell negative amount %d", minor)
	}
	whole, cents := minor/MinorUnitsPerMajor, minor%MinorUnitsPerMajor
	w, err := SpellCardinal(whole)
	if err != nil {
		return "", err
	}
	currency := "Dollars"
	if whole == 1 {
		currency = "Dollar"
	}
	if cents == 0 {
		return w + " " + currency, nil
	}
	c, _ := SpellCardinal(cents)
	unit := "Cents"
	if cents == 1 {
		unit = "Cent"
	}
	return fmt.Sprintf("%s %s and %s %s", w, currency, c, unit), nil
}

// spellGroup spells 1..999.
func spellGroup(n int64) []string {
	var words []string
	if n >= 100 {
		words = append(words, spellUnits[n/100], "Hundred")
		n %= 100
	}
	switch {
	case n >= 20:
		words = append(words, spellTens[n/10])
		if n%10 > 0 {
			words = append(words, spellUnits[n%10])
		}
	case n > 0:
		words = append(words, spellUnits[n])
	}
	return words
}
