package deed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedcheck/internal/domain"
	"deedcheck/internal/validator/deed"
)

func TestParseWrittenAmount_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"Zero", 0},
		{"zero dollars", 0},
		{"One", 100},
		{"Twelve", 1200},
		{"Twenty-Five", 2500},
		{"twenty five", 2500},
		{"One Hundred", 10000},
		{"One Hundred and Five", 10500},
		{"Nine Hundred Ninety-Nine", 99900},
		{"One Thousand", 100000},
		{"One Million Two Hundred Thousand", 120000000},
		{"One Million Two Hundred Fifty Thousand Dollars", 125000000},
		{"ONE MILLION TWO HUNDRED FIFTY THOUSAND DOLLARS ONLY", 125000000},
		{"  one   million,  two hundred   fifty thousand  ", 125000000},
		{"Three Billion Four Million Five", 300400000500},
		{"One Dollar", 100},
		{"One Thousand Dollars and Fifty Cents", 100050},
		{"One Thousand and 50/100 Dollars", 100050},
		{"One Thousand 05/100 Dollars", 100005},
		{"One Million Two Hundred Thousand Dollars and 50/100", 120000050},
		{"One Million Dollars and 00/100", 100000000},
		{"One Million and 00/100 Dollars", 100000000},
		{"Ten Dollars and 99/100 Only", 1099},
		{"Fifty Cents", 50},
		{"One Cent", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := deed.ParseWrittenAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWrittenAmount_Rejects(t *testing.T) {
	tests := []struct {
		in    string
		token string
	}{
		{"", ""},
		{"Dollars", "dollars"},
		{"Twelve Hundred", "hundred"},
		{"Twelve Hundred Thousand", "hundred"},
		{"One Point Two Million", "point"},
		{"One Million One Million", "million"},
		{"One Thousand Million", "million"},
		{"Thousand", "thousand"},
		{"Hundred", "hundred"},
		{"One Two", "two"},
		{"Twenty Thirty", "thirty"},
		{"Zero Thousand", "zero"},
		{"One Hundred Hundred", "hundred"},
		{"And One", "and"},
		{"One Million and", "and"},
		{"Five Bananas", "bananas"},
		{"One Dollar and Two Hundred Cents", "two"},
		{"One Dollar Fifty Cents", "fifty"},
		{"One 150/100 Dollars", "150/100"},
		{"One 50/1000 Dollars", "50/1000"},
		{"One Dollar and 150/100", "150/100"},
		{"One Dollar and 50/100 Cents", "cents"},
		{"One 50/100 Dollars and 25/100", "and"},
		{"1,250,000", "1,250,000"},
		{"Only", "only"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := deed.ParseWrittenAmount(tt.in)
			require.Error(t, err)
			var perr *deed.AmountParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.token, perr.Token)
		})
	}
}

func TestParseWrittenAmount_RoundTrip(t *testing.T) {
	values := []int64{0, 1, 9, 10, 11, 19, 20, 21, 99, 100, 101, 110, 999, 1000, 1001, 1010, 1100,
		9999, 10000, 12345, 99999, 100000, 100001, 999999, 1000000, 1200000, 1250000,
		1000001, 20000000, 123456789, 999999999, 1000000000, 1000000001, 987654321012, deed.MaxSpellable}
	// A deterministic spread across the range as well.
	for n := int64(7); n < 5_000_000; n = n*3 + 1 {
		values = append(values, n)
	}

	for _, n := range values {
		words, err := deed.SpellCardinal(n)
		require.NoError(t, err)
		got, err := deed.ParseWrittenAmount(words)
		require.NoError(t, err, words)
		assert.Equal(t, n*deed.MinorUnitsPerMajor, got, words)
	}
}

func TestParseWrittenAmount_ExhaustiveSmall(t *testing.T) {
	for n := int64(0); n <= 2500; n++ {
		words, err := deed.SpellCardinal(n)
		require.NoError(t, err)
		got, err := deed.ParseWrittenAmount(words)
		require.NoError(t, err, words)
		require.Equal(t, n*deed.MinorUnitsPerMajor, got, words)
	}
}

func TestSpellAmount_RoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 50, 99, 100, 101, 100050, 125000000, 125000099} {
		words, err := deed.SpellAmount(minor)
		require.NoError(t, err)
		got, err := deed.ParseWrittenAmount(words)
		require.NoError(t, err, words)
		assert.Equal(t, minor, got, words)
	}
}

func TestSpellCardinal(t *testing.T) {
	words, err := deed.SpellCardinal(1200000)
	require.NoError(t, err)
	assert.Equal(t, "One Million Two Hundred Thousand", words)

	words, err = deed.SpellCardinal(0)
	require.NoError(t, err)
	assert.Equal(t, "Zero", words)

	_, err = deed.SpellCardinal(-1)
	assert.Error(t, err)
	_, err = deed.SpellCardinal(deed.MaxSpellable + 1)
	assert.Error(t, err)
}

func TestSpellAmount(t *testing.T) {
	words, err := deed.SpellAmount(100050)
	require.NoError(t, err)
	assert.Equal(t, "One Thousand Dollars and Fifty Cents", words)

	words, err = deed.SpellAmount(101)
	require.NoError(t, err)
	assert.Equal(t, "One Dollar and One Cent", words)
}

func TestReconcileAmount_Equal(t *testing.T) {
	got, err := deed.ReconcileAmount(125000000, "One Million Two Hundred Fifty Thousand")
	require.NoError(t, err)
	assert.Equal(t, int64(125000000), got)
}

func TestReconcileAmount_ZeroAmount(t *testing.T) {
	got, err := deed.ReconcileAmount(0, "Zero Dollars")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestReconcileAmount_Mismatch(t *testing.T) {
	_, err := deed.ReconcileAmount(125000000, "One Million Two Hundred Thousand")
	f := requireFailure(t, err, domain.FailureAmountMismatch)

	assert.Equal(t, domain.StageAmountCheck, f.Stage)
	assert.ElementsMatch(t, []string{deed.FieldNumericAmount, deed.FieldWrittenAmount}, f.FieldPaths)
	assert.Equal(t, "125000000", f.ExpectedValue)
	assert.Equal(t, "120000000", f.ActualValue)
	assert.Contains(t, f.Message, "$1,250,000.00")
	assert.Contains(t, f.Message, "$1,200,000.00")
}

func TestReconcileAmount_NoTolerance(t *testing.T) {
	_, err := deed.ReconcileAmount(100001, "One Thousand Dollars")
	requireFailure(t, err, domain.FailureAmountMismatch)
}

func TestReconcileAmount_Unparseable(t *testing.T) {
	_, err := deed.ReconcileAmount(120000000, "Twelve Hundred Thousand")
	f := requireFailure(t, err, domain.FailureUnparseableWrittenAmount)

	assert.Equal(t, []string{deed.FieldWrittenAmount}, f.FieldPaths)
	assert.Contains(t, f.Message, `"hundred"`)
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "$0.00", deed.FormatMinor(0))
	assert.Equal(t, "$0.05", deed.FormatMinor(5))
	assert.Equal(t, "$999.99", deed.FormatMinor(99999))
	assert.Equal(t, "$1,000.00", deed.FormatMinor(100000))
	assert.Equal(t, "$1,250,000.00", deed.FormatMinor(125000000))
	assert.Equal(t, "-$12.34", deed.FormatMinor(-1234))
}
