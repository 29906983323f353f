package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/kontocheck/internal/digits"
)

func account(t *testing.T, s string) digits.Vector {
	t.Helper()
	v, err := digits.Parse(s, digits.AccountWidth)
	require.NoError(t, err)
	return v
}

var (
	rule00 = Rule{
		Weights:    []int{2, 1, 2, 1, 2, 1, 2, 1, 2},
		Combine:    Crossfoot,
		Modulus:    10,
		Remainders: Mod10Complement(),
		CheckDigit: DefaultCheckDigit,
	}
	rule17 = Rule{
		Weights:    []int{1, 2, 1, 2, 1, 2},
		Start:      1,
		Direction:  LeftToRight,
		Combine:    Crossfoot,
		Modulus:    11,
		SumOffset:  -1,
		Remainders: Mod11Descending(),
		CheckDigit: 7,
	}
	rule29 = Rule{
		Weights:    []int{1, 2, 3, 4, 1, 2, 3, 4, 1},
		Combine:    Transform,
		Modulus:    10,
		Remainders: Mod10Complement(),
		CheckDigit: DefaultCheckDigit,
	}
	rule56 = Rule{
		Weights:    []int{2, 3, 4, 5, 6, 7, 2, 3, 4},
		Modulus:    11,
		Remainders: Mod11NoZero(),
		Overrides:  []Override{{Position: 0, Digit: 9, Map: map[int]int{0: 8, 1: 7}}},
		CheckDigit: DefaultCheckDigit,
	}
	rule90C = Rule{
		Weights:    []int{2, 3, 4, 5, 6},
		Start:      4,
		Modulus:    7,
		Remainders: Complement(7),
		CheckDigit: DefaultCheckDigit,
		Excluded:   []int{7, 8, 9},
	}
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		account string
		want    Outcome
	}{
		{"00 crossfoot", rule00, "9290701", Valid},
		{"00 crossfoot full width", rule00, "1234567897", Valid},
		{"00 wrong digit", rule00, "9290702", Invalid},
		{"17 left to right", rule17, "0446786040", Valid},
		{"17 left to right 2", rule17, "0882095630", Valid},
		{"17 wrong digit", rule17, "0446786240", Invalid},
		{"29 transform", rule29, "3145863029", Valid},
		{"29 transform 2", rule29, "2938692523", Valid},
		{"29 wrong digit", rule29, "0132572975", Invalid},
		{"56 plain", rule56, "0290545005", Valid},
		{"56 override", rule56, "9718304037", Valid},
		{"56 override wrong digit", rule56, "9718304038", Invalid},
		{"90C modulus 7", rule90C, "0000654321", Valid},
		{"90C excluded check digit", rule90C, "0000654328", NotApplicable},
		{"90C wrong digit", rule90C, "0000820484", Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(account(t, tt.account), tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_SpecExample(t *testing.T) {
	v, err := digits.FromDigits([]int{0, 0, 0, 0, 0, 9, 2, 9, 0, 7, 0, 1})
	require.NoError(t, err)

	// the last ten digits are the account number 9290701
	got, err := Evaluate(v.Slice(2, 12), rule00)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestEvaluate_Deterministic(t *testing.T) {
	v := account(t, "0734192657")
	for _, r := range []Rule{rule00, rule17, rule29, rule56, rule90C} {
		first, err := Evaluate(v, r)
		require.NoError(t, err)
		second, err := Evaluate(v, r)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestEvaluate_NoDigit(t *testing.T) {
	// 1234567892 without the 9-prefix override: remainder 1 has no digit
	v := account(t, "0000000001")
	r := Rule{
		Weights:    []int{1},
		Start:      8,
		Modulus:    11,
		SumOffset:  1,
		Remainders: Mod11Strict(),
		CheckDigit: DefaultCheckDigit,
	}
	// sum = 0*1 + 1 = 1
	got, err := Evaluate(v, r)
	require.NoError(t, err)
	assert.Equal(t, NoDigit, got)

	outcome, err := Validate(v, r)
	require.NoError(t, err)
	assert.Equal(t, Invalid, outcome)
}

func TestEvaluate_NegativeSumIsFloored(t *testing.T) {
	// all-zero input with offset -1 gives remainder 10 under modulus 11
	v := account(t, "0000000000")
	got, err := Evaluate(v, rule17)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestEvaluate_Errors(t *testing.T) {
	v := account(t, "1234567897")

	tests := []struct {
		name    string
		rule    Rule
		wantErr error
	}{
		{"no weights", Rule{Modulus: 10, Remainders: Mod10Complement()}, ErrInvalidRule},
		{"modulus too small", Rule{Weights: []int{1}, Modulus: 1, Remainders: []int{0}}, ErrInvalidRule},
		{"short remainder map", Rule{Weights: []int{1}, Modulus: 11, Remainders: Mod10Complement()}, ErrInvalidRule},
		{"bad remainder digit", Rule{Weights: []int{1}, Modulus: 2, Remainders: []int{0, 12}}, ErrInvalidRule},
		{"bad transform row", Rule{Weights: []int{5}, Combine: Transform, Modulus: 10, Remainders: Mod10Complement()}, ErrInvalidRule},
		{"override out of range", Rule{Weights: []int{1}, Modulus: 10, Remainders: Mod10Complement(), Overrides: []Override{{Map: map[int]int{10: 1}}}}, ErrInvalidRule},
		{"range past end", Rule{Weights: []int{1, 2, 3}, Start: 8, Modulus: 10, Remainders: Mod10Complement()}, ErrVectorTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(v, tt.rule)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Validate(digits.Vector{1, 2}, rule00)
	assert.ErrorIs(t, err, ErrVectorTooShort)
}

func TestRemainderMaps(t *testing.T) {
	assert.Equal(t, []int{0, 9, 8, 7, 6, 5, 4, 3, 2, 1}, Mod10Complement())
	assert.Equal(t, []int{0, 0, 9, 8, 7, 6, 5, 4, 3, 2, 1}, Mod11())
	assert.Equal(t, []int{0, NoDigit, 9, 8, 7, 6, 5, 4, 3, 2, 1}, Mod11Strict())
	assert.Equal(t, []int{NoDigit, NoDigit, 9, 8, 7, 6, 5, 4, 3, 2, 1}, Mod11NoZero())
	assert.Equal(t, []int{0, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, Mod11Descending())
	assert.Equal(t, []int{0, 6, 5, 4, 3, 2, 1}, Complement(7))
	assert.Equal(t, []int{0, NoDigit, 9, 8, 7, 6, 5, 4, 3, 2, 1}, Complement(11))
}

func TestOutcome(t *testing.T) {
	assert.True(t, Valid.OK())
	assert.True(t, Unchecked.OK())
	assert.False(t, Invalid.OK())
	assert.False(t, NotApplicable.OK())
	assert.False(t, Unresolvable.OK())

	assert.True(t, NotApplicable.Exceptional())
	assert.True(t, Unchecked.Exceptional())
	assert.False(t, Invalid.Exceptional())

	assert.Equal(t, "not_applicable", NotApplicable.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
