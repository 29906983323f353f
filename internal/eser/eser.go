// Package eser reconstructs legacy 12-digit ESER account numbers and resolves
// their check digit.
//
// A legacy number is spliced from the last four digits of the bank routing
// number and the account number with its variable run of zeros removed. The
// check digit sits at the sixth digit of that splice, so its position moves
// with the length of the account number.
package eser

import (
	"errors"
	"fmt"

	"github.com/pendergraft/kontocheck/internal/checksum"
	"github.com/pendergraft/kontocheck/internal/digits"
)

// Common errors returned by the resolver.
var (
	ErrIllegalAccountNumber = errors.New("account number not eligible for ESER synthesis")
	ErrIllegalBankNumber    = errors.New("bank number must have 8 digits")
)

// Width is the width of a legacy number.
const Width = 12

const (
	modulus = 11
	target  = 10
)

// DefaultWeights pairs left to right with the 12 legacy digits.
var DefaultWeights = []int{4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}

// LegacyNumber is a synthesized ESER number and the position of its check digit.
type LegacyNumber struct {
	Digits          digits.Vector
	CheckDigitIndex int
}

// CheckDigit returns the digit found at the check position.
func (l LegacyNumber) CheckDigit() int {
	return l.Digits.At(l.CheckDigitIndex)
}

// Synthesize builds the legacy number for an account of up to 10 digits.
func Synthesize(account, bank digits.Vector) (LegacyNumber, error) {
	if bank.Len() != digits.BankWidth {
		return LegacyNumber{}, fmt.Errorf("%w: got %d digits", ErrIllegalBankNumber, bank.Len())
	}
	if account.Len() > digits.AccountWidth {
		return LegacyNumber{}, fmt.Errorf("%w: more than %d digits", ErrIllegalAccountNumber, digits.AccountWidth)
	}
	a := digits.LeftPad(account, digits.AccountWidth)
	if a.At(0) != 0 || a.At(1) != 0 || a.At(2) == 0 {
		return LegacyNumber{}, fmt.Errorf("%w: %s must start with two zeros and a non-zero digit", ErrIllegalAccountNumber, a)
	}

	spliced := make([]int, 0, Width)
	spliced = append(spliced, bank.Slice(4, 8)...)
	spliced = append(spliced, a.At(2), a.At(3))
	seen := false
	for _, d := range a[4:] {
		if d == 0 && !seen {
			continue
		}
		seen = true
		spliced = append(spliced, d)
	}

	pad := Width - len(spliced)
	legacy := make(digits.Vector, Width)
	copy(legacy[pad:], spliced)

	return LegacyNumber{
		Digits:          legacy,
		CheckDigitIndex: pad + 5,
	}, nil
}

// Resolver searches the check digit of legacy numbers.
type Resolver struct {
	Weights []int
}

// DefaultResolver uses DefaultWeights.
var DefaultResolver = Resolver{Weights: DefaultWeights}

// Resolve returns the check digit that makes the weighted sum of l congruent
// to 10 modulo 11. ok is false when no decimal digit satisfies it.
func (r Resolver) Resolve(l LegacyNumber) (digit int, ok bool) {
	zeroed := l.Digits.With(l.CheckDigitIndex, 0)
	sum := 0
	for i, d := range zeroed {
		sum += d * r.Weights[i]
	}
	offcut := sum % modulus
	w := r.Weights[l.CheckDigitIndex]

	for i := 0; i < modulus; i++ {
		if (offcut+i*w)%modulus == target {
			if i > 9 {
				return checksum.NoDigit, false
			}
			return i, true
		}
	}
	return checksum.NoDigit, false
}

// Validate synthesizes the legacy number and compares its check digit.
func (r Resolver) Validate(account, bank digits.Vector) (checksum.Outcome, error) {
	if len(r.Weights) != Width {
		return checksum.Invalid, fmt.Errorf("%w: ESER needs %d weights", checksum.ErrInvalidRule, Width)
	}
	legacy, err := Synthesize(account, bank)
	if err != nil {
		return checksum.Invalid, err
	}
	expected, ok := r.Resolve(legacy)
	if !ok {
		return checksum.Unresolvable, nil
	}
	if expected != legacy.CheckDigit() {
		return checksum.Invalid, nil
	}
	return checksum.Valid, nil
}
