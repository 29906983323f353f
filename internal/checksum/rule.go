// Package checksum implements the generic weighted-sum check-digit evaluator.
//
// Every plain Bundesbank method is a Rule: a weight vector over a range of the
// account number, a way of combining digit and weight, a modulus and a total
// mapping from remainder to check digit. Methods differ only in this data.
package checksum

import (
	"errors"
	"fmt"
)

// ErrInvalidRule is returned for rules that break their own invariants.
var ErrInvalidRule = errors.New("invalid checksum rule")

// ErrVectorTooShort is returned when a rule reaches past the end of the input.
var ErrVectorTooShort = errors.New("digit vector too short for rule")

// NoDigit marks a remainder that yields no valid check digit.
const NoDigit = -1

// DefaultCheckDigit is the position of the check digit in a 10-digit account number.
const DefaultCheckDigit = 9

// Direction controls how weights are paired with digits.
type Direction int

const (
	// RightToLeft pairs Weights[0] with the rightmost digit of the range.
	// This is the notation of the Bundesbank method tables.
	RightToLeft Direction = iota
	// LeftToRight pairs Weights[0] with the digit at Start.
	LeftToRight
)

func (d Direction) String() string {
	if d == LeftToRight {
		return "ltr"
	}
	return "rtl"
}

// Combine controls how a digit and its weight contribute to the sum.
type Combine int

const (
	// Product adds digit*weight.
	Product Combine = iota
	// Crossfoot adds the digit sum of digit*weight.
	Crossfoot
	// Transform adds Transform29[weight-1][digit].
	Transform
)

func (c Combine) String() string {
	switch c {
	case Crossfoot:
		return "crossfoot"
	case Transform:
		return "transform"
	default:
		return "product"
	}
}

// Override replaces remainder mappings when the digit at Position equals Digit.
type Override struct {
	Position int
	Digit    int
	Map      map[int]int
}

// Rule is the configuration of one weighted-sum method.
type Rule struct {
	Weights    []int
	Start      int
	Direction  Direction
	Combine    Combine
	Modulus    int
	SumOffset  int
	Remainders []int
	Overrides  []Override
	CheckDigit int
	Excluded   []int
}

// End returns the exclusive end of the applied range.
func (r Rule) End() int {
	return r.Start + len(r.Weights)
}

// Check reports whether the rule is internally consistent.
func (r Rule) Check() error {
	if len(r.Weights) == 0 {
		return fmt.Errorf("%w: no weights", ErrInvalidRule)
	}
	if r.Start < 0 {
		return fmt.Errorf("%w: negative start %d", ErrInvalidRule, r.Start)
	}
	if r.Modulus < 2 {
		return fmt.Errorf("%w: modulus %d", ErrInvalidRule, r.Modulus)
	}
	if len(r.Remainders) != r.Modulus {
		return fmt.Errorf("%w: remainder map has %d entries for modulus %d", ErrInvalidRule, len(r.Remainders), r.Modulus)
	}
	for rem, d := range r.Remainders {
		if d != NoDigit && (d < 0 || d > 9) {
			return fmt.Errorf("%w: remainder %d maps to %d", ErrInvalidRule, rem, d)
		}
	}
	if r.CheckDigit < 0 {
		return fmt.Errorf("%w: negative check digit position", ErrInvalidRule)
	}
	if r.Combine == Transform {
		for _, w := range r.Weights {
			if w < 1 || w > len(Transform29) {
				return fmt.Errorf("%w: transform row %d", ErrInvalidRule, w)
			}
		}
	}
	for _, o := range r.Overrides {
		if o.Position < 0 {
			return fmt.Errorf("%w: override position %d", ErrInvalidRule, o.Position)
		}
		for rem := range o.Map {
			if rem < 0 || rem >= r.Modulus {
				return fmt.Errorf("%w: override remainder %d", ErrInvalidRule, rem)
			}
		}
	}
	return nil
}

// weightAt returns the weight paired with offset i of the applied range.
func (r Rule) weightAt(i int) int {
	if r.Direction == LeftToRight {
		return r.Weights[i]
	}
	return r.Weights[len(r.Weights)-1-i]
}

func (r Rule) excluded(d int) bool {
	for _, x := range r.Excluded {
		if x == d {
			return true
		}
	}
	return false
}
