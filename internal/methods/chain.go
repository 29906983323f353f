package methods

import (
	"github.com/pendergraft/kontocheck/internal/checksum"
	"github.com/pendergraft/kontocheck/internal/digits"
)

// Predicate decides whether a chain entry applies to an account number.
// The vector is always padded to digits.AccountWidth.
type Predicate func(digits.Vector) bool

// Alternative is one entry of a Chain.
type Alternative struct {
	// When selects the numbers the entry applies to. nil means always.
	When Predicate
	// Method runs when the predicate holds.
	Method Method
	// Exclusive entries decide the result even when the check fails.
	// Non-exclusive entries fall through to the next entry on failure.
	Exclusive bool
	// Exception marks the numbers selected by When as an exception range.
	Exception bool
}

// Chain tries its alternatives in order.
type Chain []Alternative

// Check implements Method. Alternative in the result is the index of the
// deciding entry of this chain, even when that entry is itself a chain.
func (c Chain) Check(account, bank digits.Vector) (Result, error) {
	account, err := accountVector(account)
	if err != nil {
		return Result{Alternative: NoAlternative}, err
	}

	last := checksum.Invalid
	for i, alt := range c {
		if alt.When != nil && !alt.When(account) {
			continue
		}

		res, err := alt.Method.Check(account, bank)
		if err != nil {
			return Result{Alternative: NoAlternative}, err
		}

		if res.Outcome.OK() || alt.Exclusive {
			return Result{
				Valid:       res.Outcome.OK(),
				Outcome:     res.Outcome,
				Alternative: i,
				Exception:   res.Exception || alt.Exception,
			}, nil
		}
		last = res.Outcome
	}

	return resultOf(last), nil
}

// DigitIs holds when the digit at pos is one of values.
func DigitIs(pos int, values ...int) Predicate {
	return func(v digits.Vector) bool {
		d := v.At(pos)
		for _, x := range values {
			if d == x {
				return true
			}
		}
		return false
	}
}

// DigitIsNot holds when the digit at pos is none of values.
func DigitIsNot(pos int, values ...int) Predicate {
	return Not(DigitIs(pos, values...))
}

// PrefixIs holds when the number starts with the given digits.
func PrefixIs(prefix ...int) Predicate {
	return func(v digits.Vector) bool {
		return v.HasPrefix(prefix...)
	}
}

// LeadingZeros holds when the number has exactly n leading zeros.
func LeadingZeros(n int) Predicate {
	return func(v digits.Vector) bool {
		return digits.CountLeadingZeros(v) == n
	}
}

// Range is an inclusive range of account values.
type Range struct {
	From, To int64
}

// InRanges holds when the numeric value lies in one of ranges.
func InRanges(ranges ...Range) Predicate {
	return func(v digits.Vector) bool {
		n := v.Int()
		for _, r := range ranges {
			if n >= r.From && n <= r.To {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(v digits.Vector) bool {
		return !p(v)
	}
}
