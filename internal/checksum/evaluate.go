package checksum

import (
	"fmt"

	"github.com/pendergraft/kontocheck/internal/digits"
)

// Outcome is the result of checking one number against one method.
type Outcome int

const (
	// Invalid means the check digit does not match.
	Invalid Outcome = iota
	// Valid means the check digit matches.
	Valid
	// NotApplicable means the number lies outside the method's domain,
	// for example a check digit the modulus can never produce.
	NotApplicable
	// Unchecked means the method defines no check for this number.
	Unchecked
	// Unresolvable means no check digit can satisfy the method at all.
	Unresolvable
)

var outcomeNames = map[Outcome]string{
	Invalid:       "invalid",
	Valid:         "valid",
	NotApplicable: "not_applicable",
	Unchecked:     "unchecked",
	Unresolvable:  "unresolvable",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// OK reports whether the outcome counts as a valid account number.
func (o Outcome) OK() bool {
	return o == Valid || o == Unchecked
}

// Exceptional reports whether the number is outside the normal checkable domain.
func (o Outcome) Exceptional() bool {
	return o == NotApplicable || o == Unchecked
}

// Evaluate computes the expected check digit of v under r.
// It returns NoDigit when the remainder has no valid check digit.
func Evaluate(v digits.Vector, r Rule) (int, error) {
	if err := r.Check(); err != nil {
		return NoDigit, err
	}
	if r.End() > v.Len() {
		return NoDigit, fmt.Errorf("%w: range ends at %d, have %d digits", ErrVectorTooShort, r.End(), v.Len())
	}

	sum := r.SumOffset
	for i := range r.Weights {
		d := v.At(r.Start + i)
		w := r.weightAt(i)
		switch r.Combine {
		case Crossfoot:
			sum += digits.Crossfoot(d * w)
		case Transform:
			sum += Transform29[w-1][d]
		default:
			sum += d * w
		}
	}

	rem := sum % r.Modulus
	if rem < 0 {
		rem += r.Modulus
	}

	result := r.Remainders[rem]
	for _, o := range r.Overrides {
		if o.Position < v.Len() && v.At(o.Position) == o.Digit {
			if d, ok := o.Map[rem]; ok {
				result = d
			}
		}
	}
	return result, nil
}

// Validate checks the digit at r.CheckDigit against Evaluate.
func Validate(v digits.Vector, r Rule) (Outcome, error) {
	if r.CheckDigit >= v.Len() {
		return Invalid, fmt.Errorf("%w: check digit at %d, have %d digits", ErrVectorTooShort, r.CheckDigit, v.Len())
	}
	actual := v.At(r.CheckDigit)
	if r.excluded(actual) {
		return NotApplicable, nil
	}

	expected, err := Evaluate(v, r)
	if err != nil {
		return Invalid, err
	}
	if expected == NoDigit || expected != actual {
		return Invalid, nil
	}
	return Valid, nil
}
