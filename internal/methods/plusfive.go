package methods

import (
	"github.com/pendergraft/kontocheck/internal/checksum"
	"github.com/pendergraft/kontocheck/internal/digits"
)

// PlusFive is a weighted sum that also accepts the computed check digit
// plus five (mod 10). Weights run right to left from the digit in front
// of the check digit.
type PlusFive struct {
	Weights []int
	// Fold replaces each product by (product + weight) mod 11 and takes
	// the sum mod 10. Without Fold the sum is taken mod 11.
	Fold bool
}

// Check implements Method.
func (p PlusFive) Check(account, _ digits.Vector) (Result, error) {
	account, err := accountVector(account)
	if err != nil {
		return Result{Alternative: NoAlternative}, err
	}

	last := digits.AccountWidth - 1
	sum := 0
	for i, w := range p.Weights {
		product := account.At(last-1-i) * w
		if p.Fold {
			product = (product + w) % 11
		}
		sum += product
	}

	want := sum % 11
	if p.Fold {
		want = sum % 10
	}

	got := account.At(last)
	if got == want || got == (want+5)%10 {
		return resultOf(checksum.Valid), nil
	}
	return resultOf(checksum.Invalid), nil
}
