// Package methods provides the check-digit method registry, the alternative
// chain dispatcher and the built-in Bundesbank method table.
package methods

import (
	"errors"
	"fmt"

	"github.com/pendergraft/kontocheck/internal/checksum"
	"github.com/pendergraft/kontocheck/internal/digits"
	"github.com/pendergraft/kontocheck/internal/eser"
)

// ErrBankNumberRequired is returned by methods that need the routing number.
var ErrBankNumberRequired = errors.New("method requires a bank number")

// NoAlternative is reported when no chain entry decided the result.
const NoAlternative = -1

// Method checks an account number. bank may be nil for methods that do not
// use it. Implementations are stateless and safe for concurrent use.
type Method interface {
	Check(account, bank digits.Vector) (Result, error)
}

// Result is the outcome of one validation.
type Result struct {
	Valid       bool
	Outcome     checksum.Outcome
	Alternative int
	Exception   bool
}

func resultOf(o checksum.Outcome) Result {
	return Result{
		Valid:       o.OK(),
		Outcome:     o,
		Alternative: NoAlternative,
		Exception:   o.Exceptional(),
	}
}

// accountVector pads account to digits.AccountWidth and rejects wider input.
func accountVector(account digits.Vector) (digits.Vector, error) {
	if account.Len() > digits.AccountWidth {
		return nil, fmt.Errorf("%w: account has %d digits, at most %d allowed",
			digits.ErrOutOfRange, account.Len(), digits.AccountWidth)
	}
	return digits.LeftPad(account, digits.AccountWidth), nil
}

// Simple is a method consisting of exactly one rule.
type Simple struct {
	Rule checksum.Rule
}

// Check implements Method.
func (s Simple) Check(account, _ digits.Vector) (Result, error) {
	account, err := accountVector(account)
	if err != nil {
		return Result{Alternative: NoAlternative}, err
	}
	o, err := checksum.Validate(account, s.Rule)
	if err != nil {
		return Result{Alternative: NoAlternative}, err
	}
	return resultOf(o), nil
}

// Unchecked accepts every number without computing anything.
type Unchecked struct{}

// Check implements Method.
func (Unchecked) Check(account, _ digits.Vector) (Result, error) {
	if _, err := accountVector(account); err != nil {
		return Result{Alternative: NoAlternative}, err
	}
	return resultOf(checksum.Unchecked), nil
}

// Eser checks the legacy ESER number derived from account and bank.
type Eser struct {
	Resolver eser.Resolver
}

// Check implements Method.
func (e Eser) Check(account, bank digits.Vector) (Result, error) {
	if bank.Len() == 0 {
		return Result{Alternative: NoAlternative}, ErrBankNumberRequired
	}
	o, err := e.Resolver.Validate(account, bank)
	if err != nil {
		return Result{Alternative: NoAlternative}, err
	}
	return resultOf(o), nil
}
