// Package validation provides input validation for kontocheck.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/pendergraft/kontocheck/internal/digits"
)

// Input errors
var (
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrInvalidBankNumber    = errors.New("invalid bank number")
	ErrInvalidMethodCode    = errors.New("invalid method code")
	ErrInvalidVersion       = errors.New("invalid version")
)

// Method codes: a digit or upper-case letter followed by a digit
var methodCodeRegex = regexp.MustCompile(`^[0-9A-Z][0-9]$`)

// stripGrouping removes the blanks people put into printed account numbers.
func stripGrouping(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

// ParseAccountNumber parses up to ten digits into a left-padded vector.
func ParseAccountNumber(s string) (digits.Vector, error) {
	s = stripGrouping(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAccountNumber)
	}
	if len(s) > digits.AccountWidth {
		return nil, fmt.Errorf("%w: more than %d digits", ErrInvalidAccountNumber, digits.AccountWidth)
	}
	v, err := digits.Parse(s, digits.AccountWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountNumber, err)
	}
	return v, nil
}

// ParseBankNumber parses an eight digit bank number.
// An empty string yields a nil vector and no error.
func ParseBankNumber(s string) (digits.Vector, error) {
	s = stripGrouping(s)
	if s == "" {
		return nil, nil
	}
	if len(s) != digits.BankWidth {
		return nil, fmt.Errorf("%w: must be %d digits", ErrInvalidBankNumber, digits.BankWidth)
	}
	v, err := digits.Parse(s, digits.BankWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBankNumber, err)
	}
	return v, nil
}

// ValidateMethodCode validates a two character method code.
// Lower-case letters are accepted.
func ValidateMethodCode(code string) error {
	if !methodCodeRegex.MatchString(strings.ToUpper(strings.TrimSpace(code))) {
		return fmt.Errorf("%w: %q", ErrInvalidMethodCode, code)
	}
	return nil
}

// ValidateVersion validates a semantic version string
func ValidateVersion(v string) error {
	// Normalize: strip leading 'v' if present, then add it back for semver library
	normalized := NormalizeVersion(v)
	if normalized == "" {
		return fmt.Errorf("%w: version cannot be empty", ErrInvalidVersion)
	}

	if !semver.IsValid("v" + normalized) {
		return fmt.Errorf("%w: must be in format X.Y.Z or X.Y.Z-prerelease", ErrInvalidVersion)
	}

	// semver accepts "v1" and "v1.2"; require all three parts
	mainPart := strings.SplitN(normalized, "-", 2)[0]
	if strings.Count(mainPart, ".") < 2 {
		return fmt.Errorf("%w: must be in format X.Y.Z (major.minor.patch)", ErrInvalidVersion)
	}

	return nil
}

// ValidateSchemaVersion validates v and requires the given major version.
func ValidateSchemaVersion(v string, major int) error {
	if err := ValidateVersion(v); err != nil {
		return err
	}
	want := fmt.Sprintf("v%d", major)
	if got := semver.Major("v" + NormalizeVersion(v)); got != want {
		return fmt.Errorf("%w: unsupported schema version %s, want %d.x.x", ErrInvalidVersion, v, major)
	}
	return nil
}

// NormalizeVersion normalizes a version string (strips leading 'v')
func NormalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
