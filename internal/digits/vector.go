// Package digits provides fixed-width decimal digit vectors, the input type of
// every check-digit method.
package digits

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned when building vectors.
var (
	ErrOutOfRange = errors.New("value does not fit the requested width")
	ErrNotDigit   = errors.New("not a decimal digit")
)

// AccountWidth is the width of a German account number.
const AccountWidth = 10

// BankWidth is the width of a German bank routing number (BLZ).
const BankWidth = 8

// Vector is an ordered sequence of decimal digits, most significant first.
// A Vector is never modified after construction.
type Vector []int

// FromInteger converts value to a vector of exactly width digits.
func FromInteger(value int64, width int) (Vector, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: negative value %d", ErrOutOfRange, value)
	}
	v := make(Vector, width)
	n := value
	for i := width - 1; i >= 0; i-- {
		v[i] = int(n % 10)
		n /= 10
	}
	if n != 0 {
		return nil, fmt.Errorf("%w: %d needs more than %d digits", ErrOutOfRange, value, width)
	}
	return v, nil
}

// Parse converts a literal digit string to a vector left-padded to width.
func Parse(s string, width int) (Vector, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrNotDigit)
	}
	if len(s) > width {
		return nil, fmt.Errorf("%w: %q has more than %d digits", ErrOutOfRange, s, width)
	}
	v := make(Vector, width)
	offset := width - len(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: %q at position %d", ErrNotDigit, c, i)
		}
		v[offset+i] = int(c - '0')
	}
	return v, nil
}

// FromDigits copies ds into a new vector after checking every element.
func FromDigits(ds []int) (Vector, error) {
	v := make(Vector, len(ds))
	for i, d := range ds {
		if d < 0 || d > 9 {
			return nil, fmt.Errorf("%w: %d at position %d", ErrNotDigit, d, i)
		}
		v[i] = d
	}
	return v, nil
}

// LeftPad prepends zeros until v has width digits. It never truncates.
func LeftPad(v Vector, width int) Vector {
	if len(v) >= width {
		return v
	}
	out := make(Vector, width)
	copy(out[width-len(v):], v)
	return out
}

// Crossfoot returns the sum of the decimal digits of n.
// For negative n the sum is negative as well: Crossfoot(-13) == -4.
func Crossfoot(n int) int {
	sum := 0
	for n != 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

// CountLeadingZeros returns the number of zeros before the first non-zero digit.
func CountLeadingZeros(v Vector) int {
	for i, d := range v {
		if d != 0 {
			return i
		}
	}
	return len(v)
}

// Len returns the number of digits.
func (v Vector) Len() int {
	return len(v)
}

// At returns the digit at position i.
func (v Vector) At(i int) int {
	return v[i]
}

// With returns a copy of v with position i set to d.
func (v Vector) With(i, d int) Vector {
	out := make(Vector, len(v))
	copy(out, v)
	out[i] = d
	return out
}

// Slice returns a copy of the digits in [from, to).
func (v Vector) Slice(from, to int) Vector {
	out := make(Vector, to-from)
	copy(out, v[from:to])
	return out
}

// HasPrefix reports whether v starts with the given digits.
func (v Vector) HasPrefix(prefix ...int) bool {
	if len(prefix) > len(v) {
		return false
	}
	for i, d := range prefix {
		if v[i] != d {
			return false
		}
	}
	return true
}

// Int returns the numeric value of v.
// Vectors longer than 18 digits overflow.
func (v Vector) Int() int64 {
	var n int64
	for _, d := range v {
		n = n*10 + int64(d)
	}
	return n
}

// String returns the digits as a string, leading zeros included.
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(len(v))
	for _, d := range v {
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

// Equal reports whether v and o hold the same digits.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}
