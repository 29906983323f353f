package methods

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pendergraft/kontocheck/internal/digits"
)

// Common registry errors.
var (
	ErrUnknownMethod   = errors.New("unknown method")
	ErrDuplicateMethod = errors.New("method already registered")
	ErrInvalidCode     = errors.New("invalid method code")
	ErrEmptyChain      = errors.New("chain has no alternatives")
)

// Method codes are two characters: a digit or letter followed by a digit.
var codeRegex = regexp.MustCompile(`^[0-9A-Z][0-9]$`)

// Kind describes the shape of a registered method.
type Kind string

const (
	KindRule  Kind = "rule"
	KindChain Kind = "chain"
	KindEser  Kind = "eser"
	KindNone  Kind = "none"
)

// Entry is a registered method with its metadata.
type Entry struct {
	Code        string
	Description string
	Kind        Kind
	Method      Method
}

// Registry maps method codes to methods.
// Register is not safe for concurrent use; fill the registry before sharing it.
// Lookups are safe for concurrent use.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// NormalizeCode upper-cases and trims a method code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code is a well-formed method code.
func ValidCode(code string) bool {
	return codeRegex.MatchString(NormalizeCode(code))
}

// Register adds a method under code.
func (r *Registry) Register(code, description string, m Method) error {
	code = NormalizeCode(code)
	if !codeRegex.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	if m == nil {
		return fmt.Errorf("%w: %s has no method", ErrInvalidCode, code)
	}
	if c, ok := m.(Chain); ok && len(c) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyChain, code)
	}
	if _, exists := r.entries[code]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMethod, code)
	}
	r.entries[code] = Entry{
		Code:        code,
		Description: description,
		Kind:        kindOf(m),
		Method:      m,
	}
	return nil
}

// Resolve returns the method registered under code.
func (r *Registry) Resolve(code string) (Method, error) {
	e, ok := r.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, code)
	}
	return e.Method, nil
}

// Get returns the entry registered under code.
func (r *Registry) Get(code string) (Entry, bool) {
	e, ok := r.entries[NormalizeCode(code)]
	return e, ok
}

// List returns all entries sorted by code.
func (r *Registry) List() []Entry {
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Code < entries[j].Code
	})
	return entries
}

// Len returns the number of registered methods.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Validate resolves code and checks account with it.
func (r *Registry) Validate(code string, account, bank digits.Vector) (Result, error) {
	m, err := r.Resolve(code)
	if err != nil {
		return Result{Alternative: NoAlternative}, err
	}
	return m.Check(account, bank)
}

func kindOf(m Method) Kind {
	switch m.(type) {
	case Simple, PlusFive:
		return KindRule
	case Chain:
		return KindChain
	case Eser:
		return KindEser
	case Unchecked:
		return KindNone
	default:
		return KindChain
	}
}
