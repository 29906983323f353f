package methods

import (
	"fmt"
	"sync"

	cs "github.com/pendergraft/kontocheck/internal/checksum"
	"github.com/pendergraft/kontocheck/internal/eser"
)

// Weights below are written right to left, as in the Bundesbank tables:
// the first weight multiplies the digit in front of the check digit.

func w(ws ...int) []int { return ws }

// mod10 builds a modulus 10 rule over [start, start+len(weights)).
func mod10(combine cs.Combine, start int, weights ...int) cs.Rule {
	return cs.Rule{
		Weights:    weights,
		Start:      start,
		Combine:    combine,
		Modulus:    10,
		Remainders: cs.Mod10Complement(),
		CheckDigit: cs.DefaultCheckDigit,
	}
}

// mod11 builds a modulus 11 rule with the given remainder map.
func mod11(remainders []int, start int, weights ...int) cs.Rule {
	return cs.Rule{
		Weights:    weights,
		Start:      start,
		Modulus:    11,
		Remainders: remainders,
		CheckDigit: cs.DefaultCheckDigit,
	}
}

// complement builds a rule with a small modulus whose check digit is
// modulus - remainder. Check digits the modulus cannot produce are excluded.
func complement(modulus, start int, excluded []int, weights ...int) cs.Rule {
	return cs.Rule{
		Weights:    weights,
		Start:      start,
		Modulus:    modulus,
		Remainders: cs.Complement(modulus),
		CheckDigit: cs.DefaultCheckDigit,
		Excluded:   excluded,
	}
}

func at(r cs.Rule, pos int) cs.Rule {
	r.CheckDigit = pos
	return r
}

var (
	rule00 = mod10(cs.Crossfoot, 0, 2, 1, 2, 1, 2, 1, 2, 1, 2)
	rule01 = mod10(cs.Product, 0, 3, 7, 1, 3, 7, 1, 3, 7, 1)
	rule02 = mod11(cs.Mod11Strict(), 0, 2, 3, 4, 5, 6, 7, 8, 9, 2)
	rule03 = mod10(cs.Product, 0, 2, 1, 2, 1, 2, 1, 2, 1, 2)
	rule04 = mod11(cs.Mod11Strict(), 0, 2, 3, 4, 5, 6, 7, 2, 3, 4)
	rule06 = mod11(cs.Mod11(), 0, 2, 3, 4, 5, 6, 7, 2, 3, 4)
	rule10 = mod11(cs.Mod11(), 0, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	rule15 = mod11(cs.Mod11(), 5, 2, 3, 4, 5)
	rule17 = cs.Rule{
		Weights:    w(1, 2, 1, 2, 1, 2),
		Start:      1,
		Direction:  cs.LeftToRight,
		Combine:    cs.Crossfoot,
		Modulus:    11,
		SumOffset:  -1,
		Remainders: cs.Mod11Descending(),
		CheckDigit: 7,
	}
	rule20 = mod11(cs.Mod11(), 0, 2, 3, 4, 5, 6, 7, 8, 9, 3)
	rule29 = mod10(cs.Transform, 0, 1, 2, 3, 4, 1, 2, 3, 4, 1)
	rule32 = mod11(cs.Mod11(), 3, 2, 3, 4, 5, 6, 7)
	rule37 = mod11(cs.Mod11(), 4, 2, 4, 8, 5, 10)
	rule47 = at(mod11(cs.Mod11(), 3, 2, 3, 4, 5, 6), 8)
	rule56 = cs.Rule{
		Weights:    w(2, 3, 4, 5, 6, 7, 2, 3, 4),
		Modulus:    11,
		Remainders: cs.Mod11NoZero(),
		Overrides: []cs.Override{
			{Position: 0, Digit: 9, Map: map[int]int{0: 8, 1: 7}},
		},
		CheckDigit: cs.DefaultCheckDigit,
	}
	rule58 = mod11(cs.Mod11Strict(), 4, 2, 3, 4, 5, 6)
	rule60 = mod10(cs.Crossfoot, 2, 2, 1, 2, 1, 2, 1, 2)
	rule67 = at(mod10(cs.Crossfoot, 0, 2, 1, 2, 1, 2, 1, 2), 7)

	// 51 and 81 exception range: digit 3 is 9.
	rule51x1 = mod11(cs.Mod11(), 2, 2, 3, 4, 5, 6, 7, 8)
	rule51x2 = mod11(cs.Mod11(), 0, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	rule51A  = mod11(cs.Mod11(), 3, 2, 3, 4, 5, 6, 7)
	rule51B  = mod11(cs.Mod11(), 4, 2, 3, 4, 5, 6)
	rule51C  = mod10(cs.Crossfoot, 3, 2, 1, 2, 1, 2, 1)
	rule51D  = complement(7, 3, w(7, 8, 9), 2, 3, 4, 5, 6, 7)

	rule68a = mod10(cs.Crossfoot, 3, 2, 1, 2, 1, 2, 1)
	// 9-digit variant: digits 3 and 4 are not weighted.
	rule68c = mod10(cs.Crossfoot, 0, 2, 1, 2, 1, 2, 0, 0, 1, 2)

	rule90A = mod11(cs.Mod11(), 3, 2, 3, 4, 5, 6, 7)
	rule90B = mod11(cs.Mod11(), 4, 2, 3, 4, 5, 6)
	rule90C = complement(7, 4, w(7, 8, 9), 2, 3, 4, 5, 6)
	rule90D = complement(9, 4, w(9), 2, 3, 4, 5, 6)
	rule90E = mod10(cs.Product, 4, 2, 1, 2, 1, 2)
	rule90F = mod11(cs.Mod11(), 2, 2, 3, 4, 5, 6, 7, 8)

	ruleC1b = cs.Rule{
		Weights:    w(1, 2, 1, 2, 1, 2, 1, 2, 1),
		Combine:    cs.Crossfoot,
		Modulus:    11,
		SumOffset:  -1,
		Remainders: cs.Mod11Descending(),
		CheckDigit: cs.DefaultCheckDigit,
	}
	ruleC2a = mod10(cs.Product, 0, 3, 1, 3, 1, 3, 1, 3, 1, 3)
)

var exempt95 = []Range{
	{From: 1, To: 1999999},
	{From: 9000000, To: 25999999},
	{From: 396000000, To: 499999999},
	{From: 700000000, To: 799999999},
	{From: 910000000, To: 989999999},
}

type builtinEntry struct {
	code        string
	description string
	method      Method
}

func builtinTable() []builtinEntry {
	m00 := Simple{rule00}
	m02 := Simple{rule02}
	m15 := Simple{rule15}
	m17 := Simple{rule17}
	m20 := Simple{rule20}
	m29 := Simple{rule29}
	m58 := Simple{rule58}
	esr := Eser{Resolver: eser.DefaultResolver}
	m68 := Chain{
		{When: DigitIsNot(0, 0), Method: Chain{
			{When: DigitIs(3, 9), Method: Simple{rule68a}, Exclusive: true},
		}, Exclusive: true},
		{When: InRanges(Range{From: 400000000, To: 499999999}), Method: Unchecked{}, Exclusive: true},
		{Method: m00},
		{Method: Simple{rule68c}},
	}
	m95 := Chain{
		{When: InRanges(exempt95...), Method: Unchecked{}, Exclusive: true},
		{Method: Simple{rule06}, Exclusive: true},
	}

	thirdIsNine := DigitIs(2, 9)
	thirdNotNine := DigitIsNot(2, 9)
	sachkonto := Chain{
		{Method: Simple{rule51x1}},
		{Method: Simple{rule51x2}},
	}

	return []builtinEntry{
		{"00", "modulus 10, weights 2,1,2,1,... with crossfoot", m00},
		{"01", "modulus 10, weights 3,7,1,3,7,1,...", Simple{rule01}},
		{"02", "modulus 11, weights 2,3,4,5,6,7,8,9,2; remainder 1 invalid", m02},
		{"03", "modulus 10, weights 2,1,2,1,...", Simple{rule03}},
		{"04", "modulus 11, weights 2,3,4,5,6,7,2,3,4; remainder 1 invalid", Simple{rule04}},
		{"06", "modulus 11, weights 2,3,4,5,6,7,2,3,4", Simple{rule06}},
		{"09", "no check digit calculation", Unchecked{}},
		{"10", "modulus 11, weights 2,3,4,5,6,7,8,9,10", Simple{rule10}},
		{"15", "modulus 11, weights 2,3,4,5 over digits 6 to 9", m15},
		{"17", "modulus 11, weights 1,2,1,2,1,2 with crossfoot, check digit at 8", m17},
		{"20", "modulus 11, weights 2,3,4,5,6,7,8,9,3", m20},
		{"29", "modulus 10, iterated transformation", m29},
		{"32", "modulus 11, weights 2,3,4,5,6,7 over digits 4 to 9", Simple{rule32}},
		{"37", "modulus 11, weights 2,4,8,5,10 over digits 5 to 9", Simple{rule37}},
		{"47", "modulus 11, weights 2,3,4,5,6 over digits 4 to 8, check digit at 9", Simple{rule47}},
		{"51", "modulus 11 and modulus 7 variants with exception range", Chain{
			{When: thirdIsNine, Method: sachkonto, Exclusive: true, Exception: true},
			{When: thirdNotNine, Method: Simple{rule51A}},
			{When: thirdNotNine, Method: Simple{rule51B}},
			{When: thirdNotNine, Method: Simple{rule51C}},
			{When: thirdNotNine, Method: Simple{rule51D}},
		}},
		{"52", "ESER legacy number; 9-prefixed numbers use method 20", Chain{
			{When: DigitIs(0, 9), Method: m20, Exclusive: true},
			{Method: esr, Exclusive: true},
		}},
		{"56", "modulus 11, weights 2,3,4,5,6,7,2,3,4; 9-prefixed override", Simple{rule56}},
		{"58", "modulus 11, weights 2,3,4,5,6 over digits 5 to 9", m58},
		{"60", "modulus 10, weights 2,1,2,1,2,1,2 with crossfoot over digits 3 to 9", Simple{rule60}},
		{"67", "modulus 10, weights 2,1,2,1,2,1,2 with crossfoot, check digit at 8", Simple{rule67}},
		{"68", "modulus 10 with crossfoot; 10-digit and exempt ranges", m68},
		{"81", "method 32 with exception range", Chain{
			{When: thirdIsNine, Method: sachkonto, Exclusive: true, Exception: true},
			{Method: Simple{rule32}, Exclusive: true},
		}},
		{"90", "modulus 11, 7, 9 and 10 variants; exception range for digit 3 = 9", Chain{
			{When: thirdNotNine, Method: Simple{rule90A}},
			{When: thirdNotNine, Method: Simple{rule90B}},
			{When: thirdNotNine, Method: Simple{rule90C}},
			{When: thirdNotNine, Method: Simple{rule90D}},
			{When: thirdNotNine, Method: Simple{rule90E}},
			{When: thirdIsNine, Method: Simple{rule90F}, Exclusive: true},
		}},
		{"95", "method 06 with unchecked number ranges", m95},
		{"A2", "method 00, then method 04", Chain{
			{Method: m00},
			{Method: Simple{rule04}},
		}},
		{"A3", "method 00, then method 10", Chain{
			{Method: m00},
			{Method: Simple{rule10}},
		}},
		{"A7", "method 00, then method 03", Chain{
			{Method: m00},
			{Method: Simple{rule03}},
		}},
		{"A9", "method 01, then method 06", Chain{
			{Method: Simple{rule01}},
			{Method: Simple{rule06}},
		}},
		{"B2", "method 02 for leading 0-7, method 00 for leading 8-9", Chain{
			{When: DigitIsNot(0, 8, 9), Method: m02, Exclusive: true},
			{When: DigitIs(0, 8, 9), Method: m00, Exclusive: true},
		}},
		{"B8", "method 20, then method 29", Chain{
			{Method: m20},
			{Method: m29},
		}},
		{"B9", "modulus 11/10 for two leading zeros, modulus 11 for three; check digit plus 5 accepted", Chain{
			{When: LeadingZeros(2), Method: PlusFive{Weights: w(1, 3, 2, 1, 3, 2, 1), Fold: true}, Exclusive: true},
			{When: LeadingZeros(3), Method: PlusFive{Weights: w(1, 2, 3, 4, 5, 6)}, Exclusive: true},
		}},
		{"C0", "ESER for 8-digit numbers, then method 20", Chain{
			{When: LeadingZeros(2), Method: esr},
			{Method: m20, Exclusive: true},
		}},
		{"C1", "method 17; 5-prefixed numbers use a 9-digit variant", Chain{
			{When: DigitIsNot(0, 5), Method: m17, Exclusive: true},
			{When: DigitIs(0, 5), Method: Simple{ruleC1b}, Exclusive: true},
		}},
		{"C2", "modulus 10 weights 3,1,3,1,..., then method 00", Chain{
			{Method: Simple{ruleC2a}},
			{Method: m00},
		}},
		{"C3", "method 00; 9-prefixed numbers use method 58", Chain{
			{When: DigitIsNot(0, 9), Method: m00, Exclusive: true},
			{When: DigitIs(0, 9), Method: m58, Exclusive: true},
		}},
		{"C4", "method 15; 9-prefixed numbers use method 58", Chain{
			{When: DigitIsNot(0, 9), Method: m15, Exclusive: true},
			{When: DigitIs(0, 9), Method: m58, Exclusive: true},
		}},
		{"D0", "method 20; 57-prefixed numbers are not checked", Chain{
			{When: Not(PrefixIs(5, 7)), Method: m20, Exclusive: true},
			{When: PrefixIs(5, 7), Method: Unchecked{}, Exclusive: true},
		}},
		{"D2", "method 95, then method 00, then method 68", Chain{
			{Method: m95},
			{Method: m00},
			{Method: m68},
		}},
	}
}

// NewBuiltin returns a new registry holding the built-in method table.
// Callers may register further methods before sharing it.
func NewBuiltin() *Registry {
	reg := NewRegistry()
	for _, e := range builtinTable() {
		if err := reg.Register(e.code, e.description, e.method); err != nil {
			panic(fmt.Sprintf("methods: built-in table: %v", err))
		}
	}
	return reg
}

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the shared read-only built-in registry.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		builtin = NewBuiltin()
	})
	return builtin
}
