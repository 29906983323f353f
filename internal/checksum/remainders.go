package checksum

// Mod10Complement maps r to (10 - r) mod 10.
func Mod10Complement() []int {
	m := make([]int, 10)
	for r := range m {
		m[r] = (10 - r) % 10
	}
	return m
}

// Mod11 maps remainders 0 and 1 to 0 and every other r to 11 - r.
func Mod11() []int {
	m := make([]int, 11)
	for r := 2; r < 11; r++ {
		m[r] = 11 - r
	}
	return m
}

// Mod11Strict maps 0 to 0, treats remainder 1 as invalid and r to 11 - r otherwise.
func Mod11Strict() []int {
	m := Mod11()
	m[1] = NoDigit
	return m
}

// Mod11NoZero treats remainders 0 and 1 as invalid and maps r to 11 - r otherwise.
func Mod11NoZero() []int {
	m := Mod11()
	m[0], m[1] = NoDigit, NoDigit
	return m
}

// Mod11Descending maps 0 to 0 and r to 10 - r otherwise.
func Mod11Descending() []int {
	m := make([]int, 11)
	for r := 1; r < 11; r++ {
		m[r] = 10 - r
	}
	return m
}

// Complement maps 0 to 0 and r to modulus - r otherwise.
// Results above 9 are invalid.
func Complement(modulus int) []int {
	m := make([]int, modulus)
	for r := 1; r < modulus; r++ {
		d := modulus - r
		if d > 9 {
			d = NoDigit
		}
		m[r] = d
	}
	return m
}

// Transform29 holds the iterated transformation rows of method 29.
// Row k-1 is selected by weight k.
var Transform29 = [4][10]int{
	{0, 1, 5, 9, 3, 7, 4, 8, 2, 6},
	{0, 1, 7, 6, 9, 8, 3, 2, 5, 4},
	{0, 1, 8, 4, 6, 2, 9, 5, 7, 3},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
}
