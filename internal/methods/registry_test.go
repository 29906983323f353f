package methods

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/kontocheck/internal/checksum"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("x1", "lower-case code", Unchecked{}))
	require.NoError(t, reg.Register("00", "plain", Simple{rule00}))

	m, err := reg.Resolve("X1")
	require.NoError(t, err)
	assert.Equal(t, Unchecked{}, m)

	e, ok := reg.Get(" x1 ")
	require.True(t, ok)
	assert.Equal(t, "X1", e.Code)
	assert.Equal(t, KindNone, e.Kind)
	assert.Equal(t, "lower-case code", e.Description)

	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("00", "", Simple{rule00}))

	tests := []struct {
		name    string
		code    string
		method  Method
		wantErr error
	}{
		{"duplicate", "00", Simple{rule00}, ErrDuplicateMethod},
		{"too long", "000", Simple{rule00}, ErrInvalidCode},
		{"empty", "", Simple{rule00}, ErrInvalidCode},
		{"letter second", "0A", Simple{rule00}, ErrInvalidCode},
		{"nil method", "01", nil, ErrInvalidCode},
		{"empty chain", "02", Chain{}, ErrEmptyChain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.code, "", tt.method)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := reg.Resolve("ZZ")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = reg.Validate("E9", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestRegistry_ListIsSorted(t *testing.T) {
	reg := NewRegistry()
	for _, code := range []string{"C1", "00", "A2", "52"} {
		require.NoError(t, reg.Register(code, "", Unchecked{}))
	}

	var codes []string
	for _, e := range reg.List() {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{"00", "52", "A2", "C1"}, codes)
}

func TestRegistry_Kinds(t *testing.T) {
	reg := Builtin()

	tests := map[string]Kind{
		"00": KindRule,
		"09": KindNone,
		"52": KindChain,
		"B8": KindChain,
	}
	for code, want := range tests {
		e, ok := reg.Get(code)
		require.True(t, ok, code)
		assert.Equal(t, want, e.Kind, code)
	}

	assert.Equal(t, KindEser, kindOf(Eser{}))
}

func TestBuiltin_IsShared(t *testing.T) {
	assert.Same(t, Builtin(), Builtin())
	assert.NotSame(t, Builtin(), NewBuiltin())
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("00"))
	assert.True(t, ValidCode("c1"))
	assert.False(t, ValidCode("c"))
	assert.False(t, ValidCode("C1X"))
	assert.Equal(t, "C1", NormalizeCode(" c1 "))
}

func TestSimple_Check(t *testing.T) {
	res, err := Simple{rule00}.Check(parse(t, "9290701", 10), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Valid: true, Outcome: checksum.Valid, Alternative: NoAlternative}, res)
}
