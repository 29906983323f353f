package methods

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	cs "github.com/pendergraft/kontocheck/internal/checksum"
	"github.com/pendergraft/kontocheck/internal/digits"
	"github.com/pendergraft/kontocheck/internal/validation"
)

// ErrInvalidDefinition is wrapped by every error of the definition loader.
var ErrInvalidDefinition = errors.New("invalid method definition")

// SchemaMajor is the supported major version of definition files.
const SchemaMajor = 1

// Format is the encoding of a definition file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported file extension %q", ErrInvalidDefinition, filepath.Ext(path))
	}
}

// Definition is the document root of a definition file.
type Definition struct {
	SchemaVersion string      `toml:"schema_version" yaml:"schema_version"`
	Methods       []MethodDef `toml:"methods" yaml:"methods"`
}

// MethodDef defines one method. Exactly one of Rule and Alternatives is set.
type MethodDef struct {
	Code         string           `toml:"code" yaml:"code"`
	Description  string           `toml:"description" yaml:"description"`
	Rule         *RuleDef         `toml:"rule" yaml:"rule"`
	Alternatives []AlternativeDef `toml:"alternatives" yaml:"alternatives"`
}

// RuleDef is the file form of a checksum.Rule.
type RuleDef struct {
	Weights    []int  `toml:"weights" yaml:"weights"`
	Start      int    `toml:"start" yaml:"start"`
	Modulus    int    `toml:"modulus" yaml:"modulus"`
	Combine    string `toml:"combine" yaml:"combine"`
	Direction  string `toml:"direction" yaml:"direction"`
	Remainders string `toml:"remainders" yaml:"remainders"`
	CheckDigit *int   `toml:"check_digit" yaml:"check_digit"`
	Excluded   []int  `toml:"excluded" yaml:"excluded"`
	SumOffset  int    `toml:"sum_offset" yaml:"sum_offset"`
}

// AlternativeDef is one chain entry referring to a registered code.
// When Digit is set the entry only applies if that digit is one of Values.
type AlternativeDef struct {
	Code      string `toml:"code" yaml:"code"`
	Exclusive bool   `toml:"exclusive" yaml:"exclusive"`
	Digit     *int   `toml:"digit" yaml:"digit"`
	Values    []int  `toml:"values" yaml:"values"`
}

// LoadFile reads a definition file and registers its methods in reg.
func LoadFile(reg *Registry, path string) (int, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return Load(reg, data, format)
}

// Load decodes data and registers its methods in reg. Nothing is
// registered when any method of the document is invalid.
// It returns the number of registered methods.
func Load(reg *Registry, data []byte, format Format) (int, error) {
	var def Definition
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &def)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return 0, fmt.Errorf("%w: unknown key %q", ErrInvalidDefinition, undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
	default:
		return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidDefinition, format)
	}

	if err := validation.ValidateSchemaVersion(def.SchemaVersion, SchemaMajor); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	type staged struct {
		code, description string
		method            Method
	}
	pending := make([]staged, 0, len(def.Methods))
	local := make(map[string]Method, len(def.Methods))

	lookup := func(code string) (Method, bool) {
		code = NormalizeCode(code)
		if m, ok := local[code]; ok {
			return m, true
		}
		if e, ok := reg.Get(code); ok {
			return e.Method, true
		}
		return nil, false
	}

	for i, md := range def.Methods {
		code := NormalizeCode(md.Code)
		if !ValidCode(code) {
			return 0, fmt.Errorf("%w: methods[%d]: %v: %q", ErrInvalidDefinition, i, ErrInvalidCode, md.Code)
		}
		if _, exists := lookup(code); exists {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, code, ErrDuplicateMethod)
		}

		m, err := md.build(lookup)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, code, err)
		}
		local[code] = m
		pending = append(pending, staged{code: code, description: md.Description, method: m})
	}

	for _, p := range pending {
		if err := reg.Register(p.code, p.description, p.method); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
	}
	return len(pending), nil
}

func (md MethodDef) build(lookup func(string) (Method, bool)) (Method, error) {
	switch {
	case md.Rule != nil && len(md.Alternatives) > 0:
		return nil, errors.New("rule and alternatives are mutually exclusive")
	case md.Rule != nil:
		r, err := md.Rule.rule()
		if err != nil {
			return nil, err
		}
		return Simple{Rule: r}, nil
	case len(md.Alternatives) > 0:
		chain := make(Chain, 0, len(md.Alternatives))
		for i, ad := range md.Alternatives {
			m, ok := lookup(ad.Code)
			if !ok {
				return nil, fmt.Errorf("alternatives[%d]: %w: %q", i, ErrUnknownMethod, ad.Code)
			}
			alt := Alternative{Method: m, Exclusive: ad.Exclusive}
			if ad.Digit != nil {
				if *ad.Digit < 0 || *ad.Digit >= digits.AccountWidth {
					return nil, fmt.Errorf("alternatives[%d]: digit position %d out of range", i, *ad.Digit)
				}
				if len(ad.Values) == 0 {
					return nil, fmt.Errorf("alternatives[%d]: digit without values", i)
				}
				alt.When = DigitIs(*ad.Digit, ad.Values...)
			}
			chain = append(chain, alt)
		}
		return chain, nil
	default:
		return nil, errors.New("either rule or alternatives is required")
	}
}

func (rd RuleDef) rule() (cs.Rule, error) {
	r := cs.Rule{
		Weights:    rd.Weights,
		Start:      rd.Start,
		Modulus:    rd.Modulus,
		SumOffset:  rd.SumOffset,
		CheckDigit: cs.DefaultCheckDigit,
		Excluded:   rd.Excluded,
	}
	if rd.CheckDigit != nil {
		r.CheckDigit = *rd.CheckDigit
	}

	switch strings.ToLower(rd.Combine) {
	case "", "product":
		r.Combine = cs.Product
	case "crossfoot":
		r.Combine = cs.Crossfoot
	default:
		return r, fmt.Errorf("unknown combine %q", rd.Combine)
	}

	switch strings.ToLower(rd.Direction) {
	case "", "rtl":
		r.Direction = cs.RightToLeft
	case "ltr":
		r.Direction = cs.LeftToRight
	default:
		return r, fmt.Errorf("unknown direction %q", rd.Direction)
	}

	switch strings.ToLower(rd.Remainders) {
	case "mod10":
		r.Remainders = cs.Mod10Complement()
	case "mod11":
		r.Remainders = cs.Mod11()
	case "mod11-strict":
		r.Remainders = cs.Mod11Strict()
	case "mod11-nozero":
		r.Remainders = cs.Mod11NoZero()
	case "complement":
		if r.Modulus < 2 {
			return r, fmt.Errorf("complement remainders need a modulus")
		}
		r.Remainders = cs.Complement(r.Modulus)
	default:
		return r, fmt.Errorf("unknown remainders %q", rd.Remainders)
	}
	if r.Modulus == 0 {
		r.Modulus = len(r.Remainders)
	}

	if r.CheckDigit >= digits.AccountWidth || r.End() > digits.AccountWidth {
		return r, fmt.Errorf("rule does not fit a %d digit account number", digits.AccountWidth)
	}
	if err := r.Check(); err != nil {
		return r, err
	}
	return r, nil
}
