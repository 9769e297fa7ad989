package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Kind is the job a case file describes.
type Kind string

const (
	KindIntegrate Kind = "integrate"
	KindMinimize  Kind = "minimize"
	KindRoot      Kind = "root"
	KindFit       Kind = "fit"
	KindInvert    Kind = "invert"
)

var Kinds = []Kind{KindIntegrate, KindMinimize, KindRoot, KindFit, KindInvert}

const (
	DefaultKind     = KindIntegrate
	DefaultFunction = "runge"
	DefaultLower    = 0.0
	DefaultUpper    = 1.0
)

// Case is one job: which equation, which solver settings and where.
// Params and Solver are free-form dictionaries handed to the equation
// library and the solver.
type Case struct {
	Name     string         `yaml:"name" toml:"name"`
	Kind     Kind           `yaml:"kind" toml:"kind"`
	Function string         `yaml:"function" toml:"function"`
	Params   map[string]any `yaml:"params,omitempty" toml:"params,omitempty"`
	Solver   map[string]any `yaml:"solver,omitempty" toml:"solver,omitempty"`

	Lower []float64 `yaml:"lower,omitempty" toml:"lower,omitempty"`
	Upper []float64 `yaml:"upper,omitempty" toml:"upper,omitempty"`
	Start []float64 `yaml:"start,omitempty" toml:"start,omitempty"`
	Index int       `yaml:"index,omitempty" toml:"index,omitempty"`

	Data   *Samples `yaml:"data,omitempty" toml:"data,omitempty"`
	Target float64  `yaml:"target,omitempty" toml:"target,omitempty"`
	Rho    float64  `yaml:"rho,omitempty" toml:"rho,omitempty"`
}

// Samples are the data points of a fit case.
type Samples struct {
	X [][]float64 `yaml:"x" toml:"x"`
	Y []float64   `yaml:"y" toml:"y"`
	W []float64   `yaml:"w,omitempty" toml:"w,omitempty"`
}

func DefaultCase() *Case {
	return &Case{
		Name:     "default",
		Kind:     DefaultKind,
		Function: DefaultFunction,
		Lower:    []float64{DefaultLower},
		Upper:    []float64{DefaultUpper},
	}
}

// LoadCase reads a YAML or TOML case file over the defaults.
func LoadCase(path string) (*Case, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCase(data, format)
}

func ParseCase(data []byte, format Format) (*Case, error) {
	c := DefaultCase()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: case: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), c); err != nil {
			return nil, fmt.Errorf("config: case: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, format)
	}
	return c, c.Validate()
}

// SaveCase writes c in the format given by the file extension.
func SaveCase(path string, c *Case) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		err = toml.NewEncoder(&buf).Encode(c)
	default:
		err = yaml.NewEncoder(&buf).Encode(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate checks the fields every kind needs.
func (c *Case) Validate() error {
	known := false
	for _, k := range Kinds {
		known = known || c.Kind == k
	}
	if !known {
		return &UnknownSchemeError{Kind: "case kind", Name: string(c.Kind), Valid: kindNames()}
	}
	if c.Function == "" {
		return fmt.Errorf("%w: case %q has no function", ErrMissingKey, c.Name)
	}
	if len(c.Lower) != len(c.Upper) {
		return fmt.Errorf("config: case %q has %d lower and %d upper bounds", c.Name, len(c.Lower), len(c.Upper))
	}
	if c.Kind != KindInvert && len(c.Lower) == 0 {
		return fmt.Errorf("%w: %s case %q has no bounds", ErrMissingKey, c.Kind, c.Name)
	}
	if len(c.Start) > 0 && len(c.Lower) > 0 && len(c.Start) != len(c.Lower) {
		return fmt.Errorf("config: case %q starts in %d dimensions, bounds have %d", c.Name, len(c.Start), len(c.Lower))
	}
	if c.Kind == KindFit && (c.Data == nil || len(c.Data.Y) == 0) {
		return fmt.Errorf("%w: fit case %q has no data", ErrMissingKey, c.Name)
	}
	return nil
}

func kindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return names
}

// EquationDict is the dictionary handed to the equation library. Bounds
// from the case fill in lowerLimit and upperLimit when Params omit them.
func (c *Case) EquationDict() *Dict {
	d := NewDict(c.Function, copyMap(c.Params))
	if !d.Has("lowerLimit", "lowerBound") && len(c.Lower) > 0 {
		d.Set("lowerLimit", append([]float64(nil), c.Lower...))
	}
	if !d.Has("upperLimit", "upperBound") && len(c.Upper) > 0 {
		d.Set("upperLimit", append([]float64(nil), c.Upper...))
	}
	if !d.Has("nVar") && len(c.Lower) > 0 {
		d.Set("nVar", len(c.Lower))
	}
	return d
}

func (c *Case) SolverDict() *Dict {
	return NewDict(c.Name+".solver", copyMap(c.Solver))
}

// Clone returns a deep copy of c.
func (c *Case) Clone() *Case {
	out := *c
	out.Params = copyMap(c.Params)
	out.Solver = copyMap(c.Solver)
	out.Lower = append([]float64(nil), c.Lower...)
	out.Upper = append([]float64(nil), c.Upper...)
	out.Start = append([]float64(nil), c.Start...)
	if c.Data != nil {
		data := Samples{
			X: make([][]float64, len(c.Data.X)),
			Y: append([]float64(nil), c.Data.Y...),
			W: append([]float64(nil), c.Data.W...),
		}
		for i, x := range c.Data.X {
			data.X[i] = append([]float64(nil), x...)
		}
		out.Data = &data
	}
	return &out
}

// StartPoint returns Start, or the lower bound when Start is empty.
func (c *Case) StartPoint() []float64 {
	if len(c.Start) > 0 {
		return append([]float64(nil), c.Start...)
	}
	return append([]float64(nil), c.Lower...)
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
