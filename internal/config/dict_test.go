package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDict_Accessors(t *testing.T) {
	d := NewDict("test", map[string]any{
		"tol":      1e-8,
		"steps":    50,
		"steps64":  int64(7),
		"adaptive": "no",
		"debug":    true,
		"scheme":   "Boole",
		"lower":    []any{-1, 2.5},
		"bad":      "x",
	})

	if got := d.Float("tol", 0); got != 1e-8 {
		t.Errorf("Float = %v", got)
	}
	if got := d.Float("missing", 3); got != 3 {
		t.Errorf("Float default = %v", got)
	}
	if got := d.Float("bad", 4); got != 4 {
		t.Errorf("non-numeric Float should fall back, got %v", got)
	}
	if got := d.Int("steps", 0); got != 50 {
		t.Errorf("Int = %d", got)
	}
	if got := d.Int("steps64", 0); got != 7 {
		t.Errorf("Int64 = %d", got)
	}
	if d.Bool("adaptive", true) {
		t.Error("Bool(\"no\") should be false")
	}
	if !d.Bool("debug", false) {
		t.Error("Bool(true) should be true")
	}
	if got := d.String("scheme", ""); got != "Boole" {
		t.Errorf("String = %q", got)
	}
	if got := d.String("steps", ""); got != "50" {
		t.Errorf("String of int = %q", got)
	}
	if got := d.FloatList("lower", nil); len(got) != 2 || got[0] != -1 || got[1] != 2.5 {
		t.Errorf("FloatList = %v", got)
	}
}

func TestDict_Aliases(t *testing.T) {
	d := NewDict("test", map[string]any{"relTolerance": 1e-4})
	if got := d.Float("tolerance", 0, "relTolerance"); got != 1e-4 {
		t.Errorf("alias lookup = %v", got)
	}
	if !d.Has("tolerance", "relTolerance") {
		t.Error("Has should follow aliases")
	}
	if d.Has("tolerance") {
		t.Error("Has without alias should be false")
	}
}

func TestDict_Floats(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []float64
	}{
		{"scalar", 2.0, []float64{2, 2, 2}},
		{"full list", []any{1, 2, 3}, []float64{1, 2, 3}},
		{"short list", []float64{1, 2}, []float64{1, 2, 2}},
		{"absent", nil, []float64{-1, -1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Empty("test")
			if tt.value != nil {
				d.Set("x", tt.value)
			}
			got := d.Floats("x", 3, -1)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestDict_RequireFloat(t *testing.T) {
	d := NewDict("thermo", map[string]any{"R": 287, "name": "air"})

	if got, err := d.RequireFloat("R"); err != nil || got != 287 {
		t.Errorf("RequireFloat = %v, %v", got, err)
	}
	if _, err := d.RequireFloat("cp"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got %v", err)
	}
	if _, err := d.RequireFloat("name"); !errors.Is(err, ErrType) {
		t.Errorf("expected ErrType, got %v", err)
	}
}

func TestDict_SubAndMerge(t *testing.T) {
	d, err := Parse("case", []byte("integrator:\n  integrator: Boole\n  tolerance: 1e-9\n"), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	sub := d.Sub("integrator")
	if sub.Name() != "case.integrator" {
		t.Errorf("Name = %q", sub.Name())
	}
	if got := sub.String("integrator", ""); got != "Boole" {
		t.Errorf("nested scheme = %q", got)
	}
	if missing := d.Sub("nothing"); len(missing.Keys()) != 0 {
		t.Error("missing sub-dictionary should be empty")
	}

	sub.Merge(NewDict("override", map[string]any{"tolerance": 1e-3, "maxSplits": 4}))
	if got := sub.Float("tolerance", 0); got != 1e-3 {
		t.Errorf("merged tolerance = %v", got)
	}
	if keys := sub.Keys(); len(keys) != 3 || keys[0] != "integrator" {
		t.Errorf("Keys = %v", keys)
	}
}

func TestDict_NilSafe(t *testing.T) {
	var d *Dict
	if d.Has("x") {
		t.Error("nil dict has no keys")
	}
	if got := d.Float("x", 1.5); got != 1.5 {
		t.Errorf("nil dict default = %v", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte("maxSteps = 12\nxTolerance = [1e-3, 1e-4]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := d.Int("maxSteps", 0); got != 12 {
		t.Errorf("maxSteps = %d", got)
	}
	if got := d.Floats("xTolerance", 2, 0); math.Abs(got[1]-1e-4) > 1e-18 {
		t.Errorf("xTolerance = %v", got)
	}

	if _, err := FormatOf("settings.ini"); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}
