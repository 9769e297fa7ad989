package optim

import (
	"testing"

	"github.com/san-kum/numerix/internal/config"
)

func TestSettingsFromDict(t *testing.T) {
	d := config.NewDict("minimizer", map[string]any{
		"xTolerances":    []any{1e-3, 1e-4},
		"yRelTolerance":  1e-7,
		"maxSteps":       250,
		"nSample":        12,
		"normaliseError": false,
		"tau":            0.25,
	})

	s, err := SettingsFromDict(d, 2)
	if err != nil {
		t.Fatal(err)
	}
	if s.XTol[0] != 1e-3 || s.XTol[1] != 1e-4 {
		t.Errorf("xTol = %v", s.XTol)
	}
	if s.XRelTol[0] != DefaultXRelTol || len(s.XRelTol) != 2 {
		t.Errorf("xRelTol = %v", s.XRelTol)
	}
	if s.YRelTol[0] != 1e-7 || s.MaxSteps != 250 || s.NSamples != 12 || s.Normalise || s.Tau != 0.25 {
		t.Errorf("unexpected settings %+v", s)
	}
}

func TestSettingsFromDict_Invalid(t *testing.T) {
	tests := []map[string]any{
		{"tau": 1.5},
		{"tau": 0.0},
		{"maxSteps": 0},
	}
	for _, entries := range tests {
		if _, err := SettingsFromDict(config.NewDict("bad", entries), 1); err == nil {
			t.Errorf("%v: expected an error", entries)
		}
	}
}

func TestConvergedX(t *testing.T) {
	tests := []struct {
		name      string
		normalise bool
		dx, x     float64
		want      bool
	}{
		{"absolute", true, 1e-7, 0, true},
		{"relative", true, 1e-5, 1e3, true},
		{"relative disabled", false, 1e-5, 1e3, false},
		{"neither", true, 1e-3, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := DefaultSettings(1)
			set.Normalise = tt.normalise
			b := newBase("test", set)
			if got := b.ConvergedX([]float64{tt.dx}, []float64{tt.x}); got != tt.want {
				t.Errorf("ConvergedX(%v, %v) = %v, want %v", tt.dx, tt.x, got, tt.want)
			}
		})
	}
}

func TestConvergedX_EveryDimension(t *testing.T) {
	b := newBase("test", DefaultSettings(2))
	if b.ConvergedX([]float64{1e-9, 1e-2}, []float64{1, 1}) {
		t.Error("one unconverged dimension must block convergence")
	}
}

func TestOutcomeString(t *testing.T) {
	if Converged.String() != "converged" {
		t.Errorf("got %q", Converged.String())
	}
	if HitBounds.String() == HitIterationCap.String() {
		t.Error("bounds and cap outcomes must differ")
	}
}
