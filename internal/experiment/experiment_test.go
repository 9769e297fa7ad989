package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/lsq"
)

func runPreset(t *testing.T, kind config.Kind, name string) *Result {
	t.Helper()
	c := config.GetPreset(kind, name)
	if c == nil {
		t.Fatalf("no preset %s/%s", kind, name)
	}
	res, err := New(c).Run(context.Background())
	if err != nil {
		t.Fatalf("%s/%s: %v", kind, name, err)
	}
	return res
}

func TestRun_Integrate(t *testing.T) {
	tests := []struct {
		preset string
		want   float64
		tol    float64
	}{
		{"runge", math.Pi / 4, 1e-7},
		{"sine", 2, 1e-8},
		{"quadratic", 1.0 / 3.0, 1e-12},
		{"bump", 8.0 / 3.0, 1e-10},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			res := runPreset(t, config.KindIntegrate, tt.preset)
			if math.Abs(res.Value[0]-tt.want) > tt.tol {
				t.Errorf("integral = %.12f, want %.12f", res.Value[0], tt.want)
			}
			if res.Evaluations == 0 {
				t.Error("expected evaluations to be counted")
			}
			if res.Case != tt.preset || res.Kind != config.KindIntegrate {
				t.Errorf("result labelled %s/%s", res.Kind, res.Case)
			}
		})
	}
}

func TestRun_IntegrateTrace(t *testing.T) {
	res := runPreset(t, config.KindIntegrate, "runge")
	if len(res.Trace) != TraceSamples {
		t.Fatalf("trace has %d samples, want %d", len(res.Trace), TraceSamples)
	}
	if res.Trace[0] != 1 || math.Abs(res.Trace[TraceSamples-1]-0.5) > 1e-15 {
		t.Errorf("trace ends = %v, %v", res.Trace[0], res.Trace[TraceSamples-1])
	}
}

func TestRun_Minimize(t *testing.T) {
	tests := []struct {
		preset string
		want   []float64
		tol    float64
	}{
		{"bowl", []float64{3}, 1e-4},
		{"rastrigin", []float64{0}, 1e-3},
		{"rosenbrock", []float64{1, 1}, 1e-3},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			res := runPreset(t, config.KindMinimize, tt.preset)
			if len(res.Value) != len(tt.want) {
				t.Fatalf("minimizer %v has wrong dimension", res.Value)
			}
			for i := range tt.want {
				if math.Abs(res.Value[i]-tt.want[i]) > tt.tol {
					t.Errorf("x = %v, want %v", res.Value, tt.want)
				}
			}
		})
	}
}

func TestRun_MinimizeSwarm(t *testing.T) {
	res := runPreset(t, config.KindMinimize, "himmelblau")
	if res.Objective > 1e-3 {
		t.Errorf("f(%v) = %v, want a minimum near zero", res.Value, res.Objective)
	}
}

func TestRun_MinimizeWidths(t *testing.T) {
	res := runPreset(t, config.KindMinimize, "bowl")
	if len(res.Trace) == 0 {
		t.Fatal("golden ratio search should record bracket widths")
	}
	for i := 1; i < len(res.Trace); i++ {
		if res.Trace[i] >= res.Trace[i-1] {
			t.Fatalf("widths not shrinking at step %d: %v", i, res.Trace)
		}
	}
}

func TestRun_Root(t *testing.T) {
	res := runPreset(t, config.KindRoot, "sqrt2")
	if math.Abs(res.Value[0]-math.Sqrt2) > 1e-9 {
		t.Errorf("root = %.12f, want sqrt(2)", res.Value[0])
	}
	if !res.Converged {
		t.Errorf("outcome = %s", res.Outcome)
	}
}

func TestRun_Fit(t *testing.T) {
	tests := []struct {
		preset string
		want   []float64
		tol    float64
	}{
		{"line", []float64{2, 3}, 1e-10},
		{"decay", []float64{2, -0.4}, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			res := runPreset(t, config.KindFit, tt.preset)
			for i := range tt.want {
				if math.Abs(res.Value[i]-tt.want[i]) > tt.tol {
					t.Errorf("coeffs = %v, want %v", res.Value, tt.want)
				}
			}
			if math.Abs(res.Objective-1) > 1e-9 {
				t.Errorf("R2 = %v, want 1", res.Objective)
			}
			if len(res.Trace) != 5 {
				t.Errorf("expected one residual per sample, got %d", len(res.Trace))
			}
		})
	}
}

func TestRun_FitWeighted(t *testing.T) {
	c := config.GetPreset(config.KindFit, "line")
	c.Data.X = append(c.Data.X, []float64{5})
	c.Data.Y = append(c.Data.Y, 100)
	c.Data.W = []float64{1, 1, 1, 1, 1, 0}

	res, err := New(c).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Value[0]-2) > 1e-9 || math.Abs(res.Value[1]-3) > 1e-9 {
		t.Errorf("zero-weight outlier moved the fit: %v", res.Value)
	}
}

func TestRun_Invert(t *testing.T) {
	for _, prop := range []string{"e", "h"} {
		t.Run(prop, func(t *testing.T) {
			c := config.GetPreset(config.KindInvert, "air")
			c.Solver = map[string]any{"property": prop}
			res, err := New(c).Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(res.Objective) > 1e-3 {
				t.Errorf("%s(T=%v) misses the target by %v", prop, res.Value[0], res.Objective)
			}
			if res.Value[0] < 50 || res.Value[0] > 5000 {
				t.Errorf("T = %v outside the model range", res.Value[0])
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *config.Case)
		err  error
	}{
		{"unknown function", func(c *config.Case) { c.Function = "zeta" }, config.ErrUnknownScheme},
		{"unknown scheme", func(c *config.Case) { c.Solver = map[string]any{"integrator": "Romberg"} }, config.ErrUnknownScheme},
		{"missing coeffs", func(c *config.Case) { c.Function = "polynomial" }, config.ErrMissingKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.GetPreset(config.KindIntegrate, "runge")
			tt.edit(c)
			if _, err := New(c).Run(context.Background()); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}

	c := config.GetPreset(config.KindFit, "line")
	c.Data.X = [][]float64{{0}, {0}, {0}}
	c.Data.Y = []float64{1, 2, 3}
	if _, err := New(c).Run(context.Background()); !errors.Is(err, lsq.ErrSingular) {
		t.Errorf("expected ErrSingular, got %v", err)
	}

	c = config.GetPreset(config.KindInvert, "air")
	c.Solver = map[string]any{"property": "s"}
	var unknown *config.UnknownSchemeError
	if _, err := New(c).Run(context.Background()); !errors.As(err, &unknown) || unknown.Kind != "property" {
		t.Errorf("expected unknown property error, got %v", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(config.DefaultCase()).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_DoesNotMutateCase(t *testing.T) {
	c := config.GetPreset(config.KindInvert, "air")
	if _, err := New(c).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Params["model"]; ok {
		t.Error("running a case must not modify the caller's copy")
	}
}

func TestRun_Logs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	e := New(config.GetPreset(config.KindMinimize, "bowl"))
	e.SetLogger(logger)
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Message != "case finished" {
		t.Fatalf("expected a finish entry, got %v", entry)
	}
	if entry.Data["case"] != "bowl" {
		t.Errorf("entry fields = %v", entry.Data)
	}
}

func TestFunctions(t *testing.T) {
	for _, k := range config.Kinds {
		if len(Functions(k)) == 0 {
			t.Errorf("no functions listed for %s", k)
		}
	}
	if Functions("plot") != nil {
		t.Error("unknown kind should list nothing")
	}
}
