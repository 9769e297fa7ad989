package config

import "sort"

var Presets = map[Kind]map[string]*Case{
	KindIntegrate: {
		"runge": {
			Name: "runge", Kind: KindIntegrate, Function: "runge",
			Lower: []float64{0}, Upper: []float64{1},
			Solver: map[string]any{"integrator": "Gaussian", "tolerance": 1e-8},
		},
		"sine": {
			Name: "sine", Kind: KindIntegrate, Function: "sine",
			Lower: []float64{0}, Upper: []float64{3.141592653589793},
			Solver: map[string]any{"integrator": "Simpson13", "tolerance": 1e-10, "maxSplits": 30},
		},
		"quadratic": {
			Name: "quadratic", Kind: KindIntegrate, Function: "polynomial",
			Params: map[string]any{"coeffs": []any{0.0, 0.0, 1.0}},
			Lower:  []float64{0}, Upper: []float64{1},
			Solver: map[string]any{"integrator": "Simpson13", "adaptive": false},
		},
		"bump": {
			Name: "bump", Kind: KindIntegrate, Function: "sphere",
			Lower: []float64{-1, -1}, Upper: []float64{1, 1},
			Solver: map[string]any{"integrator": "Gaussian", "nNodes": 4, "tolerance": 1e-8},
		},
	},
	KindMinimize: {
		"bowl": {
			Name: "bowl", Kind: KindMinimize, Function: "quadratic",
			Params: map[string]any{"center": 3.0},
			Lower:  []float64{0}, Upper: []float64{5}, Start: []float64{0},
			Solver: map[string]any{"minimizationScheme": "goldenRatio"},
		},
		"rastrigin": {
			Name: "rastrigin", Kind: KindMinimize, Function: "rastrigin",
			Lower: []float64{-5.12}, Upper: []float64{5.12}, Start: []float64{4},
			Solver: map[string]any{"minimizationScheme": "ShubertPiyavskii", "lipschitz": 80.0, "maxSteps": 3000, "yTolerance": 1e-6},
		},
		"rosenbrock": {
			Name: "rosenbrock", Kind: KindMinimize, Function: "rosenbrock",
			Lower: []float64{-5, -5}, Upper: []float64{5, 5}, Start: []float64{-1.2, 1},
			Solver: map[string]any{"minimizationScheme": "NelderMead", "maxSteps": 5000, "xTolerance": 1e-8},
		},
		"himmelblau": {
			Name: "himmelblau", Kind: KindMinimize, Function: "himmelblau",
			Lower: []float64{-5, -5}, Upper: []float64{5, 5}, Start: []float64{0, 0},
			Solver: map[string]any{"minimizationScheme": "particleSwarm", "maxSteps": 300, "nParticles": 30},
		},
	},
	KindRoot: {
		"sqrt2": {
			Name: "sqrt2", Kind: KindRoot, Function: "polynomial",
			Params: map[string]any{"coeffs": []any{-2.0, 0.0, 1.0}},
			Lower:  []float64{0}, Upper: []float64{2}, Start: []float64{1},
			Solver: map[string]any{"xTolerance": 1e-12, "xRelTolerance": 1e-12},
		},
	},
	KindFit: {
		"line": {
			Name: "line", Kind: KindFit, Function: "linear",
			Lower: []float64{0}, Upper: []float64{4},
			Data: &Samples{
				X: [][]float64{{0}, {1}, {2}, {3}, {4}},
				Y: []float64{2, 5, 8, 11, 14},
			},
		},
		"decay": {
			Name: "decay", Kind: KindFit, Function: "exponential",
			Params: map[string]any{"coeffs": []any{1.0, -0.1}},
			Lower:  []float64{0}, Upper: []float64{4},
			Data: &Samples{
				X: [][]float64{{0}, {1}, {2}, {3}, {4}},
				Y: []float64{2, 1.3406400920712787, 0.8986579282344431, 0.6023884238244043, 0.40379303598931024},
			},
		},
	},
	KindInvert: {
		"air": {
			Name: "air", Kind: KindInvert, Function: "polynomialCv",
			Params: map[string]any{"cvCoeffs": []any{700.0, 0.05}, "R": 287.0, "Tlow": 50.0, "Thigh": 5000.0},
			Start:  []float64{300}, Target: 1.0e6, Rho: 1.2,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(kind Kind, name string) *Case {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	c, ok := kindPresets[name]
	if !ok {
		return nil
	}
	return c.Clone()
}

// ListPresets returns the preset names of a kind in sorted order.
func ListPresets(kind Kind) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
