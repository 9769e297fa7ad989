package optim

import (
	"math"
	"math/rand"

	"github.com/san-kum/numerix/internal/equation"
)

// SwarmParams tune a particle swarm. Velocities are updated as
// v = VWeight*v + CLocal*r1*(personal best - x) + CGlobal*r2*(global best - x).
type SwarmParams struct {
	Particles int
	CLocal    float64
	CGlobal   float64
	VWeight   float64

	// Patience is the number of consecutive steps the global best may stay
	// within tolerance before the swarm counts as converged.
	Patience int
	Seed     int64
}

func DefaultSwarm() SwarmParams {
	return SwarmParams{
		Particles: 20,
		CLocal:    1.5,
		CGlobal:   1.5,
		VWeight:   0.7,
		Patience:  20,
		Seed:      1,
	}
}

type ParticleSwarmScheme struct {
	field
	p SwarmParams
}

func NewParticleSwarm(eqn equation.UnivariateEquation[float64], set Settings, p SwarmParams) *ParticleSwarmScheme {
	p.Particles = max(2, p.Particles)
	p.Patience = max(1, p.Patience)
	return &ParticleSwarmScheme{field: newField(string(ParticleSwarm), eqn, set), p: p}
}

type particle struct {
	x, v  []float64
	best  []float64
	fBest float64
}

func (s *ParticleSwarmScheme) Minimize(x0, xLow, xHigh []float64, li int) ([]float64, Status, error) {
	s.reset()
	x, lo, hi, err := s.bounds(x0, xLow, xHigh)
	if err != nil {
		return nil, Status{}, err
	}
	x = s.sample(x, lo, hi, li)
	n := len(x)

	// Unbounded axes are seeded around x0.
	lo0, hi0 := append([]float64(nil), lo...), append([]float64(nil), hi...)
	for i := range x {
		if math.IsInf(lo0[i], 0) || math.IsInf(hi0[i], 0) {
			r := math.Max(1, math.Abs(x[i]))
			lo0[i], hi0[i] = math.Max(lo[i], x[i]-r), math.Min(hi[i], x[i]+r)
		}
	}
	span := make([]float64, n)
	for i := range span {
		span[i] = hi0[i] - lo0[i]
	}

	rng := rand.New(rand.NewSource(s.p.Seed))
	swarm := make([]particle, s.p.Particles)
	gBest := append([]float64(nil), x...)
	fG := math.Inf(1)
	for k := range swarm {
		p := particle{x: make([]float64, n), v: make([]float64, n)}
		for i := 0; i < n; i++ {
			if k == 0 {
				p.x[i] = x[i]
			} else {
				p.x[i] = lo0[i] + rng.Float64()*span[i]
			}
			p.v[i] = 0.1 * span[i] * (2*rng.Float64() - 1)
		}
		p.best = append([]float64(nil), p.x...)
		p.fBest = s.f(p.x, li)
		if p.fBest < fG {
			fG = p.fBest
			copy(gBest, p.best)
		}
		swarm[k] = p
	}

	converged := false
	stall := 0
	dx := make([]float64, n)
	prev := append([]float64(nil), gBest...)
	for s.st.Steps < s.set.MaxSteps {
		s.st.Steps++
		fPrev := fG
		copy(prev, gBest)

		for k := range swarm {
			p := &swarm[k]
			for i := 0; i < n; i++ {
				r1, r2 := rng.Float64(), rng.Float64()
				v := s.p.VWeight*p.v[i] +
					s.p.CLocal*r1*(p.best[i]-p.x[i]) +
					s.p.CGlobal*r2*(gBest[i]-p.x[i])
				p.v[i] = math.Max(-span[i], math.Min(span[i], v))
				p.x[i] += p.v[i]
				if p.x[i] < lo[i] || p.x[i] > hi[i] {
					p.x[i] = math.Min(math.Max(p.x[i], lo[i]), hi[i])
					p.v[i] = 0
				}
			}
			if fx := s.f(p.x, li); fx < p.fBest {
				p.fBest = fx
				copy(p.best, p.x)
				if fx < fG {
					fG = fx
					copy(gBest, p.x)
				}
			}
		}

		for i := range dx {
			dx[i] = gBest[i] - prev[i]
		}
		if s.ConvergedY(fPrev-fG, fG) && s.ConvergedX(dx, gBest) {
			stall++
		} else {
			stall = 0
		}
		if stall >= s.p.Patience {
			converged = true
			break
		}
	}
	return gBest, s.finish(converged, onBox(gBest, lo, hi)), nil
}
