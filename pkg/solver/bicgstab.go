package solver

import (
	"math"
	"time"
)

// SolveBiCGSTAB runs the standard two-parameter BiCGSTAB variant with
// r̂ fixed to the initial residual, translated from the original
// implementation's solve_bicgstab_sparse. Breakdown (|ρ| < 1e-15 or
// |ω| < 1e-15) stops early and reports the current estimate.
func SolveBiCGSTAB(a *Sparse, b []float64, cfg Config) ([]float64, Stats, error) {
	start := time.Now()
	n := a.N
	if n != len(b) {
		return nil, Stats{}, newSolverError("matrix is %d×%d but rhs has length %d", n, n, len(b))
	}

	const breakdownThreshold = 1e-15

	x := make([]float64, n)
	r := append([]float64(nil), b...)
	rHat := append([]float64(nil), r...)
	p := append([]float64(nil), r...)
	v := make([]float64, n)

	rho := 1.0
	alpha := 1.0
	omega := 1.0

	residual := vecNorm(r)
	iterations := cfg.MaxIterations
	success := false

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if residual < cfg.Tolerance {
			iterations = iter
			success = true
			break
		}

		rhoNew := dot(rHat, r)
		if math.Abs(rhoNew) < breakdownThreshold {
			iterations = iter
			break
		}

		beta := (rhoNew / rho) * (alpha / omega)
		rho = rhoNew

		for i := 0; i < n; i++ {
			p[i] = r[i] + beta*(p[i]-omega*v[i])
		}

		v = a.MulVec(p)
		alpha = rho / dot(rHat, v)

		h := make([]float64, n)
		s := make([]float64, n)
		for i := 0; i < n; i++ {
			h[i] = x[i] + alpha*p[i]
			s[i] = r[i] - alpha*v[i]
		}

		t := a.MulVec(s)
		tDotT := dot(t, t)
		if tDotT == 0 {
			copy(x, h)
			residual = vecNorm(s)
			iterations = iter
			break
		}
		omega = dot(t, s) / tDotT

		for i := 0; i < n; i++ {
			x[i] = h[i] + omega*s[i]
			r[i] = s[i] - omega*t[i]
		}

		residual = vecNorm(r)
		iterations = iter + 1

		if math.Abs(omega) < breakdownThreshold {
			break
		}
	}

	if !success {
		success = residual < cfg.Tolerance
	}

	stats := Stats{
		MethodUsed:      MethodBiCGSTAB,
		Iterations:      iterations,
		ResidualNorm:    residual,
		Success:         success,
		WallTimeSeconds: time.Since(start).Seconds(),
	}
	return x, stats, nil
}

func vecNorm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}
