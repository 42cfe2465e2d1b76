package solver

import (
	"math"
	"time"
)

// SolveCG runs Conjugate Gradient for symmetric positive-definite a:
// x0 = 0, r0 = b - A·x0, p0 = r0; standard update loop, terminate on
// ‖r‖ < tolerance or max_iterations.
func SolveCG(a *Sparse, b []float64, cfg Config) ([]float64, Stats, error) {
	start := time.Now()
	n := a.N
	if n != len(b) {
		return nil, Stats{}, newSolverError("matrix is %d×%d but rhs has length %d", n, n, len(b))
	}

	x := make([]float64, n)
	r := append([]float64(nil), b...) // r = b - A*0

	p := append([]float64(nil), r...)
	rsold := dot(r, r)

	iterations := cfg.MaxIterations
	success := false
	residual := math.Sqrt(rsold)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		residual = math.Sqrt(rsold)
		if residual < cfg.Tolerance {
			iterations = iter
			success = true
			break
		}

		ap := a.MulVec(p)
		denom := dot(p, ap)
		if denom == 0 {
			break
		}
		alpha := rsold / denom

		for i := 0; i < n; i++ {
			x[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}

		rsnew := dot(r, r)
		beta := rsnew / rsold
		for i := 0; i < n; i++ {
			p[i] = r[i] + beta*p[i]
		}
		rsold = rsnew
	}

	if !success {
		residual = math.Sqrt(rsold)
		success = residual < cfg.Tolerance
	}

	stats := Stats{
		MethodUsed:      MethodCG,
		Iterations:      iterations,
		ResidualNorm:    residual,
		Success:         success,
		WallTimeSeconds: time.Since(start).Seconds(),
	}
	return x, stats, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
