package solver

import (
	"math"
	"time"

	"github.com/edp1096/sparse"
)

// SolveLU factors a via partial-pivoted LU and solves for b, using the
// teacher's own sparse.Matrix as the backing factorization — the same
// Create/GetElement/Factor/Solve sequence pkg/matrix used, just driven by
// our own assembled system instead of toy-spice's device stamps.
func SolveLU(a *Dense, b []float64, cfg Config) ([]float64, Stats, error) {
	start := time.Now()
	n := a.N
	if n != len(b) {
		return nil, Stats{}, newSolverError("matrix is %d×%d but rhs has length %d", n, n, len(b))
	}

	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}
	mat, err := sparse.Create(int64(n), config)
	if err != nil {
		return nil, Stats{}, newSolverError("failed to create factorization matrix: %s", err)
	}
	defer mat.Destroy()

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := a.At(i, j); v != 0 {
				mat.GetElement(int64(i+1), int64(j+1)).Real += v
			}
		}
	}

	rhs := make([]float64, n+1) // 1-based
	for i := 0; i < n; i++ {
		rhs[i+1] = b[i]
	}

	if err := mat.Factor(); err != nil {
		return nil, Stats{}, newSolverError("LU factorization failed, matrix may be singular: %s", err)
	}

	solution, err := mat.Solve(rhs)
	if err != nil {
		return nil, Stats{}, newSolverError("LU solve failed: %s", err)
	}

	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = solution[i+1]
	}

	residual := residualNorm(a, x, b)
	stats := Stats{
		MethodUsed:      MethodLU,
		Iterations:      1,
		ResidualNorm:    residual,
		Success:         residual < 1000*cfg.Tolerance,
		WallTimeSeconds: time.Since(start).Seconds(),
	}
	return x, stats, nil
}

func residualNorm(a *Dense, x, b []float64) float64 {
	ax := a.MulVec(x)
	sum := 0.0
	for i := range b {
		d := ax[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
