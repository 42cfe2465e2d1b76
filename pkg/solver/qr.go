package solver

import (
	"math"
	"time"
)

// SolveQR factors a via Householder QR and solves for b. No available Go
// library offers a dense QR decomposition for this package to build on, so
// it is hand-rolled — see DESIGN.md.
func SolveQR(a *Dense, b []float64, cfg Config) ([]float64, Stats, error) {
	start := time.Now()
	n := a.N
	if n != len(b) {
		return nil, Stats{}, newSolverError("matrix is %d×%d but rhs has length %d", n, n, len(b))
	}

	r := a.Clone()
	qtb := append([]float64(nil), b...)

	for col := 0; col < n; col++ {
		// Householder reflector that zeroes r[col+1:, col].
		normX := 0.0
		for i := col; i < n; i++ {
			normX += r.At(i, col) * r.At(i, col)
		}
		normX = math.Sqrt(normX)
		if normX == 0 {
			continue
		}

		alpha := -normX
		if r.At(col, col) < 0 {
			alpha = normX
		}

		v := make([]float64, n)
		v[col] = r.At(col, col) - alpha
		for i := col + 1; i < n; i++ {
			v[i] = r.At(i, col)
		}
		vNorm := 0.0
		for i := col; i < n; i++ {
			vNorm += v[i] * v[i]
		}
		if vNorm < 1e-300 {
			continue
		}

		// Apply the reflector H = I - 2vv^T/(v^Tv) to R's remaining columns.
		for j := col; j < n; j++ {
			dot := 0.0
			for i := col; i < n; i++ {
				dot += v[i] * r.At(i, j)
			}
			factor := 2 * dot / vNorm
			for i := col; i < n; i++ {
				r.Set(i, j, r.At(i, j)-factor*v[i])
			}
		}

		// Apply the same reflector to the accumulated Q^T * b.
		dot := 0.0
		for i := col; i < n; i++ {
			dot += v[i] * qtb[i]
		}
		factor := 2 * dot / vNorm
		for i := col; i < n; i++ {
			qtb[i] -= factor * v[i]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		diag := r.At(row, row)
		if math.Abs(diag) < 1e-300 {
			return nil, Stats{}, newSolverError("QR factorization broke down: matrix may be singular")
		}
		sum := qtb[row]
		for c := row + 1; c < n; c++ {
			sum -= r.At(row, c) * x[c]
		}
		x[row] = sum / diag
	}

	residual := residualNorm(a, x, b)
	stats := Stats{
		MethodUsed:      MethodQR,
		Iterations:      1,
		ResidualNorm:    residual,
		Success:         residual < 1000*cfg.Tolerance,
		WallTimeSeconds: time.Since(start).Seconds(),
	}
	return x, stats, nil
}
