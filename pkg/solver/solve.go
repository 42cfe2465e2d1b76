package solver

// Solve dispatches to the requested method, building whichever
// representation (dense or sparse) that method needs from a.
func Solve(method Method, a *Dense, b []float64, cfg Config) ([]float64, Stats, error) {
	switch method {
	case MethodLU:
		return SolveLU(a, b, cfg)
	case MethodQR:
		return SolveQR(a, b, cfg)
	case MethodCG:
		return SolveCG(NewSparseFromDense(a), b, cfg)
	case MethodBiCGSTAB:
		return SolveBiCGSTAB(NewSparseFromDense(a), b, cfg)
	default:
		return nil, Stats{}, newSolverError("unknown solver method %v", method)
	}
}

// SolveAuto assembles the sparse view once to pick a method, then solves
// with it. A Config.Method other than MethodAuto pins the choice instead —
// the Go analog of the original implementation's SolverConfig.method,
// which the caller sets explicitly via auto_select_solver's result or its
// own preference rather than this package always deciding.
func SolveAuto(a *Dense, b []float64, cfg Config) ([]float64, Stats, error) {
	sparse := NewSparseFromDense(a)
	method := cfg.Method
	if method == MethodAuto {
		method = AutoSelect(sparse)
	}
	switch method {
	case MethodLU:
		return SolveLU(a, b, cfg)
	case MethodQR:
		return SolveQR(a, b, cfg)
	case MethodCG:
		return SolveCG(sparse, b, cfg)
	case MethodBiCGSTAB:
		return SolveBiCGSTAB(sparse, b, cfg)
	default:
		return nil, Stats{}, newSolverError("unsupported auto-selected method %v", method)
	}
}
