package solver

// AutoSelect picks a solve method from a matrix's size, density, and
// symmetry: small or dense matrices go direct, symmetric sparse matrices
// go CG, everything else goes BiCGSTAB.
func AutoSelect(s *Sparse) Method {
	size := s.N
	density := 0.0
	if size > 0 {
		density = float64(s.NNZ()) / float64(size*size)
	}

	if size < 100 || density > 0.1 {
		return MethodLU
	}
	if s.Symmetric(1e-12) {
		return MethodCG
	}
	return MethodBiCGSTAB
}
