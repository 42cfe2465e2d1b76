// Package mna assembles a circuit.Circuit into the Modified Nodal Analysis
// linear system A·x = z and decodes a solver's solution vector back into
// node voltages and branch currents.
package mna

import (
	"github.com/danwright/spicecore/pkg/circuit"
)

// System is the reusable MNA workspace for one circuit. It is built once
// (NewSystem) and re-assembled every DC or transient step; A and Z are
// zeroed and re-stamped in place rather than reallocated each step.
//
// Unknown layout: indices [0, n) are non-ground node voltages, indices
// [n, N) are branch currents, one per voltage source and one per inductor
// (Strategy A: inductors get an explicit branch-current unknown rather than
// a large-conductance approximation; see DESIGN.md).
type System struct {
	c           *circuit.Circuit
	n           int // node unknowns
	m           int // branch-current unknowns
	N           int // n + m
	groundID    int
	sourceIndex map[string]int // element name -> row/col in [n, N)

	A []float64 // N*N, row-major
	Z []float64 // N
	X []float64 // N, last solution written by the caller after a solve
}

// NewSystem allocates the workspace for c. c should be frozen and valid.
func NewSystem(c *circuit.Circuit) (*System, error) {
	n := c.NumNodes()
	voltageSources := c.VoltageSources()
	inductors := c.Inductors()
	m := len(voltageSources) + len(inductors)
	N := n + m

	sourceIndex := make(map[string]int, m)
	idx := n
	for _, e := range voltageSources {
		sourceIndex[e.Name] = idx
		idx++
	}
	for _, e := range inductors {
		sourceIndex[e.Name] = idx
		idx++
	}

	return &System{
		c:           c,
		n:           n,
		m:           m,
		N:           N,
		groundID:    c.GroundID(),
		sourceIndex: sourceIndex,
		A:           make([]float64, N*N),
		Z:           make([]float64, N),
		X:           make([]float64, N),
	}, nil
}

// Size returns N, the dimension of A.
func (s *System) Size() int { return s.N }

// NodeCount returns n, the number of non-ground node unknowns.
func (s *System) NodeCount() int { return s.n }

// BranchCount returns m, the number of branch-current unknowns.
func (s *System) BranchCount() int { return s.m }

func (s *System) zero() {
	for i := range s.A {
		s.A[i] = 0
	}
	for i := range s.Z {
		s.Z[i] = 0
	}
}

// row maps a circuit node ID to its row/column in A, reporting false for
// the ground node (elided per the "ground stamps are elided" invariant).
func (s *System) row(nodeID int) (int, bool) {
	if nodeID == s.groundID {
		return 0, false
	}
	return nodeID - 1, true
}

func (s *System) branch(name string) int {
	return s.sourceIndex[name]
}

func (s *System) addA(i, j int, v float64) {
	s.A[i*s.N+j] += v
}

func (s *System) stampConductance(i, j int, iok, jok bool, g float64) {
	if iok {
		s.addA(i, i, g)
	}
	if jok {
		s.addA(j, j, g)
	}
	if iok && jok {
		s.addA(i, j, -g)
		s.addA(j, i, -g)
	}
}

func (s *System) stampCurrentSource(i, j int, iok, jok bool, value float64) {
	if iok {
		s.Z[i] += value
	}
	if jok {
		s.Z[j] -= value
	}
}

// stampBranchConstraint is the voltage-source pattern: an unknown branch
// current b flows from node i to node j, and the branch row constrains
// v_i - v_j (plus, for the inductor's transient companion, a term on the
// branch current itself) to equal rhs.
func (s *System) stampBranchConstraint(i, j int, iok, jok bool, b int, rhs float64) {
	if iok {
		s.addA(b, i, 1)
		s.addA(i, b, 1)
	}
	if jok {
		s.addA(b, j, -1)
		s.addA(j, b, -1)
	}
	s.Z[b] = rhs
}

// GetNodeVoltage returns the solved voltage at a circuit node ID, 0 for
// ground.
func (s *System) GetNodeVoltage(nodeID int) float64 {
	i, ok := s.row(nodeID)
	if !ok {
		return 0
	}
	return s.X[i]
}

// GetSourceCurrent returns the solved branch current for a voltage source
// or inductor by element name.
func (s *System) GetSourceCurrent(name string) (float64, bool) {
	idx, ok := s.sourceIndex[name]
	if !ok {
		return 0, false
	}
	return s.X[idx], true
}

// previousValue reads index i out of a previous solution vector, treating a
// nil vector (the first transient step) or an out-of-range index as 0.
func previousValue(prev []float64, i int) float64 {
	if prev == nil || i < 0 || i >= len(prev) {
		return 0
	}
	return prev[i]
}
