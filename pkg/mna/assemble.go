package mna

import "github.com/danwright/spicecore/pkg/circuit"

// AssembleDC zeroes and re-stamps A and z for a DC operating point or a
// single DC-sweep point. Capacitors are open circuits; inductors get a
// branch-current unknown constrained to zero volts across the pins.
func (s *System) AssembleDC() error {
	s.zero()
	for _, e := range s.c.Elements() {
		if err := s.stampDC(e); err != nil {
			return err
		}
	}
	return nil
}

// AssembleTransient zeroes and re-stamps A and z for one backward-Euler
// step of size dt. prev is the full unknown vector from the previous step
// (nil at t=0, meaning all-zero initial conditions) — not only the voltage
// block, because the inductor companion model also needs the previous
// branch current (see DESIGN.md).
func (s *System) AssembleTransient(dt float64, prev []float64) error {
	if dt <= 0 {
		return newAssemblyError("time step must be positive, got %g", dt)
	}
	s.zero()
	for _, e := range s.c.Elements() {
		if err := s.stampTransient(e, dt, prev); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) stampDC(e circuit.Element) error {
	i, iok := s.row(s.nodeID(e.Terminals[0]))
	j, jok := s.row(s.nodeID(e.Terminals[1]))

	switch e.Kind {
	case circuit.KindResistor:
		s.stampConductance(i, j, iok, jok, 1/e.Value)

	case circuit.KindCapacitor:
		// open circuit in DC: no contribution

	case circuit.KindInductor:
		b := s.branch(e.Name)
		s.stampBranchConstraint(i, j, iok, jok, b, 0)

	case circuit.KindCurrentSource:
		// SPICE convention: the source drives its current from the first
		// terminal through itself into the second, so it is injected at j.
		s.stampCurrentSource(j, i, jok, iok, e.Value)

	case circuit.KindVoltageSource:
		b := s.branch(e.Name)
		s.stampBranchConstraint(i, j, iok, jok, b, e.Value)

	case circuit.KindDiode, circuit.KindMOSFET, circuit.KindBJT:
		// recognized, never stamped: solving these needs Newton-Raphson

	default:
		return newAssemblyError("element %s has unrecognized kind %s", e.Name, e.Kind)
	}
	return nil
}

func (s *System) stampTransient(e circuit.Element, dt float64, prev []float64) error {
	i, iok := s.row(s.nodeID(e.Terminals[0]))
	j, jok := s.row(s.nodeID(e.Terminals[1]))

	switch e.Kind {
	case circuit.KindResistor:
		s.stampConductance(i, j, iok, jok, 1/e.Value)

	case circuit.KindCapacitor:
		gc := e.Value * companionScale(backwardEuler, 1, dt)
		s.stampConductance(i, j, iok, jok, gc)
		vi := previousValue(prev, orMinusOne(i, iok))
		vj := previousValue(prev, orMinusOne(j, jok))
		ic := gc * (vi - vj)
		s.stampCurrentSource(i, j, iok, jok, ic)

	case circuit.KindInductor:
		// Backward Euler on v = L di/dt gives, for branch current i_b:
		// v_i - v_j - (L/dt)*i_b = -(L/dt)*i_b_prev
		b := s.branch(e.Name)
		ldt := e.Value * companionScale(backwardEuler, 1, dt)
		iPrevBranch := previousValue(prev, b)
		s.stampBranchConstraint(i, j, iok, jok, b, -ldt*iPrevBranch)
		s.addA(b, b, -ldt)

	case circuit.KindCurrentSource:
		s.stampCurrentSource(j, i, jok, iok, e.Value)

	case circuit.KindVoltageSource:
		b := s.branch(e.Name)
		s.stampBranchConstraint(i, j, iok, jok, b, e.Value)

	case circuit.KindDiode, circuit.KindMOSFET, circuit.KindBJT:
		// recognized, never stamped

	default:
		return newAssemblyError("element %s has unrecognized kind %s", e.Name, e.Kind)
	}
	return nil
}

func (s *System) nodeID(name string) int {
	id, _ := s.c.NodeID(name)
	return id
}

// orMinusOne lets previousValue's bounds check reject a ground reference
// (iok == false) regardless of what row() returned for it.
func orMinusOne(row int, ok bool) int {
	if !ok {
		return -1
	}
	return row
}
