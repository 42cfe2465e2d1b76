// Package simrun owns the outer analysis loop — operating point, DC sweep,
// and transient — and the in-memory result accumulator. It is the only
// package that sequences mna and solver together; it has no opinion about
// how a Result reaches disk (see Result.CSV / Result.JSON) or a terminal.
package simrun

import (
	"math"
	"time"

	"github.com/danwright/spicecore/pkg/circuit"
	"github.com/danwright/spicecore/pkg/mna"
	"github.com/danwright/spicecore/pkg/solver"
)

// Simulator owns one circuit exclusively: a new analysis starts clean from
// the frozen circuit rather than sharing mutable state with a prior run.
// Single-threaded, no cancellation.
type Simulator struct {
	circuit *circuit.Circuit
	cfg     solver.Config
	last    *Result
}

// Load validates and freezes c, returning a Simulator ready to run
// analyses against it.
func Load(c *circuit.Circuit) (*Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Freeze()
	return &Simulator{circuit: c, cfg: solver.DefaultConfig()}, nil
}

// WithSolverConfig overrides the default tolerance/iteration cap/method
// used for every solve.
func (s *Simulator) WithSolverConfig(cfg solver.Config) *Simulator {
	s.cfg = cfg
	return s
}

// WithMethod pins every subsequent solve to method instead of letting
// solver.AutoSelect choose per assembly.
func (s *Simulator) WithMethod(method solver.Method) *Simulator {
	s.cfg.Method = method
	return s
}

// LastResult returns the most recently completed analysis, or nil if none
// has run yet.
func (s *Simulator) LastResult() *Result {
	return s.last
}

// RunOperatingPoint assembles DC once, solves once, and records a single
// time point at t = 0.
func (s *Simulator) RunOperatingPoint() (*Result, error) {
	start := time.Now()
	sys, err := mna.NewSystem(s.circuit)
	if err != nil {
		return nil, err
	}

	result := newResult(KindOperatingPoint)
	s.initChannels(result, sys)

	if err := sys.AssembleDC(); err != nil {
		return nil, err
	}
	step, solved, err := s.solveAndDecode(sys, 0)
	if err != nil {
		return nil, err
	}
	result.record(0, solved.voltages, solved.currents, step)
	result.Success = step.Converged
	result.TotalWallTime = time.Since(start).Seconds()

	s.last = result
	return result, nil
}

// RunDCSweep walks source from start to stop in increments of step,
// reassembling and resolving the DC operating point at each value. The
// number of points is ⌊|stop-start|/step⌋ + 1.
func (s *Simulator) RunDCSweep(source string, start, stop, step float64) (*Result, error) {
	wallStart := time.Now()
	if step == 0 {
		return nil, newSweepError("dc sweep step must be nonzero")
	}

	numPoints := int(math.Floor(math.Abs(stop-start)/math.Abs(step))) + 1

	result := newResult(KindDCSweep)
	allSucceeded := true

	for i := 0; i < numPoints; i++ {
		value := start + float64(i)*step
		swept, err := s.circuit.WithValue(source, value)
		if err != nil {
			return nil, err
		}

		sys, err := mna.NewSystem(swept)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			s.initChannels(result, sys)
		}

		if err := sys.AssembleDC(); err != nil {
			return nil, err
		}
		stepInfo, solved, err := s.solveAndDecode(sys, i)
		if err != nil {
			return nil, err
		}
		result.record(value, solved.voltages, solved.currents, stepInfo)
		allSucceeded = allSucceeded && stepInfo.Converged
	}

	result.Success = allSucceeded
	result.TotalWallTime = time.Since(wallStart).Seconds()
	s.last = result
	return result, nil
}

// RunTransient steps backward Euler from t = 0 to tstop in increments of
// tstep. Step 0 is recorded with zero initial conditions; a failed
// step's convergence record is kept and the run continues, but the overall
// Result.Success is false if any step failed.
func (s *Simulator) RunTransient(tstep, tstop float64) (*Result, error) {
	wallStart := time.Now()
	if tstep <= 0 {
		return nil, newSweepError("transient tstep must be positive")
	}

	sys, err := mna.NewSystem(s.circuit)
	if err != nil {
		return nil, err
	}

	result := newResult(KindTransient)
	s.initChannels(result, sys)

	numSteps := int(math.Floor(tstop/tstep)) + 1
	allSucceeded := true

	zeroVoltages := make(map[string]float64, len(result.NodeVoltages))
	zeroCurrents := make(map[string]float64, len(result.SourceCurrents))
	for name := range result.NodeVoltages {
		zeroVoltages[name] = 0
	}
	for name := range result.SourceCurrents {
		zeroCurrents[name] = 0
	}
	result.record(0, zeroVoltages, zeroCurrents, StepConvergence{Index: 0, Method: "none", Converged: true})

	var prev []float64
	for k := 1; k < numSteps; k++ {
		t := float64(k) * tstep
		if err := sys.AssembleTransient(tstep, prev); err != nil {
			return nil, err
		}
		stepInfo, solved, err := s.solveAndDecode(sys, k)
		if err != nil {
			return nil, err
		}
		result.record(t, solved.voltages, solved.currents, stepInfo)
		allSucceeded = allSucceeded && stepInfo.Converged
		prev = append([]float64(nil), sys.X...)
	}

	result.Success = allSucceeded
	result.TotalWallTime = time.Since(wallStart).Seconds()
	s.last = result
	return result, nil
}

type decoded struct {
	voltages map[string]float64
	currents map[string]float64
}

func (s *Simulator) solveAndDecode(sys *mna.System, stepIndex int) (StepConvergence, decoded, error) {
	dense, err := solver.DenseFromRowMajor(sys.Size(), sys.A)
	if err != nil {
		return StepConvergence{}, decoded{}, err
	}

	x, stats, err := solver.SolveAuto(dense, sys.Z, s.cfg)
	if err != nil {
		return StepConvergence{}, decoded{}, err
	}
	copy(sys.X, x)

	step := StepConvergence{
		Index:        stepIndex,
		Method:       stats.MethodUsed.String(),
		Iterations:   stats.Iterations,
		ResidualNorm: stats.ResidualNorm,
		Converged:    stats.Success,
	}

	out := decoded{
		voltages: make(map[string]float64, sys.NodeCount()),
		currents: make(map[string]float64),
	}
	for name := range s.nodeNames() {
		id, _ := s.circuit.NodeID(name)
		out.voltages[name] = sys.GetNodeVoltage(id)
	}
	for _, e := range s.circuit.VoltageSources() {
		if i, ok := sys.GetSourceCurrent(e.Name); ok {
			out.currents[e.Name] = i
		}
	}
	for _, e := range s.circuit.Inductors() {
		if i, ok := sys.GetSourceCurrent(e.Name); ok {
			out.currents[e.Name] = i
		}
	}

	return step, out, nil
}

// initChannels pre-declares every node and source-current channel on
// result so record() always backfills absent channels with 0 rather than
// producing ragged arrays.
func (s *Simulator) initChannels(result *Result, sys *mna.System) {
	for name := range s.nodeNames() {
		result.NodeVoltages[name] = nil
	}
	for _, e := range s.circuit.VoltageSources() {
		result.SourceCurrents[e.Name] = nil
	}
	for _, e := range s.circuit.Inductors() {
		result.SourceCurrents[e.Name] = nil
	}
	_ = sys
}

func (s *Simulator) nodeNames() map[string]struct{} {
	names := make(map[string]struct{})
	for _, e := range s.circuit.Elements() {
		for _, t := range e.Terminals {
			if circuit.IsGroundName(t) {
				continue
			}
			names[t] = struct{}{}
		}
	}
	return names
}
