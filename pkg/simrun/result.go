package simrun

// AnalysisKind names which driver operation produced a Result.
type AnalysisKind string

const (
	KindOperatingPoint AnalysisKind = "operating_point"
	KindDCSweep        AnalysisKind = "dc_sweep"
	KindTransient      AnalysisKind = "transient"
)

// StepConvergence is one per-step entry in a Result's convergence_info,
// populated from the solver Stats that produced that step's solution.
type StepConvergence struct {
	Index        int     `json:"index"`
	Method       string  `json:"method"`
	Iterations   int     `json:"iterations"`
	ResidualNorm float64 `json:"residual_norm"`
	Converged    bool    `json:"converged"`
}

// Result is the in-memory accumulator for one analysis run: every
// per-channel array has length len(TimePoints); a channel absent at a given
// point holds 0 there rather than shortening the slice.
type Result struct {
	AnalysisKind    AnalysisKind         `json:"analysis_kind"`
	TimePoints      []float64            `json:"time_points"`
	NodeVoltages    map[string][]float64 `json:"node_voltages"`
	SourceCurrents  map[string][]float64 `json:"source_currents"`
	ConvergenceInfo []StepConvergence    `json:"convergence_info"`
	TotalWallTime   float64              `json:"total_wall_time"`
	Success         bool                 `json:"success"`
}

func newResult(kind AnalysisKind) *Result {
	return &Result{
		AnalysisKind:   kind,
		NodeVoltages:   make(map[string][]float64),
		SourceCurrents: make(map[string][]float64),
		Success:        true,
	}
}

// record appends one time point's decoded channel values, padding every
// other known channel with 0 so all arrays stay the same length.
func (r *Result) record(t float64, voltages, currents map[string]float64, step StepConvergence) {
	r.TimePoints = append(r.TimePoints, t)
	r.ConvergenceInfo = append(r.ConvergenceInfo, step)

	for name := range r.NodeVoltages {
		if _, ok := voltages[name]; !ok {
			voltages[name] = 0
		}
	}
	for name, v := range voltages {
		r.NodeVoltages[name] = append(r.NodeVoltages[name], v)
	}

	for name := range r.SourceCurrents {
		if _, ok := currents[name]; !ok {
			currents[name] = 0
		}
	}
	for name, v := range currents {
		r.SourceCurrents[name] = append(r.SourceCurrents[name], v)
	}
}
