package simrun

import "github.com/danwright/spicecore/pkg/netlist"

// RunAnalysis runs whichever single analysis req describes. AC requests are
// parsed elsewhere (pkg/netlist) but rejected here: this engine has no AC
// small-signal solver (Non-goal).
func (s *Simulator) RunAnalysis(req netlist.AnalysisRequest) (*Result, error) {
	switch req.Kind {
	case netlist.AnalysisOperatingPoint:
		return s.RunOperatingPoint()
	case netlist.AnalysisDCSweep:
		return s.RunDCSweep(req.DCSweep.Source, req.DCSweep.Start, req.DCSweep.Stop, req.DCSweep.Step)
	case netlist.AnalysisTransient:
		return s.RunTransient(req.Transient.TStep, req.Transient.TStop)
	case netlist.AnalysisAC:
		return nil, newUnsupportedAnalysisError(req.Kind.String())
	default:
		return nil, newUnsupportedAnalysisError(req.Kind.String())
	}
}
