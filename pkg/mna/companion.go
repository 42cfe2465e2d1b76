package mna

// Companion coefficients for discretizing dv/dt and di/dt terms during
// transient assembly. Only backward Euler (BDF order 1) is wired into
// AssembleTransient — the engine takes a fixed time step, so the
// higher-order/variable-step machinery below is kept for the one ratio it
// is actually degenerate with, not exercised at order > 1.
type integrationMethod int

const (
	backwardEuler integrationMethod = iota
	trapezoidal
)

type bdfFormula struct {
	coefficients []float64
	beta         float64
}

var bdfCoefficients = [6]bdfFormula{
	{[]float64{1.0}, 1.0},
	{[]float64{4.0 / 3.0, -1.0 / 3.0}, 2.0 / 3.0},
	{[]float64{18.0 / 11.0, -9.0 / 11.0, 2.0 / 11.0}, 6.0 / 11.0},
	{[]float64{48.0 / 25.0, -36.0 / 25.0, 16.0 / 25.0, -3.0 / 25.0}, 12.0 / 25.0},
	{[]float64{300.0 / 137.0, -300.0 / 137.0, 200.0 / 137.0, -75.0 / 137.0, 12.0 / 137.0}, 60.0 / 137.0},
	{[]float64{360.0 / 147.0, -450.0 / 147.0, 400.0 / 147.0, -225.0 / 147.0, 72.0 / 147.0, -10.0 / 147.0}, 60.0 / 147.0},
}

// companionScale returns the multiplier that turns a capacitor's C or an
// inductor's L into the companion conductance/resistance for one step of
// size dt under the given method and order. AssembleTransient always calls
// this with (backwardEuler, 1, dt); order > 1 is unused until the engine
// supports variable-order stepping.
func companionScale(method integrationMethod, order int, dt float64) float64 {
	if method == trapezoidal {
		return trapezoidalScale(order, dt)
	}
	return bdfScale(order, dt)
}

func bdfScale(order int, dt float64) float64 {
	if order < 1 || order > 6 {
		order = 1
	}
	return 1.0 / (bdfCoefficients[order-1].beta * dt)
}

func trapezoidalScale(order int, dt float64) float64 {
	if order == 2 {
		return 2.0 / dt
	}
	return 1.0 / dt
}
