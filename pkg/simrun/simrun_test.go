package simrun

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danwright/spicecore/pkg/netlist"
	"github.com/danwright/spicecore/pkg/solver"
)

func loadDeck(t *testing.T, deck string) *Simulator {
	t.Helper()
	pn, err := netlist.Parse(deck)
	require.NoError(t, err)
	c, err := pn.ToCircuit()
	require.NoError(t, err)
	sim, err := Load(c)
	require.NoError(t, err)
	return sim
}

func TestRunOperatingPoint_OhmsLaw(t *testing.T) {
	sim := loadDeck(t, "ohm\nV1 1 0 DC 5\nR1 1 2 1k\nR2 2 0 1k\n.op\n.end\n")
	res, err := sim.RunOperatingPoint()
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.TimePoints, 1)

	assert.InDelta(t, 5.0, res.NodeVoltages["1"][0], 1e-9)
	assert.InDelta(t, 2.5, res.NodeVoltages["2"][0], 1e-9)
	assert.InDelta(t, -2.5e-3, res.SourceCurrents["V1"][0], 1e-9)
}

func TestRunOperatingPoint_CurrentSource(t *testing.T) {
	sim := loadDeck(t, "isrc\nI1 0 1 DC 1mA\nR1 1 0 1k\n.op\n.end\n")
	res, err := sim.RunOperatingPoint()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.NodeVoltages["1"][0], 1e-9)
}

func TestRunTransient_RCDischarge(t *testing.T) {
	sim := loadDeck(t, "rc\nV1 1 0 DC 5\nR1 1 2 1k\nC1 2 0 1uF\n.tran 100u 5m\n.end\n")
	res, err := sim.RunTransient(100e-6, 5e-3)
	require.NoError(t, err)
	require.True(t, res.Success)

	// find the recorded point nearest t=1ms
	idx := nearestIndex(res.TimePoints, 1e-3)
	want := 5 * (1 - math.Exp(-1))
	assert.InDelta(t, want, res.NodeVoltages["2"][idx], 0.02*want)
}

func TestRunOperatingPoint_ResistorLadder(t *testing.T) {
	deck := "ladder\nV1 11 0 DC 10\n"
	prev := 11
	for k := 1; k <= 10; k++ {
		next := k
		if k == 10 {
			next = 0
		}
		deck += "R" + itoa(k) + " " + itoa(prev) + " " + itoa(next) + " 1k\n"
		prev = next
	}
	deck += ".op\n.end\n"

	sim := loadDeck(t, deck)
	res, err := sim.RunOperatingPoint()
	require.NoError(t, err)
	require.True(t, res.Success)

	for k := 1; k <= 9; k++ {
		want := float64(10 - k)
		assert.InDeltaf(t, want, res.NodeVoltages[itoa(k)][0], 1e-6, "node %d", k)
	}
	assert.InDelta(t, -1e-3, res.SourceCurrents["V1"][0], 1e-9)
}

func TestRunDCSweep_PointCountAndValues(t *testing.T) {
	sim := loadDeck(t, "sweep\nV1 1 0 DC 0\nR1 1 0 1k\n.dc V1 0 5 1\n.end\n")
	res, err := sim.RunDCSweep("V1", 0, 5, 1)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.TimePoints, 6) // floor(5/1)+1

	for i, v := range res.TimePoints {
		assert.Equal(t, float64(i), v)
		assert.InDelta(t, v, res.NodeVoltages["1"][i], 1e-9)
	}
}

func TestRunOperatingPoint_PinnedMethodMatchesAuto(t *testing.T) {
	deck := "ohm\nV1 1 0 DC 5\nR1 1 2 1k\nR2 2 0 1k\n.op\n.end\n"
	auto := loadDeck(t, deck)
	pinned := loadDeck(t, deck).WithMethod(solver.MethodLU)

	wantRes, err := auto.RunOperatingPoint()
	require.NoError(t, err)
	gotRes, err := pinned.RunOperatingPoint()
	require.NoError(t, err)

	assert.Equal(t, "lu", gotRes.ConvergenceInfo[0].Method)
	assert.InDelta(t, wantRes.NodeVoltages["2"][0], gotRes.NodeVoltages["2"][0], 1e-9)
}

func TestRunAnalysis_ACIsRejected(t *testing.T) {
	sim := loadDeck(t, "ac\nV1 1 0 AC 1\nR1 1 0 1k\n.ac dec 10 1 1meg\n.end\n")
	pn, err := netlist.Parse("ac\nV1 1 0 AC 1\nR1 1 0 1k\n.ac dec 10 1 1meg\n.end\n")
	require.NoError(t, err)
	require.Len(t, pn.Analyses, 1)

	_, err = sim.RunAnalysis(pn.Analyses[0])
	require.Error(t, err)
	var uae *UnsupportedAnalysisError
	require.ErrorAs(t, err, &uae)
}

func TestResult_CSVAndJSON(t *testing.T) {
	sim := loadDeck(t, "ohm\nV1 1 0 DC 5\nR1 1 2 1k\nR2 2 0 1k\n.op\n.end\n")
	res, err := sim.RunOperatingPoint()
	require.NoError(t, err)

	var csvBuf bytes.Buffer
	require.NoError(t, res.CSV(&csvBuf))
	assert.Contains(t, csvBuf.String(), "time,V(1),V(2),I(V1)")

	var jsonBuf bytes.Buffer
	require.NoError(t, res.JSON(&jsonBuf))
	assert.Contains(t, jsonBuf.String(), "\"analysis_kind\"")
}

func nearestIndex(ts []float64, target float64) int {
	best := 0
	bestDiff := math.Abs(ts[0] - target)
	for i, t := range ts {
		if d := math.Abs(t - target); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	n := v
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
