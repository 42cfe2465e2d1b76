package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danwright/spicecore/pkg/circuit"
)

func TestParseValue_Magnitudes(t *testing.T) {
	cases := map[string]float64{
		"1k":    1000,
		"1K":    1000,
		"1meg":  1e6,
		"1MEG":  1e6,
		"1m":    1e-3,
		"1u":    1e-6,
		"1n":    1e-9,
		"1p":    1e-12,
		"1f":    1e-15,
		"1g":    1e9,
		"1t":    1e12,
		"5v":    5,
		"1mA":   1e-3,
		"1ns":   1e-9,
		"1ms":   1e-3,
		"100us": 100e-6,
		"5s":    5,
		"-3.3":  -3.3,
		"2.5e3": 2500,
	}
	for in, want := range cases {
		got, err := ParseValue(in)
		require.NoErrorf(t, err, "ParseValue(%q)", in)
		assert.InDeltaf(t, want, got, want*1e-9+1e-18, "ParseValue(%q)", in)
	}
}

func TestParseValue_MegBeforeM(t *testing.T) {
	// "1meg" must not be read as "1m" followed by a stray "eg".
	got, err := ParseValue("1meg")
	require.NoError(t, err)
	assert.Equal(t, 1e6, got)
}

func TestParseValue_Invalid(t *testing.T) {
	_, err := ParseValue("abc")
	assert.Error(t, err)

	_, err = ParseValue("1xyz")
	assert.Error(t, err)
}

func TestParse_OhmsLawDeck(t *testing.T) {
	deck := `Ohm's law
V1 1 0 DC 5V
R1 1 2 1k
R2 2 0 1k
.op
.end
`
	pn, err := Parse(deck)
	require.NoError(t, err)
	assert.Equal(t, "Ohm's law", pn.Title)
	require.Len(t, pn.Elements, 3)
	require.Len(t, pn.Analyses, 1)
	assert.Equal(t, AnalysisOperatingPoint, pn.Analyses[0].Kind)

	v1, ok := elementByName(pn.Elements, "V1")
	require.True(t, ok)
	assert.Equal(t, circuit.KindVoltageSource, v1.Kind)
	assert.Equal(t, 5.0, v1.Value)

	r1, ok := elementByName(pn.Elements, "R1")
	require.True(t, ok)
	assert.Equal(t, circuit.KindResistor, r1.Kind)
	assert.Equal(t, 1000.0, r1.Value)
}

func TestParse_ValueSuffixExactness(t *testing.T) {
	deck := `suffix check
R1 1 0 1k
C1 1 0 1u
L1 1 0 1m
.op
.end
`
	pn, err := Parse(deck)
	require.NoError(t, err)

	r1, _ := elementByName(pn.Elements, "R1")
	c1, _ := elementByName(pn.Elements, "C1")
	l1, _ := elementByName(pn.Elements, "L1")
	assert.Equal(t, 1000.0, r1.Value)
	assert.Equal(t, 1e-6, c1.Value)
	assert.Equal(t, 1e-3, l1.Value)
}

func TestParse_ContinuationAndComments(t *testing.T) {
	deck := `deck with continuation
* this is a comment
V1 1 0 DC
+ 5V
R1 1 0 1k
; also a comment
.op
.end
ignored after .end
`
	pn, err := Parse(deck)
	require.NoError(t, err)
	require.Len(t, pn.Elements, 2)
	v1, _ := elementByName(pn.Elements, "V1")
	assert.Equal(t, 5.0, v1.Value)
}

func TestParse_CurrentSource(t *testing.T) {
	deck := `current source`
	deck += "\nI1 0 1 DC 1mA\nR1 1 0 1k\n.op\n.end\n"
	pn, err := Parse(deck)
	require.NoError(t, err)
	i1, ok := elementByName(pn.Elements, "I1")
	require.True(t, ok)
	assert.Equal(t, circuit.KindCurrentSource, i1.Kind)
	assert.InDelta(t, 1e-3, i1.Value, 1e-12)
}

func TestParse_TranDirective(t *testing.T) {
	deck := `rc discharge
V1 1 0 DC 5V
R1 1 2 1k
C1 2 0 1uF
.tran 100us 5ms
.end
`
	pn, err := Parse(deck)
	require.NoError(t, err)
	require.Len(t, pn.Analyses, 1)
	req := pn.Analyses[0]
	require.Equal(t, AnalysisTransient, req.Kind)
	require.NotNil(t, req.Transient)
	assert.InDelta(t, 100e-6, req.Transient.TStep, 1e-12)
	assert.InDelta(t, 5e-3, req.Transient.TStop, 1e-12)
}

func TestParse_DCSweepDirective(t *testing.T) {
	deck := "sweep\nV1 1 0 DC 1\nR1 1 0 1k\n.dc V1 0 5 0.5\n.end\n"
	pn, err := Parse(deck)
	require.NoError(t, err)
	require.Len(t, pn.Analyses, 1)
	req := pn.Analyses[0]
	require.Equal(t, AnalysisDCSweep, req.Kind)
	require.NotNil(t, req.DCSweep)
	assert.Equal(t, "V1", req.DCSweep.Source)
	assert.Equal(t, 0.0, req.DCSweep.Start)
	assert.Equal(t, 5.0, req.DCSweep.Stop)
	assert.Equal(t, 0.5, req.DCSweep.Step)
}

func TestParse_ACDirectiveParsedNotRejected(t *testing.T) {
	deck := "ac check\nV1 1 0 AC 1\nR1 1 0 1k\n.ac dec 10 1 1meg\n.end\n"
	pn, err := Parse(deck)
	require.NoError(t, err)
	require.Len(t, pn.Analyses, 1)
	assert.Equal(t, AnalysisAC, pn.Analyses[0].Kind)
	assert.Equal(t, "dec", pn.Analyses[0].AC.Sweep)
}

func TestParse_ParamDirective(t *testing.T) {
	deck := "params\nR1 1 0 1k\n.param vcc=5 vee=-5\n.op\n.end\n"
	pn, err := Parse(deck)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pn.Params["vcc"])
	assert.Equal(t, -5.0, pn.Params["vee"])
}

func TestParse_UnknownDirectiveWarnsNotFails(t *testing.T) {
	deck := "unknown directive\nR1 1 0 1k\n.model nmos1 nmos\n.op\n.end\n"
	pn, err := Parse(deck)
	require.NoError(t, err)
	require.NotEmpty(t, pn.Warnings)
	assert.Contains(t, pn.Warnings[0], ".model")
}

func TestParse_UnknownElementPrefixFails(t *testing.T) {
	_, err := Parse("bad\nZ1 1 0 1k\n.end\n")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParse_TooFewTerminalsFails(t *testing.T) {
	_, err := Parse("bad\nR1 1\n.end\n")
	require.Error(t, err)
}

func TestParse_PulseTakesSecondParamAsValue(t *testing.T) {
	deck := "pulse\nV1 1 0 PULSE(0 5 0 1n 1n 1m 2m)\nR1 1 0 1k\n.op\n.end\n"
	pn, err := Parse(deck)
	require.NoError(t, err)
	v1, ok := elementByName(pn.Elements, "V1")
	require.True(t, ok)
	assert.Equal(t, 5.0, v1.Value)
}

func TestParse_ToCircuit(t *testing.T) {
	deck := "ladder\nV1 1 0 DC 10\nR1 1 0 1k\n.op\n.end\n"
	pn, err := Parse(deck)
	require.NoError(t, err)
	c, err := pn.ToCircuit()
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.True(t, c.HasGround())
}

func elementByName(elems []circuit.Element, name string) (circuit.Element, bool) {
	for _, e := range elems {
		if e.Name == name {
			return e, true
		}
	}
	return circuit.Element{}, false
}
