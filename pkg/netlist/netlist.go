// Package netlist lexes and parses a SPICE-flavored textual deck into a
// ParsedNetlist: a title, an element list, a parameter map, and the
// analyses the deck requested. It knows nothing about how those analyses
// are run; that is pkg/simrun's job.
package netlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danwright/spicecore/pkg/circuit"
)

// AnalysisKind identifies which directive requested an analysis.
type AnalysisKind int

const (
	AnalysisUnknown AnalysisKind = iota
	AnalysisOperatingPoint
	AnalysisDCSweep
	AnalysisTransient
	AnalysisAC
)

func (k AnalysisKind) String() string {
	switch k {
	case AnalysisOperatingPoint:
		return "operating point"
	case AnalysisDCSweep:
		return "dc sweep"
	case AnalysisTransient:
		return "transient"
	case AnalysisAC:
		return "ac"
	default:
		return "unknown"
	}
}

// DCSweepRequest is the parsed form of a .dc directive.
type DCSweepRequest struct {
	Source string
	Start  float64
	Stop   float64
	Step   float64
}

// TransientRequest is the parsed form of a .tran directive. TStart defaults
// to 0 when not supplied.
type TransientRequest struct {
	TStep  float64
	TStop  float64
	TStart float64
}

// ACRequest is the parsed form of a .ac directive. It is recorded but never
// solved: AC analysis is parsed only, per the Non-goals.
type ACRequest struct {
	Sweep  string // "lin", "oct", or "dec"
	Points int
	FStart float64
	FStop  float64
}

// AnalysisRequest is one directive line requesting an analysis. For .dc,
// .tran and .ac exactly one of the pointer fields is non-nil, matching Kind;
// an operating-point request carries no parameters and leaves all of them nil.
type AnalysisRequest struct {
	Kind      AnalysisKind
	DCSweep   *DCSweepRequest
	Transient *TransientRequest
	AC        *ACRequest
}

// ParsedNetlist is the output of Parse: everything the circuit builder and
// analysis driver need, with no further text processing required.
type ParsedNetlist struct {
	Title    string
	Elements []circuit.Element
	Params   map[string]float64
	Analyses []AnalysisRequest
	Warnings []string
}

// ToCircuit builds a frozen-ready Circuit from the parsed elements. It does
// not call Validate or Freeze; the caller decides when the circuit is
// complete.
func (pn *ParsedNetlist) ToCircuit() (*circuit.Circuit, error) {
	c := circuit.New(pn.Title)
	for _, e := range pn.Elements {
		for _, t := range e.Terminals {
			c.AddNode(t)
		}
		if err := c.AddElement(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Parse lexes and parses a full netlist deck: title, comments, continuation
// folding, element and directive lines, terminated by .end.
func Parse(text string) (*ParsedNetlist, error) {
	logical, err := foldContinuations(text)
	if err != nil {
		return nil, err
	}

	pn := &ParsedNetlist{
		Params: make(map[string]float64),
	}

	titleFound := false
	for _, ll := range logical {
		trimmed := strings.TrimSpace(ll.text)
		if trimmed == "" {
			continue
		}
		if isComment(trimmed) {
			continue
		}
		if !titleFound {
			pn.Title = trimmed
			titleFound = true
			continue
		}
		if strings.EqualFold(trimmed, ".end") {
			break
		}
		if strings.HasPrefix(trimmed, ".") {
			if err := parseDirective(pn, ll.line, trimmed); err != nil {
				return nil, err
			}
			continue
		}

		elem, err := parseElementLine(ll.line, trimmed)
		if err != nil {
			return nil, err
		}
		pn.Elements = append(pn.Elements, elem)
	}

	return pn, nil
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "*") || strings.HasPrefix(line, ";")
}

type logicalLine struct {
	line int // 1-based source line of the first physical line folded into this one
	text string
}

// foldContinuations prepends a space and strips the leading "+" for any
// line that continues the previous one.
func foldContinuations(text string) ([]logicalLine, error) {
	var out []logicalLine
	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(strings.TrimSpace(trimmed), "+") {
			if len(out) == 0 {
				return nil, newParseError(lineNo, trimmed, "continuation line has no preceding line")
			}
			cont := strings.TrimPrefix(strings.TrimSpace(trimmed), "+")
			out[len(out)-1].text += " " + strings.TrimSpace(cont)
			continue
		}
		out = append(out, logicalLine{line: lineNo, text: trimmed})
	}
	return out, nil
}

func parseElementLine(lineNo int, text string) (circuit.Element, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return circuit.Element{}, newParseError(lineNo, text, "element line needs a name and at least two terminals")
	}

	name := fields[0]
	kind, err := circuit.KindFromPrefix(name[0])
	if err != nil {
		return circuit.Element{}, newParseError(lineNo, text, "%s", err)
	}

	terminals := []string{fields[1], fields[2]}

	switch kind {
	case circuit.KindVoltageSource, circuit.KindCurrentSource:
		value, err := parseSourceValue(fields[3:])
		if err != nil {
			return circuit.Element{}, newParseError(lineNo, text, "%s", err)
		}
		return circuit.Element{Name: name, Kind: kind, Terminals: terminals, Value: value}, nil

	case circuit.KindDiode, circuit.KindMOSFET, circuit.KindBJT:
		// Recognized but never stamped (Non-goal: no nonlinear solve); a
		// model name or extra terminal tokens, if present, are discarded.
		return circuit.Element{Name: name, Kind: kind, Terminals: terminals}, nil

	default:
		if len(fields) < 4 {
			return circuit.Element{}, newParseError(lineNo, text, "%s %s needs a value", kind, name)
		}
		value, err := ParseValue(fields[3])
		if err != nil {
			return circuit.Element{}, newParseError(lineNo, text, "%s", err)
		}
		return circuit.Element{Name: name, Kind: kind, Terminals: terminals, Value: value}, nil
	}
}

// parseSourceValue resolves a voltage/current source's value expression.
// rest is every token after the two terminal nodes. A DC keyword's second
// token is the value; a PULSE(...) group's second parenthesized parameter
// (the pulsed value) is taken as the scalar value; every other keyword
// (AC, SIN, PWL, ...) passes its next token through verbatim; with no
// keyword at all, rest[0] is itself the value token.
func parseSourceValue(rest []string) (float64, error) {
	if len(rest) == 0 {
		return 0, fmt.Errorf("missing source value")
	}

	keyword := strings.ToUpper(rest[0])
	switch {
	case keyword == "DC":
		if len(rest) < 2 {
			return 0, fmt.Errorf("missing DC value")
		}
		return ParseValue(rest[1])

	case strings.HasPrefix(keyword, "PULSE"):
		joined := strings.NewReplacer("(", " ", ")", " ").Replace(strings.Join(rest, " "))
		params := strings.Fields(joined)
		if len(params) < 3 {
			return 0, fmt.Errorf("PULSE needs at least v1 and v2")
		}
		return ParseValue(params[2]) // params[0]=="PULSE", params[1]=v1, params[2]=v2

	case isKnownSourceKeyword(keyword):
		if len(rest) < 2 {
			return 0, fmt.Errorf("missing value after %s", keyword)
		}
		return ParseValue(rest[1])

	default:
		return ParseValue(rest[0])
	}
}

func isKnownSourceKeyword(keyword string) bool {
	switch keyword {
	case "AC", "SIN", "PWL":
		return true
	default:
		return false
	}
}

func parseDirective(pn *ParsedNetlist, lineNo int, text string) error {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case ".op":
		pn.Analyses = append(pn.Analyses, AnalysisRequest{Kind: AnalysisOperatingPoint})

	case ".tran":
		if len(fields) < 3 {
			return newParseError(lineNo, text, ".tran needs at least tstep and tstop")
		}
		tstep, err := ParseValue(fields[1])
		if err != nil {
			return newParseError(lineNo, text, "invalid tstep: %s", err)
		}
		tstop, err := ParseValue(fields[2])
		if err != nil {
			return newParseError(lineNo, text, "invalid tstop: %s", err)
		}
		req := TransientRequest{TStep: tstep, TStop: tstop}
		if len(fields) > 3 {
			tstart, err := ParseValue(fields[3])
			if err != nil {
				return newParseError(lineNo, text, "invalid tstart: %s", err)
			}
			req.TStart = tstart
		}
		pn.Analyses = append(pn.Analyses, AnalysisRequest{Kind: AnalysisTransient, Transient: &req})

	case ".dc":
		if len(fields) < 5 {
			return newParseError(lineNo, text, ".dc needs source, start, stop, and step")
		}
		start, err := ParseValue(fields[2])
		if err != nil {
			return newParseError(lineNo, text, "invalid start: %s", err)
		}
		stop, err := ParseValue(fields[3])
		if err != nil {
			return newParseError(lineNo, text, "invalid stop: %s", err)
		}
		step, err := ParseValue(fields[4])
		if err != nil {
			return newParseError(lineNo, text, "invalid step: %s", err)
		}
		req := DCSweepRequest{Source: fields[1], Start: start, Stop: stop, Step: step}
		pn.Analyses = append(pn.Analyses, AnalysisRequest{Kind: AnalysisDCSweep, DCSweep: &req})

	case ".ac":
		if len(fields) < 5 {
			return newParseError(lineNo, text, ".ac needs sweep type, points, fstart, and fstop")
		}
		sweep := strings.ToLower(fields[1])
		switch sweep {
		case "lin", "oct", "dec":
		default:
			return newParseError(lineNo, text, "unknown AC sweep type %q", fields[1])
		}
		points, err := strconv.Atoi(fields[2])
		if err != nil {
			return newParseError(lineNo, text, "invalid points: %s", err)
		}
		fstart, err := ParseValue(fields[3])
		if err != nil {
			return newParseError(lineNo, text, "invalid fstart: %s", err)
		}
		fstop, err := ParseValue(fields[4])
		if err != nil {
			return newParseError(lineNo, text, "invalid fstop: %s", err)
		}
		req := ACRequest{Sweep: sweep, Points: points, FStart: fstart, FStop: fstop}
		pn.Analyses = append(pn.Analyses, AnalysisRequest{Kind: AnalysisAC, AC: &req})

	case ".param":
		if len(fields) < 2 {
			return newParseError(lineNo, text, ".param needs name=value")
		}
		for _, assign := range fields[1:] {
			name, value, ok := strings.Cut(assign, "=")
			if !ok {
				return newParseError(lineNo, text, "malformed .param assignment %q", assign)
			}
			v, err := ParseValue(value)
			if err != nil {
				return newParseError(lineNo, text, "invalid .param value for %s: %s", name, err)
			}
			pn.Params[name] = v
		}

	default:
		pn.Warnings = append(pn.Warnings, fmt.Sprintf("line %d: unknown directive %q ignored", lineNo, fields[0]))
	}

	return nil
}
