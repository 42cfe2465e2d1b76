package netlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// magnitudeMultipliers is the SI suffix table. "meg" is checked ahead of
// "m" in ParseValue so "1meg" never gets mistaken for "1m" + a stray "eg".
var magnitudeMultipliers = map[string]float64{
	"f": 1e-15,
	"p": 1e-12,
	"n": 1e-9,
	"u": 1e-6,
	"m": 1e-3,
	"k": 1e3,
	"g": 1e9,
	"t": 1e12,
}

const megMultiplier = 1e6

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.\d*|\.\d+|\d+)([eE][+-]?\d+)?`)

// ParseValue parses a SPICE value token: a real number optionally followed
// by a case-insensitive unit suffix. Time suffixes (fs/ps/ns/us/ms/s) and
// trailing v/a letters on plain values both resolve through the same
// magnitude table; "meg" is matched before "m" so it is never treated as
// milli.
func ParseValue(token string) (float64, error) {
	token = strings.TrimSpace(token)
	numStr := numberPrefix.FindString(token)
	if numStr == "" {
		return 0, fmt.Errorf("unparseable value %q", token)
	}

	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable value %q: %w", token, err)
	}

	suffix := strings.ToLower(strings.TrimSpace(token[len(numStr):]))
	if suffix == "" {
		return num, nil
	}

	if strings.HasPrefix(suffix, "meg") {
		return num * megMultiplier, nil
	}

	// A single magnitude letter binds first; anything after it (a unit
	// name like "F", "H", or a time-suffix "s") is just along for the
	// ride and contributes nothing further — "1uF" and "1ms" both read
	// their multiplier off the first letter alone.
	if mult, ok := magnitudeMultipliers[suffix[:1]]; ok {
		return num * mult, nil
	}

	// No recognized magnitude letter: a bare unit name (v, a, s, ohm, H)
	// contributes multiplier 1. A leading "f" never gets here: it reads as
	// femto above.
	if isBareUnit(suffix) {
		return num, nil
	}

	return 0, fmt.Errorf("unknown unit suffix %q in value %q", suffix, token)
}

func isBareUnit(s string) bool {
	switch s {
	case "v", "a", "s", "ohm", "h":
		return true
	default:
		return false
	}
}
