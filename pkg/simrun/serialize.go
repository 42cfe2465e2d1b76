package simrun

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// CSV writes the result as a header row
// "time,V(node1),...,I(src1),..." followed by one row per time point, full
// double precision. Column order is node names then source names, both
// sorted for a stable deck-independent layout.
func (r *Result) CSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	nodeNames := sortedKeys(r.NodeVoltages)
	sourceNames := sortedKeys(r.SourceCurrents)

	header := make([]string, 0, 1+len(nodeNames)+len(sourceNames))
	header = append(header, "time")
	for _, n := range nodeNames {
		header = append(header, fmt.Sprintf("V(%s)", n))
	}
	for _, n := range sourceNames {
		header = append(header, fmt.Sprintf("I(%s)", n))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, t := range r.TimePoints {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(t, 'g', -1, 64))
		for _, n := range nodeNames {
			row = append(row, strconv.FormatFloat(r.NodeVoltages[n][i], 'g', -1, 64))
		}
		for _, n := range sourceNames {
			row = append(row, strconv.FormatFloat(r.SourceCurrents[n][i], 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// JSON writes the result as a single object mirroring Result verbatim.
func (r *Result) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
