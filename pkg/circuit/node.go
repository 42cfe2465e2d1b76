package circuit

import "strings"

// Node is a named connection point with a stable integer ID assigned in
// first-seen order. Ground is ID 0 and is excluded from the unknown vector.
type Node struct {
	Name string
	ID   int
}

// IsGroundName reports whether name denotes the ground node, case-insensitive,
// matching "0", "gnd" or "ground".
func IsGroundName(name string) bool {
	switch strings.ToLower(name) {
	case "0", "gnd", "ground":
		return true
	default:
		return false
	}
}
