package groups

import "slices"

// AllGatesID is the reserved id of the built-in group that shows every gate.
const AllGatesID = "all"

// Group is a named subset of gates one judge is responsible for.
type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Gates []int  `json:"gates"`
	Color string `json:"color,omitempty"`
}

// AllGates returns the built-in group. Its empty gate list means "no filter".
func AllGates() Group {
	return Group{ID: AllGatesID, Name: "All Gates", Gates: []int{}}
}

// IsAll reports whether g is the all-gates sentinel.
func (g Group) IsAll() bool {
	return g.ID == AllGatesID
}

// Contains reports whether gate is shown by g.
func (g Group) Contains(gate int) bool {
	if g.IsAll() {
		return true
	}
	return slices.Contains(g.Gates, gate)
}

func (g Group) clone() Group {
	g.Gates = slices.Clone(g.Gates)
	return g
}

type storedGroups struct {
	Groups []Group `json:"groups"`
}
