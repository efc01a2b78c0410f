package domain

import "strings"

// countySuffix is removed from county names on both sides of the join.
const countySuffix = " County"

// NormalizeCounty removes every " County" from name and trims surrounding
// whitespace. Removal repeats until none remain so the result is stable under
// a second pass ("A Cou Countynty" would otherwise yield "A County").
func NormalizeCounty(name string) string {
	for strings.Contains(name, countySuffix) {
		name = strings.ReplaceAll(name, countySuffix, "")
	}
	return strings.TrimSpace(name)
}

// Normalizer standardizes state and county names so cases and centroids
// compare equal.
type Normalizer struct {
	states *StateCodeTable
}

// NewNormalizer creates a Normalizer backed by the given state table.
func NewNormalizer(states *StateCodeTable) *Normalizer {
	return &Normalizer{states: states}
}

// State maps a full state name to its code, leaving unknown names unchanged.
func (n *Normalizer) State(name string) string {
	return n.states.Standardize(name)
}

// Case returns a copy of r with normalized state and county.
func (n *Normalizer) Case(r CaseRecord) CaseRecord {
	r.State = n.State(r.State)
	r.County = NormalizeCounty(r.County)
	return r
}

// Centroid returns a copy of c with normalized state and county.
func (n *Normalizer) Centroid(c CentroidRecord) CentroidRecord {
	c.State = n.State(c.State)
	c.County = NormalizeCounty(c.County)
	return c
}

// Cases normalizes every record into a new slice.
func (n *Normalizer) Cases(records []CaseRecord) []CaseRecord {
	out := make([]CaseRecord, len(records))
	for i := range records {
		out[i] = n.Case(records[i])
	}
	return out
}

// Centroids normalizes every centroid into a new slice.
func (n *Normalizer) Centroids(centroids []CentroidRecord) []CentroidRecord {
	out := make([]CentroidRecord, len(centroids))
	for i := range centroids {
		out[i] = n.Centroid(centroids[i])
	}
	return out
}
