package domain

import "sort"

// ComputeStats counts records, distinct states, and distinct county names
// across all records, matched or not. Counties are counted by name alone, so
// "Polk" in Iowa and "Polk" in Florida count once.
func ComputeStats(records []JoinedRecord) Stats {
	states := make(map[string]struct{})
	counties := make(map[string]struct{})
	for i := range records {
		states[records[i].State] = struct{}{}
		counties[records[i].County] = struct{}{}
	}
	return Stats{
		TotalCases:       len(records),
		StatesAffected:   len(states),
		CountiesAffected: len(counties),
	}
}

// MissingCoordinates lists each distinct key among records without
// coordinates, sorted by state then county.
func MissingCoordinates(records []JoinedRecord) []MissingKey {
	counts := make(map[Key]int)
	for i := range records {
		if records[i].Located() {
			continue
		}
		counts[records[i].Key()]++
	}

	keys := make([]Key, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	missing := make([]MissingKey, len(keys))
	for i, key := range keys {
		missing[i] = MissingKey{State: key.State, County: key.County, Cases: counts[key]}
	}
	return missing
}

// SummarizeStates counts records per state, sorted by state.
func SummarizeStates(records []JoinedRecord) []StateSummary {
	counts := make(map[string]int)
	for i := range records {
		counts[records[i].State]++
	}

	summary := make([]StateSummary, 0, len(counts))
	for state, n := range counts {
		summary = append(summary, StateSummary{State: state, Cases: n})
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].State < summary[j].State })
	return summary
}

// Located filters records down to those with coordinates, preserving order.
func Located(records []JoinedRecord) []JoinedRecord {
	out := make([]JoinedRecord, 0, len(records))
	for i := range records {
		if records[i].Located() {
			out = append(out, records[i])
		}
	}
	return out
}

// Analyze normalizes both datasets, joins them, and builds the reports. The
// caller fills RunID and Fingerprint.
func Analyze(n *Normalizer, cases []CaseRecord, centroids []CentroidRecord) Result {
	joined := Join(n.Cases(cases), n.Centroids(centroids))
	return Result{
		GeneratedAt:   clock.Now().UTC(),
		Records:       joined.Records,
		Stats:         ComputeStats(joined.Records),
		Missing:       MissingCoordinates(joined.Records),
		States:        SummarizeStates(joined.Records),
		DuplicateKeys: joined.DuplicateKeys,
	}
}
