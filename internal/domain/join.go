package domain

import "sort"

// JoinResult holds the joined records and any centroid keys seen more than once.
type JoinResult struct {
	Records       []JoinedRecord
	DuplicateKeys []Key
}

// Join left-joins cases to centroids on exact (State, County) equality. The
// output has one record per case, in case order. For duplicate centroid keys
// the first row in centroid order wins; the duplicated keys are returned
// sorted, each once.
func Join(cases []CaseRecord, centroids []CentroidRecord) JoinResult {
	index := make(map[Key]*Coordinates, len(centroids))
	dupes := make(map[Key]struct{})
	for i := range centroids {
		key := centroids[i].Key()
		if _, seen := index[key]; seen {
			dupes[key] = struct{}{}
			continue
		}
		index[key] = centroids[i].Coordinates
	}

	records := make([]JoinedRecord, len(cases))
	for i := range cases {
		records[i] = JoinedRecord{CaseRecord: cases[i]}
		if coords := index[cases[i].Key()]; coords != nil {
			c := *coords
			records[i].Coordinates = &c
		}
	}

	var duplicateKeys []Key
	for key := range dupes {
		duplicateKeys = append(duplicateKeys, key)
	}
	sort.Slice(duplicateKeys, func(i, j int) bool { return duplicateKeys[i].less(duplicateKeys[j]) })

	return JoinResult{Records: records, DuplicateKeys: duplicateKeys}
}
