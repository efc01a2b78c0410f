// Package domain models highly pathogenic avian influenza (HPAI) detections in
// wild birds and the county centroids used to place them on a map.
//
// # Data Sources
//
// Case records come from the USDA APHIS wild bird HPAI detection export, one
// row per confirmed sample:
//
//	Collection Date, Bird Species, HPAI Strain, State, County
//
// Centroids come from a county reference table (Census Gazetteer or similar):
//
//	State, County, Latitude, Longitude
//
// The two files disagree on naming. APHIS writes full state names ("Iowa") and
// usually appends " County" to the county; centroid tables often use USPS codes
// ("IA") and bare county names. Both sides are normalized the same way before
// they are joined.
//
// # Normalization
//
// County:
//
//	Every occurrence of the literal " County" is removed (case-sensitive), then
//	surrounding whitespace is trimmed: "Polk County" → "Polk".
//	Names without the suffix ("Juneau City and Borough") are only trimmed.
//
// State:
//
//	Full names of the 50 states map to their two-letter USPS code through a
//	[StateCodeTable]. Anything else (codes, territories such as "Puerto Rico",
//	"District of Columbia", typos) passes through unchanged. A pass-through
//	value can still fail to join, which surfaces in the missing report rather
//	than as an error.
//
// # Join
//
// Cases are left-joined to centroids on the exact (State, County) pair. Every
// case produces exactly one [JoinedRecord], in input order. When the centroid
// table carries the same key more than once the first row wins and the key is
// reported in [JoinResult.DuplicateKeys]. A centroid whose latitude or
// longitude is blank or not numeric still matches its key but contributes no
// coordinates, so its cases count as unmatched.
//
// # Reports
//
// [ComputeStats] counts records, distinct states, and distinct county names
// over the whole joined set, including unmatched rows. [MissingCoordinates]
// lists each distinct unmatched key once, sorted by state then county.
package domain
