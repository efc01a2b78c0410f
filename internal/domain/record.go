package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CaseRecord is one HPAI detection as it appears in the case export.
type CaseRecord struct {
	CollectionDate string `csv:"Collection Date" json:"collection_date" yaml:"collection_date"`
	BirdSpecies    string `csv:"Bird Species" json:"bird_species" yaml:"bird_species"`
	HPAIStrain     string `csv:"HPAI Strain" json:"hpai_strain" yaml:"hpai_strain"`
	State          string `csv:"State" json:"state" yaml:"state"`
	County         string `csv:"County" json:"county" yaml:"county"`
}

// Key returns the join key of the record.
func (r CaseRecord) Key() Key {
	return Key{State: r.State, County: r.County}
}

// RawCentroid mirrors a row of the centroid table before coordinates are parsed.
type RawCentroid struct {
	State     string `csv:"State"`
	County    string `csv:"County"`
	Latitude  string `csv:"Latitude"`
	Longitude string `csv:"Longitude"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Valid reports whether both values fall inside WGS-84 bounds.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// CentroidRecord is a county reference point. Coordinates is nil when the
// source row had a blank or non-numeric latitude or longitude.
type CentroidRecord struct {
	State       string       `json:"state"`
	County      string       `json:"county"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Key returns the join key of the centroid.
func (c CentroidRecord) Key() Key {
	return Key{State: c.State, County: c.County}
}

// ParseCentroid converts a raw centroid row. Coordinates are kept only when
// both values parse, so a record never carries half a position.
func ParseCentroid(raw RawCentroid) CentroidRecord {
	c := CentroidRecord{State: raw.State, County: raw.County}
	lat, latOK := parseFloat(raw.Latitude)
	lon, lonOK := parseFloat(raw.Longitude)
	if latOK && lonOK {
		c.Coordinates = &Coordinates{Latitude: lat, Longitude: lon}
	}
	return c
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Key is the (State, County) pair cases and centroids are joined on.
type Key struct {
	State  string `json:"state" yaml:"state"`
	County string `json:"county" yaml:"county"`
}

// String formats the key as "State|County".
func (k Key) String() string {
	return k.State + "|" + k.County
}

func (k Key) less(o Key) bool {
	if k.State != o.State {
		return k.State < o.State
	}
	return k.County < o.County
}

// JoinedRecord is a case with the coordinates of its matching centroid, if any.
type JoinedRecord struct {
	CaseRecord  `yaml:",inline"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
}

// Located reports whether the record has coordinates and can be placed on a map.
func (r JoinedRecord) Located() bool {
	return r.Coordinates != nil
}

// Stats are the headline numbers shown on the dashboard.
type Stats struct {
	TotalCases       int `json:"total_cases" yaml:"total_cases"`
	StatesAffected   int `json:"states_affected" yaml:"states_affected"`
	CountiesAffected int `json:"counties_affected" yaml:"counties_affected"`
}

// Metric is a named value in display order.
type Metric struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// Metrics returns the stats as ordered key/value pairs.
func (s Stats) Metrics() []Metric {
	return []Metric{
		{Key: "total_cases", Value: s.TotalCases},
		{Key: "states_affected", Value: s.StatesAffected},
		{Key: "counties_affected", Value: s.CountiesAffected},
	}
}

// MissingKey is a distinct join key that found no usable centroid.
type MissingKey struct {
	State  string `json:"state" yaml:"state"`
	County string `json:"county" yaml:"county"`
	Cases  int    `json:"cases" yaml:"cases"`

	// Suggestion is filled by a geocoder when one is configured. It never
	// feeds back into the joined records.
	Suggestion *GeocodingResult `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// StateSummary counts joined records per state.
type StateSummary struct {
	State string `json:"state" yaml:"state"`
	Cases int    `json:"cases" yaml:"cases"`
}

// Result is the output of one pipeline run over a pair of datasets.
type Result struct {
	RunID         string         `json:"run_id" yaml:"run_id"`
	Fingerprint   string         `json:"fingerprint" yaml:"fingerprint"`
	GeneratedAt   time.Time      `json:"generated_at" yaml:"generated_at"`
	Records       []JoinedRecord `json:"records" yaml:"records"`
	Stats         Stats          `json:"stats" yaml:"stats"`
	Missing       []MissingKey   `json:"missing" yaml:"missing"`
	States        []StateSummary `json:"states" yaml:"states"`
	DuplicateKeys []Key          `json:"duplicate_keys,omitempty" yaml:"duplicate_keys,omitempty"`
}

// Located returns the records that have coordinates.
func (r *Result) Located() []JoinedRecord {
	return Located(r.Records)
}

// UnmatchedCases returns how many records have no coordinates.
func (r *Result) UnmatchedCases() int {
	return len(r.Records) - len(r.Located())
}
