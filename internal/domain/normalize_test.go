package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCounty(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Polk County", "Polk"},
		{"  Polk County  ", "Polk"},
		{"Polk", "Polk"},
		{"St. Louis County", "St. Louis"},
		{"Juneau City and Borough", "Juneau City and Borough"},
		{"County", "County"}, // no leading space, not a suffix
		{"Polk county", "Polk county"},
		{"Polk County County", "Polk"},
		{"A Cou Countynty", "A"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCounty(tt.in))
		})
	}
}

func TestNormalizeCounty_Idempotent(t *testing.T) {
	inputs := []string{
		"Polk County", " Polk ", "A Cou Countynty", "Miami-Dade County", "  County  ",
		"Prince George's County", "Lewis and Clark", "Cou County nty County",
	}
	for _, in := range inputs {
		once := NormalizeCounty(in)
		assert.Equal(t, once, NormalizeCounty(once), "input %q", in)
	}
}

func TestNormalizer_State(t *testing.T) {
	n := NewNormalizer(USStateCodes())

	assert.Equal(t, "IA", n.State("Iowa"))
	assert.Equal(t, "NH", n.State("New Hampshire"))
	assert.Equal(t, "Puerto Rico", n.State("Puerto Rico"))
	assert.Equal(t, "District of Columbia", n.State("District of Columbia"))
	assert.Equal(t, "IA", n.State("IA"))
	assert.Equal(t, "iowa", n.State("iowa"), "lookup is case-sensitive")
	assert.Empty(t, n.State(""))
}

func TestNormalizer_StateIdempotent(t *testing.T) {
	n := NewNormalizer(USStateCodes())
	for name := range usStateCodes {
		once := n.State(name)
		assert.Equal(t, once, n.State(once), "state %q", name)
	}
}

func TestNormalizer_Case(t *testing.T) {
	n := NewNormalizer(USStateCodes())
	in := CaseRecord{
		CollectionDate: "2022-03-15",
		BirdSpecies:    "Bald eagle",
		HPAIStrain:     "EA H5N1",
		State:          "Iowa",
		County:         "Polk County",
	}

	got := n.Case(in)

	assert.Equal(t, "IA", got.State)
	assert.Equal(t, "Polk", got.County)
	assert.Equal(t, in.CollectionDate, got.CollectionDate)
	assert.Equal(t, in.BirdSpecies, got.BirdSpecies)
	assert.Equal(t, in.HPAIStrain, got.HPAIStrain)
	assert.Equal(t, "Iowa", in.State, "input must not be modified")
}

func TestNormalizer_CentroidsKeepsCoordinates(t *testing.T) {
	n := NewNormalizer(USStateCodes())
	in := []CentroidRecord{
		{State: "Iowa", County: "Polk County", Coordinates: &Coordinates{Latitude: 41.6, Longitude: -93.6}},
		{State: "IA", County: "Story", Coordinates: nil},
	}

	got := n.Centroids(in)

	assert.Len(t, got, 2)
	assert.Equal(t, Key{State: "IA", County: "Polk"}, got[0].Key())
	assert.InDelta(t, 41.6, got[0].Coordinates.Latitude, 1e-9)
	assert.Equal(t, Key{State: "IA", County: "Story"}, got[1].Key())
	assert.Nil(t, got[1].Coordinates)
}

func TestStateCodeTable_CopiesEntries(t *testing.T) {
	entries := map[string]string{"Iowa": "IA"}
	table := NewStateCodeTable(entries)
	entries["Iowa"] = "XX"
	entries["Ohio"] = "OH"

	code, ok := table.Code("Iowa")
	assert.True(t, ok)
	assert.Equal(t, "IA", code)
	_, ok = table.Code("Ohio")
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}

func TestUSStateCodes_FiftyStates(t *testing.T) {
	assert.Equal(t, 50, USStateCodes().Len())
}

func TestStateCodeTable_Recognized(t *testing.T) {
	table := USStateCodes()
	assert.True(t, table.Recognized("Iowa"))
	assert.True(t, table.Recognized("IA"))
	assert.False(t, table.Recognized("Puerto Rico"))
	assert.False(t, table.Recognized("iowa"))
}
