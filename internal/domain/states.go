package domain

// usStateCodes maps full state names to USPS codes. DC and the territories are
// not listed and pass through unchanged.
var usStateCodes = map[string]string{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR",
	"California": "CA", "Colorado": "CO", "Connecticut": "CT", "Delaware": "DE",
	"Florida": "FL", "Georgia": "GA", "Hawaii": "HI", "Idaho": "ID",
	"Illinois": "IL", "Indiana": "IN", "Iowa": "IA", "Kansas": "KS",
	"Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD",
	"Massachusetts": "MA", "Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS",
	"Missouri": "MO", "Montana": "MT", "Nebraska": "NE", "Nevada": "NV",
	"New Hampshire": "NH", "New Jersey": "NJ", "New Mexico": "NM", "New York": "NY",
	"North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH", "Oklahoma": "OK",
	"Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC",
	"South Dakota": "SD", "Tennessee": "TN", "Texas": "TX", "Utah": "UT",
	"Vermont": "VT", "Virginia": "VA", "Washington": "WA", "West Virginia": "WV",
	"Wisconsin": "WI", "Wyoming": "WY",
}

// StateCodeTable maps full state names to short codes. It is immutable once
// built and safe for concurrent use.
type StateCodeTable struct {
	codes map[string]string
	known map[string]bool
}

// NewStateCodeTable copies entries into a new table.
func NewStateCodeTable(entries map[string]string) *StateCodeTable {
	codes := make(map[string]string, len(entries))
	known := make(map[string]bool, len(entries))
	for name, code := range entries {
		codes[name] = code
		known[code] = true
	}
	return &StateCodeTable{codes: codes, known: known}
}

// USStateCodes returns a table of the 50 US states.
func USStateCodes() *StateCodeTable {
	return NewStateCodeTable(usStateCodes)
}

// Code looks up a full state name. Matching is exact.
func (t *StateCodeTable) Code(name string) (string, bool) {
	code, ok := t.codes[name]
	return code, ok
}

// Standardize returns the code for name, or name itself when it is not in the table.
func (t *StateCodeTable) Standardize(name string) string {
	if code, ok := t.codes[name]; ok {
		return code
	}
	return name
}

// Recognized reports whether name is a full state name or a code in the table.
func (t *StateCodeTable) Recognized(name string) bool {
	_, ok := t.codes[name]
	return ok || t.known[name]
}

// Len returns the number of entries.
func (t *StateCodeTable) Len() int {
	return len(t.codes)
}
