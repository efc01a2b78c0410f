package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

// phase tracks pass/fail for a validation phase. Notes are informational and
// never fail the phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// validateColumns reports a load error caused by a missing column. Any other
// error leaves the phase passing so the caller treats it as fatal.
func validateColumns(loadErr error) *phase {
	p := &phase{name: "Phase 1: Required columns"}
	if errors.Is(loadErr, dataset.ErrMissingColumn) {
		p.errorf("%v", loadErr)
	}
	return p
}

func validateUniqueKeys(ds *dataset.Datasets) *phase {
	p := &phase{name: "Phase 2: Unique centroid keys"}
	n := domain.NewNormalizer(domain.USStateCodes())
	joined := domain.Join(nil, n.Centroids(ds.Centroids))
	for _, k := range joined.DuplicateKeys {
		p.errorf("duplicate centroid key %s, %s (first row wins)", k.State, k.County)
	}
	return p
}

func validateCoordinates(ds *dataset.Datasets) *phase {
	p := &phase{name: "Phase 3: Centroid coordinates (WGS-84)"}
	for i, c := range ds.Centroids {
		// Header is line 1.
		line := i + 2
		switch {
		case c.Coordinates == nil:
			p.errorf("line %d: %s, %s has no usable latitude/longitude", line, c.State, c.County)
		case !c.Coordinates.Valid():
			p.errorf("line %d: %s, %s at (%g, %g) is outside WGS-84 bounds",
				line, c.State, c.County, c.Coordinates.Latitude, c.Coordinates.Longitude)
		}
	}
	return p
}

func validateStateNames(ds *dataset.Datasets) *phase {
	p := &phase{name: "Phase 4: State names"}
	table := domain.USStateCodes()

	type origin struct{ file, state string }
	counts := make(map[origin]int)
	for _, c := range ds.Cases {
		if !table.Recognized(c.State) {
			counts[origin{"cases", c.State}]++
		}
	}
	for _, c := range ds.Centroids {
		if !table.Recognized(c.State) {
			counts[origin{"centroids", c.State}]++
		}
	}

	keys := make([]origin, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].file != keys[j].file {
			return keys[i].file < keys[j].file
		}
		return keys[i].state < keys[j].state
	})
	for _, k := range keys {
		p.notef("%s: unrecognized state %q in %d rows, kept as-is", k.file, k.state, counts[k])
	}
	return p
}

func report(w io.Writer, phases []*phase, ds *dataset.Datasets) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		} else if len(p.notes) > 0 {
			status = fmt.Sprintf("\033[33mPASS (%d notes)\033[0m", len(p.notes))
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	if ds != nil {
		n := domain.NewNormalizer(domain.USStateCodes())
		joined := domain.Join(n.Cases(ds.Cases), n.Centroids(ds.Centroids))
		located := len(domain.Located(joined.Records))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Records: %d cases, %d centroids, %d located, %d without coordinates\n",
			len(ds.Cases), len(ds.Centroids), located, len(joined.Records)-located)
	}

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.notes) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Fprintf(w, "  note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}
