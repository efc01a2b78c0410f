package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	missingSampleSize = 10
)

func validFormat(f string) bool {
	return f == formatText || f == formatJSON || f == formatYAML
}

// report is the structured form of the console output.
type report struct {
	Stats          domain.Stats        `json:"stats" yaml:"stats"`
	Located        int                 `json:"located" yaml:"located"`
	UnmatchedCases int                 `json:"unmatched_cases" yaml:"unmatched_cases"`
	TotalMissing   int                 `json:"total_missing_counties" yaml:"total_missing_counties"`
	MissingSample  []domain.MissingKey `json:"missing_sample" yaml:"missing_sample"`
	DuplicateKeys  []domain.Key        `json:"duplicate_keys,omitempty" yaml:"duplicate_keys,omitempty"`
}

func newReport(r *domain.Result) report {
	sample := r.Missing
	if len(sample) > missingSampleSize {
		sample = sample[:missingSampleSize]
	}
	if sample == nil {
		sample = []domain.MissingKey{}
	}
	unmatched := r.UnmatchedCases()
	return report{
		Stats:          r.Stats,
		Located:        len(r.Records) - unmatched,
		UnmatchedCases: unmatched,
		TotalMissing:   len(r.Missing),
		MissingSample:  sample,
		DuplicateKeys:  r.DuplicateKeys,
	}
}

func writeReport(w io.Writer, format string, r *domain.Result) error {
	rep := newReport(r)
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case formatYAML:
		out, err := yaml.Marshal(rep)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return writeText(w, rep)
	}
}

func writeText(w io.Writer, rep report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, m := range rep.Stats.Metrics() {
		fmt.Fprintf(tw, "%s:\t%d\n", m.Key, m.Value)
	}
	fmt.Fprintf(tw, "located:\t%d\n", rep.Located)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.DuplicateKeys) > 0 {
		fmt.Fprintf(w, "\nDuplicate centroid keys (first row used): %d\n", len(rep.DuplicateKeys))
		for _, k := range rep.DuplicateKeys {
			fmt.Fprintf(w, "  %s, %s\n", k.State, k.County)
		}
	}

	if rep.TotalMissing == 0 {
		_, err := fmt.Fprintln(w, "\nAll cases matched a county centroid.")
		return err
	}

	fmt.Fprintln(w, "\nMissing centroids after cleaning:")
	fmt.Fprintf(w, "Total missing counties: %d\n", rep.TotalMissing)
	fmt.Fprintln(w, "\nSample of missing counties:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "State\tCounty\tCases")
	for _, m := range rep.MissingSample {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", m.State, m.County, m.Cases)
	}
	return tw.Flush()
}
