package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/birdflu-tracker/internal/config"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

func testdataConfig() *config.Config {
	return &config.Config{
		DataSource:    config.SourceFile,
		DataDir:       filepath.Join("..", "..", "internal", "dataset", "testdata"),
		CasesFile:     "birdflu.csv",
		CentroidsFile: "county_centroids.csv",
	}
}

func manyMissing(n int) *domain.Result {
	r := &domain.Result{}
	for i := 0; i < n; i++ {
		county := fmt.Sprintf("County %02d", i)
		r.Records = append(r.Records, domain.JoinedRecord{CaseRecord: domain.CaseRecord{State: "ZZ", County: county}})
		r.Missing = append(r.Missing, domain.MissingKey{State: "ZZ", County: county, Cases: 1})
	}
	r.Stats = domain.ComputeStats(r.Records)
	return r
}

func TestNewReport_SamplesTenMissing(t *testing.T) {
	rep := newReport(manyMissing(15))

	assert.Equal(t, 15, rep.TotalMissing)
	assert.Len(t, rep.MissingSample, missingSampleSize)
	assert.Equal(t, "County 00", rep.MissingSample[0].County)
	assert.Equal(t, 15, rep.UnmatchedCases)
	assert.Zero(t, rep.Located)
}

func TestWriteReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatText, manyMissing(3)))
	out := buf.String()

	assert.Contains(t, out, "total_cases:")
	assert.Contains(t, out, "Total missing counties: 3")
	assert.Contains(t, out, "Sample of missing counties:")
	assert.Contains(t, out, "County 02")
}

func TestWriteReport_TextAllMatched(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatText, &domain.Result{}))
	assert.Contains(t, buf.String(), "All cases matched")
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatJSON, manyMissing(12)))

	var got report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 12, got.TotalMissing)
	assert.Len(t, got.MissingSample, 10)
}

func TestWriteReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatYAML, manyMissing(2)))

	var got report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got.TotalMissing)
	assert.Equal(t, 2, got.Stats.TotalCases)
}

func TestRun_WritesReportAndMap(t *testing.T) {
	out := filepath.Join(t.TempDir(), "maps", "birdflu_map.html")
	var stdout bytes.Buffer

	err := run(context.Background(), testdataConfig(), options{out: out, format: formatJSON}, &stdout)
	require.NoError(t, err)

	var got report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, domain.Stats{TotalCases: 8, StatesAffected: 6, CountiesAffected: 6}, got.Stats)
	assert.Equal(t, 2, got.TotalMissing)
	assert.Equal(t, []domain.Key{{State: "IA", County: "Polk"}}, got.DuplicateKeys)

	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(page), "leaflet.markercluster")
	assert.NotContains(t, string(page), "<details>")
}

func TestRun_DashboardVariant(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dashboard.html")

	err := run(context.Background(), testdataConfig(), options{out: out, format: formatText, dashboard: true}, &bytes.Buffer{})
	require.NoError(t, err)

	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Missing coordinates for 2 cases")
}

func TestRun_MissingFiles(t *testing.T) {
	cfg := testdataConfig()
	cfg.DataDir = t.TempDir()

	err := run(context.Background(), cfg, options{format: formatText}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Data files not found. Please check the data directory.")
}

func TestRun_UnknownFormat(t *testing.T) {
	err := run(context.Background(), testdataConfig(), options{format: "xml"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
