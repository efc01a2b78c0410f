package dataset_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/birdflu-tracker/internal/adapter/storage"
	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

// --- mock store ---

type mapStore map[string]string

func (m mapStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, dataset.ErrDatasetNotFound)
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

type failingStore struct{ err error }

func (f failingStore) Open(context.Context, string) (io.ReadCloser, error) { return nil, f.err }

// --- tests ---

func TestLoader_LoadTestdata(t *testing.T) {
	loader := dataset.NewLoader(storage.NewFileStore("testdata"), "birdflu.csv", "county_centroids.csv")

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Cases, 8)
	assert.Equal(t, domain.CaseRecord{
		CollectionDate: "2022-03-15",
		BirdSpecies:    "Bald eagle",
		HPAIStrain:     "EA H5N1",
		State:          "Iowa",
		County:         "Polk County",
	}, ds.Cases[0])

	require.Len(t, ds.Centroids, 7)
	assert.Equal(t, "IA", ds.Centroids[0].State)
	assert.Equal(t, "Polk County", ds.Centroids[0].County)
	require.NotNil(t, ds.Centroids[0].Coordinates)
	assert.InDelta(t, 41.6855, ds.Centroids[0].Coordinates.Latitude, 1e-9)
	assert.Nil(t, ds.Centroids[5].Coordinates, "blank coordinates stay absent")

	assert.Len(t, ds.Fingerprint, 64)
}

func TestLoader_FingerprintStable(t *testing.T) {
	store := mapStore{
		"cases.csv":     "Collection Date,Bird Species,HPAI Strain,State,County\n2022-01-01,Mallard,EA H5N1,Iowa,Polk County\n",
		"centroids.csv": "State,County,Latitude,Longitude\nIA,Polk,41.6,-93.6\n",
	}
	loader := dataset.NewLoader(store, "cases.csv", "centroids.csv")

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	store["centroids.csv"] += "IA,Story,42.0,-93.4\n"
	third, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
}

func TestFingerprint_SeparatesFiles(t *testing.T) {
	assert.NotEqual(t, dataset.Fingerprint([]byte("ab"), []byte("c")), dataset.Fingerprint([]byte("a"), []byte("bc")))
}

func TestLoader_MissingCasesFile(t *testing.T) {
	loader := dataset.NewLoader(storage.NewFileStore("testdata"), "nope.csv", "county_centroids.csv")

	_, err := loader.Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrDatasetNotFound)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestLoader_MissingCentroidsFile(t *testing.T) {
	loader := dataset.NewLoader(storage.NewFileStore("testdata"), "birdflu.csv", "nope.csv")

	_, err := loader.Load(context.Background())

	assert.ErrorIs(t, err, dataset.ErrDatasetNotFound)
}

func TestLoader_StoreError(t *testing.T) {
	boom := errors.New("boom")
	loader := dataset.NewLoader(failingStore{err: boom}, "a.csv", "b.csv")

	_, err := loader.Load(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, dataset.ErrDatasetNotFound)
}

func TestLoader_MissingColumn(t *testing.T) {
	loader := dataset.NewLoader(storage.NewFileStore("testdata"), "birdflu.csv", "missing_column.csv")

	_, err := loader.Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)
	assert.Contains(t, err.Error(), "Longitude")
	assert.Contains(t, err.Error(), "missing_column.csv")
}

func TestDecodeCentroids_StripsBOM(t *testing.T) {
	loader := dataset.NewLoader(storage.NewFileStore("testdata"), "birdflu.csv", "bom_centroids.csv")

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Centroids, 1)
	assert.Equal(t, "IA", ds.Centroids[0].State)
}

func TestDecodeCases_EmptyFile(t *testing.T) {
	_, err := dataset.DecodeCases(strings.NewReader(""))

	assert.ErrorIs(t, err, dataset.ErrMissingColumn)
}

func TestDecodeCases_HeaderOnly(t *testing.T) {
	cases, err := dataset.DecodeCases(strings.NewReader("Collection Date,Bird Species,HPAI Strain,State,County\n"))

	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestDecodeCases_ColumnOrderIndependent(t *testing.T) {
	in := "County,State,HPAI Strain,Bird Species,Collection Date\nDane County,Wisconsin,EA/AM H5N1,Canada goose,2022-05-01\n"

	cases, err := dataset.DecodeCases(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "Wisconsin", cases[0].State)
	assert.Equal(t, "Dane County", cases[0].County)
	assert.Equal(t, "Canada goose", cases[0].BirdSpecies)
}

func TestDecodeCentroids_NonFiniteCoordinatesMissing(t *testing.T) {
	in := "State,County,Latitude,Longitude\nIA,Polk,NaN,-93.6\nIA,Story,42.0,inf\nWI,Dane,43.07,-89.42\n"

	centroids, err := dataset.DecodeCentroids(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, centroids, 3)
	assert.Nil(t, centroids[0].Coordinates)
	assert.Nil(t, centroids[1].Coordinates)
	require.NotNil(t, centroids[2].Coordinates)
	assert.InDelta(t, 43.07, centroids[2].Coordinates.Latitude, 1e-9)
}

func TestDecodeCentroids_ShortRowPadded(t *testing.T) {
	in := "State,County,Latitude,Longitude\nIA,Polk,41.6,-93.6\nIA,Story\n"

	centroids, err := dataset.DecodeCentroids(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, centroids, 2)
	require.NotNil(t, centroids[0].Coordinates)
	assert.Equal(t, "Story", centroids[1].County)
	assert.Nil(t, centroids[1].Coordinates)
}

func TestDecodeCases_ShortRowPadded(t *testing.T) {
	in := "Collection Date,Bird Species,HPAI Strain,State,County\n2022-03-15,Bald eagle,EA H5N1,Iowa\n"

	cases, err := dataset.DecodeCases(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, cases, 1)
	assert.Equal(t, "Iowa", cases[0].State)
	assert.Empty(t, cases[0].County)
}

func TestDecodeCentroids_LongRowRejected(t *testing.T) {
	in := "State,County,Latitude,Longitude\nIA,Polk,41.6,-93.6,extra\n"

	_, err := dataset.DecodeCentroids(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestLoader_NonFiniteCentroidLeavesCaseUnmatched(t *testing.T) {
	store := mapStore{
		"cases.csv":     "Collection Date,Bird Species,HPAI Strain,State,County\n2022-03-15,Bald eagle,EA H5N1,Iowa,Polk County\n",
		"centroids.csv": "State,County,Latitude,Longitude\nIA,Polk County,NaN,-93.5735\n",
	}
	ds, err := dataset.NewLoader(store, "cases.csv", "centroids.csv").Load(context.Background())
	require.NoError(t, err)

	result := domain.Analyze(domain.NewNormalizer(domain.USStateCodes()), ds.Cases, ds.Centroids)
	assert.Empty(t, result.Located())
	require.Len(t, result.Missing, 1)
	assert.Equal(t, "Polk", result.Missing[0].County)
}
