package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/birdflu-tracker/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, _, _ string) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 33.24, Lon: -81.62, PlaceName: "Glynn County", FormattedAddress: "Glynn County, Georgia, United States"},
	}
	metrics := testMetrics()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ForwardGeocode(context.Background(), "Glynn County", "GA")
	require.NoError(t, err)
	assert.Equal(t, "Glynn County", r1.PlaceName)

	r2, err := cached.ForwardGeocode(context.Background(), "Glynn County", "GA")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_SameCountyDifferentStateMisses(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{PlaceName: "Polk County", FormattedAddress: "Polk County"},
	}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Polk County", "IA")
	_, _ = cached.ForwardGeocode(context.Background(), "Polk County", "FL")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere County", "ZZ")
	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere County", "ZZ")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.ForwardGeocode(context.Background(), "Dane County", "WI")
	require.Error(t, err)
	_, err = cached.ForwardGeocode(context.Background(), "Dane County", "WI")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}
