package mapbox

import (
	"context"

	"github.com/couchcryptid/birdflu-tracker/internal/cache"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
	"github.com/couchcryptid/birdflu-tracker/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	lru     *cache.LRU[domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		lru:     cache.NewLRU[domain.GeocodingResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, name, state string) (domain.GeocodingResult, error) {
	key := state + "|" + name
	if result, ok := c.lru.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ForwardGeocode(ctx, name, state)
	if err != nil {
		return result, err
	}
	// Empty answers stay uncached so a county added upstream is found on the next run.
	if result.FormattedAddress != "" {
		c.lru.Put(key, result)
	}
	return result, nil
}
