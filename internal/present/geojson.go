// Package present turns pipeline results into map-ready output: GeoJSON,
// server-side marker clusters, and the standalone Leaflet pages.
package present

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

// Points builds a FeatureCollection with one Point per located record.
// Records without coordinates are skipped.
func Points(records []domain.JoinedRecord) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, r := range records {
		if !r.Located() {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: pointOf(*r.Coordinates),
			Properties: map[string]any{
				"collection_date": r.CollectionDate,
				"bird_species":    r.BirdSpecies,
				"hpai_strain":     r.HPAIStrain,
				"state":           r.State,
				"county":          r.County,
			},
		})
	}
	return fc
}

// MarshalPoints encodes the located records as GeoJSON.
func MarshalPoints(records []domain.JoinedRecord) ([]byte, error) {
	data, err := json.Marshal(Points(records))
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

// pointOf returns a WGS-84 point. GeoJSON orders coordinates as lon, lat.
func pointOf(c domain.Coordinates) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Longitude, c.Latitude}).SetSRID(4326)
}
