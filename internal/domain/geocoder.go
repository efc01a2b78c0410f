package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64 `json:"lat" yaml:"lat"`
	Lon              float64 `json:"lon" yaml:"lon"`
	FormattedAddress string  `json:"formatted_address,omitempty" yaml:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty" yaml:"place_name,omitempty"`
	Confidence       float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"` // 0.0–1.0 provider confidence score
}

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	// ForwardGeocode converts a place name and state to coordinates.
	ForwardGeocode(ctx context.Context, name, state string) (GeocodingResult, error)
}
