package present

import (
	"sort"
	"strconv"

	"github.com/mmcloughlin/geohash"

	"github.com/couchcryptid/birdflu-tracker/internal/domain"
)

// Map constants shared by the cluster endpoint and the Leaflet pages.
const (
	CenterLat               = 37.0902
	CenterLon               = -95.7129
	InitialZoom             = 4
	MaxClusterRadius        = 30
	DisableClusteringAtZoom = 8
	MaxZoom                 = 18
)

// Cluster is a group of nearby markers.
type Cluster struct {
	Geohash   string  `json:"geohash"`
	Count     int     `json:"count"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Case is set when the cluster holds a single record.
	Case *domain.CaseRecord `json:"case,omitempty"`
}

// PrecisionForZoom maps a Leaflet zoom level (0..18) onto a geohash length (1..12).
func PrecisionForZoom(zoom int) uint {
	zoom = max(0, min(zoom, MaxZoom))
	return uint(1 + (zoom*11+MaxZoom/2)/MaxZoom)
}

// Clusters groups the located records by geohash prefix for the given zoom.
// At DisableClusteringAtZoom and above every record is its own cluster.
// Clusters are ordered by geohash, then by input order.
func Clusters(records []domain.JoinedRecord, zoom int) []Cluster {
	precision := PrecisionForZoom(zoom)
	unclustered := zoom >= DisableClusteringAtZoom

	type acc struct {
		hash     string
		sumLat   float64
		sumLon   float64
		count    int
		first    domain.CaseRecord
		position int
	}
	groups := make(map[string]*acc)
	var order []*acc

	for _, r := range records {
		if !r.Located() {
			continue
		}
		c := *r.Coordinates
		hash := geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)

		key := hash
		if unclustered {
			key = hash + "#" + strconv.Itoa(len(order))
		}
		a, ok := groups[key]
		if !ok {
			a = &acc{hash: hash, first: r.CaseRecord, position: len(order)}
			groups[key] = a
			order = append(order, a)
		}
		a.sumLat += c.Latitude
		a.sumLon += c.Longitude
		a.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].hash != order[j].hash {
			return order[i].hash < order[j].hash
		}
		return order[i].position < order[j].position
	})

	out := make([]Cluster, len(order))
	for i, a := range order {
		out[i] = Cluster{
			Geohash:   a.hash,
			Count:     a.count,
			Latitude:  a.sumLat / float64(a.count),
			Longitude: a.sumLon / float64(a.count),
		}
		if a.count == 1 {
			first := a.first
			out[i].Case = &first
		}
	}
	return out
}
