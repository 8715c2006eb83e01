package geospatial

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// ErrInvalidGeometry is returned for any GeoJSON a plot boundary cannot be built from
var ErrInvalidGeometry = errors.New("invalid geometry")

// ParseGeoJSON accepts a Feature, a FeatureCollection with one feature, or a bare geometry
func ParseGeoJSON(data []byte) (orb.Geometry, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	var g orb.Geometry
	switch probe.Type {
	case "Feature":
		feature, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		g = feature.Geometry
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		if len(fc.Features) != 1 {
			return nil, fmt.Errorf("%w: expected exactly one feature, got %d", ErrInvalidGeometry, len(fc.Features))
		}
		g = fc.Features[0].Geometry
	default:
		geometry, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		g = geometry.Geometry()
	}

	if g == nil {
		return nil, fmt.Errorf("%w: no geometry", ErrInvalidGeometry)
	}
	return g, nil
}

// ValidatePlot checks that a geometry is a polygon usable as a cultivated plot
func ValidatePlot(data []byte) (orb.Geometry, error) {
	g, err := ParseGeoJSON(data)
	if err != nil {
		return nil, err
	}

	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil, fmt.Errorf("%w: plot must be a Polygon or MultiPolygon, got %s", ErrInvalidGeometry, g.GeoJSONType())
	}

	if CalculateArea(g) <= 0 {
		return nil, fmt.Errorf("%w: plot has no area", ErrInvalidGeometry)
	}
	return g, nil
}

// CalculateArea calculates the geodesic area in square meters for a geometry
func CalculateArea(geometry orb.Geometry) float64 {
	return geo.Area(geometry)
}

// CalculateCentroid calculates the centroid of a geometry's bounding box
func CalculateCentroid(geometry orb.Geometry) orb.Point {
	return geometry.Bound().Center()
}

// ConvertToHectares converts square meters to hectares
func ConvertToHectares(sqMeters float64) float64 {
	return sqMeters / 10000
}

// AreaHectares parses a plot and returns its surface in hectares
func AreaHectares(data []byte) (float64, error) {
	g, err := ValidatePlot(data)
	if err != nil {
		return 0, err
	}
	return ConvertToHectares(CalculateArea(g)), nil
}
