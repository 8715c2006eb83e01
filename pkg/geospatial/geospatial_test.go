package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squarePlot = `{"type":"Polygon","coordinates":[[[47.50,-18.90],[47.51,-18.90],[47.51,-18.91],[47.50,-18.91],[47.50,-18.90]]]}`

func TestAreaHectares(t *testing.T) {
	ha, err := AreaHectares([]byte(squarePlot))
	require.NoError(t, err)
	// 0.01 degree square near Antananarivo is roughly 117 ha
	assert.Greater(t, ha, 110.0)
	assert.Less(t, ha, 125.0)
}

func TestParseGeoJSON_Feature(t *testing.T) {
	feature := `{"type":"Feature","properties":{},"geometry":` + squarePlot + `}`
	g, err := ParseGeoJSON([]byte(feature))
	require.NoError(t, err)
	assert.Equal(t, "Polygon", g.GeoJSONType())
}

func TestParseGeoJSON_FeatureCollection(t *testing.T) {
	fc := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":` + squarePlot + `}]}`
	_, err := ParseGeoJSON([]byte(fc))
	require.NoError(t, err)

	empty := `{"type":"FeatureCollection","features":[]}`
	_, err = ParseGeoJSON([]byte(empty))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestValidatePlot_RejectsPoint(t *testing.T) {
	_, err := ValidatePlot([]byte(`{"type":"Point","coordinates":[47.5,-18.9]}`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseGeoJSON_Garbage(t *testing.T) {
	_, err := ParseGeoJSON([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestCalculateCentroid(t *testing.T) {
	g, err := ParseGeoJSON([]byte(squarePlot))
	require.NoError(t, err)
	c := CalculateCentroid(g)
	assert.InDelta(t, 47.505, c.Lon(), 1e-9)
	assert.InDelta(t, -18.905, c.Lat(), 1e-9)
}
