package rastertile

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestAffinePixelToGeoAndInvert(t *testing.T) {
	affine := Affine{A: 500000, B: 30, C: 0, D: 4000000, E: 0, F: -30}

	geoX, geoY := affine.PixelToGeo(10, 20)
	assert.Equal(t, 500300.0, geoX)
	assert.Equal(t, 3999400.0, geoY)

	px, py, err := affine.GeoToPixel(geoX, geoY)
	assert.NoError(t, err)
	assert.True(t, math.Abs(px-10) < 1e-9)
	assert.True(t, math.Abs(py-20) < 1e-9)
}

func TestAffineInvertSingular(t *testing.T) {
	affine := Affine{A: 0, B: 0, C: 0, D: 0, E: 0, F: 0}
	_, err := affine.Invert()
	assert.Error(t, err)
	assert.True(t, IsKind(err, KindProjection))
}

func TestGeoKeyCRSNamePrefersCitation(t *testing.T) {
	parsed := &ParsedGeoKeys{
		ASCIIParams: map[GeoKey]string{GeoKeyGeogCitation: "ETRS89"},
	}
	assert.Equal(t, "ETRS89", geoKeyCRSName(parsed, GeoKeyGeogCitation, 4258))
}

func TestGeoKeyCRSNameFallsBackToEPSG(t *testing.T) {
	parsed := &ParsedGeoKeys{ASCIIParams: map[GeoKey]string{}}
	assert.Equal(t, "EPSG:4326", geoKeyCRSName(parsed, GeoKeyGeogCitation, 4326))
}
