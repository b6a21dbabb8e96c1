package style

import (
	"math"
	"strings"

	"geostyle/internal/extent"
)

// Projection moves primitive geometry from the data CRS to the display CRS.
type Projection interface {
	Adjust(crs string, p *extent.Vector3)
	// Crs names the display CRS for data in crs.
	Crs(crs string) string
}

// IdentityProjection leaves coordinates untouched.
type IdentityProjection struct{}

func (IdentityProjection) Adjust(string, *extent.Vector3) {}

func (IdentityProjection) Crs(crs string) string { return crs }

const (
	wgs84A  = 6378137.0
	wgs84F  = 1 / 298.257223563
	wgs84E2 = wgs84F * (2 - wgs84F)

	CrsWGS84 = "EPSG:4326"
	CrsECEF  = "EPSG:4978"
)

// ECEFProjection converts lon/lat degrees and altitude in metres to
// earth-centred earth-fixed metres on the WGS84 ellipsoid. Data in other
// CRSs is left alone.
type ECEFProjection struct{}

func isGeographic(crs string) bool {
	switch strings.ToUpper(crs) {
	case "", CrsWGS84, "WGS84", "CRS:84":
		return true
	}
	return false
}

func (ECEFProjection) Adjust(crs string, p *extent.Vector3) {
	if !isGeographic(crs) {
		return
	}
	lon := p.X * math.Pi / 180
	lat := p.Y * math.Pi / 180
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
	p.X = (n + p.Z) * cosLat * cosLon
	p.Y = (n + p.Z) * cosLat * sinLon
	p.Z = (n*(1-wgs84E2) + p.Z) * sinLat
}

func (ECEFProjection) Crs(crs string) string {
	if isGeographic(crs) {
		return CrsECEF
	}
	return crs
}
