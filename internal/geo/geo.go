// Package geo resolves scan locations and maps them onto the spatial cell
// grid used by the remote map service.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/TomiHiltunen/geohash-golang"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// ErrInvalidCoordinates is returned when a latitude/longitude pair is outside
// the valid range or not a finite number.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Position is a resolved latitude/longitude pair. Immutable for the duration
// of a run once the location string has been resolved.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate rejects NaN/Inf and out-of-range coordinates. NaN and Inf cause
// undefined behaviour in S2 geometry, so they are caught before any cell math.
func (p Position) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("%w: non-finite value (%v, %v)", ErrInvalidCoordinates, p.Lat, p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinates, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinates, p.Lng)
	}
	return nil
}

func (p Position) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lng)
}

// Distance returns the great-circle distance between two positions in metres.
func Distance(a, b Position) float64 {
	return orbgeo.Distance(orb.Point{a.Lng, a.Lat}, orb.Point{b.Lng, b.Lat})
}

// Geohash returns the 12-character geohash for a position. Persisted fort
// listings carry this as a stable location key for downstream map tooling.
func Geohash(p Position) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, 12)
}
