package utils

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Coordinate is a geographic point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// ValidateCoordinate checks latitude/longitude ranges.
func ValidateCoordinate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lng)
	}
	return nil
}

// DistanceMeters returns the great-circle distance between two coordinates.
func DistanceMeters(a, b Coordinate) float64 {
	return geo.Distance(a.point(), b.point())
}

// WithinRadius reports whether p lies within radiusMeters of center.
func WithinRadius(center, p Coordinate, radiusMeters float64) bool {
	return DistanceMeters(center, p) <= radiusMeters
}

// Geofence is a polygonal boundary, e.g. a station perimeter.
type Geofence struct {
	Coordinates []Coordinate `json:"coordinates"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Validate checks the fence forms a usable polygon. An empty fence is fine;
// the field is optional.
func (g Geofence) Validate() error {
	if len(g.Coordinates) == 0 {
		return nil
	}
	if len(g.Coordinates) < 3 {
		return errors.New("geofence must have at least 3 coordinates to form a polygon")
	}
	for i, c := range g.Coordinates {
		if err := ValidateCoordinate(c); err != nil {
			return fmt.Errorf("invalid coordinate at index %d: %w", i, err)
		}
	}
	return nil
}

// Contains reports whether the point lies inside the fence. An open polygon
// is closed implicitly.
func (g Geofence) Contains(c Coordinate) bool {
	if len(g.Coordinates) < 3 {
		return false
	}
	ring := make(orb.Ring, 0, len(g.Coordinates)+1)
	for _, p := range g.Coordinates {
		ring = append(ring, p.point())
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return planar.RingContains(ring, c.point())
}
