// Package geo holds the planar geometry used for zone checks.
// Coordinates are WGS84 degrees in [longitude, latitude] order, the same
// order GeoJSON and the map clients use.
package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPolygon = errors.New("invalid polygon")

// Point is a longitude/latitude pair.
type Point struct {
	Lng float64 `json:"lng" yaml:"lng"`
	Lat float64 `json:"lat" yaml:"lat"`
}

func (p Point) String() string {
	return fmt.Sprintf("[%.6f, %.6f]", p.Lng, p.Lat)
}

// Valid reports whether the point is finite and inside the WGS84 range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lng) || math.IsNaN(p.Lat) || math.IsInf(p.Lng, 0) || math.IsInf(p.Lat, 0) {
		return false
	}
	return p.Lng >= -180 && p.Lng <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// BoundingBox is an axis-aligned envelope.
type BoundingBox struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (b BoundingBox) Contains(p Point) bool {
	return p.Lng >= b.Min.Lng && p.Lng <= b.Max.Lng &&
		p.Lat >= b.Min.Lat && p.Lat <= b.Max.Lat
}

// Polygon is a simple polygon stored as an open ring: the closing vertex is
// implicit.
type Polygon struct {
	ring []Point
	bbox BoundingBox
}

// NewPolygon validates the vertices and builds a polygon. A trailing vertex
// equal to the first one is dropped. At least three distinct vertices are
// required.
func NewPolygon(vertices []Point) (Polygon, error) {
	ring := make([]Point, 0, len(vertices))
	for i, v := range vertices {
		if !v.Valid() {
			return Polygon{}, fmt.Errorf("%w: vertex %d %s out of range", ErrInvalidPolygon, i, v)
		}
		// collapse consecutive duplicates
		if n := len(ring); n > 0 && ring[n-1] == v {
			continue
		}
		ring = append(ring, v)
	}
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}
	if len(ring) < 3 {
		return Polygon{}, fmt.Errorf("%w: need at least 3 distinct vertices, got %d", ErrInvalidPolygon, len(ring))
	}

	bbox := BoundingBox{Min: ring[0], Max: ring[0]}
	for _, v := range ring[1:] {
		bbox.Min.Lng = math.Min(bbox.Min.Lng, v.Lng)
		bbox.Min.Lat = math.Min(bbox.Min.Lat, v.Lat)
		bbox.Max.Lng = math.Max(bbox.Max.Lng, v.Lng)
		bbox.Max.Lat = math.Max(bbox.Max.Lat, v.Lat)
	}
	return Polygon{ring: ring, bbox: bbox}, nil
}

// Rectangle builds the axis-aligned polygon spanned by two corners.
func Rectangle(a, b Point) (Polygon, error) {
	minLng, maxLng := math.Min(a.Lng, b.Lng), math.Max(a.Lng, b.Lng)
	minLat, maxLat := math.Min(a.Lat, b.Lat), math.Max(a.Lat, b.Lat)
	return NewPolygon([]Point{
		{Lng: minLng, Lat: minLat},
		{Lng: maxLng, Lat: minLat},
		{Lng: maxLng, Lat: maxLat},
		{Lng: minLng, Lat: maxLat},
	})
}

// Vertices returns a copy of the open ring.
func (pg Polygon) Vertices() []Point {
	out := make([]Point, len(pg.ring))
	copy(out, pg.ring)
	return out
}

// Closed returns the ring with the first vertex repeated at the end, as
// GeoJSON expects.
func (pg Polygon) Closed() []Point {
	if len(pg.ring) == 0 {
		return nil
	}
	return append(pg.Vertices(), pg.ring[0])
}

func (pg Polygon) Bounds() BoundingBox { return pg.bbox }

// Contains reports whether p lies inside the polygon or on its boundary.
//
// Uses even-odd ray casting with a horizontal ray towards +lng. Boundary
// points are checked first so that edge and vertex hits always count as
// inside regardless of how the crossing test would round them.
func (pg Polygon) Contains(p Point) bool {
	if len(pg.ring) < 3 || !pg.bbox.Contains(p) {
		return false
	}

	inside := false
	n := len(pg.ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg.ring[j], pg.ring[i]
		if onSegment(a, b, p) {
			return true
		}
		// half-open rule on latitude so a vertex shared by two edges is
		// counted once
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := a.Lng + (p.Lat-a.Lat)*(b.Lng-a.Lng)/(b.Lat-a.Lat)
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

const epsilon = 1e-12

func onSegment(a, b, p Point) bool {
	cross := (b.Lng-a.Lng)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lng-a.Lng)
	if math.Abs(cross) > epsilon {
		return false
	}
	return p.Lng >= math.Min(a.Lng, b.Lng)-epsilon && p.Lng <= math.Max(a.Lng, b.Lng)+epsilon &&
		p.Lat >= math.Min(a.Lat, b.Lat)-epsilon && p.Lat <= math.Max(a.Lat, b.Lat)+epsilon
}
