// Package routing converts a TripPlan's Directions response into an ordered list of
// UTM-projected, length-indexed line segments, and answers offset->position lookups
// against that list (spec.md §4.2, §4.3's position resolution).
package routing

import (
	"fmt"

	"github.com/OpenTransitTools/fleetsim/business/data/directions"
	"github.com/OpenTransitTools/fleetsim/business/data/geodesy"
)

// Segment is one UTM-zone-contiguous run of the route (spec.md §3 LineSegmentData).
type Segment struct {
	MetersOffset float64 // cumulative meters from route start to this segment's start
	line         *lengthIndexedLine
	forward      *geodesy.Transformer
	inverse      *geodesy.Transformer // same transformer; kept named for both directions
}

// Length returns this segment's own arclength in meters.
func (s *Segment) Length() float64 { return s.line.length() }

// PointAt returns the WGS84 position s meters into this segment.
func (s *Segment) PointAt(s2 float64) geodesy.LatLng {
	return s.inverse.ToLatLng(s.line.pointAt(s2))
}

// BuildSegments walks every step of every leg of d.Routes[0] and returns the ordered
// list of Segments spanning the route, splitting at each UTM zone change
// (spec.md §4.2).
func BuildSegments(d *directions.Directions) ([]*Segment, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	route := d.Routes[0]

	var segments []*Segment
	metersOffset := 0.0

	var zoneRefLon float64
	var transformer *geodesy.Transformer
	var current []geodesy.Point

	finalizeSegment := func() {
		if len(current) < 2 {
			current = nil
			return
		}
		line := newLengthIndexedLine(current)
		segments = append(segments, &Segment{
			MetersOffset: metersOffset,
			line:         line,
			forward:      transformer,
			inverse:      transformer,
		})
		metersOffset += line.length()
		current = nil
	}

	first := true
	for _, leg := range route.Legs {
		for _, step := range leg.Steps {
			for i, coord := range step.Geometry.Coordinates {
				if first {
					zoneRefLon = coord.Lon
					transformer = geodesy.NewTransformer(geodesy.LatLng{Lat: coord.Lat, Lng: coord.Lon})
					first = false
				} else if i == 0 && geodesy.IsZoneChange(zoneRefLon, coord.Lon) {
					finalizeSegment()
					zoneRefLon = coord.Lon
					transformer = geodesy.NewTransformer(geodesy.LatLng{Lat: coord.Lat, Lng: coord.Lon})
				}
				current = append(current, transformer.ToUTM(geodesy.LatLng{Lat: coord.Lat, Lng: coord.Lon}))
			}
		}
	}
	finalizeSegment()

	if len(segments) == 0 {
		return nil, fmt.Errorf("routing: directions produced no usable geometry")
	}
	return segments, nil
}

// TotalDistance sums the lengths of every segment.
func TotalDistance(segments []*Segment) float64 {
	total := 0.0
	for _, s := range segments {
		total += s.Length()
	}
	return total
}

// SegmentAt returns the segment containing arclength m: the largest-offset segment
// whose MetersOffset is <= m (spec.md §4.2 invariant).
func SegmentAt(segments []*Segment, m float64) (*Segment, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("routing: no segments")
	}
	found := segments[0]
	for _, s := range segments {
		if s.MetersOffset <= m {
			found = s
		} else {
			break
		}
	}
	return found, nil
}
