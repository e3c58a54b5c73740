package vehicle

import (
	"github.com/OpenTransitTools/fleetsim/business/data/geodesy"
	"github.com/OpenTransitTools/fleetsim/business/data/routing"
)

// SetMetersOffset positions the vehicle at arclength m from the route's start,
// clamping to the endpoints and recomputing the desired speed at the new offset
// (spec.md §4.3).
func (v *Vehicle) SetMetersOffset(rc *RouteContext, m float64) error {
	switch {
	case rc.TotalDistance <= 0:
		v.setPosition(rc.Origin)
		v.PositionValid = true
		v.PositionLimited = true
		v.MetersOffset = 0
	case m == 0:
		v.setPosition(rc.Origin)
		v.PositionValid = true
		v.PositionLimited = false
		v.MetersOffset = 0
	case m == rc.TotalDistance:
		v.setPosition(rc.Destination)
		v.PositionValid = true
		v.PositionLimited = false
		v.MetersOffset = rc.TotalDistance
	case m < 0:
		v.setPosition(rc.Origin)
		v.PositionValid = false
		v.PositionLimited = true
		v.MetersOffset = 0
	case m > rc.TotalDistance:
		v.setPosition(rc.Destination)
		v.PositionValid = false
		v.PositionLimited = true
		v.MetersOffset = rc.TotalDistance
	default:
		segment, err := routing.SegmentAt(rc.Segments, m)
		if err != nil {
			return err
		}
		local := m - segment.MetersOffset
		resolved := segment.PointAt(local)
		v.setPosition(LatLng{Lat: resolved.Lat, Lng: resolved.Lng})
		v.PositionValid = true
		v.PositionLimited = false
		v.MetersOffset = m
	}

	v.MetersPerSecondDesired = desiredSpeedAt(rc.Legs, v.MetersOffset)
	return nil
}

// setPosition updates DegLatitude/DegLongitude, and -- unless this is the first
// resolved position, or the new position is identical to the last one -- rotates
// DegBearingDesired to the great-circle initial bearing from the previous position
// to the new one (spec.md §4.3, edge case "identical consecutive resolved positions").
func (v *Vehicle) setPosition(p LatLng) {
	if v.havePosition && (p.Lat != v.DegLatitude || p.Lng != v.DegLongitude) {
		v.DegBearingDesired = geodesy.InitialBearing(
			geodesy.LatLng{Lat: v.DegLatitude, Lng: v.DegLongitude},
			geodesy.LatLng{Lat: p.Lat, Lng: p.Lng},
		)
	}
	v.DegLatitude = p.Lat
	v.DegLongitude = p.Lng
	v.havePosition = true
}

// desiredSpeedAt walks the leg annotation arrays, accumulating distance, and returns
// the speed of the first slice whose cumulative end is >= m. Returns 0 if m is past
// every annotated slice.
func desiredSpeedAt(legs []LegSpeeds, m float64) float64 {
	cumulative := 0.0
	for _, leg := range legs {
		for i, d := range leg.Distance {
			cumulative += d
			if cumulative >= m {
				return leg.Speed[i]
			}
		}
	}
	return 0
}
