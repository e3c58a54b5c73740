package facade

import (
	"github.com/OpenTransitTools/fleetsim/business/data/routing"
	"github.com/OpenTransitTools/fleetsim/business/data/vehicle"
)

// buildRouteContext assembles the non-serializable RouteContext the kinematic model
// needs from a cache entry's Directions and preprocessed Segments (spec.md §4.3, §9
// "Cyclic references" design note). Mirrors the scheduler package's unexported helper
// of the same name; it cannot live in the routing package, which the vehicle package
// imports.
func buildRouteContext(derived *routing.Derived) *vehicle.RouteContext {
	route := derived.Directions.Routes[0]

	legs := make([]vehicle.LegSpeeds, len(route.Legs))
	for i, leg := range route.Legs {
		legs[i] = vehicle.LegSpeeds{
			Speed:    leg.Annotation.Speed,
			Distance: leg.Annotation.Distance,
		}
	}

	waypoints := derived.Directions.Waypoints
	origin := vehicle.LatLng{Lat: waypoints[0].Location.Lat, Lng: waypoints[0].Location.Lon}
	destination := vehicle.LatLng{
		Lat: waypoints[len(waypoints)-1].Location.Lat,
		Lng: waypoints[len(waypoints)-1].Location.Lon,
	}

	return &vehicle.RouteContext{
		Segments:      derived.Segments,
		TotalDistance: routing.TotalDistance(derived.Segments),
		Origin:        origin,
		Destination:   destination,
		Legs:          legs,
	}
}
