package directions

import "context"

// FakeProvider is an in-memory Provider returning a single straight-line route
// between each consecutive pair of waypoints at a fixed posted speed. Used by
// tests and local/offline runs of app/fleet-sim (spec.md §6 external adapters are
// out-of-core collaborators; this is the stand-in).
type FakeProvider struct {
	SpeedMetersPerSecond float64
	MetersPerLeg         float64
}

// Route implements Provider.
func (f FakeProvider) Route(ctx context.Context, waypoints []LonLat) (*Directions, error) {
	if len(waypoints) == 0 {
		return nil, errNoWaypoints
	}
	speed := f.SpeedMetersPerSecond
	if speed <= 0 {
		speed = 10
	}
	legDistance := f.MetersPerLeg
	if legDistance <= 0 {
		legDistance = 1000
	}

	wps := make([]Waypoint, len(waypoints))
	for i, w := range waypoints {
		wps[i] = Waypoint{Location: w}
	}

	legs := make([]Leg, 0, len(waypoints)-1)
	for i := 0; i < len(waypoints)-1; i++ {
		legs = append(legs, Leg{
			Distance:   legDistance,
			Annotation: Annotation{Speed: []float64{speed}, Distance: []float64{legDistance}},
			Steps: []Step{{
				Geometry: Geometry{Coordinates: []LonLat{waypoints[i], waypoints[i+1]}},
			}},
		})
	}

	return &Directions{
		Waypoints: wps,
		Routes:    []Route{{Distance: legDistance * float64(len(legs)), Legs: legs}},
	}, nil
}

// FakeGeocoder resolves any Address missing coordinates to a fixed point. Used by
// tests and local/offline runs that have no real geocoding service configured.
type FakeGeocoder struct {
	Lat float64
	Lng float64
}

// Geocode implements Geocoder.
func (f FakeGeocoder) Geocode(ctx context.Context, addr Address) (Address, error) {
	if addr.HasCoordinates() {
		return addr, nil
	}
	resolved := addr
	resolved.Source = "geocoded"
	resolved.Lat = f.Lat
	resolved.Lng = f.Lng
	return resolved, nil
}
