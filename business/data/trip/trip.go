// Package trip holds the TripPlan value object submitted by callers and the
// CrissCrossPlan expansion helper (spec.md §3).
package trip

import (
	"errors"
	"fmt"

	"github.com/OpenTransitTools/fleetsim/business/data/directions"
	"github.com/OpenTransitTools/fleetsim/business/data/geodesy"
)

// ErrTooFewStops is returned when a TripPlan carries fewer than two addresses.
var ErrTooFewStops = errors.New("trip: plan requires at least 2 stops")

// Plan is an ordered sequence of stops: the first is the origin, the last the
// destination, any in between are waypoints in travel order.
type Plan struct {
	Stops []directions.Address `json:"stops"`
}

// Validate enforces the minimum stop count invariant of spec.md §3.
func (p Plan) Validate() error {
	if len(p.Stops) < 2 {
		return ErrTooFewStops
	}
	return nil
}

// Waypoints converts the plan's resolved stops into the (lon, lat) order the
// directions provider expects.
func (p Plan) Waypoints() []directions.LonLat {
	waypoints := make([]directions.LonLat, len(p.Stops))
	for i, stop := range p.Stops {
		waypoints[i] = directions.LonLat{Lon: stop.Lng, Lat: stop.Lat}
	}
	return waypoints
}

// Origin returns the plan's first stop.
func (p Plan) Origin() directions.Address { return p.Stops[0] }

// Destination returns the plan's last stop.
func (p Plan) Destination() directions.Address { return p.Stops[len(p.Stops)-1] }

// CrissCrossPlan expands into N trip plans whose start/end points are antipodal
// points on a circle of the given radius, evenly spaced in bearing and offset by
// half an increment so that no plan starts due north (spec.md §3).
type CrissCrossPlan struct {
	Center       geodesy.LatLng `json:"center"`
	RadiusKm     float64        `json:"radiusKm"`
	VehicleCount int            `json:"vehicleCount"`
}

// Validate enforces the positive-parameter invariant of spec.md §7.
func (c CrissCrossPlan) Validate() error {
	if c.VehicleCount <= 0 {
		return fmt.Errorf("trip: vehicleCount must be positive, got %d", c.VehicleCount)
	}
	if c.RadiusKm <= 0 {
		return fmt.Errorf("trip: radiusKm must be positive, got %f", c.RadiusKm)
	}
	return geodesy.ValidateLatLng(c.Center.Lat, c.Center.Lng)
}

// Expand produces c.VehicleCount plans, one per evenly spaced start bearing.
func (c CrissCrossPlan) Expand() ([]Plan, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	increment := 360.0 / float64(c.VehicleCount)
	plans := make([]Plan, c.VehicleCount)
	for k := 0; k < c.VehicleCount; k++ {
		startBearing := increment/2 + float64(k)*increment
		start, err := geodesy.CoordinateAtBearingAndRange(c.Center, c.RadiusKm, startBearing)
		if err != nil {
			return nil, err
		}
		end, err := geodesy.CoordinateAtBearingAndRange(c.Center, c.RadiusKm, startBearing+180)
		if err != nil {
			return nil, err
		}
		plans[k] = Plan{Stops: []directions.Address{
			{Source: "numeric-entry", Lat: start.Lat, Lng: start.Lng},
			{Source: "numeric-entry", Lat: end.Lat, Lng: end.Lng},
		}}
	}
	return plans, nil
}
