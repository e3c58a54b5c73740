package facade

import "github.com/google/uuid"

// newVehicleID mints a new vehicle/trip-plan id shared between the two registries
// (spec.md §3: "a vehicle's id and its TripPlan's id are the same string").
func newVehicleID() string {
	return uuid.NewString()
}
