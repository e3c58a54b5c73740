package vehicle

import (
	"testing"

	"github.com/OpenTransitTools/fleetsim/business/data/directions"
	"github.com/OpenTransitTools/fleetsim/business/data/routing"
)

func straightRouteContext(totalDistance float64, speed float64) *RouteContext {
	return &RouteContext{
		TotalDistance: totalDistance,
		Origin:        LatLng{Lat: 45.0, Lng: -122.0},
		Destination:   LatLng{Lat: 45.01, Lng: -122.0},
		Legs: []LegSpeeds{
			{Speed: []float64{speed}, Distance: []float64{totalDistance}},
		},
	}
}

func TestSetMetersOffsetClampsBelowZero(t *testing.T) {
	v := New("v1", "t1", 0, "host-a")
	rc := straightRouteContext(1000, 10)
	if err := v.SetMetersOffset(rc, -10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.PositionLimited || v.PositionValid {
		s := "PositionLimited=%v PositionValid=%v, want limited=true valid=false"
		t.Errorf(s, v.PositionLimited, v.PositionValid)
	}
	if v.DegLatitude != rc.Origin.Lat || v.DegLongitude != rc.Origin.Lng {
		t.Errorf("expected position at origin, got (%f, %f)", v.DegLatitude, v.DegLongitude)
	}
	if v.MetersPerSecondDesired != 10 {
		t.Errorf("expected desired speed of first slice, got %f", v.MetersPerSecondDesired)
	}
}

func TestSetMetersOffsetClampsAboveRouteDistance(t *testing.T) {
	v := New("v1", "t1", 0, "host-a")
	rc := straightRouteContext(1000, 10)
	if err := v.SetMetersOffset(rc, 1001); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.PositionLimited || v.PositionValid {
		t.Errorf("expected limited=true valid=false, got limited=%v valid=%v", v.PositionLimited, v.PositionValid)
	}
	if v.DegLatitude != rc.Destination.Lat || v.DegLongitude != rc.Destination.Lng {
		t.Errorf("expected position at destination, got (%f, %f)", v.DegLatitude, v.DegLongitude)
	}
}

func TestArrivalIsAbsorbing(t *testing.T) {
	v := New("v1", "t1", 0, "host-a")
	rc := straightRouteContext(0, 10)
	advanced, err := v.Update(nil, rc, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !advanced {
		t.Fatalf("expected first update on a zero-length route to advance (ramp to 0)")
	}
	if v.MetersPerSecond != 0 {
		t.Fatalf("expected speed ramped to 0, got %f", v.MetersPerSecond)
	}

	before := *v
	advanced, err = v.Update(nil, rc, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advanced {
		t.Errorf("expected arrived vehicle to not advance on subsequent updates")
	}
	if *v != before {
		t.Errorf("expected no field changes once arrived, got %+v want %+v", *v, before)
	}
}

func TestSpeedRampsTowardDesiredWithoutOvershoot(t *testing.T) {
	v := New("v1", "t1", 0, "host-a")
	v.MssAcceleration = 2.0
	rc := straightRouteContext(100000, 10)
	segments, err := routing.BuildSegments(&directions.Directions{
		Waypoints: []directions.Waypoint{{Location: directions.LonLat{Lon: -122.0, Lat: 45.0}}},
		Routes: []directions.Route{{Legs: []directions.Leg{{Steps: []directions.Step{{
			Geometry: directions.Geometry{Coordinates: []directions.LonLat{{Lon: -122.0, Lat: 45.0}, {Lon: -122.0, Lat: 46.0}}},
		}}}}}},
	})
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	rc.Segments = segments
	// position the vehicle at the start so MetersPerSecondDesired holds the posted speed
	if err := v.SetMetersOffset(rc, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = v.Update(nil, rc, 1000) // 1 second elapsed
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MetersPerSecond != 2.0 {
		t.Errorf("expected speed to ramp by exactly acceleration*dt, got %f", v.MetersPerSecond)
	}

	// run enough updates that speed should clamp at desired without overshoot
	now := int64(1000)
	for i := 0; i < 20; i++ {
		now += 1000
		if _, err := v.Update(nil, rc, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if v.MetersPerSecond != 10.0 {
		t.Errorf("expected speed to settle at desired 10.0, got %f", v.MetersPerSecond)
	}
}

func TestRotateTowardRateLimitsAndConverges(t *testing.T) {
	got := rotateToward(0, 90, 10, 1.0)
	if got != 10 {
		t.Errorf("expected single-second rotation to advance by exactly turnRate, got %f", got)
	}

	bearing := 0.0
	seconds := 0
	for bearing != 90 && seconds < 20 {
		bearing = rotateToward(bearing, 90, 10, 1.0)
		seconds++
	}
	if bearing != 90 {
		t.Fatalf("expected bearing to converge to 90 within 9 seconds, got %f after %d seconds", bearing, seconds)
	}
	if seconds != 9 {
		t.Errorf("expected convergence in exactly 9 seconds (|90|/10), got %d", seconds)
	}
}

func TestRotateTowardWrapsShortestPath(t *testing.T) {
	got := rotateToward(350, 10, 10, 1.0)
	if got != 0 {
		t.Errorf("expected rotation across 0/360 boundary to advance by 10 degrees, got %f", got)
	}
}

func TestZeroElapsedIsNoOp(t *testing.T) {
	v := New("v1", "t1", 1000, "host-a")
	rc := straightRouteContext(1000, 10)
	advanced, err := v.Update(nil, rc, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advanced {
		t.Errorf("expected zero elapsed time to be a no-op")
	}
}

func TestIdenticalConsecutivePositionsDoNotOverwriteDesiredBearing(t *testing.T) {
	v := New("v1", "t1", 0, "host-a")
	rc := straightRouteContext(1000, 10)
	if err := v.SetMetersOffset(rc, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v.DegBearingDesired = 77
	if err := v.SetMetersOffset(rc, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.DegBearingDesired != 77 {
		t.Errorf("expected DegBearingDesired to remain unchanged for identical position, got %f", v.DegBearingDesired)
	}
}
