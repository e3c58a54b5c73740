package facade

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OpenTransitTools/fleetsim/business/data/directions"
	"github.com/OpenTransitTools/fleetsim/business/data/geodesy"
	"github.com/OpenTransitTools/fleetsim/business/data/routing"
	"github.com/OpenTransitTools/fleetsim/business/data/store"
	"github.com/OpenTransitTools/fleetsim/business/data/trip"
	"github.com/OpenTransitTools/fleetsim/business/scheduler"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	addr := os.Getenv("FLEETSIM_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("no redis instance reachable at %s, skipping: %v", addr, err)
	}
	s := store.New(client)
	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("resetting store before test: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Reset(context.Background())
		_ = client.Close()
	})

	cache := routing.NewCache(directions.FakeProvider{}, 4)
	logger := log.New(os.Stderr, "TEST : ", log.LstdFlags)
	sch := scheduler.New(logger, s, cache, scheduler.Config{
		PollingPeriod:  10 * time.Millisecond,
		UpdatePeriod:   20 * time.Millisecond,
		VehicleTimeout: time.Second,
		ManagerHost:    "test-host",
		JitterCapacity: 20,
	})

	return New(s, cache, sch, directions.FakeGeocoder{Lat: 45.0, Lng: -122.0}, "test-host")
}

func TestCreateVehicleWithNumericStops(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	plan := trip.Plan{Stops: []directions.Address{
		{Source: "numeric-entry", Lat: 45.5, Lng: -122.6},
		{Source: "numeric-entry", Lat: 45.5, Lng: -122.5},
	}}

	v, err := f.CreateVehicle(ctx, plan)
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if v.ID == "" {
		t.Fatal("expected a non-empty vehicle id")
	}
	if v.DegLatitude != 45.5 {
		t.Errorf("DegLatitude = %f, want 45.5 (start at origin)", v.DegLatitude)
	}

	got, err := f.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.ID != v.ID {
		t.Errorf("GetVehicle returned id %s, want %s", got.ID, v.ID)
	}

	count, err := f.GetVehicleCount(ctx)
	if err != nil {
		t.Fatalf("GetVehicleCount: %v", err)
	}
	if count != 1 {
		t.Errorf("GetVehicleCount = %d, want 1", count)
	}
}

func TestCreateVehicleGeocodesMissingCoordinates(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	plan := trip.Plan{Stops: []directions.Address{
		{Street: "123 Main St"},
		{Street: "456 Oak Ave"},
	}}

	v, err := f.CreateVehicle(ctx, plan)
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if v.DegLatitude != 45.0 {
		t.Errorf("DegLatitude = %f, want 45.0 from fake geocoder", v.DegLatitude)
	}
}

func TestCreateVehicleRejectsTooFewStops(t *testing.T) {
	f := newTestFacade(t)
	_, err := f.CreateVehicle(context.Background(), trip.Plan{Stops: []directions.Address{{Lat: 1, Lng: 1, Source: "numeric-entry"}}})
	if err == nil {
		t.Fatal("expected an error for a plan with fewer than 2 stops")
	}
}

func TestCreateCrissCrossExpandsToVehicleCount(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	vehicles, err := f.CreateCrissCross(ctx, trip.CrissCrossPlan{
		Center:       geodesy.LatLng{Lat: 45.5, Lng: -122.6},
		RadiusKm:     5,
		VehicleCount: 4,
	})
	if err != nil {
		t.Fatalf("CreateCrissCross: %v", err)
	}
	if len(vehicles) != 4 {
		t.Errorf("len(vehicles) = %d, want 4", len(vehicles))
	}
}

func TestGetVehicleUnknownIDReturnsNotFound(t *testing.T) {
	f := newTestFacade(t)
	_, err := f.GetVehicle(context.Background(), "does-not-exist")
	if err != ErrVehicleNotFound {
		t.Errorf("err = %v, want ErrVehicleNotFound", err)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateVehicle(ctx, trip.Plan{Stops: []directions.Address{
		{Source: "numeric-entry", Lat: 45.5, Lng: -122.6},
		{Source: "numeric-entry", Lat: 45.5, Lng: -122.5},
	}})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}

	if err := f.Reset(ctx); err != nil {
		t.Fatalf("first Reset: %v", err)
	}
	if err := f.Reset(ctx); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
	count, err := f.GetVehicleCount(ctx)
	if err != nil {
		t.Fatalf("GetVehicleCount: %v", err)
	}
	if count != 0 {
		t.Errorf("GetVehicleCount after Reset = %d, want 0", count)
	}
}

func TestGetDirectionsForPlanIsOneShot(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	d, err := f.GetDirectionsForPlan(ctx, trip.Plan{Stops: []directions.Address{
		{Source: "numeric-entry", Lat: 45.5, Lng: -122.6},
		{Source: "numeric-entry", Lat: 45.5, Lng: -122.5},
	}})
	if err != nil {
		t.Fatalf("GetDirectionsForPlan: %v", err)
	}
	if len(d.Routes) == 0 {
		t.Fatal("expected at least one route")
	}

	count, err := f.GetVehicleCount(ctx)
	if err != nil {
		t.Fatalf("GetVehicleCount: %v", err)
	}
	if count != 0 {
		t.Errorf("GetDirectionsForPlan should not register a vehicle, count = %d", count)
	}
}

func TestGetPositionAtOffsetResolvesWithoutMutatingStore(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	v, err := f.CreateVehicle(ctx, trip.Plan{Stops: []directions.Address{
		{Source: "numeric-entry", Lat: 45.5, Lng: -122.6},
		{Source: "numeric-entry", Lat: 45.5, Lng: -122.5},
	}})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}

	pos, err := f.GetPositionAtOffset(ctx, v.ID, 500)
	if err != nil {
		t.Fatalf("GetPositionAtOffset: %v", err)
	}
	if pos.Lat == 0 && pos.Lng == 0 {
		t.Error("expected a resolved position, got zero value")
	}

	unchanged, err := f.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if unchanged.MetersOffset != v.MetersOffset {
		t.Errorf("GetPositionAtOffset mutated persisted state: MetersOffset = %f, want %f", unchanged.MetersOffset, v.MetersOffset)
	}
}
