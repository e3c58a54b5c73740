// Package facade implements the read/write operations of spec.md §4.8: the single
// entry point the REST layer (and, in tests, callers directly) uses to create,
// inspect, and reset simulated vehicles.
package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OpenTransitTools/fleetsim/business/data/directions"
	"github.com/OpenTransitTools/fleetsim/business/data/routing"
	"github.com/OpenTransitTools/fleetsim/business/data/store"
	"github.com/OpenTransitTools/fleetsim/business/data/trip"
	"github.com/OpenTransitTools/fleetsim/business/data/vehicle"
	"github.com/OpenTransitTools/fleetsim/business/scheduler"
)

// ErrVehicleNotFound is returned by read operations for an unknown id, surfaced by
// the REST layer as a 404 (spec.md §7 "Missing dependency").
var ErrVehicleNotFound = store.ErrNotFound

// ErrInvalidInput wraps every input-validation failure (null plan, <2 stops,
// invalid lat/lon, non-positive parameter), surfaced by the REST layer as a 400
// (spec.md §7 "Input validation").
var ErrInvalidInput = errors.New("facade: invalid input")

// Facade wires the shared store, the per-instance derived-data cache, and upstream
// adapters together behind the operations of spec.md §4.8.
type Facade struct {
	store       *store.Store
	cache       *routing.Cache
	scheduler   *scheduler.Scheduler
	geocoder    directions.Geocoder
	managerHost string
}

// New builds a Facade. geocoder may be nil when every TripPlan is expected to carry
// numeric-entry stops already.
func New(s *store.Store, cache *routing.Cache, sch *scheduler.Scheduler, geocoder directions.Geocoder, managerHost string) *Facade {
	return &Facade{store: s, cache: cache, scheduler: sch, geocoder: geocoder, managerHost: managerHost}
}

// CreateVehicle validates plan, resolves any ungeocoded stops, fetches directions,
// preprocesses the route, and persists the new vehicle (spec.md §4.8).
func (f *Facade) CreateVehicle(ctx context.Context, plan trip.Plan) (*vehicle.Vehicle, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resolved, err := f.resolveStops(ctx, plan)
	if err != nil {
		return nil, err
	}

	derived, err := f.cache.Fetch(ctx, resolved.Waypoints())
	if err != nil {
		return nil, fmt.Errorf("facade: fetching directions: %w", err)
	}

	id := newVehicleID()
	now := time.Now().UnixMilli()
	v := vehicle.New(id, id, now, f.managerHost)

	rc := buildRouteContext(derived)
	if err := v.SetMetersOffset(rc, 0); err != nil {
		return nil, fmt.Errorf("facade: resolving initial position: %w", err)
	}

	f.cache.Put(id, derived)

	if err := f.store.SaveTripPlan(ctx, id, resolved); err != nil {
		return nil, fmt.Errorf("facade: persisting trip plan: %w", err)
	}
	if err := f.store.SaveVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("facade: persisting vehicle: %w", err)
	}
	if err := f.store.AddActive(ctx, id); err != nil {
		return nil, fmt.Errorf("facade: registering vehicle as active: %w", err)
	}
	if err := f.store.Enqueue(ctx, id, now); err != nil {
		return nil, fmt.Errorf("facade: enqueuing vehicle: %w", err)
	}

	return v, nil
}

// CreateCrissCross expands plan into N trip plans and invokes CreateVehicle for
// each in turn (spec.md §4.8).
func (f *Facade) CreateCrissCross(ctx context.Context, plan trip.CrissCrossPlan) ([]*vehicle.Vehicle, error) {
	plans, err := plan.Expand()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	vehicles := make([]*vehicle.Vehicle, 0, len(plans))
	for _, p := range plans {
		v, err := f.CreateVehicle(ctx, p)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// GetVehicle returns the current persisted state of a vehicle (spec.md §4.8).
func (f *Facade) GetVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	v, err := f.store.GetVehicle(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("facade: loading vehicle %s: %w", id, err)
	}
	return v, nil
}

// GetVehicleDirections returns the directions response backing a vehicle's route,
// optionally waiting for an in-flight load to complete (spec.md §4.8, §4.5).
func (f *Facade) GetVehicleDirections(ctx context.Context, id string, waitForResult bool) (*directions.Directions, error) {
	plan, err := f.store.GetTripPlan(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("facade: loading trip plan %s: %w", id, err)
	}

	derived, present, err := f.cache.Get(ctx, id, plan.Waypoints(), waitForResult)
	if err != nil {
		return nil, fmt.Errorf("facade: loading directions for %s: %w", id, err)
	}
	if !present {
		return nil, nil
	}
	return derived.Directions, nil
}

// GetDirectionsForPlan resolves directions for a one-shot, non-persisted query over
// a candidate TripPlan (spec.md §6 "POST /api/trips/get-directions").
func (f *Facade) GetDirectionsForPlan(ctx context.Context, plan trip.Plan) (*directions.Directions, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	resolved, err := f.resolveStops(ctx, plan)
	if err != nil {
		return nil, err
	}
	derived, err := f.cache.Fetch(ctx, resolved.Waypoints())
	if err != nil {
		return nil, fmt.Errorf("facade: fetching directions: %w", err)
	}
	return derived.Directions, nil
}

// GetPositionAtOffset resolves the WGS84 position a vehicle would occupy at a given
// meters offset along its route, without mutating the vehicle's persisted state
// (spec.md §6 "POST /api/position/get-position").
func (f *Facade) GetPositionAtOffset(ctx context.Context, id string, metersOffset float64) (vehicle.LatLng, error) {
	v, err := f.store.GetVehicle(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return vehicle.LatLng{}, ErrVehicleNotFound
	}
	if err != nil {
		return vehicle.LatLng{}, fmt.Errorf("facade: loading vehicle %s: %w", id, err)
	}

	plan, err := f.store.GetTripPlan(ctx, id)
	if err != nil {
		return vehicle.LatLng{}, fmt.Errorf("facade: loading trip plan %s: %w", id, err)
	}
	derived, _, err := f.cache.Get(ctx, id, plan.Waypoints(), true)
	if err != nil {
		return vehicle.LatLng{}, fmt.Errorf("facade: loading directions for %s: %w", id, err)
	}

	rc := buildRouteContext(derived)
	probe := *v
	if err := probe.SetMetersOffset(rc, metersOffset); err != nil {
		return vehicle.LatLng{}, fmt.Errorf("facade: resolving position: %w", err)
	}
	return vehicle.LatLng{Lat: probe.DegLatitude, Lng: probe.DegLongitude}, nil
}

// GetVehicleCount returns the cardinality of the active-vehicle set (spec.md §4.8).
func (f *Facade) GetVehicleCount(ctx context.Context) (int64, error) {
	count, err := f.store.ActiveCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("facade: counting active vehicles: %w", err)
	}
	return count, nil
}

// GetVehicleMap returns one page of active vehicle states, using the scheduler's
// 1Hz active-ids snapshot rather than querying the store directly (spec.md §4.8,
// §5 "the active-ids snapshot is a copy-on-write list").
func (f *Facade) GetVehicleMap(ctx context.Context, page, pageSize int) ([]*vehicle.Vehicle, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	ids := f.scheduler.ActiveSnapshot()

	start := page * pageSize
	if start >= len(ids) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(ids) {
		end = len(ids)
	}

	vehicles := make([]*vehicle.Vehicle, 0, end-start)
	for _, id := range ids[start:end] {
		v, err := f.store.GetVehicle(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("facade: loading vehicle %s: %w", id, err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// Reset deletes every collection of spec.md §4.4 (spec.md §4.8, §8 "Reset idempotence").
func (f *Facade) Reset(ctx context.Context) error {
	if err := f.store.Reset(ctx); err != nil {
		return fmt.Errorf("facade: resetting store: %w", err)
	}
	return nil
}

// resolveStops geocodes any stop missing coordinates, returning a new Plan with
// every stop resolved (spec.md §4.8, §6 Geocoder contract).
func (f *Facade) resolveStops(ctx context.Context, plan trip.Plan) (trip.Plan, error) {
	resolved := trip.Plan{Stops: make([]directions.Address, len(plan.Stops))}
	for i, stop := range plan.Stops {
		if stop.HasCoordinates() {
			resolved.Stops[i] = stop
			continue
		}
		if f.geocoder == nil {
			return trip.Plan{}, fmt.Errorf("facade: stop %d has no coordinates and no geocoder is configured", i)
		}
		geocoded, err := f.geocoder.Geocode(ctx, stop)
		if err != nil {
			return trip.Plan{}, fmt.Errorf("facade: geocoding stop %d: %w", i, err)
		}
		resolved.Stops[i] = geocoded
	}
	return resolved, nil
}
