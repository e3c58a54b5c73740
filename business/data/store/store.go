// Package store implements the shared, multi-instance key-value collections of
// spec.md §4.4: the TripPlan registry, the Vehicle state store, the active-vehicle
// set, the time-ordered update queue, and the update lock set. It is backed by
// Redis, whose native ZSET/SET primitives provide the atomicity this system
// depends on without a multi-key transaction (spec.md §5).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/OpenTransitTools/fleetsim/business/data/trip"
	"github.com/OpenTransitTools/fleetsim/business/data/vehicle"
)

// Redis key names for the five logical collections of spec.md §4.4/§6.
const (
	keyTripPlans = "TripPlan"
	keyActiveSet = "ActiveVehicleRegistry"
	keyQueue     = "VehicleUpdateQueue"
	keyLockSet   = "VehicleUpdateLockSet"
)

// ErrNotFound is returned when a TripPlan or Vehicle id is absent from the store.
var ErrNotFound = errors.New("store: not found")

func vehicleKey(id string) string {
	return "Vehicle:" + id
}

// Store wraps a Redis client with the fleetsim collection operations.
type Store struct {
	client *redis.Client
}

// New wraps an already-connected Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// SaveTripPlan persists plan under id in the TripPlan map, so any instance can later
// reconstruct route geometry on demand (spec.md §4.4).
func (s *Store) SaveTripPlan(ctx context.Context, id string, plan trip.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("store: marshaling trip plan %s: %w", id, err)
	}
	if err := s.client.HSet(ctx, keyTripPlans, id, data).Err(); err != nil {
		return fmt.Errorf("store: saving trip plan %s: %w", id, err)
	}
	return nil
}

// GetTripPlan retrieves the TripPlan registered under id.
func (s *Store) GetTripPlan(ctx context.Context, id string) (trip.Plan, error) {
	data, err := s.client.HGet(ctx, keyTripPlans, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return trip.Plan{}, ErrNotFound
	}
	if err != nil {
		return trip.Plan{}, fmt.Errorf("store: loading trip plan %s: %w", id, err)
	}
	var plan trip.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return trip.Plan{}, fmt.Errorf("store: decoding trip plan %s: %w", id, err)
	}
	return plan, nil
}

// SaveVehicle writes the authoritative serialized state for v (spec.md §4.4).
func (s *Store) SaveVehicle(ctx context.Context, v *vehicle.Vehicle) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshaling vehicle %s: %w", v.ID, err)
	}
	if err := s.client.Set(ctx, vehicleKey(v.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("store: saving vehicle %s: %w", v.ID, err)
	}
	return nil
}

// GetVehicle retrieves the serialized Vehicle for id.
func (s *Store) GetVehicle(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	data, err := s.client.Get(ctx, vehicleKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: loading vehicle %s: %w", id, err)
	}
	var v vehicle.Vehicle
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("store: decoding vehicle %s: %w", id, err)
	}
	v.MarkPositioned()
	return &v, nil
}

// DeleteVehicle removes the Vehicle:{id} entry. Used during retirement and Reset.
func (s *Store) DeleteVehicle(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, vehicleKey(id)).Err(); err != nil {
		return fmt.Errorf("store: deleting vehicle %s: %w", id, err)
	}
	return nil
}

// DeleteTripPlan removes a TripPlan registry entry.
func (s *Store) DeleteTripPlan(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, keyTripPlans, id).Err(); err != nil {
		return fmt.Errorf("store: deleting trip plan %s: %w", id, err)
	}
	return nil
}
