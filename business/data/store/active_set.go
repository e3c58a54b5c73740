package store

import (
	"context"
	"fmt"
)

// AddActive adds id to the ActiveVehicleRegistry set (spec.md §4.4).
func (s *Store) AddActive(ctx context.Context, id string) error {
	if err := s.client.SAdd(ctx, keyActiveSet, id).Err(); err != nil {
		return fmt.Errorf("store: adding %s to active set: %w", id, err)
	}
	return nil
}

// RemoveActive removes id from the ActiveVehicleRegistry set.
func (s *Store) RemoveActive(ctx context.Context, id string) error {
	if err := s.client.SRem(ctx, keyActiveSet, id).Err(); err != nil {
		return fmt.Errorf("store: removing %s from active set: %w", id, err)
	}
	return nil
}

// ActiveCount returns the cardinality of the active-vehicle set.
func (s *Store) ActiveCount(ctx context.Context) (int64, error) {
	count, err := s.client.SCard(ctx, keyActiveSet).Result()
	if err != nil {
		return 0, fmt.Errorf("store: counting active set: %w", err)
	}
	return count, nil
}

// ActiveIDs returns every id currently in the active-vehicle set. Callers that
// iterate should treat the result as a point-in-time snapshot (spec.md §5).
func (s *Store) ActiveIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, keyActiveSet).Result()
	if err != nil {
		return nil, fmt.Errorf("store: listing active set: %w", err)
	}
	return ids, nil
}
