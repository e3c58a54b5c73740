package store

import (
	"context"
	"fmt"
)

// Reset deletes every collection of spec.md §4.4: the TripPlan map, the active set,
// the update queue, the lock set, and every Vehicle:{id} entry. Reset is idempotent:
// calling it twice in a row leaves the same empty store state (spec.md §8).
func (s *Store) Reset(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, "Vehicle:*", 100).Result()
		if err != nil {
			return fmt.Errorf("store: scanning vehicle entries: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("store: deleting vehicle entries: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if err := s.client.Del(ctx, keyTripPlans, keyActiveSet, keyQueue, keyLockSet).Err(); err != nil {
		return fmt.Errorf("store: deleting collections: %w", err)
	}
	return nil
}
