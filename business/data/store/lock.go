package store

import (
	"context"
	"fmt"
)

// TryLock attempts to insert id into VehicleUpdateLockSet and reports whether this
// call was the one that inserted it. Redis's SADD returns the count of elements
// actually added, so a result of 0 means some other caller already holds the lock
// for this tick -- this is the atomic claim of spec.md §5 "the winner is whichever
// instance atomically inserts the id into VehicleUpdateLockSet first".
func (s *Store) TryLock(ctx context.Context, id string) (bool, error) {
	added, err := s.client.SAdd(ctx, keyLockSet, id).Result()
	if err != nil {
		return false, fmt.Errorf("store: claiming lock for %s: %w", id, err)
	}
	return added == 1, nil
}

// Unlock removes id from VehicleUpdateLockSet. Callers must call this on every exit
// path of the tick (spec.md §4.6 step 3g, "finally block / deferred").
func (s *Store) Unlock(ctx context.Context, id string) error {
	if err := s.client.SRem(ctx, keyLockSet, id).Err(); err != nil {
		return fmt.Errorf("store: releasing lock for %s: %w", id, err)
	}
	return nil
}
