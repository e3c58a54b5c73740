package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Enqueue stamps id's position in VehicleUpdateQueue with scoreEpochMillis, the
// vehicle's current lastCalculationEpochMillis (spec.md §4.4). Used both to add a
// newly created vehicle and to re-stamp one after a successful update.
func (s *Store) Enqueue(ctx context.Context, id string, scoreEpochMillis int64) error {
	err := s.client.ZAdd(ctx, keyQueue, redis.Z{Score: float64(scoreEpochMillis), Member: id}).Err()
	if err != nil {
		return fmt.Errorf("store: enqueueing %s: %w", id, err)
	}
	return nil
}

// RemoveFromQueue removes id from VehicleUpdateQueue, used during retirement.
func (s *Store) RemoveFromQueue(ctx context.Context, id string) error {
	if err := s.client.ZRem(ctx, keyQueue, id).Err(); err != nil {
		return fmt.Errorf("store: dequeuing %s: %w", id, err)
	}
	return nil
}

// ReadyIDs returns every id whose queue score is <= maxScoreEpochMillis, in the
// order Redis returns them (ascending score). The scheduler passes
// now - updatePeriod + pollingPeriod (spec.md §4.6 step 2).
func (s *Store) ReadyIDs(ctx context.Context, maxScoreEpochMillis int64) ([]string, error) {
	ids, err := s.client.ZRangeByScore(ctx, keyQueue, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", maxScoreEpochMillis),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("store: scanning ready queue: %w", err)
	}
	return ids, nil
}
