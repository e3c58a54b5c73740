// Package scheduler drives the per-tick vehicle-update loop of spec.md §4.6: on a
// fixed polling period it pulls ready vehicle ids from the shared queue, claims each
// one's per-tick lock, advances its kinematic state, and writes it back.
package scheduler

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/OpenTransitTools/fleetsim/business/data/directions"
	"github.com/OpenTransitTools/fleetsim/business/data/routing"
	"github.com/OpenTransitTools/fleetsim/business/data/store"
	"github.com/OpenTransitTools/fleetsim/business/scheduler/jitter"
)

// Config holds the scheduler's tunable timing parameters (spec.md §4.6, §6).
type Config struct {
	PollingPeriod  time.Duration // default 100ms
	UpdatePeriod   time.Duration // default 250ms
	VehicleTimeout time.Duration // default 30s
	ManagerHost    string
	JitterCapacity int // default 200
}

// DefaultConfig returns the spec's default timing parameters, resolving ManagerHost
// from the local hostname (falling back to "UNKNOWN" per spec.md §9).
func DefaultConfig() Config {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "UNKNOWN"
	}
	return Config{
		PollingPeriod:  100 * time.Millisecond,
		UpdatePeriod:   250 * time.Millisecond,
		VehicleTimeout: 30 * time.Second,
		ManagerHost:    host,
		JitterCapacity: jitter.DefaultCapacity,
	}
}

// Scheduler owns one instance's tick loop, its derived-data cache, and its jitter
// window (spec.md §5 "per-instance").
type Scheduler struct {
	cfg   Config
	log   *log.Logger
	store *store.Store
	cache *routing.Cache
	jit   *jitter.Window

	snapMu   sync.RWMutex
	snapshot []string
}

// New builds a Scheduler over the shared store and per-instance cache.
func New(log *log.Logger, s *store.Store, cache *routing.Cache, cfg Config) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		log:   log,
		store: s,
		cache: cache,
		jit:   jitter.NewWindow(cfg.JitterCapacity),
	}
}

// ActiveSnapshot returns the most recent copy-on-write snapshot of active ids,
// refreshed once a second by RunSnapshotLoop (spec.md §4.6, §5).
func (sch *Scheduler) ActiveSnapshot() []string {
	sch.snapMu.RLock()
	defer sch.snapMu.RUnlock()
	return sch.snapshot
}

// JitterStats reports the current aggregate jitter metrics (spec.md §4.7).
func (sch *Scheduler) JitterStats() jitter.Stats {
	return sch.jit.Stats()
}

// Run executes the tick loop at cfg.PollingPeriod until shutdownSignal fires,
// following the teacher's sleep-channel/shutdown-channel background-loop shape.
func (sch *Scheduler) Run(ctx context.Context, shutdownSignal chan os.Signal) error {
	sleepChan := make(chan bool)
	sleep := time.Duration(0)

	for {
		go func() {
			time.Sleep(sleep)
			sleepChan <- true
		}()

		select {
		case <-shutdownSignal:
			sch.log.Printf("scheduler: exiting on shutdown signal")
			return nil
		case <-ctx.Done():
			sch.log.Printf("scheduler: exiting on context cancellation")
			return ctx.Err()
		case <-sleepChan:
		}

		sleep = sch.cfg.PollingPeriod
		start := time.Now()

		if err := sch.tick(ctx); err != nil {
			sch.log.Printf("scheduler: tick error: %v", err)
		}

		elapsed := time.Since(start)
		if elapsed < sch.cfg.PollingPeriod {
			sleep = sch.cfg.PollingPeriod - elapsed
		} else {
			sleep = 0
		}
	}
}

// RunSnapshotLoop refreshes the active-ids snapshot every second until
// shutdownSignal fires (spec.md §4.6 "second periodic task").
func (sch *Scheduler) RunSnapshotLoop(ctx context.Context, shutdownSignal chan os.Signal) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-shutdownSignal:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			ids, err := sch.store.ActiveIDs(ctx)
			if err != nil {
				sch.log.Printf("scheduler: refreshing active snapshot: %v", err)
				continue
			}
			sch.snapMu.Lock()
			sch.snapshot = ids
			sch.snapMu.Unlock()
		}
	}
}

// RunReconcileLoop drops derived-data cache entries and resizes the jitter window
// every 60 seconds based on the active-set size, until shutdownSignal fires
// (spec.md §4.5, §4.7).
func (sch *Scheduler) RunReconcileLoop(ctx context.Context, shutdownSignal chan os.Signal) error {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-shutdownSignal:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			ids, err := sch.store.ActiveIDs(ctx)
			if err != nil {
				sch.log.Printf("scheduler: reconciling: %v", err)
				continue
			}
			active := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				active[id] = struct{}{}
			}
			sch.cache.Reconcile(active)

			target := 10 * len(ids)
			if target < 10 {
				target = 10
			}
			sch.jit.Resize(target)
		}
	}
}

// tick runs one iteration of the scheduler algorithm of spec.md §4.6.
func (sch *Scheduler) tick(ctx context.Context) error {
	now := time.Now().UnixMilli()
	timeoutCutoff := now - sch.cfg.VehicleTimeout.Milliseconds()
	readyBefore := now - sch.cfg.UpdatePeriod.Milliseconds() + sch.cfg.PollingPeriod.Milliseconds()

	ready, err := sch.store.ReadyIDs(ctx, readyBefore)
	if err != nil {
		return err
	}

	if len(ready) == 0 {
		sch.jit.Record(0)
		return nil
	}

	for _, id := range ready {
		sch.processOne(ctx, id, now, timeoutCutoff)
	}
	return nil
}

// processOne handles a single ready id's step 3(a-g) of spec.md §4.6. Any error is
// logged and swallowed so the tick continues with the next id.
func (sch *Scheduler) processOne(ctx context.Context, id string, now, timeoutCutoff int64) {
	var waypoints []directions.LonLat
	if plan, err := sch.store.GetTripPlan(ctx, id); err == nil {
		waypoints = plan.Waypoints()
	} else if !errors.Is(err, store.ErrNotFound) {
		sch.log.Printf("scheduler: loading trip plan for %s: %v", id, err)
		return
	}

	derived, present, err := sch.cache.Get(ctx, id, waypoints, false)
	if err != nil {
		sch.log.Printf("scheduler: derived data load failed for %s: %v", id, err)
		return
	}
	if !present {
		return
	}

	won, err := sch.store.TryLock(ctx, id)
	if err != nil {
		sch.log.Printf("scheduler: claiming lock for %s: %v", id, err)
		return
	}
	if !won {
		return
	}
	defer func() {
		if err := sch.store.Unlock(ctx, id); err != nil {
			sch.log.Printf("scheduler: releasing lock for %s: %v", id, err)
		}
	}()

	v, err := sch.store.GetVehicle(ctx, id)
	if err != nil {
		sch.log.Printf("scheduler: loading vehicle %s: %v", id, err)
		return
	}

	rc := buildRouteContext(derived)
	msSinceLastRun := now - v.LastCalculationEpochMillis
	if msSinceLastRun <= sch.cfg.PollingPeriod.Milliseconds() {
		return
	}

	updateStart := time.Now()
	advanced, err := v.Update(sch.log, rc, now)
	if err != nil {
		sch.log.Printf("scheduler: updating vehicle %s: %v", id, err)
		return
	}

	if !advanced {
		if v.LastCalculationEpochMillis < timeoutCutoff {
			sch.retire(ctx, id)
		}
		return
	}

	sch.jit.Record(float64(msSinceLastRun - sch.cfg.UpdatePeriod.Milliseconds()))

	v.LastNsExecutionTime = time.Since(updateStart).Nanoseconds()
	v.ManagerHost = sch.cfg.ManagerHost
	if err := sch.store.SaveVehicle(ctx, v); err != nil {
		sch.log.Printf("scheduler: saving vehicle %s: %v", id, err)
		return
	}
	if err := sch.store.Enqueue(ctx, id, v.LastCalculationEpochMillis); err != nil {
		sch.log.Printf("scheduler: re-enqueuing vehicle %s: %v", id, err)
	}
}

// retire removes id from the active set, the queue, the state store, and the local
// derived-data cache (spec.md §4.6 step 4).
func (sch *Scheduler) retire(ctx context.Context, id string) {
	if err := sch.store.RemoveActive(ctx, id); err != nil {
		sch.log.Printf("scheduler: retiring %s from active set: %v", id, err)
	}
	if err := sch.store.RemoveFromQueue(ctx, id); err != nil {
		sch.log.Printf("scheduler: retiring %s from queue: %v", id, err)
	}
	if err := sch.store.DeleteVehicle(ctx, id); err != nil {
		sch.log.Printf("scheduler: retiring %s from state store: %v", id, err)
	}
	sch.cache.Drop(id)
}
