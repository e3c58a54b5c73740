package routing

import (
	"context"
	"fmt"
	"sync"

	"github.com/OpenTransitTools/fleetsim/business/data/directions"
)

// Derived holds the non-serializable per-vehicle artifacts: the raw Directions response
// and the Segments built from it (spec.md §3, §4.5).
type Derived struct {
	Directions *directions.Directions
	Segments   []*Segment
}

type entryState int

const (
	stateLoading entryState = iota
	stateLoaded
	stateFailed
)

type entry struct {
	state entryState
	data  *Derived
	err   error
	done  chan struct{}
}

// Cache is the per-instance, per-vehicle derived-data cache of spec.md §4.5. It is
// populated eagerly on creation and lazily (via compute-or-join) on first scheduling.
// A bounded worker pool caps concurrent loads in flight.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	provider directions.Provider
	sem      chan struct{}
}

// NewCache builds a Cache backed by provider, allowing at most maxInFlight concurrent
// asynchronous loads (spec.md §4.5 default 10).
func NewCache(provider directions.Provider, maxInFlight int) *Cache {
	if maxInFlight <= 0 {
		maxInFlight = 10
	}
	return &Cache{
		entries:  make(map[string]*entry),
		provider: provider,
		sem:      make(chan struct{}, maxInFlight),
	}
}

// Put eagerly installs derived data for id, used when this instance creates the vehicle.
func (c *Cache) Put(id string, data *Derived) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = &entry{state: stateLoaded, data: data}
}

// Drop removes id's entry, used during reconciliation and retirement.
func (c *Cache) Drop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Get returns derived data for id in either wait or no-wait mode (spec.md §4.5).
// In no-wait mode, a missing entry triggers an asynchronous load and Get returns
// (nil, false) immediately. In wait mode, Get blocks until the load completes (or
// begins one itself) and returns the load's error, if any.
func (c *Cache) Get(ctx context.Context, id string, loadWaypoints []directions.LonLat, wait bool) (*Derived, bool, error) {
	c.mu.Lock()
	e, present := c.entries[id]
	if !present {
		e = &entry{state: stateLoading, done: make(chan struct{})}
		c.entries[id] = e
		c.mu.Unlock()
		if wait {
			c.load(ctx, id, loadWaypoints, e)
		} else {
			go c.load(context.Background(), id, loadWaypoints, e)
			return nil, false, nil
		}
	} else {
		c.mu.Unlock()
	}

	c.mu.Lock()
	state, data, loadErr, done := e.state, e.data, e.err, e.done
	c.mu.Unlock()

	switch state {
	case stateLoaded:
		return data, true, nil
	case stateFailed:
		return nil, true, loadErr
	}

	// stateLoading: another goroutine owns the load.
	if !wait {
		return nil, false, nil
	}
	<-done

	c.mu.Lock()
	data, loadErr = e.data, e.err
	c.mu.Unlock()
	if loadErr != nil {
		return nil, true, loadErr
	}
	return data, true, nil
}

// load performs the directions fetch and segment build, publishing the result on e and
// removing the in-flight slot regardless of outcome.
func (c *Cache) load(ctx context.Context, id string, waypoints []directions.LonLat, e *entry) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	data, err := c.fetch(ctx, waypoints)

	c.mu.Lock()
	if err != nil {
		e.state = stateFailed
		e.err = err
	} else {
		e.state = stateLoaded
		e.data = data
	}
	if e.done != nil {
		close(e.done)
		e.done = nil
	}
	c.mu.Unlock()
}

// Fetch performs a one-shot directions fetch and segment build without installing
// the result under any id. Used at vehicle-creation time, before an id exists to
// key the cache on (spec.md §4.8 CreateVehicle).
func (c *Cache) Fetch(ctx context.Context, waypoints []directions.LonLat) (*Derived, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()
	return c.fetch(ctx, waypoints)
}

func (c *Cache) fetch(ctx context.Context, waypoints []directions.LonLat) (*Derived, error) {
	if c.provider == nil {
		return nil, fmt.Errorf("routing: no directions provider configured")
	}
	d, err := c.provider.Route(ctx, waypoints)
	if err != nil {
		return nil, fmt.Errorf("routing: fetching directions: %w", err)
	}
	segments, err := BuildSegments(d)
	if err != nil {
		return nil, fmt.Errorf("routing: building segments: %w", err)
	}
	return &Derived{Directions: d, Segments: segments}, nil
}

// Reconcile drops every cache entry whose id is not present in activeIDs
// (spec.md §4.5, §4.6 second periodic task).
func (c *Cache) Reconcile(activeIDs map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.entries {
		if _, active := activeIDs[id]; !active {
			delete(c.entries, id)
		}
	}
}
