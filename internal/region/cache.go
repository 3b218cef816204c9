package region

import (
	"context"
	"sync"

	"github.com/gekko3d/voxelstream/internal/graphexec"
	"github.com/gekko3d/voxelstream/internal/logging"
)

// DefaultCapacity is the reference design's LRU bound (spec.md §4.2:
// "LRU capacity ~20 regions").
const DefaultCapacity = 20

type entry struct {
	outputs *Outputs
	node    *lruNode
}

// Cache memoizes Graph Executor output per Key behind an LRU. Capacity
// 0 means unbounded. Safe for concurrent use; the reference design runs
// it single-threaded per world (spec.md §5), but a mutex costs nothing
// and protects callers that don't follow that convention.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	order    *lruList
	capacity int
	executor *graphexec.Executor
	log      logging.Logger
}

// New builds a Cache with the given capacity, executing misses against
// executor.
func New(capacity int, executor *graphexec.Executor, log logging.Logger) *Cache {
	if log == nil {
		log = logging.NewNop()
	}
	return &Cache{
		entries:  make(map[Key]*entry),
		order:    newLRUList(),
		capacity: capacity,
		executor: executor,
		log:      log,
	}
}

// GetOrCompute returns the cached Outputs for key, running the graph
// through the executor on a miss. A NodeFailure or InvalidGraph from
// the executor is returned unwrapped so callers can match on it the
// same way graphexec callers do.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, graph *graphexec.Graph, settings graphexec.Settings) (*Outputs, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.order.MoveToFront(e.node)
		c.mu.Unlock()
		return e.outputs, nil
	}
	c.mu.Unlock()

	res, err := c.executor.Execute(ctx, graph, settings)
	if err != nil {
		return nil, err
	}
	outputs := fromExecutorResult(res)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		// Lost a race against a concurrent compute for the same key;
		// keep whichever landed first and discard this one.
		c.order.MoveToFront(e.node)
		return e.outputs, nil
	}
	node := c.order.PushFront(key)
	c.entries[key] = &entry{outputs: outputs, node: node}
	c.evictIfOverCapacity()
	return outputs, nil
}

func (c *Cache) evictIfOverCapacity() {
	if c.capacity <= 0 {
		return
	}
	for len(c.entries) > c.capacity {
		oldest, ok := c.order.RemoveOldest()
		if !ok {
			return
		}
		delete(c.entries, oldest)
		c.log.Debugf("region: evicted %+v (over capacity %d)", oldest, c.capacity)
	}
}

// InvalidateRegion drops every cached entry for (regionX, regionZ)
// regardless of graphHash or seed, matching the invalidate-region API
// endpoint's semantics (spec.md §6).
func (c *Cache) InvalidateRegion(regionX, regionZ int32) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.entries {
		if key.RegionX == regionX && key.RegionZ == regionZ {
			c.order.Remove(e.node)
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateWorld clears the entire cache.
func (c *Cache) InvalidateWorld() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := len(c.entries)
	c.entries = make(map[Key]*entry)
	c.order = newLRUList()
	return removed
}

// Len reports the number of cached regions, mostly for tests/metrics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
