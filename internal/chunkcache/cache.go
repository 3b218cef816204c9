// Package chunkcache is the client-side cache of decoded SVDAG chunks,
// indexed by coordinate and backed by a reference-counted dedup pool.
package chunkcache

import (
	"sync"

	"github.com/gekko3d/voxelstream/internal/dedup"
	"github.com/gekko3d/voxelstream/internal/svdag"
	"github.com/gekko3d/voxelstream/internal/voxel"
)

// Entry is one cached chunk: its coordinate, the timestamps the
// eviction controller scores on, the content hash it was admitted
// under, and the dedup pool id backing its payload.
type Entry struct {
	Coord          voxel.ChunkCoord
	LastSeenMillis int64
	LoadedMillis   int64
	SVDAGHash      dedup.Hash
	PoolRef        uint32
}

// Cache is the coordinate-indexed chunk table. Mutated only by the
// request loop and the eviction controller it drives (spec.md §5).
type Cache struct {
	mu      sync.Mutex
	entries map[voxel.ChunkCoord]*Entry
	pool    *dedup.Pool
}

// New builds an empty cache over pool.
func New(pool *dedup.Pool) *Cache {
	return &Cache{entries: make(map[voxel.ChunkCoord]*Entry), pool: pool}
}

// Insert admits dag for coord at nowMillis, acquiring a dedup pool
// reference. If coord is already cached, the old entry's pool
// reference is released first — this is the "fetch completed after
// eviction" cancellation case (spec.md §4.7): the payload is still
// admitted cheaply and marked as just-loaded, and because Release on
// an already-freed id is a no-op, refcounts never double-count.
func (c *Cache) Insert(coord voxel.ChunkCoord, dag *svdag.Chunk, nowMillis int64) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[coord]; ok {
		c.pool.Release(old.PoolRef)
	}

	hash := dedup.ContentHash(dag)
	id := c.pool.Acquire(dag)
	entry := &Entry{
		Coord:          coord,
		LastSeenMillis: nowMillis,
		LoadedMillis:   nowMillis,
		SVDAGHash:      hash,
		PoolRef:        id,
	}
	c.entries[coord] = entry
	return entry
}

// Touch updates an existing entry's LastSeenMillis. Per spec.md §3,
// lastSeen is updated only when the GPU request buffer references the
// chunk — never on arbitrary cache reads.
func (c *Cache) Touch(coord voxel.ChunkCoord, nowMillis int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[coord]
	if !ok {
		return false
	}
	e.LastSeenMillis = nowMillis
	return true
}

// Get returns the entry for coord without mutating lastSeen.
func (c *Cache) Get(coord voxel.ChunkCoord) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[coord]
	return e, ok
}

// Evict removes coord's entry and releases its dedup pool reference.
// Reports whether an entry was present.
func (c *Cache) Evict(coord voxel.ChunkCoord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[coord]
	if !ok {
		return false
	}
	delete(c.entries, coord)
	c.pool.Release(e.PoolRef)
	return true
}

// Len reports the number of cached chunks.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot returns a copy of all entries, for the eviction controller
// and the GPU request loop's repack step to scan without holding the
// cache lock for the duration of their work.
func (c *Cache) Snapshot() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}
