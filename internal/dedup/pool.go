// Package dedup is the content-addressed payload pool backing the
// Chunk Cache: identical SVDAG payloads across different chunk
// coordinates are stored once and reference-counted.
package dedup

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/gekko3d/voxelstream/internal/svdag"
)

// Hash is the content hash of a payload's concatenated (nodes, leaves)
// byte sequence.
type Hash [sha256.Size]byte

// ContentHash computes the pool key for dag: sha256 over rootIdx,
// nodes, and leaves in wire order, so two structurally-identical SVDAG
// payloads always hash identically regardless of how they were built.
func ContentHash(dag *svdag.Chunk) Hash {
	h := sha256.New()
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], dag.RootIdx)
	h.Write(word[:])
	for _, w := range dag.Nodes {
		binary.LittleEndian.PutUint32(word[:], w)
		h.Write(word[:])
	}
	for _, w := range dag.Leaves {
		binary.LittleEndian.PutUint32(word[:], w)
		h.Write(word[:])
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// PoolEntry is one deduplicated payload. RefCount tracks how many
// Chunk Cache entries currently reference it; invariant 4 requires
// RefCount == the number of cache entries pointing at this entry's ID
// at all times.
type PoolEntry struct {
	ID       uint32
	Payload  *svdag.Chunk
	RefCount uint32
}

// Pool is the reference-counted content-addressed store.
type Pool struct {
	mu      sync.Mutex
	byHash  map[Hash]uint32
	entries map[uint32]*PoolEntry
	nextID  uint32
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{
		byHash:  make(map[Hash]uint32),
		entries: make(map[uint32]*PoolEntry),
	}
}

// Acquire inserts dag if its content hash hasn't been seen before
// (RefCount starts at 1), or increments the RefCount of the existing
// entry for that hash. Returns the entry's pool id.
func (p *Pool) Acquire(dag *svdag.Chunk) uint32 {
	hash := ContentHash(dag)

	p.mu.Lock()
	defer p.mu.Unlock()

	if id, ok := p.byHash[hash]; ok {
		p.entries[id].RefCount++
		return id
	}

	id := p.nextID
	p.nextID++
	p.byHash[hash] = id
	p.entries[id] = &PoolEntry{ID: id, Payload: dag, RefCount: 1}
	return id
}

// Release decrements the RefCount for id, freeing the entry entirely
// once it reaches zero. Releasing an id that isn't present is a no-op
// — a chunk fetch that completes after its cache entry was evicted and
// already released must not double-decrement (spec.md §4.7
// cancellation note).
func (p *Pool) Release(id uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[id]
	if !ok {
		return
	}
	if entry.RefCount > 0 {
		entry.RefCount--
	}
	if entry.RefCount == 0 {
		delete(p.entries, id)
		for hash, hid := range p.byHash {
			if hid == id {
				delete(p.byHash, hash)
				break
			}
		}
	}
}

// Get returns the entry for id, mostly for tests and metrics.
func (p *Pool) Get(id uint32) (*PoolEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	return e, ok
}

// Len reports the number of distinct payloads currently pooled.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
