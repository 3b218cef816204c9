package graphexec

import (
	"hash/maphash"
	"math"
)

// NodeCache memoizes node results by (type, canonical params, input
// fingerprint). The input fingerprint samples the first, middle, and
// last element of each input buffer plus its length — intentionally
// approximate. A collision produces a wrong cached result;
// TestFingerprintCollisionSearch in cache_test.go is the property test
// the design notes call for.
type NodeCache struct {
	entries map[uint64]map[string]*Buffer
}

// NewNodeCache returns an empty cache.
func NewNodeCache() *NodeCache {
	return &NodeCache{entries: make(map[uint64]map[string]*Buffer)}
}

var cacheKeySeed = maphash.MakeSeed()

// Key computes the structural cache key for a node invocation.
// orderedInputs must list input names in the node's declared Inputs()
// order so that the key is independent of map iteration order.
func (c *NodeCache) Key(nodeType string, params map[string]any, orderedInputs []string, inputs map[string]*Buffer) uint64 {
	var h maphash.Hash
	h.SetSeed(cacheKeySeed)
	h.WriteString(nodeType)
	h.WriteByte(0)
	h.Write(canonicalParams(params))
	h.WriteByte(0)
	for _, name := range orderedInputs {
		h.WriteString(name)
		h.WriteByte(0)
		buf := inputs[name]
		fingerprintInto(&h, buf)
	}
	return h.Sum64()
}

// fingerprintInto writes a buffer's approximate fingerprint (length plus
// first/middle/last samples) into the running hash.
func fingerprintInto(h *maphash.Hash, b *Buffer) {
	if b == nil || len(b.Data) == 0 {
		h.WriteByte(0)
		return
	}
	n := len(b.Data)
	writeFloat(h, float64(n))
	writeFloat(h, float64(b.Data[0]))
	writeFloat(h, float64(b.Data[n/2]))
	writeFloat(h, float64(b.Data[n-1]))
}

func writeFloat(h *maphash.Hash, f float64) {
	var buf [8]byte
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	h.Write(buf[:])
}

// Get returns a cached result and whether it was present.
func (c *NodeCache) Get(key uint64) (map[string]*Buffer, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a node's outputs under key.
func (c *NodeCache) Put(key uint64, outputs map[string]*Buffer) {
	c.entries[key] = outputs
}

// Len reports the number of cached entries, mostly for tests/metrics.
func (c *NodeCache) Len() int { return len(c.entries) }
