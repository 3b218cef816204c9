package gpuloop

import "github.com/gekko3d/voxelstream/internal/voxel"

// emptySlot marks a hash table bucket with no chunk assigned.
const emptySlot uint32 = 0xFFFFFFFF

// maxProbe bounds the linear probe the shader (and this mirror) will
// walk before giving up on a lookup.
const maxProbe = 64

// wordsPerBucket: cx, cy, cz, metadata slot index.
const wordsPerBucket = 4

// hashCoord mixes a chunk coordinate into a table bucket using the
// same large-prime multiply-and-xor the teacher's SpatialHashGrid uses
// for its cell hash (mod_spatialgrid.go's hashKey), generalized from
// float cell indices to integer chunk coordinates.
func hashCoord(c voxel.ChunkCoord, capacity uint32) uint32 {
	const p1, p2, p3 = 73856093, 19349663, 83492791
	h := uint32(c.CX)*p1 ^ uint32(c.CY)*p2 ^ uint32(c.CZ)*p3
	return h % capacity
}

// nextPow2 returns the smallest power of two >= v.
func nextPow2(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	p := uint32(1)
	for p < v {
		p <<= 1
	}
	return p
}

// hashTable is the CPU-side mirror of the GPU lookup buffer: a flat
// open-addressing table mapping a chunk coordinate to the metadata
// buffer slot holding its resident chunk. Capacity is sized to
// 4*chunkCount per spec, rounded up to a power of two, rebuilt
// whenever the resident set's composition changes.
type hashTable struct {
	capacity uint32
	occupied []bool
	keys     []voxel.ChunkCoord
	slots    []uint32
}

// buildHashTable packs coordToSlot (chunk coord -> metadata index) into
// an open-addressing table sized to the next power of two >= 4*len.
func buildHashTable(coordToSlot map[voxel.ChunkCoord]uint32) *hashTable {
	capacity := nextPow2(uint32(len(coordToSlot)) * 4)
	if capacity == 0 {
		capacity = 1
	}
	t := &hashTable{
		capacity: capacity,
		occupied: make([]bool, capacity),
		keys:     make([]voxel.ChunkCoord, capacity),
		slots:    make([]uint32, capacity),
	}
	for coord, slot := range coordToSlot {
		t.insert(coord, slot)
	}
	return t
}

// insert records that coord resolves to metaSlot, linearly probing on
// collision up to maxProbe buckets.
func (t *hashTable) insert(coord voxel.ChunkCoord, metaSlot uint32) {
	i := hashCoord(coord, t.capacity)
	for p := 0; p < maxProbe; p++ {
		idx := (i + uint32(p)) % t.capacity
		if !t.occupied[idx] {
			t.occupied[idx] = true
			t.keys[idx] = coord
			t.slots[idx] = metaSlot
			return
		}
	}
}

// lookup mirrors the shader's probe sequence, returning the metadata
// slot for coord or (0, false) if absent within the probe bound.
func (t *hashTable) lookup(coord voxel.ChunkCoord) (uint32, bool) {
	i := hashCoord(coord, t.capacity)
	for p := 0; p < maxProbe; p++ {
		idx := (i + uint32(p)) % t.capacity
		if !t.occupied[idx] {
			return 0, false
		}
		if t.keys[idx] == coord {
			return t.slots[idx], true
		}
	}
	return 0, false
}

// encode packs the table into the little-endian uint32 words the GPU
// buffer holds directly: wordsPerBucket words per bucket (cx, cy, cz,
// metadata slot), emptySlot in the slot word marking a hole.
func (t *hashTable) encode() []uint32 {
	out := make([]uint32, 0, int(t.capacity)*wordsPerBucket)
	for i := uint32(0); i < t.capacity; i++ {
		if !t.occupied[i] {
			out = append(out, 0, 0, 0, emptySlot)
			continue
		}
		k := t.keys[i]
		out = append(out, uint32(k.CX), uint32(k.CY), uint32(k.CZ), t.slots[i])
	}
	return out
}
