package gpuloop

import (
	"encoding/binary"

	"github.com/gekko3d/voxelstream/internal/chunkcache"
	"github.com/gekko3d/voxelstream/internal/dedup"
	"github.com/gekko3d/voxelstream/internal/svdag"
	"github.com/gekko3d/voxelstream/internal/voxel"
)

// metaWords is the word count of one metadata record: worldOffset.xyz,
// chunkSize, rootIdx, nodeCount, nodeBaseOffset (spec.md §4.7 step 4).
const metaWords = 7

// snapshot is the result of one repack pass: the host-side byte
// buffers ready for upload, matching the buffer layout in spec.md
// §4.7 exactly. Held separately from any wgpu resource so the repack
// logic is testable without a GPU device.
type snapshot struct {
	metadata    []byte
	nodes       []byte
	leaves      []byte
	hashTable   []byte
	coordToSlot map[voxel.ChunkCoord]uint32
}

// repack walks the resident chunk cache (through the dedup pool for
// payloads) and builds the metadata/nodes/leaves buffers plus the
// coordinate hash table. Leaf-table indices are rewritten to absolute
// positions in the concatenated leaves buffer via svdag.Relocate;
// inner-node child pointers (and rootIdx) stay chunk-relative per
// spec.md §4.7 — nodeBaseOffset in the metadata record is what a
// consumer adds to resolve them.
func repack(entries []*chunkcache.Entry, pool *dedup.Pool) *snapshot {
	coordToSlot := make(map[voxel.ChunkCoord]uint32, len(entries))

	metaBuf := make([]uint32, 0, len(entries)*metaWords)
	var nodes, leaves []uint32
	var metaSlot uint32

	for _, e := range entries {
		pe, ok := pool.Get(e.PoolRef)
		if !ok {
			continue
		}
		dag := pe.Payload

		nodeBase := uint32(len(nodes))
		leafBase := uint32(len(leaves))

		relocatedNodes, relocatedLeaves, rootIdx := svdag.Relocate(dag, leafBase)

		origin := e.Coord.WorldOrigin()
		metaBuf = append(metaBuf,
			uint32(origin[0]), uint32(origin[1]), uint32(origin[2]),
			voxel.ChunkSize,
			rootIdx,
			uint32(len(dag.Nodes)),
			nodeBase,
		)

		nodes = append(nodes, relocatedNodes...)
		leaves = append(leaves, relocatedLeaves...)

		coordToSlot[e.Coord] = metaSlot
		metaSlot++
	}

	ht := buildHashTable(coordToSlot)

	return &snapshot{
		metadata:    uint32sToBytes(metaBuf),
		nodes:       uint32sToBytes(nodes),
		leaves:      uint32sToBytes(leaves),
		hashTable:   uint32sToBytes(ht.encode()),
		coordToSlot: coordToSlot,
	}
}

func uint32sToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}
