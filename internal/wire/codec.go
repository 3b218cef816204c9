// Package wire implements the bit-exact little-endian serialization of
// an SVDAG chunk payload used by the chunk-request HTTP endpoint.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/gekko3d/voxelstream/internal/svdag"
)

// Magic identifies the format: 'SVDA' read little-endian as a u32.
const Magic uint32 = 0x53564441

// Version is the current wire format revision.
const Version uint32 = 1

const headerWords = 10 // magic..opaqueNodeCount, see field table below

// InvalidChunk reports a malformed payload on decode: bad magic, a
// truncated body, or an inconsistent count field.
type InvalidChunk struct {
	Reason string
}

func (e *InvalidChunk) Error() string {
	return fmt.Sprintf("wire: invalid chunk payload: %s", e.Reason)
}

// Encode serializes dag into the wire format:
//
//	offset  size  field
//	0       4     magic        = 0x53564441 ('SVDA')
//	4       4     version
//	8       4     chunkSize    (expected 32)
//	12      4     materialNodeCount
//	16      4     materialLeafCount
//	20      4     materialRootIdx
//	24      4     flags
//	28      4     checksum          (reserved; always 0)
//	32      4     opaqueRootIdx     (legacy mirror; copy of materialRootIdx)
//	36      4     opaqueNodeCount   (legacy mirror; always 0)
//	40      4*N   material nodes
//	        4*L   material leaves
//	        4*M   opaque nodes      (M = opaqueNodeCount, always empty)
//	        4*?   opaque leaves     (rest of payload; always empty)
//
// The opaque* fields exist only to keep this format readable by
// decoders expecting the legacy dual-tree layout; current builds write
// opaqueRootIdx as a copy of materialRootIdx and emit no opaque node or
// leaf words (see DESIGN.md's Open Questions entry).
func Encode(dag *svdag.Chunk, chunkSize uint32) []byte {
	nodeCount := uint32(len(dag.Nodes))
	leafCount := uint32(len(dag.Leaves))

	buf := make([]byte, (headerWords+int(nodeCount)+int(leafCount))*4)

	binary.LittleEndian.PutUint32(buf[0:], Magic)
	binary.LittleEndian.PutUint32(buf[4:], Version)
	binary.LittleEndian.PutUint32(buf[8:], chunkSize)
	binary.LittleEndian.PutUint32(buf[12:], nodeCount)
	binary.LittleEndian.PutUint32(buf[16:], leafCount)
	binary.LittleEndian.PutUint32(buf[20:], dag.RootIdx)
	binary.LittleEndian.PutUint32(buf[24:], 0) // flags
	binary.LittleEndian.PutUint32(buf[28:], 0) // checksum, reserved
	binary.LittleEndian.PutUint32(buf[32:], dag.RootIdx)
	binary.LittleEndian.PutUint32(buf[36:], 0) // opaqueNodeCount

	off := headerWords * 4
	for _, w := range dag.Nodes {
		binary.LittleEndian.PutUint32(buf[off:], w)
		off += 4
	}
	for _, w := range dag.Leaves {
		binary.LittleEndian.PutUint32(buf[off:], w)
		off += 4
	}
	return buf
}

// Decode parses a wire payload back into an *svdag.Chunk. It round
// trips any payload produced by Encode; opaque node/leaf data, if
// present, is parsed only far enough to validate length and then
// discarded.
func Decode(data []byte) (*svdag.Chunk, uint32, error) {
	if len(data) < headerWords*4 {
		return nil, 0, &InvalidChunk{Reason: fmt.Sprintf("payload too short: %d bytes", len(data))}
	}

	magic := binary.LittleEndian.Uint32(data[0:])
	if magic != Magic {
		return nil, 0, &InvalidChunk{Reason: fmt.Sprintf("bad magic: 0x%08x", magic)}
	}

	chunkSize := binary.LittleEndian.Uint32(data[8:])
	nodeCount := binary.LittleEndian.Uint32(data[12:])
	leafCount := binary.LittleEndian.Uint32(data[16:])
	rootIdx := binary.LittleEndian.Uint32(data[20:])
	opaqueNodeCount := binary.LittleEndian.Uint32(data[36:])

	need := headerWords*4 + int(nodeCount)*4 + int(leafCount)*4
	if len(data) < need {
		return nil, 0, &InvalidChunk{Reason: fmt.Sprintf("truncated body: need >= %d bytes, got %d", need, len(data))}
	}

	off := headerWords * 4
	nodes := make([]uint32, nodeCount)
	for i := range nodes {
		nodes[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	leaves := make([]uint32, leafCount)
	for i := range leaves {
		leaves[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}

	// Legacy opaque tree, if any: validate its length is present but
	// don't materialize it into anything — current builds never write
	// opaqueNodeCount > 0.
	off += int(opaqueNodeCount) * 4
	if off > len(data) {
		return nil, 0, &InvalidChunk{Reason: "truncated opaque node section"}
	}

	return &svdag.Chunk{RootIdx: rootIdx, Nodes: nodes, Leaves: leaves}, chunkSize, nil
}
