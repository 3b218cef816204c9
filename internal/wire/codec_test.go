package wire

import (
	"encoding/binary"
	"testing"

	"github.com/gekko3d/voxelstream/internal/svdag"
	"github.com/gekko3d/voxelstream/internal/voxel"
)

func sampleDAG() *svdag.Chunk {
	chunk := voxel.NewChunk(voxel.ChunkCoord{})
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				chunk.Set(x, y, z, 3)
			}
		}
	}
	chunk.Set(31, 0, 0, 9)
	return svdag.Build(chunk)
}

func TestEncodeHeaderLayout(t *testing.T) {
	dag := sampleDAG()
	buf := Encode(dag, voxel.ChunkSize)

	if got := binary.LittleEndian.Uint32(buf[0:]); got != Magic {
		t.Fatalf("offset 0 (magic): want 0x%08x, got 0x%08x", Magic, got)
	}
	if got := binary.LittleEndian.Uint32(buf[4:]); got != Version {
		t.Fatalf("offset 4 (version): want %d, got %d", Version, got)
	}
	if got := binary.LittleEndian.Uint32(buf[8:]); got != voxel.ChunkSize {
		t.Fatalf("offset 8 (chunkSize): want %d, got %d", voxel.ChunkSize, got)
	}
	if got := binary.LittleEndian.Uint32(buf[12:]); got != uint32(len(dag.Nodes)) {
		t.Fatalf("offset 12 (materialNodeCount): want %d, got %d", len(dag.Nodes), got)
	}
	if got := binary.LittleEndian.Uint32(buf[16:]); got != uint32(len(dag.Leaves)) {
		t.Fatalf("offset 16 (materialLeafCount): want %d, got %d", len(dag.Leaves), got)
	}
	if got := binary.LittleEndian.Uint32(buf[20:]); got != dag.RootIdx {
		t.Fatalf("offset 20 (materialRootIdx): want %d, got %d", dag.RootIdx, got)
	}
	if got := binary.LittleEndian.Uint32(buf[28:]); got != 0 {
		t.Fatalf("offset 28 (checksum): want 0 (reserved), got %d", got)
	}
	if got := binary.LittleEndian.Uint32(buf[36:]); got != 0 {
		t.Fatalf("offset 36 (opaqueNodeCount): want 0, got %d", got)
	}

	wantLen := (headerWords + len(dag.Nodes) + len(dag.Leaves)) * 4
	if len(buf) != wantLen {
		t.Fatalf("payload length: want %d, got %d", wantLen, len(buf))
	}
}

func TestDecodeRoundTrips(t *testing.T) {
	dag := sampleDAG()
	buf := Encode(dag, voxel.ChunkSize)

	decoded, chunkSize, err := Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunkSize != voxel.ChunkSize {
		t.Fatalf("chunkSize: want %d, got %d", voxel.ChunkSize, chunkSize)
	}
	if decoded.RootIdx != dag.RootIdx {
		t.Fatalf("rootIdx: want %d, got %d", dag.RootIdx, decoded.RootIdx)
	}
	if len(decoded.Nodes) != len(dag.Nodes) {
		t.Fatalf("nodes length: want %d, got %d", len(dag.Nodes), len(decoded.Nodes))
	}
	for i := range dag.Nodes {
		if decoded.Nodes[i] != dag.Nodes[i] {
			t.Fatalf("node word %d: want %d, got %d", i, dag.Nodes[i], decoded.Nodes[i])
		}
	}
	for i := range dag.Leaves {
		if decoded.Leaves[i] != dag.Leaves[i] {
			t.Fatalf("leaf word %d: want %d, got %d", i, dag.Leaves[i], decoded.Leaves[i])
		}
	}
}

func TestDecodeEmptyChunkRoundTrips(t *testing.T) {
	empty := &svdag.Chunk{RootIdx: svdag.EmptyRootIdx}
	buf := Encode(empty, voxel.ChunkSize)

	decoded, _, err := Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decoded.IsEmpty() {
		t.Fatalf("expected decoded chunk to report empty, rootIdx=%d", decoded.RootIdx)
	}
	if len(decoded.Nodes) != 0 || len(decoded.Leaves) != 0 {
		t.Fatalf("expected no node/leaf words for an empty chunk")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	dag := sampleDAG()
	buf := Encode(dag, voxel.ChunkSize)
	buf[0] ^= 0xFF

	_, _, err := Decode(buf)
	if err == nil {
		t.Fatal("expected error for corrupted magic")
	}
	if _, ok := err.(*InvalidChunk); !ok {
		t.Fatalf("expected *InvalidChunk, got %T: %v", err, err)
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	dag := sampleDAG()
	buf := Encode(dag, voxel.ChunkSize)

	_, _, err := Decode(buf[:len(buf)-4])
	if err == nil {
		t.Fatal("expected error for truncated payload")
	}
	if _, ok := err.(*InvalidChunk); !ok {
		t.Fatalf("expected *InvalidChunk, got %T: %v", err, err)
	}
}

func TestDecodeRejectsShortHeader(t *testing.T) {
	_, _, err := Decode(make([]byte, 10))
	if err == nil {
		t.Fatal("expected error for a payload shorter than the header")
	}
}
