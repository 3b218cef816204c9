package svdag

import (
	"testing"

	"github.com/gekko3d/voxelstream/internal/voxel"
)

func TestBuildAllAirChunk(t *testing.T) {
	chunk := voxel.NewChunk(voxel.ChunkCoord{})
	dag := Build(chunk)

	if !dag.IsEmpty() {
		t.Fatalf("expected empty dag, got rootIdx=%d len(nodes)=%d", dag.RootIdx, len(dag.Nodes))
	}
	if len(dag.Nodes) != 0 {
		t.Fatalf("expected zero nodes for an all-air chunk, got %d", len(dag.Nodes))
	}
}

func TestBuildUniformChunkCollapsesToSingleLeaf(t *testing.T) {
	chunk := voxel.NewChunk(voxel.ChunkCoord{})
	for i := range chunk.Voxels {
		chunk.Voxels[i] = 7
	}

	dag := Build(chunk)

	if dag.IsEmpty() {
		t.Fatal("expected non-empty dag")
	}
	if len(dag.Nodes) != 2 {
		t.Fatalf("expected a single 2-word leaf record, got %d words", len(dag.Nodes))
	}
	tag, _ := decodeHeader(dag.Nodes[dag.RootIdx])
	if tag != tagLeaf {
		t.Fatalf("expected root to be a leaf record, got tag %d", tag)
	}
	if got := At(dag, 0, 0, 0); got != 7 {
		t.Fatalf("expected material 7 at (0,0,0), got %d", got)
	}
	if got := At(dag, 31, 31, 31); got != 7 {
		t.Fatalf("expected material 7 at (31,31,31), got %d", got)
	}
}

func TestBuildRoundTripsArbitraryChunk(t *testing.T) {
	chunk := voxel.NewChunk(voxel.ChunkCoord{})
	// A scattered, non-trivial pattern: a solid octant, a hollow shell,
	// and an isolated single voxel.
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				chunk.Set(x, y, z, 1)
			}
		}
	}
	for x := 20; x < 28; x++ {
		for z := 20; z < 28; z++ {
			chunk.Set(x, 5, z, 2)
		}
	}
	chunk.Set(31, 31, 31, 9)

	dag := Build(chunk)

	for x := 0; x < voxel.ChunkSize; x += 3 {
		for y := 0; y < voxel.ChunkSize; y += 3 {
			for z := 0; z < voxel.ChunkSize; z += 3 {
				want := chunk.At(x, y, z)
				got := At(dag, x, y, z)
				if want != got {
					t.Fatalf("mismatch at (%d,%d,%d): want %d, got %d", x, y, z, want, got)
				}
			}
		}
	}
}

func TestBuildDeduplicatesIdenticalSubtrees(t *testing.T) {
	chunk := voxel.NewChunk(voxel.ChunkCoord{})
	// Two identical 2x2x2 solid blocks, far enough apart to force
	// separate octree branches, but structurally identical subtrees.
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				chunk.Set(x, y, z, 5)
				chunk.Set(16+x, 16+y, 16+z, 5)
			}
		}
	}

	dag := Build(chunk)

	// Both identical leaves should dedup to one leaf record: exactly
	// one leaf material in the leaves table.
	if len(dag.Leaves) != 1 {
		t.Fatalf("expected 1 deduplicated leaf material, got %d", len(dag.Leaves))
	}
}

func TestBuildDeterministic(t *testing.T) {
	chunk := voxel.NewChunk(voxel.ChunkCoord{})
	for i := 0; i < len(chunk.Voxels); i += 7 {
		chunk.Voxels[i] = voxel.Material(i%5 + 1)
	}

	d1 := Build(chunk)
	d2 := Build(chunk)

	if d1.RootIdx != d2.RootIdx || len(d1.Nodes) != len(d2.Nodes) || len(d1.Leaves) != len(d2.Leaves) {
		t.Fatal("expected identical builder output for identical input")
	}
	for i := range d1.Nodes {
		if d1.Nodes[i] != d2.Nodes[i] {
			t.Fatalf("node word %d differs: %d != %d", i, d1.Nodes[i], d2.Nodes[i])
		}
	}
}

func TestInnerNodeChildMaskPopcountBounds(t *testing.T) {
	chunk := voxel.NewChunk(voxel.ChunkCoord{})
	chunk.Set(0, 0, 0, 1)
	chunk.Set(31, 31, 31, 2)

	dag := Build(chunk)

	for i := 0; i < len(dag.Nodes); {
		tag, mask := decodeHeader(dag.Nodes[i])
		if tag == tagLeaf {
			i += 2
			continue
		}
		n := popcount8(mask)
		if n < 1 || n > 8 {
			t.Fatalf("inner node at word %d has invalid popcount %d", i, n)
		}
		i += 1 + n
	}
}
