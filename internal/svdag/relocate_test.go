package svdag

import (
	"testing"

	"github.com/gekko3d/voxelstream/internal/voxel"
)

// TestRelocateLeavesChildPointersRelative pins spec.md §4.7: "Leaf
// indices are rewritten to absolute positions; inner-node child
// pointers stay relative." Only leaf-table indices may change;
// header words and inner-node child indices must be byte-identical to
// the unrelocated chunk, and rootIdx — itself a pointer into the
// chunk's own node arena — must likewise be untouched.
func TestRelocateLeavesChildPointersRelative(t *testing.T) {
	chunk := voxel.NewChunk(voxel.ChunkCoord{})
	chunk.Set(0, 0, 0, 1)
	chunk.Set(31, 31, 31, 2)
	dag := Build(chunk)

	leafBase := uint32(7)

	nodes, leaves, rootIdx := Relocate(dag, leafBase)

	if rootIdx != dag.RootIdx {
		t.Fatalf("expected rootIdx to stay chunk-relative (%d), got %d", dag.RootIdx, rootIdx)
	}

	if len(nodes) != len(dag.Nodes) {
		t.Fatalf("expected relocated node array same length, got %d want %d", len(nodes), len(dag.Nodes))
	}

	i := 0
	for i < len(dag.Nodes) {
		tag, mask := decodeHeader(dag.Nodes[i])
		if nodes[i] != dag.Nodes[i] {
			t.Fatalf("header word at %d must be unchanged, got %d want %d", i, nodes[i], dag.Nodes[i])
		}
		i++
		if tag == tagLeaf {
			want := dag.Nodes[i] + leafBase
			if nodes[i] != want {
				t.Fatalf("leaf index at %d must shift by leafBase: got %d want %d", i, nodes[i], want)
			}
			i++
			continue
		}
		n := popcount8(mask)
		for c := 0; c < n; c++ {
			if nodes[i] != dag.Nodes[i] {
				t.Fatalf("inner-node child pointer at %d must stay chunk-relative: got %d want %d", i, nodes[i], dag.Nodes[i])
			}
			i++
		}
	}

	if len(leaves) != len(dag.Leaves) {
		t.Fatalf("expected leaves copied verbatim, got len %d want %d", len(leaves), len(dag.Leaves))
	}
	for idx := range dag.Leaves {
		if leaves[idx] != dag.Leaves[idx] {
			t.Fatalf("leaf table entry %d must be copied verbatim: got %d want %d", idx, leaves[idx], dag.Leaves[idx])
		}
	}
}

func TestRelocateEmptyChunk(t *testing.T) {
	dag := Build(voxel.NewChunk(voxel.ChunkCoord{}))

	nodes, leaves, rootIdx := Relocate(dag, 5)
	if nodes != nil || leaves != nil {
		t.Fatalf("expected nil nodes/leaves for an empty chunk, got %v / %v", nodes, leaves)
	}
	if rootIdx != EmptyRootIdx {
		t.Fatalf("expected EmptyRootIdx, got %d", rootIdx)
	}
}
