package svdag

import (
	"encoding/binary"

	"github.com/gekko3d/voxelstream/internal/voxel"
)

// cellKind distinguishes the three shapes a build() call can return:
// a fully-air cell, a cell uniformly filled by one material (not yet
// materialized into a node record), or an already-built node.
type cellKind int

const (
	cellEmpty cellKind = iota
	cellUniform
	cellNode
)

type cellResult struct {
	kind     cellKind
	material voxel.Material
	nodeIdx  uint32
}

// builder interns node records and leaf materials so identical
// subtrees and identical materials are stored exactly once.
type builder struct {
	nodes       []uint32
	leaves      []uint32
	nodeByBytes map[string]uint32
	leafByMat   map[voxel.Material]uint32
}

// Build compresses a dense chunk into its SVDAG form. Deterministic:
// byte-identical input chunks always produce byte-identical output
// (invariant 2).
func Build(chunk *voxel.Chunk) *Chunk {
	b := &builder{
		nodeByBytes: make(map[string]uint32),
		leafByMat:   make(map[voxel.Material]uint32),
	}

	root := b.build(chunk, 0, 0, 0, voxel.ChunkSize)

	out := &Chunk{}
	switch root.kind {
	case cellEmpty:
		out.RootIdx = EmptyRootIdx
	case cellUniform:
		out.RootIdx = b.materialize(root)
	case cellNode:
		out.RootIdx = root.nodeIdx
	}
	out.Nodes = b.nodes
	out.Leaves = b.leaves
	return out
}

// build recurses over an octree cell of the given size (a power of two
// from 32 down to 1), returning the cell's unmaterialized result.
func (b *builder) build(chunk *voxel.Chunk, x, y, z, size int) cellResult {
	if size == 1 {
		m := chunk.At(x, y, z)
		if m == voxel.Air {
			return cellResult{kind: cellEmpty}
		}
		return cellResult{kind: cellUniform, material: m}
	}

	half := size / 2
	var children [8]cellResult
	i := 0
	for dz := 0; dz < size; dz += half {
		for dy := 0; dy < size; dy += half {
			for dx := 0; dx < size; dx += half {
				children[i] = b.build(chunk, x+dx, y+dy, z+dz, half)
				i++
			}
		}
	}

	if allEmpty(children[:]) {
		return cellResult{kind: cellEmpty}
	}
	if mat, ok := allUniformSameMaterial(children[:]); ok {
		return cellResult{kind: cellUniform, material: mat}
	}

	var childMask uint8
	childIndices := make([]uint32, 0, 8)
	for octant, c := range children {
		if c.kind == cellEmpty {
			continue
		}
		childMask |= 1 << uint(octant)
		childIndices = append(childIndices, b.materialize(c))
	}

	return cellResult{kind: cellNode, nodeIdx: b.internInner(childMask, childIndices)}
}

func allEmpty(children []cellResult) bool {
	for _, c := range children {
		if c.kind != cellEmpty {
			return false
		}
	}
	return true
}

// allUniformSameMaterial reports whether every octant is present (no
// air gaps) and uniformly the same material, meaning the whole cell
// can collapse to one leaf instead of an inner node with eight leaf
// children.
func allUniformSameMaterial(children []cellResult) (voxel.Material, bool) {
	first := children[0]
	if first.kind != cellUniform {
		return 0, false
	}
	for _, c := range children[1:] {
		if c.kind != cellUniform || c.material != first.material {
			return 0, false
		}
	}
	return first.material, true
}

// materialize turns a cellResult into a concrete node-array offset,
// creating (and deduplicating) a leaf record if the result was a
// not-yet-materialized uniform cell.
func (b *builder) materialize(c cellResult) uint32 {
	if c.kind == cellNode {
		return c.nodeIdx
	}
	return b.internLeaf(c.material)
}

// internLeaf returns the node offset of a leaf record pointing at
// material, reusing an existing record if this exact (tag, leafIdx)
// pair was already built — the spec's "material-level dedup".
func (b *builder) internLeaf(mat voxel.Material) uint32 {
	leafIdx, ok := b.leafByMat[mat]
	if !ok {
		leafIdx = uint32(len(b.leaves))
		b.leaves = append(b.leaves, uint32(mat))
		b.leafByMat[mat] = leafIdx
	}

	key := canonicalLeafKey(leafIdx)
	if offset, ok := b.nodeByBytes[key]; ok {
		return offset
	}

	offset := uint32(len(b.nodes))
	b.nodes = append(b.nodes, encodeHeader(tagLeaf, 0), leafIdx)
	b.nodeByBytes[key] = offset
	return offset
}

// internInner returns the node offset of an inner-node record with the
// given childMask and (already materialized) child offsets in octant
// order, reusing an existing record if this exact byte sequence was
// already built.
func (b *builder) internInner(childMask uint8, childIndices []uint32) uint32 {
	key := canonicalInnerKey(childMask, childIndices)
	if offset, ok := b.nodeByBytes[key]; ok {
		return offset
	}

	offset := uint32(len(b.nodes))
	b.nodes = append(b.nodes, encodeHeader(tagInner, childMask))
	b.nodes = append(b.nodes, childIndices...)
	b.nodeByBytes[key] = offset
	return offset
}

func canonicalLeafKey(leafIdx uint32) string {
	buf := make([]byte, 5)
	buf[0] = byte(tagLeaf)
	binary.LittleEndian.PutUint32(buf[1:], leafIdx)
	return string(buf)
}

func canonicalInnerKey(childMask uint8, childIndices []uint32) string {
	buf := make([]byte, 2+4*len(childIndices))
	buf[0] = byte(tagInner)
	buf[1] = childMask
	for i, idx := range childIndices {
		binary.LittleEndian.PutUint32(buf[2+4*i:], idx)
	}
	return string(buf)
}
