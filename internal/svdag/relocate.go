package svdag

// Relocate rewrites dag's leaf-table indices for concatenation into a
// shared multi-chunk arena: leaf indices are shifted by leafBase to
// become absolute positions in the concatenated leaves buffer. Per
// spec.md §4.7, inner-node child pointers (and the root index, which
// is itself just a pointer into the chunk's own node array) are left
// untouched — they stay relative to the chunk's node arena. A
// consumer recovers the absolute node position by adding the
// metadata record's nodeBaseOffset, which the GPU request loop
// computes and stores alongside rootIdx (see gpuloop/metadata.go).
// Returns the rewritten (nodes, leaves, rootIdx) triple; dag itself is
// left untouched.
func Relocate(dag *Chunk, leafBase uint32) (nodes []uint32, leaves []uint32, rootIdx uint32) {
	if dag.IsEmpty() {
		return nil, nil, EmptyRootIdx
	}

	nodes = make([]uint32, len(dag.Nodes))
	i := 0
	for i < len(dag.Nodes) {
		header := dag.Nodes[i]
		tag, mask := decodeHeader(header)
		nodes[i] = header
		i++
		if tag == tagLeaf {
			nodes[i] = dag.Nodes[i] + leafBase
			i++
			continue
		}
		n := popcount8(mask)
		for c := 0; c < n; c++ {
			nodes[i] = dag.Nodes[i] // chunk-relative child pointer, unchanged
			i++
		}
	}

	leaves = make([]uint32, len(dag.Leaves))
	copy(leaves, dag.Leaves)

	return nodes, leaves, dag.RootIdx
}
