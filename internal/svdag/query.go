package svdag

import "github.com/gekko3d/voxelstream/internal/voxel"

// At decodes the material stored at local coordinates (x,y,z) by
// descending the DAG from the root. Used by tests (and any future
// CPU-side debug tooling) to check the builder's output against the
// source chunk without a GPU.
func At(chunk *Chunk, x, y, z int) voxel.Material {
	if chunk.IsEmpty() {
		return voxel.Air
	}
	return decode(chunk, chunk.RootIdx, 0, 0, 0, voxel.ChunkSize, x, y, z)
}

func decode(chunk *Chunk, idx uint32, baseX, baseY, baseZ, size, qx, qy, qz int) voxel.Material {
	tag, mask := decodeHeader(chunk.Nodes[idx])
	if tag == tagLeaf {
		leafIdx := chunk.Nodes[idx+1]
		return voxel.Material(chunk.Leaves[leafIdx])
	}

	half := size / 2
	dxIdx, dyIdx, dzIdx := 0, 0, 0
	if qx-baseX >= half {
		dxIdx = 1
	}
	if qy-baseY >= half {
		dyIdx = 1
	}
	if qz-baseZ >= half {
		dzIdx = 1
	}
	octant := dzIdx*4 + dyIdx*2 + dxIdx
	bit := uint8(1) << uint(octant)
	if mask&bit == 0 {
		return voxel.Air
	}

	childPos := popcount8(mask & (bit - 1))
	childIdx := chunk.Nodes[idx+1+uint32(childPos)]

	nextX, nextY, nextZ := baseX, baseY, baseZ
	if dxIdx == 1 {
		nextX += half
	}
	if dyIdx == 1 {
		nextY += half
	}
	if dzIdx == 1 {
		nextZ += half
	}
	return decode(chunk, childIdx, nextX, nextY, nextZ, half, qx, qy, qz)
}
