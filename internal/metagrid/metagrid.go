// Package metagrid is the coarse occupancy skip structure the GPU
// shader uses to fast-skip whole empty regions: a 16x16x16 grid of
// 4x4x4-chunk cells, recomputed on every upload.
package metagrid

import (
	"github.com/gekko3d/voxelstream/internal/chunkcache"
	"github.com/gekko3d/voxelstream/internal/voxel"
)

// CellsPerAxis is the grid's edge length in cells.
const CellsPerAxis = 16

// ChunksPerCell is how many chunks (per axis) one meta-cell covers.
const ChunksPerCell = 4

// Grid is a flat CellsPerAxis^3 occupancy table, camera-centered.
type Grid struct {
	Center voxel.ChunkCoord
	Cells  [CellsPerAxis * CellsPerAxis * CellsPerAxis]uint32
}

// Index converts meta-grid-local cell coordinates to a flat index.
func Index(x, y, z int) int {
	return (z*CellsPerAxis+y)*CellsPerAxis + x
}

// Build zeroes the grid and marks every cell that contains at least
// one non-empty cached chunk, centered on centerChunk. A chunk payload
// counts as non-empty when its dedup-pool entry isn't the bare air
// sentinel — chunkcache doesn't track that directly, so the caller
// passes isEmpty, a lookup from pool ref to "is this payload air".
func Build(entries []*chunkcache.Entry, centerChunk voxel.ChunkCoord, isEmpty func(poolRef uint32) bool) *Grid {
	g := &Grid{Center: centerChunk}

	for _, e := range entries {
		if isEmpty(e.PoolRef) {
			continue
		}
		mx, my, mz, ok := metaCoordOf(e.Coord, centerChunk)
		if !ok {
			continue
		}
		g.Cells[Index(mx, my, mz)] = 1
	}
	return g
}

// metaCoordOf computes the meta-cell for a chunk coordinate, centered
// so that centerChunk's cell sits at the grid's middle cell
// (spec.md §4.8: "floor(cx/4)+Cx" with C* the grid center).
func metaCoordOf(coord, center voxel.ChunkCoord) (x, y, z int, ok bool) {
	half := CellsPerAxis / 2
	x = floorDiv(int(coord.CX), ChunksPerCell) - floorDiv(int(center.CX), ChunksPerCell) + half
	y = floorDiv(int(coord.CY), ChunksPerCell) - floorDiv(int(center.CY), ChunksPerCell) + half
	z = floorDiv(int(coord.CZ), ChunksPerCell) - floorDiv(int(center.CZ), ChunksPerCell) + half
	if x < 0 || x >= CellsPerAxis || y < 0 || y >= CellsPerAxis || z < 0 || z >= CellsPerAxis {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

func floorDiv(v, d int) int {
	q := v / d
	if v%d != 0 && (v < 0) != (d < 0) {
		q--
	}
	return q
}

// Occupied reports whether the cell containing coord is marked.
func (g *Grid) Occupied(coord voxel.ChunkCoord) bool {
	x, y, z, ok := metaCoordOf(coord, g.Center)
	if !ok {
		return false
	}
	return g.Cells[Index(x, y, z)] != 0
}
