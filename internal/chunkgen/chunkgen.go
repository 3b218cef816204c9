// Package chunkgen samples a region's 2D pipeline outputs into dense
// 32^3 voxel chunks.
package chunkgen

import (
	"github.com/gekko3d/voxelstream/internal/region"
	"github.com/gekko3d/voxelstream/internal/voxel"
)

// MaxWorldHeight scales a region's [0,1] heightmap sample into a
// world-space voxel Y. 8 chunks tall gives enough headroom for
// mountain biomes to clear the snow line without every chunk column
// needing to be generated.
const MaxWorldHeight = 256

// RegionOf returns the region coordinates and the chunk's local offset
// (0-15) within that region's 16x16 chunk grid, using floor division so
// negative chunk coordinates map to the correct region.
func RegionOf(coord voxel.ChunkCoord) (regionX, regionZ int32, localChunkX, localChunkZ int32) {
	regionX, localChunkX = floorDivMod(coord.CX, 16)
	regionZ, localChunkZ = floorDivMod(coord.CZ, 16)
	return
}

func floorDivMod(v int32, d int32) (q, r int32) {
	q = v / d
	r = v % d
	if r < 0 {
		q--
		r += d
	}
	return
}

// Generate deterministically samples coord's 32^3 voxel array from a
// region's outputs. Two calls with byte-identical out and the same
// coord always produce byte-identical chunks (invariant 6: pure graph
// execution plus pure sampling here composes into overall pipeline
// purity).
func Generate(coord voxel.ChunkCoord, out *region.Outputs) *voxel.Chunk {
	chunk := voxel.NewChunk(coord)
	_, _, localChunkX, localChunkZ := RegionOf(coord)

	for x := 0; x < voxel.ChunkSize; x++ {
		for z := 0; z < voxel.ChunkSize; z++ {
			regionX := int(localChunkX)*voxel.ChunkSize + x
			regionZ := int(localChunkZ)*voxel.ChunkSize + z
			idx := region.At(regionX, regionZ)

			surfaceHeight := int(out.Heightmap[idx] * MaxWorldHeight)
			biome := BiomeID(out.BiomeIDs[idx])

			for y := 0; y < voxel.ChunkSize; y++ {
				worldY := int(coord.CY)*voxel.ChunkSize + y
				chunk.Set(x, y, z, materialAt(worldY, surfaceHeight, biome))
			}
		}
	}
	return chunk
}

// materialAt classifies one voxel by its depth below the sampled
// surface and the column's biome: air above the surface, the biome's
// top block at the surface, a few layers of subsurface material, then
// stone down to bedrock.
func materialAt(worldY, surfaceHeight int, biome BiomeID) voxel.Material {
	if worldY > surfaceHeight {
		return voxel.Air
	}
	depth := surfaceHeight - worldY
	switch {
	case depth == 0:
		return topBlock(biome)
	case depth <= subsurfaceDepth(biome):
		return subsurfaceBlock(biome)
	default:
		return MatStone
	}
}

func subsurfaceDepth(biome BiomeID) int {
	switch biome {
	case BiomeBeach, BiomeDesert:
		return 4
	default:
		return 3
	}
}

func topBlock(biome BiomeID) voxel.Material {
	switch biome {
	case BiomeOcean, BiomeBeach, BiomeDesert:
		return MatSand
	case BiomeSnow:
		return MatSnow
	case BiomeMountain:
		return MatStone
	default:
		return MatGrass
	}
}

func subsurfaceBlock(biome BiomeID) voxel.Material {
	switch biome {
	case BiomeOcean, BiomeBeach, BiomeDesert:
		return MatSand
	case BiomeMountain, BiomeSnow:
		return MatStone
	default:
		return MatDirt
	}
}
