package chunkgen

import "github.com/gekko3d/voxelstream/internal/voxel"

// Material ids used by the generator's surface/subsurface layering.
// These are block materials, not biome ids; the biome ids are BiomeID
// below.
const (
	MatStone voxel.Material = iota + 1
	MatDirt
	MatGrass
	MatSand
	MatSnow
)

// BiomeID mirrors graphexec.BiomeID without importing graphexec —
// chunkgen only needs the small integer, not the node that produced it.
type BiomeID uint8

const (
	BiomeOcean BiomeID = iota
	BiomeBeach
	BiomePlains
	BiomeForest
	BiomeDesert
	BiomeMountain
	BiomeSnow
)
