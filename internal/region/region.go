// Package region memoizes Graph Executor output per map region behind
// an LRU keyed by (regionX, regionZ, graphHash, seed).
package region

import "github.com/gekko3d/voxelstream/internal/graphexec"

// Size is the region's edge length in samples: 16x16 chunks of 32
// voxels each.
const Size = 512

// Key identifies one cached region. Two keys differing only in
// GraphHash address the same (regionX, regionZ) tile under different
// pipeline versions and are deliberately distinct cache entries.
type Key struct {
	RegionX   int32
	RegionZ   int32
	GraphHash uint64
	Seed      int64
}

// Outputs holds a region's resolved 2D pipeline outputs, each a
// Size x Size row-major grid.
type Outputs struct {
	Heightmap   []float32
	Moisture    []float32
	Temperature []float32
	BiomeIDs    []uint8
}

func newOutputs() *Outputs {
	return &Outputs{
		Heightmap:   make([]float32, Size*Size),
		Moisture:    make([]float32, Size*Size),
		Temperature: make([]float32, Size*Size),
		BiomeIDs:    make([]uint8, Size*Size),
	}
}

// At returns the sample index for local coordinates (0 <= x,z < Size).
func At(x, z int) int { return z*Size + x }

// fromExecutorResult copies the resolved graphexec buffers into an
// Outputs, leaving any output the graph didn't produce zeroed.
func fromExecutorResult(res graphexec.Result) *Outputs {
	out := newOutputs()
	copyBuffer(out.Heightmap, res.Outputs["heightmap"])
	copyBuffer(out.Moisture, res.Outputs["moisture"])
	copyBuffer(out.Temperature, res.Outputs["temperature"])
	copyBiome(out.BiomeIDs, res.Outputs["biome"])
	return out
}

func copyBuffer(dst []float32, src *graphexec.Buffer) {
	if src == nil {
		return
	}
	n := len(dst)
	if len(src.Data) < n {
		n = len(src.Data)
	}
	copy(dst, src.Data[:n])
}

func copyBiome(dst []uint8, src *graphexec.Buffer) {
	if src == nil {
		return
	}
	n := len(dst)
	if len(src.Data) < n {
		n = len(src.Data)
	}
	for i := 0; i < n; i++ {
		dst[i] = uint8(src.Data[i])
	}
}
