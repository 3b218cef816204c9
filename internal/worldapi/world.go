package worldapi

import (
	"context"
	"fmt"

	"github.com/gekko3d/voxelstream/internal/chunkgen"
	"github.com/gekko3d/voxelstream/internal/graphexec"
	"github.com/gekko3d/voxelstream/internal/logging"
	"github.com/gekko3d/voxelstream/internal/region"
	"github.com/gekko3d/voxelstream/internal/svdag"
	"github.com/gekko3d/voxelstream/internal/voxel"
	"github.com/gekko3d/voxelstream/internal/wire"
)

// World bundles one world's pipeline graph, config, and the region
// cache it drives, so the HTTP layer can generate any chunk on demand.
type World struct {
	ID          string
	Config      Config
	Graph       *graphexec.Graph
	RegionCache *region.Cache
}

// NewWorld builds a World, wiring a fresh Graph Executor behind a
// Region Cache sized to region.DefaultCapacity.
func NewWorld(id string, graph *graphexec.Graph, cfg Config, log logging.Logger) *World {
	executor := graphexec.NewExecutor()
	return &World{
		ID:          id,
		Config:      cfg,
		Graph:       graph,
		RegionCache: region.New(region.DefaultCapacity, executor, log),
	}
}

// GenerateChunkWire resolves coord through the region cache, the chunk
// generator, and the SVDAG builder, and returns the Wire Codec bytes
// plus the built SVDAG, whose node/leaf counts the HTTP handler reports
// as headers.
func (w *World) GenerateChunkWire(ctx context.Context, coord voxel.ChunkCoord) ([]byte, *svdag.Chunk, error) {
	regionX, regionZ, _, _ := chunkgen.RegionOf(coord)
	key := region.Key{RegionX: regionX, RegionZ: regionZ, GraphHash: w.Graph.Hash(), Seed: w.Config.Seed}

	settings := graphexec.Settings{Seed: w.Config.Seed, RegionX: regionX, RegionZ: regionZ}
	outputs, err := w.RegionCache.GetOrCompute(ctx, key, w.Graph, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("generate chunk %s: %w", coord, err)
	}

	dense := chunkgen.Generate(coord, outputs)
	dag := svdag.Build(dense)
	return wire.Encode(dag, voxel.ChunkSize), dag, nil
}
