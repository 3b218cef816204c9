// Package gpuloop is the GPU Request Loop: the single-writer pass that
// turns the GPU's per-frame chunk request buffer into chunk fetches,
// cache mutations, and repacked upload buffers, then hands off to the
// Eviction Controller. Grounded on the teacher's GpuBufferManager
// (voxelrt/rt/gpu/manager.go) for buffer lifecycle and on go-voxels'
// ChunkBufferManager fence discipline for the single-flight/ordering
// guarantees.
package gpuloop

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/voxelstream/internal/chunkcache"
	"github.com/gekko3d/voxelstream/internal/dedup"
	"github.com/gekko3d/voxelstream/internal/eviction"
	"github.com/gekko3d/voxelstream/internal/logging"
	"github.com/gekko3d/voxelstream/internal/metagrid"
	"github.com/gekko3d/voxelstream/internal/svdag"
	"github.com/gekko3d/voxelstream/internal/voxel"
)

// Config holds the loop's tunables, defaulted per spec.md §4.7.
type Config struct {
	MaxFetchesPerFrame int
	MaxParallel        int
}

// DefaultConfig returns spec.md's suggested defaults (~200, ~8).
func DefaultConfig() Config {
	return Config{MaxFetchesPerFrame: 200, MaxParallel: 8}
}

// FetchFunc resolves a single chunk coordinate to its SVDAG payload —
// in practice the region cache + chunk generator + SVDAG builder
// pipeline, injected so the loop itself stays decoupled from how a
// chunk is produced.
type FetchFunc func(ctx context.Context, coord voxel.ChunkCoord) (*svdag.Chunk, error)

// Request is one decoded slot from the GPU-written request buffer:
// a chunk coordinate and how many shader invocations asked for it.
type Request struct {
	Coord        voxel.ChunkCoord
	RequestCount uint32
}

// Stats summarizes one Tick, for metrics/logging.
type Stats struct {
	Touched        int
	Fetched        int
	FetchFailed    int
	Dropped        int // beyond MaxFetchesPerFrame
	Uploaded       bool
	EmergencyEvict int
	ProactiveEvict int
}

// Loop is the single-writer driver over the Chunk Cache, Dedup Pool,
// Meta-Grid, and GPU buffers. Re-entrant calls to Tick while one is in
// flight are a documented no-op (spec.md §5 single-flight guard).
type Loop struct {
	cfg      Config
	cache    *chunkcache.Cache
	pool     *dedup.Pool
	evictor  *eviction.Controller
	fetch    FetchFunc
	log      logging.Logger
	buffers  *Buffers // nil in tests that don't wire a real device
	metaGrid *metagrid.Grid

	running atomic.Bool
}

// New builds a Loop. buffers may be nil, in which case Tick performs
// the full repack but skips the GPU upload step (used by tests that
// exercise scheduling/cache semantics without a wgpu device).
func New(cfg Config, cache *chunkcache.Cache, pool *dedup.Pool, evictor *eviction.Controller, fetch FetchFunc, buffers *Buffers, log logging.Logger) *Loop {
	if log == nil {
		log = logging.NewNop()
	}
	return &Loop{cfg: cfg, cache: cache, pool: pool, evictor: evictor, fetch: fetch, buffers: buffers, log: log}
}

// CameraChunk converts a world-space camera position to its containing
// chunk coordinate.
func CameraChunk(cameraWorldPos mgl32.Vec3) voxel.ChunkCoord {
	return voxel.ChunkCoord{
		CX: int32(math.Floor(float64(cameraWorldPos.X()) / float64(voxel.ChunkSize))),
		CY: int32(math.Floor(float64(cameraWorldPos.Y()) / float64(voxel.ChunkSize))),
		CZ: int32(math.Floor(float64(cameraWorldPos.Z()) / float64(voxel.ChunkSize))),
	}
}

// Tick runs one frame of the request loop: resolve requests against
// the cache, fetch what's missing (bounded by MaxParallel and capped
// at MaxFetchesPerFrame), repack and upload if anything changed, then
// run the eviction controller — strictly in that order (spec.md §5
// ordering guarantee (c): upload before evict, never the reverse).
func (l *Loop) Tick(ctx context.Context, requests []Request, cameraWorldPos mgl32.Vec3, nowMillis int64) (Stats, error) {
	if !l.running.CompareAndSwap(false, true) {
		l.log.Debugf("gpuloop: tick re-entrant, ignoring")
		return Stats{}, nil
	}
	defer l.running.Store(false)

	cameraChunk := CameraChunk(cameraWorldPos)

	var stats Stats
	missing := make([]Request, 0, len(requests))
	for _, req := range requests {
		if l.cache.Touch(req.Coord, nowMillis) {
			stats.Touched++
			continue
		}
		missing = append(missing, req)
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].RequestCount > missing[j].RequestCount })
	if len(missing) > l.cfg.MaxFetchesPerFrame {
		stats.Dropped = len(missing) - l.cfg.MaxFetchesPerFrame
		missing = missing[:l.cfg.MaxFetchesPerFrame]
	}

	mutated := l.fetchAll(ctx, missing, nowMillis, &stats)

	if mutated {
		entries := l.cache.Snapshot()
		snap := repack(entries, l.pool)
		if l.buffers != nil {
			l.buffers.Upload(snap)
		}
		l.metaGrid = metagrid.Build(entries, cameraChunk, l.isEmptyPayload)
		if l.buffers != nil {
			l.buffers.UploadMetaGrid(l.metaGrid.Cells[:])
		}
		stats.Uploaded = true
	}

	stats.EmergencyEvict = l.evictor.OnInsertCheckEmergency(nowMillis, cameraChunk)
	stats.ProactiveEvict += l.evictor.MaybeProactive(nowMillis, cameraChunk)

	return stats, nil
}

// fetchAll runs fetches for missing concurrently, bounded by
// MaxParallel, and admits each successful result into the cache.
// Reports whether the cache was mutated.
func (l *Loop) fetchAll(ctx context.Context, missing []Request, nowMillis int64, stats *Stats) bool {
	if len(missing) == 0 {
		return false
	}

	sem := make(chan struct{}, l.cfg.MaxParallel)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, req := range missing {
		wg.Add(1)
		sem <- struct{}{}
		go func(req Request) {
			defer wg.Done()
			defer func() { <-sem }()

			traceID := uuid.NewString()
			dag, err := l.fetch(ctx, req.Coord)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				l.log.Warnf("gpuloop: fetch %s failed (trace=%s): %v", req.Coord, traceID, err)
				stats.FetchFailed++
				return
			}
			l.cache.Insert(req.Coord, dag, nowMillis)
			stats.Fetched++
		}(req)
	}
	wg.Wait()

	return stats.Fetched > 0
}

// isEmptyPayload reports whether the pool entry at ref is the bare-air
// sentinel payload (spec.md §4.8: rootIdx == empty sentinel or a node
// arena of at most one word).
func (l *Loop) isEmptyPayload(ref uint32) bool {
	pe, ok := l.pool.Get(ref)
	if !ok {
		return true
	}
	return pe.Payload.IsEmpty() || len(pe.Payload.Nodes) <= 1
}

// MetaGrid returns the most recently built meta-grid, or nil if no
// tick has ever mutated the cache.
func (l *Loop) MetaGrid() *metagrid.Grid {
	return l.metaGrid
}
