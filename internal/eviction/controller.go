// Package eviction implements the dual-threshold chunk cache trimmer:
// proactive sweeps on a timer, emergency sweeps on insert, both scoring
// candidates by age, camera distance, and content.
package eviction

import (
	"sort"

	"github.com/gekko3d/voxelstream/internal/chunkcache"
	"github.com/gekko3d/voxelstream/internal/dedup"
	"github.com/gekko3d/voxelstream/internal/logging"
	"github.com/gekko3d/voxelstream/internal/svdag"
	"github.com/gekko3d/voxelstream/internal/voxel"
)

// Config holds the tunables from spec.md §4.6, each defaulted to the
// suggested reference values.
type Config struct {
	SoftLimit              int
	HardLimit              int
	TrimIntervalMillis     int64
	CooldownMillis         int64
	MinChunkAgeMillis      int64
	CameraProtectionRadius int32
	MaxEvictionsPerFrame   int

	MaxAgeMillis int64
	MaxDistance  int32
}

// DefaultConfig returns spec.md's suggested defaults.
func DefaultConfig() Config {
	return Config{
		SoftLimit:              20000,
		HardLimit:              25000,
		TrimIntervalMillis:     5000,
		CooldownMillis:         3000,
		MinChunkAgeMillis:      2000,
		CameraProtectionRadius: 3,
		MaxEvictionsPerFrame:   100,
		MaxAgeMillis:           60000,
		MaxDistance:            32,
	}
}

// Reason distinguishes why Run was invoked, since spec.md exempts
// manual evictions from the per-call cap.
type Reason int

const (
	ReasonProactive Reason = iota
	ReasonEmergency
	ReasonManual
)

// Controller evicts chunkcache entries by composite score.
type Controller struct {
	cfg           Config
	cache         *chunkcache.Cache
	log           logging.Logger
	lastEmergency int64
}

// New builds a Controller over cache.
func New(cfg Config, cache *chunkcache.Cache, log logging.Logger) *Controller {
	if log == nil {
		log = logging.NewNop()
	}
	return &Controller{cfg: cfg, cache: cache, log: log}
}

// MaybeProactive runs a proactive sweep if the cache is over the soft
// limit, unless still inside the post-emergency cooldown. It does not
// consult TrimIntervalMillis: every call that passes those two checks
// sweeps, so the sweep frequency is the caller's call frequency.
func (c *Controller) MaybeProactive(nowMillis int64, cameraChunk voxel.ChunkCoord) int {
	if c.cache.Len() <= c.cfg.SoftLimit {
		return 0
	}
	if nowMillis-c.lastEmergency < c.cfg.CooldownMillis {
		return 0
	}
	target := c.cfg.SoftLimit * 9 / 10
	return c.evictDownTo(target, nowMillis, cameraChunk, ReasonProactive)
}

// OnInsertCheckEmergency runs an emergency sweep if the cache just
// crossed the hard limit. Called synchronously from the insert path
// per spec.md §4.6.
func (c *Controller) OnInsertCheckEmergency(nowMillis int64, cameraChunk voxel.ChunkCoord) int {
	if c.cache.Len() <= c.cfg.HardLimit {
		return 0
	}
	target := c.cfg.SoftLimit * 8 / 10
	evicted := c.evictDownTo(target, nowMillis, cameraChunk, ReasonEmergency)
	c.lastEmergency = nowMillis
	return evicted
}

// Manual evicts down to targetSize regardless of the per-call cap,
// for an explicit admin/test clear operation.
func (c *Controller) Manual(targetSize int, nowMillis int64, cameraChunk voxel.ChunkCoord) int {
	return c.evictDownTo(targetSize, nowMillis, cameraChunk, ReasonManual)
}

type scoredEntry struct {
	entry *chunkcache.Entry
	score float64
}

func (c *Controller) evictDownTo(target int, nowMillis int64, cameraChunk voxel.ChunkCoord, reason Reason) int {
	entries := c.cache.Snapshot()
	need := len(entries) - target
	if need <= 0 {
		return 0
	}

	limit := need
	if reason != ReasonManual && limit > c.cfg.MaxEvictionsPerFrame {
		limit = c.cfg.MaxEvictionsPerFrame
	}

	candidates := make([]scoredEntry, 0, len(entries))
	for _, e := range entries {
		if !c.evictable(e, nowMillis, cameraChunk) {
			continue
		}
		candidates = append(candidates, scoredEntry{entry: e, score: c.score(e, nowMillis, cameraChunk)})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	evicted := 0
	for _, sc := range candidates {
		if evicted >= limit {
			break
		}
		if c.cache.Evict(sc.entry.Coord) {
			evicted++
		}
	}
	c.log.Debugf("eviction: reason=%d evicted=%d requested=%d candidates=%d", reason, evicted, need, len(candidates))
	return evicted
}

func (c *Controller) evictable(e *chunkcache.Entry, nowMillis int64, cameraChunk voxel.ChunkCoord) bool {
	age := nowMillis - e.LastSeenMillis
	if age < c.cfg.MinChunkAgeMillis {
		return false
	}
	if e.Coord.ChebyshevDistance(cameraChunk) <= c.cfg.CameraProtectionRadius {
		return false
	}
	return true
}

func (c *Controller) score(e *chunkcache.Entry, nowMillis int64, cameraChunk voxel.ChunkCoord) float64 {
	age := nowMillis - e.LastSeenMillis
	distance := e.Coord.ChebyshevDistance(cameraChunk)

	ageScore := clamp01(float64(age) / float64(c.cfg.MaxAgeMillis))
	distScore := clamp01(float64(distance) / float64(c.cfg.MaxDistance))
	contentScore := contentScoreOf(e)

	return 0.6*ageScore + 0.3*distScore + 0.1*contentScore
}

// emptyPayloadHash is the content hash of the bare-air payload (an
// empty node arena with the sentinel root).
var emptyPayloadHash = dedup.ContentHash(&svdag.Chunk{RootIdx: svdag.EmptyRootIdx})

// contentScoreOf scores a bare-air payload as maximally evictable;
// anything else scores 0. The controller doesn't walk pool payloads to
// judge complexity beyond that.
func contentScoreOf(e *chunkcache.Entry) float64 {
	if e.SVDAGHash == emptyPayloadHash {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
