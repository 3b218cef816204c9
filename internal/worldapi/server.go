// Package worldapi is the thin HTTP contract layer over the world
// registry: pipeline/config loading plus the chunk-request and
// invalidate-region endpoints from spec.md §6. No router or middleware
// stack — callers mount these handlers on whatever mux they like.
package worldapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gekko3d/voxelstream/internal/logging"
	"github.com/gekko3d/voxelstream/internal/voxel"
)

// Server holds the registered worlds and serves the HTTP contract.
type Server struct {
	mu     sync.RWMutex
	worlds map[string]*World
	log    logging.Logger
}

// NewServer returns an empty Server.
func NewServer(log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNop()
	}
	return &Server{worlds: make(map[string]*World), log: log}
}

// RegisterWorld adds or replaces a world under its ID.
func (s *Server) RegisterWorld(w *World) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worlds[w.ID] = w
}

func (s *Server) world(id string) (*World, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.worlds[id]
	return w, ok
}

// chunkPathPrefix is the shared prefix of the chunk route
// (/api/v2/worlds/{worldId}/chunks/{cx}/{cy}/{cz}) and the
// invalidate-region route.
const chunkPathPrefix = "/api/v2/worlds/"

// ServeChunk implements the chunk-request contract (spec.md §6):
// 200 with Wire Codec bytes on success, 404 if the world is unknown,
// 500 on generation failure.
func (s *Server) ServeChunk(w http.ResponseWriter, r *http.Request) {
	worldID, coord, ok := parseChunkPath(r.URL.Path)
	if !ok {
		http.Error(w, "malformed chunk path", http.StatusBadRequest)
		return
	}

	world, ok := s.world(worldID)
	if !ok {
		http.Error(w, fmt.Sprintf("world %q not found", worldID), http.StatusNotFound)
		return
	}

	start := time.Now()
	payload, dag, err := world.GenerateChunkWire(r.Context(), coord)
	if err != nil {
		s.log.Errorf("worldapi: chunk %s/%s generation failed: %v", worldID, coord, err)
		http.Error(w, "chunk generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Generation-Time", time.Since(start).String())
	w.Header().Set("X-Material-Nodes", strconv.Itoa(len(dag.Nodes)))
	w.Header().Set("X-Material-Leaves", strconv.Itoa(len(dag.Leaves)))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// invalidateRegionRequest is the POST body for invalidate-region.
type invalidateRegionRequest struct {
	RegionX int32 `json:"regionX"`
	RegionZ int32 `json:"regionZ"`
}

// InvalidateRegion implements POST /api/v2/worlds/{worldId}/invalidate-region.
func (s *Server) InvalidateRegion(w http.ResponseWriter, r *http.Request) {
	worldID, ok := parseInvalidatePath(r.URL.Path)
	if !ok {
		http.Error(w, "malformed invalidate-region path", http.StatusBadRequest)
		return
	}

	world, ok := s.world(worldID)
	if !ok {
		http.Error(w, fmt.Sprintf("world %q not found", worldID), http.StatusNotFound)
		return
	}

	var body invalidateRegionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	removed := world.RegionCache.InvalidateRegion(body.RegionX, body.RegionZ)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"invalidated": removed})
}

// parseChunkPath extracts worldId and the chunk coordinate from
// /api/v2/worlds/{worldId}/chunks/{cx}/{cy}/{cz}.
func parseChunkPath(path string) (worldID string, coord voxel.ChunkCoord, ok bool) {
	if !strings.HasPrefix(path, chunkPathPrefix) {
		return "", coord, false
	}
	rest := strings.TrimPrefix(path, chunkPathPrefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 5 || parts[1] != "chunks" {
		return "", coord, false
	}
	cx, err1 := strconv.Atoi(parts[2])
	cy, err2 := strconv.Atoi(parts[3])
	cz, err3 := strconv.Atoi(parts[4])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", coord, false
	}
	return parts[0], voxel.ChunkCoord{CX: int32(cx), CY: int32(cy), CZ: int32(cz)}, true
}

// parseInvalidatePath extracts worldId from
// /api/v2/worlds/{worldId}/invalidate-region.
func parseInvalidatePath(path string) (worldID string, ok bool) {
	if !strings.HasPrefix(path, chunkPathPrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(path, chunkPathPrefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "invalidate-region" {
		return "", false
	}
	return parts[0], true
}
