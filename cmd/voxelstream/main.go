// Command voxelstream serves the chunk-request and invalidate-region
// HTTP contract (spec.md §6) for one or more worlds, each described by
// a worlds/{worldId}/{pipeline,config}.json pair on disk.
package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gekko3d/voxelstream/internal/logging"
	"github.com/gekko3d/voxelstream/internal/worldapi"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	worldsDir := flag.String("worlds", "worlds", "directory of worlds/{worldId}/{pipeline,config}.json")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := logging.New("voxelstream", *debug)

	server := worldapi.NewServer(log)
	if err := loadWorlds(server, *worldsDir, log); err != nil {
		log.Errorf("loading worlds from %s: %v", *worldsDir, err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/worlds/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			server.ServeChunk(w, r)
		case r.Method == http.MethodPost:
			server.InvalidateRegion(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	log.Infof("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}

// loadWorlds walks worldsDir for subdirectories containing a
// pipeline.json and config.json pair and registers one World per
// subdirectory, named after the directory.
func loadWorlds(server *worldapi.Server, worldsDir string, log logging.Logger) error {
	entries, err := os.ReadDir(worldsDir)
	if err != nil {
		return err
	}

	registered := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		worldID := entry.Name()
		dir := filepath.Join(worldsDir, worldID)

		graph, err := worldapi.LoadPipeline(filepath.Join(dir, "pipeline.json"))
		if err != nil {
			log.Warnf("skipping world %q: %v", worldID, err)
			continue
		}
		cfg, err := worldapi.LoadConfig(filepath.Join(dir, "config.json"))
		if err != nil {
			log.Warnf("skipping world %q: %v", worldID, err)
			continue
		}

		server.RegisterWorld(worldapi.NewWorld(worldID, graph, *cfg, log))
		log.Infof("registered world %q (seed=%d)", worldID, cfg.Seed)
		registered++
	}

	if registered == 0 {
		log.Warnf("no worlds registered from %s", worldsDir)
	}
	return nil
}
