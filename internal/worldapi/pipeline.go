package worldapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gekko3d/voxelstream/internal/graphexec"
)

// Config is a world's worlds/{worldId}/config.json contents: the
// generation seed and a human-readable name.
type Config struct {
	Seed int64  `json:"seed"`
	Name string `json:"name"`
}

// LoadPipeline reads worlds/{worldId}/pipeline.json and decodes it into
// a graphexec.Graph. The JSON field names (id, type, params, isOutput,
// from, fromOutput, to, toInput, outputs) match graphexec's exported
// struct fields case-insensitively, so no intermediate DTO is needed —
// the same pattern the teacher uses for its own preset JSON files in
// mod_presets.go.
func LoadPipeline(path string) (*graphexec.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RegionUnavailable{WorldID: worldIDFromPath(path), Cause: err}
	}

	var g graphexec.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, &RegionUnavailable{WorldID: worldIDFromPath(path), Cause: fmt.Errorf("malformed pipeline.json: %w", err)}
	}
	return &g, nil
}

// LoadConfig reads worlds/{worldId}/config.json.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RegionUnavailable{WorldID: worldIDFromPath(path), Cause: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &RegionUnavailable{WorldID: worldIDFromPath(path), Cause: fmt.Errorf("malformed config.json: %w", err)}
	}
	return &cfg, nil
}

// worldIDFromPath pulls the {worldId} path segment back out of a
// worlds/{worldId}/(pipeline|config).json path, for error messages.
func worldIDFromPath(path string) string {
	return filepath.Base(filepath.Dir(path))
}
