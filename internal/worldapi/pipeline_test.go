package worldapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPipelineJSON = `{
  "nodes": [
    {"id": "n1", "type": "FractalNoise", "params": {"width": 512, "height": 512, "frequency": 0.02}},
    {"id": "out", "type": "HeightmapOutput", "params": {}}
  ],
  "connections": [
    {"from": "n1", "fromOutput": "value", "to": "out", "toInput": "value"}
  ]
}`

const testConfigJSON = `{"seed": 42, "name": "test-world"}`

func writeTempWorld(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	worldDir := filepath.Join(dir, "worlds", "w1")
	require.NoError(t, os.MkdirAll(worldDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(worldDir, "pipeline.json"), []byte(testPipelineJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(worldDir, "config.json"), []byte(testConfigJSON), 0o644))
	return worldDir
}

func TestLoadPipelineDecodesNodesAndConnections(t *testing.T) {
	worldDir := writeTempWorld(t)
	g, err := LoadPipeline(filepath.Join(worldDir, "pipeline.json"))
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Connections, 1)
	require.Equal(t, "FractalNoise", g.Nodes[0].Type)
	require.Equal(t, "n1", g.Connections[0].From)
	require.Equal(t, "value", g.Connections[0].FromOutput)
}

func TestLoadConfigDecodesSeedAndName(t *testing.T) {
	worldDir := writeTempWorld(t)
	cfg, err := LoadConfig(filepath.Join(worldDir, "config.json"))
	require.NoError(t, err)
	require.Equal(t, int64(42), cfg.Seed)
	require.Equal(t, "test-world", cfg.Name)
}

func TestLoadPipelineMissingFileReturnsRegionUnavailable(t *testing.T) {
	_, err := LoadPipeline("/nonexistent/pipeline.json")
	require.Error(t, err)
	var regErr *RegionUnavailable
	require.ErrorAs(t, err, &regErr)
}

func TestLoadPipelineMalformedJSONReturnsRegionUnavailable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	_, err := LoadPipeline(path)
	require.Error(t, err)
	var regErr *RegionUnavailable
	require.ErrorAs(t, err, &regErr)
}
