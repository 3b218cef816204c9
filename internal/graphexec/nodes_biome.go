package graphexec

import (
	"context"
	"fmt"
)

func init() {
	DefaultRegistry().Register("BiomeSelect", func() Node { return &BiomeSelectNode{} })
}

// BiomeID is the small integer written to the biome output buffer.
type BiomeID int

const (
	BiomeOcean BiomeID = iota
	BiomeBeach
	BiomePlains
	BiomeForest
	BiomeDesert
	BiomeMountain
	BiomeSnow
)

// BiomeSelectNode picks a biome per sample from height/moisture/
// temperature buffers using fixed thresholds. Real pipelines would load
// these thresholds from pipeline.json params; this node exposes them
// as params for exactly that reason.
type BiomeSelectNode struct{ BaseNode }

func (n *BiomeSelectNode) Type() string      { return "BiomeSelect" }
func (n *BiomeSelectNode) Category() string  { return "biome" }
func (n *BiomeSelectNode) Inputs() []string  { return []string{"height", "moisture", "temperature"} }
func (n *BiomeSelectNode) Outputs() []string { return []string{"biome"} }

func (n *BiomeSelectNode) ParamSchema() map[string]ParamSpec {
	return map[string]ParamSpec{
		"seaLevel":     {Default: 0.3},
		"beachWidth":   {Default: 0.04},
		"mountainLine": {Default: 0.75},
		"snowLine":     {Default: 0.85},
		"desertTemp":   {Default: 0.7},
		"forestMoist":  {Default: 0.45},
	}
}

func (n *BiomeSelectNode) Execute(ctx context.Context, inputs map[string]*Buffer, params map[string]any) (map[string]*Buffer, error) {
	height := inputs["height"]
	moisture := inputs["moisture"]
	temperature := inputs["temperature"]
	if height == nil || moisture == nil || temperature == nil {
		return nil, fmt.Errorf("biomeselect: requires height, moisture, and temperature inputs")
	}
	if moisture.Width != height.Width || moisture.Height != height.Height ||
		temperature.Width != height.Width || temperature.Height != height.Height {
		return nil, fmt.Errorf("biomeselect: mismatched input dimensions")
	}

	seaLevel := float32(paramFloat(params, "seaLevel", 0.3))
	beachWidth := float32(paramFloat(params, "beachWidth", 0.04))
	mountainLine := float32(paramFloat(params, "mountainLine", 0.75))
	snowLine := float32(paramFloat(params, "snowLine", 0.85))
	desertTemp := float32(paramFloat(params, "desertTemp", 0.7))
	forestMoist := float32(paramFloat(params, "forestMoist", 0.45))

	out := NewBuffer(height.Width, height.Height)
	for i := range height.Data {
		h := height.Data[i]
		m := moisture.Data[i]
		t := temperature.Data[i]
		out.Data[i] = float32(classifyBiome(h, m, t, seaLevel, beachWidth, mountainLine, snowLine, desertTemp, forestMoist))
	}
	return map[string]*Buffer{"biome": out}, nil
}

func classifyBiome(height, moisture, temperature, seaLevel, beachWidth, mountainLine, snowLine, desertTemp, forestMoist float32) BiomeID {
	switch {
	case height < seaLevel:
		return BiomeOcean
	case height < seaLevel+beachWidth:
		return BiomeBeach
	case height >= snowLine:
		return BiomeSnow
	case height >= mountainLine:
		return BiomeMountain
	case temperature >= desertTemp && moisture < forestMoist:
		return BiomeDesert
	case moisture >= forestMoist:
		return BiomeForest
	default:
		return BiomePlains
	}
}
