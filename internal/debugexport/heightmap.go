// Package debugexport rasterizes Region Cache outputs to PNG so the
// Graph Executor's pipeline can be inspected visually without wiring
// up a GPU. Not on the request-serving path.
package debugexport

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/gekko3d/voxelstream/internal/region"
)

// HeightmapMin/HeightmapMax bound the normalized height range mapped
// to the 0-255 grayscale output.
const (
	HeightmapMin = 0.0
	HeightmapMax = 1.0
)

// ExportHeightmapPNG writes a grayscale PNG of outputs.Heightmap to w,
// upscaled by scale (1 = native region.Size x region.Size resolution).
// Values are clamped to [HeightmapMin, HeightmapMax] before mapping to
// [0, 255].
func ExportHeightmapPNG(outputs *region.Outputs, scale int, w io.Writer) error {
	if scale < 1 {
		scale = 1
	}

	base := image.NewGray(image.Rect(0, 0, region.Size, region.Size))
	for z := 0; z < region.Size; z++ {
		for x := 0; x < region.Size; x++ {
			h := outputs.Heightmap[region.At(x, z)]
			base.SetGray(x, z, color.Gray{Y: normalizeHeight(h)})
		}
	}

	if scale == 1 {
		return png.Encode(w, base)
	}

	out := image.NewGray(image.Rect(0, 0, region.Size*scale, region.Size*scale))
	draw.BiLinear.Scale(out, out.Bounds(), base, base.Bounds(), draw.Over, nil)
	return png.Encode(w, out)
}

// ExportBiomePNG writes an indexed-color PNG of outputs.BiomeIDs, one
// flat color per biome id, for a quick visual sanity check of the
// BiomeSelect node's classification boundaries.
func ExportBiomePNG(outputs *region.Outputs, w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, region.Size, region.Size))
	for z := 0; z < region.Size; z++ {
		for x := 0; x < region.Size; x++ {
			img.Set(x, z, biomeColor(outputs.BiomeIDs[region.At(x, z)]))
		}
	}
	return png.Encode(w, img)
}

func normalizeHeight(h float32) uint8 {
	if h < HeightmapMin {
		h = HeightmapMin
	}
	if h > HeightmapMax {
		h = HeightmapMax
	}
	return uint8((h - HeightmapMin) / (HeightmapMax - HeightmapMin) * 255)
}

// biomeColor maps a biome id to a fixed debug color. Mirrors the
// BiomeID ordering in graphexec.nodes_biome.go (ocean, beach, plains,
// forest, desert, mountain, snow); unknown ids fall back to magenta so
// a mismatch is obvious in the exported image.
func biomeColor(id uint8) color.RGBA {
	switch id {
	case 0:
		return color.RGBA{R: 30, G: 60, B: 160, A: 255} // ocean
	case 1:
		return color.RGBA{R: 210, G: 200, B: 150, A: 255} // beach
	case 2:
		return color.RGBA{R: 100, G: 170, B: 60, A: 255} // plains
	case 3:
		return color.RGBA{R: 40, G: 110, B: 40, A: 255} // forest
	case 4:
		return color.RGBA{R: 210, G: 170, B: 90, A: 255} // desert
	case 5:
		return color.RGBA{R: 120, G: 110, B: 100, A: 255} // mountain
	case 6:
		return color.RGBA{R: 240, G: 240, B: 250, A: 255} // snow
	default:
		return color.RGBA{R: 255, G: 0, B: 255, A: 255}
	}
}
