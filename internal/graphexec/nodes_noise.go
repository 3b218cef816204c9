package graphexec

import (
	"context"
	"math"
)

func init() {
	DefaultRegistry().Register("FractalNoise", func() Node { return &FractalNoiseNode{} })
	DefaultRegistry().Register("PerlinNoise", func() Node { return &PerlinNoiseNode{} })
	DefaultRegistry().Register("SimplexNoise", func() Node { return &SimplexNoiseNode{} })
}

// FractalNoiseNode sums octaves of hashed value noise — the same
// frequency/persistence/lacunarity fractal sum used by classic terrain
// generators, just built on a deterministic integer hash instead of a
// gradient noise table so two calls with the same params always agree
// bit-for-bit.
type FractalNoiseNode struct{ BaseNode }

func (n *FractalNoiseNode) Type() string     { return "FractalNoise" }
func (n *FractalNoiseNode) Category() string { return "noise" }
func (n *FractalNoiseNode) Inputs() []string { return nil }
func (n *FractalNoiseNode) Outputs() []string {
	return []string{"value"}
}

func (n *FractalNoiseNode) ParamSchema() map[string]ParamSpec {
	return map[string]ParamSpec{
		"frequency":   {Default: 0.01},
		"octaves":     {Default: 4.0},
		"persistence": {Default: 0.5},
		"lacunarity":  {Default: 2.0},
		"width":       {Default: 32.0},
		"height":      {Default: 32.0},
	}
}

func (n *FractalNoiseNode) Execute(ctx context.Context, inputs map[string]*Buffer, params map[string]any) (map[string]*Buffer, error) {
	width := paramInt(params, "width", 32)
	height := paramInt(params, "height", 32)
	frequency := paramFloat(params, "frequency", 0.01)
	octaves := paramInt(params, "octaves", 4)
	persistence := paramFloat(params, "persistence", 0.5)
	lacunarity := paramFloat(params, "lacunarity", 2.0)
	seed := paramInt64(params, "seed", 0)
	regionX := paramInt(params, "regionX", 0)
	regionZ := paramInt(params, "regionZ", 0)

	out := NewBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			wx := float64(regionX*width) + float64(x)
			wz := float64(regionZ*height) + float64(y)
			out.Set(x, y, float32(fractalNoise(wx, wz, frequency, octaves, persistence, lacunarity, seed)))
		}
	}
	return map[string]*Buffer{"value": out}, nil
}

func fractalNoise(x, y, frequency float64, octaves int, persistence, lacunarity float64, seed int64) float64 {
	amplitude := 1.0
	sum := 0.0
	maxAmplitude := 0.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		sum += valueNoise(x*freq, y*freq, seed) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		freq *= lacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return sum / maxAmplitude
}

func valueNoise(x, y float64, seed int64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1

	sx := smoothstep(x - float64(x0))
	sy := smoothstep(y - float64(y0))

	n0 := random2D(x0, y0, seed)
	n1 := random2D(x1, y0, seed)
	ix0 := lerp(n0, n1, sx)

	n2 := random2D(x0, y1, seed)
	n3 := random2D(x1, y1, seed)
	ix1 := lerp(n2, n3, sx)

	return lerp(ix0, ix1, sy)
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func random2D(x, y int, seed int64) float64 {
	return float64(hash3(x, y, int(seed))&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// PerlinNoiseNode samples classic Ken Perlin gradient noise (single
// octave, fade/lerp over a seed-permuted lattice) rather than
// FractalNoiseNode's octave-summed value noise — a distinct lattice
// basis for pipelines that want the smoother, more directional look
// gradient noise gives over hashed value noise.
type PerlinNoiseNode struct{ BaseNode }

func (n *PerlinNoiseNode) Type() string     { return "PerlinNoise" }
func (n *PerlinNoiseNode) Category() string { return "noise" }
func (n *PerlinNoiseNode) Inputs() []string { return nil }
func (n *PerlinNoiseNode) Outputs() []string {
	return []string{"value"}
}

func (n *PerlinNoiseNode) ParamSchema() map[string]ParamSpec {
	return map[string]ParamSpec{
		"frequency": {Default: 0.02},
		"width":     {Default: 32.0},
		"height":    {Default: 32.0},
	}
}

func (n *PerlinNoiseNode) Execute(ctx context.Context, inputs map[string]*Buffer, params map[string]any) (map[string]*Buffer, error) {
	width := paramInt(params, "width", 32)
	height := paramInt(params, "height", 32)
	frequency := paramFloat(params, "frequency", 0.02)
	seed := paramInt64(params, "seed", 0)
	regionX := paramInt(params, "regionX", 0)
	regionZ := paramInt(params, "regionZ", 0)

	perm := permutationTable(seed)
	out := NewBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			wx := float64(regionX*width) + float64(x)
			wz := float64(regionZ*height) + float64(y)
			out.Set(x, y, float32(perlin2D(wx*frequency, wz*frequency, &perm)))
		}
	}
	return map[string]*Buffer{"value": out}, nil
}

// SimplexNoiseNode samples 2D simplex noise (Gustavson's skewed-
// triangle-grid construction), a third lattice basis alongside
// FractalNoiseNode's value noise and PerlinNoiseNode's gradient noise.
// Simplex avoids the axis-aligned artifacts gradient noise can show at
// low frequency, at the cost of a costlier per-sample kernel.
type SimplexNoiseNode struct{ BaseNode }

func (n *SimplexNoiseNode) Type() string     { return "SimplexNoise" }
func (n *SimplexNoiseNode) Category() string { return "noise" }
func (n *SimplexNoiseNode) Inputs() []string { return nil }
func (n *SimplexNoiseNode) Outputs() []string {
	return []string{"value"}
}

func (n *SimplexNoiseNode) ParamSchema() map[string]ParamSpec {
	return map[string]ParamSpec{
		"frequency": {Default: 0.02},
		"width":     {Default: 32.0},
		"height":    {Default: 32.0},
	}
}

func (n *SimplexNoiseNode) Execute(ctx context.Context, inputs map[string]*Buffer, params map[string]any) (map[string]*Buffer, error) {
	width := paramInt(params, "width", 32)
	height := paramInt(params, "height", 32)
	frequency := paramFloat(params, "frequency", 0.02)
	seed := paramInt64(params, "seed", 0)
	regionX := paramInt(params, "regionX", 0)
	regionZ := paramInt(params, "regionZ", 0)

	perm := permutationTable(seed)
	out := NewBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			wx := float64(regionX*width) + float64(x)
			wz := float64(regionZ*height) + float64(y)
			out.Set(x, y, float32(simplex2D(wx*frequency, wz*frequency, &perm)))
		}
	}
	return map[string]*Buffer{"value": out}, nil
}

// permutationTable builds a seed-dependent, doubled 0..255 permutation
// table for the lattice noise kernels below. The shuffle uses the same
// xorshift64 step (`<<7, >>9, <<8`) as firestar-voxel-world's
// deterministicRNG, seeded so permutationTable(seed) is pure and
// deterministic (invariant 6: identical seed always yields identical
// noise).
func permutationTable(seed int64) [512]int {
	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	state := uint64(seed) ^ 0x9e3779b97f4a7c15
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	next := func() uint64 {
		state ^= state << 7
		state ^= state >> 9
		state ^= state << 8
		return state
	}

	for i := len(perm) - 1; i > 0; i-- {
		j := int(next() % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}

	var table [512]int
	for i := range table {
		table[i] = perm[i&255]
	}
	return table
}

// fade is Perlin's improved-noise quintic ease curve.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// grad2 maps a permutation hash to one of 8 gradient directions and
// dots it with (x, y) — the 2D reduction of Perlin's improved-noise
// gradient set.
func grad2(hash int, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

// perlin2D evaluates classic Perlin gradient noise at (x, y) over the
// lattice permuted by perm. Range is approximately [-1, 1].
func perlin2D(x, y float64, perm *[512]int) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	xf := x - math.Floor(x)
	yf := y - math.Floor(y)

	u := fade(xf)
	v := fade(yf)

	aa := perm[perm[xi]+yi]
	ab := perm[perm[xi]+yi+1]
	ba := perm[perm[xi+1]+yi]
	bb := perm[perm[xi+1]+yi+1]

	x1 := lerp(grad2(aa, xf, yf), grad2(ba, xf-1, yf), u)
	x2 := lerp(grad2(ab, xf, yf-1), grad2(bb, xf-1, yf-1), u)

	return lerp(x1, x2, v)
}

// simplexGrad2 is the 8-direction gradient set used by Gustavson's 2D
// simplex noise construction.
var simplexGrad2 = [8][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

// simplex2D evaluates 2D simplex noise at (x, y) over the lattice
// permuted by perm, following Gustavson's skewed-triangle-grid
// construction. Range is approximately [-1, 1].
func simplex2D(x, y float64, perm *[512]int) float64 {
	const f2 = 0.3660254037844386  // (sqrt(3)-1)/2
	const g2 = 0.21132486540518713 // (3-sqrt(3))/6

	s := (x + y) * f2
	i := math.Floor(x + s)
	j := math.Floor(y + s)

	t := (i + j) * g2
	x0Origin := i - t
	y0Origin := j - t
	x0 := x - x0Origin
	y0 := y - y0Origin

	var i1, j1 int
	if x0 > y0 {
		i1, j1 = 1, 0
	} else {
		i1, j1 = 0, 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1 + 2*g2
	y2 := y0 - 1 + 2*g2

	ii := int(i) & 255
	jj := int(j) & 255

	gi0 := perm[ii+perm[jj]] % 8
	gi1 := perm[ii+i1+perm[jj+j1]] % 8
	gi2 := perm[ii+1+perm[jj+1]] % 8

	n0 := simplexCorner(x0, y0, gi0)
	n1 := simplexCorner(x1, y1, gi1)
	n2 := simplexCorner(x2, y2, gi2)

	return 70 * (n0 + n1 + n2)
}

func simplexCorner(x, y float64, gradIdx int) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	g := simplexGrad2[gradIdx]
	return t * t * (g[0]*x + g[1]*y)
}
