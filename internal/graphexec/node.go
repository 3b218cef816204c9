package graphexec

import "context"

// Buffer is a 2D row-major sample grid — the currency nodes trade in.
// Region outputs (heightmap, moisture, temperature, biome ids) are all
// represented this way internally and quantized to their wire type only
// at the Region Cache boundary.
type Buffer struct {
	Width, Height int
	Data          []float32
}

// NewBuffer allocates a zeroed buffer of the given dimensions.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{Width: width, Height: height, Data: make([]float32, width*height)}
}

func (b *Buffer) At(x, y int) float32 {
	return b.Data[y*b.Width+x]
}

func (b *Buffer) Set(x, y int, v float32) {
	b.Data[y*b.Width+x] = v
}

// ParamSpec describes one entry of a node's parameter schema.
type ParamSpec struct {
	Default any
	Min     *float64
	Max     *float64
	Step    *float64
}

// Settings carries the world-global values merged into every node's
// params before Execute is called: the seed, the region being computed,
// and any pipeline-wide extras.
type Settings struct {
	Seed    int64
	RegionX int32
	RegionZ int32
	Extra   map[string]any
}

// Node is the contract every procedural node implementation satisfies.
// Registry construction is a name -> factory map (see registry.go), never
// a type hierarchy.
type Node interface {
	Type() string
	Category() string
	Inputs() []string
	Outputs() []string
	ParamSchema() map[string]ParamSpec
	// Cacheable reports whether this node's result may be cached by
	// structural key. Defaults to true for nodes that don't override it.
	Cacheable() bool
	Execute(ctx context.Context, inputs map[string]*Buffer, params map[string]any) (map[string]*Buffer, error)
}

// BaseNode supplies the Cacheable() == true default so concrete node
// types only need to override it when they have a reason not to cache
// (e.g. a node with side effects, of which this pipeline currently has
// none — but the hook exists for completeness with the node contract).
type BaseNode struct{}

func (BaseNode) Cacheable() bool { return true }
