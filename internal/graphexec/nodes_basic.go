package graphexec

import (
	"context"
	"fmt"
	"math"
)

func init() {
	DefaultRegistry().Register("Remap", func() Node { return &RemapNode{} })
	DefaultRegistry().Register("Combine", func() Node { return &CombineNode{} })
	DefaultRegistry().Register("Curve", func() Node { return &CurveNode{} })
}

// RemapNode linearly rescales a buffer from [inMin, inMax] to
// [outMin, outMax], clamping the source range to avoid a divide by
// zero on a degenerate input range.
type RemapNode struct{ BaseNode }

func (n *RemapNode) Type() string      { return "Remap" }
func (n *RemapNode) Category() string  { return "transform" }
func (n *RemapNode) Inputs() []string  { return []string{"value"} }
func (n *RemapNode) Outputs() []string { return []string{"value"} }

func (n *RemapNode) ParamSchema() map[string]ParamSpec {
	return map[string]ParamSpec{
		"inMin":  {Default: -1.0},
		"inMax":  {Default: 1.0},
		"outMin": {Default: 0.0},
		"outMax": {Default: 1.0},
	}
}

func (n *RemapNode) Execute(ctx context.Context, inputs map[string]*Buffer, params map[string]any) (map[string]*Buffer, error) {
	src := inputs["value"]
	if src == nil {
		return nil, fmt.Errorf("remap: missing input %q", "value")
	}
	inMin := paramFloat(params, "inMin", -1.0)
	inMax := paramFloat(params, "inMax", 1.0)
	outMin := paramFloat(params, "outMin", 0.0)
	outMax := paramFloat(params, "outMax", 1.0)

	span := inMax - inMin
	if span == 0 {
		span = 1
	}

	out := NewBuffer(src.Width, src.Height)
	for i, v := range src.Data {
		t := (float64(v) - inMin) / span
		out.Data[i] = float32(outMin + t*(outMax-outMin))
	}
	return map[string]*Buffer{"value": out}, nil
}

// CombineNode merges two same-sized buffers with add, mul, or blend
// (linear interpolation by a constant factor).
type CombineNode struct{ BaseNode }

func (n *CombineNode) Type() string      { return "Combine" }
func (n *CombineNode) Category() string  { return "transform" }
func (n *CombineNode) Inputs() []string  { return []string{"a", "b"} }
func (n *CombineNode) Outputs() []string { return []string{"value"} }

func (n *CombineNode) ParamSchema() map[string]ParamSpec {
	return map[string]ParamSpec{
		"mode":   {Default: "add"},
		"factor": {Default: 0.5},
	}
}

func (n *CombineNode) Execute(ctx context.Context, inputs map[string]*Buffer, params map[string]any) (map[string]*Buffer, error) {
	a := inputs["a"]
	b := inputs["b"]
	if a == nil || b == nil {
		return nil, fmt.Errorf("combine: requires both %q and %q inputs", "a", "b")
	}
	if a.Width != b.Width || a.Height != b.Height {
		return nil, fmt.Errorf("combine: mismatched buffer dims %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}

	mode := paramString(params, "mode", "add")
	factor := float32(paramFloat(params, "factor", 0.5))

	out := NewBuffer(a.Width, a.Height)
	for i := range a.Data {
		switch mode {
		case "mul":
			out.Data[i] = a.Data[i] * b.Data[i]
		case "blend":
			out.Data[i] = a.Data[i] + factor*(b.Data[i]-a.Data[i])
		default:
			out.Data[i] = a.Data[i] + b.Data[i]
		}
	}
	return map[string]*Buffer{"value": out}, nil
}

// CurveNode applies a power-curve response (gain < 1 flattens the
// midtones, gain > 1 sharpens them) to a buffer already in [0, 1].
type CurveNode struct{ BaseNode }

func (n *CurveNode) Type() string      { return "Curve" }
func (n *CurveNode) Category() string  { return "transform" }
func (n *CurveNode) Inputs() []string  { return []string{"value"} }
func (n *CurveNode) Outputs() []string { return []string{"value"} }

func (n *CurveNode) ParamSchema() map[string]ParamSpec {
	return map[string]ParamSpec{
		"gain": {Default: 1.0},
	}
}

func (n *CurveNode) Execute(ctx context.Context, inputs map[string]*Buffer, params map[string]any) (map[string]*Buffer, error) {
	src := inputs["value"]
	if src == nil {
		return nil, fmt.Errorf("curve: missing input %q", "value")
	}
	gain := paramFloat(params, "gain", 1.0)

	out := NewBuffer(src.Width, src.Height)
	for i, v := range src.Data {
		clamped := float64(v)
		if clamped < 0 {
			clamped = 0
		} else if clamped > 1 {
			clamped = 1
		}
		out.Data[i] = float32(powCurve(clamped, gain))
	}
	return map[string]*Buffer{"value": out}, nil
}

func powCurve(t, gain float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Pow(t, gain)
}
