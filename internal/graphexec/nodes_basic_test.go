package graphexec

import (
	"context"
	"testing"
)

func TestRemapRescalesRange(t *testing.T) {
	src := NewBuffer(3, 1)
	src.Data = []float32{-1, 0, 1}

	n := &RemapNode{}
	out, err := n.Execute(context.Background(), map[string]*Buffer{"value": src}, map[string]any{
		"inMin": -1.0, "inMax": 1.0, "outMin": 0.0, "outMax": 10.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{0, 5, 10}
	got := out["value"].Data
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: want %f, got %f", i, want[i], got[i])
		}
	}
}

func TestRemapMissingInput(t *testing.T) {
	n := &RemapNode{}
	if _, err := n.Execute(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestCombineModes(t *testing.T) {
	a := NewBuffer(2, 1)
	a.Data = []float32{1, 2}
	b := NewBuffer(2, 1)
	b.Data = []float32{3, 4}

	n := &CombineNode{}

	addOut, _ := n.Execute(context.Background(), map[string]*Buffer{"a": a, "b": b}, map[string]any{"mode": "add"})
	if addOut["value"].Data[0] != 4 || addOut["value"].Data[1] != 6 {
		t.Fatalf("add mode: unexpected result %v", addOut["value"].Data)
	}

	mulOut, _ := n.Execute(context.Background(), map[string]*Buffer{"a": a, "b": b}, map[string]any{"mode": "mul"})
	if mulOut["value"].Data[0] != 3 || mulOut["value"].Data[1] != 8 {
		t.Fatalf("mul mode: unexpected result %v", mulOut["value"].Data)
	}

	blendOut, _ := n.Execute(context.Background(), map[string]*Buffer{"a": a, "b": b}, map[string]any{"mode": "blend", "factor": 0.5})
	if blendOut["value"].Data[0] != 2 || blendOut["value"].Data[1] != 3 {
		t.Fatalf("blend mode: unexpected result %v", blendOut["value"].Data)
	}
}

func TestCombineMismatchedDims(t *testing.T) {
	a := NewBuffer(2, 1)
	b := NewBuffer(3, 1)
	n := &CombineNode{}
	if _, err := n.Execute(context.Background(), map[string]*Buffer{"a": a, "b": b}, nil); err == nil {
		t.Fatal("expected error for mismatched buffer dimensions")
	}
}

func TestCurveClampsAndApplesGain(t *testing.T) {
	src := NewBuffer(3, 1)
	src.Data = []float32{-1, 0.5, 2}

	n := &CurveNode{}
	out, err := n.Execute(context.Background(), map[string]*Buffer{"value": src}, map[string]any{"gain": 2.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["value"].Data[0] != 0 {
		t.Fatalf("expected clamp to 0, got %f", out["value"].Data[0])
	}
	if out["value"].Data[2] != 1 {
		t.Fatalf("expected clamp to 1 before gain, got %f", out["value"].Data[2])
	}
	if out["value"].Data[1] <= 0 || out["value"].Data[1] >= 0.5 {
		t.Fatalf("expected gain=2 to darken midtone below input, got %f", out["value"].Data[1])
	}
}
