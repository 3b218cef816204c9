package graphexec

import (
	"context"
	"testing"
)

func simpleGraph() *Graph {
	return &Graph{
		Nodes: []NodeSpec{
			{ID: "noise", Type: "FractalNoise", Params: map[string]any{"width": 4.0, "height": 4.0, "frequency": 0.1}},
			{ID: "remap", Type: "Remap", Params: map[string]any{"inMin": -1.0, "inMax": 1.0, "outMin": 0.0, "outMax": 1.0}},
			{ID: "out", Type: "HeightmapOutput"},
		},
		Connections: []Connection{
			{From: "noise", FromOutput: "value", To: "remap", ToInput: "value"},
			{From: "remap", FromOutput: "value", To: "out", ToInput: "value"},
		},
	}
}

func TestExecuteResolvesDedicatedOutput(t *testing.T) {
	e := NewExecutor()
	res, err := e.Execute(context.Background(), simpleGraph(), Settings{Seed: 1, RegionX: 0, RegionZ: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf, ok := res.Outputs["heightmap"]
	if !ok {
		t.Fatal("expected resolved output key \"heightmap\"")
	}
	if buf.Width != 4 || buf.Height != 4 {
		t.Fatalf("expected 4x4 buffer, got %dx%d", buf.Width, buf.Height)
	}
	for _, v := range buf.Data {
		if v < 0 || v > 1 {
			t.Fatalf("remap output out of range: %f", v)
		}
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	e := NewExecutor()
	settings := Settings{Seed: 42, RegionX: 3, RegionZ: -2}
	r1, err := e.Execute(context.Background(), simpleGraph(), settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := e.Execute(context.Background(), simpleGraph(), settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, b := r1.Outputs["heightmap"], r2.Outputs["heightmap"]
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("non-deterministic output at index %d: %f != %f", i, a.Data[i], b.Data[i])
		}
	}
}

func TestExecuteDetectsCycle(t *testing.T) {
	g := &Graph{
		Nodes: []NodeSpec{
			{ID: "a", Type: "Remap"},
			{ID: "b", Type: "Remap"},
		},
		Connections: []Connection{
			{From: "a", FromOutput: "value", To: "b", ToInput: "value"},
			{From: "b", FromOutput: "value", To: "a", ToInput: "value"},
		},
	}
	e := NewExecutor()
	_, err := e.Execute(context.Background(), g, Settings{})
	if err == nil {
		t.Fatal("expected error for cyclic graph")
	}
	if _, ok := err.(*InvalidGraph); !ok {
		t.Fatalf("expected *InvalidGraph, got %T: %v", err, err)
	}
}

func TestExecuteRejectsUnknownNodeType(t *testing.T) {
	g := &Graph{Nodes: []NodeSpec{{ID: "a", Type: "DoesNotExist"}}}
	e := NewExecutor()
	_, err := e.Execute(context.Background(), g, Settings{})
	if _, ok := err.(*InvalidGraph); !ok {
		t.Fatalf("expected *InvalidGraph for unregistered node type, got %T: %v", err, err)
	}
}

func TestExecuteNodeFailureDiscardsPartialOutput(t *testing.T) {
	g := &Graph{
		Nodes: []NodeSpec{
			{ID: "remap", Type: "Remap"}, // no input wired -> Execute returns an error
		},
	}
	e := NewExecutor()
	res, err := e.Execute(context.Background(), g, Settings{})
	if err == nil {
		t.Fatal("expected error from node missing required input")
	}
	if _, ok := err.(*NodeFailure); !ok {
		t.Fatalf("expected *NodeFailure, got %T: %v", err, err)
	}
	if res.Outputs != nil {
		t.Fatal("expected zero-value Result on failure")
	}
}

func TestExecuteCacheHitOnRepeatedStructure(t *testing.T) {
	e := NewExecutor()
	settings := Settings{Seed: 7}
	g := simpleGraph()

	if _, err := e.Execute(context.Background(), g, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := e.Execute(context.Background(), g, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CacheStats.Hits == 0 {
		t.Fatal("expected at least one cache hit on second identical execution")
	}
}
