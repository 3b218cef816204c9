package graphexec

import (
	"context"
	"testing"
)

func TestFractalNoiseDeterministic(t *testing.T) {
	n := &FractalNoiseNode{}
	params := map[string]any{"width": 8.0, "height": 8.0, "frequency": 0.05, "seed": int64(99), "regionX": int32(2), "regionZ": int32(-1)}

	out1, err := n.Execute(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := n.Execute(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := out1["value"], out2["value"]
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("expected identical output at %d, got %f != %f", i, a.Data[i], b.Data[i])
		}
	}
}

func TestFractalNoiseDiffersAcrossRegions(t *testing.T) {
	n := &FractalNoiseNode{}
	p1 := map[string]any{"width": 4.0, "height": 4.0, "regionX": int32(0), "regionZ": int32(0)}
	p2 := map[string]any{"width": 4.0, "height": 4.0, "regionX": int32(5), "regionZ": int32(5)}

	out1, _ := n.Execute(context.Background(), nil, p1)
	out2, _ := n.Execute(context.Background(), nil, p2)

	same := true
	for i := range out1["value"].Data {
		if out1["value"].Data[i] != out2["value"].Data[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different regions to produce different noise")
	}
}

func TestValueNoiseInRange(t *testing.T) {
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			v := valueNoise(float64(x)*0.3, float64(y)*0.3, 1)
			if v < -1.0001 || v > 1.0001 {
				t.Fatalf("valueNoise(%d,%d) = %f out of [-1,1]", x, y, v)
			}
		}
	}
}

func TestHash3Stable(t *testing.T) {
	a := hash3(1, 2, 3)
	b := hash3(1, 2, 3)
	if a != b {
		t.Fatal("expected hash3 to be stable across calls")
	}
	if hash3(1, 2, 3) == hash3(3, 2, 1) {
		t.Fatal("expected hash3 to be sensitive to argument order")
	}
}

func TestPerlinNoiseDeterministic(t *testing.T) {
	n := &PerlinNoiseNode{}
	params := map[string]any{"width": 8.0, "height": 8.0, "frequency": 0.05, "seed": int64(7), "regionX": int32(1), "regionZ": int32(3)}

	out1, err := n.Execute(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := n.Execute(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := out1["value"], out2["value"]
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("expected identical output at %d, got %f != %f", i, a.Data[i], b.Data[i])
		}
	}
}

func TestPerlinNoiseDiffersFromSeed(t *testing.T) {
	n := &PerlinNoiseNode{}
	p1 := map[string]any{"width": 6.0, "height": 6.0, "seed": int64(1)}
	p2 := map[string]any{"width": 6.0, "height": 6.0, "seed": int64(2)}

	out1, _ := n.Execute(context.Background(), nil, p1)
	out2, _ := n.Execute(context.Background(), nil, p2)

	same := true
	for i := range out1["value"].Data {
		if out1["value"].Data[i] != out2["value"].Data[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to produce different noise")
	}
}

func TestPerlin2DInRange(t *testing.T) {
	perm := permutationTable(42)
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			v := perlin2D(float64(x)*0.2, float64(y)*0.2, &perm)
			if v < -1.0001 || v > 1.0001 {
				t.Fatalf("perlin2D(%d,%d) = %f out of [-1,1]", x, y, v)
			}
		}
	}
}

func TestSimplexNoiseDeterministic(t *testing.T) {
	n := &SimplexNoiseNode{}
	params := map[string]any{"width": 8.0, "height": 8.0, "frequency": 0.05, "seed": int64(11), "regionX": int32(-2), "regionZ": int32(4)}

	out1, err := n.Execute(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := n.Execute(context.Background(), nil, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := out1["value"], out2["value"]
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("expected identical output at %d, got %f != %f", i, a.Data[i], b.Data[i])
		}
	}
}

func TestSimplex2DInRange(t *testing.T) {
	perm := permutationTable(42)
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			v := simplex2D(float64(x)*0.2, float64(y)*0.2, &perm)
			if v < -1.0001 || v > 1.0001 {
				t.Fatalf("simplex2D(%d,%d) = %f out of [-1,1]", x, y, v)
			}
		}
	}
}

func TestPerlinAndSimplexDiffer(t *testing.T) {
	perm := permutationTable(5)
	same := true
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			p := perlin2D(float64(x)*0.15, float64(y)*0.15, &perm)
			s := simplex2D(float64(x)*0.15, float64(y)*0.15, &perm)
			if p != s {
				same = false
			}
		}
	}
	if same {
		t.Fatal("expected PerlinNoise and SimplexNoise lattice kernels to disagree somewhere")
	}
}

func TestPermutationTableDeterministic(t *testing.T) {
	a := permutationTable(123)
	b := permutationTable(123)
	if a != b {
		t.Fatal("expected permutationTable to be deterministic for a given seed")
	}
	c := permutationTable(124)
	if a == c {
		t.Fatal("expected permutationTable to differ across seeds")
	}
}
