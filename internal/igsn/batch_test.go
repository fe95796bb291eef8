package igsn

import (
	"testing"
)

func TestGridStrategyOrder(t *testing.T) {
	strategy, ok := LookupStrategy(BatchMethodGrid)
	if !ok {
		t.Fatal("grid strategy not registered")
	}
	data := map[string]interface{}{
		"substrates": []interface{}{"2", "8"},
		"subRows":    float64(2),
		"subCols":    float64(2),
	}
	indices := strategy.Compute(nil, data)

	want := []string{
		"S2R1C1", "S2R1C2", "S2R2C1", "S2R2C2",
		"S8R1C1", "S8R1C2", "S8R2C1", "S8R2C2",
	}
	if len(indices) != len(want) {
		t.Fatalf("got %d indices, want %d", len(indices), len(want))
	}
	for i, idx := range indices {
		if idx.Suffix != want[i] {
			t.Fatalf("indices[%d].Suffix=%q, want %q", i, idx.Suffix, want[i])
		}
		if idx.Local != nil {
			t.Fatalf("indices[%d].Local=%q, want nil", i, *idx.Local)
		}
	}
}

func TestGridStrategyMissingFields(t *testing.T) {
	strategy, _ := LookupStrategy(BatchMethodGrid)
	cases := []struct {
		name string
		data map[string]interface{}
	}{
		{name: "no_substrates", data: map[string]interface{}{"subRows": 2, "subCols": 2}},
		{name: "no_rows", data: map[string]interface{}{"substrates": []interface{}{"1"}, "subCols": 2}},
		{name: "no_cols", data: map[string]interface{}{"substrates": []interface{}{"1"}, "subRows": 2}},
		{name: "zero_rows", data: map[string]interface{}{"substrates": []interface{}{"1"}, "subRows": 0, "subCols": 2}},
		{name: "empty", data: map[string]interface{}{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := strategy.Compute(nil, tc.data); len(got) != 0 {
				t.Fatalf("got %d indices, want none", len(got))
			}
		})
	}
}

// The geometry strategy runs two counters on purpose: labels restart at 001
// for each geometry, identifier suffixes number the whole batch. This test
// pins that behavior.
func TestGeometryStrategyDualCounter(t *testing.T) {
	strategy, ok := LookupStrategy(BatchMethodGeometry)
	if !ok {
		t.Fatal("geometry strategy not registered")
	}
	data := map[string]interface{}{
		"buildGeometries": []interface{}{
			map[string]interface{}{"buildGeometry": "Cube", "count": float64(2)},
			map[string]interface{}{"buildGeometry": "Rod", "count": float64(3)},
		},
	}
	indices := strategy.Compute(nil, data)

	wantSuffixes := []string{"001", "002", "003", "004", "005"}
	wantLabels := []string{"Cube_001", "Cube_002", "Rod_001", "Rod_002", "Rod_003"}
	if len(indices) != len(wantSuffixes) {
		t.Fatalf("got %d indices, want %d", len(indices), len(wantSuffixes))
	}
	for i, idx := range indices {
		if idx.Suffix != wantSuffixes[i] {
			t.Fatalf("indices[%d].Suffix=%q, want %q", i, idx.Suffix, wantSuffixes[i])
		}
		if idx.Local == nil || *idx.Local != wantLabels[i] {
			t.Fatalf("indices[%d].Local=%v, want %q", i, idx.Local, wantLabels[i])
		}
	}
}

func TestGeometryStrategyNamingContext(t *testing.T) {
	strategy, _ := LookupStrategy(BatchMethodGeometry)
	data := map[string]interface{}{
		"runDate":  "20240115",
		"location": "APL",
		"material": "Ti64",
		"extraInfo": []interface{}{
			"HIP",
		},
		"buildGeometries": []interface{}{
			map[string]interface{}{"geometryType": "Cylinder", "count": float64(2)},
		},
	}
	indices := strategy.Compute(nil, data)
	if len(indices) != 2 {
		t.Fatalf("got %d indices, want 2", len(indices))
	}
	wantLabels := []string{
		"20240115_APL_Ti64_Cylinder_001_HIP",
		"20240115_APL_Ti64_Cylinder_002_HIP",
	}
	for i, idx := range indices {
		if idx.Local == nil || *idx.Local != wantLabels[i] {
			t.Fatalf("indices[%d].Local=%v, want %q", i, idx.Local, wantLabels[i])
		}
	}
}

func TestGeometryStrategyMissingList(t *testing.T) {
	strategy, _ := LookupStrategy(BatchMethodGeometry)
	if got := strategy.Compute(nil, map[string]interface{}{}); len(got) != 0 {
		t.Fatalf("got %d indices, want none", len(got))
	}
}

func TestGeometryStrategyDefaultsCountToOne(t *testing.T) {
	strategy, _ := LookupStrategy(BatchMethodGeometry)
	data := map[string]interface{}{
		"buildGeometries": []interface{}{
			map[string]interface{}{"buildGeometry": "Plate"},
		},
	}
	indices := strategy.Compute(nil, data)
	if len(indices) != 1 {
		t.Fatalf("got %d indices, want 1", len(indices))
	}
	if indices[0].Suffix != "001" || indices[0].Local == nil || *indices[0].Local != "Plate_001" {
		t.Fatalf("got suffix=%q local=%v", indices[0].Suffix, indices[0].Local)
	}
}

func TestGeometryStrategyExplicitZeroCount(t *testing.T) {
	strategy, _ := LookupStrategy(BatchMethodGeometry)
	data := map[string]interface{}{
		"buildGeometries": []interface{}{
			map[string]interface{}{"buildGeometry": "Plate", "count": float64(0)},
			map[string]interface{}{"buildGeometry": "Rod", "count": float64(2)},
		},
	}
	indices := strategy.Compute(nil, data)
	if len(indices) != 2 {
		t.Fatalf("got %d indices, want 2", len(indices))
	}
	for i, want := range []string{"Rod_001", "Rod_002"} {
		if indices[i].Local == nil || *indices[i].Local != want {
			t.Fatalf("index %d local = %v, want %q", i, indices[i].Local, want)
		}
	}
}

func TestLookupStrategyUnknownKey(t *testing.T) {
	if _, ok := LookupStrategy("bogus"); ok {
		t.Fatal("expected unknown strategy key to miss")
	}
}
