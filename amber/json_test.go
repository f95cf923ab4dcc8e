package amber

import (
	"testing"
)

// ============================================================
// Wire Format
// ============================================================

func TestDump_ItemWire(t *testing.T) {
	w := newTestWorld()
	data, err := w.codec.Dump(Item(w.task, ItemID{Num: 42}), nil)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	// json.Marshal sorts object keys: "=" (0x3d) before "@" (0x40).
	want := `{"=":42,"@":"(item)"}`
	if string(data) != want {
		t.Errorf("Dump = %s, want %s", data, want)
	}
}

func TestDump_ObjectWire(t *testing.T) {
	w := newTestWorld()
	data, err := w.codec.Dump(w.point12(), nil)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	want := `{"@":"geom.Point","x":1,"y":2}`
	if string(data) != want {
		t.Errorf("Dump = %s, want %s", data, want)
	}
}

func TestDump_TypeWire(t *testing.T) {
	w := newTestWorld()
	data, err := w.codec.Dump(TypeOf(w.point), nil)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	want := `{"=":"geom.Point","@":"(type)"}`
	if string(data) != want {
		t.Errorf("Dump = %s, want %s", data, want)
	}
}

func TestDump_RejectsNaN(t *testing.T) {
	w := newTestWorld()
	nan := Float(0)
	nan.floatVal = nan.floatVal / nan.floatVal // NaN without importing math
	if _, err := w.codec.Dump(nan, nil); err == nil {
		t.Error("Dump of NaN should fail")
	}
}

// ============================================================
// Load
// ============================================================

func TestLoad_NumberNormalization(t *testing.T) {
	w := newTestWorld()
	back, err := w.codec.Load([]byte(`[1, 2.5, 1e2]`), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := List(Int(1), Float(2.5), Int(100))
	if !back.Equal(want) {
		t.Errorf("Load = %s, want %s", back, want)
	}
}

func TestLoad_WholeFloatNeedsHint(t *testing.T) {
	// JSON has a single number type: an unhinted whole float loads back
	// as an int. A float hint preserves the kind.
	w := newTestWorld()
	data, err := w.codec.Dump(Float(2), nil)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	unhinted, err := w.codec.Load(data, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !unhinted.Equal(Int(2)) {
		t.Errorf("unhinted Load = %s, want 2 as int", unhinted)
	}

	hinted, err := w.codec.Load(data, FloatClass)
	if err != nil {
		t.Fatalf("hinted Load failed: %v", err)
	}
	if !hinted.Equal(Float(2)) {
		t.Errorf("hinted Load = %s, want 2 as float", hinted)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	w := newTestWorld()
	values := []*Value{
		Null(),
		Bool(true),
		Int(-3),
		Float(2.25),
		Str("hello"),
		List(Int(1), Str("a"), Bool(true)),
		Record(Field("a", Int(1)), Field("b", List(Str("x")))),
		Record(Field("@", Str("literal"))),
		w.point12(),
		TypeOf(w.point),
		Set(w.tagSet, Str("a"), Str("b")),
	}
	for _, v := range values {
		data, err := w.codec.Dump(v, nil)
		if err != nil {
			t.Fatalf("Dump(%s) failed: %v", v, err)
		}
		back, err := w.codec.Load(data, nil)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", data, err)
		}
		if !back.Equal(v) {
			t.Errorf("round trip of %s via %s = %s", v, data, back)
		}
	}
}

func TestLoad_BadJSON(t *testing.T) {
	w := newTestWorld()
	if _, err := w.codec.Load([]byte(`{`), nil); err == nil {
		t.Error("Load of truncated JSON should fail")
	}
}

// ============================================================
// State Comparison
// ============================================================

func TestStateEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"int vs whole float", int64(3), float64(3), true},
		{"int vs other int", int64(3), int64(4), false},
		{"lists", []any{int64(1), "a"}, []any{float64(1), "a"}, true},
		{"maps", map[string]any{"k": int64(1)}, map[string]any{"k": float64(1)}, true},
		{"missing key", map[string]any{"k": int64(1)}, map[string]any{}, false},
		{"bool mismatch", true, "true", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("StateEqual = %v, want %v", got, tt.want)
			}
		})
	}
}
