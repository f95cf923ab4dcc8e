package amber

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// JSON Text Layer
// ============================================================
//
// Dump and Load add a JSON text (de)serialization step around Encode
// and Decode with no additional semantics. State trees are transient:
// created per call, never persisted by this layer.

// Dump encodes a value and serializes the state tree as UTF-8 JSON text.
func (c *Codec) Dump(v *Value, hint *Class) ([]byte, error) {
	state, err := c.Encode(v, hint)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("amber: JSON marshal: %w", err)
	}
	return data, nil
}

// Load parses JSON text and decodes the resulting state tree. JSON has
// a single number type, so an unhinted whole float dumps and loads back
// as an int; decode with a float hint (or schema) to preserve the kind.
func (c *Codec) Load(data []byte, hint *Class) (*Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("amber: JSON parse: %w", err)
	}
	return c.Decode(normalizeState(raw), hint)
}

// normalizeState rewrites json.Unmarshal output into canonical state
// form: whole floats in the JSON safe range become int64, containers
// are normalized recursively.
func normalizeState(v any) any {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && val >= -maxSafeInt && val <= maxSafeInt {
			return int64(val)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = normalizeState(elem)
		}
		return val
	case map[string]any:
		for k, elem := range val {
			val[k] = normalizeState(elem)
		}
		return val
	default:
		return v
	}
}

// StateEqual checks if two state trees represent equal JSON values.
// Numeric comparison ignores the int/float distinction introduced by
// normalization.
func StateEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch va := a.(type) {
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case []any:
		vb, ok := b.([]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !StateEqual(va[i], vb[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for k, ea := range va {
			eb, ok := vb[k]
			if !ok || !StateEqual(ea, eb) {
				return false
			}
		}
		return true
	default:
		fa, aok := stateNumber(a)
		fb, bok := stateNumber(b)
		return aok && bok && fa == fb
	}
}

func stateNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
