package amber

import (
	"fmt"
	"math"
	"sort"
)

// Reserved wire vocabulary. No other reserved keys or sentinel values
// exist; any user-level key is legal except "@", which triggers the
// FlagDict wrapping rule.
const (
	AttrClass = "@"      // class tag
	AttrState = "="      // state payload
	FlagItem  = "(item)" // identity-managed reference
	FlagType  = "(type)" // a value denoting a class
	FlagDict  = "(dict)" // wrapped plain record
)

// maxSafeInt is the largest integer exactly representable as a JSON
// number (2^53 - 1).
const maxSafeInt = 9007199254740991

// Codec converts between the universal value space and JSON-compatible
// state trees. The registry is injected at construction and consumed
// read-only; a Codec holds no other state and is safe for concurrent use.
type Codec struct {
	reg Registry
}

// NewCodec creates a codec over the given registry.
func NewCodec(reg Registry) *Codec {
	return &Codec{reg: reg}
}

// ============================================================
// Encode
// ============================================================

// Encode converts a value to a JSON-compatible state tree. A non-nil
// hint enables the compact form: whenever the value's runtime class
// equals the hint, class metadata is omitted. The receiving side must
// then decode with the same hint; the codec cannot verify that locally.
func (c *Codec) Encode(v *Value, hint *Class) (any, error) {
	switch v.Kind() {
	case KindNull:
		return nil, nil

	case KindBool:
		return v.boolVal, nil

	case KindInt:
		return v.intVal, nil

	case KindFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			return nil, fmt.Errorf("amber: NaN/Infinity is not representable in a state tree")
		}
		return v.floatVal, nil

	case KindStr:
		return v.strVal, nil

	case KindList:
		items := make([]any, 0, len(v.listVal))
		for i, elem := range v.listVal {
			enc, err := c.Encode(elem, nil)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			items = append(items, enc)
		}
		return items, nil

	case KindRecord:
		m, err := c.encodeEntries(v.recordVal)
		if err != nil {
			return nil, err
		}
		if _, ok := m[AttrClass]; ok {
			// A literal "@" key would be misread as a class tag.
			return map[string]any{AttrState: m, AttrClass: FlagDict}, nil
		}
		return m, nil

	case KindItem:
		if v.id.Partial() {
			return nil, fmt.Errorf("%w: item of class %s has no assigned identifier",
				ErrIncompleteIdentity, v.class.Name())
		}
		state := itemIDState(v.id)
		if hint != nil && v.class == hint {
			return state, nil
		}
		return map[string]any{AttrState: state, AttrClass: FlagItem}, nil

	case KindType:
		path, err := c.reg.PathForClass(v.class)
		if err != nil {
			return nil, err
		}
		return map[string]any{AttrState: path, AttrClass: FlagType}, nil

	case KindSet:
		elems := make([]any, 0, len(v.listVal))
		for i, elem := range v.listVal {
			enc, err := c.Encode(elem, nil)
			if err != nil {
				return nil, fmt.Errorf("set[%d]: %w", i, err)
			}
			elems = append(elems, enc)
		}
		if hint != nil && v.class == hint {
			return elems, nil
		}
		// The natural encoding is a sequence, not a record, so the
		// payload goes under "=" with the set's class as tag.
		path, err := c.reg.PathForClass(v.class)
		if err != nil {
			return nil, err
		}
		return map[string]any{AttrState: elems, AttrClass: path}, nil

	case KindObject:
		for _, e := range v.recordVal {
			if e.Key == AttrClass {
				return nil, fmt.Errorf("%w: attribute %q of class %s equals the reserved class tag",
					ErrKeyCollision, e.Key, v.class.Name())
			}
		}
		m, err := c.encodeEntries(v.recordVal)
		if err != nil {
			return nil, err
		}
		if hint != nil && v.class == hint {
			return m, nil
		}
		path, err := c.reg.PathForClass(v.class)
		if err != nil {
			return nil, err
		}
		m[AttrClass] = path
		return m, nil

	default:
		return nil, fmt.Errorf("amber: unsupported value kind %s", v.Kind())
	}
}

// encodeEntries encodes record/object entries into a state map. Keys are
// strings by construction; duplicates would silently merge on the wire,
// so they fail instead.
func (c *Codec) encodeEntries(entries []Entry) (map[string]any, error) {
	m := make(map[string]any, len(entries))
	for _, e := range entries {
		if _, dup := m[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrKeyCollision, e.Key)
		}
		enc, err := c.Encode(e.Value, nil)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		m[e.Key] = enc
	}
	return m, nil
}

// itemIDState returns the natural encoding of an identifier: the bare
// number when no category is set, a [category, number] pair otherwise.
func itemIDState(id ItemID) any {
	if id.Kind == "" {
		return id.Num
	}
	return []any{id.Kind, id.Num}
}

// ============================================================
// Decode
// ============================================================

// Decode converts a state tree back to a value. A non-nil hint names the
// exact class the state was compact-encoded with. Decoding never runs
// class-specific construction logic: objects are attribute maps tagged
// with their class, and item references always resolve to the registry's
// canonical instance.
func (c *Codec) Decode(state any, hint *Class) (*Value, error) {
	m, isMap := state.(map[string]any)

	// A FlagDict wrapper unwraps exactly one level to a plain record.
	// This path never consults the hint or the class tag again.
	if isMap && m[AttrClass] == FlagDict {
		inner := m
		if s, ok := m[AttrState]; ok {
			for k := range m {
				if k != AttrClass && k != AttrState {
					return nil, fmt.Errorf("%w: unexpected key %q alongside %q and %q",
						ErrMalformedEnvelope, k, AttrClass, AttrState)
				}
			}
			im, ok := s.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s payload must be a record, got %T",
					ErrMalformedEnvelope, FlagDict, s)
			}
			inner = im
		} else {
			inner = make(map[string]any, len(m)-1)
			for k, val := range m {
				if k != AttrClass {
					inner[k] = val
				}
			}
		}
		return c.decodeEntries(inner)
	}

	if hint != nil {
		if isMap {
			if _, hasClass := m[AttrClass]; hasClass {
				if _, hasState := m[AttrState]; !hasState {
					return nil, fmt.Errorf("%w: class tag alongside an explicit type hint with no %q payload",
						ErrMalformedEnvelope, AttrState)
				}
				// A full envelope is self-describing and takes
				// precedence: the encoder only emits one when the
				// value's class differed from the hint.
				return c.decodeTagged(m)
			}
		}
		return c.reconstruct(state, hint)
	}

	if !isMap {
		cls, err := inferClass(state)
		if err != nil {
			return nil, err
		}
		return c.reconstruct(state, cls)
	}

	if _, ok := m[AttrClass]; ok {
		return c.decodeTagged(m)
	}
	return c.decodeEntries(m)
}

// decodeTagged decodes a state map carrying a class tag (any tag except
// FlagDict, which is handled before this point).
func (c *Codec) decodeTagged(m map[string]any) (*Value, error) {
	tag, ok := m[AttrClass].(string)
	if !ok {
		return nil, fmt.Errorf("%w: class tag must be a string, got %T", ErrMalformedEnvelope, m[AttrClass])
	}
	payload, hasState := m[AttrState]
	if hasState {
		for k := range m {
			if k != AttrClass && k != AttrState {
				return nil, fmt.Errorf("%w: unexpected key %q alongside %q and %q",
					ErrMalformedEnvelope, k, AttrClass, AttrState)
			}
		}
	}

	switch tag {
	case FlagItem:
		if !hasState {
			return nil, fmt.Errorf("%w: %s reference without an identifier payload",
				ErrMalformedEnvelope, FlagItem)
		}
		id, err := itemIDFromState(payload)
		if err != nil {
			return nil, err
		}
		// The registry owns the instance; no reconstruction happens.
		return c.reg.ResolveItem(id)

	case FlagType:
		if !hasState {
			return nil, fmt.Errorf("%w: %s value without a class path payload",
				ErrMalformedEnvelope, FlagType)
		}
		path, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s payload must be a class path string, got %T",
				ErrMalformedEnvelope, FlagType, payload)
		}
		cls, err := c.reg.ClassForPath(path)
		if err != nil {
			return nil, err
		}
		return TypeOf(cls), nil

	default:
		cls, err := c.reg.ClassForPath(tag)
		if err != nil {
			return nil, err
		}
		var effective any
		if hasState {
			effective = payload
		} else {
			rest := make(map[string]any, len(m)-1)
			for k, val := range m {
				if k != AttrClass {
					rest[k] = val
				}
			}
			effective = rest
		}
		return c.reconstruct(effective, cls)
	}
}

// reconstruct builds a value of the given class from its effective state.
func (c *Codec) reconstruct(state any, cls *Class) (*Value, error) {
	// Identity-managed classes resolve via the registry even when the
	// state arrived without a FlagItem tag (compact form).
	if cls.ItemBearing() {
		id, err := itemIDFromState(state)
		if err != nil {
			return nil, err
		}
		return c.reg.ResolveItem(id)
	}

	switch cls.Kind() {
	case ClassKindNull:
		if state != nil {
			return nil, fmt.Errorf("%w: expected null state, got %T", ErrTypeViolation, state)
		}
		return Null(), nil

	case ClassKindBool:
		b, ok := state.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected bool state for class %s, got %T",
				ErrTypeViolation, cls.Name(), state)
		}
		return Bool(b), nil

	case ClassKindInt:
		n, ok := stateInt(state)
		if !ok {
			return nil, fmt.Errorf("%w: expected int state for class %s, got %T",
				ErrTypeViolation, cls.Name(), state)
		}
		return Int(n), nil

	case ClassKindFloat:
		// Whole floats may arrive as ints after JSON normalization.
		if f, ok := state.(float64); ok {
			return Float(f), nil
		}
		if n, ok := stateInt(state); ok {
			return Float(float64(n)), nil
		}
		return nil, fmt.Errorf("%w: expected float state for class %s, got %T",
			ErrTypeViolation, cls.Name(), state)

	case ClassKindStr, ClassKindText:
		s, ok := state.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string state for class %s, got %T",
				ErrTypeViolation, cls.Name(), state)
		}
		return Str(s), nil

	case ClassKindList:
		arr, ok := state.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected sequence state for class %s, got %T",
				ErrTypeViolation, cls.Name(), state)
		}
		elems := make([]*Value, 0, len(arr))
		for i, e := range arr {
			dv, err := c.Decode(e, nil)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			elems = append(elems, dv)
		}
		return List(elems...), nil

	case ClassKindRecord:
		rm, ok := state.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected record state for class %s, got %T",
				ErrTypeViolation, cls.Name(), state)
		}
		return c.decodeEntries(rm)

	case ClassKindSet:
		arr, ok := state.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected sequence state for set class %s, got %T",
				ErrTypeViolation, cls.Name(), state)
		}
		elems := make([]*Value, 0, len(arr))
		for i, e := range arr {
			dv, err := c.Decode(e, nil)
			if err != nil {
				return nil, fmt.Errorf("set[%d]: %w", i, err)
			}
			elems = append(elems, dv)
		}
		return Set(cls, elems...), nil

	case ClassKindType:
		path, ok := state.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected class path state, got %T", ErrTypeViolation, state)
		}
		denoted, err := c.reg.ClassForPath(path)
		if err != nil {
			return nil, err
		}
		return TypeOf(denoted), nil

	default: // ClassKindObject
		rm, ok := state.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected record state for class %s, got %T",
				ErrTypeViolation, cls.Name(), state)
		}
		rec, err := c.decodeEntries(rm)
		if err != nil {
			return nil, err
		}
		// The attribute map is tagged with the class as-is: no
		// class-specific initializer ever runs during decode.
		return Object(cls, rec.recordVal...), nil
	}
}

// decodeEntries decodes a state map into a plain record. Wire objects
// are unordered, so entries are ordered by key for determinism.
func (c *Codec) decodeEntries(m map[string]any) (*Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(m))
	for _, k := range keys {
		dv, err := c.Decode(m[k], nil)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		entries = append(entries, Entry{Key: k, Value: dv})
	}
	return Record(entries...), nil
}

// itemIDFromState reads an identifier from its natural encoding: a bare
// number or a [category, number] pair.
func itemIDFromState(state any) (ItemID, error) {
	if n, ok := stateInt(state); ok {
		return ItemID{Num: n}, nil
	}
	if arr, ok := state.([]any); ok && len(arr) == 2 {
		kind, ok1 := arr[0].(string)
		num, ok2 := stateInt(arr[1])
		if ok1 && ok2 {
			return ItemID{Kind: kind, Num: num}, nil
		}
	}
	return ItemID{}, fmt.Errorf("%w: cannot read an item identifier from %T state",
		ErrMalformedEnvelope, state)
}

// stateInt reads an integer state, accepting whole floats in the JSON
// safe range (raw json.Unmarshal output is float64).
func stateInt(state any) (int64, bool) {
	switch n := state.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && n >= -maxSafeInt && n <= maxSafeInt {
			return int64(n), true
		}
	}
	return 0, false
}

// inferClass determines the reconstruction class of an untagged,
// non-record state from its own shape.
func inferClass(state any) (*Class, error) {
	switch state.(type) {
	case nil:
		return NullClass, nil
	case bool:
		return BoolClass, nil
	case string:
		return StrClass, nil
	case []any:
		return ListClass, nil
	}
	if _, ok := stateInt(state); ok {
		return IntClass, nil
	}
	if _, ok := state.(float64); ok {
		return FloatClass, nil
	}
	return nil, fmt.Errorf("%w: unsupported state of type %T", ErrMalformedEnvelope, state)
}
