package amber

import (
	"fmt"
	"math"
	"sort"
)

// Schema is the common capability of all declarative type descriptors:
// declare an expected shape ahead of time so compact, validated
// round-trips work without class metadata at every level. Schemas are
// immutable and stateless; Valid is a pure predicate, Encode and Decode
// fail rather than coerce.
type Schema interface {
	Valid(v *Value) bool
	Encode(v *Value) (any, error)
	Decode(state any) (*Value, error)
}

// ============================================================
// Atomic Schemas
// ============================================================

// AtomSchema validates a single primitive tag; encode and decode are
// identity transforms after validation.
type AtomSchema struct {
	kind Kind
	name string
}

// BoolSchema returns the boolean atom.
func BoolSchema() *AtomSchema { return &AtomSchema{kind: KindBool, name: "boolean"} }

// IntSchema returns the integer atom.
func IntSchema() *AtomSchema { return &AtomSchema{kind: KindInt, name: "integer"} }

// FloatSchema returns the float atom.
func FloatSchema() *AtomSchema { return &AtomSchema{kind: KindFloat, name: "float"} }

// StrSchema returns the string atom.
func StrSchema() *AtomSchema { return &AtomSchema{kind: KindStr, name: "string"} }

// TextSchema returns the text atom. Text is declaratively distinct from
// string (long-form content) but shares the same runtime tag.
func TextSchema() *AtomSchema { return &AtomSchema{kind: KindStr, name: "text"} }

// Valid reports whether the value carries exactly the declared tag.
func (s *AtomSchema) Valid(v *Value) bool {
	return v.Kind() == s.kind
}

// Encode validates and returns the primitive state unchanged.
func (s *AtomSchema) Encode(v *Value) (any, error) {
	if !s.Valid(v) {
		return nil, fmt.Errorf("%w: %s schema cannot encode %s value %s",
			ErrTypeViolation, s.name, v.Kind(), v)
	}
	switch s.kind {
	case KindBool:
		return v.boolVal, nil
	case KindInt:
		return v.intVal, nil
	case KindFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			return nil, fmt.Errorf("%w: %s schema cannot encode NaN/Infinity",
				ErrTypeViolation, s.name)
		}
		return v.floatVal, nil
	default:
		return v.strVal, nil
	}
}

// Decode type-checks the state and returns it as a value.
func (s *AtomSchema) Decode(state any) (*Value, error) {
	switch s.kind {
	case KindBool:
		b, ok := state.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s schema expected bool state, got %T",
				ErrTypeViolation, s.name, state)
		}
		return Bool(b), nil
	case KindInt:
		n, ok := stateInt(state)
		if !ok {
			return nil, fmt.Errorf("%w: %s schema expected int state, got %T",
				ErrTypeViolation, s.name, state)
		}
		return Int(n), nil
	case KindFloat:
		if f, ok := state.(float64); ok {
			return Float(f), nil
		}
		if n, ok := stateInt(state); ok {
			return Float(float64(n)), nil
		}
		return nil, fmt.Errorf("%w: %s schema expected float state, got %T",
			ErrTypeViolation, s.name, state)
	default:
		str, ok := state.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s schema expected string state, got %T",
				ErrTypeViolation, s.name, state)
		}
		return Str(str), nil
	}
}

// ============================================================
// Type Reference Schema
// ============================================================

// TypeRefSchema encodes a class value as its bare registry path string.
type TypeRefSchema struct {
	codec *Codec
}

// TypeRef creates a type reference schema over the codec's registry.
func TypeRef(c *Codec) *TypeRefSchema {
	return &TypeRefSchema{codec: c}
}

// Valid reports whether the value denotes a class.
func (s *TypeRefSchema) Valid(v *Value) bool {
	return v.Kind() == KindType
}

// Encode returns the registry path of the denoted class.
func (s *TypeRefSchema) Encode(v *Value) (any, error) {
	if !s.Valid(v) {
		return nil, fmt.Errorf("%w: type reference schema cannot encode %s value %s",
			ErrTypeViolation, v.Kind(), v)
	}
	return s.codec.reg.PathForClass(v.class)
}

// Decode resolves a path string back to its class.
func (s *TypeRefSchema) Decode(state any) (*Value, error) {
	path, ok := state.(string)
	if !ok {
		return nil, fmt.Errorf("%w: type reference must decode from a string, got %T",
			ErrTypeViolation, state)
	}
	cls, err := s.codec.reg.ClassForPath(path)
	if err != nil {
		return nil, err
	}
	return TypeOf(cls), nil
}

// ============================================================
// Item Reference Schema
// ============================================================

// ItemSchema validates and encodes item references. With a fixed
// category, the wire form is the bare numeric identifier; the open form
// uses the identifier's natural encoding.
type ItemSchema struct {
	codec    *Codec
	category string // "" accepts any category
}

// ItemOf creates an item reference schema. An empty category accepts
// references of any category.
func ItemOf(c *Codec, category string) *ItemSchema {
	return &ItemSchema{codec: c, category: category}
}

// Valid reports whether the value is an item reference of an accepted
// category.
func (s *ItemSchema) Valid(v *Value) bool {
	if v.Kind() != KindItem {
		return false
	}
	return s.category == "" || v.id.Kind == s.category
}

// Encode returns the identifier: the bare number when the category is
// fixed, the natural encoding otherwise.
func (s *ItemSchema) Encode(v *Value) (any, error) {
	if v.Kind() != KindItem {
		return nil, fmt.Errorf("%w: item schema cannot encode %s value %s",
			ErrTypeViolation, v.Kind(), v)
	}
	if s.category != "" && v.id.Kind != s.category {
		return nil, fmt.Errorf("%w: item category mismatch: expected %q, got %q",
			ErrTypeViolation, s.category, v.id.Kind)
	}
	if v.id.Partial() {
		return nil, fmt.Errorf("%w: item of class %s has no assigned identifier",
			ErrIncompleteIdentity, v.class.Name())
	}
	if s.category != "" {
		return v.id.Num, nil
	}
	return itemIDState(v.id), nil
}

// Decode resolves the identifier to the registry's canonical instance.
func (s *ItemSchema) Decode(state any) (*Value, error) {
	id, err := itemIDFromState(state)
	if err != nil {
		return nil, err
	}
	if s.category != "" {
		if id.Kind != "" && id.Kind != s.category {
			return nil, fmt.Errorf("%w: item category mismatch: expected %q, got %q",
				ErrTypeViolation, s.category, id.Kind)
		}
		id.Kind = s.category
	}
	return s.codec.reg.ResolveItem(id)
}

// ============================================================
// Object Constraint Schema
// ============================================================

// ObjectSchema accepts values whose class is in a declared allow-list,
// by exact class or base-class membership. The transform itself is the
// generic codec's; this adds only a pre/post type check.
type ObjectSchema struct {
	codec   *Codec
	allowed []*Class
}

// ObjectOf creates an object constraint schema over the given classes.
func ObjectOf(c *Codec, classes ...*Class) *ObjectSchema {
	return &ObjectSchema{codec: c, allowed: classes}
}

// Valid reports whether the value's class is allowed.
func (s *ObjectSchema) Valid(v *Value) bool {
	cls := classOf(v)
	for _, a := range s.allowed {
		if cls.Is(a) {
			return true
		}
	}
	return false
}

// Encode validates the class, then delegates to the generic codec with
// full metadata so decode can distinguish the allowed classes.
func (s *ObjectSchema) Encode(v *Value) (any, error) {
	if !s.Valid(v) {
		return nil, fmt.Errorf("%w: class %s is not in the allow-list for value %s",
			ErrTypeViolation, classOf(v).Name(), v)
	}
	return s.codec.Encode(v, nil)
}

// Decode delegates to the generic codec, then validates the class.
func (s *ObjectSchema) Decode(state any) (*Value, error) {
	v, err := s.codec.Decode(state, nil)
	if err != nil {
		return nil, err
	}
	if !s.Valid(v) {
		return nil, fmt.Errorf("%w: decoded class %s is not in the allow-list",
			ErrTypeViolation, classOf(v).Name())
	}
	return v, nil
}

// ============================================================
// Keyed Container Schemas
// ============================================================

// DictSchema validates a keyed container and transforms each key and
// value through nested schemas. Key schemas may rewrite keys; two
// distinct keys encoding to the same wire key fail.
type DictSchema struct {
	codec    *Codec
	key      Schema
	val      Schema
	concrete *Class // container class; nil means plain record
}

// DictOption is a function that modifies a dict schema.
type DictOption func(*DictSchema)

// WithConcrete requires the container to be an object of the given
// class (instead of a plain record) and rebuilds it as such on decode.
func WithConcrete(cls *Class) DictOption {
	return func(s *DictSchema) {
		s.concrete = cls
	}
}

// DictOf creates a keyed container schema.
func DictOf(c *Codec, key, val Schema, opts ...DictOption) *DictSchema {
	s := &DictSchema{codec: c, key: key, val: val}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CatalogOf creates a string-keyed container schema for ordered
// label-to-value collections.
func CatalogOf(c *Codec, val Schema) *DictSchema {
	return DictOf(c, StrSchema(), val)
}

// Valid reports whether the container matches the declared class.
func (s *DictSchema) Valid(v *Value) bool {
	if s.concrete == nil {
		return v.Kind() == KindRecord
	}
	return v.Kind() == KindObject && v.Class().Is(s.concrete)
}

// Encode transforms each entry through the key and value schemas.
func (s *DictSchema) Encode(v *Value) (any, error) {
	if !s.Valid(v) {
		want := "record"
		if s.concrete != nil {
			want = s.concrete.Name()
		}
		return nil, fmt.Errorf("%w: expected %s container, got %s value %s",
			ErrTypeViolation, want, v.Kind(), v)
	}
	out := make(map[string]any, len(v.recordVal))
	for _, e := range v.recordVal {
		ks, err := s.key.Encode(Str(e.Key))
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		wireKey, ok := ks.(string)
		if !ok {
			return nil, fmt.Errorf("%w: key %q encodes to non-string %T",
				ErrTypeViolation, e.Key, ks)
		}
		if _, dup := out[wireKey]; dup {
			return nil, fmt.Errorf("%w: distinct keys encode to the same wire key %q",
				ErrKeyCollision, wireKey)
		}
		vs, err := s.val.Encode(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		out[wireKey] = vs
	}
	return out, nil
}

// Decode transforms each entry back and rebuilds the container.
func (s *DictSchema) Decode(state any) (*Value, error) {
	m, ok := state.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected record state, got %T", ErrTypeViolation, state)
	}
	wireKeys := make([]string, 0, len(m))
	for k := range m {
		wireKeys = append(wireKeys, k)
	}
	sort.Strings(wireKeys)

	entries := make([]Entry, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, wk := range wireKeys {
		kv, err := s.key.Decode(wk)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", wk, err)
		}
		key, err := kv.AsStr()
		if err != nil {
			return nil, fmt.Errorf("%w: key %q decodes to %s, want str",
				ErrTypeViolation, wk, kv.Kind())
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: distinct wire keys decode to the same key %q",
				ErrKeyCollision, key)
		}
		seen[key] = true
		dv, err := s.val.Decode(m[wk])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", wk, err)
		}
		entries = append(entries, Entry{Key: key, Value: dv})
	}
	if s.concrete == nil {
		return Record(entries...), nil
	}
	return Object(s.concrete, entries...), nil
}
