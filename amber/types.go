package amber

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind represents AMBER value kinds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindRecord // plain record: string keys, no class identity
	KindObject // record-shaped attributes plus a class identity
	KindType   // a value denoting a class itself
	KindSet    // unordered collection of unique values
	KindItem   // identity-managed reference, owned by the registry
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindObject:
		return "object"
	case KindType:
		return "type"
	case KindSet:
		return "set"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// Value represents an AMBER value.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string

	// Container values
	listVal   []*Value // KindList, KindSet
	recordVal []Entry  // KindRecord, KindObject

	// Class identity for KindObject, KindType, KindSet, KindItem
	class *Class

	// Identifier for KindItem
	id ItemID
}

// Entry represents a key-value pair in a record or object.
type Entry struct {
	Key   string
	Value *Value
}

// ItemID identifies an externally managed object. Kind is an optional
// category name; Num is the numeric identifier within it. Num == 0 means
// the identity has not been assigned yet, which makes the reference
// unserializable.
type ItemID struct {
	Kind string
	Num  int64
}

// Partial reports whether the identifier is still unassigned.
func (id ItemID) Partial() bool {
	return id.Num == 0
}

// String returns the identifier as "kind:num" or "num".
func (id ItemID) String() string {
	if id.Kind == "" {
		return strconv.FormatInt(id.Num, 10)
	}
	return id.Kind + ":" + strconv.FormatInt(id.Num, 10)
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindStr, strVal: v}
}

// List creates a list value.
func List(values ...*Value) *Value {
	return &Value{kind: KindList, listVal: values}
}

// Record creates a plain record value.
func Record(entries ...Entry) *Value {
	return &Value{kind: KindRecord, recordVal: entries}
}

// Object creates a class-tagged object value.
func Object(class *Class, attrs ...Entry) *Value {
	return &Value{kind: KindObject, class: class, recordVal: attrs}
}

// TypeOf creates a value denoting the class itself.
func TypeOf(class *Class) *Value {
	return &Value{kind: KindType, class: class}
}

// Set creates a set value. A nil class defaults to the builtin set class.
func Set(class *Class, elems ...*Value) *Value {
	if class == nil {
		class = SetClass
	}
	return &Value{kind: KindSet, class: class, listVal: elems}
}

// Item creates an identity-managed reference value.
func Item(class *Class, id ItemID) *Value {
	if class == nil {
		class = ItemClass
	}
	return &Value{kind: KindItem, class: class, id: id}
}

// Field creates an Entry for use in Record and Object construction.
func Field(key string, value *Value) Entry {
	return Entry{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// Class returns the class identity of an object, type, set, or item
// value, and nil for every other kind.
func (v *Value) Class() *Class {
	if v == nil {
		return nil
	}
	return v.class
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("amber: nil value")
	}
	if v.kind != KindBool {
		return false, fmt.Errorf("amber: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("amber: nil value")
	}
	if v.kind != KindInt {
		return 0, fmt.Errorf("amber: expected int, got %s", v.kind)
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("amber: nil value")
	}
	if v.kind != KindFloat {
		return 0, fmt.Errorf("amber: expected float, got %s", v.kind)
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("amber: nil value")
	}
	if v.kind != KindStr {
		return "", fmt.Errorf("amber: expected str, got %s", v.kind)
	}
	return v.strVal, nil
}

// AsList returns the list elements.
func (v *Value) AsList() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("amber: nil value")
	}
	if v.kind != KindList {
		return nil, fmt.Errorf("amber: expected list, got %s", v.kind)
	}
	return v.listVal, nil
}

// AsSet returns the set elements.
func (v *Value) AsSet() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("amber: nil value")
	}
	if v.kind != KindSet {
		return nil, fmt.Errorf("amber: expected set, got %s", v.kind)
	}
	return v.listVal, nil
}

// Entries returns the entries of a record or object in insertion order.
func (v *Value) Entries() ([]Entry, error) {
	if v == nil {
		return nil, fmt.Errorf("amber: nil value")
	}
	if v.kind != KindRecord && v.kind != KindObject {
		return nil, fmt.Errorf("amber: expected record or object, got %s", v.kind)
	}
	return v.recordVal, nil
}

// AsType returns the class denoted by a type value.
func (v *Value) AsType() (*Class, error) {
	if v == nil {
		return nil, fmt.Errorf("amber: nil value")
	}
	if v.kind != KindType {
		return nil, fmt.Errorf("amber: expected type, got %s", v.kind)
	}
	return v.class, nil
}

// AsItem returns the identifier of an item reference.
func (v *Value) AsItem() (ItemID, error) {
	if v == nil {
		return ItemID{}, fmt.Errorf("amber: nil value")
	}
	if v.kind != KindItem {
		return ItemID{}, fmt.Errorf("amber: expected item, got %s", v.kind)
	}
	return v.id, nil
}

// Len returns the length of a list, set, record, or object.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindList, KindSet:
		return len(v.listVal)
	case KindRecord, KindObject:
		return len(v.recordVal)
	default:
		return 0
	}
}

// Get returns an entry value by key from a record or object.
func (v *Value) Get(key string) *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindRecord, KindObject:
		for _, e := range v.recordVal {
			if e.Key == key {
				return e.Value
			}
		}
	}
	return nil
}

// Index returns the i-th element of a list or set.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || (v.kind != KindList && v.kind != KindSet) {
		return nil, fmt.Errorf("amber: not a list or set")
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("amber: index %d out of bounds (len=%d)", i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// ============================================================
// Mutators
// ============================================================

// Set sets an entry value on a record or object.
func (v *Value) Set(key string, val *Value) {
	switch v.kind {
	case KindRecord, KindObject:
		for i := range v.recordVal {
			if v.recordVal[i].Key == key {
				v.recordVal[i].Value = val
				return
			}
		}
		v.recordVal = append(v.recordVal, Entry{Key: key, Value: val})
	default:
		panic("amber: cannot set on non-record/object")
	}
}

// Append adds a value to a list.
func (v *Value) Append(val *Value) {
	if v.kind != KindList {
		panic("amber: cannot append to non-list")
	}
	v.listVal = append(v.listVal, val)
}

// Add adds a value to a set if no structurally equal element is present.
func (v *Value) Add(val *Value) {
	if v.kind != KindSet {
		panic("amber: cannot add to non-set")
	}
	for _, e := range v.listVal {
		if e.Equal(val) {
			return
		}
	}
	v.listVal = append(v.listVal, val)
}

// ============================================================
// Structural Equality
// ============================================================

// Equal reports structural equality. Record and object comparison is
// key-order-insensitive; set comparison is order-insensitive; item
// comparison is by identifier (reference equality of resolved instances
// is the registry's guarantee, not this one).
func (v *Value) Equal(o *Value) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() && o.IsNull()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.boolVal == o.boolVal
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat:
		return v.floatVal == o.floatVal
	case KindStr:
		return v.strVal == o.strVal
	case KindList:
		if len(v.listVal) != len(o.listVal) {
			return false
		}
		for i := range v.listVal {
			if !v.listVal[i].Equal(o.listVal[i]) {
				return false
			}
		}
		return true
	case KindRecord, KindObject:
		if v.class != o.class {
			return false
		}
		if len(v.recordVal) != len(o.recordVal) {
			return false
		}
		for _, e := range v.recordVal {
			other := o.Get(e.Key)
			if other == nil || !e.Value.Equal(other) {
				return false
			}
		}
		return true
	case KindType:
		return v.class == o.class
	case KindSet:
		if v.class != o.class || len(v.listVal) != len(o.listVal) {
			return false
		}
		for _, e := range v.listVal {
			found := false
			for _, oe := range o.listVal {
				if e.Equal(oe) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case KindItem:
		return v.class == o.class && v.id == o.id
	default:
		return false
	}
}

// String returns a compact debug representation. It is not a wire
// format; use Codec.Dump for that.
func (v *Value) String() string {
	var sb strings.Builder
	v.debugString(&sb)
	return sb.String()
}

func (v *Value) debugString(sb *strings.Builder) {
	if v.IsNull() {
		sb.WriteString("null")
		return
	}
	switch v.kind {
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.boolVal))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.intVal, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.floatVal, 'g', -1, 64))
	case KindStr:
		sb.WriteString(strconv.Quote(v.strVal))
	case KindList, KindSet:
		if v.kind == KindSet {
			sb.WriteString(v.class.Name())
		}
		sb.WriteByte('[')
		for i, e := range v.listVal {
			if i > 0 {
				sb.WriteByte(' ')
			}
			e.debugString(sb)
		}
		sb.WriteByte(']')
	case KindRecord, KindObject:
		if v.kind == KindObject {
			sb.WriteString(v.class.Name())
		}
		sb.WriteByte('{')
		for i, e := range v.recordVal {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(e.Key)
			sb.WriteByte('=')
			e.Value.debugString(sb)
		}
		sb.WriteByte('}')
	case KindType:
		sb.WriteString("type(")
		sb.WriteString(v.class.Name())
		sb.WriteByte(')')
	case KindItem:
		sb.WriteByte('^')
		sb.WriteString(v.id.String())
	}
}
