package amber

// ClassKind indicates how a class reconstructs its instances.
type ClassKind uint8

const (
	ClassKindObject ClassKind = iota // attribute-bearing instance (default)
	ClassKindNull
	ClassKindBool
	ClassKindInt
	ClassKindFloat
	ClassKindStr
	ClassKindText
	ClassKindList
	ClassKindRecord
	ClassKindSet
	ClassKindItem // identity-managed: instances come from the registry
	ClassKindType
)

// String returns the class kind name.
func (k ClassKind) String() string {
	switch k {
	case ClassKindObject:
		return "object"
	case ClassKindNull:
		return "null"
	case ClassKindBool:
		return "bool"
	case ClassKindInt:
		return "int"
	case ClassKindFloat:
		return "float"
	case ClassKindStr:
		return "str"
	case ClassKindText:
		return "text"
	case ClassKindList:
		return "list"
	case ClassKindRecord:
		return "record"
	case ClassKindSet:
		return "set"
	case ClassKindItem:
		return "item"
	case ClassKindType:
		return "type"
	default:
		return "unknown"
	}
}

// Class is an explicit type descriptor. Classes are canonical: two values
// share a class only if they hold the same *Class pointer, and the
// registry maps each descriptor to a stable path string. There is no
// runtime reflection anywhere in the codec.
type Class struct {
	name string
	kind ClassKind
	base *Class
}

// NewClass creates a class descriptor. The default kind is
// ClassKindObject; use options to change it or to attach a base class.
func NewClass(name string, opts ...ClassOption) *Class {
	c := &Class{name: name, kind: ClassKindObject}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassOption is a function that modifies a class descriptor.
type ClassOption func(*Class)

// WithKind sets the reconstruction kind.
func WithKind(k ClassKind) ClassOption {
	return func(c *Class) {
		c.kind = k
	}
}

// WithBase attaches a base class. The kind is inherited from the base
// unless overridden by a later option.
func WithBase(base *Class) ClassOption {
	return func(c *Class) {
		c.base = base
		if base != nil {
			c.kind = base.kind
		}
	}
}

// AsItem marks the class as identity-managed: the codec never
// instantiates it directly, instances always resolve via the registry.
func AsItem() ClassOption {
	return func(c *Class) {
		c.kind = ClassKindItem
	}
}

// AsSet marks the class as a set collection.
func AsSet() ClassOption {
	return func(c *Class) {
		c.kind = ClassKindSet
	}
}

// Name returns the class name. This is a display name; the wire path is
// the registry's business.
func (c *Class) Name() string {
	if c == nil {
		return "<nil>"
	}
	return c.name
}

// Kind returns the reconstruction kind.
func (c *Class) Kind() ClassKind {
	if c == nil {
		return ClassKindObject
	}
	return c.kind
}

// Base returns the base class, or nil.
func (c *Class) Base() *Class {
	if c == nil {
		return nil
	}
	return c.base
}

// Is reports whether the class is base or inherits from it.
func (c *Class) Is(base *Class) bool {
	for cl := c; cl != nil; cl = cl.base {
		if cl == base {
			return true
		}
	}
	return false
}

// ItemBearing reports whether instances of this class are
// identity-managed, directly or through a base class.
func (c *Class) ItemBearing() bool {
	for cl := c; cl != nil; cl = cl.base {
		if cl.kind == ClassKindItem {
			return true
		}
	}
	return false
}

// ============================================================
// Builtin Classes
// ============================================================

// Builtin classes cover the self-describing part of the value space.
// They are not registered anywhere by default: they never appear as "@"
// tags on the wire, the decoder infers them from the state's own shape.
var (
	NullClass   = &Class{name: "null", kind: ClassKindNull}
	BoolClass   = &Class{name: "bool", kind: ClassKindBool}
	IntClass    = &Class{name: "int", kind: ClassKindInt}
	FloatClass  = &Class{name: "float", kind: ClassKindFloat}
	StrClass    = &Class{name: "str", kind: ClassKindStr}
	TextClass   = &Class{name: "text", kind: ClassKindText, base: StrClass}
	ListClass   = &Class{name: "list", kind: ClassKindList}
	RecordClass = &Class{name: "record", kind: ClassKindRecord}
	SetClass    = &Class{name: "set", kind: ClassKindSet}
	ItemClass   = &Class{name: "item", kind: ClassKindItem}
	TypeClass   = &Class{name: "type", kind: ClassKindType}
)

// classOf returns the value's runtime class: the attached descriptor for
// object/type/set/item values, the builtin class otherwise.
func classOf(v *Value) *Class {
	switch v.Kind() {
	case KindNull:
		return NullClass
	case KindBool:
		return BoolClass
	case KindInt:
		return IntClass
	case KindFloat:
		return FloatClass
	case KindStr:
		return StrClass
	case KindList:
		return ListClass
	case KindRecord:
		return RecordClass
	case KindType:
		return TypeClass
	default: // KindObject, KindSet, KindItem
		return v.class
	}
}
