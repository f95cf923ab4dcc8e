// Package amber implements AMBER, a type-preserving JSON object codec.
//
// AMBER converts class-typed object graphs into a JSON-compatible tree
// ("state") and back, without losing the runtime type information needed
// to reconstruct them. It is designed to be:
//   - Self-describing (class metadata travels with the data)
//   - JSON-native (the wire form is plain UTF-8 JSON text)
//   - Registry-driven (class identity is an explicit closed mapping,
//     never runtime reflection)
//   - Compact when typed (metadata is omitted if both ends share a hint)
//
// # Marker Protocol
//
// Two reserved object keys disambiguate typed payloads from plain records:
//
//	"@"  class tag: a registry path, or one of the sentinel flags
//	"="  state payload, when the natural encoding is not object-shaped
//
// Only "@" is collision-checked: an object attribute named "@" fails to
// encode, and a plain record containing "@" is wrapped. An object
// attribute literally named "=" is not protected — alongside other
// attributes its envelope fails to decode, and as the sole attribute it
// is misread as the state payload. Avoid "=" as a top-level attribute
// name on class-tagged objects; inside plain records it is safe.
//
// Sentinel flags carried in "@":
//
//	"(item)"  an identity-managed reference, resolved via the registry
//	"(type)"  a value that denotes a class itself
//	"(dict)"  a plain record that had to be wrapped because it contains
//	          a literal "@" key
//
// # Example
//
//	Point{x: 1, y: 2}        →  {"x": 1, "y": 2, "@": "geom.Point"}
//	Point with hint Point    →  {"x": 1, "y": 2}
//	item reference #42       →  {"=": 42, "@": "(item)"}
//	the class geom.Point     →  {"=": "geom.Point", "@": "(type)"}
//	{"@": "not a tag"}       →  {"=": {"@": "not a tag"}, "@": "(dict)"}
//
// # Compact Form
//
// Encode with a type hint omits class metadata whenever the value's
// runtime class equals the hint. The wire data is then ambiguous on its
// own: the receiving side must decode with the same hint. This is a
// caller contract the codec cannot verify locally.
//
// # Concurrency
//
// Encode and decode are pure synchronous transforms with no shared
// mutable state. Independent calls may run concurrently provided the
// injected Registry is safe for concurrent reads.
package amber
