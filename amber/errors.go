package amber

import "errors"

// The five failure kinds of the codec and schema layers. Every error
// returned by this package wraps exactly one of them, so callers can
// separate codec-level contract violations (malformed envelopes, broken
// references) from schema-level rule violations with errors.Is.
var (
	// ErrMalformedEnvelope: a state carries "@"/"=" in a combination the
	// decoder cannot interpret.
	ErrMalformedEnvelope = errors.New("amber: malformed envelope")

	// ErrUnresolvedReference: registry lookup failed for a class path or
	// an item identifier.
	ErrUnresolvedReference = errors.New("amber: unresolved reference")

	// ErrKeyCollision: an attribute name equals a reserved marker, two
	// record entries share a key, or two distinct keys encode to the
	// same wire key.
	ErrKeyCollision = errors.New("amber: key collision")

	// ErrTypeViolation: a schema constraint failed, or a state's runtime
	// tag does not match its declared class.
	ErrTypeViolation = errors.New("amber: type violation")

	// ErrIncompleteIdentity: an item reference was encoded before its
	// identifier was assigned.
	ErrIncompleteIdentity = errors.New("amber: incomplete identity")
)
