package amber

import (
	"fmt"
	"sync"
)

// Registry maps class paths to class descriptors and item identifiers to
// canonical instances. The codec consumes it read-only; implementations
// must be safe for concurrent reads. It is injected explicitly into
// every Codec, never read from ambient state.
type Registry interface {
	// ClassForPath returns the class registered under path. Fails with
	// an error wrapping ErrUnresolvedReference if the path is unknown.
	ClassForPath(path string) (*Class, error)

	// PathForClass returns the path the class is registered under. Fails
	// with an error wrapping ErrUnresolvedReference if the class is not
	// registered.
	PathForClass(c *Class) (string, error)

	// ResolveItem returns the canonical instance for an identifier.
	// Repeated calls with equal identifiers return the same instance.
	// Implementations may perform I/O; that is opaque to the codec.
	ResolveItem(id ItemID) (*Value, error)
}

// ItemFetcher loads an item instance on first resolution.
type ItemFetcher func(id ItemID) (*Value, error)

// Table is an in-memory Registry: a closed mapping from stable path
// strings to class descriptors, plus a canonical-instance cache for item
// resolution. Class registration happens at setup time; ResolveItem is
// safe for concurrent use afterwards.
type Table struct {
	byPath  map[string]*Class
	byClass map[*Class]string
	fetch   ItemFetcher

	mu    sync.Mutex
	items map[ItemID]*Value
}

// NewTable creates an empty registry table.
func NewTable() *Table {
	return &Table{
		byPath:  make(map[string]*Class),
		byClass: make(map[*Class]string),
		items:   make(map[ItemID]*Value),
	}
}

// Register associates a path with a class. Re-registering either side
// panics: the table is a closed mapping, not a mutable namespace.
func (t *Table) Register(path string, c *Class) *Table {
	if _, ok := t.byPath[path]; ok {
		panic("amber: duplicate class path " + path)
	}
	if _, ok := t.byClass[c]; ok {
		panic("amber: class " + c.Name() + " already registered")
	}
	t.byPath[path] = c
	t.byClass[c] = path
	return t
}

// Resolver sets the fetcher used for item identifiers not yet cached.
func (t *Table) Resolver(fetch ItemFetcher) *Table {
	t.fetch = fetch
	return t
}

// AddItem preloads a canonical instance for an identifier.
func (t *Table) AddItem(id ItemID, v *Value) *Table {
	t.mu.Lock()
	t.items[id] = v
	t.mu.Unlock()
	return t
}

// ClassForPath returns the class registered under path.
func (t *Table) ClassForPath(path string) (*Class, error) {
	c, ok := t.byPath[path]
	if !ok {
		return nil, fmt.Errorf("%w: unknown class path %q", ErrUnresolvedReference, path)
	}
	return c, nil
}

// PathForClass returns the path the class is registered under.
func (t *Table) PathForClass(c *Class) (string, error) {
	path, ok := t.byClass[c]
	if !ok {
		return "", fmt.Errorf("%w: class %s is not registered", ErrUnresolvedReference, c.Name())
	}
	return path, nil
}

// ResolveItem returns the canonical instance for an identifier, fetching
// and caching it on first use.
func (t *Table) ResolveItem(id ItemID) (*Value, error) {
	if id.Partial() {
		return nil, fmt.Errorf("%w: cannot resolve unassigned identifier", ErrIncompleteIdentity)
	}
	t.mu.Lock()
	v, ok := t.items[id]
	t.mu.Unlock()
	if ok {
		return v, nil
	}
	if t.fetch == nil {
		return nil, fmt.Errorf("%w: no instance for item %s", ErrUnresolvedReference, id)
	}
	v, err := t.fetch(id)
	if err != nil {
		return nil, fmt.Errorf("%w: item %s: %v", ErrUnresolvedReference, id, err)
	}
	t.mu.Lock()
	// A concurrent resolve may have won; keep the first instance so
	// canonical identity holds.
	if prior, ok := t.items[id]; ok {
		v = prior
	} else {
		t.items[id] = v
	}
	t.mu.Unlock()
	return v, nil
}
