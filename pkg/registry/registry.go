package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/arthur-debert/simctl/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name.
// Names are matched case-insensitively; List preserves registration order.
type Registry[T any] interface {
	// Register adds an item to the registry
	Register(name string, item T) error

	// Get retrieves an item from the registry
	Get(name string) (T, error)

	// Remove removes an item from the registry
	Remove(name string) error

	// List returns all registered names in registration order
	List() []string

	// Has checks if an item is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

type entry[T any] struct {
	name string
	item T
}

type registry[T any] struct {
	mu      sync.RWMutex
	entries []entry[T]
	index   map[string]int
}

// New creates a new Registry instance
func New[T any]() Registry[T] {
	return &registry[T]{
		index: make(map[string]int),
	}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds an item to the registry
func (r *registry[T]) Register(name string, item T) error {
	if key(name) == "" {
		return errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[key(name)]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", name)
	}

	r.index[key(name)] = len(r.entries)
	r.entries = append(r.entries, entry[T]{name: name, item: item})
	return nil
}

// Get retrieves an item from the registry
func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.index[key(name)]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name).
			WithDetail("name", name)
	}

	return r.entries[i].item, nil
}

// Remove removes an item from the registry
func (r *registry[T]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, exists := r.index[key(name)]
	if !exists {
		return errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}

	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	r.index = make(map[string]int, len(r.entries))
	for j, e := range r.entries {
		r.index[key(e.name)] = j
	}
	return nil
}

// List returns all registered names in registration order
func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	return names
}

// Has checks if an item is registered
func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.index[key(name)]
	return exists
}

// Count returns the number of registered items
func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// MustRegister registers an item and panics if registration fails.
// Registration errors while wiring built-in pipelines are programming errors.
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
