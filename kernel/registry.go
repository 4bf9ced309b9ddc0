package kernel

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler is the function signature for in-process property functions.
// Handlers must be pure: the same operands always produce the same value.
type Handler func(args ...float64) (float64, error)

// Registry is an in-process Invoker backed by named Go handlers. Each
// Registry instance is independent; there is no process-wide registry.
// Thread-safe for concurrent registration and invocation.
type Registry struct {
	entries map[Func]Handler
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Func]Handler)}
}

// Register adds a new function to the registry.
// Returns ErrAlreadyExists if the name is taken; use Replace to update.
func (r *Registry) Register(fn Func, h Handler) error {
	if fn == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[fn]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, fn)
	}

	r.entries[fn] = h
	return nil
}

// Replace updates an existing function's handler.
// Returns ErrNotFound if no function with the given name is registered.
func (r *Registry) Replace(fn Func, h Handler) error {
	if fn == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[fn]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, fn)
	}

	r.entries[fn] = h
	return nil
}

// Invoke evaluates a registered function.
func (r *Registry) Invoke(ctx context.Context, fn Func, args ...float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	h, exists := r.entries[fn]
	r.mu.RUnlock()

	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, fn)
	}
	return h(args...)
}

// Funcs returns the names of all registered functions, sorted.
func (r *Registry) Funcs() []Func {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Func, 0, len(r.entries))
	for fn := range r.entries {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Available reports whether the registry covers the whole Vocabulary.
func (r *Registry) Available() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, fn := range Vocabulary {
		if _, exists := r.entries[fn]; !exists {
			return false
		}
	}
	return true
}
