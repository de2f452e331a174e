// Package registry maps function refs to invocable job functions.
//
// The registry is supplied to workers at process start; the core treats a
// job's function ref purely as a lookup key into it. An unknown ref is a
// per-job failure, never a worker crash.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/forgeworks/dispatchq/pkg/security"
)

// Registry is a fixed table of job functions keyed by function ref.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*Handler
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]*Handler)}
}

// Register adds a function under the given ref. Registration happens during
// process bootstrap, so invalid names or signatures panic.
func (r *Registry) Register(ref string, fn any) {
	if err := security.ValidateFunctionRef(ref); err != nil {
		panic(fmt.Sprintf("dispatchq: invalid function ref %q: %v", ref, err))
	}

	h, err := NewHandler(fn)
	if err != nil {
		panic(fmt.Sprintf("dispatchq: function %q: %v", ref, err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[ref] = h
}

// Lookup returns the handler registered under ref.
func (r *Registry) Lookup(ref string) (*Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[ref]
	return h, ok
}

// Refs returns all registered function refs, sorted.
func (r *Registry) Refs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]string, 0, len(r.handlers))
	for ref := range r.handlers {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
