package sonora

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is a process-wide, append-only set of live engines, guarded by
// its own lock independent of any individual engine's state: add, list,
// look up by id, and bulk teardown.
type Registry struct {
	mu      sync.Mutex
	engines map[uuid.UUID]*Engine
}

// DefaultRegistry is the process-wide registry used by the package-level
// Register/KillAll/ClearAllEngines helpers.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry. Most callers want DefaultRegistry;
// a fresh Registry is useful in tests that must not interfere with other
// tests' engines.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[uuid.UUID]*Engine)}
}

// Register adds an engine to the registry.
func (r *Registry) Register(e *Engine) {
	if e == nil {
		return
	}
	r.mu.Lock()
	r.engines[e.ID] = e
	r.mu.Unlock()
}

// Get returns the engine with the given id, if it is still registered.
func (r *Registry) Get(id uuid.UUID) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[id]
	return e, ok
}

// List returns a snapshot of every currently registered engine.
func (r *Registry) List() []*Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Engine, 0, len(r.engines))
	for _, e := range r.engines {
		out = append(out, e)
	}
	return out
}

// KillAll calls Clear then Stop on every registered engine, without
// forgetting them — handles obtained before the call remain valid.
func (r *Registry) KillAll() {
	for _, e := range r.List() {
		e.Clear()
		e.Stop()
	}
}

// ClearAllEngines calls KillAll and additionally forgets every engine.
// Callers must not reuse engine handles held from before this call; the
// registry has no way to know they're still in use.
func (r *Registry) ClearAllEngines() {
	r.KillAll()
	r.mu.Lock()
	r.engines = make(map[uuid.UUID]*Engine)
	r.mu.Unlock()
}

// Register adds e to the DefaultRegistry. NewEngine does not call this
// automatically — callers opt in, keeping bookkeeping an explicit step
// rather than a constructor side effect.
func Register(e *Engine) { DefaultRegistry.Register(e) }

// KillAll clears and stops every engine in the DefaultRegistry.
func KillAll() { DefaultRegistry.KillAll() }

// ClearAllEngines clears and stops every engine in the DefaultRegistry, then
// forgets all of them.
func ClearAllEngines() { DefaultRegistry.ClearAllEngines() }
