// Package registry tracks this process's open segment handles by name, so
// a second open() of the same name in the same process attaches to the
// existing handle instead of mapping the segment twice. Spec Design Notes
// calls out the teacher's prior approach (a bare package-level map behind
// no synchronization) as an anti-pattern; this replaces it with
// orcaman/concurrent-map/v2, a dependency the teacher's go.mod already
// carried but never imported.
package registry

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Handle is the minimal surface the registry needs from an open segment;
// pkg/shmring.Segment satisfies it.
type Handle interface {
	Close() error
}

// Registry maps segment name to an open Handle.
type Registry struct {
	m cmap.ConcurrentMap[string, Handle]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{m: cmap.New[Handle]()}
}

// LoadOrStore returns the existing handle for name if present, else stores
// and returns create(). create is invoked under the map's internal sharding
// lock via Upsert, so concurrent callers for the same name never run more
// than one create(); every caller gets the single stored handle. If create
// fails, its error is returned and name is left untracked.
func (r *Registry) LoadOrStore(name string, create func() (Handle, error)) (Handle, error) {
	var createErr error
	h := r.m.Upsert(name, nil, func(exists bool, existing, _ Handle) Handle {
		if exists {
			return existing
		}
		created, err := create()
		if err != nil {
			createErr = err
			return nil
		}
		return created
	})
	if createErr != nil {
		r.m.Remove(name)
		return nil, createErr
	}
	return h, nil
}

// Get returns the handle registered for name, if any.
func (r *Registry) Get(name string) (Handle, bool) {
	return r.m.Get(name)
}

// Delete removes name from the registry without closing its handle; callers
// close the handle themselves (spec §4.3 "close" releases process-local
// resources, the registry just stops tracking it).
func (r *Registry) Delete(name string) {
	r.m.Remove(name)
}

// Count returns the number of tracked handles, mainly for tests and
// diagnostics.
func (r *Registry) Count() int {
	return r.m.Count()
}
