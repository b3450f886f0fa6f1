// Package extension provides the per-entity extension registry: a
// type-id-keyed map of dynamically attached, component-owned state. It is
// the mechanism one component uses to hang state off an entity another
// component owns.
package extension

import "github.com/sirupsen/logrus"

// Key identifies an extension slot. By convention it is the unique 64-bit
// id of the component that owns the extension, matching the component id
// space described in spec.md §4.
type Key uint64

// Extension is component-defined state attached to a shared entity.
// Reset is called when the owning entity resets (player respawn); Free is
// called once, when the entity is destroyed.
type Extension interface {
	Reset()
	Free()
}

type entry struct {
	ext   Extension
	owned bool
}

// Registry is the per-entity extension table. Its zero value is not
// usable; construct with NewRegistry.
type Registry struct {
	slots  map[Key]entry
	logger *logrus.Entry
}

// NewRegistry creates an empty extension registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[Key]entry)}
}

// NewRegistryWithLogger creates an empty extension registry that logs
// registration and duplicate-key rejections.
func NewRegistryWithLogger(logger *logrus.Entry) *Registry {
	return &Registry{slots: make(map[Key]entry), logger: logger}
}

// Add inserts ext under key. Returns false if key is already occupied —
// "an extension registered under key K on entity E is the only extension
// under K on E" (spec.md §3 invariant). If ownsLifetime is true, Free is
// invoked on ext when the entity is destroyed (FreeAll).
func (r *Registry) Add(key Key, ext Extension, ownsLifetime bool) bool {
	if _, exists := r.slots[key]; exists {
		if r.logger != nil {
			r.logger.WithField("key", key).Debug("extension add rejected: key already occupied")
		}
		return false
	}
	r.slots[key] = entry{ext: ext, owned: ownsLifetime}
	if r.logger != nil {
		r.logger.WithField("key", key).Debug("extension added")
	}
	return true
}

// Query returns the extension registered under key, or nil, false if none
// is present.
func (r *Registry) Query(key Key) (Extension, bool) {
	e, ok := r.slots[key]
	if !ok {
		return nil, false
	}
	return e.ext, true
}

// Remove drops the extension under key without calling Free, regardless
// of ownership. Used when a component wants to detach its own state
// outside of entity destruction.
func (r *Registry) Remove(key Key) {
	delete(r.slots, key)
}

// Reset calls Reset on every registered extension, in no particular
// order, used on player respawn to wipe per-round state while retaining
// extension identity (spec.md §4.2).
func (r *Registry) Reset() {
	for _, e := range r.slots {
		e.ext.Reset()
	}
}

// FreeAll calls Free on every owned extension and clears the registry.
// Called once, when the owning entity is destroyed; all extensions must
// be freed before the entity's slot is reused (spec.md §4.2 lifetime
// rule).
func (r *Registry) FreeAll() {
	for key, e := range r.slots {
		if e.owned {
			e.ext.Free()
		}
		delete(r.slots, key)
	}
}
