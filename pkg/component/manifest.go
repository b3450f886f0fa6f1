// Package component is the static startup manifest that replaces the
// original server's dynamic-library component loader: every gameplay
// module (actors, vehicles, pickups, ...) is known at compile time and
// registered by a fixed 64-bit id, with an explicit OnLoad/OnFree
// lifecycle in place of dlopen/dlsym, grounded on
// original_source/Server/Source/component_loader.hpp (loadComponent,
// loadComponents) and
// original_source/Server/Components/Checkpoints/dllmain.cpp (onLoad/
// free/componentName/getUUID as the per-component lifecycle shape).
package component

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/core"
)

// Component is one statically linked gameplay module. UID is a stable
// 64-bit identifier used only for logging and diagnostics here, since
// there is no dynamic loader to disambiguate by.
type Component interface {
	Name() string
	UID() uint64
	OnLoad(c *core.Core) error
	OnFree()
}

// Manifest loads a fixed list of components against a Core in order,
// continuing past any single component's load failure rather than
// aborting startup (the error taxonomy's "continue without component"
// category), and frees them in reverse load order on shutdown.
type Manifest struct {
	logger *logrus.Entry
	loaded []Component
}

// NewManifest constructs an empty manifest.
func NewManifest(logger *logrus.Entry) *Manifest {
	return &Manifest{logger: logger}
}

// Load attempts to load every component in components, in order,
// against c. A component whose OnLoad returns an error is logged and
// skipped; every other component still loads.
func (m *Manifest) Load(c *core.Core, components ...Component) {
	for _, comp := range components {
		if err := comp.OnLoad(c); err != nil {
			if m.logger != nil {
				m.logger.WithError(err).WithFields(logrus.Fields{
					"component": comp.Name(),
					"uid":       comp.UID(),
				}).Error("component failed to load, continuing without it")
			}
			continue
		}
		m.loaded = append(m.loaded, comp)
		if m.logger != nil {
			m.logger.WithFields(logrus.Fields{"component": comp.Name(), "uid": comp.UID()}).Info("component loaded")
		}
	}
}

// Loaded returns the components that loaded successfully, in load order.
func (m *Manifest) Loaded() []Component {
	out := make([]Component, len(m.loaded))
	copy(out, m.loaded)
	return out
}

// Free calls OnFree on every loaded component in reverse load order.
func (m *Manifest) Free() {
	for i := len(m.loaded) - 1; i >= 0; i-- {
		m.loaded[i].OnFree()
	}
	m.loaded = nil
}
