// Package builtin holds plugin capabilities compiled into the mediaproc
// binary. Built-in plugins take part in the same lifecycle as installed
// packages but are served by this registry before the package loader is
// consulted.
package builtin

import (
	"context"
	"fmt"

	"mediaproc.dev/cli/internal/plugin"
	"mediaproc.dev/cli/internal/plugin/loader"
	syncx "mediaproc.dev/cli/internal/sync"
)

// Registry serves compiled-in capabilities by canonical name.
// The zero value is empty and ready for use.
type Registry struct {
	capabilities syncx.Map[string, plugin.Capability]
}

// New creates an empty built-in registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a compiled-in capability under its canonical name.
// Registering the same name twice is a programming error and is rejected.
func (r *Registry) Register(canonical string, capability plugin.Capability) error {
	if canonical == "" || capability == nil {
		return fmt.Errorf("%w: builtin registration requires a name and a capability", plugin.ErrInvalidName)
	}
	if _, loaded := r.capabilities.LoadOrStore(canonical, capability); loaded {
		return fmt.Errorf("builtin plugin %q already registered", canonical)
	}
	return nil
}

// Load serves the capability when registered, or reports a miss so the
// chain falls through to the package loader.
func (r *Registry) Load(_ context.Context, canonical string) (*loader.Loaded, error) {
	capability, ok := r.capabilities.Load(canonical)
	if !ok {
		return nil, fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, canonical)
	}
	return &loader.Loaded{
		Capability: capability,
		BuiltIn:    true,
		Dir:        "builtin",
	}, nil
}
