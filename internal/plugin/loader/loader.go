// Package loader resolves canonical package names to plugin capabilities.
//
// The manager talks to a Loader instead of importing packages ad hoc, so
// the contract stays explicit: a loader either produces a Capability or a
// typed error, and may optionally support cache invalidation for reloads.
package loader

import (
	"context"
	"errors"

	"mediaproc.dev/cli/internal/plugin"
)

// Loaded is the result of a successful load.
type Loaded struct {
	Capability plugin.Capability
	// BuiltIn marks capabilities compiled into the binary rather than
	// resolved from an installed package.
	BuiltIn bool
	// Dir is the package directory the capability was loaded from, or
	// "builtin" for compiled-in plugins.
	Dir string
}

// Loader resolves a canonical package name to a plugin capability.
// A miss is reported as plugin.ErrPluginNotFound; anything else is a load
// failure.
type Loader interface {
	Load(ctx context.Context, canonical string) (*Loaded, error)
}

// Invalidator is an optional loader capability that evicts cached state for
// a canonical name. Loaders without a cache simply do not implement it and
// reload treats invalidation as a documented no-op.
type Invalidator interface {
	Invalidate(canonical string)
}

// Chain tries each loader in order, falling through on misses. The first
// loader that resolves the name wins; a non-miss error stops the chain.
type Chain []Loader

func (c Chain) Load(ctx context.Context, canonical string) (*Loaded, error) {
	for _, l := range c {
		loaded, err := l.Load(ctx, canonical)
		if errors.Is(err, plugin.ErrPluginNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return loaded, nil
	}
	return nil, plugin.ErrPluginNotFound
}

// Invalidate forwards the eviction to every chained loader that supports
// it.
func (c Chain) Invalidate(canonical string) {
	for _, l := range c {
		if inv, ok := l.(Invalidator); ok {
			inv.Invalidate(canonical)
		}
	}
}
