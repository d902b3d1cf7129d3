// Package plugin defines the capability contract loaded plugins must
// satisfy and the sentinel errors shared across the plugin subsystem.
//
// A plugin is identified by its canonical package name (for example
// "@mediaproc/image" or "mediaproc-filters") and contributes subcommands to
// the shared root command when registered. The contract is structural: any
// value implementing Capability is accepted, whether it is compiled into the
// binary or backed by an installed package.
package plugin

import "github.com/spf13/cobra"

// Capability is the contract a loaded plugin must satisfy.
// Register is invoked exactly once per successful load with the shared
// command-line program so the plugin can attach its own subcommands.
type Capability interface {
	Name() string
	Version() string
	Register(program *cobra.Command) error
}

// Cleaner is an optional capability for plugins that hold resources.
// Cleanup is invoked on unload; a failure is downgraded to a warning and
// never blocks the unload.
type Cleaner interface {
	Cleanup() error
}

// Describer is an optional capability exposing human-oriented metadata.
type Describer interface {
	Description() string
	SystemRequirements() []string
}
