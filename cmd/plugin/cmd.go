// Package plugin provides the plugin management command tree.
package plugin

import (
	"github.com/spf13/cobra"

	"mediaproc.dev/cli/cmd/plugin/add"
	"mediaproc.dev/cli/cmd/plugin/info"
	"mediaproc.dev/cli/cmd/plugin/list"
	"mediaproc.dev/cli/cmd/plugin/remove"
	"mediaproc.dev/cli/cmd/plugin/update"
)

// New represents any command that is related to plugin management.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugin {list|add|remove|update|info}",
		Short: "Manage mediaproc plugins",
		Long: `Manage mediaproc plugins.

Plugins extend the CLI with additional media processing commands. They are
regular npm packages resolved from the local node_modules, any configured
plugin root, or the global package root of the selected package manager.

Short names resolve to canonical package names: official plugins live under
the @mediaproc scope (for example "doc" resolves to "@mediaproc/document"),
anything else is assumed to follow the mediaproc- community convention.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(list.New())
	cmd.AddCommand(add.New())
	cmd.AddCommand(remove.New())
	cmd.AddCommand(update.New())
	cmd.AddCommand(info.New())
	return cmd
}
