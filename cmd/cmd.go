package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mediaproc.dev/cli/cmd/configuration"
	mpcmd "mediaproc.dev/cli/cmd/internal/cmd"
	"mediaproc.dev/cli/cmd/plugin"
	"mediaproc.dev/cli/cmd/setup"
	"mediaproc.dev/cli/cmd/setup/hooks"
	"mediaproc.dev/cli/cmd/version"
	"mediaproc.dev/cli/internal/flags/log"
)

// Execute adds all child commands to the Cmd command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the Cmd.
//
// The plugin system is bootstrapped before cobra dispatches so that
// commands contributed by plugins are already attached when the target
// command is resolved. A bootstrap failure degrades to the built-in
// commands instead of aborting.
func Execute() {
	cmd := New()
	if err := setup.Bootstrap(cmd, os.Args[1:]); err != nil {
		slog.Warn("plugin bootstrap failed, continuing with built-in commands", slog.String("error", err.Error()))
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mediaproc [sub-command]",
		Short: "The mediaproc command line client",
		Long: `The mediaproc command line client processes images, video, audio,
documents and other media through plugins.

Plugins are npm packages loaded at startup or on demand; use the plugin
sub-command to install, inspect and remove them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: hooks.PreRunE,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	configuration.RegisterConfigFlag(cmd)

	cmd.PersistentFlags().String(mpcmd.PackageManagerFlag, "", `Force a specific package manager (npm, pnpm, yarn, bun, deno) instead of detecting one.`)
	cmd.PersistentFlags().StringArray(mpcmd.PluginRootFlag, nil, `Additional directory to resolve plugin packages from. May be repeated.`)
	cmd.PersistentFlags().String(mpcmd.GlobalRootFlag, "", `Override the detected global package root directory.`)
	cmd.PersistentFlags().Duration(mpcmd.InstallTimeoutFlag, mpcmd.InstallTimeoutDefault,
		`Timeout for package manager install, remove and update operations.`)
	log.RegisterLoggingFlags(cmd.PersistentFlags())
	cmd.AddCommand(plugin.New())
	cmd.AddCommand(version.New())
	return cmd
}
