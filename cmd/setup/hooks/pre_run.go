package hooks

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"mediaproc.dev/cli/cmd/setup"
	mpctx "mediaproc.dev/cli/internal/context"
	"mediaproc.dev/cli/internal/flags/log"
)

// PreRunE is the persistent pre-run hook shared by all commands. It wires
// the logger from the logging flags and makes sure the command context
// carries the plugin system, setting it up on the spot when the command is
// executed outside the normal bootstrap (as tests do).
func PreRunE(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	slog.SetDefault(logger)
	cmd.SetContext(slogctx.NewCtx(cmd.Context(), logger))

	if mpctx.FromContext(cmd.Context()).PluginManager() == nil {
		setup.Config(cmd)
		if err := setup.PluginSystem(cmd); err != nil {
			return fmt.Errorf("could not setup plugin system: %w", err)
		}
	}

	mpctx.Register(cmd)

	// inherit IO from parent if exists
	if parent := cmd.Parent(); parent != nil {
		cmd.SetOut(parent.OutOrStdout())
		cmd.SetErr(parent.ErrOrStderr())
	}

	return nil
}
