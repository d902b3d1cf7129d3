package update

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	mpcmd "mediaproc.dev/cli/cmd/internal/cmd"
	mpctx "mediaproc.dev/cli/internal/context"
	"mediaproc.dev/cli/internal/pkgmgr"
	"mediaproc.dev/cli/internal/plugin/registry"
)

const FlagGlobal = "global"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update {plugin} [plugin...]",
		Aliases: []string{"upgrade"},
		Short:   "Update plugin packages and reload them",
		Long: `Update one or more plugin packages with the selected package manager.

Plugins that are currently loaded are reloaded afterwards so the updated
version takes effect in this invocation.`,
		Example: strings.TrimSpace(`
mediaproc plugin update doc
mediaproc plugin update image video --global`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	cmd.Flags().BoolP(FlagGlobal, "g", false, "update in the package manager's global root")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mediaprocContext := mpctx.FromContext(ctx)
	manager := mediaprocContext.PluginManager()
	if manager == nil {
		return fmt.Errorf("plugin system is not available")
	}
	packageManager := mediaprocContext.PackageManager()

	global, err := cmd.Flags().GetBool(FlagGlobal)
	if err != nil {
		return err
	}

	canonicals := make([]string, 0, len(args))
	for _, name := range args {
		canonical, err := registry.Resolve(name)
		if err != nil {
			return err
		}
		canonicals = append(canonicals, canonical)
	}

	argv := pkgmgr.UpdateArgs(packageManager, canonicals, global)
	if len(argv) == 0 {
		return fmt.Errorf("%w: %s does not support package updates, update the plugin in your import map manually", pkgmgr.ErrNoInstallCommand, packageManager)
	}

	timeout, err := cmd.Flags().GetDuration(mpcmd.InstallTimeoutFlag)
	if err != nil || timeout <= 0 {
		timeout = mpcmd.InstallTimeoutDefault
	}

	fmt.Fprintf(cmd.OutOrStdout(), "updating %s with %s\n", strings.Join(canonicals, ", "), packageManager)
	if err := pkgmgr.Run(ctx, packageManager, argv, pkgmgr.RunOptions{
		Timeout: timeout,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}

	var failed []string
	for _, canonical := range canonicals {
		if !manager.IsLoaded(canonical) {
			continue
		}
		rec, err := manager.Reload(ctx, canonical, cmd.Root())
		if err != nil {
			failed = append(failed, canonical)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", color.RedString("✗"), err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s reloaded %s@%s\n", color.GreenString("✓"), rec.CanonicalName, rec.Version)
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to reload plugin(s) after update: %s", strings.Join(failed, ", "))
	}
	return nil
}
