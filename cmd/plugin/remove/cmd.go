package remove

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

const (
	FlagGlobal      = "global"
	FlagKeepPackage = "keep-package"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove {plugin} [plugin...]",
		Aliases: []string{"rm", "uninstall"},
		Short:   "Unload plugins and uninstall their packages",
		Long: `Unload one or more plugins and uninstall their packages with the
selected package manager.

Removing a plugin that is not loaded still uninstalls the package. With
--keep-package the plugin is only unloaded and the package stays installed.`,
		Example: strings.TrimSpace(`
mediaproc plugin remove doc
mediaproc plugin remove image --global
mediaproc plugin remove video --keep-package`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	cmd.Flags().BoolP(FlagGlobal, "g", false, "uninstall from the package manager's global root")
	cmd.Flags().Bool(FlagKeepPackage, false, "only unload the plugin, keep the package installed")

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
	keepPackage, err := cmd.Flags().GetBool(FlagKeepPackage)
	if err != nil {
		return err
	}

	var uninstall []string
	for _, name := range args {
		canonical, err := registry.Resolve(name)
		if err != nil {
			return err
		}
		if manager.Unload(ctx, canonical) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s unloaded %s\n", color.GreenString("✓"), canonical)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s was not loaded\n", canonical)
		}
		uninstall = append(uninstall, canonical)
	}
	if keepPackage {
		return nil
	}

	argv := pkgmgr.UninstallArgs(packageManager, uninstall, global)
	if len(argv) == 0 {
		return fmt.Errorf("%w: %s does not support package removal, remove the plugin from your import map manually", pkgmgr.ErrNoInstallCommand, packageManager)
	}

	timeout, err := cmd.Flags().GetDuration(mpcmd.InstallTimeoutFlag)
	if err != nil || timeout <= 0 {
		timeout = mpcmd.InstallTimeoutDefault
	}

	fmt.Fprintf(cmd.OutOrStdout(), "uninstalling %s with %s\n", strings.Join(uninstall, ", "), packageManager)
	if err := pkgmgr.Run(ctx, packageManager, argv, pkgmgr.RunOptions{
		Timeout: timeout,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}

	// Drop any cached manifest so a later add re-reads the package.
	if packageLoader := mediaprocContext.PackageLoader(); packageLoader != nil {
		for _, canonical := range uninstall {
			packageLoader.Invalidate(canonical)
		}
	}
	return nil
}
