package add

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	mpcmd "mediaproc.dev/cli/cmd/internal/cmd"
	mpctx "mediaproc.dev/cli/internal/context"
	"mediaproc.dev/cli/internal/pkgmgr"
	"mediaproc.dev/cli/internal/plugin"
	"mediaproc.dev/cli/internal/plugin/registry"
)

const (
	FlagGlobal  = "global"
	FlagSaveDev = "save-dev"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add {plugin} [plugin...]",
		Aliases: []string{"install"},
		Short:   "Install and load plugins",
		Long: `Install one or more plugins with the selected package manager and load
them into the current invocation.

Plugins already installed are loaded without touching the package manager.
Short names and aliases resolve to canonical package names, so all of

  mediaproc plugin add doc
  mediaproc plugin add document
  mediaproc plugin add @mediaproc/document

install the same package.`,
		Example: strings.TrimSpace(`
mediaproc plugin add doc
mediaproc plugin add image video --global
mediaproc plugin add mediaproc-watermark --save-dev`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	cmd.Flags().BoolP(FlagGlobal, "g", false, "install into the package manager's global root")
	cmd.Flags().Bool(FlagSaveDev, false, "record the package as a development dependency")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mediaprocContext := mpctx.FromContext(ctx)
	manager := mediaprocContext.PluginManager()
	packageLoader := mediaprocContext.PackageLoader()
	if manager == nil || packageLoader == nil {
		return fmt.Errorf("plugin system is not available")
	}
	packageManager := mediaprocContext.PackageManager()

	global, err := cmd.Flags().GetBool(FlagGlobal)
	if err != nil {
		return err
	}
	saveDev, err := cmd.Flags().GetBool(FlagSaveDev)
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

	// Load whatever is already installed; collect the rest for a single
	// package manager invocation.
	var missing []string
	for _, canonical := range canonicals {
		if manager.IsLoaded(canonical) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is already loaded\n", color.GreenString("✓"), canonical)
			continue
		}
		if _, err := manager.Load(ctx, canonical, cmd.Root()); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s loaded %s\n", color.GreenString("✓"), canonical)
			continue
		} else if !errors.Is(err, plugin.ErrPluginNotFound) {
			return err
		}
		missing = append(missing, canonical)
	}
	if len(missing) == 0 {
		return nil
	}

	if err := install(cmd, packageManager, missing, pkgmgr.InstallOptions{Global: global, SaveDev: saveDev}); err != nil {
		return err
	}

	var failed []string
	for _, canonical := range missing {
		status := pkgmgr.Verify(ctx, packageManager, packageLoader, canonical, global)
		if status == pkgmgr.NotInstalled {
			failed = append(failed, canonical)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s was not found after installation\n", color.RedString("✗"), canonical)
			continue
		}
		if status == pkgmgr.VerificationFailed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s could not verify installation of %s, attempting to load anyway\n", color.YellowString("!"), canonical)
		}
		if _, err := manager.Load(ctx, canonical, cmd.Root()); err != nil {
			failed = append(failed, canonical)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", color.RedString("✗"), err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s installed and loaded %s\n", color.GreenString("✓"), canonical)
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to add plugin(s): %s", strings.Join(failed, ", "))
	}
	return nil
}

func install(cmd *cobra.Command, m pkgmgr.Manager, packages []string, opts pkgmgr.InstallOptions) error {
	argv := pkgmgr.InstallArgs(m, packages, opts)
	if len(argv) == 0 {
		return fmt.Errorf("%w: %s does not support package installation, add the plugin to your import map manually", pkgmgr.ErrNoInstallCommand, m)
	}

	timeout, err := cmd.Flags().GetDuration(mpcmd.InstallTimeoutFlag)
	if err != nil || timeout <= 0 {
		timeout = mpcmd.InstallTimeoutDefault
	}

	fmt.Fprintf(cmd.OutOrStdout(), "installing %s with %s\n", strings.Join(packages, ", "), m)
	return pkgmgr.Run(cmd.Context(), m, argv, pkgmgr.RunOptions{
		Timeout: timeout,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
}
