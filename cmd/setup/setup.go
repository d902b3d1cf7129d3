package setup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	slogctx "github.com/veqryn/slog-context"

	"mediaproc.dev/cli/cmd/configuration"
	mpcmd "mediaproc.dev/cli/cmd/internal/cmd"
	v1 "mediaproc.dev/cli/configuration/v1"
	mpctx "mediaproc.dev/cli/internal/context"
	"mediaproc.dev/cli/internal/pkgmgr"
	"mediaproc.dev/cli/internal/plugin/builtin"
	"mediaproc.dev/cli/internal/plugin/loader"
	"mediaproc.dev/cli/internal/plugin/manager"
	"mediaproc.dev/cli/internal/plugin/registry"
)

// Builtins holds the capabilities compiled into the binary. Link-time
// extensions register here in an init function before Execute runs; they
// are consulted before any package on disk.
var Builtins = builtin.New()

// Config loads the configuration for the command and stores it in the
// command context. A missing or broken configuration never fails the
// command, defaults apply instead.
func Config(cmd *cobra.Command) {
	cfg, err := configuration.GetConfigForCommand(cmd)
	if err != nil {
		slog.DebugContext(cmd.Context(), "could not get configuration", slog.String("error", err.Error()))
		cfg = &v1.Config{}
	}

	ctx := mpctx.WithConfiguration(cmd.Context(), cfg)
	cmd.SetContext(ctx)
}

// PluginSystem wires the plugin subsystem into the command context: the
// package manager used for installs, the loader chain resolving plugin
// packages on disk, and the plugin manager owning the lifecycle.
func PluginSystem(cmd *cobra.Command) error {
	cfg := mpctx.FromContext(cmd.Context()).Configuration()
	if cfg == nil {
		cfg = &v1.Config{}
	}

	mgr, err := resolvePackageManager(cmd, cfg)
	if err != nil {
		return err
	}

	roots := resolveRoots(cmd, cfg, mgr)
	packageLoader := loader.NewPackageLoader(roots...)
	pluginManager := manager.New(loader.Chain{Builtins, packageLoader})

	ctx := mpctx.WithPackageManager(cmd.Context(), mgr)
	ctx = mpctx.WithPackageLoader(ctx, packageLoader)
	ctx = mpctx.WithPluginManager(ctx, pluginManager)
	cmd.SetContext(ctx)

	return nil
}

// AutoLoad loads the plugins listed in the configuration and attaches
// their commands to the program. Individual load failures are logged and
// skipped so one broken plugin never takes the CLI down.
func AutoLoad(cmd *cobra.Command, program *cobra.Command) {
	ctx := cmd.Context()
	mediaprocContext := mpctx.FromContext(ctx)
	cfg := mediaprocContext.Configuration()
	if cfg == nil || len(cfg.Plugins) == 0 {
		return
	}

	canonicals := make([]string, 0, len(cfg.Plugins))
	for _, name := range cfg.Plugins {
		canonical, err := registry.Resolve(name)
		if err != nil {
			slogctx.FromCtx(ctx).WarnContext(ctx, "skipping configured plugin with invalid name",
				"name", name, "error", err.Error())
			continue
		}
		canonicals = append(canonicals, canonical)
	}

	results, _ := mediaprocContext.PluginManager().LoadMany(ctx, canonicals, program, false)
	for _, result := range results {
		if result.Err != nil {
			slogctx.FromCtx(ctx).WarnContext(ctx, "configured plugin failed to load",
				"plugin", result.CanonicalName, "error", result.Err.Error())
		}
	}
}

// Bootstrap prepares the root command before cobra dispatches: it parses
// the persistent flags early, loads the configuration, wires the plugin
// system and attaches the configured plugins' commands. This has to happen
// before Execute because cobra resolves the target command first and only
// then runs the PersistentPreRunE hooks, so commands contributed by
// plugins must already be attached at dispatch time.
func Bootstrap(root *cobra.Command, args []string) error {
	earlyParse(root, args)

	Config(root)
	if err := PluginSystem(root); err != nil {
		return fmt.Errorf("could not set up plugin system: %w", err)
	}
	AutoLoad(root, root)
	return nil
}

// earlyParse parses the root's persistent flags from the raw arguments,
// tolerating flags that belong to subcommands. The flag objects are shared
// with the root command, so values and Changed markers carry over to the
// regular parse during Execute.
func earlyParse(root *cobra.Command, args []string) {
	flagSet := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	flagSet.ParseErrorsWhitelist.UnknownFlags = true
	flagSet.Usage = func() {}
	flagSet.AddFlagSet(root.PersistentFlags())
	if err := flagSet.Parse(args); err != nil {
		slog.Debug("early flag parse incomplete", slog.String("error", err.Error()))
	}
}

// lookupFlag finds a persistent flag regardless of whether cobra already
// merged the persistent flags into the command's flag set; before Execute
// (the bootstrap path) they only exist in PersistentFlags.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	return cmd.PersistentFlags().Lookup(name)
}

// resolvePackageManager picks the package manager for this invocation. An
// explicit flag wins over the configuration file, which wins over
// detection on PATH.
func resolvePackageManager(cmd *cobra.Command, cfg *v1.Config) (pkgmgr.Manager, error) {
	if flag := lookupFlag(cmd, mpcmd.PackageManagerFlag); flag != nil && flag.Changed {
		name := flag.Value.String()
		mgr, ok := pkgmgr.Parse(name)
		if !ok {
			return "", fmt.Errorf("unknown package manager %q, expected one of %v", name, pkgmgr.Managers())
		}
		return mgr, nil
	}

	if cfg.PackageManager != "" {
		mgr, ok := pkgmgr.Parse(cfg.PackageManager)
		if !ok {
			return "", fmt.Errorf("unknown package manager %q in configuration, expected one of %v", cfg.PackageManager, pkgmgr.Managers())
		}
		return mgr, nil
	}

	return pkgmgr.Detect(cmd.Context()), nil
}

// resolveRoots builds the ordered list of directories plugin packages are
// resolved from: explicit flag roots, configured roots, the local
// node_modules of the working directory, and finally the global root of
// the selected package manager.
func resolveRoots(cmd *cobra.Command, cfg *v1.Config, mgr pkgmgr.Manager) []string {
	var roots []string
	if flag := lookupFlag(cmd, mpcmd.PluginRootFlag); flag != nil {
		if slice, ok := flag.Value.(pflag.SliceValue); ok {
			roots = append(roots, slice.GetSlice()...)
		}
	}
	roots = append(roots, cfg.PluginRoots...)

	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, filepath.Join(wd, "node_modules"))
	}

	global := cfg.GlobalRoot
	if flag := lookupFlag(cmd, mpcmd.GlobalRootFlag); flag != nil && flag.Changed {
		if v := flag.Value.String(); v != "" {
			global = v
		}
	}
	if global == "" {
		global = pkgmgr.GlobalRoot(cmd.Context(), mgr)
		// yarn reports the global folder, packages live one level below
		if global != "" && mgr == pkgmgr.Yarn {
			global = filepath.Join(global, "node_modules")
		}
	}
	if global != "" {
		roots = append(roots, global)
	}

	return roots
}
