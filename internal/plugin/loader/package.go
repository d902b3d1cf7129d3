package loader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"mediaproc.dev/cli/internal/plugin"
	syncx "mediaproc.dev/cli/internal/sync"
)

// nodeRuntime executes installed plugin entry points.
const nodeRuntime = "node"

// PackageLoader resolves plugins from installed npm-ecosystem packages.
// Manifests are cached per canonical name; Invalidate evicts a cache entry
// so a reload observes a changed package.
type PackageLoader struct {
	roots []string
	cache syncx.Map[string, *resolved]
}

type resolved struct {
	dir      string
	manifest *Manifest
}

// NewPackageLoader creates a loader resolving packages under the given
// roots in order. Roots are typically the local node_modules directory
// followed by the package manager's global root.
func NewPackageLoader(roots ...string) *PackageLoader {
	return &PackageLoader{roots: roots}
}

// Roots returns the configured resolution roots.
func (l *PackageLoader) Roots() []string {
	out := make([]string, len(l.roots))
	copy(out, l.roots)
	return out
}

// ResolveDir returns the directory of the installed package, or
// plugin.ErrPluginNotFound when the package resolves under none of the
// roots. Also satisfies the verifier's PackageResolver.
func (l *PackageLoader) ResolveDir(canonical string) (string, error) {
	for _, root := range l.roots {
		dir := filepath.Join(root, filepath.FromSlash(canonical))
		if _, err := os.Stat(filepath.Join(dir, manifestFileName)); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, canonical)
}

// Load resolves the package and builds a capability from its manifest.
func (l *PackageLoader) Load(ctx context.Context, canonical string) (*Loaded, error) {
	res, ok := l.cache.Load(canonical)
	if !ok {
		dir, err := l.ResolveDir(canonical)
		if err != nil {
			return nil, err
		}
		manifest, err := readManifest(dir)
		if err != nil {
			return nil, err
		}
		if manifest.Name != canonical {
			slogctx.FromCtx(ctx).WarnContext(ctx, "plugin manifest name differs from canonical package name",
				"canonical", canonical, "manifest", manifest.Name)
		}
		res = &resolved{dir: dir, manifest: manifest}
		l.cache.Store(canonical, res)
	}

	return &Loaded{
		Capability: &packageCapability{
			canonical: canonical,
			dir:       res.dir,
			manifest:  res.manifest,
		},
		Dir: res.dir,
	}, nil
}

// Invalidate drops the cached manifest for a canonical name so the next
// load re-reads the package from disk.
func (l *PackageLoader) Invalidate(canonical string) {
	l.cache.Delete(canonical)
}

// packageCapability adapts an installed package manifest to the capability
// contract. Each declared command becomes a cobra subcommand that executes
// the package's bin entry through the node runtime with untouched
// arguments.
type packageCapability struct {
	canonical string
	dir       string
	manifest  *Manifest
}

func (c *packageCapability) Name() string    { return c.manifest.Name }
func (c *packageCapability) Version() string { return c.manifest.Version }

func (c *packageCapability) Description() string { return c.manifest.Description }
func (c *packageCapability) SystemRequirements() []string {
	return c.manifest.MediaProc.SystemRequirements
}

func (c *packageCapability) Register(program *cobra.Command) error {
	bin := filepath.Join(c.dir, filepath.FromSlash(c.manifest.Bin.Path()))
	if _, err := os.Stat(bin); err != nil {
		return fmt.Errorf("%w: %s executable %s: %v", plugin.ErrMalformedPlugin, c.canonical, bin, err)
	}

	for _, spec := range c.manifest.MediaProc.Commands {
		use := spec.Use
		if use == "" {
			use = spec.Name
		}
		sub := spec.Name
		program.AddCommand(&cobra.Command{
			Use:                use,
			Short:              spec.Short,
			DisableFlagParsing: true,
			Annotations:        map[string]string{"plugin": c.canonical},
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEntryPoint(cmd, bin, append([]string{sub}, args...))
			},
		})
	}
	return nil
}

// runEntryPoint executes the plugin binary, inheriting the command's
// streams so transforms are interactive.
func runEntryPoint(cmd *cobra.Command, bin string, args []string) error {
	ctx := cmd.Context()
	proc := exec.CommandContext(ctx, nodeRuntime, append([]string{bin}, args...)...)
	proc.Stdin = cmd.InOrStdin()
	proc.Stdout = cmd.OutOrStdout()
	proc.Stderr = cmd.ErrOrStderr()
	if err := proc.Run(); err != nil {
		return fmt.Errorf("plugin command %s failed: %w", cmd.Name(), err)
	}
	return nil
}
