package context

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	v1 "mediaproc.dev/cli/configuration/v1"
	"mediaproc.dev/cli/internal/pkgmgr"
	"mediaproc.dev/cli/internal/plugin/loader"
	"mediaproc.dev/cli/internal/plugin/manager"
)

type ctxKey string

const key ctxKey = "mediaproc.dev/cli/internal/context"

// Context is the mediaproc Command Line context.
// It contains pointers to centrally managed structures that are created
// once and used by many commands at once.
// Note that they integrate with context.Context, but are only passed as pointers
// so that access is always done at O(1) lookup time.
//
// The Context should only be used to transfer centrally passed struct pointers
type Context struct {
	mu sync.RWMutex

	// configuration is the merged CLI configuration of all well-known
	// configuration files. It can be used to initialize other components and
	// is always guaranteed to be available first.
	// In case the config is not set, default values should be used.
	configuration *v1.Config

	// pluginManager is the central integration point into the plugin system.
	// Any command that loads, unloads, reloads or lists plugins should
	// interact with the lifecycle through [manager.Manager].
	pluginManager *manager.Manager

	// packageLoader resolves installed plugin packages on disk. The install
	// commands also use it to verify that an installation actually produced
	// a resolvable package.
	packageLoader *loader.PackageLoader

	// packageManager is the configured or detected package manager used for
	// install, uninstall and update operations.
	packageManager pkgmgr.Manager
}

// WithConfiguration creates a new context with the given configuration.
// After this function is called, the configuration can be retrieved from the context
// using [FromContext] and [Context.Configuration].
func WithConfiguration(ctx context.Context, cfg *v1.Config) context.Context {
	ctx, mpctx := retrieveOrCreateContext(ctx)
	mpctx.mu.Lock()
	defer mpctx.mu.Unlock()
	mpctx.configuration = cfg
	return ctx
}

// WithPluginManager creates a new context with the given plugin manager.
// After this function is called, the plugin manager can be retrieved from the context
// using [FromContext] and [Context.PluginManager].
func WithPluginManager(ctx context.Context, pm *manager.Manager) context.Context {
	ctx, mpctx := retrieveOrCreateContext(ctx)
	mpctx.mu.Lock()
	defer mpctx.mu.Unlock()
	mpctx.pluginManager = pm
	return ctx
}

// WithPackageLoader creates a new context with the given package loader.
// After this function is called, the loader can be retrieved from the context
// using [FromContext] and [Context.PackageLoader].
func WithPackageLoader(ctx context.Context, l *loader.PackageLoader) context.Context {
	ctx, mpctx := retrieveOrCreateContext(ctx)
	mpctx.mu.Lock()
	defer mpctx.mu.Unlock()
	mpctx.packageLoader = l
	return ctx
}

// WithPackageManager creates a new context with the given package manager.
// After this function is called, the manager can be retrieved from the context
// using [FromContext] and [Context.PackageManager].
func WithPackageManager(ctx context.Context, m pkgmgr.Manager) context.Context {
	ctx, mpctx := retrieveOrCreateContext(ctx)
	mpctx.mu.Lock()
	defer mpctx.mu.Unlock()
	mpctx.packageManager = m
	return ctx
}

// Register registers the command to contain a new Context object, so that
// any subcommand based on [cobra.Command.Context] will find it.
func Register(cmd *cobra.Command) {
	ctx, mpctx := retrieveOrCreateContext(cmd.Context())
	mpctx.mu.Lock()
	defer mpctx.mu.Unlock()
	cmd.SetContext(ctx)
}

func (ctx *Context) Configuration() *v1.Config {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.configuration
}

func (ctx *Context) PluginManager() *manager.Manager {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.pluginManager
}

func (ctx *Context) PackageLoader() *loader.PackageLoader {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.packageLoader
}

// PackageManager returns the package manager selected for this invocation,
// falling back to [pkgmgr.DefaultManager] when none was set.
func (ctx *Context) PackageManager() pkgmgr.Manager {
	if ctx == nil {
		return pkgmgr.DefaultManager
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	if ctx.packageManager == "" {
		return pkgmgr.DefaultManager
	}
	return ctx.packageManager
}

// FromContext retrieves the mediaproc context from the given context.
// If the mediaproc context does not exist, it returns nil.
// Within a command or subcommand which was registered with [Register],
// the context is always available and guaranteed to be present.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}

	if v, ok := ctx.Value(key).(*Context); ok {
		return v
	}
	return nil
}

// WithContext creates a new context with the given mediaproc context.
func WithContext(ctx context.Context, c *Context) context.Context {
	if c == nil {
		return nil
	}
	return context.WithValue(ctx, key, c)
}

// retrieveOrCreateContext retrieves the mediaproc context from the given context.
// If the mediaproc context does not exist, it creates a new one and returns it.
func retrieveOrCreateContext(ctx context.Context) (context.Context, *Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	mpctx := FromContext(ctx)
	if mpctx == nil {
		mpctx = &Context{}
		ctx = WithContext(ctx, mpctx)
	}
	return ctx, mpctx
}
