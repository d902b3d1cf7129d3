package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "mediaproc.dev/cli/configuration/v1"
	"mediaproc.dev/cli/internal/pkgmgr"
	"mediaproc.dev/cli/internal/plugin/loader"
	"mediaproc.dev/cli/internal/plugin/manager"
)

func TestWithConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		config *v1.Config
	}{
		{
			name:   "basic config",
			config: &v1.Config{PackageManager: "pnpm"},
		},
		{
			name:   "empty config",
			config: &v1.Config{},
		},
		{
			name:   "nil config",
			config: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)

			ctx := WithConfiguration(context.Background(), tt.config)

			mpctx := FromContext(ctx)
			r.NotNil(mpctx, "context should be available")
			r.Equal(tt.config, mpctx.Configuration())
		})
	}
}

func TestNilContextAccessors(t *testing.T) {
	var nilCtx *Context
	assert.Nil(t, nilCtx.Configuration())
	assert.Nil(t, nilCtx.PluginManager())
	assert.Nil(t, nilCtx.PackageLoader())
	assert.Equal(t, pkgmgr.DefaultManager, nilCtx.PackageManager())
}

func TestPackageManagerDefaultsWhenUnset(t *testing.T) {
	ctx := WithConfiguration(context.Background(), &v1.Config{})
	mpctx := FromContext(ctx)
	assert.Equal(t, pkgmgr.DefaultManager, mpctx.PackageManager())

	ctx = WithPackageManager(ctx, pkgmgr.Yarn)
	assert.Equal(t, pkgmgr.Yarn, FromContext(ctx).PackageManager())
}

func TestWithPluginManagerAndLoader(t *testing.T) {
	r := require.New(t)

	l := loader.NewPackageLoader(t.TempDir())
	pm := manager.New(l)

	ctx := WithPluginManager(context.Background(), pm)
	ctx = WithPackageLoader(ctx, l)

	mpctx := FromContext(ctx)
	r.NotNil(mpctx)
	r.Same(pm, mpctx.PluginManager())
	r.Same(l, mpctx.PackageLoader())
}

func TestFromContextMissing(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	assert.Nil(t, FromContext(nil))
}

func TestConcurrentReads(t *testing.T) {
	r := require.New(t)

	ctx := WithConfiguration(context.Background(), &v1.Config{GlobalRoot: "/g"})

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()
			mpctx := FromContext(ctx)
			cfg := mpctx.Configuration()
			r.NotNil(cfg, "configuration should be available")
			r.Equal("/g", cfg.GlobalRoot)
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestMutatorsShareOneContext(t *testing.T) {
	r := require.New(t)

	ctx := WithConfiguration(context.Background(), &v1.Config{GlobalRoot: "/g"})
	first := FromContext(ctx)

	ctx = WithPackageManager(ctx, pkgmgr.Bun)
	second := FromContext(ctx)

	r.Same(first, second, "mutators should reuse the existing context object")
	r.Equal("/g", second.Configuration().GlobalRoot)
	r.Equal(pkgmgr.Bun, second.PackageManager())
}

func TestRetrieveOrCreateContext(t *testing.T) {
	r := require.New(t)

	ctx := context.Background()
	newCtx, mpctx := retrieveOrCreateContext(ctx)
	r.NotNil(newCtx, "new context should be created")
	r.NotNil(mpctx, "mediaproc context should be created")

	existingCtx, existing := retrieveOrCreateContext(newCtx)
	r.Equal(newCtx, existingCtx, "should return same context")
	r.Equal(mpctx, existing, "should return same mediaproc context")
}
