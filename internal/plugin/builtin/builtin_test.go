package builtin

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaproc.dev/cli/internal/plugin"
)

type noopCapability struct{ name, version string }

func (c noopCapability) Name() string                  { return c.name }
func (c noopCapability) Version() string               { return c.version }
func (c noopCapability) Register(*cobra.Command) error { return nil }

func TestRegistry_RegisterAndLoad(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("@mediaproc/core", noopCapability{"@mediaproc/core", "1.0.0"}))

	loaded, err := r.Load(context.Background(), "@mediaproc/core")
	require.NoError(t, err)
	assert.True(t, loaded.BuiltIn)
	assert.Equal(t, "builtin", loaded.Dir)
	assert.Equal(t, "1.0.0", loaded.Capability.Version())
}

func TestRegistry_MissFallsThrough(t *testing.T) {
	r := New()
	_, err := r.Load(context.Background(), "@mediaproc/unknown")
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrPluginNotFound)
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("@mediaproc/core", noopCapability{"@mediaproc/core", "1.0.0"}))
	assert.Error(t, r.Register("@mediaproc/core", noopCapability{"@mediaproc/core", "2.0.0"}))
}

func TestRegistry_RejectsEmptyRegistration(t *testing.T) {
	r := New()
	assert.Error(t, r.Register("", noopCapability{}))
	assert.Error(t, r.Register("@mediaproc/core", nil))
}
