package loader

import (
	"context"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaproc.dev/cli/internal/plugin"
)

type staticCapability struct{ name, version string }

func (c staticCapability) Name() string                  { return c.name }
func (c staticCapability) Version() string               { return c.version }
func (c staticCapability) Register(*cobra.Command) error { return nil }

type staticLoader struct {
	loaded      map[string]*Loaded
	err         error
	invalidated []string
}

func (l *staticLoader) Load(_ context.Context, canonical string) (*Loaded, error) {
	if l.err != nil {
		return nil, l.err
	}
	if loaded, ok := l.loaded[canonical]; ok {
		return loaded, nil
	}
	return nil, fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, canonical)
}

func (l *staticLoader) Invalidate(canonical string) {
	l.invalidated = append(l.invalidated, canonical)
}

func TestChain_FirstHitWins(t *testing.T) {
	first := &staticLoader{loaded: map[string]*Loaded{
		"@mediaproc/image": {Capability: staticCapability{"@mediaproc/image", "1.0.0"}, BuiltIn: true, Dir: "builtin"},
	}}
	second := &staticLoader{loaded: map[string]*Loaded{
		"@mediaproc/image": {Capability: staticCapability{"@mediaproc/image", "2.0.0"}},
		"@mediaproc/video": {Capability: staticCapability{"@mediaproc/video", "0.4.0"}},
	}}
	chain := Chain{first, second}

	loaded, err := chain.Load(context.Background(), "@mediaproc/image")
	require.NoError(t, err)
	assert.True(t, loaded.BuiltIn)
	assert.Equal(t, "1.0.0", loaded.Capability.Version())

	loaded, err = chain.Load(context.Background(), "@mediaproc/video")
	require.NoError(t, err)
	assert.False(t, loaded.BuiltIn)
}

func TestChain_MissFallsThrough(t *testing.T) {
	chain := Chain{&staticLoader{}, &staticLoader{}}
	_, err := chain.Load(context.Background(), "mediaproc-nowhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrPluginNotFound)
}

func TestChain_HardErrorStopsChain(t *testing.T) {
	chain := Chain{
		&staticLoader{err: fmt.Errorf("%w: broken", plugin.ErrMalformedPlugin)},
		&staticLoader{loaded: map[string]*Loaded{
			"mediaproc-x": {Capability: staticCapability{"mediaproc-x", "1.0.0"}},
		}},
	}
	_, err := chain.Load(context.Background(), "mediaproc-x")
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrMalformedPlugin)
}

func TestChain_InvalidateForwards(t *testing.T) {
	first := &staticLoader{}
	second := &staticLoader{}
	chain := Chain{first, second}

	chain.Invalidate("@mediaproc/image")
	assert.Equal(t, []string{"@mediaproc/image"}, first.invalidated)
	assert.Equal(t, []string{"@mediaproc/image"}, second.invalidated)
}
