package file

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_SetStatsThePath(t *testing.T) {
	dir := t.TempDir()
	regular := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(regular, []byte("loglevel: debug\n"), 0o644))

	t.Run("existing file", func(t *testing.T) {
		flag := &Flag{}
		require.NoError(t, flag.Set(regular))
		assert.Equal(t, regular, flag.String())
		require.True(t, flag.Exists())
		assert.True(t, flag.Mode().IsRegular())
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		flag := &Flag{}
		require.NoError(t, flag.Set(filepath.Join(dir, "absent.yaml")))
		assert.False(t, flag.Exists())
	})

	t.Run("directory", func(t *testing.T) {
		flag := &Flag{}
		require.NoError(t, flag.Set(dir))
		require.True(t, flag.Exists())
		assert.True(t, flag.IsDir())
	})
}

func TestFlag_VarAndGet(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	Var(fs, "config", "default.yaml", "configuration file")
	flag, err := Get(fs, "config")
	require.NoError(t, err)
	assert.Equal(t, "default.yaml", flag.String())

	VarP(fs, "manifest", "m", "manifest.json", "manifest file")
	flag, err = Get(fs, "manifest")
	require.NoError(t, err)
	assert.Equal(t, "manifest.json", flag.String())

	_, err = Get(fs, "undefined")
	require.Error(t, err)

	fs.String("plain", "", "not a path flag")
	_, err = Get(fs, "plain")
	require.Error(t, err)
}

func TestFlag_Open(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("pluginRoot: /opt/plugins\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	flag := &Flag{}
	require.NoError(t, flag.Set(path))

	reader, err := flag.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	flag = &Flag{}
	require.NoError(t, flag.Set(filepath.Join(dir, "absent.yaml")))
	_, err = flag.Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
