package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetConfigFromPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), NestedConfigFileName, `
packageManager: pnpm
plugins:
  - image
  - doc
`)

	cfg, err := GetConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "pnpm", cfg.PackageManager)
	assert.Equal(t, []string{"image", "doc"}, cfg.Plugins)
}

func TestGetConfigFromPath_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, t.TempDir(), NestedConfigFileName, "notAField: true\n")

	_, err := GetConfigFromPath(path)
	require.Error(t, err)
}

func TestGetConfigFromPath_Missing(t *testing.T) {
	_, err := GetConfigFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestGetConfig_EnvironmentWins(t *testing.T) {
	path := writeConfig(t, t.TempDir(), NestedConfigFileName, "globalRoot: /opt/node_modules\n")
	t.Setenv(ConfigEnvironmentKey, path)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "/opt/node_modules", cfg.GlobalRoot)
}

func TestGetConfig_SkipsBrokenFiles(t *testing.T) {
	broken := writeConfig(t, t.TempDir(), NestedConfigFileName, "{notyaml\n")
	good := writeConfig(t, t.TempDir(), NestedConfigFileName, "packageManager: bun\n")

	cfg, err := GetConfig(good)
	require.NoError(t, err)
	assert.Equal(t, "bun", cfg.PackageManager)

	cfg, err = GetConfig(broken, good)
	require.NoError(t, err)
	assert.Equal(t, "bun", cfg.PackageManager)
}
