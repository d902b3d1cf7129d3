package cmd_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaproc.dev/cli/cmd/internal/test"
)

func writePlugin(t *testing.T, root, canonical, manifest string) {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(canonical))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "cli.js"), []byte("#!/usr/bin/env node\n"), 0o755))
}

const imageManifest = `{
  "name": "@mediaproc/image",
  "version": "1.2.0",
  "description": "image transforms",
  "bin": {"mediaproc-image": "./bin/cli.js"},
  "mediaproc": {
    "commands": [
      {"name": "resize", "use": "resize <file>", "short": "Resize an image"}
    ]
  }
}`

func TestHelpListsPluginCommand(t *testing.T) {
	out := new(bytes.Buffer)
	_, err := test.Mediaproc(t, test.WithArgs("help"), test.WithOutput(out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "plugin")
	assert.Contains(t, out.String(), "version")
}

func TestVersionCommand(t *testing.T) {
	out := new(bytes.Buffer)
	_, err := test.Mediaproc(t, test.WithArgs("version"), test.WithOutput(out))
	require.NoError(t, err)
	assert.NotEmpty(t, out.String())
}

func TestPluginList_EmptyIsValidJSON(t *testing.T) {
	out := new(bytes.Buffer)
	_, err := test.Mediaproc(t, test.WithArgs(
		"plugin", "list",
		"--output", "json",
		"--package-manager", "npm",
		"--global-root", t.TempDir(),
	), test.WithOutput(out))
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	assert.Empty(t, rows)
}

func TestPluginInfo_ResolvesAlias(t *testing.T) {
	out := new(bytes.Buffer)
	_, err := test.Mediaproc(t, test.WithArgs(
		"plugin", "info", "doc",
		"--output", "json",
		"--package-manager", "npm",
		"--global-root", t.TempDir(),
	), test.WithOutput(out))
	require.NoError(t, err)

	var details map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &details))
	assert.Equal(t, "@mediaproc/document", details["canonicalName"])
	assert.Equal(t, "official", details["tier"])
	assert.Equal(t, "not installed", details["installStatus"])
	assert.Equal(t, false, details["loaded"])
}

func TestPluginInfo_CanonicalNameKeepsMetadata(t *testing.T) {
	out := new(bytes.Buffer)
	_, err := test.Mediaproc(t, test.WithArgs(
		"plugin", "info", "@mediaproc/document",
		"--output", "json",
		"--package-manager", "npm",
		"--global-root", t.TempDir(),
	), test.WithOutput(out))
	require.NoError(t, err)

	var details map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &details))
	assert.Equal(t, "@mediaproc/document", details["canonicalName"])
	assert.NotEmpty(t, details["description"])
	assert.Equal(t, "document", details["category"])
}

func TestPluginAdd_LoadsInstalledPackage(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "@mediaproc/image", imageManifest)

	out := new(bytes.Buffer)
	_, err := test.Mediaproc(t, test.WithArgs(
		"plugin", "add", "img",
		"--package-manager", "npm",
		"--plugin-root", root,
		"--global-root", t.TempDir(),
	), test.WithOutput(out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "loaded @mediaproc/image")
}

func TestPluginRemove_NotLoadedKeepPackage(t *testing.T) {
	out := new(bytes.Buffer)
	_, err := test.Mediaproc(t, test.WithArgs(
		"plugin", "remove", "doc",
		"--keep-package",
		"--package-manager", "npm",
		"--global-root", t.TempDir(),
	), test.WithOutput(out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "was not loaded")
}

func TestPluginAdd_InvalidNameFails(t *testing.T) {
	out := new(bytes.Buffer)
	_, err := test.Mediaproc(t, test.WithArgs(
		"plugin", "add", "not a valid name",
		"--package-manager", "npm",
		"--global-root", t.TempDir(),
	), test.WithOutput(out))
	require.Error(t, err)
}
