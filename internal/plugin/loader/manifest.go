package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"

	"mediaproc.dev/cli/internal/plugin"
)

// manifestFileName is the package manifest read from an installed plugin
// package directory.
const manifestFileName = "package.json"

// Manifest is the subset of a plugin package's package.json the CLI needs.
// The mediaproc section declares the subcommands the plugin contributes.
type Manifest struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Bin         binField     `json:"bin"`
	MediaProc   PluginConfig `json:"mediaproc"`
}

// PluginConfig is the mediaproc-specific manifest section.
type PluginConfig struct {
	Commands           []CommandSpec `json:"commands"`
	SystemRequirements []string      `json:"systemRequirements"`
}

// CommandSpec declares one subcommand contributed by a plugin.
type CommandSpec struct {
	Name  string `json:"name"`
	Use   string `json:"use"`
	Short string `json:"short"`
}

// binField decodes the package.json "bin" field, which is either a single
// path or a map of executable name to path.
type binField struct {
	entries map[string]string
}

func (b *binField) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		b.entries = map[string]string{"": single}
		return nil
	}
	return json.Unmarshal(data, &b.entries)
}

// Path returns the package-relative path of the plugin executable. With
// multiple bin entries the lexicographically first is used so resolution is
// deterministic.
func (b binField) Path() string {
	if len(b.entries) == 0 {
		return ""
	}
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return b.entries[keys[0]]
}

// readManifest reads and validates the manifest of the package at dir.
// Contract violations are permanent failures reported as
// plugin.ErrMalformedPlugin.
func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return nil, fmt.Errorf("reading plugin manifest in %s: %w", dir, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: invalid manifest in %s: %v", plugin.ErrMalformedPlugin, dir, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// validate enforces the structural capability contract: a name, a semantic
// version, an executable and at least one declared command.
func (m *Manifest) validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: manifest is missing a name", plugin.ErrMalformedPlugin)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: %s is missing a version", plugin.ErrMalformedPlugin, m.Name)
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("%w: %s has invalid version %q: %v", plugin.ErrMalformedPlugin, m.Name, m.Version, err)
	}
	if m.Bin.Path() == "" {
		return fmt.Errorf("%w: %s declares no executable", plugin.ErrMalformedPlugin, m.Name)
	}
	if len(m.MediaProc.Commands) == 0 {
		return fmt.Errorf("%w: %s declares no commands", plugin.ErrMalformedPlugin, m.Name)
	}
	for _, c := range m.MediaProc.Commands {
		if c.Name == "" {
			return fmt.Errorf("%w: %s declares a command without a name", plugin.ErrMalformedPlugin, m.Name)
		}
	}
	return nil
}
