// Package v1 defines the mediaproc CLI configuration file schema.
package v1

import "slices"

// Config holds the settings loaded from mediaproc configuration files.
// All fields are optional; zero values mean "decide at runtime".
type Config struct {
	// PackageManager overrides package-manager detection (npm, pnpm, yarn,
	// bun, deno).
	PackageManager string `json:"packageManager,omitempty"`

	// PluginRoots are additional directories plugin packages are resolved
	// from, checked before the default local node_modules.
	PluginRoots []string `json:"pluginRoots,omitempty"`

	// GlobalRoot overrides the detected global package root.
	GlobalRoot string `json:"globalRoot,omitempty"`

	// Plugins are short names or canonical package names loaded at
	// startup. Load failures are logged, never fatal.
	Plugins []string `json:"plugins,omitempty"`
}

// Merge flattens multiple configuration files into one, in order of
// increasing precedence: scalars from later configs win, list fields are
// concatenated with duplicates removed.
func Merge(configs ...*Config) *Config {
	merged := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.PackageManager != "" {
			merged.PackageManager = cfg.PackageManager
		}
		if cfg.GlobalRoot != "" {
			merged.GlobalRoot = cfg.GlobalRoot
		}
		merged.PluginRoots = appendUnique(merged.PluginRoots, cfg.PluginRoots)
		merged.Plugins = appendUnique(merged.Plugins, cfg.Plugins)
	}
	return merged
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
