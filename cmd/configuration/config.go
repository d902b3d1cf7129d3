// Package configuration locates and loads the mediaproc configuration
// file(s) and exposes them to commands.
package configuration

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	v1 "mediaproc.dev/cli/configuration/v1"
	"mediaproc.dev/cli/internal/flags/file"
)

// Configuration file and directory constants.
const (
	ConfigDirectoryName  = "mediaproc"
	ConfigFileName       = ConfigDirectoryName + "/config.yaml"
	NestedConfigFileName = ".mediaprocrc"
	ConfigEnvironmentKey = "MEDIAPROC_CONFIG"
	ConfigFlagName       = "config"
)

func RegisterConfigFlag(cmd *cobra.Command) {
	file.Var(cmd.PersistentFlags(), ConfigFlagName, "", `supply configuration by a given configuration file.
By default (without specifying custom locations with this flag), the file will be read from one of the well known locations:
1. The path specified in the MEDIAPROC_CONFIG environment variable
2. The XDG_CONFIG_HOME directory (if set), or the default XDG home ($HOME/.config), or the user's home directory
- $XDG_CONFIG_HOME/mediaproc/config.yaml
- $XDG_CONFIG_HOME/.mediaprocrc
- $HOME/.config/mediaproc/config.yaml
- $HOME/.config/.mediaprocrc
- $HOME/.mediaprocrc
3. The current working directory:
- $PWD/mediaproc/config.yaml
- $PWD/.mediaprocrc
Using the option, this configuration file is used instead of the lookup above.`)
}

// GetConfigForCommand loads the configuration for a command, honoring an
// explicit --config flag over the well-known locations.
func GetConfigForCommand(cmd *cobra.Command) (*v1.Config, error) {
	flag, err := file.Get(cmd.Flags(), ConfigFlagName)
	if err != nil {
		// before cobra merges persistent flags the flag only exists there
		flag, err = file.Get(cmd.PersistentFlags(), ConfigFlagName)
	}
	if err == nil && flag.String() != "" {
		if !flag.Exists() {
			return nil, fmt.Errorf("configuration file %q does not exist", flag.String())
		}
		return GetConfigFromPath(flag.String())
	}
	return GetConfig()
}

// GetConfig loads and merges configuration files from all well-known
// locations. Locations that fail to load are skipped with a log entry so a
// single broken file never takes the CLI down.
func GetConfig(additional ...string) (*v1.Config, error) {
	paths, err := GetConfigPaths()
	paths = append(paths, additional...)
	if err != nil && len(additional) == 0 {
		return nil, err
	}
	cfgs := make([]*v1.Config, 0, len(paths))
	for _, path := range paths {
		cfg, err := GetConfigFromPath(path)
		if err != nil {
			slog.Error("config path was skipped due to an error loading it",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		slog.Debug("config was loaded successfully", slog.String("path", path))
		cfgs = append(cfgs, cfg)
	}
	return v1.Merge(cfgs...), nil
}

// GetConfigFromPath reads and decodes the YAML configuration file from the
// specified path.
func GetConfigFromPath(path string) (*v1.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var instance v1.Config
	if err := yaml.UnmarshalStrict(data, &instance); err != nil {
		return nil, fmt.Errorf("decoding configuration at %s: %w", path, err)
	}
	return &instance, nil
}

// GetConfigPaths searches for the configuration file in the following
// locations (in order):
// 1. The path specified in the MEDIAPROC_CONFIG environment variable
// 2. The XDG_CONFIG_HOME directory (if set), the default XDG home
// ($HOME/.config), or the user's home directory
// 3. The current working directory
// 4. The directory of the running executable
func GetConfigPaths() ([]string, error) {
	var paths []string
	if path := getFromEnvironment(); path != "" {
		paths = append(paths, path)
	}
	if path := getFromXDGOrHomeDir(); path != "" {
		paths = append(paths, path)
	}
	if path := getFromWorkingDir(); path != "" {
		paths = append(paths, path)
	}
	if path := getFromExecutableDir(); path != "" {
		paths = append(paths, path)
	}

	if len(paths) > 0 {
		return paths, nil
	}

	return nil, fmt.Errorf("mediaproc config not found in any known location")
}

func getFromEnvironment() string {
	if env := os.Getenv(ConfigEnvironmentKey); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env
		}
	}
	return ""
}

func getFromXDGOrHomeDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if path := checkConfigPaths(xdg); path != "" {
			return path
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if path := checkConfigPaths(filepath.Join(home, ".config")); path != "" {
			return path
		}
		if path := checkConfigPaths(home); path != "" {
			return path
		}
	}

	return ""
}

func getFromWorkingDir() string {
	if wd, err := os.Getwd(); err == nil {
		return checkConfigPaths(wd)
	}
	return ""
}

func getFromExecutableDir() string {
	if exe, err := os.Executable(); err == nil {
		return checkConfigPaths(filepath.Dir(exe))
	}
	return ""
}

// checkConfigPaths searches for both config file variations in a given
// base directory.
func checkConfigPaths(base string) string {
	for _, name := range []string{ConfigFileName, NestedConfigFileName} {
		path := filepath.Join(base, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
