package cmd

import (
	"time"
)

const (
	// PackageManagerFlag Flag to force a specific package manager instead of detecting one (npm, pnpm, yarn, bun, deno).
	PackageManagerFlag = "package-manager"
	// PluginRootFlag Flag to specify additional directories plugin packages are resolved from. May be repeated.
	PluginRootFlag = "plugin-root"
	// GlobalRootFlag Flag to override the detected global package root directory.
	GlobalRootFlag = "global-root"
	// InstallTimeoutFlag Flag to specify the timeout for package manager install operations.
	InstallTimeoutFlag = "install-timeout"
	// InstallTimeoutDefault Default timeout for package manager install operations.
	InstallTimeoutDefault = 5 * time.Minute
)
