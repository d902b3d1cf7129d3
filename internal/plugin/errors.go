package plugin

import "errors"

var (
	// ErrInvalidName is returned when a plugin name contains characters
	// outside the safe identifier set or is empty. Rejected before any I/O.
	ErrInvalidName = errors.New("invalid plugin name")

	// ErrConcurrentLoad is returned when a load is requested for a plugin
	// that is already mid-load. This signals misuse, not a transient
	// condition; callers must not retry in a tight loop.
	ErrConcurrentLoad = errors.New("plugin load already in progress")

	// ErrMalformedPlugin is returned when a loadable package does not
	// satisfy the capability contract (missing name, version, or commands).
	// Malformed plugins are permanent failures and are never auto-retried.
	ErrMalformedPlugin = errors.New("malformed plugin")

	// ErrPluginNotFound is returned by loaders when the canonical package
	// cannot be resolved. For the CLI this means "not installed yet", which
	// is an expected outcome rather than a hard failure.
	ErrPluginNotFound = errors.New("plugin not found")
)
