package pkgmgr

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"
)

// Status is the tri-state result of an installation check. "Not yet
// installed" is an expected outcome, so verification is a value, never an
// error.
type Status int

const (
	NotInstalled Status = iota
	Installed
	VerificationFailed
)

func (s Status) String() string {
	switch s {
	case NotInstalled:
		return "not installed"
	case Installed:
		return "installed"
	case VerificationFailed:
		return "verification failed"
	default:
		return "unknown"
	}
}

// PackageResolver reports whether a canonical package resolves on disk.
// It is satisfied by the plugin package loader.
type PackageResolver interface {
	// ResolveDir returns the package directory for a canonical name, or an
	// error when the package is not resolvable.
	ResolveDir(canonical string) (string, error)
}

// Verify checks whether a canonical package is installed.
//
// Direct resolution through the loader wins: resolvable means installed.
// On a miss with global scope, the manager's own listing is consulted to
// cover global installs outside the resolution path. All probe failures are
// absorbed into the tri-state result.
func Verify(ctx context.Context, m Manager, resolver PackageResolver, canonical string, global bool) Status {
	if resolver != nil {
		if _, err := resolver.ResolveDir(canonical); err == nil {
			return Installed
		}
	}
	if !global {
		return NotInstalled
	}

	argv := ListArgs(m, true)
	if len(argv) == 0 {
		return VerificationFailed
	}
	out, err := Query(ctx, m, argv)
	// npm exits nonzero on unrelated tree problems while still printing the
	// listing; only treat an empty result as a failed probe.
	if err != nil && strings.TrimSpace(out) == "" {
		return VerificationFailed
	}
	if listed(out, canonical) {
		return Installed
	}
	return NotInstalled
}

// listed reports whether the canonical package appears in a manager's
// listing output. JSON listings (npm, pnpm) are checked structurally; plain
// text listings (yarn, bun) fall back to a substring match.
func listed(out, canonical string) bool {
	if gjson.Valid(out) {
		result := gjson.Parse(out)
		// pnpm wraps the listing in a top-level array.
		if result.IsArray() {
			for _, entry := range result.Array() {
				if entry.Get("dependencies." + escapePath(canonical)).Exists() {
					return true
				}
			}
			return false
		}
		return result.Get("dependencies." + escapePath(canonical)).Exists()
	}
	return strings.Contains(out, canonical)
}

// escapePath escapes gjson path metacharacters in a package name.
func escapePath(name string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(name)
}
