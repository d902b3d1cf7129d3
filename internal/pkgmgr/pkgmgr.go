// Package pkgmgr detects the host's JavaScript package manager and drives it
// to install, remove, update and list plugin packages.
//
// Argument vectors are built from pure lookup tables because each manager
// has idiosyncratic flags for global and dev installs. Child processes are
// awaited to completion under a bounded timeout; there is no streaming or
// mid-install cancellation.
package pkgmgr

import (
	"context"
	"io"
	"os/exec"
	"time"

	slogctx "github.com/veqryn/slog-context"
)

// Manager identifies a supported package manager binary.
type Manager string

const (
	Pnpm Manager = "pnpm"
	Npm  Manager = "npm"
	Yarn Manager = "yarn"
	Bun  Manager = "bun"
	Deno Manager = "deno"
)

// DefaultManager is the fallback when no supported manager responds to a
// probe. npm ships with every Node installation, so detection never fails
// outright.
const DefaultManager = Npm

// preferenceOrder is the fixed probe order for detection.
var preferenceOrder = []Manager{Pnpm, Npm, Yarn, Bun, Deno}

// detectTimeout bounds a single version probe so detection can never block
// startup.
const detectTimeout = 5 * time.Second

// Parse returns the Manager for a user- or config-supplied name.
func Parse(name string) (Manager, bool) {
	for _, m := range preferenceOrder {
		if string(m) == name {
			return m, true
		}
	}
	return "", false
}

// Managers returns the supported managers in probe order.
func Managers() []Manager {
	out := make([]Manager, len(preferenceOrder))
	copy(out, preferenceOrder)
	return out
}

// Detect probes the preference order with a version query and returns the
// first manager that responds. If none respond it falls back to
// DefaultManager rather than failing.
func Detect(ctx context.Context) Manager {
	return detect(ctx, probeVersion)
}

func detect(ctx context.Context, probe func(context.Context, Manager) bool) Manager {
	log := slogctx.FromCtx(ctx)
	for _, m := range preferenceOrder {
		if probe(ctx, m) {
			log.DebugContext(ctx, "detected package manager", "manager", string(m))
			return m
		}
	}
	log.DebugContext(ctx, "no package manager responded, falling back", "manager", string(DefaultManager))
	return DefaultManager
}

// probeVersion runs `<manager> --version`, discarding output. Any response
// within the timeout counts as available.
func probeVersion(ctx context.Context, m Manager) bool {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, string(m), "--version")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run() == nil
}
