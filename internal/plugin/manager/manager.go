// Package manager owns the in-memory set of loaded plugin instances and
// their lifecycle.
//
// Per canonical name a plugin is in exactly one of four states: absent,
// loading, loaded, or failed. The manager keeps one structure per state
// that needs tracking: the record map (loaded), the loading set (the
// concurrency guard) and the failure log (diagnostics for failed loads).
// Nothing is persisted; the loaded set is per process.
package manager

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"mediaproc.dev/cli/internal/plugin"
	"mediaproc.dev/cli/internal/plugin/loader"
	syncx "mediaproc.dev/cli/internal/sync"
)

// reloadGraceDelay gives an unloaded plugin's child processes a moment to
// release file handles before the fresh load re-reads the package.
const reloadGraceDelay = 250 * time.Millisecond

// Record describes one loaded plugin. Records are created on successful
// load, owned exclusively by the Manager and destroyed on unload.
type Record struct {
	CanonicalName string
	Version       string
	Description   string
	BuiltIn       bool
	Source        string

	capability plugin.Capability
	program    *cobra.Command
	attached   []*cobra.Command
}

// Commands returns the subcommands the plugin attached to the program.
func (r *Record) Commands() []*cobra.Command {
	out := make([]*cobra.Command, len(r.attached))
	copy(out, r.attached)
	return out
}

// Manager drives the plugin lifecycle: load, concurrent-load protection,
// failure memoization, unload with cleanup and reload with cache
// invalidation.
type Manager struct {
	loader loader.Loader

	records  syncx.Map[string, *Record]
	loading  syncx.Map[string, struct{}]
	failures syncx.Map[string, string]

	// programMu serializes mutation of the shared program command tree;
	// cobra's AddCommand is not safe for concurrent use.
	programMu sync.Mutex
}

// New creates a Manager resolving capabilities through the given loader.
func New(l loader.Loader) *Manager {
	return &Manager{loader: l}
}

// Load resolves and registers the plugin with the shared program.
//
// Loading an already-loaded plugin returns its record without re-invoking
// Register. A load overlapping an in-flight load of the same name fails
// with plugin.ErrConcurrentLoad; that signals misuse, not a transient
// condition. Every failure is memoized in the failure log and returned
// wrapped with the plugin name; a fresh load clears the memo first.
func (m *Manager) Load(ctx context.Context, canonical string, program *cobra.Command) (*Record, error) {
	if rec, ok := m.records.Load(canonical); ok {
		return rec, nil
	}
	if _, inFlight := m.loading.LoadOrStore(canonical, struct{}{}); inFlight {
		return nil, fmt.Errorf("plugin %s: %w", canonical, plugin.ErrConcurrentLoad)
	}
	// The guard must be released on every path, including panics from a
	// registering plugin.
	defer m.loading.Delete(canonical)

	m.failures.Delete(canonical)

	rec, err := m.load(ctx, canonical, program)
	if err != nil {
		m.failures.Store(canonical, err.Error())
		return nil, fmt.Errorf("loading plugin %s failed: %w", canonical, err)
	}

	// Release the guard before publishing the record so the name is never
	// in both structures at once. The deferred delete then is a no-op.
	m.loading.Delete(canonical)
	m.records.Store(canonical, rec)

	slogctx.FromCtx(ctx).DebugContext(ctx, "plugin loaded",
		"plugin", canonical, "version", rec.Version, "builtin", rec.BuiltIn)
	return rec, nil
}

func (m *Manager) load(ctx context.Context, canonical string, program *cobra.Command) (*Record, error) {
	loaded, err := m.loader.Load(ctx, canonical)
	if err != nil {
		return nil, err
	}

	capability := loaded.Capability
	if capability.Name() == "" || capability.Version() == "" {
		return nil, fmt.Errorf("%w: capability reports no name or version", plugin.ErrMalformedPlugin)
	}

	m.programMu.Lock()
	defer m.programMu.Unlock()

	before := program.Commands()
	if err := capability.Register(program); err != nil {
		detach(program, addedSince(before, program.Commands()))
		return nil, err
	}

	rec := &Record{
		CanonicalName: canonical,
		Version:       capability.Version(),
		BuiltIn:       loaded.BuiltIn,
		Source:        loaded.Dir,
		capability:    capability,
		program:       program,
		attached:      addedSince(before, program.Commands()),
	}
	if d, ok := capability.(plugin.Describer); ok {
		rec.Description = d.Description()
	}
	return rec, nil
}

// Result is the per-name outcome of LoadMany.
type Result struct {
	CanonicalName string
	Record        *Record
	Err           error
}

// LoadMany loads every named plugin independently. There is no ordering or
// dependency between plugins and one failure never aborts the others. With
// throwOnError set, the first failure is returned after all attempts have
// completed.
func (m *Manager) LoadMany(ctx context.Context, canonicals []string, program *cobra.Command, throwOnError bool) ([]Result, error) {
	results := make([]Result, len(canonicals))

	var g errgroup.Group
	for i, canonical := range canonicals {
		i, canonical := i, canonical
		g.Go(func() error {
			rec, err := m.Load(ctx, canonical, program)
			results[i] = Result{CanonicalName: canonical, Record: rec, Err: err}
			return nil
		})
	}
	// Individual outcomes live in results; the group never carries errors.
	_ = g.Wait()

	if throwOnError {
		for _, r := range results {
			if r.Err != nil {
				return results, r.Err
			}
		}
	}
	return results, nil
}

// Unload removes a loaded plugin, invoking its optional cleanup first.
// A cleanup failure is downgraded to a warning and never blocks the
// unload. Unloading an absent name is a no-op returning false.
func (m *Manager) Unload(ctx context.Context, canonical string) bool {
	rec, ok := m.records.LoadAndDelete(canonical)
	if !ok {
		return false
	}

	if cleaner, ok := rec.capability.(plugin.Cleaner); ok {
		if err := cleaner.Cleanup(); err != nil {
			slogctx.FromCtx(ctx).WarnContext(ctx, "plugin cleanup failed",
				"plugin", canonical, "error", err.Error())
		}
	}

	m.programMu.Lock()
	detach(rec.program, rec.attached)
	m.programMu.Unlock()

	m.failures.Delete(canonical)

	slogctx.FromCtx(ctx).DebugContext(ctx, "plugin unloaded", "plugin", canonical)
	return true
}

// Reload unloads the plugin, evicts loader caches when the loader supports
// invalidation (a documented no-op otherwise), waits a short grace period
// for file-handle release and loads again.
func (m *Manager) Reload(ctx context.Context, canonical string, program *cobra.Command) (*Record, error) {
	m.Unload(ctx, canonical)

	if inv, ok := m.loader.(loader.Invalidator); ok {
		inv.Invalidate(canonical)
	}

	select {
	case <-time.After(reloadGraceDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return m.Load(ctx, canonical, program)
}

// IsLoaded reports whether the canonical name has a live record.
func (m *Manager) IsLoaded(canonical string) bool {
	_, ok := m.records.Load(canonical)
	return ok
}

// Get returns the record for a loaded plugin.
func (m *Manager) Get(canonical string) (*Record, bool) {
	return m.records.Load(canonical)
}

// Records returns all loaded plugins sorted by canonical name.
func (m *Manager) Records() []*Record {
	var out []*Record
	m.records.Range(func(_ string, rec *Record) bool {
		out = append(out, rec)
		return true
	})
	slices.SortFunc(out, func(a, b *Record) int {
		return strings.Compare(a.CanonicalName, b.CanonicalName)
	})
	return out
}

// Len returns the number of loaded plugins.
func (m *Manager) Len() int {
	n := 0
	m.records.Range(func(string, *Record) bool {
		n++
		return true
	})
	return n
}

// Failed returns a copy of the failure log: canonical name to the last
// load error message. Entries are cleared by a subsequent successful load.
func (m *Manager) Failed() map[string]string {
	out := make(map[string]string)
	m.failures.Range(func(name, msg string) bool {
		out[name] = msg
		return true
	})
	return out
}

// addedSince returns the commands present in after but not in before, by
// identity.
func addedSince(before, after []*cobra.Command) []*cobra.Command {
	known := make(map[*cobra.Command]struct{}, len(before))
	for _, c := range before {
		known[c] = struct{}{}
	}
	var added []*cobra.Command
	for _, c := range after {
		if _, ok := known[c]; !ok {
			added = append(added, c)
		}
	}
	return added
}

func detach(program *cobra.Command, commands []*cobra.Command) {
	for _, c := range commands {
		program.RemoveCommand(c)
	}
}
