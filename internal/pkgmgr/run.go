package pkgmgr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	slogctx "github.com/veqryn/slog-context"
)

// ErrNoInstallCommand is returned when the selected manager has no
// traditional install semantics (deno) and an install, uninstall or update
// was requested anyway. The CLI layer explains the alternative mechanism.
var ErrNoInstallCommand = errors.New("package manager has no install command")

const (
	// DefaultInstallTimeout bounds an install child process. A timeout is a
	// hard failure; the target package may be left partially installed.
	DefaultInstallTimeout = 5 * time.Minute

	// queryTimeout bounds quiet listing and root queries.
	queryTimeout = 30 * time.Second
)

// InstallError reports a failed package-manager invocation with the
// captured stream content as diagnostic text.
type InstallError struct {
	Manager Manager
	Args    []string
	Output  string
	Timeout bool
	err     error
}

func (e *InstallError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %v", e.Manager, strings.Join(e.Args, " "), e.err)
	if e.Timeout {
		msg = fmt.Sprintf("%s %s timed out: %v", e.Manager, strings.Join(e.Args, " "), e.err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *InstallError) Unwrap() error { return e.err }

// captureWriter serializes writes into one buffer. os/exec copies stdout
// and stderr in separate goroutines when they are distinct writers, so the
// shared capture needs locking.
type captureWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *captureWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// RunOptions configure a package-manager child process.
type RunOptions struct {
	// Timeout bounds the child process; DefaultInstallTimeout when zero.
	Timeout time.Duration
	// Stdout and Stderr receive the child's streams for interactive
	// installs. Output is always captured for diagnostics as well.
	Stdout io.Writer
	Stderr io.Writer
}

// Run spawns the manager with the given argument vector and awaits full
// completion. An empty vector is the no-install sentinel and yields
// ErrNoInstallCommand. A nonzero exit or timeout yields an *InstallError
// carrying the captured output.
func Run(ctx context.Context, m Manager, argv []string, opts RunOptions) error {
	if len(argv) == 0 {
		return fmt.Errorf("%w: %s", ErrNoInstallCommand, m)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultInstallTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := slogctx.FromCtx(ctx)
	log.DebugContext(ctx, "running package manager", "manager", string(m), "args", strings.Join(argv, " "))

	captured := &captureWriter{}
	cmd := exec.CommandContext(ctx, string(m), argv...)
	cmd.Stdout = captured
	cmd.Stderr = captured
	if opts.Stdout != nil {
		cmd.Stdout = io.MultiWriter(opts.Stdout, captured)
	}
	if opts.Stderr != nil {
		cmd.Stderr = io.MultiWriter(opts.Stderr, captured)
	}

	if err := cmd.Run(); err != nil {
		return &InstallError{
			Manager: m,
			Args:    argv,
			Output:  captured.String(),
			Timeout: errors.Is(ctx.Err(), context.DeadlineExceeded),
			err:     err,
		}
	}
	return nil
}

// Query runs the manager quietly with piped streams and returns the
// combined output. Used for listing and root queries where the output is
// consumed instead of shown.
func Query(ctx context.Context, m Manager, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoInstallCommand, m)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, string(m), argv...)
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	err := cmd.Run()
	return out.String(), err
}

// GlobalRoot returns the manager's global package root, or "" when the
// manager does not expose one or the query fails. Failures here only narrow
// where globally installed plugins can be resolved from, so they are
// logged, not returned.
func GlobalRoot(ctx context.Context, m Manager) string {
	argv := GlobalRootArgs(m)
	if len(argv) == 0 {
		return ""
	}
	out, err := Query(ctx, m, argv)
	if err != nil {
		slogctx.FromCtx(ctx).DebugContext(ctx, "could not determine global package root",
			"manager", string(m), "error", err.Error())
		return ""
	}
	return strings.TrimSpace(out)
}
