package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"tools.zach/dev/sigact"
	"tools.zach/dev/sigact/internal/config"
	"tools.zach/dev/sigact/internal/paths"
)

// ///////////////////////////////////////////////
// Dispatcher
// ///////////////////////////////////////////////

// dispatcher carries signal callbacks onto the event loop. Callbacks run on
// the registry's dispatch goroutine and must not block, so each request is a
// non-blocking send into a channel buffered to 1; a burst of identical
// requests coalesces into one.
type dispatcher struct {
	// stop receives the name of a signal mapped to the stop action.
	stop chan string
	// abort receives the name of a signal mapped to the abort action.
	abort chan string
	// reload receives the name of a signal mapped to the reload action.
	reload chan string
	// start records when the daemon came up, for status uptime.
	start time.Time
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		stop:   make(chan string, 1),
		abort:  make(chan string, 1),
		reload: make(chan string, 1),
		start:  time.Now(),
	}
}

// request performs the non-blocking send. A pending request of the same kind
// already in the channel wins; the duplicate is dropped.
func (d *dispatcher) request(ch chan string, signalName string) {
	select {
	case ch <- signalName:
	default:
	}
}

// ///////////////////////////////////////////////
// Action Registration
// ///////////////////////////////////////////////

// applyActions reconciles the registry with the configured signal actions:
// every configured signal is (re)registered and signals no longer present in
// the config are unregistered. Signals the platform cannot catch are skipped
// with a warning. Returns the number of active registrations.
func applyActions(reg *sigact.Registry, cfg *config.Config, d *dispatcher) int {
	desired := cfg.SignalActions()

	want := make(map[os.Signal]bool, len(desired))
	for _, sa := range desired {
		want[sa.Signal] = true
	}
	for _, act := range reg.Actions() {
		if !want[act.Signal()] {
			reg.Unregister(act.Signal())
		}
	}

	actionByName := make(map[string]string, len(desired))
	for _, sa := range desired {
		actionByName[sa.Name] = sa.Action
	}

	registered := make([]string, 0, len(desired))
	for _, sa := range desired {
		cb := buildCallback(sa, reg, d, actionByName)
		if cb == nil {
			slog.Warn("unknown action", "signal", sa.Name, "action", sa.Action)
			continue
		}
		if err := reg.Register(sa.Signal, cb); err != nil {
			slog.Warn("skipping signal", "signal", sa.Name, "action", sa.Action, "error", err)
			continue
		}
		registered = append(registered, sa.Name+"="+sa.Action)
	}

	slog.Info("signal actions registered", "count", len(registered), "actions", strings.Join(registered, " "))
	return len(registered)
}

// buildCallback returns the callback implementing the named action for one
// signal, or nil for an action name the daemon does not know.
func buildCallback(sa config.SignalAction, reg *sigact.Registry, d *dispatcher, actionByName map[string]string) sigact.Callback {
	name := sa.Name
	switch sa.Action {
	case config.ActionStop:
		return func() { d.request(d.stop, name) }
	case config.ActionAbort:
		return func() { d.request(d.abort, name) }
	case config.ActionReload:
		return func() { d.request(d.reload, name) }
	case config.ActionStatus:
		return func() { logStatus(reg, d.start, actionByName) }
	case config.ActionIgnore:
		return func() { slog.Debug("signal ignored", "signal", name) }
	}
	return nil
}

// logStatus reports uptime, process ID, and the live registration snapshot.
// It runs directly on the dispatch goroutine since it only logs.
func logStatus(reg *sigact.Registry, start time.Time, actionByName map[string]string) {
	acts := reg.Actions()
	entries := make([]string, 0, len(acts))
	for _, a := range acts {
		name := sigact.SignalName(a.Signal())
		if action, ok := actionByName[name]; ok {
			entries = append(entries, name+"="+action)
		} else {
			entries = append(entries, name)
		}
	}
	slog.Info("daemon status",
		"pid", os.Getpid(),
		"uptime", time.Since(start).Round(time.Second).String(),
		"actions", strings.Join(entries, " "),
	)
}

// ///////////////////////////////////////////////
// Shutdown Cleanup
// ///////////////////////////////////////////////

// cleanupDeadline converts the configured grace seconds into an absolute
// deadline. Zero or negative grace means unbounded.
func cleanupDeadline(graceSeconds int) time.Time {
	if graceSeconds <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(graceSeconds) * time.Second)
}

// runCleanup removes files matching the configured glob patterns, resolved
// relative to the data directory. A non-zero deadline bounds the work;
// matches remaining after it passes are skipped. Returns the number of
// entries removed.
func runCleanup(root string, patterns []string, deadline time.Time) int {
	if len(patterns) == 0 {
		return 0
	}

	fsys := os.DirFS(root)
	removed := 0
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			slog.Warn("cleanup glob failed", "pattern", pattern, "error", err)
			continue
		}
		for _, m := range matches {
			if !deadline.IsZero() && time.Now().After(deadline) {
				slog.Warn("shutdown grace exceeded, skipping remaining cleanup")
				return removed
			}
			// The PID file is removed by its own teardown path, which checks
			// the ownership token first.
			if m == paths.PIDFile {
				continue
			}
			if err := os.Remove(filepath.Join(root, m)); err != nil {
				slog.Warn("cleanup remove failed", "path", m, "error", err)
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		slog.Info("shutdown cleanup removed files", "count", removed)
	}
	return removed
}
