// Package main implements the sigactd daemon, which maps OS signals to
// configured lifecycle actions: stop, abort, reload, status, and ignore.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"tools.zach/dev/sigact"
	"tools.zach/dev/sigact/internal/config"
	"tools.zach/dev/sigact/internal/logger"
	"tools.zach/dev/sigact/internal/notify"
	"tools.zach/dev/sigact/internal/paths"
	"tools.zach/dev/sigact/internal/pidfile"
	"tools.zach/dev/sigact/internal/state"
	"tools.zach/dev/sigact/internal/update"
	"tools.zach/dev/sigact/internal/watch"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//   - goreleaser: -X main.version={{.Version}}  -> "0.1.0"
//   - make build: -X main.version=$(VERSION)    -> "0.0.0-dev+05ffee5"
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS info
// that Go embeds automatically, so dev builds get a useful version string
// without needing git at runtime.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags at build time it is returned as-is; otherwise VCS revision and dirty
// state embedded by the Go toolchain are used to construct a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Default Data Directory
// ///////////////////////////////////////////////

// defaultDataDir returns the directory for sigactd data, typically
// ~/.sigactd. The SIGACTD_DATA_DIR environment variable overrides it; if the
// home directory cannot be determined the daemon falls back to ./.sigactd.
func defaultDataDir() string {
	if env := os.Getenv(paths.EnvDataDir); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	dataDir := flag.String("data-dir", defaultDataDir(), "Data directory for config, state, and logs")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	logLines := flag.Int("logs", 0, "Print the last N log lines and exit")
	foreground := flag.Bool("foreground", false, "Echo log output to stderr")
	flag.Parse()

	if *showVersion {
		fmt.Println(resolveVersion())
		return
	}

	dp := DataPaths{Root: *dataDir}

	if *logLines > 0 {
		tail, err := logger.ReadTail(dp.Log(), *logLines)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read log: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(tail)
		return
	}

	if err := os.MkdirAll(dp.Root, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: create data dir: %v\n", err)
		os.Exit(1)
	}

	if alive, pid := pidfile.CheckStale(dp.PID()); alive {
		fmt.Fprintf(os.Stderr, "daemon already running (pid %d)\n", pid)
		os.Exit(1)
	}

	if _, err := os.Stat(dp.Config()); os.IsNotExist(err) {
		if writeErr := os.WriteFile(dp.Config(), config.DefaultTOML, 0o644); writeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write default config: %v\n", writeErr)
		}
	}

	cfg, err := config.Load(dp.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: load config: %v\n", err)
		os.Exit(1)
	}

	var echo io.Writer
	if *foreground {
		echo = os.Stderr
	}
	log, logCloser := logger.NewLogger(dp.Log(), logger.Options{
		Level:      logger.ParseLevel(cfg.Log.Level),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Echo:       echo,
	})
	slog.SetDefault(log)

	ver := resolveVersion()
	slog.Info("sigactd starting", "version", ver, "data_dir", dp.Root, "pid", os.Getpid())

	if cfg.Daemon.UpdateCheck {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("update check panic", "error", r)
				}
			}()
			update.Check(ver)
		}()
	}

	pf, err := pidfile.Acquire(dp.PID())
	if err != nil {
		slog.Error("failed to acquire PID file", "error", err)
		logCloser.Close()
		os.Exit(1)
	}

	if prev, readErr := state.Read(dp.State()); readErr == nil && prev.Status == state.StatusRunning {
		slog.Warn("previous run did not shut down cleanly", "previous_pid", prev.PID)
	}

	reg := sigact.New()
	d := newDispatcher()
	if n := applyActions(reg, cfg, d); n == 0 {
		slog.Warn("no signal actions registered; daemon will only react to config changes")
	}

	if err := state.Record(dp.State(), state.StatusRunning, ""); err != nil {
		slog.Warn("failed to record state", "error", err)
	}

	notifier := notify.New(cfg.Notify, ver)
	notifier.Send(notify.EventStarted, state.StatusRunning, "")

	watcher, err := watch.New(dp.Config())
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		pf.Release()
		logCloser.Close()
		os.Exit(1)
	}
	if watcher.Polling() {
		slog.Info("using polling mode for config watching")
	}

	env := &loopEnv{
		cfg:       cfg,
		notifier:  notifier,
		logCloser: logCloser,
		echo:      echo,
		ver:       ver,
	}

	code := run(reg, watcher, dp, env, d)

	reg.Close()
	watcher.Close()
	pf.Release()
	env.logCloser.Close()
	os.Exit(code)
}

// ///////////////////////////////////////////////
// Event Loop
// ///////////////////////////////////////////////

// loopEnv holds the handles the event loop owns and may replace on reload.
type loopEnv struct {
	// cfg is the active configuration; replaced wholesale on reload.
	cfg *config.Config
	// notifier delivers lifecycle webhooks; rebuilt when the config changes.
	notifier *notify.Notifier
	// logCloser closes the active log sink; swapped when log settings change.
	logCloser io.Closer
	// echo is the foreground copy writer, carried across logger rebuilds.
	echo io.Writer
	// ver is the resolved build version, stamped into webhook payloads.
	ver string
}

// run is the main event loop. It waits for action requests funneled out of
// signal callbacks by the [dispatcher] and for on-disk config changes from
// the [watch.Watcher]. It returns the process exit code.
func run(reg *sigact.Registry, watcher *watch.Watcher, dp DataPaths, env *loopEnv, d *dispatcher) int {
	for {
		select {
		case sig := <-d.stop:
			return handleStop(sig, dp, env)

		case sig := <-d.abort:
			return handleAbort(sig, dp, env)

		case sig := <-d.reload:
			slog.Info("reload requested", "signal", sig)
			reloadConfig(reg, dp, env, d, sig)

		case <-watcher.Events():
			slog.Info("config file changed on disk")
			reloadConfig(reg, dp, env, d, "")
		}
	}
}

// handleStop performs a clean shutdown: record the stopped state, run the
// configured cleanup globs within the shutdown grace period, and notify.
func handleStop(sig string, dp DataPaths, env *loopEnv) int {
	slog.Info("shutting down", "signal", sig)
	if err := state.Record(dp.State(), state.StatusStopped, sig); err != nil {
		slog.Warn("failed to record state", "error", err)
	}
	deadline := cleanupDeadline(env.cfg.Daemon.ShutdownGraceSeconds)
	runCleanup(dp.Root, env.cfg.Shutdown.Cleanup, deadline)
	env.notifier.Send(notify.EventStopped, state.StatusStopped, sig)
	return 0
}

// handleAbort performs an abrupt shutdown: record the aborted state and
// notify, skipping cleanup.
func handleAbort(sig string, dp DataPaths, env *loopEnv) int {
	slog.Error("aborting", "signal", sig)
	if err := state.Record(dp.State(), state.StatusAborted, sig); err != nil {
		slog.Warn("failed to record state", "error", err)
	}
	env.notifier.Send(notify.EventAborted, state.StatusAborted, sig)
	return 1
}

// reloadConfig re-reads the config file and applies it: signal actions are
// re-registered, the log sink is rebuilt if its settings changed, and the
// notifier is recreated. A config that fails to load keeps the previous
// configuration active.
func reloadConfig(reg *sigact.Registry, dp DataPaths, env *loopEnv, d *dispatcher, sig string) {
	newCfg, err := config.Load(dp.Root)
	if err != nil {
		slog.Warn("config reload failed, keeping previous config", "error", err)
		return
	}

	if newCfg.Log != env.cfg.Log {
		log, closer := logger.NewLogger(dp.Log(), logger.Options{
			Level:      logger.ParseLevel(newCfg.Log.Level),
			MaxSizeMB:  newCfg.Log.MaxSizeMB,
			MaxBackups: newCfg.Log.MaxBackups,
			Echo:       env.echo,
		})
		slog.SetDefault(log)
		env.logCloser.Close()
		env.logCloser = closer
		slog.Info("log settings changed", "level", newCfg.Log.Level)
	}

	applyActions(reg, newCfg, d)
	env.cfg = newCfg
	env.notifier = notify.New(newCfg.Notify, env.ver)

	if err := state.Record(dp.State(), state.StatusRunning, sig); err != nil {
		slog.Warn("failed to record state", "error", err)
	}
	env.notifier.Send(notify.EventReloaded, state.StatusRunning, sig)
	slog.Info("config reloaded")
}
