// Package config provides configuration loading and defaults for the sigactd
// daemon.
//
// Configuration is loaded from a TOML file in the user's data directory.
// The package handles the signal→action table, logging, shutdown cleanup,
// and webhook notification settings with sensible defaults.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/sigact"
	"tools.zach/dev/sigact/internal/atomicfile"
	"tools.zach/dev/sigact/internal/migrate"
	"tools.zach/dev/sigact/internal/paths"
)

// ///////////////////////////////////////////////
// Action Names
// ///////////////////////////////////////////////

// Built-in action names a signal can be mapped to.
const (
	// ActionStop records state "stopped", runs shutdown cleanup, exits 0.
	ActionStop = "stop"
	// ActionAbort records state "aborted" and exits 1 immediately.
	ActionAbort = "abort"
	// ActionReload re-reads the config file and re-registers actions.
	ActionReload = "reload"
	// ActionStatus logs uptime, PID, and the registered action snapshot.
	ActionStatus = "status"
	// ActionIgnore swallows the signal without doing anything.
	ActionIgnore = "ignore"
)

// validActions is the set of accepted action names.
var validActions = map[string]bool{
	ActionStop:   true,
	ActionAbort:  true,
	ActionReload: true,
	ActionStatus: true,
	ActionIgnore: true,
}

// ActionNames returns the accepted action names, sorted, for error messages.
func ActionNames() []string {
	names := make([]string, 0, len(validActions))
	for n := range validActions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version used for migrations.
	Version int `toml:"version"`
	// Daemon holds daemon behavior settings.
	Daemon DaemonConfig `toml:"daemon"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Actions maps signal names (e.g. "SIGTERM") to action names. Entries
	// merge over the built-in defaults; map a signal to "ignore" to swallow
	// a default.
	Actions map[string]string `toml:"actions"`
	// Shutdown holds cleanup settings applied by the stop action.
	Shutdown ShutdownConfig `toml:"shutdown"`
	// Notify holds lifecycle webhook settings.
	Notify NotifyConfig `toml:"notify"`
}

// DaemonConfig holds daemon behavior settings.
type DaemonConfig struct {
	// UpdateCheck enables the startup release version check.
	UpdateCheck bool `toml:"update_check"`
	// ShutdownGraceSeconds bounds how long the stop action may spend on
	// cleanup and notification before the process exits anyway. 0 means
	// no bound.
	ShutdownGraceSeconds int `toml:"shutdown_grace_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is how many rotated log files to keep.
	MaxBackups int `toml:"max_backups"`
}

// ShutdownConfig holds cleanup settings applied by the stop action.
type ShutdownConfig struct {
	// Cleanup lists glob patterns, relative to the data directory, of files
	// removed when the daemon stops (e.g. "tmp/**").
	Cleanup []string `toml:"cleanup"`
}

// NotifyConfig holds lifecycle webhook settings.
type NotifyConfig struct {
	// URL is the webhook endpoint POSTed on lifecycle events. Empty
	// disables notification.
	URL string `toml:"url"`
	// TimeoutSeconds bounds each webhook request.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// Retries is how many times a failed webhook POST is retried.
	Retries int `toml:"retries"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with sensible defaults. The
// default signal→action table is platform-specific (see defaultActions).
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Daemon: DaemonConfig{
			UpdateCheck:          true,
			ShutdownGraceSeconds: 10,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Actions: defaultActions(),
		Shutdown: ShutdownConfig{
			Cleanup: []string{},
		},
		Notify: NotifyConfig{
			TimeoutSeconds: 5,
			Retries:        2,
		},
	}
}

// ///////////////////////////////////////////////
// Example Configuration
// ///////////////////////////////////////////////

// ExampleConfig returns a Config suitable for generating config.default.toml.
// The defaults double as the example values.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return 1
	}
	if v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file from dataDir/config.toml.
// If the file doesn't exist, returns DefaultConfig.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	version := PeekVersion(data)

	// Apply migrations if needed
	shouldMigrate := version != migrate.Config.CurrentVersion
	if shouldMigrate {
		// Write backup before migration
		if backupErr := os.WriteFile(path+".bak", data, 0o644); backupErr != nil {
			slog.Warn("failed to write config backup", "error", backupErr)
		}
		var migrateErr error
		data, _, migrateErr = migrate.Config.Run(data, version)
		if migrateErr != nil {
			return nil, fmt.Errorf("migrate config: %w", migrateErr)
		}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// Re-save after migration
	if shouldMigrate {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}

	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be debug, info, warn, or error", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be >= 0, got %d", c.Log.MaxBackups)
	}

	if c.Daemon.ShutdownGraceSeconds < 0 {
		return fmt.Errorf("daemon.shutdown_grace_seconds must be >= 0, got %d", c.Daemon.ShutdownGraceSeconds)
	}

	for name, action := range c.Actions {
		if _, err := sigact.ParseSignal(name); err != nil {
			return fmt.Errorf("invalid signal name %q in [actions]: %w", name, err)
		}
		if !validActions[action] {
			return fmt.Errorf("invalid action %q for signal %s: must be one of %s",
				action, name, strings.Join(ActionNames(), ", "))
		}
	}

	for _, pattern := range c.Shutdown.Cleanup {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid cleanup glob %q", pattern)
		}
		if filepath.IsAbs(pattern) {
			return fmt.Errorf("cleanup glob %q must be relative to the data directory", pattern)
		}
	}

	if c.Notify.URL != "" {
		u, err := url.Parse(c.Notify.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid notify.url %q: must be an http(s) URL", c.Notify.URL)
		}
	}

	if c.Notify.TimeoutSeconds <= 0 {
		return fmt.Errorf("notify.timeout_seconds must be > 0, got %d", c.Notify.TimeoutSeconds)
	}

	if c.Notify.Retries < 0 {
		return fmt.Errorf("notify.retries must be >= 0, got %d", c.Notify.Retries)
	}

	return nil
}

// ///////////////////////////////////////////////
// Signal Resolution
// ///////////////////////////////////////////////

// SignalAction is one resolved entry of the [actions] table.
type SignalAction struct {
	// Signal is the parsed platform signal.
	Signal os.Signal
	// Name is the configured signal name, e.g. "SIGTERM".
	Name string
	// Action is the bound action name, e.g. "stop".
	Action string
}

// SignalActions resolves the configured action table into parsed signals,
// sorted by signal number so registration order is deterministic. Entries
// whose names do not parse on this platform are skipped with a warning;
// Validate has already rejected outright unknown names.
func (c *Config) SignalActions() []SignalAction {
	out := make([]SignalAction, 0, len(c.Actions))
	for name, action := range c.Actions {
		sig, err := sigact.ParseSignal(name)
		if err != nil {
			slog.Warn("skipping unparseable signal name", "signal", name, "error", err)
			continue
		}
		out = append(out, SignalAction{Signal: sig, Name: sigact.SignalName(sig), Action: action})
	}
	sort.Slice(out, func(i, j int) bool {
		si, _ := out[i].Signal.(syscall.Signal)
		sj, _ := out[j].Signal.(syscall.Signal)
		return si < sj
	})
	return out
}
