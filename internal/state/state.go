// Package state records the daemon's lifecycle state as a small JSON file.
//
// The file is rewritten atomically on every transition so external tooling
// (and the status action) can always read a consistent snapshot: what the
// daemon is doing, which signal caused the last transition, and when.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tools.zach/dev/sigact/internal/atomicfile"
	"tools.zach/dev/sigact/internal/migrate"
)

// ///////////////////////////////////////////////
// State Types
// ///////////////////////////////////////////////

// Lifecycle statuses recorded in the state file.
const (
	// StatusRunning means the daemon is up and dispatching.
	StatusRunning = "running"
	// StatusStopped means the daemon exited cleanly via the stop action.
	StatusStopped = "stopped"
	// StatusAborted means the daemon exited abruptly via the abort action.
	StatusAborted = "aborted"
)

// State represents the daemon state file schema. It is persisted as JSON on
// disk and updated by the daemon on every lifecycle transition.
type State struct {
	// Version is the schema version, used for migration.
	Version int `json:"$version"`
	// Status is the lifecycle status: running, stopped, or aborted.
	Status string `json:"status"`
	// Signal names the signal that caused the last transition, or is empty
	// for the initial startup record.
	Signal string `json:"signal,omitempty"`
	// PID is the daemon process ID that wrote the record.
	PID int `json:"pid"`
	// ChangedAt is the Unix timestamp of the transition.
	ChangedAt int64 `json:"changedAt"`
}

// ///////////////////////////////////////////////
// State I/O
// ///////////////////////////////////////////////

// Read reads and parses the state file at the given path.
// If the file contains corrupted JSON, it backs up to .corrupted, writes a
// fresh state, and returns the fresh state along with an error describing the
// corruption. If the file has a future version, it backs up to .v{N}.bak
// before normalizing.
func Read(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return recoverCorrupted(path, data, err)
	}

	if s.Version == 0 {
		s.Version = 1
	}

	if err := applyMigrations(&s, data); err != nil {
		return nil, err
	}

	if s.Version > migrate.State.CurrentVersion {
		normalizeToCurrentVersion(&s, path, data)
	}

	return &s, nil
}

// Record writes a lifecycle transition to path. The PID and timestamp are
// filled in from the calling process.
func Record(path, status, signal string) error {
	s := &State{
		Version:   migrate.State.CurrentVersion,
		Status:    status,
		Signal:    signal,
		PID:       os.Getpid(),
		ChangedAt: time.Now().Unix(),
	}
	return save(path, s)
}

// recoverCorrupted backs up a corrupted state file and returns a fresh state.
func recoverCorrupted(path string, data []byte, parseErr error) (*State, error) {
	slog.Warn("corrupted state file, backing up", "path", path, "error", parseErr)

	corruptedPath := path + ".corrupted"
	if wErr := os.WriteFile(corruptedPath, data, 0o600); wErr != nil {
		slog.Warn("failed to write backup", "path", corruptedPath, "error", wErr)
	}

	s := State{Version: migrate.State.CurrentVersion}
	if sErr := save(path, &s); sErr != nil {
		slog.Warn("failed to save fresh state", "path", path, "error", sErr)
	}

	return &s, fmt.Errorf("corrupted state file (backed up to %s): %w", corruptedPath, parseErr)
}

// applyMigrations runs any registered state migrations if needed.
func applyMigrations(s *State, data []byte) error {
	if !migrate.State.NeedsMigration(s.Version) {
		return nil
	}

	migrated, newVersion, migrateErr := migrate.State.Run(data, s.Version)
	if migrateErr != nil {
		return fmt.Errorf("state migration failed: %w", migrateErr)
	}

	if err := json.Unmarshal(migrated, s); err != nil {
		return fmt.Errorf("unmarshal migrated state: %w", err)
	}

	s.Version = newVersion
	return nil
}

// normalizeToCurrentVersion backs up a future-version state file and normalizes it.
func normalizeToCurrentVersion(s *State, path string, data []byte) {
	slog.Warn("future state version detected, normalizing",
		"version", s.Version, "current", migrate.State.CurrentVersion)

	bakPath := fmt.Sprintf("%s.v%d.bak", path, s.Version)
	if wErr := os.WriteFile(bakPath, data, 0o600); wErr != nil {
		slog.Warn("failed to write backup", "path", bakPath, "error", wErr)
	}

	s.Version = migrate.State.CurrentVersion
	if sErr := save(path, s); sErr != nil {
		slog.Warn("failed to save normalized state", "path", path, "error", sErr)
	}
}

// save marshals s as JSON and atomically writes it to path using
// [atomicfile.Write] to prevent partial writes on crash.
func save(path string, s *State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}
	return atomicfile.Write(path, data, 0o600)
}
