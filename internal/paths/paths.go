// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	PIDFile    = "sigactd.pid"
	StateFile  = "state.json"
	ConfigFile = "config.toml"
	LogFile    = "sigactd.log"
)

// BinaryName is the daemon executable name.
const BinaryName = "sigactd"

// DataDirRel is the default data directory, relative to $HOME.
const DataDirRel = ".sigactd"

// EnvDataDir overrides the data directory location when set.
const EnvDataDir = "SIGACTD_DATA_DIR"

// ReleaseManifest is the path of the release manifest in the published
// repository, used by update checks.
const ReleaseManifest = ".release-manifest.json"

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// PID returns the full path to the PID file.
func (d DataDir) PID() string { return filepath.Join(d.Root, PIDFile) }

// State returns the full path to the state file.
func (d DataDir) State() string { return filepath.Join(d.Root, StateFile) }

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }
