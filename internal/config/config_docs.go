package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "daemon.update_check")
// to their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
// Section-level entries ("actions") annotate the table header itself.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Managed by the daemon; do not edit.",
	},

	// ── Daemon ───────────────────────────────────────────────────
	"daemon.update_check": {
		Comment: "Check the release manifest for a newer version at startup.",
	},
	"daemon.shutdown_grace_seconds": {
		Comment: "Bound, in seconds, on how long the stop action may spend on cleanup and\nnotification before the process exits anyway. 0 disables the bound.",
	},

	// ── Log ──────────────────────────────────────────────────────
	"log.level": {
		Comment: "Minimum log level: debug, info, warn, error.",
		Alternatives: []string{
			`level = "debug"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Maximum log file size in megabytes before rotation.",
	},
	"log.max_backups": {
		Comment: "How many rotated log files to keep.",
	},

	// ── Actions ──────────────────────────────────────────────────
	"actions": {
		Comment: "Maps signal names to actions. Entries here merge over the built-in\ndefaults (SIGTERM = \"stop\", SIGINT = \"abort\", SIGHUP = \"reload\",\nSIGUSR1 = \"status\"); map a signal to \"ignore\" to swallow a default.\nValid actions: stop, abort, reload, status, ignore.",
	},

	// ── Shutdown ─────────────────────────────────────────────────
	"shutdown.cleanup": {
		Comment: "Glob patterns, relative to the data directory, of files removed when the\ndaemon stops. Supports ** for recursive matches, e.g. \"tmp/**\".",
	},

	// ── Notify ───────────────────────────────────────────────────
	"notify.url": {
		Comment: "Webhook endpoint POSTed on lifecycle events (started, stopped, aborted,\nreloaded). Empty disables notification.",
		Alternatives: []string{
			`url = "https://hooks.example.com/sigactd"`,
		},
	},
	"notify.timeout_seconds": {
		Comment: "Per-request timeout in seconds.",
	},
	"notify.retries": {
		Comment: "How many times a failed POST is retried.",
	},
}
