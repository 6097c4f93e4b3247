//go:build !windows

package config

// defaultActions is the built-in signal→action table on unix platforms.
func defaultActions() map[string]string {
	return map[string]string{
		"SIGTERM": ActionStop,
		"SIGINT":  ActionAbort,
		"SIGHUP":  ActionReload,
		"SIGUSR1": ActionStatus,
	}
}
