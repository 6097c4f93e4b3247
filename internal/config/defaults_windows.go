//go:build windows

package config

// defaultActions is the built-in signal→action table on Windows, limited to
// the two signals the Go runtime can deliver there.
func defaultActions() map[string]string {
	return map[string]string{
		"SIGTERM": ActionStop,
		"SIGINT":  ActionAbort,
	}
}
