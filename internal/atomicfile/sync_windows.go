//go:build windows

package atomicfile

// syncDir is a no-op on Windows, where directories cannot be fsynced and
// MoveFileEx already journals the rename.
func syncDir(string) error { return nil }
