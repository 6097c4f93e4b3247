// Package pidfile enforces single-instance daemon execution through a locked
// PID file.
//
// The file holds "PID:TOKEN" where the token is a random value proving which
// instance wrote the file. The advisory lock is held on an open handle for
// the daemon's lifetime, so a crashed daemon leaves a stale, unlocked file
// that the next start can safely reclaim.
package pidfile

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ///////////////////////////////////////////////
// PID File Handle
// ///////////////////////////////////////////////

// File is an acquired PID file. The underlying handle stays open to hold the
// lock; call [File.Release] on shutdown.
type File struct {
	// path is the PID file location on disk.
	path string
	// token proves ownership so Release only deletes a file this instance wrote.
	token string
	// f is the open, locked handle.
	f *os.File
}

// Acquire creates or opens the PID file at path, takes an exclusive
// non-blocking lock, and writes "PID:TOKEN" content. The returned File must
// be kept for the lifetime of the daemon and released on shutdown.
func Acquire(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock PID file: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("truncate PID file: %w", err)
	}
	token := newToken()
	content := fmt.Sprintf("%d:%s", os.Getpid(), token)
	if _, err := f.WriteString(content); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	return &File{path: path, token: token, f: f}, nil
}

// Release unlocks and closes the handle, then removes the PID file only if
// the stored token matches, preventing accidental removal of a file owned by
// a different daemon instance.
func (p *File) Release() {
	if p.f != nil {
		_ = unlockFile(p.f)
		p.f.Close()
		p.f = nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return
	}
	parts := strings.SplitN(string(data), ":", 2)
	if len(parts) == 2 && parts[1] == p.token {
		os.Remove(p.path)
	}
}

// CheckStale checks whether another daemon instance is running. It attempts
// to acquire the advisory lock on the PID file; if the lock fails, another
// instance holds it. If the lock succeeds, any previous instance is dead and
// the stale file is cleaned up.
func CheckStale(path string) (alive bool, pid int) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return false, 0
	}

	if lockErr := lockFile(f); lockErr != nil {
		data, _ := os.ReadFile(path)
		f.Close()
		parts := strings.SplitN(string(data), ":", 2)
		if len(parts) >= 1 {
			if p, convErr := strconv.Atoi(parts[0]); convErr == nil {
				return true, p
			}
		}
		return true, 0
	}

	// Lock acquired -- previous instance is dead. Clean up stale file.
	_ = unlockFile(f)
	f.Close()
	os.Remove(path)
	return false, 0
}

// newToken generates a random 16-character hex token used to prove ownership
// of the PID file.
func newToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
