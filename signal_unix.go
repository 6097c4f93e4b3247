// Unix/Darwin signal surface: catchability rules and name translation.
//
// This file is compiled on all non-Windows platforms (Linux, macOS, *BSD).
// The platform's signal enumeration is whatever [unix.SignalName] knows a
// name for; real-time signals sit outside that set and are not supported.
// SIGKILL and SIGSTOP carry names but are reserved by the kernel and can
// never be caught, so registration rejects them up front.

//go:build !windows

package sigact

import (
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// ///////////////////////////////////////////////
// Signal Names
// ///////////////////////////////////////////////

// SignalName returns the platform name for sig, e.g. "SIGTERM". Signals
// without a name on this platform render as "signal <number>"; non-syscall
// signal values fall back to their own String.
func SignalName(sig os.Signal) string {
	ss, ok := sig.(syscall.Signal)
	if !ok {
		if sig == nil {
			return "<nil>"
		}
		return sig.String()
	}
	if name := unix.SignalName(ss); name != "" {
		return name
	}
	return "signal " + strconv.Itoa(int(ss))
}

// ParseSignal converts a signal name to the platform signal value. Names are
// case-insensitive and the "SIG" prefix is optional: "SIGTERM", "term", and
// "15" all resolve to SIGTERM. Unknown names return [*InvalidSignalError].
func ParseSignal(name string) (os.Signal, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if s == "" {
		return nil, &InvalidSignalError{Name: name}
	}
	if n, err := strconv.Atoi(s); err == nil {
		ss := syscall.Signal(n)
		if n > 0 && unix.SignalName(ss) != "" {
			return ss, nil
		}
		return nil, &InvalidSignalError{Name: name}
	}
	if !strings.HasPrefix(s, "SIG") {
		s = "SIG" + s
	}
	if ss := unix.SignalNum(s); ss != 0 {
		return ss, nil
	}
	return nil, &InvalidSignalError{Name: name}
}

// ///////////////////////////////////////////////
// Catchability
// ///////////////////////////////////////////////

// checkCatchable rejects signals the kernel does not allow a process to
// trap: SIGKILL, SIGSTOP, anything outside the platform's named signal set,
// and values that are not OS signals at all.
func checkCatchable(sig os.Signal) error {
	ss, ok := sig.(syscall.Signal)
	if !ok {
		return &InvalidSignalError{Signal: sig}
	}
	if ss <= 0 || unix.SignalName(ss) == "" {
		return &InvalidSignalError{Signal: sig}
	}
	if ss == syscall.SIGKILL || ss == syscall.SIGSTOP {
		return &InvalidSignalError{Signal: sig}
	}
	return nil
}
