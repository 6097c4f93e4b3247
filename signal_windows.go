// Windows signal surface: catchability rules and name translation.
//
// This file is compiled only on Windows. Windows has no POSIX signal
// delivery; the Go runtime synthesizes SIGINT from Ctrl+C / Ctrl+Break and
// SIGTERM from console-close, logoff, and shutdown events. Name translation
// covers the full set of signal numbers the Windows syscall package defines,
// so configuration written on unix still parses here, but only SIGINT and
// SIGTERM are catchable; everything else is rejected at registration time
// rather than silently never firing.

//go:build windows

package sigact

import (
	"os"
	"strconv"
	"strings"
	"syscall"
)

// windowsSignals names the signal numbers the Windows syscall package
// defines, plus SIGUSR1/SIGUSR2 at their Linux numbers so configuration
// written on unix still parses here. Parsing accepts all of them; catching
// is a separate question.
var windowsSignals = map[string]syscall.Signal{
	"SIGHUP":  syscall.SIGHUP,
	"SIGINT":  syscall.SIGINT,
	"SIGQUIT": syscall.SIGQUIT,
	"SIGILL":  syscall.SIGILL,
	"SIGTRAP": syscall.SIGTRAP,
	"SIGABRT": syscall.SIGABRT,
	"SIGBUS":  syscall.SIGBUS,
	"SIGFPE":  syscall.SIGFPE,
	"SIGKILL": syscall.SIGKILL,
	"SIGUSR1": syscall.Signal(0xa),
	"SIGSEGV": syscall.SIGSEGV,
	"SIGUSR2": syscall.Signal(0xc),
	"SIGPIPE": syscall.SIGPIPE,
	"SIGALRM": syscall.SIGALRM,
	"SIGTERM": syscall.SIGTERM,
}

// ///////////////////////////////////////////////
// Signal Names
// ///////////////////////////////////////////////

// SignalName returns the conventional name for sig, e.g. "SIGTERM". Signals
// outside the Windows set render as "signal <number>"; non-syscall signal
// values fall back to their own String.
func SignalName(sig os.Signal) string {
	ss, ok := sig.(syscall.Signal)
	if !ok {
		if sig == nil {
			return "<nil>"
		}
		return sig.String()
	}
	for name, v := range windowsSignals {
		if v == ss {
			return name
		}
	}
	return "signal " + strconv.Itoa(int(ss))
}

// ParseSignal converts a signal name to the platform signal value. Names are
// case-insensitive and the "SIG" prefix is optional; numeric forms ("2",
// "15") are accepted. Names outside the Windows set return
// [*InvalidSignalError].
func ParseSignal(name string) (os.Signal, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if s == "" {
		return nil, &InvalidSignalError{Name: name}
	}
	if n, err := strconv.Atoi(s); err == nil {
		ss := syscall.Signal(n)
		for _, v := range windowsSignals {
			if v == ss {
				return ss, nil
			}
		}
		return nil, &InvalidSignalError{Name: name}
	}
	if !strings.HasPrefix(s, "SIG") {
		s = "SIG" + s
	}
	if ss, ok := windowsSignals[s]; ok {
		return ss, nil
	}
	return nil, &InvalidSignalError{Name: name}
}

// ///////////////////////////////////////////////
// Catchability
// ///////////////////////////////////////////////

// checkCatchable rejects anything the Go runtime cannot deliver on Windows:
// only SIGINT (Ctrl+C / Ctrl+Break) and SIGTERM (console close, logoff,
// shutdown) ever reach a notified channel here.
func checkCatchable(sig os.Signal) error {
	ss, ok := sig.(syscall.Signal)
	if !ok {
		return &InvalidSignalError{Signal: sig}
	}
	if ss == syscall.SIGINT || ss == syscall.SIGTERM {
		return nil
	}
	return &InvalidSignalError{Signal: sig}
}
