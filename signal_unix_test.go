//go:build !windows

package sigact

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSignalName(t *testing.T) {
	tests := []struct {
		name string
		sig  os.Signal
		want string
	}{
		{"SIGTERM", syscall.SIGTERM, "SIGTERM"},
		{"SIGUSR1", syscall.SIGUSR1, "SIGUSR1"},
		{"SIGHUP", syscall.SIGHUP, "SIGHUP"},
		{"unnamed number", syscall.Signal(64), "signal 64"},
		{"nil", nil, "<nil>"},
		{"non-syscall value", fakeOSSignal{}, "fake"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignalName(tt.sig); got != tt.want {
				t.Errorf("SignalName(%v) = %q, want %q", tt.sig, got, tt.want)
			}
		})
	}
}

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in   string
		want os.Signal
	}{
		{"SIGTERM", syscall.SIGTERM},
		{"sigterm", syscall.SIGTERM},
		{"TERM", syscall.SIGTERM},
		{"term", syscall.SIGTERM},
		{"  term  ", syscall.SIGTERM},
		{"15", syscall.SIGTERM},
		{"1", syscall.SIGHUP},
		{"SIGUSR1", syscall.SIGUSR1},
		{"usr2", syscall.SIGUSR2},
		// Parsing is pure name translation; catchability is enforced at
		// registration, so SIGKILL still parses.
		{"SIGKILL", syscall.SIGKILL},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignal(tt.in)
			if err != nil {
				t.Fatalf("ParseSignal(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSignal(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSignalInvalid(t *testing.T) {
	tests := []string{"", "   ", "SIGBOGUS", "bogus", "0", "-9", "9999", "SIG", "15x"}
	for _, in := range tests {
		t.Run("in="+in, func(t *testing.T) {
			got, err := ParseSignal(in)
			if err == nil {
				t.Fatalf("ParseSignal(%q) = %v, want error", in, got)
			}
			var ise *InvalidSignalError
			if !errors.As(err, &ise) {
				t.Fatalf("error = %v (%T), want *InvalidSignalError", err, err)
			}
			if ise.Name != in {
				t.Errorf("InvalidSignalError.Name = %q, want %q", ise.Name, in)
			}
		})
	}
}

func TestParseSignalRoundTrip(t *testing.T) {
	for _, name := range []string{"SIGHUP", "SIGINT", "SIGTERM", "SIGUSR1", "SIGUSR2", "SIGWINCH"} {
		sig, err := ParseSignal(name)
		if err != nil {
			t.Fatalf("ParseSignal(%q): %v", name, err)
		}
		if got := SignalName(sig); got != name {
			t.Errorf("SignalName(ParseSignal(%q)) = %q", name, got)
		}
	}
}

func TestCheckCatchable(t *testing.T) {
	tests := []struct {
		name    string
		sig     os.Signal
		wantErr bool
	}{
		{"SIGTERM", syscall.SIGTERM, false},
		{"SIGHUP", syscall.SIGHUP, false},
		{"SIGUSR1", syscall.SIGUSR1, false},
		{"SIGWINCH", syscall.SIGWINCH, false},
		{"SIGKILL", syscall.SIGKILL, true},
		{"SIGSTOP", syscall.SIGSTOP, true},
		{"zero", syscall.Signal(0), true},
		{"negative", syscall.Signal(-1), true},
		{"unnamed number", syscall.Signal(64), true},
		{"non-syscall value", fakeOSSignal{}, true},
		{"nil", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkCatchable(tt.sig)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkCatchable(%v) = %v, wantErr %v", tt.sig, err, tt.wantErr)
			}
		})
	}
}

// TestDispatchRealSignal registers a handler through the real OS facility and
// raises the signal against the test process itself.
func TestDispatchRealSignal(t *testing.T) {
	r := New()
	defer r.Close()

	invoked := make(chan struct{}, 1)
	if err := r.Register(syscall.SIGUSR1, func() { invoked <- struct{}{} }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-invoked:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked for a real SIGUSR1")
	}
}
