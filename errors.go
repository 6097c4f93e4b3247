package sigact

import (
	"errors"
	"fmt"
	"os"
)

// ErrClosed is returned by [Registry.Register] after [Registry.Close].
var ErrClosed = errors.New("sigact: registry closed")

// InvalidSignalError reports a registration attempt for a signal the
// platform does not permit catching, or a name that does not parse to a
// signal at all. Exactly one of Signal and Name is set.
type InvalidSignalError struct {
	// Signal is the rejected signal value, when the caller passed one.
	Signal os.Signal
	// Name is the rejected signal name, when the caller passed a string
	// (see [ParseSignal]).
	Name string
}

func (e *InvalidSignalError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("sigact: unknown signal name %q", e.Name)
	}
	if e.Signal == nil {
		return "sigact: nil signal"
	}
	return fmt.Sprintf("sigact: signal %s cannot be caught", SignalName(e.Signal))
}

// InvalidCallbackError reports a registration attempt with a nil callback.
type InvalidCallbackError struct {
	// Signal is the signal the nil callback was offered for.
	Signal os.Signal
}

func (e *InvalidCallbackError) Error() string {
	return fmt.Sprintf("sigact: nil callback for signal %s", SignalName(e.Signal))
}
