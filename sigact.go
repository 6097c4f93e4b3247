// Package sigact associates OS signals with callback actions and dispatches
// delivered signals to them.
//
// A [Registry] owns an ordered mapping from signal to [Action]. Registering a
// signal installs OS delivery routing for it; when the signal arrives, the
// registry looks up the matching action and invokes its callback. Callbacks
// run one at a time on the registry's dispatch goroutine and are free to
// terminate the process; that is the normal shape of a daemon's stop or
// abort handler, not an error path.
//
// Typical use from a daemon's main:
//
//	reg := sigact.New()
//	reg.Register(syscall.SIGTERM, stopFunc)
//	reg.Register(syscall.SIGINT, abortFunc)
//	// block; delivery is asynchronous from here on
//
// Signal dispositions are process-wide state. Run at most one live Registry
// per process; two registries registered for the same signal will both be
// woken by it.
package sigact

import (
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"sync/atomic"
)

// ///////////////////////////////////////////////
// Action
// ///////////////////////////////////////////////

// Callback is a zero-argument action invoked when its registered signal is
// delivered. The registry never inspects a callback, it only calls it. A
// callback that panics takes the process down: dispatch does not recover,
// since masking the failure could hide a daemon's intended abrupt exit.
type Callback func()

// Action pairs a signal with the callback registered for it. Values are
// snapshots handed out by [Registry.Actions]; mutating a copy has no effect
// on the registry.
type Action struct {
	// sig is the OS signal this action responds to.
	sig os.Signal
	// callback runs when sig is delivered.
	callback Callback
}

// Signal returns the OS signal this action is registered for.
func (a Action) Signal() os.Signal { return a.sig }

// String renders the action for introspection output, e.g. "Action(SIGTERM)".
func (a Action) String() string {
	return "Action(" + SignalName(a.sig) + ")"
}

// ///////////////////////////////////////////////
// OS Signal Routing
// ///////////////////////////////////////////////

// signaler abstracts the process-wide signal facility so tests can drive
// dispatch without real signal delivery. The standard implementation
// delegates to [os/signal].
type signaler interface {
	Notify(ch chan<- os.Signal, sig ...os.Signal)
	Stop(ch chan<- os.Signal)
	Reset(sig ...os.Signal)
}

// stdSignaler routes through the real OS signal facility.
type stdSignaler struct{}

func (stdSignaler) Notify(ch chan<- os.Signal, sig ...os.Signal) { signal.Notify(ch, sig...) }
func (stdSignaler) Stop(ch chan<- os.Signal)                     { signal.Stop(ch) }
func (stdSignaler) Reset(sig ...os.Signal)                       { signal.Reset(sig...) }

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

// registrations is the immutable snapshot of everything registered with a
// Registry. Register and Unregister build a fresh value and swap the pointer,
// so the dispatch goroutine reads without locks and can never observe a
// half-mutated table.
type registrations struct {
	// order holds actions in registration order. Re-registering a signal
	// replaces its entry in place, keeping the original position.
	order []Action
	// index maps a signal to its position in order.
	index map[os.Signal]int
}

// emptyRegistrations is the snapshot a new Registry starts from.
var emptyRegistrations = &registrations{index: map[os.Signal]int{}}

// Registry maps OS signals to registered actions and dispatches deliveries
// to them. The zero value is not usable; construct with [New].
//
// Register and Unregister are safe to call concurrently with each other and
// with dispatch, but are meant to be called from the main line of execution,
// not from inside a running callback.
type Registry struct {
	// mu serializes mutations (Register, Unregister, Close).
	mu sync.Mutex
	// current is the live registration snapshot, read lock-free by dispatch.
	current atomic.Pointer[registrations]
	// ch receives OS deliveries for every registered signal. Buffered to 1
	// so a delivery is not dropped when dispatch is briefly busy; pending
	// semantics beyond that are the platform's, not this package's.
	ch chan os.Signal
	// done stops the dispatch goroutine when closed.
	done chan struct{}
	// sys is the signal facility, swapped for a fake in tests.
	sys signaler
	// dispatchOnce starts the dispatch goroutine on first registration.
	dispatchOnce sync.Once
	// closed reports whether Close has run; guarded by mu.
	closed bool
}

// New returns an empty Registry. No configuration is required; the registry
// installs OS routing lazily as signals are registered.
func New() *Registry {
	r := &Registry{
		ch:   make(chan os.Signal, 1),
		done: make(chan struct{}),
		sys:  stdSignaler{},
	}
	r.current.Store(emptyRegistrations)
	return r
}

// Register stores cb as the action for sig, replacing any previous action
// for that same signal, and installs OS delivery routing for sig. The
// callback is never invoked inline, only on later delivery.
//
// Registration fails fast: a signal the platform does not allow to be caught
// (SIGKILL, SIGSTOP, or a value outside the platform's signal set) returns
// [*InvalidSignalError], and a nil callback returns [*InvalidCallbackError].
// In both cases the mapping is left unchanged.
func (r *Registry) Register(sig os.Signal, cb Callback) error {
	if err := checkCatchable(sig); err != nil {
		return err
	}
	if cb == nil {
		return &InvalidCallbackError{Signal: sig}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	cur := r.current.Load()
	next := &registrations{
		order: slices.Clone(cur.order),
		index: make(map[os.Signal]int, len(cur.index)+1),
	}
	for k, v := range cur.index {
		next.index[k] = v
	}

	act := Action{sig: sig, callback: cb}
	if i, ok := next.index[sig]; ok {
		// Overwrite keeps the original registration position.
		next.order[i] = act
	} else {
		next.index[sig] = len(next.order)
		next.order = append(next.order, act)
	}
	r.current.Store(next)

	// Routing installation is additive and safe to repeat for a signal that
	// is already routed.
	r.sys.Notify(r.ch, sig)
	r.dispatchOnce.Do(func() { go r.dispatch() })

	slog.Debug("registered signal action", "signal", SignalName(sig))
	return nil
}

// Unregister removes the action for sig and restores the platform default
// disposition for it. It reports whether an action was actually removed.
//
// Restoring the default disposition is process-wide: it also detaches any
// other party that asked to be notified for sig, which is consistent with
// the one-owner-per-signal contract this package assumes.
func (r *Registry) Unregister(sig os.Signal) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	i, ok := cur.index[sig]
	if !ok {
		return false
	}
	slog.Warn("removing signal action", "signal", SignalName(sig))

	next := &registrations{
		order: make([]Action, 0, len(cur.order)-1),
		index: make(map[os.Signal]int, len(cur.index)-1),
	}
	next.order = append(next.order, cur.order[:i]...)
	next.order = append(next.order, cur.order[i+1:]...)
	for j, a := range next.order {
		next.index[a.sig] = j
	}
	r.current.Store(next)

	r.sys.Reset(sig)
	return true
}

// Actions returns the currently registered actions in registration order.
// Re-registering an existing signal does not move it; newly seen signals
// append. The returned slice is the caller's to keep.
func (r *Registry) Actions() []Action {
	return slices.Clone(r.current.Load().order)
}

// Close stops OS delivery routing to this registry and terminates its
// dispatch goroutine. Registered actions remain visible through [Actions]
// but will no longer be invoked. Close is idempotent; Register after Close
// returns [ErrClosed].
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.sys.Stop(r.ch)
	close(r.done)
}

// ///////////////////////////////////////////////
// Dispatch
// ///////////////////////////////////////////////

// dispatch is the delivery trampoline: it receives routed signals and
// invokes the matching callback synchronously, one delivery at a time. A
// delivery with no registered action is a no-op, never an error; it can
// happen when a signal arrives between Unregister and the OS observing the
// disposition change.
func (r *Registry) dispatch() {
	for {
		select {
		case <-r.done:
			return
		case sig := <-r.ch:
			cur := r.current.Load()
			if i, ok := cur.index[sig]; ok {
				cur.order[i].callback()
			} else {
				slog.Debug("no action for delivered signal", "signal", SignalName(sig))
			}
		}
	}
}
