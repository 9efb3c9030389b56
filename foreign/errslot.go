package foreign

import "sync"

// Go has no thread-local storage, so the closest analogue to the foreign
// library's thread-local last-error handler (spec.md §4.10) that stays
// re-entrant across goroutines is a single mutex-guarded slot: a call
// into the bridge holds the mutex for its whole duration, the same way
// one OS thread would hold the foreign library's handler to itself.
var (
	slotMu  sync.Mutex
	lastErr error
)

// initialise engages the error slot and returns a release function every
// bridge entry point must defer: it drains whatever report recorded
// during the call, resets the slot, and unlocks it for the next caller.
func initialise() func() error {
	slotMu.Lock()
	lastErr = nil
	return func() error {
		err := lastErr
		lastErr = nil
		slotMu.Unlock()
		return err
	}
}

// report records err as the foreign library's last error. Only called by
// bridge code that fails independently of the error already being
// returned up the call stack, so the released error and the directly
// returned error agree.
func report(err error) {
	lastErr = err
}
