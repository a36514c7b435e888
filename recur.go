package sonora

import "sync/atomic"

// RecurCell is an indirect handle to an EventFn, used to implement temporal
// recursion: an event that reschedules itself by reading the *current*
// contents of a cell at fire time, rather than closing over a fixed
// function pointer. The live-coding layer's "redef" rebinds the cell;
// "kill" installs a no-op. Neither operation touches the event list itself
// — the next firing simply picks up whatever the cell currently holds.
//
// This is the Go-native reinterpretation design note 9 calls for, in place
// of the source system's global-var-rebinding macros.
type RecurCell struct {
	fn atomic.Pointer[EventFn]
}

// NewRecurCell creates a cell holding fn.
func NewRecurCell(fn EventFn) *RecurCell {
	c := &RecurCell{}
	c.Redef(fn)
	return c
}

// Redef rebinds the cell to a new function.
func (c *RecurCell) Redef(fn EventFn) {
	c.fn.Store(&fn)
}

// Kill installs a no-op, so the next firing produces nothing and the
// recursion quietly ends.
func (c *RecurCell) Kill() {
	c.Redef(func(...interface{}) EventResult { return nil })
}

// Fn returns an EventFn that, each time it fires, invokes whatever function
// the cell currently holds. Schedule this (not the original fn) so that
// Redef/Kill take effect on the very next firing.
func (c *RecurCell) Fn() EventFn {
	return func(args ...interface{}) EventResult {
		cur := c.fn.Load()
		if cur == nil {
			return nil
		}
		return (*cur)(args...)
	}
}
