package utl

import "runtime"

// Handle is passed to a task's entry function; it is the task's only way
// to reach the scheduler (yield, exit, and the I/O primitives all hang off
// it instead of being free functions, since each is only meaningful for
// "the task currently running").
type Handle struct {
	u *Utl
	t *Task
}

// ID returns the running task's id.
func (h *Handle) ID() uint64 { return h.t.id }

// Yield places the current task on the tail of READY and swaps back to the
// C-EXEC trampoline. It must only be called from the task's own goroutine.
func (h *Handle) Yield() {
	h.u.ready.Push(h.t)
	h.t.yielded <- struct{}{}
	<-h.t.resume
}

// Exit destroys the current task and resumes the C-EXEC trampoline without
// re-enqueueing. It never returns: like testing.T.FailNow, it ends the
// calling goroutine via runtime.Goexit so no task code runs after exit.
func (h *Handle) Exit() {
	h.u.destroy(h.t)
	h.t.yielded <- struct{}{}
	runtime.Goexit()
}
