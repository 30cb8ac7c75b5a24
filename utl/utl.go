// Package utl is a user-level cooperative task library. It multiplexes
// many stackful, cooperatively-scheduled user tasks onto exactly two
// kernel-thread-pinned executors: C-EXEC runs compute, I-EXEC runs the
// blocking I/O primitives (open, read, write, close), so a slow syscall on
// one task never stalls the others.
//
// A Task is expressed as a goroutine gated by a pair of rendezvous
// channels rather than a raw swapped machine context (see SPEC_FULL.md
// §4.1a for why): the executor loops are structurally the same
// pop-one-pop-run-to-suspension shape as hanwen-go-fuse's Server.loop, and
// the two loops are pinned to their own OS thread with runtime.LockOSThread
// the way a ublk queue runner pins itself to avoid sharing a thread with
// other blocking work.
package utl

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/oslab/utlsfs/internal/fifo"
	"github.com/oslab/utlsfs/internal/obs"
)

// MaxThreads bounds the number of simultaneously live tasks, mirroring the
// source's MAX_THREADS compile-time constant.
const MaxThreads = 32

// DefaultDrainTimeout bounds how long Shutdown waits for live tasks to
// reach zero before force-closing the executors (SPEC_FULL.md §4.1a; the
// source cancels workers unconditionally, which the design notes flag as a
// bug this reimplementation fixes).
const DefaultDrainTimeout = 5 * time.Second

// Utl is a single process-wide scheduler instance: two executors, the
// READY and WAIT queues that route work between them, and the live-task
// bookkeeping that gates create() and shutdown().
type Utl struct {
	ready *fifo.Queue[*Task]
	wait  *fifo.Queue[*Task]

	tasks taskSlab
	sem   *semaphore.Weighted

	files *fileTable

	g       errgroup.Group
	started bool

	log *slog.Logger
}

// Option configures a Utl at construction time.
type Option func(*Utl)

// WithLogger overrides the default structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(u *Utl) { u.log = l }
}

// New allocates a Utl. Init must be called once before create/yield/exit/
// the I/O primitives, per the "safe to call once per process" contract.
func New(opts ...Option) *Utl {
	u := &Utl{
		ready: fifo.New[*Task](),
		wait:  fifo.New[*Task](),
		sem:   semaphore.NewWeighted(MaxThreads),
		files: newFileTable(),
		log:   obs.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Init spawns the C-EXEC and I-EXEC worker threads. Safe to call once.
func (u *Utl) Init() {
	if u.started {
		return
	}
	u.started = true
	u.g.Go(func() error { return u.executorLoop("c-exec", u.ready) })
	u.g.Go(func() error { return u.executorLoop("i-exec", u.wait) })
}

// executorLoop is the trampoline both C-EXEC and I-EXEC run: pop one task,
// hand it control, wait for it to suspend, repeat. It never runs two tasks
// at once and never preempts a running task.
func (u *Utl) executorLoop(name string, q *fifo.Queue[*Task]) error {
	runtime.LockOSThread()
	u.log.Debug("executor started", "executor", name)
	for {
		t, ok := q.Pop()
		if !ok {
			u.log.Debug("executor stopping", "executor", name)
			return nil
		}
		u.log.Debug("executor dispatching task", "executor", name, "task", t.ID(), "queued", q.Len())
		t.resume <- struct{}{}
		<-t.yielded
	}
}

// Create allocates a Task whose entry point is fn, and enqueues it on
// READY. It returns false, leaking nothing, if MaxThreads live tasks
// already exist.
func (u *Utl) Create(fn func(h *Handle)) bool {
	if !u.sem.TryAcquire(1) {
		return false
	}
	t := u.tasks.alloc()
	h := &Handle{u: u, t: t}
	u.g.Go(func() error {
		<-t.resume
		fn(h)
		u.destroy(t) // implicit exit: fn returned without calling h.Exit()
		t.yielded <- struct{}{}
		return nil
	})
	u.log.Debug("task created", "task", t.ID())
	u.ready.Push(t)
	return true
}

// destroy removes t from the live-task bookkeeping. It must be called at
// most once per task, by whichever of {implicit return, h.Exit} happens.
func (u *Utl) destroy(t *Task) {
	u.tasks.release(t)
	u.sem.Release(1)
	u.log.Debug("task exited", "task", t.ID())
}

// LiveTasks reports the number of tasks that have been created but not yet
// exited, across both queues and whichever executor currently runs one.
func (u *Utl) LiveTasks() int {
	u.tasks.mu.Lock()
	defer u.tasks.mu.Unlock()
	return len(u.tasks.slots) - len(u.tasks.free)
}

// Shutdown waits up to timeout for every live task to exit, then cancels
// both executors by closing their queues and joins them. If timeout
// elapses with tasks still live, it force-closes anyway: a deliberate
// deviation from the source's unconditional-cancel shutdown (SPEC_FULL.md
// §4.1a), since forcing a task mid-I/O to never resume would otherwise
// leak its goroutine forever.
func (u *Utl) Shutdown(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for u.LiveTasks() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	u.ready.Close()
	u.wait.Close()
	return u.g.Wait()
}

// ShutdownContext is Shutdown but bounded by a context instead of a fixed
// timeout, for callers that already have a deadline/cancellation signal.
func (u *Utl) ShutdownContext(ctx context.Context) error {
	for u.LiveTasks() > 0 {
		select {
		case <-ctx.Done():
			goto closeQueues
		case <-time.After(time.Millisecond):
		}
	}
closeQueues:
	u.ready.Close()
	u.wait.Close()
	return u.g.Wait()
}
