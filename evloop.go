// SPDX-License-Identifier: Apache-2.0

package evloop

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Loop is a fixed-capacity deferred-work scheduler. Work items posted from
// any goroutine are placement-constructed into a pre-sized cell arena and
// executed in posting order by the single goroutine running Run. No memory
// is allocated on the post or run paths after construction.
//
// A Loop must not be copied after first use.
type Loop struct {
	queue   staticQueue
	lock    sync.Locker
	cond    Cond
	stopped atomic.Bool
	peak    int
}

// Option configures a Loop at construction time.
type Option func(*Loop)

// WithLock replaces the lock guarding the queue. The default is a
// *sync.Mutex. Use NoOpLock when producers and the consumer can never run
// concurrently.
func WithLock(l sync.Locker) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.lock = l
		}
	}
}

// WithCond replaces the condition variable the consumer blocks on while
// the queue is empty. The default is NewCond().
func WithCond(c Cond) Option {
	return func(lp *Loop) {
		if c != nil {
			lp.cond = c
		}
	}
}

// New creates a Loop with an arena of byteBudget bytes, rounded down to
// whole cells. The arena is allocated once here and never reallocated.
func New(byteBudget int, opts ...Option) *Loop {
	l := &Loop{
		lock: &sync.Mutex{},
		cond: NewCond(),
	}
	l.queue = newStaticQueue(byteBudget / int(cellSize))
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Locker returns the loop's lock for external coordination, for example to
// let a producer batch several PostNoLock calls under one acquisition.
func (l *Loop) Locker() sync.Locker { return l.lock }

// Cond returns the loop's condition variable.
func (l *Loop) Cond() Cond { return l.cond }

// Len returns the number of occupied cells, fillers included.
func (l *Loop) Len() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.queue.size()
}

// Cap returns the arena capacity in cells.
func (l *Loop) Cap() int { return l.queue.capacity() }

// Peak returns the high-water mark of occupied cells. It is not cleared by
// Reset, allowing sizing of the byte budget against real workloads.
func (l *Loop) Peak() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.peak
}

// Post enqueues fn for execution. It acquires the loop's lock for the
// duration of the call and releases it on every path. It returns false,
// without blocking and without partial insertion, when the arena cannot
// hold the task.
//
// fn is stored in unscanned arena cells; like any queued payload it must
// stay reachable from elsewhere until it runs. Long-lived funcs, method
// values on live receivers and closures the caller retains are safe. See
// PostTask.
func (l *Loop) Post(fn func()) bool {
	return PostTask(l, Func(fn))
}

// PostNoLock enqueues fn without acquiring the lock. See PostTaskNoLock.
func (l *Loop) PostNoLock(fn func()) bool {
	return PostTaskNoLock(l, Func(fn))
}

// PostTask enqueues task for execution, storing it by value in the arena.
// It is safe to call from any goroutine, including from a task currently
// executing on the loop. It returns false when the arena cannot hold the
// task.
//
// The arena is not scanned by the garbage collector: anything task refers
// to must stay reachable from elsewhere until the task has executed. Tasks
// holding only values, or pointers the caller keeps alive, are safe.
func PostTask[T Runner](l *Loop, task T) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return PostTaskNoLock(l, task)
}

// PostTaskNoLock is PostTask without the lock acquisition. The caller must
// hold the loop's lock, or run in a context that can never mutate the
// queue concurrently with the lock holder.
func PostTaskNoLock[T Runner](l *Loop, task T) bool {
	n := footprintOf[T]()
	wasEmpty := l.queue.isEmpty()

	c := l.allocPlace(n)
	if c == nil {
		logEvent(LevelWarn, "evloop: post rejected, arena full", l.queue.size(), n)
		return false
	}
	placeBound(c, task, n)

	if wasEmpty {
		l.cond.NotifyAll()
	}
	return true
}

// allocPlace reserves n contiguous cells at the logical tail without
// relocating any reserved cells. When the buffer is linearised and the gap
// to the physical end is too small to host n cells, a 1-cell filler rounds
// the tail up to the physical end so growth restarts from the physical
// beginning. The filler wastes at most gap-1 cells per wrap, which is the
// price of never copying to linearise.
func (l *Loop) allocPlace(n int) *cell {
	for {
		if l.queue.capacity()-l.queue.size() < n {
			return nil
		}
		cur := l.queue.size()
		if l.queue.isLinearised() {
			if gap := l.queue.tailGap(); 0 < gap && gap < n {
				l.queue.resize(cur + 1)
				placeFiller(l.queue.back())
				l.notePeak()
				logEvent(LevelDebug, "evloop: filler inserted at wrap boundary", l.queue.size(), n)
				continue
			}
		}
		l.queue.resize(cur + n)
		l.notePeak()
		return l.queue.at(cur)
	}
}

func (l *Loop) notePeak() {
	if s := l.queue.size(); s > l.peak {
		l.peak = s
	}
}

// Run executes posted tasks in order until Stop is observed. When the
// queue drains it blocks on the condition variable until a post or a stop
// wakes it. Task bodies run with the lock released, so a task may post
// further work without deadlocking. Exactly one goroutine may be inside
// Run at a time.
//
// A panic escaping a task propagates out of Run; the panicking task's
// destroy and reclaim steps are skipped.
func (l *Loop) Run() {
	if lg := getLogger(); lg.IsEnabled(LevelDebug) {
		lg.Log(LogEntry{Level: LevelDebug, Message: "evloop: run loop entered", Pending: l.Len()})
	}
	for {
		l.lock.Lock()
		for !l.queue.isEmpty() && !l.stopped.Load() {
			h := (*header)(unsafe.Pointer(l.queue.front()))
			exec := h.exec
			l.lock.Unlock()

			exec(unsafe.Pointer(h))

			l.lock.Lock()
			n := int(h.footprint)
			l.queue.zeroFront(n) // destroy strictly before reclaim
			l.queue.popFront(n)
		}

		if l.stopped.Load() {
			pending := l.queue.size()
			l.lock.Unlock()
			logEvent(LevelDebug, "evloop: run loop stopped", pending, 0)
			return
		}

		l.cond.Wait(l.lock)
		l.lock.Unlock()
	}
}

// Stop requests termination of Run. It does not block waiting for the
// loop: at most one in-flight task finishes before Run returns. Pending
// tasks stay queued; use Resume to run them again, or Reset to discard
// them.
//
// The flag is stored under the lock so a consumer between its empty-check
// and its wait can never miss the wake-up, and it is atomic so the
// consumer's unlocked observations are well-defined on multi-core targets.
func (l *Loop) Stop() {
	l.lock.Lock()
	l.stopped.Store(true)
	l.lock.Unlock()
	l.cond.NotifyAll()
	logEvent(LevelDebug, "evloop: stop requested", 0, 0)
}

// Resume clears the stop flag, leaving queued tasks intact, so a
// subsequent Run continues with whatever was pending when Stop took
// effect. Must not be called while Run is executing.
func (l *Loop) Resume() {
	l.lock.Lock()
	l.stopped.Store(false)
	pending := l.queue.size()
	l.lock.Unlock()
	logEvent(LevelDebug, "evloop: resumed", pending, 0)
}

// Reset discards all queued tasks and clears the stop flag, returning the
// loop to its initial idle state without reallocating the arena. Discarded
// tasks never execute; their cells are scrubbed, not run down. Must not be
// called while Run is executing.
func (l *Loop) Reset() {
	l.lock.Lock()
	l.stopped.Store(false)
	l.queue.clear()
	l.lock.Unlock()
	logEvent(LevelDebug, "evloop: reset", 0, 0)
}
