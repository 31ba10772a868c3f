// SPDX-License-Identifier: Apache-2.0

package evloop

import (
	"sync"
)

// Cond is the condition-variable capability a Loop blocks on while its
// queue is empty. Wait must atomically release the held lock, block until
// notified, and re-acquire the lock before returning. NotifyAll must wake
// every blocked waiter.
type Cond interface {
	Wait(l sync.Locker)
	NotifyAll()
}

// chanCond implements Cond with a broadcast channel: waiters share one
// channel and NotifyAll closes it. The channel is registered before the
// loop lock is released, so a notification issued by a lock-holding
// producer can never be lost between the unlock and the block.
type chanCond struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewCond returns the default condition variable, suitable for any number
// of goroutine waiters.
func NewCond() Cond {
	return &chanCond{}
}

func (c *chanCond) Wait(l sync.Locker) {
	c.mu.Lock()
	ch := c.ch
	if ch == nil {
		ch = make(chan struct{})
		c.ch = ch
	}
	c.mu.Unlock()

	l.Unlock()
	<-ch
	l.Lock()
}

func (c *chanCond) NotifyAll() {
	c.mu.Lock()
	if c.ch != nil {
		close(c.ch)
		c.ch = nil
	}
	c.mu.Unlock()
}

// NoOpLock is a sync.Locker that does nothing. It stands in for the real
// lock on single-threaded deployments where producers and the consumer can
// never preempt each other, mirroring the interrupt-disable or no-op lock
// a bare-metal target would supply.
type NoOpLock struct{}

// Lock satisfies sync.Locker.
func (NoOpLock) Lock() {}

// Unlock satisfies sync.Locker.
func (NoOpLock) Unlock() {}
