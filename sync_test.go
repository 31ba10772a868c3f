// SPDX-License-Identifier: Apache-2.0

package evloop

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCondWakeOnNotify(t *testing.T) {
	var mu sync.Mutex
	c := NewCond()

	entered := make(chan struct{})
	woke := make(chan struct{})
	go func() {
		mu.Lock()
		close(entered)
		c.Wait(&mu)
		mu.Unlock()
		close(woke)
	}()

	// The waiter registers before releasing the lock, so once we can
	// acquire it ourselves the notification cannot be lost.
	<-entered
	mu.Lock()
	mu.Unlock()
	c.NotifyAll()

	select {
	case <-woke:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestCondNotifyAllWakesEveryWaiter(t *testing.T) {
	var mu sync.Mutex
	c := NewCond()

	const waiters = 3
	var wg sync.WaitGroup
	registered := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			registered <- struct{}{}
			c.Wait(&mu)
			mu.Unlock()
		}()
	}

	// Serialize on the lock after each waiter has held it: by then that
	// waiter shares the broadcast channel.
	for i := 0; i < waiters; i++ {
		<-registered
		mu.Lock()
		mu.Unlock()
	}
	c.NotifyAll()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all waiters were woken")
	}
}

func TestCondNotifyWithoutWaiter(t *testing.T) {
	c := NewCond()
	require.NotPanics(t, func() { c.NotifyAll() })
	require.NotPanics(t, func() { c.NotifyAll() })
}

func TestCondWaitReacquiresLock(t *testing.T) {
	var mu sync.Mutex
	c := NewCond()

	entered := make(chan struct{})
	reacquired := make(chan struct{})
	go func() {
		mu.Lock()
		close(entered)
		c.Wait(&mu)
		// Wait returned holding mu; prove it by unlocking.
		mu.Unlock()
		close(reacquired)
	}()

	<-entered
	mu.Lock()
	mu.Unlock()
	c.NotifyAll()

	select {
	case <-reacquired:
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return with the lock held")
	}
}

func TestNoOpLockIsALocker(t *testing.T) {
	var l sync.Locker = NoOpLock{}
	require.NotPanics(t, func() {
		l.Lock()
		l.Unlock()
		l.Unlock() // no state, so even unbalanced calls are harmless
	})
}
