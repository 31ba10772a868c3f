// SPDX-License-Identifier: Apache-2.0

// Package evloop provides a fixed-capacity, allocation-free deferred-work
// scheduler in the style of bare-metal event loops: heterogeneous work
// items are placement-constructed into a pre-sized arena of uniform cells
// and drained, strictly in posting order, by a single consumer goroutine.
//
// # Arena and type erasure
//
// The arena is an array of fixed-size, alignment-correct cells sized to
// the two-word task header. A posted callable of concrete type T occupies
// ceil(sizeof(record)/sizeof(cell)) contiguous cells, a constant per type.
// Records never move once placed. When a record would straddle the
// physical end of the ring, a one-cell filler pads the tail to the
// boundary instead of copying to linearise; the padding wastes at most
// gap-1 cells per wrap.
//
// Because cells are raw words the garbage collector does not scan them:
// values a queued task refers to must remain reachable elsewhere until the
// task executes. See [PostTask].
//
// # Thread safety
//
//   - [Loop.Post] and [PostTask] are safe from any goroutine, including
//     re-entrantly from a task executing on the loop.
//   - [Loop.PostNoLock] and [PostTaskNoLock] require the caller to hold the
//     loop's lock, or to run where no concurrent queue mutation is possible.
//   - [Loop.Run] is single-consumer; [Loop.Reset] and [Loop.Resume] must not
//     race with it.
//   - [Loop.Stop] is safe from any goroutine and from inside a task.
//
// The lock and condition variable are pluggable ([WithLock], [WithCond]) so
// the same core runs under a real mutex, a no-op stand-in for
// single-threaded use, or a custom primitive.
//
// # Usage
//
//	loop := evloop.New(1024)
//
//	go func() {
//		loop.Post(func() { fmt.Println("deferred") })
//		loop.Post(loop.Stop)
//	}()
//
//	loop.Run()
//
// Posting never blocks and never allocates; when the arena is full it
// returns false and the caller decides whether to retry, drop, or
// escalate.
package evloop
