// SPDX-License-Identifier: Apache-2.0

package evloop

// staticQueue is a fixed-capacity ring of cells with a logical window
// [head, head+count) that may wrap past the physical end of the backing
// array. It only does bookkeeping; record placement and the wrap-boundary
// padding policy live in the allocator.
type staticQueue struct {
	cells []cell
	head  int
	count int
}

func newStaticQueue(capacity int) staticQueue {
	if capacity < 0 {
		capacity = 0
	}
	return staticQueue{cells: make([]cell, capacity)}
}

func (q *staticQueue) isEmpty() bool { return q.count == 0 }

func (q *staticQueue) size() int { return q.count }

func (q *staticQueue) capacity() int { return len(q.cells) }

// isLinearised reports whether the logical contents occupy one contiguous
// physical span. An empty queue is linearised.
func (q *staticQueue) isLinearised() bool { return q.head+q.count <= len(q.cells) }

// tailGap is the number of cells between the logical end and the physical
// end of the buffer. Only meaningful while the queue is linearised.
func (q *staticQueue) tailGap() int { return len(q.cells) - (q.head + q.count) }

// at returns the cell at logical index i.
func (q *staticQueue) at(i int) *cell {
	return &q.cells[(q.head+i)%len(q.cells)]
}

func (q *staticQueue) front() *cell { return q.at(0) }

func (q *staticQueue) back() *cell { return q.at(q.count - 1) }

// resize grows the logical window to n cells. The allocator is responsible
// for never growing past capacity.
func (q *staticQueue) resize(n int) { q.count = n }

// popFront drops n cells from the head.
func (q *staticQueue) popFront(n int) {
	q.head = (q.head + n) % len(q.cells)
	q.count -= n
}

// zeroFront clears the first n cells of the window. The span is physically
// contiguous because the allocator never lets a record straddle the wrap
// boundary.
func (q *staticQueue) zeroFront(n int) {
	clear(q.cells[q.head : q.head+n])
}

// clear discards the whole window and scrubs the arena.
func (q *staticQueue) clear() {
	clear(q.cells)
	q.head, q.count = 0, 0
}
