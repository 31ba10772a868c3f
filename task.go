// SPDX-License-Identifier: Apache-2.0

package evloop

import (
	"unsafe"
)

// Runner is the executable capability posted to a Loop. Concrete
// implementations are stored by value inside the loop's cell arena, so
// their size directly determines how many cells they occupy.
type Runner interface {
	Run()
}

// Func adapts a plain nullary function to the Runner interface.
type Func func()

// Run satisfies the Runner interface.
func (f Func) Run() { f() }

// header is the type-erased prefix written into the first cell of every
// queued record. exec knows the concrete layout behind p; footprint is the
// record's size in cells, fixed at enqueue time and reported unchanged at
// dequeue time.
type header struct {
	exec      func(p unsafe.Pointer)
	footprint uintptr
}

// cell is one unit of raw arena storage. It is deliberately typed as
// uintptr words rather than bytes so that its alignment matches the header
// on every architecture. The garbage collector does not scan cells; see the
// liveness contract on PostTask.
type cell struct {
	words [cellWords]uintptr
}

const (
	cellWords = 2
	cellSize  = unsafe.Sizeof(cell{})
)

// A header must occupy exactly one cell and share its alignment. Any
// mismatch makes one of these constants negative, which fails compilation.
const (
	_ = cellSize - unsafe.Sizeof(header{})
	_ = unsafe.Sizeof(header{}) - cellSize
	_ = unsafe.Alignof(cell{}) - unsafe.Alignof(header{})
	_ = unsafe.Alignof(header{}) - unsafe.Alignof(cell{})
)

// bound is the concrete record layout for a Runner of type T: the erased
// header followed by the callable stored by value.
type bound[T Runner] struct {
	h    header
	task T
}

// footprintOf reports the number of cells a bound record for T occupies.
// The value is a per-instantiation constant derived from the record's own
// storage size, rounded up to whole cells.
func footprintOf[T Runner]() int {
	var b bound[T]
	return int((unsafe.Sizeof(b)-1)/cellSize) + 1
}

func execBound[T Runner](p unsafe.Pointer) {
	(*bound[T])(p).task.Run()
}

// execFiller is the behavior of a filler record: nothing. Fillers exist
// only to round the logical tail up to the buffer's physical end.
func execFiller(unsafe.Pointer) {}

// placeFiller writes a 1-cell filler record into c.
func placeFiller(c *cell) {
	*(*header)(unsafe.Pointer(c)) = header{exec: execFiller, footprint: 1}
}

// placeBound constructs a bound record for task in the cells starting at c.
// The caller must have reserved footprintOf[T]() contiguous cells.
func placeBound[T Runner](c *cell, task T, footprint int) {
	b := (*bound[T])(unsafe.Pointer(c))
	b.h = header{exec: execBound[T], footprint: uintptr(footprint)}
	b.task = task
}
