package radix

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Allocator hands out the working buffers of a sort.
//
// Alloc must return a slice of length n or an error wrapping ErrAllocation.
// Release is called for every buffer the sort does not hand back to its
// caller.
type Allocator[K constraints.Unsigned] interface {
	Alloc(n int) ([]K, error)
	Release(buf []K)
}

// HeapAllocator allocates buffers with make and leaves them to the garbage
// collector on Release.
//
// Length overflows reported by the runtime are turned into ErrAllocation.
// Exhausting the process heap is fatal in Go and cannot be reported; cap
// memory with LimitedAllocator when that matters.
type HeapAllocator[K constraints.Unsigned] struct{}

func (HeapAllocator[K]) Alloc(n int) (buf []K, err error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrAllocation, n)
	}
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()
	return make([]K, n), nil
}

func (HeapAllocator[K]) Release([]K) {}

// LimitedAllocator enforces a byte budget on the buffers it has outstanding.
// Requests that would exceed the budget fail with ErrAllocation. It is safe
// for concurrent use.
type LimitedAllocator[K constraints.Unsigned] struct {
	limit int64
	inUse atomic.Int64
	next  Allocator[K]
}

// NewLimitedAllocator returns an allocator that keeps at most limit bytes
// outstanding, backed by the heap.
func NewLimitedAllocator[K constraints.Unsigned](limit int64) *LimitedAllocator[K] {
	return &LimitedAllocator[K]{
		limit: limit,
		next:  HeapAllocator[K]{},
	}
}

func (a *LimitedAllocator[K]) Alloc(n int) ([]K, error) {
	size := bufferBytes[K](n)
	for {
		cur := a.inUse.Load()
		if size < 0 || cur+size > a.limit {
			return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrAllocation, size, cur, a.limit)
		}
		if a.inUse.CompareAndSwap(cur, cur+size) {
			break
		}
	}

	buf, err := a.next.Alloc(n)
	if err != nil {
		a.inUse.Add(-size)
		return nil, err
	}
	return buf, nil
}

// Release returns buf's bytes to the budget. Sort results are owned by the
// caller, who may release them here once done.
func (a *LimitedAllocator[K]) Release(buf []K) {
	a.inUse.Add(-bufferBytes[K](len(buf)))
	a.next.Release(buf)
}

// InUse reports the bytes currently handed out and not yet released.
func (a *LimitedAllocator[K]) InUse() int64 { return a.inUse.Load() }

// Limit reports the byte budget.
func (a *LimitedAllocator[K]) Limit() int64 { return a.limit }

func bufferBytes[K constraints.Unsigned](n int) int64 {
	return int64(n) * int64(keyWidth[K]()/8)
}
