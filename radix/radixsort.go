// Package radix implements a least-significant-byte-first radix sort for
// fixed-width unsigned integer keys.
//
// Each key is split into bytes and the slice is bucketed by one byte per
// pass, starting from the least significant byte. Every pass is a stable
// counting sort, so after the last pass the keys are in ascending order.
// No comparisons are made.
package radix

import (
	"errors"
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// buckets is the number of distinct values a single byte can take.
const buckets = 256

// ErrAllocation is returned when a working buffer cannot be acquired.
// Sort never returns a partial result together with it.
var ErrAllocation = errors.New("radix: buffer allocation failed")

// Sorter sorts slices of K. The key width, and with it the number of passes,
// is fixed by K: a Sorter[uint32] makes at most 4 passes, a Sorter[uint64] 8.
//
// A Sorter holds no per-call state and may be used from several goroutines.
type Sorter[K constraints.Unsigned] struct {
	alloc Allocator[K]
	width int
}

// Option configures a Sorter.
type Option[K constraints.Unsigned] func(*Sorter[K])

// WithAllocator sets where the two working buffers come from. A nil
// allocator leaves the default heap allocator in place.
func WithAllocator[K constraints.Unsigned](a Allocator[K]) Option[K] {
	return func(s *Sorter[K]) {
		if a != nil {
			s.alloc = a
		}
	}
}

// New creates a Sorter for keys of type K.
func New[K constraints.Unsigned](opts ...Option[K]) *Sorter[K] {
	s := &Sorter[K]{
		alloc: HeapAllocator[K]{},
		width: keyWidth[K](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sort returns a new slice holding the keys of data in ascending order using
// a default Sorter.
func Sort[K constraints.Unsigned](data []K) ([]K, error) {
	return New[K]().Sort(data)
}

// Width returns the key width in bits.
func (s *Sorter[K]) Width() int { return s.width }

// Passes returns the number of byte positions a key has, which is the upper
// bound on bucketing passes per sort.
func (s *Sorter[K]) Passes() int { return s.width / 8 }

// Sort returns a newly allocated slice with the keys of data in ascending
// order. data is only read. An empty or nil data yields an empty, non-nil
// slice.
//
// If either working buffer cannot be acquired the call fails with an error
// wrapping ErrAllocation and any buffer already acquired is released.
func (s *Sorter[K]) Sort(data []K) ([]K, error) {
	out, _, err := s.sort(data)
	return out, err
}

// passStats records how many byte positions were bucketed and how many were
// skipped because every key fell into the same bucket.
type passStats struct {
	performed int
	skipped   int
}

func (s *Sorter[K]) sort(data []K) ([]K, passStats, error) {
	var stats passStats

	n := len(data)
	if n == 0 {
		return []K{}, stats, nil
	}

	rbuf, err := s.alloc.Alloc(n)
	if err != nil {
		return nil, stats, fmt.Errorf("read buffer for %d keys: %w", n, err)
	}
	wbuf, err := s.alloc.Alloc(n)
	if err != nil {
		s.alloc.Release(rbuf)
		return nil, stats, fmt.Errorf("write buffer for %d keys: %w", n, err)
	}

	// seen collects every bit set in any key. Once it has nothing left at or
	// above the current byte, all remaining bytes are zero for every key.
	var seen K
	for i, k := range data {
		rbuf[i] = k
		seen |= k
	}

	var counts [buckets]int
	for pos := 0; pos < s.Passes(); pos++ {
		shift := uint(pos) * 8
		if seen>>shift == 0 {
			break
		}

		countBytes(&counts, rbuf, shift)

		// A byte shared by every key cannot reorder anything.
		if counts[nthByte(rbuf[0], shift)] == n {
			stats.skipped++
			continue
		}

		prefixSum(&counts)
		scatter(&counts, rbuf, wbuf, shift)

		rbuf, wbuf = wbuf, rbuf
		stats.performed++
	}

	s.alloc.Release(wbuf)
	return rbuf, stats, nil
}

// nthByte extracts the byte of k that starts at bit shift.
func nthByte[K constraints.Unsigned](k K, shift uint) uint8 {
	return uint8((k >> shift) & 0xFF)
}

// countBytes resets counts and tallies the byte at shift for every key.
func countBytes[K constraints.Unsigned](counts *[buckets]int, keys []K, shift uint) {
	*counts = [buckets]int{}
	for _, k := range keys {
		counts[nthByte(k, shift)]++
	}
}

// prefixSum turns per-bucket counts into the exclusive end offset of each
// bucket.
func prefixSum(counts *[buckets]int) {
	for i := 1; i < buckets; i++ {
		counts[i] += counts[i-1]
	}
}

// scatter moves src into dst bucketed by the byte at shift. counts must hold
// bucket end offsets. Walking src backwards and filling each bucket from its
// end keeps keys with equal bytes in their src order.
func scatter[K constraints.Unsigned](counts *[buckets]int, src, dst []K, shift uint) {
	for i := len(src) - 1; i >= 0; i-- {
		c := nthByte(src[i], shift)
		counts[c]--
		dst[counts[c]] = src[i]
	}
}

// keyWidth returns the bit width of K.
func keyWidth[K constraints.Unsigned]() int {
	return bits.Len64(uint64(^K(0)))
}
