package pools

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// DefaultMaxCap is the largest slice capacity a KeySlicePool keeps by default.
// Anything bigger is left to the garbage collector to prevent memory bloat.
const DefaultMaxCap = 1 << 24

// KeySlicePool recycles key slices between benchmark trials.
// Thread-safe; slices are stored as pointers to avoid an allocation per Put.
type KeySlicePool[K constraints.Unsigned] struct {
	pool   sync.Pool
	maxCap int
}

// NewKeySlicePool creates a pool whose fresh slices start with initialCap
// capacity. Slices with capacity above maxCap are not kept.
func NewKeySlicePool[K constraints.Unsigned](initialCap, maxCap int) *KeySlicePool[K] {
	if maxCap <= 0 {
		maxCap = DefaultMaxCap
	}
	p := &KeySlicePool[K]{maxCap: maxCap}
	p.pool.New = func() interface{} {
		slice := make([]K, 0, initialCap)
		return &slice
	}
	return p
}

// Get returns a slice of length n. Contents are whatever the previous user
// left; callers overwrite every element.
func (p *KeySlicePool[K]) Get(n int) []K {
	slicePtr := p.pool.Get().(*[]K)
	if cap(*slicePtr) < n {
		// Too small, drop it and allocate to size
		return make([]K, n)
	}
	return (*slicePtr)[:n]
}

// Put returns a slice to the pool
func (p *KeySlicePool[K]) Put(slice []K) {
	if cap(slice) == 0 || cap(slice) > p.maxCap {
		return
	}
	emptySlice := slice[:0]
	p.pool.Put(&emptySlice)
}

// Clone copies src into a pooled slice.
func (p *KeySlicePool[K]) Clone(src []K) []K {
	dst := p.Get(len(src))
	copy(dst, src)
	return dst
}

// Reset drops every pooled slice (useful for testing)
func (p *KeySlicePool[K]) Reset() {
	p.pool = sync.Pool{New: p.pool.New}
}
