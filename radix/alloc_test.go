package radix

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingAllocator fails the allocation with index failAt (0-based) and
// records every buffer it hands out and gets back.
type failingAllocator struct {
	failAt   int
	calls    int
	live     int
	released int
}

func (a *failingAllocator) Alloc(n int) ([]uint64, error) {
	defer func() { a.calls++ }()
	if a.calls == a.failAt {
		return nil, ErrAllocation
	}
	a.live++
	return make([]uint64, n), nil
}

func (a *failingAllocator) Release([]uint64) {
	a.live--
	a.released++
}

func TestSort_AllocationFailure(t *testing.T) {
	tests := []struct {
		name         string
		failAt       int
		wantReleased int
	}{
		{name: "read buffer", failAt: 0, wantReleased: 0},
		{name: "write buffer", failAt: 1, wantReleased: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := &failingAllocator{failAt: tt.failAt}
			s := New(WithAllocator[uint64](alloc))

			out, err := s.Sort([]uint64{3, 2, 1})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrAllocation), "got %v", err)
			assert.Nil(t, out)
			assert.Equal(t, 0, alloc.live, "no buffer may stay outstanding")
			assert.Equal(t, tt.wantReleased, alloc.released)
		})
	}
}

func TestSort_ReleasesScratchOnSuccess(t *testing.T) {
	alloc := &failingAllocator{failAt: -1}
	s := New(WithAllocator[uint64](alloc))

	out, err := s.Sort([]uint64{3, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, out)
	assert.Equal(t, 2, alloc.calls)
	assert.Equal(t, 1, alloc.released)
	assert.Equal(t, 1, alloc.live, "only the result stays with the caller")
}

func TestLimitedAllocator_Budget(t *testing.T) {
	// Room for exactly one 100-key buffer.
	alloc := NewLimitedAllocator[uint64](800)
	s := New(WithAllocator[uint64](alloc))

	_, err := s.Sort(make([]uint64, 100))
	require.ErrorIs(t, err, ErrAllocation)
	assert.Zero(t, alloc.InUse(), "failed sort must not leak budget")

	alloc = NewLimitedAllocator[uint64](1600)
	s = New(WithAllocator[uint64](alloc))
	out, err := s.Sort([]uint64{5, 4, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(24), alloc.InUse(), "result is still held by the caller")

	alloc.Release(out)
	assert.Zero(t, alloc.InUse())
	assert.Equal(t, int64(1600), alloc.Limit())
}

func TestLimitedAllocator_Concurrent(t *testing.T) {
	alloc := NewLimitedAllocator[uint32](1 << 20)
	s := New(WithAllocator[uint32](alloc))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			data := make([]uint32, 1000)
			for i := range data {
				data[i] = uint32((i*7919 + g) % 1000)
			}
			out, err := s.Sort(data)
			if err != nil {
				t.Errorf("goroutine %d: %v", g, err)
				return
			}
			alloc.Release(out)
		}(g)
	}
	wg.Wait()
	assert.Zero(t, alloc.InUse())
}

func TestHeapAllocator_Overflow(t *testing.T) {
	_, err := HeapAllocator[uint64]{}.Alloc(math.MaxInt)
	require.ErrorIs(t, err, ErrAllocation)

	_, err = HeapAllocator[uint64]{}.Alloc(-1)
	require.ErrorIs(t, err, ErrAllocation)

	buf, err := HeapAllocator[uint16]{}.Alloc(10)
	require.NoError(t, err)
	assert.Len(t, buf, 10)
}

func TestLimitedAllocator_Overflow(t *testing.T) {
	alloc := NewLimitedAllocator[uint64](math.MaxInt64)
	_, err := alloc.Alloc(math.MaxInt)
	require.ErrorIs(t, err, ErrAllocation)
	assert.Zero(t, alloc.InUse())
}

func TestWithAllocator_NilKeepsDefault(t *testing.T) {
	s := New(WithAllocator[uint8](nil))
	out, err := s.Sort([]uint8{2, 1})
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2}, out)
}
