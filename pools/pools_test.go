package pools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySlicePool_GetLength(t *testing.T) {
	p := NewKeySlicePool[uint64](16, 0)

	s := p.Get(10)
	assert.Len(t, s, 10)
	assert.GreaterOrEqual(t, cap(s), 10)

	big := p.Get(1000)
	assert.Len(t, big, 1000)
}

func TestKeySlicePool_PutAndReuse(t *testing.T) {
	p := NewKeySlicePool[uint32](0, 4096)

	s := p.Get(100)
	for i := range s {
		s[i] = uint32(i)
	}
	p.Put(s)

	// sync.Pool may drop entries at any time, so only the length is guaranteed.
	again := p.Get(50)
	assert.Len(t, again, 50)
}

func TestKeySlicePool_PutOversized(t *testing.T) {
	p := NewKeySlicePool[uint16](0, 8)
	p.Put(make([]uint16, 0, 9))
	p.Put(nil)

	s := p.Get(4)
	assert.Len(t, s, 4)
}

func TestKeySlicePool_Clone(t *testing.T) {
	p := NewKeySlicePool[uint64](8, 0)
	src := []uint64{3, 1, 2}

	dst := p.Clone(src)
	assert.Equal(t, src, dst)

	dst[0] = 99
	assert.Equal(t, uint64(3), src[0], "clone must not alias source")

	p.Put(dst)
	p.Reset()
	assert.Len(t, p.Get(2), 2)
}
