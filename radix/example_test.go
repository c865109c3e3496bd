package radix_test

import (
	"errors"
	"fmt"

	"github.com/ChristianF88/lsdsort/radix"
)

func ExampleSort() {
	sorted, err := radix.Sort([]uint64{5, 3, 3, 0, 18446744073709551615})
	if err != nil {
		panic(err)
	}
	fmt.Println(sorted)
	// Output: [0 3 3 5 18446744073709551615]
}

func ExampleNewLimitedAllocator() {
	alloc := radix.NewLimitedAllocator[uint32](64)
	s := radix.New(radix.WithAllocator[uint32](alloc))

	_, err := s.Sort(make([]uint32, 100))
	fmt.Println(errors.Is(err, radix.ErrAllocation), alloc.InUse())
	// Output: true 0
}
