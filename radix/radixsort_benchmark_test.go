package radix

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func BenchmarkRadixVsStdSort(b *testing.B) {
	sizes := []int{1000, 10000, 100000, 1000000}

	for _, size := range sizes {
		rng := rand.New(rand.NewSource(42))
		original := randomKeys[uint64](rng, size, 32)

		b.Run(fmt.Sprintf("RadixSort_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Sort(original); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(fmt.Sprintf("StdSort_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				data := slices.Clone(original)
				slices.Sort(data)
			}
		})
	}
}

func BenchmarkRadixFullWidth(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	original := randomKeys[uint64](rng, 100000, 64)
	s := New[uint64]()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Sort(original); err != nil {
			b.Fatal(err)
		}
	}
}
