package bench

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/ChristianF88/lsdsort/config"
	"github.com/ChristianF88/lsdsort/logger"
	"github.com/ChristianF88/lsdsort/output"
	"github.com/ChristianF88/lsdsort/pools"
	"github.com/ChristianF88/lsdsort/radix"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// measure runs every trial for one size. All trials sort the same generated
// input, so their checksums must agree.
func measure[K constraints.Unsigned](ctx context.Context, cfg *config.BenchConfig, seed int64, size int) (output.SizeResult, error) {
	log := logger.FromContext(ctx).With(zap.Int("size", size))

	res := output.SizeResult{
		Size:          size,
		Passed:        true,
		Deterministic: true,
	}

	alloc := allocatorFor[K](cfg.MemLimit)
	sorter := radix.New(radix.WithAllocator(alloc))
	pool := pools.NewKeySlicePool[K](size, 0)

	input := Generate[K](rand.New(rand.NewSource(seed)), size, cfg.ValueBits)

	var errs error
	for trial := 0; trial < cfg.Trials; trial++ {
		if ctx.Err() != nil {
			break
		}
		res.Trials++

		reference := pool.Clone(input)

		radixStart := time.Now()
		sorted, err := sorter.Sort(input)
		radixTime := time.Since(radixStart)
		if err != nil {
			pool.Put(reference)
			res.Passed = false
			errs = multierr.Append(errs, fmt.Errorf("size %d trial %d: %w", size, trial, err))
			log.Warn("Radix sort failed", zap.Int("trial", trial), zap.Error(err))
			continue
		}

		referenceStart := time.Now()
		slices.Sort(reference)
		referenceTime := time.Since(referenceStart)

		if idx, ok := FirstMismatch(sorted, reference); !ok {
			res.Passed = false
			errs = multierr.Append(errs, fmt.Errorf("%w: size %d trial %d index %d: radix=%d reference=%d",
				ErrMismatch, size, trial, idx, sorted[idx], reference[idx]))
		}

		sum := Checksum(sorted)
		if res.Checksum == "" {
			res.Checksum = sum
		} else if sum != res.Checksum {
			res.Deterministic = false
		}

		if res.RadixNS == 0 || radixTime.Nanoseconds() < res.RadixNS {
			res.RadixNS = radixTime.Nanoseconds()
		}
		if res.ReferenceNS == 0 || referenceTime.Nanoseconds() < res.ReferenceNS {
			res.ReferenceNS = referenceTime.Nanoseconds()
		}

		alloc.Release(sorted)
		pool.Put(reference)

		log.Debug("Trial done",
			zap.Int("trial", trial),
			zap.Duration("radix", radixTime),
			zap.Duration("reference", referenceTime))
	}

	if res.RadixNS > 0 {
		res.Ratio = float64(res.ReferenceNS) / float64(res.RadixNS)
	}

	log.Info("Size done",
		zap.Bool("passed", res.Passed),
		zap.Duration("radix", time.Duration(res.RadixNS)),
		zap.Duration("reference", time.Duration(res.ReferenceNS)),
		zap.Float64("ratio", res.Ratio))

	return res, errs
}

func allocatorFor[K constraints.Unsigned](memLimit uint64) radix.Allocator[K] {
	if memLimit == 0 {
		return radix.HeapAllocator[K]{}
	}
	return radix.NewLimitedAllocator[K](int64(memLimit))
}

// Generate returns n pseudo-random keys with only the low valueBits bits set.
func Generate[K constraints.Unsigned](rng *rand.Rand, n, valueBits int) []K {
	var mask uint64 = 1<<uint(valueBits) - 1
	if valueBits >= 64 {
		mask = ^uint64(0)
	}
	keys := make([]K, n)
	for i := range keys {
		keys[i] = K(rng.Uint64() & mask)
	}
	return keys
}

// FirstMismatch compares got and want element by element. It returns the
// first differing index and false, or -1 and true when they are equal.
func FirstMismatch[K constraints.Unsigned](got, want []K) (int, bool) {
	if len(got) != len(want) {
		return min(len(got), len(want)), false
	}
	for i := range got {
		if got[i] != want[i] {
			return i, false
		}
	}
	return -1, true
}

// Checksum is an xxhash over the keys as little-endian 64-bit words, in hex.
func Checksum[K constraints.Unsigned](keys []K) string {
	d := xxhash.New()
	var buf [8]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		d.Write(buf[:])
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
