package bench

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/ChristianF88/lsdsort/config"
	"github.com/ChristianF88/lsdsort/logger"
	"github.com/ChristianF88/lsdsort/radix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.BenchConfig {
	cfg := config.DefaultBenchConfig()
	cfg.Sizes = []int{0, 1, 17, 5000}
	cfg.Trials = 2
	cfg.Seed = 42
	return cfg
}

func TestRun_AllSizesPass(t *testing.T) {
	ctx := logger.NewContextWithLogger(context.Background(), zaptest.NewLogger(t))

	for _, width := range []int{8, 16, 32, 64} {
		cfg := testConfig()
		cfg.Width = width
		cfg.ValueBits = width

		report, err := Run(ctx, cfg)
		require.NoError(t, err, "width %d", width)
		require.Len(t, report.Results, len(cfg.Sizes))

		for i, res := range report.Results {
			assert.Equal(t, cfg.Sizes[i], res.Size, "results keep size order")
			assert.True(t, res.Passed, "width %d size %d", width, res.Size)
			assert.True(t, res.Deterministic)
			assert.Equal(t, 2, res.Trials)
			assert.Len(t, res.Checksum, 16)
		}
		assert.True(t, report.Passed())
		assert.Equal(t, width, report.Settings.Width)
	}
}

func TestRun_ChecksumMatchesDirectSort(t *testing.T) {
	cfg := testConfig()
	cfg.Sizes = []int{1000}
	cfg.Width = 32
	cfg.ValueBits = 32

	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	// Size index 0 uses the base seed.
	input := Generate[uint32](rand.New(rand.NewSource(cfg.Seed)), 1000, 32)
	slices.Sort(input)
	assert.Equal(t, Checksum(input), report.Results[0].Checksum)
}

func TestRun_SameSeedSameChecksums(t *testing.T) {
	cfg := testConfig()
	first, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	for i := range first.Results {
		assert.Equal(t, first.Results[i].Checksum, second.Results[i].Checksum)
	}
}

func TestRun_ParallelWorkers(t *testing.T) {
	cfg := testConfig()
	cfg.Sizes = []int{3000, 10, 3000, 0, 700, 1}
	cfg.Workers = 4

	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, report.Results, len(cfg.Sizes))
	for i, res := range report.Results {
		assert.Equal(t, cfg.Sizes[i], res.Size)
	}
	// Same size, different seed offsets.
	assert.NotEqual(t, report.Results[0].Checksum, report.Results[2].Checksum)
}

func TestRun_MemLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Sizes = []int{10, 100000}
	cfg.Width = 64
	cfg.MemLimit = 1 << 10

	report, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, radix.ErrAllocation))
	assert.Len(t, multierr.Errors(err), cfg.Trials)

	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].Passed, "small size fits the budget")
	assert.False(t, report.Results[1].Passed)
	assert.False(t, report.Passed())
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, "allocation", report.Errors[0].Type)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, testConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, report)
	require.NotEmpty(t, report.Warnings)
	assert.Equal(t, "cancelled", report.Warnings[0].Type)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Width = 12

	report, err := Run(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestRun_LogsToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(&buf, logger.NewConfig())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Sizes = []int{10}
	_, err = Run(logger.NewContextWithLogger(context.Background(), log), cfg)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Starting benchmark")
	assert.Contains(t, buf.String(), "Size done")
}

func TestGenerate_MasksValueBits(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	keys := Generate[uint64](rng, 10000, 32)
	for _, k := range keys {
		if k>>32 != 0 {
			t.Fatalf("key %#x has bits above 32", k)
		}
	}

	full := Generate[uint64](rand.New(rand.NewSource(1)), 10000, 64)
	var high bool
	for _, k := range full {
		if k>>32 != 0 {
			high = true
			break
		}
	}
	assert.True(t, high, "full width keys should use the high bits")
}

func TestFirstMismatch(t *testing.T) {
	idx, ok := FirstMismatch([]uint32{1, 2, 3}, []uint32{1, 2, 3})
	assert.True(t, ok)
	assert.Equal(t, -1, idx)

	idx, ok = FirstMismatch([]uint32{1, 5, 3}, []uint32{1, 2, 3})
	assert.False(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = FirstMismatch([]uint32{1, 2}, []uint32{1, 2, 3})
	assert.False(t, ok)
	assert.Equal(t, 2, idx)
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, "ef46db3751d8e999", Checksum([]uint64{}))
	assert.Equal(t, Checksum([]uint8{1, 2, 3}), Checksum([]uint64{1, 2, 3}), "checksum is width independent")
	assert.NotEqual(t, Checksum([]uint64{1, 2, 3}), Checksum([]uint64{3, 2, 1}))
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "allocation", errorType(radix.ErrAllocation))
	assert.Equal(t, "mismatch", errorType(ErrMismatch))
	assert.Equal(t, "trial", errorType(errors.New("boom")))
}
