// Package bench times the radix sort against a comparison sort on generated
// keys and checks that both agree element by element.
package bench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ChristianF88/lsdsort/config"
	"github.com/ChristianF88/lsdsort/logger"
	"github.com/ChristianF88/lsdsort/output"
	"github.com/ChristianF88/lsdsort/radix"
	"github.com/alphadose/haxmap"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrMismatch is reported when the radix result differs from the reference.
var ErrMismatch = errors.New("radix result differs from reference sort")

// Run executes the benchmark described by cfg. Sizes are spread over
// cfg.Workers goroutines; each size runs its trials sequentially.
//
// The report is returned whenever cfg is valid, also alongside an error. The
// error combines every failed trial and a context cancellation, if any.
func Run(ctx context.Context, cfg *config.BenchConfig) (*output.Report, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	report := output.NewReport("bench", start)
	report.Settings = output.Settings{
		Width:         cfg.Width,
		ValueBits:     cfg.ValueBits,
		Trials:        cfg.Trials,
		Workers:       cfg.Workers,
		Seed:          seed,
		MemLimitBytes: cfg.MemLimit,
	}

	log.Info("Starting benchmark",
		zap.Ints("sizes", cfg.Sizes),
		zap.Int("width", cfg.Width),
		zap.Int("trials", cfg.Trials),
		zap.Int64("seed", seed))

	// Keyed by position in cfg.Sizes so repeated sizes stay distinct
	results := haxmap.New[int, output.SizeResult](uintptr(len(cfg.Sizes)))

	var (
		errsMu sync.Mutex
		errs   error
	)

	workChan := make(chan int, len(cfg.Sizes))

	numWorkers := cfg.Workers
	if len(cfg.Sizes) < numWorkers {
		numWorkers = len(cfg.Sizes)
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range workChan {
				res, err := runSize(ctx, cfg, seed+int64(idx), cfg.Sizes[idx])
				results.Set(idx, res)
				if err == nil {
					continue
				}

				for _, e := range multierr.Errors(err) {
					report.AddError(errorType(e), e.Error(), 1)
				}
				errsMu.Lock()
				errs = multierr.Append(errs, err)
				errsMu.Unlock()
			}
		}()
	}

	for idx := range cfg.Sizes {
		if ctx.Err() != nil {
			break
		}
		workChan <- idx
	}
	close(workChan)

	wg.Wait()

	for idx := range cfg.Sizes {
		if res, ok := results.Get(idx); ok {
			report.Results = append(report.Results, res)
		}
	}

	if err := ctx.Err(); err != nil {
		report.AddWarning("cancelled", fmt.Sprintf("benchmark stopped after %d of %d sizes", len(report.Results), len(cfg.Sizes)), 0)
		errs = multierr.Append(errs, err)
	}

	report.UpdateDuration(start)
	log.Info("Benchmark finished",
		zap.Bool("passed", report.Passed()),
		zap.Duration("elapsed", time.Since(start)))

	return report, errs
}

// runSize picks the key type matching the configured width.
func runSize(ctx context.Context, cfg *config.BenchConfig, seed int64, size int) (output.SizeResult, error) {
	switch cfg.Width {
	case 8:
		return measure[uint8](ctx, cfg, seed, size)
	case 16:
		return measure[uint16](ctx, cfg, seed, size)
	case 32:
		return measure[uint32](ctx, cfg, seed, size)
	default:
		return measure[uint64](ctx, cfg, seed, size)
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, radix.ErrAllocation):
		return "allocation"
	case errors.Is(err, ErrMismatch):
		return "mismatch"
	default:
		return "trial"
	}
}
