package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ChristianF88/lsdsort/bench"
	"github.com/ChristianF88/lsdsort/config"
	"github.com/ChristianF88/lsdsort/keyfile"
	"github.com/ChristianF88/lsdsort/logger"
	"github.com/ChristianF88/lsdsort/output"
	"github.com/ChristianF88/lsdsort/radix"
	"github.com/ChristianF88/lsdsort/tui"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var errBenchFailed = errors.New("benchmark FAILED")

// BenchFromConfig runs the benchmark and writes the report to the app's
// writer. A report that did not pass is returned as an error so the process
// exits non-zero.
func BenchFromConfig(c *cli.Context, cfg *config.Config, useTUI bool) error {
	log, err := logger.New(c.App.ErrWriter, *cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := logger.NewContextWithLogger(c.Context, log)

	if useTUI {
		return executeTUI(ctx, cfg)
	}
	return executeBench(ctx, cfg, c.App.Writer)
}

// executeBench handles the non-interactive run
func executeBench(ctx context.Context, cfg *config.Config, w io.Writer) error {
	log := logger.FromContext(ctx)

	report, err := bench.Run(ctx, cfg.Bench)
	if report == nil {
		return err
	}
	if err != nil {
		log.Error("Benchmark reported failures", zap.Error(err))
	}

	if cfg.Output.PlotPath != "" {
		plotStart := time.Now()
		if err := output.PlotTimings(report, cfg.Output.PlotPath); err != nil {
			report.AddWarning("plot", err.Error(), 1)
		} else {
			report.AddWarning("info", fmt.Sprintf("Timing chart generated in %v at %s", time.Since(plotStart), cfg.Output.PlotPath), 0)
		}
	}

	if err := outputResult(w, report, cfg.Output); err != nil {
		return err
	}

	if !report.Passed() {
		return errBenchFailed
	}
	return nil
}

// executeTUI runs the benchmark in the background and shows the report in
// the TUI once it is done
func executeTUI(ctx context.Context, cfg *config.Config) error {
	app := tui.NewApp()

	go func() {
		report, err := bench.Run(ctx, cfg.Bench)
		if report == nil {
			app.ShowError(fmt.Sprintf("Benchmark failed: %v", err))
			return
		}
		app.SetReport(report)
	}()

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func outputResult(w io.Writer, report *output.Report, outputConfig *config.OutputConfig) error {
	if outputConfig.Plain {
		report.WritePlain(w)
		return nil
	}

	var data []byte
	var err error
	if outputConfig.Compact {
		data, err = report.ToCompactJSON()
	} else {
		data, err = report.ToJSON()
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// SortKeys reads keys from inPath (stdin when empty), sorts them and writes
// them to outPath (stdout when empty).
func SortKeys(c *cli.Context, inPath, outPath string, logCfg logger.Config) error {
	log, err := logger.New(c.App.ErrWriter, logCfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	var keys []uint64
	if inPath == "" {
		keys, err = keyfile.Read(c.App.Reader)
	} else {
		keys, err = keyfile.ReadFile(inPath)
	}
	if err != nil {
		return fmt.Errorf("reading keys: %w", err)
	}

	start := time.Now()
	sorted, err := radix.Sort(keys)
	if err != nil {
		return fmt.Errorf("sorting %d keys: %w", len(keys), err)
	}
	log.Info("Sorted keys", zap.Int("keys", len(sorted)), zap.Duration("elapsed", time.Since(start)))

	if outPath == "" {
		return keyfile.Write(c.App.Writer, sorted)
	}
	return keyfile.WriteFile(outPath, sorted)
}
