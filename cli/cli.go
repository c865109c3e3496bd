package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ChristianF88/lsdsort/config"
	"github.com/ChristianF88/lsdsort/logger"
	"github.com/ChristianF88/lsdsort/version"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with the benchmark flags)",
	}

	// Benchmark flags
	sizesFlag = &cli.StringFlag{
		Name:  "sizes",
		Usage: "Comma separated number of keys per run (e.g., '0,1,1000,100000')",
		Value: strconv.Itoa(config.DefaultSize),
	}
	trialsFlag = &cli.IntFlag{
		Name:  "trials",
		Usage: "Trials per size, the best time is reported",
		Value: config.DefaultTrials,
	}
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Random seed for key generation (0 picks a time based seed)",
	}
	widthFlag = &cli.IntFlag{
		Name:  "width",
		Usage: "Key width in bits: 8, 16, 32 or 64",
		Value: config.DefaultWidth,
	}
	valueBitsFlag = &cli.IntFlag{
		Name:  "valueBits",
		Usage: "Generated keys only use the low valueBits bits",
		Value: config.DefaultValueBits,
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "Number of sizes benchmarked concurrently",
		Value: 1,
	}
	memLimitFlag = &cli.StringFlag{
		Name:  "memLimit",
		Usage: "Byte budget for the sort buffers of a single sort (e.g., '64MB'); 0 means unlimited",
		Value: "0",
	}

	// Output flags
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the timing chart (e.g., '/path/to/timings.html'). If not provided, no chart will be generated.",
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}
	tuiFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Launch TUI (Terminal User Interface) mode",
		Value: false,
	}

	// Logging flags
	logLevelFlag = &cli.StringFlag{
		Name:  "logLevel",
		Usage: "Log level: debug, info, warn or error",
		Value: "info",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "logFormat",
		Usage: "Log encoding: console or json",
		Value: "console",
	}

	// Sort flags
	inFlag = &cli.StringFlag{
		Name:  "in",
		Usage: "File with one key per line (default stdin)",
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "File to write the sorted keys to (default stdout)",
	}
)

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	// Create a map for quick lookup of allowed flags
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	// Check all possible flags
	flagsToCheck := []string{
		"sizes", "trials", "seed", "width", "valueBits", "workers", "memLimit",
		"plotPath", "compact", "plain", "tui", "logLevel", "logFormat",
	}

	for _, flag := range flagsToCheck {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

func validatePlotPath(plotPath string) error {
	if plotPath != "" {
		plotDir := filepath.Dir(plotPath)
		if plotDir == "." {
			plotDir, _ = os.Getwd()
		}
		if _, err := os.Stat(plotDir); os.IsNotExist(err) {
			return fmt.Errorf("plot directory does not exist: %s", plotDir)
		}
	}
	return nil
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		size, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", field, err)
		}
		if size < 0 {
			return nil, fmt.Errorf("invalid size %q: must not be negative", field)
		}
		sizes = append(sizes, size)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("at least one size is required")
	}
	return sizes, nil
}

// Command handler functions to reduce deep nesting

// handleBenchCommand processes the bench command with proper separation of concerns
func handleBenchCommand(c *cli.Context) error {
	configPath := c.String("config")
	if configPath != "" {
		return handleBenchConfigMode(c, configPath)
	}
	return handleBenchFlagsMode(c)
}

// handleBenchConfigMode handles the bench command when using a config file
func handleBenchConfigMode(c *cli.Context, configPath string) error {
	// Validate only allowed flags in config mode
	if err := validateConfigModeFlags(c, []string{"tui", "compact", "plain"}); err != nil {
		return err
	}

	// Load and validate config
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := validatePlotPath(cfg.Output.PlotPath); err != nil {
		return err
	}

	// Command line output switches win over the file
	if c.Bool("compact") {
		cfg.Output.Compact = true
	}
	if c.Bool("plain") {
		cfg.Output.Plain = true
	}

	return BenchFromConfig(c, cfg, c.Bool("tui"))
}

// handleBenchFlagsMode handles the bench command when using CLI flags only
func handleBenchFlagsMode(c *cli.Context) error {
	cfg, err := createConfigFromCLI(c)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := validatePlotPath(cfg.Output.PlotPath); err != nil {
		return err
	}

	return BenchFromConfig(c, cfg, c.Bool("tui"))
}

// createConfigFromCLI builds the same config.Config a config file would produce
func createConfigFromCLI(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()

	sizes, err := parseSizes(c.String("sizes"))
	if err != nil {
		return nil, err
	}
	cfg.Bench.Sizes = sizes
	cfg.Bench.Trials = c.Int("trials")
	cfg.Bench.Seed = c.Int64("seed")
	cfg.Bench.Width = c.Int("width")
	cfg.Bench.ValueBits = c.Int("valueBits")
	cfg.Bench.Workers = c.Int("workers")

	memLimit, err := config.ParseMemLimit(c.String("memLimit"))
	if err != nil {
		return nil, err
	}
	cfg.Bench.MemLimit = memLimit
	cfg.Bench.MemLimitRaw = c.String("memLimit")

	cfg.Output.PlotPath = c.String("plotPath")
	cfg.Output.Compact = c.Bool("compact")
	cfg.Output.Plain = c.Bool("plain")

	logCfg, err := logConfigFromFlags(c)
	if err != nil {
		return nil, err
	}
	cfg.Log = &logCfg

	return cfg, nil
}

func logConfigFromFlags(c *cli.Context) (logger.Config, error) {
	logCfg := logger.NewConfig()
	level, err := zapcore.ParseLevel(c.String("logLevel"))
	if err != nil {
		return logCfg, fmt.Errorf("invalid logLevel: %w", err)
	}
	logCfg.Level = level
	logCfg.Format = c.String("logFormat")
	return logCfg, nil
}

// handleSortCommand sorts a key file
func handleSortCommand(c *cli.Context) error {
	logCfg, err := logConfigFromFlags(c)
	if err != nil {
		return err
	}
	return SortKeys(c, c.String("in"), c.String("out"), logCfg)
}

// NewApp builds the command line application.
func NewApp() *cli.App {
	return &cli.App{
		Name:     "lsdsort",
		Usage:    "Sort unsigned keys with an LSD radix sort and benchmark it against a comparison sort",
		Version:  version.Version,
		Compiled: parseDate(version.Date),
		Commands: []*cli.Command{
			{
				Name:  "bench",
				Usage: "Sort generated keys with radix and reference sorts, compare and time them",
				Flags: []cli.Flag{
					// Configuration
					configFlag,
					// Benchmark flags
					sizesFlag,
					trialsFlag,
					seedFlag,
					widthFlag,
					valueBitsFlag,
					workersFlag,
					memLimitFlag,
					// Output flags
					plotPathFlag,
					compactFlag,
					plainFlag,
					tuiFlag,
					// Logging
					logLevelFlag,
					logFormatFlag,
				},
				Action: handleBenchCommand,
			},
			{
				Name:  "sort",
				Usage: "Sort keys read from a file or stdin",
				Flags: []cli.Flag{
					inFlag,
					outFlag,
					logLevelFlag,
					logFormatFlag,
				},
				Action: handleSortCommand,
			},
		},
	}
}

var App = NewApp()
