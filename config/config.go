package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ChristianF88/lsdsort/logger"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap/zapcore"
)

var (
	errNoSizes        = errors.New("at least one size is required")
	errNegativeSize   = errors.New("sizes must not be negative")
	errTrials         = errors.New("trials must be at least 1")
	errWorkers        = errors.New("workers must be at least 1")
	errWidth          = errors.New("width must be 8, 16, 32 or 64")
	errValueBits      = errors.New("valueBits must be between 1 and width")
	errInvalidMemSize = errors.New("invalid memLimit")
)

// Defaults: 100000 keys holding 32-bit values in 64-bit words.
const (
	DefaultSize      = 100000
	DefaultTrials    = 3
	DefaultWidth     = 64
	DefaultValueBits = 32
)

// BenchConfig describes one benchmark run
type BenchConfig struct {
	Sizes     []int  `toml:"sizes"`
	Trials    int    `toml:"trials"`
	Seed      int64  `toml:"seed"`
	Width     int    `toml:"width"`
	ValueBits int    `toml:"valueBits"`
	Workers   int    `toml:"workers"`
	MemLimit  uint64 `toml:"-"` // bytes, 0 means unlimited

	// Raw value for reporting
	MemLimitRaw string `toml:"memLimit"`
}

type OutputConfig struct {
	Compact  bool   `toml:"compact"`
	Plain    bool   `toml:"plain"`
	PlotPath string `toml:"plotPath"`
}

type Config struct {
	Bench  *BenchConfig   `toml:"bench"`
	Output *OutputConfig  `toml:"output"`
	Log    *logger.Config `toml:"log"`
}

// DefaultBenchConfig returns the settings used when nothing is configured.
func DefaultBenchConfig() *BenchConfig {
	return &BenchConfig{
		Sizes:     []int{DefaultSize},
		Trials:    DefaultTrials,
		Width:     DefaultWidth,
		ValueBits: DefaultValueBits,
		Workers:   1,
	}
}

// Default returns a complete configuration with all sections filled in.
func Default() *Config {
	logCfg := logger.NewConfig()
	return &Config{
		Bench:  DefaultBenchConfig(),
		Output: &OutputConfig{},
		Log:    &logCfg,
	}
}

func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]any
	if _, err := toml.Decode(string(configData), &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config := Default()

	for key, value := range rawConfig {
		section, ok := value.(map[string]any)
		if !ok {
			continue
		}
		switch key {
		case "bench":
			if err := parseBenchConfig(section, config.Bench); err != nil {
				return nil, fmt.Errorf("parsing bench config: %w", err)
			}
		case "output":
			parseOutputConfig(section, config.Output)
		case "log":
			if err := parseLogConfig(section, config.Log); err != nil {
				return nil, fmt.Errorf("parsing log config: %w", err)
			}
		}
	}

	return config, nil
}

func parseBenchConfig(m map[string]any, config *BenchConfig) error {
	if v, ok := m["sizes"].([]any); ok {
		config.Sizes = config.Sizes[:0]
		for _, item := range v {
			if i, ok := item.(int64); ok {
				config.Sizes = append(config.Sizes, int(i))
			}
		}
	}
	if v, ok := m["trials"].(int64); ok {
		config.Trials = int(v)
	}
	if v, ok := m["seed"].(int64); ok {
		config.Seed = v
	}
	if v, ok := m["width"].(int64); ok {
		config.Width = int(v)
	}
	if v, ok := m["valueBits"].(int64); ok {
		config.ValueBits = int(v)
	}
	if v, ok := m["workers"].(int64); ok {
		config.Workers = int(v)
	}
	switch v := m["memLimit"].(type) {
	case int64:
		if v < 0 {
			return fmt.Errorf("%w: %d", errInvalidMemSize, v)
		}
		config.MemLimit = uint64(v)
		config.MemLimitRaw = humanize.IBytes(config.MemLimit)
	case string:
		limit, err := ParseMemLimit(v)
		if err != nil {
			return err
		}
		config.MemLimit = limit
		config.MemLimitRaw = v
	}
	return nil
}

func parseOutputConfig(m map[string]any, config *OutputConfig) {
	if v, ok := m["compact"].(bool); ok {
		config.Compact = v
	}
	if v, ok := m["plain"].(bool); ok {
		config.Plain = v
	}
	if v, ok := m["plotPath"].(string); ok {
		config.PlotPath = v
	}
}

func parseLogConfig(m map[string]any, config *logger.Config) error {
	if v, ok := m["format"].(string); ok {
		config.Format = v
	}
	if v, ok := m["level"].(string); ok {
		level, err := zapcore.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", v, err)
		}
		config.Level = level
	}
	return nil
}

// ParseMemLimit parses a human readable byte size such as "64MB" or "1 GiB".
// Empty and "0" mean unlimited.
func ParseMemLimit(s string) (uint64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	limit, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", errInvalidMemSize, s, err)
	}
	return limit, nil
}

// Validate checks the benchmark settings for consistency.
func (b *BenchConfig) Validate() error {
	if len(b.Sizes) == 0 {
		return errNoSizes
	}
	for _, size := range b.Sizes {
		if size < 0 {
			return fmt.Errorf("%w: %d", errNegativeSize, size)
		}
	}
	if b.Trials < 1 {
		return fmt.Errorf("%w: %d", errTrials, b.Trials)
	}
	if b.Workers < 1 {
		return fmt.Errorf("%w: %d", errWorkers, b.Workers)
	}
	switch b.Width {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("%w: %d", errWidth, b.Width)
	}
	if b.ValueBits < 1 || b.ValueBits > b.Width {
		return fmt.Errorf("%w: %d (width %d)", errValueBits, b.ValueBits, b.Width)
	}
	return nil
}

// Validate checks every section that is present.
func (c *Config) Validate() error {
	if c.Bench == nil {
		return fmt.Errorf("bench configuration section is required")
	}
	if err := c.Bench.Validate(); err != nil {
		return fmt.Errorf("invalid bench configuration: %w", err)
	}
	return nil
}
