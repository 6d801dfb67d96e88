package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"agentsim/internal/logger"
	"agentsim/internal/strategy"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Netlist   string `yaml:"netlist"`
	Seed      int64  `yaml:"seed"`
	OutputDir string `yaml:"output_dir"`
	// Optional sqlite database that keeps every run's log rows.
	Store string `yaml:"store"`

	// Optional: load the strategy from a separate YAML (e.g. examples/strategies/*.yaml).
	// Fields set in Strategy override the file.
	StrategyFile string         `yaml:"strategy_file"`
	Strategy     StrategyConfig `yaml:"strategy"`

	Logging logger.Config  `yaml:"logging"`
	Params  map[string]any `yaml:"params"`
}

// StrategyConfig is the YAML/JSON form of strategy.Strategy.
// Durations are Go durations ("1h", "30m") or whole days ("1d").
type StrategyConfig struct {
	TimeStep    string         `yaml:"time_step" json:"time_step,omitempty"`
	MaxTicks    *int           `yaml:"max_ticks" json:"max_ticks,omitempty"`
	MaxTime     *MaxTimeConfig `yaml:"max_time" json:"max_time,omitempty"`
	LogInterval string         `yaml:"log_interval" json:"log_interval,omitempty"`
}

// Ticks returns a pointer to n, for setting StrategyConfig.MaxTicks in code.
func Ticks(n int) *int { return &n }

type MaxTimeConfig struct {
	Value float64 `yaml:"value" json:"value"`
	Unit  string  `yaml:"unit" json:"unit"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.StrategyFile != "" {
		strategyPath := c.StrategyFile
		if !filepath.IsAbs(strategyPath) {
			// Relative to the config file when that exists, else relative to cwd.
			cand := filepath.Join(filepath.Dir(path), strategyPath)
			if _, err := os.Stat(cand); err == nil {
				strategyPath = cand
			}
		}
		loaded, err := loadStrategyFile(strategyPath)
		if err != nil {
			return nil, err
		}
		c.Strategy = MergeStrategy(loaded, c.Strategy)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Netlist == "" {
		return errors.New("netlist is required")
	}
	if err := c.Strategy.check(); err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}
	return nil
}

// check validates only the fields that are set; unset fields fall back to defaults later.
func (s StrategyConfig) check() error {
	if s.TimeStep != "" {
		if _, err := ParseDuration(s.TimeStep); err != nil {
			return err
		}
	}
	if s.LogInterval != "" {
		if _, err := ParseDuration(s.LogInterval); err != nil {
			return err
		}
	}
	if s.MaxTime != nil {
		if _, err := strategy.ParseUnit(s.MaxTime.Unit); err != nil {
			return err
		}
	}
	if s.MaxTicks != nil && *s.MaxTicks < 1 {
		return fmt.Errorf("%w: max_ticks must be >= 1, got %d", strategy.ErrConfiguration, *s.MaxTicks)
	}
	return nil
}

// ToStrategy builds the run strategy. Errors wrap strategy.ErrConfiguration.
func (s StrategyConfig) ToStrategy() (strategy.Strategy, error) {
	var opts []strategy.Option
	if s.TimeStep != "" {
		d, err := ParseDuration(s.TimeStep)
		if err != nil {
			return strategy.Strategy{}, err
		}
		opts = append(opts, strategy.WithTimeStep(d))
	}
	if s.LogInterval != "" {
		d, err := ParseDuration(s.LogInterval)
		if err != nil {
			return strategy.Strategy{}, err
		}
		opts = append(opts, strategy.WithLogInterval(d))
	}
	switch {
	case s.MaxTime != nil:
		unit, err := strategy.ParseUnit(s.MaxTime.Unit)
		if err != nil {
			return strategy.Strategy{}, err
		}
		opts = append(opts, strategy.WithMaxTime(s.MaxTime.Value, unit))
	case s.MaxTicks != nil:
		// Passed through as given; New rejects anything below one tick.
		opts = append(opts, strategy.WithMaxTicks(*s.MaxTicks))
	}
	return strategy.New(opts...)
}

// ParseDuration accepts Go durations, "<n>d" for whole days, or a bare number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad duration %q", strategy.ErrConfiguration, s)
		}
		return time.Duration(n * strategy.SecondsPerDay * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad duration %q", strategy.ErrConfiguration, s)
	}
	return d, nil
}

type strategyFileWrapper struct {
	Strategy StrategyConfig `yaml:"strategy"`
}

func loadStrategyFile(path string) (StrategyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return StrategyConfig{}, err
	}
	var w strategyFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return StrategyConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return w.Strategy, nil
}

// MergeStrategy overlays the set fields of override onto base.
// Used for strategy files, netlist defaults, and CLI/API overrides.
func MergeStrategy(base, override StrategyConfig) StrategyConfig {
	out := base
	if override.TimeStep != "" {
		out.TimeStep = override.TimeStep
	}
	if override.LogInterval != "" {
		out.LogInterval = override.LogInterval
	}
	// max_ticks and max_time are alternatives; whichever the override sets wins.
	if override.MaxTime != nil {
		mt := *override.MaxTime
		out.MaxTime = &mt
		out.MaxTicks = nil
	} else if override.MaxTicks != nil {
		n := *override.MaxTicks
		out.MaxTicks = &n
		out.MaxTime = nil
	}
	return out
}
