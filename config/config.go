package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rustyeddy/fxscan/logger"
	"github.com/rustyeddy/fxscan/market"
	"gopkg.in/yaml.v3"
)

// Config is the full accounts.yaml contents: scanner-wide settings plus the
// per-account scan definitions. A config that fails Validate is fatal at
// startup; the scanner never runs with an invalid account set.
type Config struct {
	Log      logger.Config            `yaml:"log"`
	Ledger   LedgerConfig             `yaml:"ledger"`
	Journal  JournalConfig            `yaml:"journal"`
	Metrics  MetricsConfig            `yaml:"metrics"`
	Accounts map[string]AccountConfig `yaml:"accounts"`
}

type LedgerConfig struct {
	Type string `yaml:"type"` // memory|badger
	Path string `yaml:"path"` // badger directory
}

type JournalConfig struct {
	Path string `yaml:"path"` // sqlite database file; empty disables journaling
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // e.g. ":9090"
}

// AccountConfig describes one account's strategy, instruments and limits.
type AccountConfig struct {
	Strategy    string         `yaml:"strategy"`
	Instruments []string       `yaml:"instruments"`
	Risk        RiskConfig     `yaml:"risk"`
	Schedule    ScheduleConfig `yaml:"schedule"`
	Params      ParamsConfig   `yaml:"params"`
}

type RiskConfig struct {
	Fraction       float64 `yaml:"fraction"`         // (0, 1]
	FallbackUnits  int     `yaml:"fallback_units"`   // used on degenerate stop distance
	MaxPositionPct float64 `yaml:"max_position_pct"` // 0 disables the cap
	MinConfidence  float64 `yaml:"min_confidence"`   // 0 executes every signal
	MaxOpenTrades  int     `yaml:"max_open_trades"`  // 0 disables the check
}

type ScheduleConfig struct {
	Interval        Duration `yaml:"interval"`
	ErrorBackoff    Duration `yaml:"error_backoff"`
	MaxTradesPerDay int      `yaml:"max_trades_per_day"` // 0 = unlimited
	DedupByDay      bool     `yaml:"dedup_by_day"`
}

// Duration parses "5m"/"30s" style values from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// ParamsConfig holds the strategy tuning knobs; which fields matter depends
// on the strategy variant.
type ParamsConfig struct {
	Level       float64 `yaml:"level"`
	Direction   string  `yaml:"direction"`
	Window      int     `yaml:"window"`
	BreakoutPct float64 `yaml:"breakout_pct"`
	MinMovePct  float64 `yaml:"min_move_pct"`
	StopPips    float64 `yaml:"stop_pips"`
	RR          float64 `yaml:"rr"`
}

// LoadFromFile reads and validates an accounts.yaml.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks scanner-wide settings and every account definition.
func (c *Config) Validate() error {
	switch c.Ledger.Type {
	case "", "memory":
	case "badger":
		if c.Ledger.Path == "" {
			return fmt.Errorf("ledger.path is required for the badger ledger")
		}
	default:
		return fmt.Errorf("ledger.type must be 'memory' or 'badger', got %q", c.Ledger.Type)
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}

	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}

	for id, acct := range c.Accounts {
		if err := acct.validate(); err != nil {
			return fmt.Errorf("account %s: %w", id, err)
		}
	}
	return nil
}

func (a AccountConfig) validate() error {
	if a.Strategy == "" {
		return fmt.Errorf("strategy is required")
	}
	if len(a.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	for _, in := range a.Instruments {
		if !market.Known(in) {
			return fmt.Errorf("unknown instrument: %s", in)
		}
	}
	if a.Risk.Fraction <= 0 || a.Risk.Fraction > 1 {
		return fmt.Errorf("risk.fraction must be in (0, 1], got %v", a.Risk.Fraction)
	}
	if a.Risk.FallbackUnits < 0 {
		return fmt.Errorf("risk.fallback_units must not be negative")
	}
	if a.Risk.MaxPositionPct < 0 || a.Risk.MaxPositionPct > 1 {
		return fmt.Errorf("risk.max_position_pct must be in [0, 1], got %v", a.Risk.MaxPositionPct)
	}
	if a.Risk.MinConfidence < 0 || a.Risk.MinConfidence > 1 {
		return fmt.Errorf("risk.min_confidence must be in [0, 1], got %v", a.Risk.MinConfidence)
	}
	if a.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive")
	}
	if a.Schedule.ErrorBackoff < 0 {
		return fmt.Errorf("schedule.error_backoff must not be negative")
	}
	if a.Schedule.MaxTradesPerDay < 0 {
		return fmt.Errorf("schedule.max_trades_per_day must not be negative")
	}
	return nil
}

// Default returns the scanner-wide defaults; accounts must come from the file.
func Default() *Config {
	return &Config{
		Log: logger.Config{
			Level:  "info",
			Output: "console",
		},
		Ledger: LedgerConfig{Type: "memory"},
	}
}
