package queued

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultName            = "queued"
	DefaultIdleBackoff     = time.Millisecond
	DefaultHistoryCapacity = 100
	DefaultBlockingWorkers = 4
)

// Config holds configuration options for Scheduler.
// Handler fields are optional; nil handlers are replaced with defaults.
type Config struct {
	// Name labels the scheduler in logs, metrics and history.
	Name string `toml:"name"`

	// IdleBackoff caps how long the run loop waits after a burst in which no
	// task completed and nothing new was enqueued.
	IdleBackoff time.Duration `toml:"idle_backoff"`

	// HistoryCapacity is the number of finished tasks kept for RecentTasks.
	HistoryCapacity int `toml:"history_capacity"`

	// BlockingWorkers bounds how many Offload calls run at the same time.
	BlockingWorkers int64 `toml:"blocking_workers"`

	// PanicHandler is called when a task panics. Defaults to LoggingPanicHandler.
	PanicHandler PanicHandler `toml:"-"`

	// Metrics records execution metrics. Defaults to NilMetrics.
	Metrics Metrics `toml:"-"`

	// Logger receives lifecycle and failure logs. Defaults to DefaultLogger.
	Logger Logger `toml:"-"`
}

// DefaultConfig returns a config with default values and handlers.
func DefaultConfig() *Config {
	logger := NewDefaultLogger()
	return &Config{
		Name:            DefaultName,
		IdleBackoff:     DefaultIdleBackoff,
		HistoryCapacity: DefaultHistoryCapacity,
		BlockingWorkers: DefaultBlockingWorkers,
		PanicHandler:    &LoggingPanicHandler{Logger: logger},
		Metrics:         &NilMetrics{},
		Logger:          logger,
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Unknown keys are an
// error so that typos do not pass silently.
//
//	name = "ui"
//	idle_backoff = "2ms"
//	history_capacity = 50
//	blocking_workers = 8
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load scheduler config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load scheduler config %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}

// normalize fills zero values with defaults.
func (c *Config) normalize() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.IdleBackoff <= 0 {
		c.IdleBackoff = DefaultIdleBackoff
	}
	if c.HistoryCapacity < 1 {
		c.HistoryCapacity = DefaultHistoryCapacity
	}
	if c.BlockingWorkers < 1 {
		c.BlockingWorkers = DefaultBlockingWorkers
	}
	if c.Logger == nil {
		c.Logger = NewDefaultLogger()
	}
	if c.PanicHandler == nil {
		c.PanicHandler = &LoggingPanicHandler{Logger: c.Logger}
	}
	if c.Metrics == nil {
		c.Metrics = &NilMetrics{}
	}
}

// Option customizes a Config.
type Option func(*Config)

func WithName(name string) Option { return func(c *Config) { c.Name = name } }

func WithIdleBackoff(d time.Duration) Option { return func(c *Config) { c.IdleBackoff = d } }

func WithHistoryCapacity(n int) Option { return func(c *Config) { c.HistoryCapacity = n } }

func WithBlockingWorkers(n int64) Option { return func(c *Config) { c.BlockingWorkers = n } }

func WithPanicHandler(h PanicHandler) Option { return func(c *Config) { c.PanicHandler = h } }

func WithMetrics(m Metrics) Option { return func(c *Config) { c.Metrics = m } }

// WithLogger sets the logger. A LoggingPanicHandler installed by default is
// pointed at the new logger as well.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if _, ok := c.PanicHandler.(*LoggingPanicHandler); ok {
			c.PanicHandler = &LoggingPanicHandler{Logger: l}
		}
		c.Logger = l
	}
}

// WithConfig replaces every setting with the values of cfg.
func WithConfig(cfg *Config) Option {
	return func(c *Config) {
		if cfg != nil {
			*c = *cfg
		}
	}
}
