// Package config loads engine settings from an optional YAML file,
// environment variables, and built-in defaults, in that order of
// increasing precedence for env over file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/keyfire/keyfire/pkg/engine"
)

// Safety is the global execution envelope. Per-macro overrides can
// tighten or (for timeout) extend it; absent overrides these apply.
type Safety struct {
	MaxRepeat      int `mapstructure:"max_repeat"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Engine holds the worker tuning knobs.
type Engine struct {
	PollIntervalMs    int `mapstructure:"poll_interval_ms"`
	InlineThresholdMs int `mapstructure:"inline_threshold_ms"`
	StopWaitSeconds   int `mapstructure:"stop_wait_seconds"`
}

// Config is the full application configuration.
type Config struct {
	Safety Safety `mapstructure:"safety"`
	Engine Engine `mapstructure:"engine"`
}

// Load reads configuration from path (optional; "" skips the file) and
// the environment. Env vars use the KEYFIRE_ prefix with underscores,
// e.g. KEYFIRE_SAFETY_MAX_REPEAT=500.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("safety.max_repeat", engine.DefaultMaxRepeat)
	v.SetDefault("safety.timeout_seconds", int(engine.DefaultTimeout/time.Second))
	v.SetDefault("engine.poll_interval_ms", 100)
	v.SetDefault("engine.inline_threshold_ms", 50)
	v.SetDefault("engine.stop_wait_seconds", 2)

	v.SetEnvPrefix("KEYFIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Limits converts the safety section to engine limits.
func (c *Config) Limits() engine.Limits {
	return engine.Limits{
		MaxRepeat: c.Safety.MaxRepeat,
		Timeout:   time.Duration(c.Safety.TimeoutSeconds) * time.Second,
	}
}

// Options builds engine options from the configuration.
func (c *Config) Options() engine.Options {
	return engine.Options{
		Limits:          c.Limits(),
		PollInterval:    time.Duration(c.Engine.PollIntervalMs) * time.Millisecond,
		InlineThreshold: time.Duration(c.Engine.InlineThresholdMs) * time.Millisecond,
		StopWait:        time.Duration(c.Engine.StopWaitSeconds) * time.Second,
	}
}
