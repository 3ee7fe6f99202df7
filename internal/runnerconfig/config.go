// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package runnerconfig loads ambient adkflow process configuration: logging,
// observability, the Extension Registry's scan paths, execution cache
// sizing, and the session/checkpoint backend DSN. This is distinct from a
// project's manifest.json, which pkg/compiler/project loads per run.
package runnerconfig

import (
	"fmt"
	"time"
)

// LogConfig controls the process-wide slog setup (pkg/logger).
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
}

func (c *LogConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: invalid value %q", c.Level)
	}
	return nil
}

// TracingConfig is the process-wide default for projects that don't set
// their own manifest.json logging.tracing block (spec 6.1), and the source
// of truth the ADKFLOW_TRACING_ENABLED/ADKFLOW_TRACE_FILE env overrides
// (spec 6.4) are layered on top of.
type TracingConfig struct {
	Enabled        bool   `yaml:"enabled" json:"enabled"`
	File           string `yaml:"file" json:"file"`
	ClearBeforeRun bool   `yaml:"clear_before_run" json:"clear_before_run"`
}

func (c *TracingConfig) SetDefaults() {
	if c.File == "" {
		c.File = "logs/traces.jsonl"
	}
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":9464"
	}
}

// ExtensionsConfig controls the Extension Registry's filesystem watchers.
type ExtensionsConfig struct {
	GlobalPath   string        `yaml:"global_path" json:"global_path"`
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
}

func (c *ExtensionsConfig) SetDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
}

// CacheConfig controls the Graph Executor's custom-node result cache.
type CacheConfig struct {
	Dir  string `yaml:"dir" json:"dir"`
	Size int    `yaml:"size" json:"size"`
}

func (c *CacheConfig) SetDefaults() {
	if c.Size <= 0 {
		c.Size = 256
	}
}

func (c *CacheConfig) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("cache.size: must be >= 0, got %d", c.Size)
	}
	return nil
}

// SessionConfig names the backend that holds session_state and checkpoints
// across runs (spec section 5's "shared resources").
type SessionConfig struct {
	Driver string `yaml:"driver" json:"driver"` // memory | sqlite3 | postgres | mysql
	DSN    string `yaml:"dsn" json:"dsn"`
}

func (c *SessionConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "memory"
	}
}

func (c *SessionConfig) Validate() error {
	switch c.Driver {
	case "memory", "sqlite3", "postgres", "mysql":
	default:
		return fmt.Errorf("session.driver: unsupported driver %q", c.Driver)
	}
	if c.Driver != "memory" && c.DSN == "" {
		return fmt.Errorf("session.dsn: required for driver %q", c.Driver)
	}
	return nil
}

// Config is the root of the ambient runner configuration document.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Extensions ExtensionsConfig `yaml:"extensions"`
	Cache      CacheConfig      `yaml:"cache"`
	Session    SessionConfig    `yaml:"session"`
}

// Default returns a Config with every section's defaults applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

func (c *Config) SetDefaults() {
	c.Log.SetDefaults()
	c.Tracing.SetDefaults()
	c.Metrics.SetDefaults()
	c.Extensions.SetDefaults()
	c.Cache.SetDefaults()
	c.Session.SetDefaults()
}

func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	return nil
}
