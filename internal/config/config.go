// Package config loads the conform configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers understood by the CLI.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the structure of conform.yaml.
type Config struct {
	LogLevel   string `yaml:"log_level" json:"log_level"`
	LogFormat  string `yaml:"log_format" json:"log_format"`
	AllowExtra bool   `yaml:"allow_extra" json:"allow_extra"`

	// SchemasDir holds definition files registered when a server starts.
	SchemasDir string `yaml:"schemas_dir" json:"schemas_dir"`

	Store StoreConfig `yaml:"store" json:"store"`
	HTTP  HTTPConfig  `yaml:"http" json:"http"`
	MCP   MCPConfig   `yaml:"mcp" json:"mcp"`
	AMQP  AMQPConfig  `yaml:"amqp" json:"amqp"`
}

// StoreConfig selects and configures the definition repository.
// A ReadOnly store rejects registrations and deletions through every surface.
type StoreConfig struct {
	Driver   string       `yaml:"driver" json:"driver"`
	Dir      string       `yaml:"dir" json:"dir"`
	ReadOnly bool         `yaml:"read_only" json:"read_only"`
	Redis    RedisConfig  `yaml:"redis" json:"redis"`
	SQLite   SQLiteConfig `yaml:"sqlite" json:"sqlite"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" json:"path"`
}

type HTTPConfig struct {
	Port    string `yaml:"port" json:"port"`
	Metrics bool   `yaml:"metrics" json:"metrics"`
}

type MCPConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	Port      int    `yaml:"port" json:"port"`
}

// AMQPConfig enables publishing of engine events to RabbitMQ when URL is set.
type AMQPConfig struct {
	URL      string `yaml:"url" json:"url"`
	Exchange string `yaml:"exchange" json:"exchange"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Store: StoreConfig{
			Driver: DriverMemory,
			Dir:    "schemas",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "conform:",
			},
			SQLite: SQLiteConfig{Path: "conform.db"},
		},
		HTTP: HTTPConfig{Port: "8080"},
		MCP:  MCPConfig{Transport: "stdio", Port: 8081},
		AMQP: AMQPConfig{Exchange: "conform.events"},
	}
}

// Load reads a YAML or JSON configuration file on top of Default.
// An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the values that have a closed set of options.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown mcp transport %q", c.MCP.Transport)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
