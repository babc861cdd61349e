// Package config loads the devctl YAML configuration.
package config

import (
	"os"
	"time"

	"github.com/nanoncore/nano-devctl/drivers/cli"
	"github.com/nanoncore/nano-devctl/drivers/snmp"
	"github.com/nanoncore/nano-devctl/types"
	"gopkg.in/yaml.v3"
)

// Lock backends.
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

type Config struct {
	SNMP    SNMP    `yaml:"snmp"`
	CLI     CLI     `yaml:"cli"`
	Scan    Scan    `yaml:"scan"`
	Lock    Lock    `yaml:"lock"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`

	// Notify lists the recipients of lifecycle notifications
	Notify []string `yaml:"notify,omitempty"`
}

type SNMP struct {
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
	Version string        `yaml:"version"`
}

type CLI struct {
	Timeout   time.Duration `yaml:"timeout"`
	Transport string        `yaml:"transport"`
}

type Scan struct {
	ChunkSize int `yaml:"chunk_size"`
}

type Lock struct {
	Backend   string        `yaml:"backend"`
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redis_addr,omitempty"`
	RedisDB   int           `yaml:"redis_db,omitempty"`
	Prefix    string        `yaml:"prefix,omitempty"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SNMP: SNMP{Timeout: snmp.DefaultTimeout, Retries: snmp.DefaultRetries, Version: "2c"},
		CLI:  CLI{Timeout: cli.DefaultTimeout, Transport: cli.TransportTelnet},
		Scan: Scan{ChunkSize: types.DefaultChunkSize},
		Lock: Lock{Backend: LockMemory, TTL: 120 * time.Second, RedisAddr: "127.0.0.1:6379", Prefix: "devctl:lock:"},
		Log:  Log{Level: "info", Format: "text"},
	}
}

// Load overlays the file at path on Default and validates the result. An
// empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, types.Wrap(types.KindConfiguration, err, "config: read %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, types.Wrap(types.KindConfiguration, err, "config: parse %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects non-positive durations and unknown backends.
func (c *Config) Validate() error {
	switch {
	case c.SNMP.Timeout <= 0:
		return types.Errorf(types.KindConfiguration, "config: snmp.timeout must be positive")
	case c.SNMP.Retries < 0:
		return types.Errorf(types.KindConfiguration, "config: snmp.retries must not be negative")
	case c.CLI.Timeout <= 0:
		return types.Errorf(types.KindConfiguration, "config: cli.timeout must be positive")
	case c.Scan.ChunkSize <= 0:
		return types.Errorf(types.KindConfiguration, "config: scan.chunk_size must be positive")
	case c.Lock.TTL <= 0:
		return types.Errorf(types.KindConfiguration, "config: lock.ttl must be positive")
	}
	switch c.SNMP.Version {
	case "1", "2c":
	default:
		return types.Errorf(types.KindConfiguration, "config: unknown snmp.version %q", c.SNMP.Version)
	}
	switch c.CLI.Transport {
	case cli.TransportTelnet, cli.TransportSSH:
	default:
		return types.Errorf(types.KindConfiguration, "config: unknown cli.transport %q", c.CLI.Transport)
	}
	switch c.Lock.Backend {
	case LockMemory:
	case LockRedis:
		if c.Lock.RedisAddr == "" {
			return types.Errorf(types.KindConfiguration, "config: lock.redis_addr is required for the redis backend")
		}
	default:
		return types.Errorf(types.KindConfiguration, "config: unknown lock.backend %q", c.Lock.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return types.Errorf(types.KindConfiguration, "config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// SNMPConfig returns the session defaults of the SNMP transport.
func (c *Config) SNMPConfig() snmp.Config {
	return snmp.Config{Timeout: c.SNMP.Timeout, Retries: c.SNMP.Retries, Version: c.SNMP.Version}
}

// CLIConfig returns the session defaults of the CLI transport.
func (c *Config) CLIConfig() cli.Config {
	return cli.Config{Timeout: c.CLI.Timeout, Transport: c.CLI.Transport}
}
