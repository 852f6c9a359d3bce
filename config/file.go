package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"pgdial/internal/errors"
)

// fileConfig describes the TOML configuration file.  Durations are in
// whole seconds, matching the environment variables and CLI flags.
//
//	host = "db.example.com"
//	port = 5432
//	connect-timeout = 10
//
//	[keepalives]
//	idle = 30
//	interval = 10
//	count = 3
type fileConfig struct {
	Host           string         `toml:"host"`
	HostAddr       string         `toml:"hostaddr"`
	Port           int            `toml:"port"`
	ConnectTimeout int            `toml:"connect-timeout"`
	Retries        int            `toml:"retries"`
	Verbose        int            `toml:"verbose"`
	Format         string         `toml:"format"`
	MetricsFile    string         `toml:"metrics-file"`
	Keepalives     keepaliveTable `toml:"keepalives"`
}

// keepaliveTable describes the [keepalives] block.
type keepaliveTable struct {
	Idle     int `toml:"idle"`
	Interval int `toml:"interval"`
	Count    int `toml:"count"`
}

// LoadFile overlays the TOML file at path onto cfg.  Only keys present
// with non-zero values override; unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return &errors.ConfigError{
			Field:   "config",
			Value:   path,
			Message: fmt.Sprintf("unknown key %q", undecoded[0].String()),
		}
	}

	if fc.Host != "" {
		cfg.Host = fc.Host
	}
	if fc.HostAddr != "" {
		cfg.HostAddr = fc.HostAddr
	}
	if fc.Port > 0 {
		cfg.Port = fc.Port
	}
	if fc.ConnectTimeout > 0 {
		cfg.ConnectTimeout = secondsDuration(fc.ConnectTimeout)
	}
	if fc.Keepalives.Idle > 0 {
		cfg.KeepalivesIdle = secondsDuration(fc.Keepalives.Idle)
	}
	if fc.Keepalives.Interval > 0 {
		cfg.KeepalivesInterval = secondsDuration(fc.Keepalives.Interval)
	}
	if fc.Keepalives.Count > 0 {
		cfg.KeepalivesCount = fc.Keepalives.Count
	}
	if fc.Retries > 0 {
		cfg.Retries = fc.Retries
	}
	if fc.Verbose > 0 {
		cfg.Verbose = fc.Verbose
	}
	if fc.Format != "" {
		cfg.Format = fc.Format
	}
	if fc.MetricsFile != "" {
		cfg.MetricsFile = fc.MetricsFile
	}
	return nil
}
