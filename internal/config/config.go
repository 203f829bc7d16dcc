// Package config loads the patchbay configuration from file and
// environment using Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"patchbay/internal/records"
)

// Config keys as they appear in patchbay.yaml.
const (
	cfgKeyDriver        = "driver"
	cfgKeySQLiteRecords = "sqlite.records"
	cfgKeySQLiteGraph   = "sqlite.graph"
	cfgKeyPostgresDSN   = "postgres.dsn"
)

// Defaults for a zero-configuration local run.
const (
	defaultDriver        = records.DriverSQLite
	defaultSQLiteRecords = "patchbay-records.db"
	defaultSQLiteGraph   = "patchbay-graph.db"
)

// Config holds the resolved runtime configuration.
type Config struct {
	// Driver selects the record-store backend, sqlite or postgres. The
	// graph store is always SQLite-backed and local.
	Driver string

	// SQLiteRecords and SQLiteGraph are database file paths used with the
	// sqlite driver.
	SQLiteRecords string
	SQLiteGraph   string

	// PostgresDSN is the connection string used with the postgres driver.
	PostgresDSN string
}

// RecordDSN returns the record-store connection string for the selected
// driver.
func (c *Config) RecordDSN() string {
	if c.Driver == records.DriverPostgres {
		return c.PostgresDSN
	}
	return c.SQLiteRecords
}

// Load reads configuration with precedence environment > file > defaults.
// Environment variables use the PATCHBAY_ prefix with underscores, e.g.
// PATCHBAY_POSTGRES_DSN. When path is empty, patchbay.yaml is searched in
// the working directory and a missing file is not an error; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDriver, defaultDriver)
	v.SetDefault(cfgKeySQLiteRecords, defaultSQLiteRecords)
	v.SetDefault(cfgKeySQLiteGraph, defaultSQLiteGraph)

	v.SetEnvPrefix("PATCHBAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("patchbay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Driver:        v.GetString(cfgKeyDriver),
		SQLiteRecords: v.GetString(cfgKeySQLiteRecords),
		SQLiteGraph:   v.GetString(cfgKeySQLiteGraph),
		PostgresDSN:   v.GetString(cfgKeyPostgresDSN),
	}

	switch cfg.Driver {
	case records.DriverSQLite, records.DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	if cfg.Driver == records.DriverPostgres && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres driver requires postgres.dsn")
	}
	return cfg, nil
}
