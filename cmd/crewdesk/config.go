// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package main

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// serveConfig holds configuration for the serve command.
type serveConfig struct {
	httpAddr    string
	metricsAddr string
	logFormat   string
	databaseURL string
}

// Default values for serve command flags.
const (
	defaultHTTPAddr    = ":8080"
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultLogFormat   = "json"
)

// Validate checks that the configuration is valid.
func (cfg *serveConfig) Validate() error {
	if cfg.httpAddr == "" {
		return fmt.Errorf("http-addr is required")
	}
	if cfg.logFormat != "json" && cfg.logFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", cfg.logFormat)
	}
	if cfg.databaseURL == "" {
		return fmt.Errorf("database URL is required (set --database-url or DATABASE_URL)")
	}
	return nil
}

// loadServeConfig layers configuration sources into cfg: YAML config file
// first (when --config is set), then command-line flags on top. The
// DATABASE_URL environment variable fills in the database URL when neither
// source provides one.
func loadServeConfig(flags *pflag.FlagSet, path string, cfg *serveConfig) error {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return oops.Code("CONFIG_INVALID").With("config_file", path).Wrap(err)
		}
	}

	// Flags override file values. Defaults only apply when the file did not
	// set the key, which is what posflag's changed-check gives us via k.
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load flags").Wrap(err)
	}

	cfg.httpAddr = k.String("http-addr")
	cfg.metricsAddr = k.String("metrics-addr")
	cfg.logFormat = k.String("log-format")
	cfg.databaseURL = k.String("database-url")

	if cfg.databaseURL == "" {
		cfg.databaseURL = os.Getenv("DATABASE_URL")
	}

	return nil
}

// databaseURLFromEnv returns the database URL for commands that do not go
// through the full config layering (migrate, status, seed).
func databaseURLFromEnv() (string, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}
	return databaseURL, nil
}
