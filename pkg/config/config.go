// Package config provides defaults and configuration loading for duckbq.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults for the query command.
const (
	DefaultDataDir = "./data"
	DefaultDataset = "taxi"
	DefaultDialect = DialectBigQuery
	DefaultMaxRows = 20
)

// Supported input dialects.
const (
	DialectBigQuery = "bigquery"
	DialectDuckDB   = "duckdb"
)

// Defaults for the ingest command.
const (
	DefaultIngestBaseURL = "https://us-central1-dlthub-analytics.cloudfunctions.net/data_engineering_zoomcamp_api"
	DefaultIngestTable   = "taxi_rides"
	DefaultIngestDB      = "taxi_pipeline.duckdb"
)

// envPrefix namespaces environment variables, e.g. DUCKBQ_DATASET.
const envPrefix = "DUCKBQ_"

// Config holds the merged settings for one invocation.
type Config struct {
	DataDir   string `koanf:"data_dir"`
	Dataset   string `koanf:"dataset"`
	Dialect   string `koanf:"dialect"`
	Query     string `koanf:"query"`
	QueryFile string `koanf:"query_file"`
	ShowSQL   bool   `koanf:"show_sql"`
	MaxRows   int    `koanf:"max_rows"`

	IngestBaseURL string `koanf:"base_url"`
	IngestTable   string `koanf:"table"`
	IngestDB      string `koanf:"db"`
}

// Load merges defaults, DUCKBQ_* environment variables, and explicitly
// set CLI flags, in increasing priority.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_dir": DefaultDataDir,
		"dataset":  DefaultDataset,
		"dialect":  DefaultDialect,
		"max_rows": DefaultMaxRows,
		"show_sql": false,
		"base_url": DefaultIngestBaseURL,
		"table":    DefaultIngestTable,
		"db":       DefaultIngestDB,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Dialect != DialectBigQuery && cfg.Dialect != DialectDuckDB {
		return nil, fmt.Errorf("unsupported dialect %q (expected %s or %s)", cfg.Dialect, DialectBigQuery, DialectDuckDB)
	}

	return &cfg, nil
}
