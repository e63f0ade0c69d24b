package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hupe1980/nnsearch/codec"
	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/resource"
)

// EnvPrefix prefixes every environment variable, e.g. NNSEARCH_DATASET.
const EnvPrefix = "NNSEARCH"

// Query modes.
const (
	ModeNearest = "nearest"
	ModeKNN     = "knn"
	ModeRange   = "range"
)

// Config validation errors
var (
	ErrMissingDataset     = errors.New("dataset cannot be empty")
	ErrInvalidMode        = errors.New("mode must be nearest, knn, or range")
	ErrInvalidK           = errors.New("k must be positive")
	ErrInvalidRadius      = errors.New("radius must be positive")
	ErrInvalidMetric      = errors.New("metric must be l2, sql2, cosine, or manhattan")
	ErrInvalidParallelism = errors.New("parallelism cannot be negative")
	ErrInvalidLimits      = errors.New("resource limits cannot be negative")
	ErrInvalidCodec       = errors.New("codec must be json or go-json")
	ErrInvalidLogFormat   = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidLogLevel    = errors.New("log_level must be debug, info, warn, or error")
)

// Config is the CLI configuration. Environment variables (after loading an
// optional .env file) provide defaults that command-line flags override.
type Config struct {
	Dataset string `envconfig:"DATASET"`
	Queries string `envconfig:"QUERIES"`
	Output  string `envconfig:"OUTPUT" default:"-"`

	Mode              string  `envconfig:"MODE" default:"knn"`
	K                 int     `envconfig:"K" default:"10"`
	Radius            float64 `envconfig:"RADIUS" default:"1"`
	Metric            string  `envconfig:"METRIC" default:"l2"`
	IdenticalExcluded bool    `envconfig:"IDENTICAL_EXCLUDED" default:"true"`

	Parallelism          int     `envconfig:"PARALLELISM" default:"0"`
	MaxConcurrentQueries int64   `envconfig:"MAX_CONCURRENT_QUERIES" default:"0"`
	QueriesPerSecond     float64 `envconfig:"QPS" default:"0"`
	ReadBytesPerSec      int64   `envconfig:"READ_BYTES_PER_SEC" default:"0"`

	Codec       string `envconfig:"CODEC" default:"go-json"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`
	MetricsFile string `envconfig:"METRICS_FILE"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Output:            "-",
		Mode:              ModeKNN,
		K:                 10,
		Radius:            1,
		Metric:            "l2",
		IdenticalExcluded: true,
		Codec:             "go-json",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadConfig builds the configuration from the environment and args.
// The .env file named by NNSEARCH_ENV_FILE (default ".env") is loaded first
// if it exists; variables already set in the environment win.
func LoadConfig(args []string) (Config, error) {
	envFile := os.Getenv(EnvPrefix + "_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, err
	}

	fset := flag.NewFlagSet("nnsearch", flag.ContinueOnError)
	fset.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "Dataset file (.csv, .tsv, .jsonl, .ndjson, .arrows, .parquet, .db; streams optionally .gz/.zst/.lz4)")
	fset.StringVar(&cfg.Queries, "queries", cfg.Queries, "Query file; empty queries every dataset vector against the rest")
	fset.StringVar(&cfg.Output, "output", cfg.Output, "Result file, - for stdout")
	fset.StringVar(&cfg.Mode, "mode", cfg.Mode, "Query mode: nearest, knn, or range")
	fset.IntVar(&cfg.K, "k", cfg.K, "Number of neighbors for knn")
	fset.Float64Var(&cfg.Radius, "radius", cfg.Radius, "Inclusive radius for range")
	fset.StringVar(&cfg.Metric, "metric", cfg.Metric, "Distance metric: l2, sql2, cosine, or manhattan")
	fset.BoolVar(&cfg.IdenticalExcluded, "identical-excluded", cfg.IdenticalExcluded, "Skip the query itself in self queries")
	fset.IntVar(&cfg.Parallelism, "parallelism", cfg.Parallelism, "Concurrent queries, 0 for GOMAXPROCS")
	fset.Int64Var(&cfg.MaxConcurrentQueries, "max-concurrent-queries", cfg.MaxConcurrentQueries, "Admission limit, 0 for unlimited")
	fset.Float64Var(&cfg.QueriesPerSecond, "qps", cfg.QueriesPerSecond, "Query rate limit, 0 for unlimited")
	fset.Int64Var(&cfg.ReadBytesPerSec, "read-bytes-per-sec", cfg.ReadBytesPerSec, "Dataset read limit, 0 for unlimited")
	fset.StringVar(&cfg.Codec, "codec", cfg.Codec, "JSON codec: json or go-json")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, or error")
	fset.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or text")
	fset.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this textfile")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if cfg.Dataset == "" {
		return ErrMissingDataset
	}
	switch cfg.Mode {
	case ModeNearest:
	case ModeKNN:
		if cfg.K <= 0 {
			return ErrInvalidK
		}
	case ModeRange:
		if !(cfg.Radius > 0) {
			return ErrInvalidRadius
		}
	default:
		return ErrInvalidMode
	}
	if _, err := distance.ParseMetric(cfg.Metric); err != nil {
		return ErrInvalidMetric
	}
	if cfg.Parallelism < 0 {
		return ErrInvalidParallelism
	}
	if cfg.MaxConcurrentQueries < 0 || cfg.QueriesPerSecond < 0 || cfg.ReadBytesPerSec < 0 {
		return ErrInvalidLimits
	}
	if _, ok := codec.ByName(cfg.Codec); !ok {
		return ErrInvalidCodec
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return ErrInvalidLogLevel
	}
	return nil
}

// ResourceConfig returns the admission limits.
func (c *Config) ResourceConfig() resource.Config {
	return resource.Config{
		MaxConcurrentQueries: c.MaxConcurrentQueries,
		QueriesPerSecond:     c.QueriesPerSecond,
		ReadBytesPerSec:      c.ReadBytesPerSec,
	}
}
