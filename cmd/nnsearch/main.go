// Command nnsearch runs exact nearest-neighbor queries over a vector file.
//
// Every dataset vector is queried against the rest unless -queries names a
// separate query file. Results are written as JSON lines:
//
//	{"query":0,"neighbors":[{"index":3,"id":"b","distance":0.5}]}
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/nnsearch"
	"github.com/hupe1980/nnsearch/codec"
	"github.com/hupe1980/nnsearch/dataset"
	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/metrics"
	"github.com/hupe1980/nnsearch/neighbor"
	"github.com/hupe1980/nnsearch/resource"
)

// Result is one output line.
type Result struct {
	Query     int           `json:"query"`
	QueryID   string        `json:"query_id,omitempty"`
	Neighbors []NeighborOut `json:"neighbors"`
}

// NeighborOut is a neighbor as written to the output.
type NeighborOut struct {
	Index    int     `json:"index"`
	ID       string  `json:"id,omitempty"`
	Distance float64 `json:"distance"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "nnsearch:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(&cfg, stderr)
	c, _ := codec.ByName(cfg.Codec)
	metric, _ := distance.ParseMetric(cfg.Metric)
	dist, err := distance.Provider(metric)
	if err != nil {
		return err
	}

	rc := resource.NewController(cfg.ResourceConfig())
	load := func(o *dataset.Options) {
		o.Codec = c
		o.Controller = rc
	}

	start := time.Now()
	ds, err := dataset.Load(ctx, cfg.Dataset, load)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.InfoContext(ctx, "Dataset loaded",
		"path", cfg.Dataset,
		"vectors", ds.Len(),
		"dim", ds.Dim(),
		"elapsed", time.Since(start),
	)

	var queries *dataset.Dataset
	if cfg.Queries != "" {
		queries, err = dataset.Load(ctx, cfg.Queries, load)
		if err != nil {
			return fmt.Errorf("load queries: %w", err)
		}
		if queries.Dim() != ds.Dim() {
			return fmt.Errorf("query dimension %d does not match dataset dimension %d", queries.Dim(), ds.Dim())
		}
	}

	reg := prometheus.NewRegistry()
	opts := []nnsearch.Option{
		nnsearch.WithLogger(logger),
		nnsearch.WithMetricName(metric.String()),
		nnsearch.WithIdenticalExcluded(cfg.IdenticalExcluded),
		nnsearch.WithBatchParallelism(cfg.Parallelism),
		nnsearch.WithResourceController(rc),
	}
	if cfg.MetricsFile != "" {
		opts = append(opts, nnsearch.WithMetricsCollector(metrics.NewPrometheusCollector(reg)))
	}

	s, err := nnsearch.New(ds.Vectors, dist, opts...)
	if err != nil {
		return err
	}

	start = time.Now()
	results, err := execute(ctx, s, &cfg, queries)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Queries completed",
		"searcher", s.String(),
		"mode", cfg.Mode,
		"queries", len(results),
		"elapsed", time.Since(start),
	)

	if err := writeResults(stdout, &cfg, c, ds, queries, results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func newLogger(cfg *Config, w io.Writer) *nnsearch.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.LogLevel))

	hopts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return nnsearch.NewLogger(slog.NewJSONHandler(w, hopts))
	}
	return nnsearch.NewLogger(slog.NewTextHandler(w, hopts))
}

// execute runs one query per query vector, or per dataset slot when queries
// is nil. Nearest results are returned as single-element lists.
func execute(ctx context.Context, s *nnsearch.Searcher[[]float32], cfg *Config, queries *dataset.Dataset) ([][]neighbor.Neighbor[[]float32], error) {
	if queries == nil {
		slots := make([]int, s.Len())
		for i := range slots {
			slots[i] = i
		}

		switch cfg.Mode {
		case ModeNearest:
			nn, err := s.BatchNearestTo(ctx, slots)
			return singletons(nn), err
		case ModeKNN:
			return s.BatchKNNTo(ctx, slots, cfg.K)
		default:
			return s.BatchRangeTo(ctx, slots, cfg.Radius)
		}
	}

	switch cfg.Mode {
	case ModeNearest:
		nn, err := s.BatchNearest(ctx, queries.Vectors)
		return singletons(nn), err
	case ModeKNN:
		return s.BatchKNN(ctx, queries.Vectors, cfg.K)
	default:
		return s.BatchRange(ctx, queries.Vectors, cfg.Radius)
	}
}

func singletons(nn []neighbor.Neighbor[[]float32]) [][]neighbor.Neighbor[[]float32] {
	if nn == nil {
		return nil
	}
	out := make([][]neighbor.Neighbor[[]float32], len(nn))
	for i := range nn {
		out[i] = nn[i : i+1]
	}
	return out
}

func writeResults(stdout io.Writer, cfg *Config, c codec.Codec, ds, queries *dataset.Dataset, results [][]neighbor.Neighbor[[]float32]) (err error) {
	w := stdout
	if cfg.Output != "" && cfg.Output != "-" {
		var f *os.File
		f, err = os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	lw := codec.NewLineWriter(w, c)
	for i, ns := range results {
		r := Result{Query: i, Neighbors: make([]NeighborOut, 0, len(ns))}
		if queries != nil {
			r.QueryID = queries.ID(i)
		} else {
			r.QueryID = ds.ID(i)
		}

		for _, n := range ns {
			// Sentinels carry +Inf, which JSON cannot encode.
			if n.IsSentinel() {
				continue
			}
			r.Neighbors = append(r.Neighbors, NeighborOut{
				Index:    n.Index,
				ID:       ds.ID(n.Index),
				Distance: n.Distance,
			})
		}

		if err := lw.Write(r); err != nil {
			return err
		}
	}
	return lw.Flush()
}
