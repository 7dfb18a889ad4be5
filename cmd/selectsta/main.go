// Command selectsta picks a spatially even subset of stations by
// farthest-point sampling and writes it with the input's columns intact.
//
// Usage:
//
//	selectsta -in stations.csv -out stations_4_detection.csv -count 20 -seed 42
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/seismic-netprep/internal/adapter/csvtable"
	"github.com/couchcryptid/seismic-netprep/internal/config"
	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/couchcryptid/seismic-netprep/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("selectsta failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	in := flag.String("in", cfg.StationsIn, "station table to select from")
	out := flag.String("out", cfg.StationsOut, "output path for the selected stations")
	count := flag.Int("count", cfg.StationCount, "number of stations to select")
	seed := flag.Uint64("seed", cfg.SelectionSeed, "seed for the first selected station")
	flag.Parse()

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	defer metrics.Flush(cfg.MetricsTextfile, logger)

	table, err := csvtable.ReadFile(*in)
	if err != nil {
		metrics.RunErrors.WithLabelValues("load").Inc()
		return err
	}
	metrics.StationsLoaded.Add(float64(len(table.Stations)))

	selected, err := domain.Select(table.Stations, *count, domain.NewRand(*seed))
	if err != nil {
		metrics.RunErrors.WithLabelValues("select").Inc()
		return err
	}
	metrics.StationsSelected.Set(float64(len(selected)))

	if err := table.WriteFile(*out, selected); err != nil {
		metrics.RunErrors.WithLabelValues("write_stations").Inc()
		return err
	}
	logger.Info("stations selected",
		"loaded", len(table.Stations),
		"selected", len(selected),
		"codes", selected.Codes(),
		"out", *out,
	)
	return nil
}
