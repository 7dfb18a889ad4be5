// Command volcfg derives the octree search volume for a station table and
// writes it as JSON.
//
// Usage:
//
//	volcfg -in stations_4_detection.csv -out search_volume.json
//	volcfg -in stations_4_detection.csv -out - -buffer 1000
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/seismic-netprep/internal/adapter/csvtable"
	"github.com/couchcryptid/seismic-netprep/internal/adapter/volumejson"
	"github.com/couchcryptid/seismic-netprep/internal/config"
	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/couchcryptid/seismic-netprep/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("volcfg failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	in := flag.String("in", cfg.StationsOut, "station table covered by the volume")
	out := flag.String("out", cfg.VolumeConfigOut, "output path for the volume JSON (empty or - for stdout)")
	flag.Float64Var(&cfg.GridUnit, "grid", cfg.GridUnit, "root node size in metres")
	flag.Float64Var(&cfg.DepthMax, "depth", cfg.DepthMax, "maximum search depth in metres")
	flag.Float64Var(&cfg.Buffer, "buffer", cfg.Buffer, "padding around the station extents in metres")
	flag.IntVar(&cfg.OctreeLevels, "levels", cfg.OctreeLevels, "octree level count")
	flag.Parse()

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	defer metrics.Flush(cfg.MetricsTextfile, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := csvtable.ReadFile(*in)
	if err != nil {
		metrics.RunErrors.WithLabelValues("load").Inc()
		return err
	}
	metrics.StationsLoaded.Add(float64(len(table.Stations)))

	vol, err := domain.Configure(table.Stations, cfg.VolumeOptions())
	if err != nil {
		metrics.RunErrors.WithLabelValues("configure").Inc()
		return err
	}
	metrics.VolumeSpan.WithLabelValues("east").Set(vol.EastBounds.Span())
	metrics.VolumeSpan.WithLabelValues("north").Set(vol.NorthBounds.Span())
	metrics.VolumeSpan.WithLabelValues("depth").Set(vol.DepthBounds.Span())

	sink := volumejson.NewFileWriter(*out, os.Stdout)
	if err := sink.WriteConfig(ctx, vol); err != nil {
		metrics.RunErrors.WithLabelValues("write_config").Inc()
		return err
	}
	metrics.ConfigsPublished.Inc()

	logger.Info("search volume configured",
		"stations", len(table.Stations),
		"lat", vol.Location.Lat,
		"lon", vol.Location.Lon,
		"east_bounds", vol.EastBounds,
		"north_bounds", vol.NorthBounds,
		"sink", sink.Name(),
	)
	return nil
}
