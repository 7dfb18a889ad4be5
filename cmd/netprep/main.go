// Command netprep prepares a dense node deployment for event detection: it
// selects a spatially even subset of stations, writes it as a station
// table, and derives the octree search volume that covers the subset.
//
// Settings come from the environment (see internal/config) and can be
// overridden with flags:
//
//	netprep -in stations.csv -out stations_4_detection.csv -count 20
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

	"github.com/couchcryptid/seismic-netprep/internal/adapter/csvtable"
	kafkaadapter "github.com/couchcryptid/seismic-netprep/internal/adapter/kafka"
	"github.com/couchcryptid/seismic-netprep/internal/adapter/volumejson"
	"github.com/couchcryptid/seismic-netprep/internal/config"
	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/couchcryptid/seismic-netprep/internal/observability"
	"github.com/couchcryptid/seismic-netprep/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		slog.Error("netprep failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flag.StringVar(&cfg.StationsIn, "in", cfg.StationsIn, "station table to select from")
	flag.StringVar(&cfg.StationsOut, "out", cfg.StationsOut, "output path for the selected station table")
	flag.StringVar(&cfg.VolumeConfigOut, "volume-out", cfg.VolumeConfigOut, "output path for the search volume JSON (- for stdout)")
	flag.IntVar(&cfg.StationCount, "count", cfg.StationCount, "number of stations to select")
	flag.Uint64Var(&cfg.SelectionSeed, "seed", cfg.SelectionSeed, "seed for the first selected station")
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

	clock := clockwork.NewRealClock()
	sinks := []pipeline.ConfigSink{volumejson.NewFileWriter(cfg.VolumeConfigOut, os.Stdout)}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, clock, logger)
		defer func() {
			if err := closeWithTimeout(writer, cfg.ShutdownTimeout); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
		logger.Info("kafka publication enabled", "topic", cfg.KafkaConfigTopic)
	}

	store := csvtable.NewStore(cfg.StationsIn, cfg.StationsOut)
	p := pipeline.New(store, store, sinks,
		domain.NewRand(cfg.SelectionSeed),
		pipeline.Options{StationCount: cfg.StationCount, Volume: cfg.VolumeOptions()},
		clock, logger, metrics,
	)

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("network prepared",
		"stations_out", cfg.StationsOut,
		"volume_out", cfg.VolumeConfigOut,
		"east_span", res.Config.EastBounds.Span(),
		"north_span", res.Config.NorthBounds.Span(),
	)
	return nil
}

func closeWithTimeout(c io.Closer, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- c.Close() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return errors.New("timed out flushing pending messages")
	}
}
