// Command copywf gathers the waveform files of the stations listed in a
// station table into one flat directory.
//
// Usage:
//
//	copywf -in stations_4_detection.csv -src /data/mseed_renamed -dst /data/detection_mseed
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/seismic-netprep/internal/adapter/csvtable"
	"github.com/couchcryptid/seismic-netprep/internal/adapter/waveform"
	"github.com/couchcryptid/seismic-netprep/internal/config"
	"github.com/couchcryptid/seismic-netprep/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("copywf failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	in := flag.String("in", cfg.StationsOut, "station table listing the stations to copy")
	src := flag.String("src", "", "root of the waveform archive, searched recursively")
	dst := flag.String("dst", "", "destination directory, created if missing")
	network := flag.String("net", waveform.DefaultNetwork, "network code prefixing the file names")
	flag.Parse()

	if *src == "" || *dst == "" {
		flag.Usage()
		return errors.New("-src and -dst are required")
	}

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

	copier := waveform.NewCopier(*network, logger, metrics)
	if _, err := copier.Copy(ctx, *src, *dst, table.Stations.Codes()); err != nil {
		metrics.RunErrors.WithLabelValues("copy").Inc()
		return err
	}
	return nil
}
