// Command filterxml reduces a StationXML inventory to the stations listed
// in a station table and rescales their elevations. Nothing is written
// when none of the listed stations occur in the inventory.
//
// Usage:
//
//	filterxml -in stations_4_detection.csv -xml nodes.xml -out stations_4_detection.xml
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/seismic-netprep/internal/adapter/csvtable"
	"github.com/couchcryptid/seismic-netprep/internal/adapter/stationxml"
	"github.com/couchcryptid/seismic-netprep/internal/config"
	"github.com/couchcryptid/seismic-netprep/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("filterxml failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	in := flag.String("in", cfg.StationsOut, "station table listing the stations to keep")
	xmlIn := flag.String("xml", "", "StationXML inventory to filter")
	out := flag.String("out", "stations_4_detection.xml", "output path for the filtered inventory")
	scale := flag.Float64("scale", stationxml.DefaultElevationScale, "factor applied to station and channel elevations")
	flag.Parse()

	if *xmlIn == "" {
		flag.Usage()
		return errors.New("-xml is required")
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	defer metrics.Flush(cfg.MetricsTextfile, logger)

	table, err := csvtable.ReadFile(*in)
	if err != nil {
		metrics.RunErrors.WithLabelValues("load").Inc()
		return err
	}
	metrics.StationsLoaded.Add(float64(len(table.Stations)))

	src, err := os.Open(*xmlIn)
	if err != nil {
		return fmt.Errorf("open inventory: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	sum, err := stationxml.Filter(src, &buf, table.Stations.Codes(), *scale)
	if err != nil {
		metrics.RunErrors.WithLabelValues("filter").Inc()
		return fmt.Errorf("filter %s: %w", *xmlIn, err)
	}
	metrics.XMLStationsKept.Set(float64(sum.Kept))

	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	if len(sum.Missing) > 0 {
		logger.Warn("listed stations missing from inventory", "count", len(sum.Missing), "codes", sum.Missing)
	}
	logger.Info("inventory filtered", "kept", sum.Kept, "scale", *scale, "out", *out)
	return nil
}
