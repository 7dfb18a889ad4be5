package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/couchcryptid/seismic-netprep/internal/observability"
	"github.com/jonboulle/clockwork"
)

// StationSource reads the full station table.
type StationSource interface {
	LoadStations(ctx context.Context) (domain.StationSet, error)
}

// StationSink writes the selected subset.
type StationSink interface {
	WriteStations(ctx context.Context, stations domain.StationSet) error
}

// ConfigSink receives the derived search volume record.
type ConfigSink interface {
	Name() string
	WriteConfig(ctx context.Context, cfg domain.VolumeConfig) error
}

// Options holds the selection and volume parameters of a run.
type Options struct {
	StationCount int
	Volume       domain.VolumeOptions
}

// Result summarises a completed run.
type Result struct {
	Loaded      int
	Selected    domain.StationSet
	Config      domain.VolumeConfig
	GeneratedAt time.Time
	Duration    time.Duration
}

// Pipeline chains station selection and volume configuration: load the
// table, select a spread subset, write it, derive the search volume from
// the subset and hand the record to every config sink.
type Pipeline struct {
	source      StationSource
	sink        StationSink
	configSinks []ConfigSink
	rng         domain.Rand
	opts        Options
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(source StationSource, sink StationSink, configSinks []ConfigSink, rng domain.Rand, opts Options,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:      source,
		sink:        sink,
		configSinks: configSinks,
		rng:         rng,
		opts:        opts,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes one pass. It stops at the first failing stage and returns
// its error wrapped with the stage name.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{GeneratedAt: p.clock.Now()}
	p.logger.Info("pipeline started", "station_count", p.opts.StationCount, "grid_unit", p.opts.Volume.GridUnit)

	var stations domain.StationSet
	err := p.stage(ctx, "load", func() (err error) {
		stations, err = p.source.LoadStations(ctx)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Loaded = len(stations)
	p.metrics.StationsLoaded.Add(float64(len(stations)))

	err = p.stage(ctx, "select", func() (err error) {
		res.Selected, err = domain.Select(stations, p.opts.StationCount, p.rng)
		return err
	})
	if err != nil {
		return res, err
	}
	p.metrics.StationsSelected.Set(float64(len(res.Selected)))
	p.logger.Info("stations selected", "loaded", res.Loaded, "selected", len(res.Selected))

	err = p.stage(ctx, "write_stations", func() error {
		return p.sink.WriteStations(ctx, res.Selected)
	})
	if err != nil {
		return res, err
	}

	err = p.stage(ctx, "configure", func() (err error) {
		res.Config, err = domain.Configure(res.Selected, p.opts.Volume)
		return err
	})
	if err != nil {
		return res, err
	}
	p.recordSpans(res.Config)

	for _, s := range p.configSinks {
		err = p.stage(ctx, "write_config", func() error {
			return s.WriteConfig(ctx, res.Config)
		})
		if err != nil {
			return res, fmt.Errorf("%s: %w", s.Name(), err)
		}
		p.metrics.ConfigsPublished.Inc()
		p.logger.Debug("volume config written", "sink", s.Name())
	}

	res.Duration = p.clock.Since(res.GeneratedAt)
	p.logger.Info("pipeline finished",
		"selected", len(res.Selected),
		"lat", res.Config.Location.Lat,
		"lon", res.Config.Location.Lon,
		"duration", res.Duration,
	)
	return res, nil
}

// stage runs fn after checking for cancellation, timing it and counting
// failures under the stage label.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	start := p.clock.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(p.clock.Since(start).Seconds())
	if err != nil {
		p.metrics.RunErrors.WithLabelValues(name).Inc()
		p.logger.Error("stage failed", "stage", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *Pipeline) recordSpans(cfg domain.VolumeConfig) {
	p.metrics.VolumeSpan.WithLabelValues("east").Set(cfg.EastBounds.Span())
	p.metrics.VolumeSpan.WithLabelValues("north").Set(cfg.NorthBounds.Span())
	p.metrics.VolumeSpan.WithLabelValues("depth").Set(cfg.DepthBounds.Span())
}
