package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/seismic-netprep/internal/domain"
)

// Config holds all tool settings, populated from environment variables.
// Command-line flags default to these values.
type Config struct {
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Station tables and output record.
	StationsIn      string
	StationsOut     string
	VolumeConfigOut string

	// Homogeneous selection.
	StationCount  int
	SelectionSeed uint64

	// Search volume.
	GridUnit     float64
	DepthMax     float64
	Buffer       float64
	OctreeLevels int

	// Optional Kafka publication of the volume record.
	KafkaBrokers     []string
	KafkaEnabled     bool
	KafkaConfigTopic string

	// MetricsTextfile, when set, receives a Prometheus textfile snapshot at exit.
	MetricsTextfile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	stationCount, err := parseInt("STATION_COUNT", "20")
	if err != nil {
		return nil, err
	}
	if stationCount < 0 {
		return nil, errors.New("invalid STATION_COUNT: must not be negative")
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SELECTION_SEED", "42"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SELECTION_SEED: %w", err)
	}

	gridUnit, err := parseFloat("GRID_UNIT_M", "1000")
	if err != nil {
		return nil, err
	}
	depthMax, err := parseFloat("DEPTH_MAX_M", "20000")
	if err != nil {
		return nil, err
	}
	buffer, err := parseFloat("BUFFER_M", "500")
	if err != nil {
		return nil, err
	}
	levels, err := parseInt("OCTREE_LEVELS", "5")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StationsIn:      sharedcfg.EnvOrDefault("STATIONS_IN", "stations.csv"),
		StationsOut:     sharedcfg.EnvOrDefault("STATIONS_OUT", "stations_4_detection.csv"),
		VolumeConfigOut: sharedcfg.EnvOrDefault("VOLUME_CONFIG_OUT", "search_volume.json"),

		StationCount:  stationCount,
		SelectionSeed: seed,

		GridUnit:     gridUnit,
		DepthMax:     depthMax,
		Buffer:       buffer,
		OctreeLevels: levels,

		KafkaBrokers:     brokers,
		KafkaEnabled:     kafkaEnabled,
		KafkaConfigTopic: sharedcfg.EnvOrDefault("KAFKA_CONFIG_TOPIC", "search-volume-config"),

		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
	}

	if err := cfg.validateVolume(); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaConfigTopic == "" {
		return nil, errors.New("KAFKA_CONFIG_TOPIC is required")
	}

	return cfg, nil
}

// VolumeOptions returns the search-volume settings in domain form.
func (c *Config) VolumeOptions() domain.VolumeOptions {
	return domain.VolumeOptions{
		GridUnit: c.GridUnit,
		DepthMax: c.DepthMax,
		Buffer:   c.Buffer,
		Levels:   c.OctreeLevels,
	}
}

func (c *Config) validateVolume() error {
	switch {
	case c.GridUnit <= 0:
		return errors.New("invalid GRID_UNIT_M: must be positive")
	case c.DepthMax < 0:
		return errors.New("invalid DEPTH_MAX_M: must not be negative")
	case c.Buffer < 0:
		return errors.New("invalid BUFFER_M: must not be negative")
	case c.OctreeLevels <= 0:
		return errors.New("invalid OCTREE_LEVELS: must be positive")
	}
	if err := c.VolumeOptions().Validate(); err != nil {
		return fmt.Errorf("invalid GRID_UNIT_M/DEPTH_MAX_M: %w", err)
	}
	return nil
}

func parseInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
