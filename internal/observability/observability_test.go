package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("stations loaded", "count", 12)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stations loaded", entry["msg"])
	assert.Equal(t, float64(12), entry["count"])
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "DEBUG", "text")

	logger.Debug("selection step", "index", 3)

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "index=3")
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.StationsLoaded.Add(63)
	m.VolumeSpan.WithLabelValues("east").Set(17000)

	path := filepath.Join(t.TempDir(), "netprep.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "netprep_stations_loaded_total 63")
	assert.Contains(t, string(data), `netprep_volume_span_meters{axis="east"} 17000`)
}

func TestMetrics_UnregisteredCannotWrite(t *testing.T) {
	m := NewMetricsForTesting()
	m.StationsSelected.Set(20)

	assert.Equal(t, 20.0, testutil.ToFloat64(m.StationsSelected))
	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMetrics_Flush(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	m := NewMetrics()
	m.XMLStationsKept.Set(20)
	path := filepath.Join(t.TempDir(), "netprep.prom")
	m.Flush(path, logger)
	assert.FileExists(t, path)

	m.Flush("", slog.New(slog.NewTextHandler(io.Discard, nil)))

	NewMetricsForTesting().Flush(path, logger)
	assert.Contains(t, logs.String(), "metrics snapshot failed")
}
