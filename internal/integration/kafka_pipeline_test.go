//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/seismic-netprep/internal/adapter/csvtable"
	"github.com/couchcryptid/seismic-netprep/internal/adapter/kafka"
	"github.com/couchcryptid/seismic-netprep/internal/adapter/volumejson"
	"github.com/couchcryptid/seismic-netprep/internal/config"
	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/couchcryptid/seismic-netprep/internal/observability"
	"github.com/couchcryptid/seismic-netprep/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testConfigTopic = "test-search-volume"

const stationTable = `network,station,latitude,longitude,elevation,depth
SS,01001,2.1240,99.2110,1234.5,0
SS,01002,2.1301,99.2202,1180,0
SS,01003,2.1425,99.2378,1099.0,0
SS,01004,2.1550,99.2010,1310.0,0
SS,01005,2.1610,99.2450,1150.0,0
SS,01006,2.1705,99.2290,1205.0,0
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPipelineEndToEnd runs selection and volume derivation over a station
// file and checks that the record published to Kafka matches the one
// written to disk.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testConfigTopic)

	dir := t.TempDir()
	in := filepath.Join(dir, "stations.csv")
	out := filepath.Join(dir, "stations_4_detection.csv")
	volumePath := filepath.Join(dir, "search_volume.json")
	require.NoError(t, os.WriteFile(in, []byte(stationTable), 0o600))

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaEnabled:     true,
		KafkaConfigTopic: testConfigTopic,
	}
	generatedAt := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(generatedAt)

	writer := kafka.NewWriter(cfg, clock, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	// The store is both source and sink.
	store := csvtable.NewStore(in, out)
	p := pipeline.New(
		store, store,
		[]pipeline.ConfigSink{volumejson.NewFileWriter(volumePath, nil), writer},
		domain.NewRand(42),
		pipeline.Options{StationCount: 4, Volume: domain.DefaultVolumeOptions()},
		clock, discardLogger(), observability.NewMetricsForTesting(),
	)

	res, err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, res.Selected, 4)

	selected, err := csvtable.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Selected.Codes(), selected.Stations.Codes())

	f, err := os.Open(volumePath)
	require.NoError(t, err)
	defer f.Close()
	fromFile, err := volumejson.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, res.Config, fromFile)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testConfigTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from config topic")

	var published domain.VolumeConfig
	require.NoError(t, json.Unmarshal(msg.Value, &published))
	assert.Equal(t, res.Config, published)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2025-03-14T09:30:00Z", headers["generated_at"])
	assert.Equal(t, "1000", headers["root_node_size"])
}
