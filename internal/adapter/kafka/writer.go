package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/seismic-netprep/internal/config"
	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes search volume records to a Kafka topic for the
// downstream location search.
// It implements pipeline.ConfigSink.
type Writer struct {
	writer messageWriter
	topic  string
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured volume topic.
func NewWriter(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaConfigTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, topic: cfg.KafkaConfigTopic, clock: clock, logger: logger}
}

// Name identifies the sink in logs.
func (w *Writer) Name() string {
	return "kafka:" + w.topic
}

// WriteConfig serialises cfg and publishes it as a single message.
func (w *Writer) WriteConfig(ctx context.Context, cfg domain.VolumeConfig) error {
	msg, err := serializeToMessage(cfg, w.clock.Now())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish volume config: %w", err)
	}
	w.logger.Info("volume config published", "topic", w.topic, "key", string(msg.Key))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a VolumeConfig into a Kafka message keyed by
// its reference location, so republishing the same network lands on the
// same partition.
func serializeToMessage(cfg domain.VolumeConfig, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize volume config: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(cfg.Location)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
			{Key: "root_node_size", Value: []byte(strconv.FormatFloat(cfg.RootNodeSize, 'f', -1, 64))},
		},
	}, nil
}

func messageKey(loc domain.Location) string {
	return fmt.Sprintf("%.6f,%.6f", loc.Lat, loc.Lon)
}
