package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/seismic-netprep/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeMessageWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeMessageWriter) Close() error {
	f.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testVolume() domain.VolumeConfig {
	return domain.VolumeConfig{
		Location:     domain.Location{Lat: 2.1301, Lon: 99.2202},
		RootNodeSize: 1000,
		Levels:       5,
		EastBounds:   domain.Bounds{-4000, 4000},
		NorthBounds:  domain.Bounds{-3500, 3500},
		DepthBounds:  domain.Bounds{0, 20000},
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	msg, err := serializeToMessage(testVolume(), now)
	require.NoError(t, err)

	assert.Equal(t, []byte("2.130100,99.220200"), msg.Key)
	assert.Contains(t, string(msg.Value), `"root_node_size":1000`)
	assert.Contains(t, string(msg.Value), `"depth_bounds":[0,20000]`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "generated_at", msg.Headers[0].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[0].Value)
	assert.Equal(t, "root_node_size", msg.Headers[1].Key)
	assert.Equal(t, []byte("1000"), msg.Headers[1].Value)
}

func TestWriter_WriteConfig(t *testing.T) {
	fake := &fakeMessageWriter{}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))
	w := &Writer{writer: fake, topic: "volumes", clock: clock, logger: discardLogger()}

	assert.Equal(t, "kafka:volumes", w.Name())
	require.NoError(t, w.WriteConfig(context.Background(), testVolume()))
	require.Len(t, fake.msgs, 1)

	var got domain.VolumeConfig
	require.NoError(t, json.Unmarshal(fake.msgs[0].Value, &got))
	assert.Equal(t, testVolume(), got)
	assert.Equal(t, "2025-03-14T09:30:00Z", string(fake.msgs[0].Headers[0].Value))

	require.NoError(t, w.Close())
	assert.True(t, fake.closed)
}

func TestWriter_WriteConfigError(t *testing.T) {
	fake := &fakeMessageWriter{err: errors.New("leader not available")}
	w := &Writer{writer: fake, topic: "volumes", clock: clockwork.NewFakeClock(), logger: discardLogger()}

	err := w.WriteConfig(context.Background(), testVolume())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish volume config")
	assert.Contains(t, err.Error(), "leader not available")
}
