package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/dhlexpress/internal/events"
	"github.com/tournevent/dhlexpress/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := events.NewKafkaPublisherWithWriter(fw, otelzap.New(zap.NewNop()))

	event := shipper.ShipmentCreatedEvent{
		Carrier:              "dhl",
		IdentificationNumber: "1234567890",
		TrackingNumbers:      []string{"JD01", "JD02"},
		ServiceType:          shipper.ServiceEU,
	}
	require.NoError(t, p.Publish(context.Background(), "1234567890", event))

	require.Len(t, fw.msgs, 1)
	assert.Equal(t, []byte("1234567890"), fw.msgs[0].Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &decoded))
	assert.Equal(t, "1234567890", decoded["identificationNumber"])
	assert.Equal(t, "U", decoded["serviceType"])
	assert.Equal(t, []any{"JD01", "JD02"}, decoded["trackingNumbers"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker unavailable")}
	p := events.NewKafkaPublisherWithWriter(fw, otelzap.New(zap.NewNop()))

	err := p.Publish(context.Background(), "k", map[string]string{"a": "b"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestKafkaPublisher_MarshalError(t *testing.T) {
	fw := &fakeWriter{}
	p := events.NewKafkaPublisherWithWriter(fw, otelzap.New(zap.NewNop()))

	err := p.Publish(context.Background(), "k", make(chan int))

	require.Error(t, err)
	assert.Empty(t, fw.msgs)
}

func TestKafkaPublisher_Close(t *testing.T) {
	fw := &fakeWriter{}
	p := events.NewKafkaPublisherWithWriter(fw, otelzap.New(zap.NewNop()))

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestNop(t *testing.T) {
	var p events.Publisher = events.Nop{}
	assert.NoError(t, p.Publish(context.Background(), "k", "v"))
	assert.NoError(t, p.Close())
}
