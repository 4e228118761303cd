// Package kafka publishes merged daily records to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/config"
	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/couchcryptid/activity-weather-insights/internal/observability"
	"github.com/couchcryptid/activity-weather-insights/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	headerRunID     = "run_id"
	headerCondition = "weather_condition"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per merged day to the sink topic.
// It implements pipeline.Sink.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// Write publishes out.Merged in a single WriteMessages call. Days are keyed
// by date so a rerun lands each day on the same partition.
func (w *Writer) Write(ctx context.Context, out *pipeline.Output) error {
	if len(out.Merged) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(out.Merged))
	for i := range out.Merged {
		msg, err := serializeToMessage(out.RunID, out.Merged[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish merged records: %w", err)
	}
	w.metrics.RecordsPublished.Add(float64(len(msgs)))
	w.logger.Info("merged records published", "run_id", out.RunID, "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a MergedRecord into a Kafka message.
func serializeToMessage(runID string, record domain.MergedRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize merged record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.Date.Format(time.DateOnly)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: headerRunID, Value: []byte(runID)},
			{Key: headerCondition, Value: []byte(record.WeatherCondition)},
		},
	}, nil
}
