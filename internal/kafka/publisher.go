// Package kafka publishes risk reports to a Kafka topic for
// downstream consumers (dashboards, alerting, archival).
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/defirisk/wsteth-risk-engine/pkg/metrics"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

// Publisher writes risk reports to a Kafka topic as JSON.
type Publisher struct {
	writer   *kafka.Writer
	recorder *metrics.Recorder
	log      *logger.Logger
}

// NewPublisher creates a publisher for the given brokers and topic.
// The recorder may be nil.
func NewPublisher(brokers []string, topic string, recorder *metrics.Recorder) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &Publisher{
		writer:   writer,
		recorder: recorder,
		log:      logger.GetLogger("kafka.publisher"),
	}
}

// PublishReport serializes the report and writes it to the topic. The
// message key is the report timestamp so consumers can compact by
// evaluation time.
func (p *Publisher) PublishReport(ctx context.Context, report *models.RiskReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshaling risk report")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.Timestamp.UTC().Format(time.RFC3339Nano)),
		Value: payload,
	})
	if p.recorder != nil {
		result := "success"
		if err != nil {
			result = "error"
		}
		p.recorder.RecordReportPublished(result)
	}
	if err != nil {
		p.log.Errorf("failed to publish risk report: %v", err)
		return errors.Wrap(err, "writing risk report to kafka")
	}

	p.log.Debugw("published risk report",
		"topic", p.writer.Topic,
		"bytes", len(payload))
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
