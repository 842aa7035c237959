package sinks

import (
	"context"

	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/common/messaging"
	"mock-data-forge/internal/generator"
)

// AMQPSink publishes each record as a persistent JSON message on a durable
// queue, declaring the queue first.
type AMQPSink struct {
	ch     messaging.Channel
	queue  string
	logger logger.Logger
}

func NewAMQPSink(ch messaging.Channel, queue string, log logger.Logger) *AMQPSink {
	return &AMQPSink{
		ch:     ch,
		queue:  queue,
		logger: log.WithFields(map[string]interface{}{"sink": NameAMQP, "queue": queue}),
	}
}

func (s *AMQPSink) Name() string { return NameAMQP }

func (s *AMQPSink) Deliver(ctx context.Context, records []*generator.Object) (*Report, error) {
	bodies, err := encodeRecords(records)
	if err != nil {
		return nil, err
	}

	if err := messaging.DeclareQueue(s.ch, s.queue); err != nil {
		return nil, apperrors.NewSinkDeliveryFailedError(NameAMQP, err)
	}

	report := newReport(s.Name())
	for i, body := range bodies {
		if err := messaging.PublishJSON(ctx, s.ch, s.queue, body); err != nil {
			report.fail(i, err)
			continue
		}
		report.Delivered++
	}

	s.logger.Info("records published", map[string]interface{}{
		"delivered": report.Delivered,
		"failed":    report.Failed,
	})
	return report, nil
}
