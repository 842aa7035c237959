package sinks

import (
	"context"

	"github.com/redis/go-redis/v9"

	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/generator"
)

// RedisSink appends records, as JSON, to the tail of a list.
type RedisSink struct {
	client redis.Cmdable
	key    string
	logger logger.Logger
}

func NewRedisSink(client redis.Cmdable, key string, log logger.Logger) *RedisSink {
	return &RedisSink{
		client: client,
		key:    key,
		logger: log.WithFields(map[string]interface{}{"sink": NameRedis, "key": key}),
	}
}

func (s *RedisSink) Name() string { return NameRedis }

// Deliver sends one RPUSH per record in a single pipeline round trip.
func (s *RedisSink) Deliver(ctx context.Context, records []*generator.Object) (*Report, error) {
	report := newReport(s.Name())
	if len(records) == 0 {
		return report, nil
	}

	bodies, err := encodeRecords(records)
	if err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(bodies))
	for i, body := range bodies {
		cmds[i] = pipe.RPush(ctx, s.key, string(body))
	}
	if _, err := pipe.Exec(ctx); err != nil && ctx.Err() != nil {
		return nil, apperrors.NewSinkDeliveryFailedError(NameRedis, err)
	}

	for i, cmd := range cmds {
		if err := cmd.Err(); err != nil {
			report.fail(i, err)
			continue
		}
		report.Delivered++
	}

	s.logger.Info("records pushed", map[string]interface{}{
		"delivered": report.Delivered,
		"failed":    report.Failed,
	})
	return report, nil
}
