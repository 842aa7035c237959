package server

import (
	"context"
	"fmt"

	awsclient "mock-data-forge/internal/common/aws"
	"mock-data-forge/internal/common/config"
	"mock-data-forge/internal/common/database"
	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/common/messaging"
	"mock-data-forge/internal/sinks"
)

// OpenFunc connects to a sink described by a request. The returned close
// function releases the connection and is never nil on success.
type OpenFunc func(ctx context.Context, req *Request) (sinks.Sink, func(), error)

// Openers holds one OpenFunc per connection-based sink. Nil fields fall back
// to the real clients.
type Openers struct {
	Postgres      OpenFunc
	Redis         OpenFunc
	Elasticsearch OpenFunc
	AMQP          OpenFunc
	Mongo         OpenFunc
	SNS           OpenFunc
}

func (o Openers) withDefaults(cfg *config.Config, log logger.Logger) Openers {
	if o.Postgres == nil {
		o.Postgres = openPostgres(cfg, log)
	}
	if o.Redis == nil {
		o.Redis = openRedis(cfg, log)
	}
	if o.Elasticsearch == nil {
		o.Elasticsearch = openElasticsearch(cfg, log)
	}
	if o.AMQP == nil {
		o.AMQP = openAMQP(cfg, log)
	}
	if o.Mongo == nil {
		o.Mongo = openMongo(cfg, log)
	}
	if o.SNS == nil {
		o.SNS = openSNS(cfg, log)
	}
	return o
}

func invalidURL(field string, err error) error {
	return apperrors.NewInvalidRequestError(fmt.Sprintf("Missing or invalid '%s' in request body.", field), err.Error())
}

func openPostgres(cfg *config.Config, log logger.Logger) OpenFunc {
	return func(ctx context.Context, req *Request) (sinks.Sink, func(), error) {
		pg, err := database.NewPostgres(req.DBURL, cfg.Sinks.Postgres)
		if err != nil {
			return nil, nil, invalidURL("db_url", err)
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, apperrors.NewSinkConnectionFailedError(sinks.NamePostgres, err)
		}
		return sinks.NewPostgresSink(pg.DB, req.TableName, log), func() { _ = pg.Close() }, nil
	}
}

func openRedis(cfg *config.Config, log logger.Logger) OpenFunc {
	return func(ctx context.Context, req *Request) (sinks.Sink, func(), error) {
		rc, err := database.NewRedis(req.RedisURL, config.GetDuration(cfg.Sinks.Redis.Timeout))
		if err != nil {
			return nil, nil, invalidURL("redis_url", err)
		}
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, apperrors.NewSinkConnectionFailedError(sinks.NameRedis, err)
		}
		return sinks.NewRedisSink(rc.Client, req.Key, log), func() { _ = rc.Close() }, nil
	}
}

func openElasticsearch(cfg *config.Config, log logger.Logger) OpenFunc {
	return func(ctx context.Context, req *Request) (sinks.Sink, func(), error) {
		es, err := database.NewElasticsearch(req.ESURL, config.GetDuration(cfg.Sinks.Elasticsearch.Timeout))
		if err != nil {
			return nil, nil, invalidURL("es_url", err)
		}
		if err := es.Ping(ctx); err != nil {
			return nil, nil, apperrors.NewSinkConnectionFailedError(sinks.NameElasticsearch, err)
		}
		return sinks.NewElasticsearchSink(es.Client, req.IndexName, log), func() {}, nil
	}
}

func openAMQP(cfg *config.Config, log logger.Logger) OpenFunc {
	return func(ctx context.Context, req *Request) (sinks.Sink, func(), error) {
		conn, err := messaging.Dial(req.AMQPURL, cfg.App.Name, config.GetDuration(cfg.Sinks.AMQP.Timeout))
		if err != nil {
			return nil, nil, apperrors.NewSinkConnectionFailedError(sinks.NameAMQP, err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, apperrors.NewSinkConnectionFailedError(sinks.NameAMQP, err)
		}
		closeFn := func() {
			_ = ch.Close()
			_ = conn.Close()
		}
		return sinks.NewAMQPSink(ch, req.Queue, log), closeFn, nil
	}
}

func openMongo(cfg *config.Config, log logger.Logger) OpenFunc {
	return func(ctx context.Context, req *Request) (sinks.Sink, func(), error) {
		mc, err := database.NewMongo(ctx, req.MongoURL, config.GetDuration(cfg.Sinks.Mongo.Timeout))
		if err != nil {
			return nil, nil, apperrors.NewSinkConnectionFailedError(sinks.NameMongo, err)
		}
		closeFn := func() { _ = mc.Close(context.Background()) }
		return sinks.NewMongoSink(mc.Collection(req.Database, req.Collection), log), closeFn, nil
	}
}

// openSNS only resolves credentials. An unreachable endpoint surfaces as
// per-record failures.
func openSNS(cfg *config.Config, log logger.Logger) OpenFunc {
	return func(ctx context.Context, req *Request) (sinks.Sink, func(), error) {
		region := req.Region
		if region == "" {
			region = cfg.Sinks.SNS.Region
		}
		client, err := awsclient.NewSNSClient(ctx, region)
		if err != nil {
			return nil, nil, apperrors.NewSinkConnectionFailedError(sinks.NameSNS, err)
		}
		return sinks.NewSNSSink(client, req.TopicARN, log), func() {}, nil
	}
}
