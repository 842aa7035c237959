// Package sinks delivers generated records to external systems: HTTP APIs,
// Postgres tables, Redis lists, Elasticsearch indices, RabbitMQ queues,
// MongoDB collections and SNS topics.
//
// A sink reports per-record outcomes in a Report. Deliver returns an error
// only when the batch as a whole could not be attempted or, for Postgres,
// when the insert transaction was rolled back.
package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"mock-data-forge/internal/generator"
)

// maxReportedErrors bounds Report.Errors; Failed still counts every failure.
const maxReportedErrors = 50

// Sink names, also used as metric labels.
const (
	NameHTTP          = "http"
	NamePostgres      = "postgres"
	NameRedis         = "redis"
	NameElasticsearch = "elasticsearch"
	NameAMQP          = "amqp"
	NameMongo         = "mongo"
	NameSNS           = "sns"
)

type Sink interface {
	Name() string
	Deliver(ctx context.Context, records []*generator.Object) (*Report, error)
}

// Report tallies one delivery.
type Report struct {
	Sink      string   `json:"sink"`
	Delivered int      `json:"delivered"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

func newReport(sink string) *Report {
	return &Report{Sink: sink, Errors: []string{}}
}

func (r *Report) fail(index int, err error) {
	r.Failed++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("record %d: %v", index, err))
	}
}

func encodeRecords(records []*generator.Object) ([][]byte, error) {
	out := make([][]byte, len(records))
	for i, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		out[i] = body
	}
	return out, nil
}
