package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/generator"
)

var bulkIndexAction = []byte(`{"index":{}}` + "\n")

// ElasticsearchSink indexes records with one bulk request. Document ids are
// assigned by Elasticsearch.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchSink(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchSink {
	return &ElasticsearchSink{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"sink": NameElasticsearch, "index": index}),
	}
}

func (s *ElasticsearchSink) Name() string { return NameElasticsearch }

type bulkResponse struct {
	Errors bool                         `json:"errors"`
	Items  []map[string]bulkItemOutcome `json:"items"`
}

type bulkItemOutcome struct {
	Status int `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

func (s *ElasticsearchSink) Deliver(ctx context.Context, records []*generator.Object) (*Report, error) {
	report := newReport(s.Name())
	if len(records) == 0 {
		return report, nil
	}

	bodies, err := encodeRecords(records)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, body := range bodies {
		buf.Write(bulkIndexAction)
		buf.Write(body)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithIndex(s.index),
		s.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, apperrors.NewSinkConnectionFailedError(NameElasticsearch, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, apperrors.NewSinkDeliveryFailedError(NameElasticsearch,
			fmt.Errorf("bulk request failed: %s: %s", res.Status(), bytes.TrimSpace(snippet)))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSinkDeliveryFailedError(NameElasticsearch, fmt.Errorf("decode bulk response: %w", err))
	}

	for i, item := range parsed.Items {
		for _, outcome := range item {
			switch {
			case outcome.Error != nil:
				report.fail(i, fmt.Errorf("%s: %s", outcome.Error.Type, outcome.Error.Reason))
			case outcome.Status >= 300:
				report.fail(i, fmt.Errorf("status %d", outcome.Status))
			default:
				report.Delivered++
			}
		}
	}

	s.logger.Info("records indexed", map[string]interface{}{
		"delivered": report.Delivered,
		"failed":    report.Failed,
	})
	return report, nil
}
