package sinks

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	httpclient "mock-data-forge/internal/common/http"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/generator"
)

// AllowedMethods lists the methods records may be forwarded with.
var AllowedMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch}

type HTTPTarget struct {
	URL     string
	Method  string
	Headers map[string]string
}

// HTTPSink sends every record as its own JSON request.
type HTTPSink struct {
	client      *httpclient.Client
	target      HTTPTarget
	concurrency int
	logger      logger.Logger
}

func NewHTTPSink(client *httpclient.Client, target HTTPTarget, concurrency int, log logger.Logger) *HTTPSink {
	target.Method = strings.ToUpper(target.Method)
	if target.Method == "" {
		target.Method = http.MethodPost
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &HTTPSink{
		client:      client,
		target:      target,
		concurrency: concurrency,
		logger:      log.WithFields(map[string]interface{}{"sink": NameHTTP}),
	}
}

func (s *HTTPSink) Name() string { return NameHTTP }

// Deliver never fails as a whole; each request outcome is tallied in
// record order.
func (s *HTTPSink) Deliver(ctx context.Context, records []*generator.Object) (*Report, error) {
	report := newReport(s.Name())

	bodies, err := encodeRecords(records)
	if err != nil {
		return nil, err
	}

	results := make([]error, len(bodies))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, body := range bodies {
		g.Go(func() error {
			_, results[i] = s.client.SendJSON(ctx, s.target.Method, s.target.URL, s.target.Headers, body)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range results {
		if err != nil {
			report.fail(i, err)
			continue
		}
		report.Delivered++
	}

	s.logger.Info("records forwarded", map[string]interface{}{
		"url":       s.target.URL,
		"method":    s.target.Method,
		"delivered": report.Delivered,
		"failed":    report.Failed,
	})
	return report, nil
}
