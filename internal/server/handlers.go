package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mock-data-forge/internal/common/config"
	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/metrics"
	"mock-data-forge/internal/common/validation"
	"mock-data-forge/internal/generator"
	"mock-data-forge/internal/sinks"
)

const (
	metricsSource = "http"

	// statusOverride is the error metadata key that replaces the status
	// derived from the error code.
	statusOverride = "httpStatus"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "Generator API is running",
		Version: s.config.App.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "healthy", Time: time.Now().Format(time.RFC3339)})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready", Time: time.Now().Format(time.RFC3339)})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r, generateEnvelope)
	if err != nil {
		s.writeError(w, err)
		return
	}

	records, err := s.generate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGenerateAndSend(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r, sendEnvelope)
	if err != nil {
		s.writeError(w, err)
		return
	}

	records, err := s.generate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sink := sinks.NewHTTPSink(s.httpClient, sinks.HTTPTarget{
		URL:     req.TargetURL,
		Method:  req.Method,
		Headers: req.Headers,
	}, s.config.Sinks.HTTP.Concurrency, s.logger)

	report, err := s.deliver(r.Context(), sink, records)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SendResponse{
		Message:      fmt.Sprintf("Sent %d of %d records to '%s'.", report.Delivered, len(records), req.TargetURL),
		Generated:    len(records),
		SuccessCount: report.Delivered,
		FailureCount: report.Failed,
		Errors:       report.Errors,
	})
}

func (s *Server) handleGenerateAndInsert(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r, insertEnvelope)
	if err != nil {
		s.writeError(w, err)
		return
	}

	records, err := s.generate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.openAndDeliver(r.Context(), s.openers.Postgres, req, records, s.config.Sinks.Postgres.Timeout)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, InsertResponse{
		Message:   fmt.Sprintf("Successfully inserted %d records into '%s'.", report.Delivered, req.TableName),
		Generated: len(records),
		Inserted:  report.Delivered,
	})
}

// sinkHandler serves the endpoints whose sinks share the SinkResponse shape.
func (s *Server) sinkHandler(v *validation.Validator, open OpenFunc, timeoutMS int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.decode(w, r, v)
		if err != nil {
			s.writeError(w, err)
			return
		}

		records, err := s.generate(r.Context(), req)
		if err != nil {
			s.writeError(w, err)
			return
		}

		report, err := s.openAndDeliver(r.Context(), open, req, records, timeoutMS)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SinkResponse{Generated: len(records), Report: report})
	}
}

// decode reads, validates and decodes the body. The envelope is checked
// before decoding so callers get field-level messages.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v *validation.Validator) (*Request, error) {
	body := r.Body
	if s.config.Server.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewInvalidRequestError("Request body too large.",
				fmt.Sprintf("limit: %d bytes", tooLarge.Limit)).
				WithMetadata(statusOverride, http.StatusRequestEntityTooLarge)
		}
		return nil, apperrors.NewInvalidRequestError("Could not read request body.", err.Error())
	}

	if result := v.Validate(data); !result.Valid {
		return nil, envelopeError(result)
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, apperrors.NewInvalidSchemaError(err.Error())
	}
	return &req, nil
}

func requestedCount(req *Request) (int, error) {
	if req.Count == "" {
		return 1, nil
	}
	n, err := req.Count.Int64()
	if err != nil || n < 1 {
		return 0, apperrors.NewInvalidCountError(fmt.Sprintf("count: %s", req.Count))
	}
	return int(n), nil
}

// generate runs one batch under the configured timeout and records metrics.
func (s *Server) generate(ctx context.Context, req *Request) ([]*generator.Object, error) {
	count, err := requestedCount(req)
	if err != nil {
		return nil, err
	}
	if limit := s.config.Generator.MaxCount; limit > 0 && count > limit {
		return nil, apperrors.NewCountLimitExceededError(count, limit)
	}

	if timeout := config.GetDuration(s.config.Generator.Timeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s.logger.Info("generating records", map[string]interface{}{"count": count})
	start := time.Now()
	records, err := s.generator.GenerateMockData(ctx, req.Schema, count)
	elapsed := time.Since(start)

	if err != nil {
		stdErr := generationError(err)
		metrics.GenerationFailures.WithLabelValues(metricsSource, string(stdErr.Code)).Inc()
		s.obs.RecordBatch(ctx, metricsSource, "error", 0, elapsed)
		return nil, stdErr
	}

	metrics.RecordsGenerated.WithLabelValues(metricsSource).Add(float64(len(records)))
	metrics.BatchDuration.WithLabelValues(metricsSource).Observe(elapsed.Seconds())
	s.obs.RecordBatch(ctx, metricsSource, "ok", len(records), elapsed)
	return records, nil
}

func generationError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, generator.ErrSchemaTooDeep):
		return apperrors.NewSchemaTooDeepError(err)
	case errors.Is(err, generator.ErrInvalidCount):
		return apperrors.NewInvalidCountError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewGenerationTimeoutError(err)
	default:
		return apperrors.NewGenerationFailedError(err)
	}
}

func (s *Server) openAndDeliver(ctx context.Context, open OpenFunc, req *Request, records []*generator.Object, timeoutMS int) (*sinks.Report, error) {
	if timeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(timeoutMS))
		defer cancel()
	}

	sink, closeFn, err := open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return s.deliver(ctx, sink, records)
}

func (s *Server) deliver(ctx context.Context, sink sinks.Sink, records []*generator.Object) (*sinks.Report, error) {
	report, err := sink.Deliver(ctx, records)
	if err != nil {
		metrics.ObserveSink(sink.Name(), 0, len(records))
		return nil, err
	}
	metrics.ObserveSink(sink.Name(), report.Delivered, report.Failed)
	return report, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr, ok := apperrors.As(err)
	if !ok {
		stdErr = apperrors.NewGenerationFailedError(err)
	}

	status := stdErr.HTTPStatus()
	if override, ok := stdErr.Metadata[statusOverride].(int); ok {
		status = override
	}

	resp := ErrorResponse{Error: stdErr.Message, Code: string(stdErr.Code)}
	if status >= http.StatusInternalServerError || stdErr.Code == apperrors.ErrCodeTableNotFound {
		resp.Details = stdErr.Details
	}

	fields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"status":    status,
		"details":   stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Warn("request rejected", fields)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
