package generatemockdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/common/metrics"
	"mock-data-forge/internal/common/observability"
	"mock-data-forge/internal/common/validation"
	"mock-data-forge/internal/generator"
)

const (
	TaskType = "generate-mock-data"

	metricsSource = "worker"
)

type Handler struct {
	config         *Config
	generator      *generator.Generator
	inputValidator *validation.Validator
	obs            *observability.Observability
	errorHandler   *apperrors.ErrorHandler
	logger         logger.Logger
}

type Option func(*Handler)

// WithInputValidator checks raw job variables before they are decoded.
func WithInputValidator(v *validation.Validator) Option {
	return func(h *Handler) { h.inputValidator = v }
}

// WithObservability records each batch on the OTel meter.
func WithObservability(obs *observability.Observability) Option {
	return func(h *Handler) { h.obs = obs }
}

func NewHandler(config *Config, gen *generator.Generator, log logger.Logger, opts ...Option) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:       config,
		generator:    gen,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if h.inputValidator != nil {
		if result := h.inputValidator.Validate([]byte(job.Variables)); !result.Valid {
			h.failJob(ctx, client, job, inputError(result))
			return
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, apperrors.NewInvalidRequestError("Invalid job variables.", fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Schema == nil || input.Schema.Len() == 0 {
		return nil, apperrors.NewInvalidSchemaError("schema must be a non-empty mapping")
	}

	count := 1
	if input.Count != nil {
		count = *input.Count
	}
	if count < 1 {
		return nil, apperrors.NewInvalidCountError(fmt.Sprintf("count: %d", count))
	}
	if h.config.MaxCount > 0 && count > h.config.MaxCount {
		return nil, apperrors.NewCountLimitExceededError(count, h.config.MaxCount)
	}

	start := time.Now()
	records, err := h.generator.GenerateMockData(ctx, input.Schema, count)
	elapsed := time.Since(start)
	if err != nil {
		stdErr := classify(err)
		metrics.GenerationFailures.WithLabelValues(metricsSource, string(stdErr.Code)).Inc()
		h.obs.RecordBatch(ctx, metricsSource, "error", 0, elapsed)
		return nil, stdErr
	}

	metrics.RecordsGenerated.WithLabelValues(metricsSource).Add(float64(len(records)))
	metrics.BatchDuration.WithLabelValues(metricsSource).Observe(elapsed.Seconds())
	h.obs.RecordBatch(ctx, metricsSource, "ok", len(records), elapsed)

	return &Output{
		Records:          records,
		RecordCount:      len(records),
		GenerationTimeMs: elapsed.Milliseconds(),
	}, nil
}

// inputError maps a failed variables check onto the same codes execute uses.
func inputError(result *validation.ValidationResult) *apperrors.StandardError {
	details := strings.Join(result.GetErrorMessages(), "; ")
	switch {
	case result.HasErrors("(root)") || result.HasErrors("schema"):
		return apperrors.NewInvalidSchemaError(details)
	case result.HasErrors("count"):
		return apperrors.NewInvalidCountError(details)
	default:
		return apperrors.NewInvalidRequestError("Invalid job variables.", details)
	}
}

func classify(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, generator.ErrSchemaTooDeep):
		return apperrors.NewSchemaTooDeepError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewGenerationTimeoutError(err)
	default:
		return apperrors.NewGenerationFailedError(err)
	}
}

// Execute runs one generation outside of a job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":      job.Key,
		"recordCount": output.RecordCount,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := string(apperrors.ErrCodeInternal)
	if stdErr, ok := apperrors.As(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
