// internal/workers/negotiation/extract-bid/handler.go
package extractbid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"negotiation-gateway/internal/classifier"
	commonerrors "negotiation-gateway/internal/common/errors"
	"negotiation-gateway/internal/common/metrics"
	"negotiation-gateway/internal/common/observability"
	"negotiation-gateway/internal/interpret"
	"negotiation-gateway/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "extract-bid"
)

var ErrInvalidInput = errors.New("INVALID_MESSAGE")

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Classifier is satisfied by *classifier.Client.
type Classifier interface {
	Classify(ctx context.Context, req classifier.Request) (*models.ClassificationResult, error)
}

// Handler runs classify, interpret and normalize for one utterance.
type Handler struct {
	config      *Config
	classifier  Classifier
	interpreter *interpret.Interpreter
	errHandler  *commonerrors.ErrorHandler
	obs         *observability.Observability
	logger      Logger
}

func NewHandler(cfg *Config, c Classifier, i *interpret.Interpreter, obs *observability.Observability, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:      cfg,
		classifier:  c,
		interpreter: i,
		errHandler:  commonerrors.NewErrorHandler(l),
		obs:         obs,
		logger:      l,
	}
}

// Handle is the Zeebe job entry point.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.failJob(ctx, client, job, commonerrors.NewInvalidMessageError(fmt.Sprintf("parse input: %v", err)))
	}

	output, err := h.Execute(ctx, &input)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	if err != nil {
		return h.failJob(ctx, client, job, toStandardError(err))
	}

	return h.completeJob(ctx, client, job, output)
}

// Execute classifies input.Text and turns the result into a bid. A
// classification failure is returned as an error; an utterance that simply
// is not a bid is a successful Output with Recognized false.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	res, err := h.classifier.Classify(ctx, classifier.Request{
		Text:            input.Text,
		Role:            input.Role,
		Addressee:       input.Addressee,
		Speaker:         input.Speaker,
		EnvironmentUUID: input.EnvironmentUUID,
	})
	if err != nil {
		h.obs.RecordPipelineRun(ctx, metrics.StatusError)
		h.obs.RecordPipelineDuration(ctx, time.Since(start), metrics.StatusError)
		h.logger.Error("classification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	if res.Input.EnvironmentUUID == "" {
		res.Input.EnvironmentUUID = input.EnvironmentUUID
	}

	interp := h.interpreter.Interpret(res)

	output := &Output{
		Recognized: interp.Recognized(),
		Outcome:    string(interp.Outcome),
	}
	for _, m := range interp.Malformed {
		output.MalformedEntities = append(output.MalformedEntities, m.Error())
	}
	if len(interp.Malformed) > 0 {
		metrics.MalformedEntities.Add(float64(len(interp.Malformed)))
		h.logger.Warn("dropped malformed entities", map[string]interface{}{
			"count":    len(interp.Malformed),
			"entities": output.MalformedEntities,
		})
	}

	h.obs.RecordPipelineRun(ctx, output.Outcome)
	h.obs.RecordPipelineDuration(ctx, time.Since(start), metrics.StatusOK)

	if !interp.Recognized() {
		metrics.UtterancesUnrecognized.WithLabelValues(output.Outcome).Inc()
		h.logger.Info("no bid in utterance", map[string]interface{}{
			"outcome": output.Outcome,
		})
		return output, nil
	}

	bid, err := interpret.NormalizeBid(interp.Command)
	if err != nil {
		return nil, err
	}
	output.Bid = bid
	output.Addressee = interp.Command.Metadata.Addressee

	metrics.BidsExtracted.WithLabelValues(string(bid.Type)).Inc()
	h.logger.Info("bid extracted", map[string]interface{}{
		"type":      string(bid.Type),
		"addressee": deref(output.Addressee),
	})

	return output, nil
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, classifier.ErrClassifierTimeout):
		return commonerrors.NewClassifierTimeoutError(err)
	case errors.Is(err, classifier.ErrClassificationFailed):
		return commonerrors.NewClassificationFailedError(err)
	case errors.Is(err, ErrInvalidInput):
		return commonerrors.NewInvalidMessageError(err.Error())
	case errors.Is(err, interpret.ErrNilCommand):
		return commonerrors.NewPreconditionViolationError(err)
	default:
		return err
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return h.failJob(ctx, client, job, err)
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"recognized": output.Recognized,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	std := commonerrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(std.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, std)
	return err
}
