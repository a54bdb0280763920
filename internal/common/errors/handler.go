// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns worker errors into Zeebe fail or throw commands.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decision describes what HandleJobError did with an error.
type Decision struct {
	Error   *BPMNError
	Retry   bool
	Retries int
	// SendErr is set when the broker never accepted the fail or throw command.
	SendErr error
}

// Decide picks fail-with-retries or throw without talking to the broker.
func Decide(err error, jobRetries int32) Decision {
	bpmnErr := ConvertToBPMNError(Normalize(err))

	// job.Retries counts the attempt that just failed
	remaining := int(jobRetries) - 1
	if bpmnErr.Retries > 0 && remaining > 0 {
		retries := bpmnErr.Retries
		if remaining < retries {
			retries = remaining
		}
		return Decision{Error: bpmnErr, Retry: true, Retries: retries}
	}
	return Decision{Error: bpmnErr}
}

// HandleJobError fails the job with retries when the error is retryable and
// retries remain; otherwise it throws a BPMN error the process can catch.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Decision {
	d := Decide(err, job.Retries)
	h.logError(job, d)

	if d.Retry {
		d.SendErr = h.failJobWithRetries(ctx, client, job, d.Error, d.Retries)
	} else {
		d.SendErr = h.throwBPMNError(ctx, client, job, d.Error)
	}
	if d.SendErr != nil {
		h.logSendFailure(job, d, d.SendErr)
	}
	return d
}

// Normalize makes sure every error carries a code.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) error {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			_, err := withVars.Send(ctx)
			return err
		}
	}

	_, err := cmd.Send(ctx)
	return err
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			_, err := withVars.Send(ctx)
			return err
		}
	}

	_, err := cmd.Send(ctx)
	return err
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        d.Error.Code,
		"message":          d.Error.Message,
		"details":          d.Error.Details,
		"retryable":        d.Error.Retryable,
		"retry":            d.Retry,
		"retries":          d.Retries,
		"errorCategory":    GetErrorCategory(ErrorCode(d.Error.Code)),
		"workflowInstance": job.ProcessInstanceKey,
	})
}

func (h *ErrorHandler) logSendFailure(job entities.Job, d Decision, err error) {
	command := "throw"
	if d.Retry {
		command = "fail"
	}
	h.logger.Error("failed to send job error command", map[string]interface{}{
		"jobKey":  job.Key,
		"command": command,
		"error":   err.Error(),
	})
}
