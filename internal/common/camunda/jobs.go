package camunda

import (
	"context"
	"time"

	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const commandTimeout = 10 * time.Second

// JobResponder sends the terminal command for a job: complete on success,
// fail or throw through the ErrorHandler otherwise.
type JobResponder struct {
	taskType string
	logger   logger.Logger
	errors   *apperrors.ErrorHandler
	retry    RetryConfig
}

func NewJobResponder(taskType string, log logger.Logger) *JobResponder {
	return &JobResponder{
		taskType: taskType,
		logger:   log,
		errors:   apperrors.NewErrorHandler(log),
		retry:    RetryConfig{MaxRetries: 2, BaseDelay: 200 * time.Millisecond, MaxDelay: time.Second},
	}
}

// Complete sends output as the job's result variables.
func (r *JobResponder) Complete(client worker.JobClient, job entities.Job, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		r.Fail(client, job, apperrors.NewInternalError(err))
		return
	}

	ctx, cancel := context.WithTimeout(JobContext(client), commandTimeout)
	defer cancel()

	err = Retry(ctx, r.retry, IsTransient, func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		markSendFailed(client)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	r.logger.Info("job completed", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
}

// Fail reports err to the engine.
func (r *JobResponder) Fail(client worker.JobClient, job entities.Job, err error) {
	ctx, cancel := context.WithTimeout(JobContext(client), commandTimeout)
	defer cancel()

	d := r.errors.HandleJobError(ctx, client, job, err)
	if d.SendErr != nil {
		markSendFailed(client)
		return
	}
	metrics.WorkerJobsFailed.WithLabelValues(r.taskType, d.Error.Code).Inc()
}
