// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"
	"time"

	"venture-workers/internal/common/logger"
	"venture-workers/internal/common/metrics"
	"venture-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

const (
	OutcomeCompleted   = "completed"
	OutcomeFailed      = "failed"
	OutcomeErrorThrown = "error_thrown"
	OutcomeNone        = "none"
	// the handler issued a command the broker never accepted
	OutcomeSendFailed = "send_failed"
)

// WorkerOptions are the per-task settings passed to the Zeebe job worker.
type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
}

// StartWorker opens a job worker for opts.TaskType with an instrumented handler.
func StartWorker(client zbc.Client, opts WorkerOptions, handler worker.JobHandler, log logger.Logger, obs *observability.Observability) worker.JobWorker {
	w := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(Instrument(opts.TaskType, handler, obs)).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      opts.TaskType,
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})
	return w
}

// Instrument wraps handler with job metrics and a span.
func Instrument(taskType string, handler worker.JobHandler, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		ctx, span := obs.StartJob(context.Background(), taskType, job.Key, job.ProcessInstanceKey)

		tc := &trackingClient{JobClient: client, ctx: ctx}
		start := time.Now()
		handler(tc, job)
		elapsed := time.Since(start)

		outcome := tc.Outcome()
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		metrics.WorkerJobOutcomes.WithLabelValues(taskType, outcome).Inc()
		obs.RecordJob(ctx, taskType, outcome, elapsed)
		observability.EndJob(span, outcome, outcome != OutcomeCompleted)
	}
}

// JobContext returns the context Instrument opened for the job. It carries
// the job span; handlers not wrapped by Instrument get context.Background().
func JobContext(client worker.JobClient) context.Context {
	if tc, ok := client.(*trackingClient); ok && tc.ctx != nil {
		return tc.ctx
	}
	return context.Background()
}

// markSendFailed flags the job when its terminal command could not be sent.
func markSendFailed(client worker.JobClient) {
	if tc, ok := client.(*trackingClient); ok {
		tc.set(OutcomeSendFailed)
	}
}

// trackingClient records which terminal command a handler created and
// whether the broker accepted it.
type trackingClient struct {
	worker.JobClient
	ctx context.Context

	mu      sync.Mutex
	outcome string
}

func (c *trackingClient) set(outcome string) {
	c.mu.Lock()
	if c.outcome != OutcomeSendFailed {
		c.outcome = outcome
	}
	c.mu.Unlock()
}

func (c *trackingClient) Outcome() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome == "" {
		return OutcomeNone
	}
	return c.outcome
}

func (c *trackingClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.set(OutcomeCompleted)
	return c.JobClient.NewCompleteJobCommand()
}

func (c *trackingClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.set(OutcomeFailed)
	return c.JobClient.NewFailJobCommand()
}

func (c *trackingClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.set(OutcomeErrorThrown)
	return c.JobClient.NewThrowErrorCommand()
}
