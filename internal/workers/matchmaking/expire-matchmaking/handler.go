// internal/workers/matchmaking/expire-matchmaking/handler.go
package expirematchmaking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venture-workers/internal/common/camunda"
	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/common/metrics"
	"venture-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "expire-matchmaking"

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	jobs   *camunda.JobResponder
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		logger: log,
		jobs:   camunda.NewJobResponder(TaskType, log),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.jobs.Fail(client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(camunda.JobContext(client), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.jobs.Fail(client, job, err)
		return
	}

	h.jobs.Complete(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	asOf := h.now()
	if input.AsOf != "" {
		t, err := time.Parse(time.RFC3339, input.AsOf)
		if err != nil {
			return nil, apperrors.NewInvalidInputError(fmt.Sprintf("asOf must be RFC3339: %v", err))
		}
		asOf = t.UTC()
	}

	// expires_at <= asOf is exactly the complement of Matchmaking.IsVisible
	rows, err := h.db.QueryContext(ctx, `
		UPDATE matchmakings
		SET status = $1, archived_at = $2
		WHERE status = $3 AND expires_at <= $2
		RETURNING id`,
		models.MatchmakingStatusArchived, asOf, models.MatchmakingStatusActive)
	if err != nil {
		return nil, h.queryError(ctx, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, h.queryError(ctx, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, h.queryError(ctx, err)
	}

	metrics.MatchmakingsArchived.Add(float64(len(ids)))
	h.logger.Info("expired matchmakings archived", map[string]interface{}{
		"archivedCount": len(ids),
		"asOf":          asOf,
	})

	return &Output{
		ArchivedCount: len(ids),
		ArchivedIDs:   ids,
		AsOf:          asOf,
	}, nil
}

func (h *Handler) queryError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return apperrors.NewQueryTimeoutError("expire_matchmakings")
	}
	return apperrors.NewQueryExecutionFailedError("expire_matchmakings", err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
