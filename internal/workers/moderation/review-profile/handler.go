// internal/workers/moderation/review-profile/handler.go
package reviewprofile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"venture-workers/internal/common/camunda"
	"venture-workers/internal/common/database"
	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/models"
	"venture-workers/internal/workers/data-access/query-postgresql/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "review-profile"

// Indexer keeps the startup browse index in step with moderation.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
	DeleteDocument(ctx context.Context, index, id string) error
}

var profileTables = map[string]string{
	ProfileTypeStartup:  "startups",
	ProfileTypeInvestor: "investors",
}

type Handler struct {
	config  *Config
	db      *sql.DB
	indexer Indexer
	logger  logger.Logger
	jobs    *camunda.JobResponder
	now     func() time.Time
}

func NewHandler(config *Config, db *sql.DB, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		db:      db,
		indexer: indexer,
		logger:  log,
		jobs:    camunda.NewJobResponder(TaskType, log),
		now:     func() time.Time { return time.Now().UTC() },
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
	table, status, err := h.validate(input)
	if err != nil {
		return nil, err
	}

	reviewedAt := h.now()
	err = database.InTx(ctx, h.db, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM `+table+` WHERE id = $1 FOR UPDATE`, input.ProfileID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewResourceNotFoundError(input.ProfileType, fmt.Sprintf("profileId: %s", input.ProfileID))
		}
		if err != nil {
			return apperrors.NewQueryExecutionFailedError(input.ProfileType+"_status", err)
		}
		if current != models.ProfileStatusPending {
			return apperrors.NewProfileAlreadyReviewedError(input.ProfileID, current)
		}

		var reason sql.NullString
		if status == models.ProfileStatusRejected {
			reason = sql.NullString{String: input.Reason, Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE `+table+` SET status = $1, reviewed_at = $2, reviewed_by = $3, rejection_reason = $4 WHERE id = $5`,
			status, reviewedAt, input.ReviewerID, reason, input.ProfileID)
		if err != nil {
			return apperrors.NewDatabaseInsertFailedError(err)
		}

		_, err = database.WriteAudit(ctx, tx, database.AuditEntry{
			ActorID:    input.ReviewerID,
			Action:     "profile." + status,
			EntityType: input.ProfileType,
			EntityID:   input.ProfileID,
			Details: map[string]interface{}{
				"previousStatus": current,
				"reason":         input.Reason,
			},
			At: reviewedAt,
		})
		if err != nil {
			return apperrors.NewDatabaseInsertFailedError(err)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}

	output := &Output{
		ProfileID:   input.ProfileID,
		ProfileType: input.ProfileType,
		Status:      status,
		ReviewedBy:  input.ReviewerID,
		ReviewedAt:  reviewedAt,
	}

	if input.ProfileType == ProfileTypeStartup {
		output.Indexed = h.syncIndex(ctx, input.ProfileID, status)
	}

	h.logger.Info("profile reviewed", map[string]interface{}{
		"profileType": input.ProfileType,
		"profileId":   input.ProfileID,
		"status":      status,
		"reviewerId":  input.ReviewerID,
		"indexed":     output.Indexed,
	})

	return output, nil
}

// validate returns the profile table and the target status.
func (h *Handler) validate(input *Input) (string, string, error) {
	input.ProfileType = strings.ToLower(strings.TrimSpace(input.ProfileType))
	input.Decision = strings.ToLower(strings.TrimSpace(input.Decision))
	input.Reason = strings.TrimSpace(input.Reason)

	table, ok := profileTables[input.ProfileType]
	if !ok {
		return "", "", apperrors.NewInvalidInputError(fmt.Sprintf("profileType must be startup or investor, got %q", input.ProfileType))
	}
	if input.ProfileID == "" {
		return "", "", apperrors.NewInvalidInputError("profileId is required")
	}
	if input.ReviewerID == "" {
		return "", "", apperrors.NewInvalidInputError("reviewerId is required")
	}

	switch input.Decision {
	case DecisionApprove:
		return table, models.ProfileStatusApproved, nil
	case DecisionReject:
		if input.Reason == "" {
			return "", "", apperrors.NewModerationInvalidDecisionError("reason is required when rejecting")
		}
		return table, models.ProfileStatusRejected, nil
	default:
		return "", "", apperrors.NewModerationInvalidDecisionError(fmt.Sprintf("decision must be approve or reject, got %q", input.Decision))
	}
}

// syncIndex adds approved startups to the browse index and removes rejected
// ones. Failures are logged; the review itself already committed.
func (h *Handler) syncIndex(ctx context.Context, startupID, status string) bool {
	if h.indexer == nil {
		return false
	}

	if status == models.ProfileStatusRejected {
		if err := h.indexer.DeleteDocument(ctx, h.config.StartupIndex, startupID); err != nil {
			h.logger.Warn("failed to remove startup from index", map[string]interface{}{
				"startupId": startupID,
				"error":     err.Error(),
			})
			return false
		}
		return true
	}

	s, err := queries.GetStartup(ctx, h.db, startupID)
	if err != nil {
		h.logger.Warn("failed to load startup for indexing", map[string]interface{}{
			"startupId": startupID,
			"error":     err.Error(),
		})
		return false
	}
	if err := h.indexer.IndexDocument(ctx, h.config.StartupIndex, s.ID, s.SearchDocument()); err != nil {
		h.logger.Warn("failed to index startup", map[string]interface{}{
			"startupId": startupID,
			"error":     err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
