// internal/workers/matchmaking/assign-matchmaking/handler.go
package assignmatchmaking

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
	"venture-workers/internal/common/metrics"
	"venture-workers/internal/models"
	"venture-workers/internal/workers/data-access/query-postgresql/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "assign-matchmaking"

	auditActionAssigned = "matchmaking.assigned"
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	jobs   *camunda.JobResponder
	now    func() time.Time
	newID  func() string
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		logger: log,
		jobs:   camunda.NewJobResponder(TaskType, log),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
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
	startupIDs, err := h.validate(input)
	if err != nil {
		return nil, err
	}

	assignedAt := h.now()
	expiresAt := models.ExpiryFrom(assignedAt, h.config.VisibilityDays)
	output := &Output{
		InvestorID: input.InvestorID,
		StartupIDs: startupIDs,
		AssignedAt: assignedAt,
		ExpiresAt:  expiresAt,
	}

	err = database.InTx(ctx, h.db, func(tx *sql.Tx) error {
		if err := h.checkProfile(ctx, tx, "investor", `SELECT status FROM investors WHERE id = $1 FOR UPDATE`, input.InvestorID); err != nil {
			return err
		}
		for _, id := range startupIDs {
			if err := h.checkProfile(ctx, tx, "startup", `SELECT status FROM startups WHERE id = $1`, id); err != nil {
				return err
			}
		}

		visible, err := queries.VisibleMatchmakings(ctx, tx, input.InvestorID, assignedAt)
		if err != nil {
			return apperrors.NewQueryExecutionFailedError("investor_matchmakings", err)
		}
		for _, m := range visible {
			for _, id := range startupIDs {
				if m.StartupID == id {
					return apperrors.NewDuplicateMatchmakingError(input.InvestorID, id)
				}
			}
		}
		if len(visible)+len(startupIDs) > h.config.MaxStartupsPerInvestor {
			return apperrors.NewMatchmakingLimitExceededError(input.InvestorID, h.config.MaxStartupsPerInvestor).
				WithMetadata("visibleCount", len(visible))
		}

		for _, startupID := range startupIDs {
			id := h.newID()
			_, err := tx.ExecContext(ctx, `
				INSERT INTO matchmakings (id, investor_id, startup_id, assigned_by, note, status, created_at, expires_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				id, input.InvestorID, startupID, input.AssignedBy, input.Note,
				models.MatchmakingStatusActive, assignedAt, expiresAt)
			if err != nil {
				return apperrors.NewDatabaseInsertFailedError(err)
			}
			output.MatchmakingIDs = append(output.MatchmakingIDs, id)
		}

		_, err = database.WriteAudit(ctx, tx, database.AuditEntry{
			ActorID:    input.AssignedBy,
			Action:     auditActionAssigned,
			EntityType: "investor",
			EntityID:   input.InvestorID,
			Details: map[string]interface{}{
				"startupIds":     startupIDs,
				"matchmakingIds": output.MatchmakingIDs,
				"expiresAt":      expiresAt.Format(time.RFC3339),
			},
			At: assignedAt,
		})
		if err != nil {
			return apperrors.NewDatabaseInsertFailedError(err)
		}

		output.VisibleCount = len(visible) + len(startupIDs)
		return nil
	})
	if err != nil {
		if _, ok := apperrors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}

	metrics.MatchmakingsAssigned.Add(float64(len(output.MatchmakingIDs)))
	h.logger.Info("matchmaking assigned", map[string]interface{}{
		"investorId":   input.InvestorID,
		"startupIds":   startupIDs,
		"assignedBy":   input.AssignedBy,
		"expiresAt":    expiresAt,
		"visibleCount": output.VisibleCount,
	})

	return output, nil
}

// validate trims ids and rejects empty, duplicate or too many startups.
func (h *Handler) validate(input *Input) ([]string, error) {
	if strings.TrimSpace(input.InvestorID) == "" {
		return nil, apperrors.NewMatchmakingInvalidRequestError("investorId is required")
	}
	if strings.TrimSpace(input.AssignedBy) == "" {
		return nil, apperrors.NewMatchmakingInvalidRequestError("assignedBy is required")
	}
	if len(input.StartupIDs) == 0 {
		return nil, apperrors.NewMatchmakingInvalidRequestError("at least one startupId is required")
	}
	if len(input.StartupIDs) > h.config.MaxStartupsPerInvestor {
		return nil, apperrors.NewMatchmakingLimitExceededError(input.InvestorID, h.config.MaxStartupsPerInvestor)
	}

	seen := make(map[string]bool, len(input.StartupIDs))
	ids := make([]string, 0, len(input.StartupIDs))
	for _, raw := range input.StartupIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, apperrors.NewMatchmakingInvalidRequestError("startupIds must not contain empty values")
		}
		if seen[id] {
			return nil, apperrors.NewMatchmakingInvalidRequestError(fmt.Sprintf("startupId %s is listed twice", id))
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// checkProfile requires the profile to exist and be approved.
func (h *Handler) checkProfile(ctx context.Context, tx *sql.Tx, kind, query, id string) error {
	var status string
	err := tx.QueryRowContext(ctx, query, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewResourceNotFoundError(kind, fmt.Sprintf("%sId: %s", kind, id))
	}
	if err != nil {
		return apperrors.NewQueryExecutionFailedError(kind+"_status", err)
	}
	if status != models.ProfileStatusApproved {
		return apperrors.NewMatchmakingInvalidRequestError(fmt.Sprintf("%s %s is %s, not approved", kind, id, status))
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
