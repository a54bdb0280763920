// internal/workers/infrastructure/verify-admin-access/handler.go
package verifyadminaccess

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"venture-workers/internal/common/camunda"
	"venture-workers/internal/common/database"
	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const TaskType = "verify-admin-access"

const cachePrefix = "role:"

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
	jobs   *camunda.JobResponder
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		redis:  rdb,
		logger: log,
		jobs:   camunda.NewJobResponder(TaskType, log),
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
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewInvalidInputError("userId is required")
	}
	required := strings.ToLower(strings.TrimSpace(input.RequiredRole))
	if required == "" {
		required = models.RoleAdmin
	}

	roles, err := h.loadRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, r := range roles {
		if r.Satisfies(required) {
			return &Output{Allowed: true, UserID: userID, Role: r.Role}, nil
		}
	}

	h.logger.Warn("access denied", map[string]interface{}{
		"userId":       userID,
		"requiredRole": required,
		"roleCount":    len(roles),
	})
	if len(roles) == 0 {
		return nil, apperrors.NewAccessDeniedError(userID, "no roles assigned")
	}
	return nil, apperrors.NewAccessDeniedError(userID, "requires role: "+required).
		WithMetadata("requiredRole", required)
}

// loadRoles reads the cache first. Users without roles are not cached so a
// grant takes effect on the next check.
func (h *Handler) loadRoles(ctx context.Context, userID string) ([]models.UserRole, error) {
	cacheKey := cachePrefix + userID

	var cached []models.UserRole
	hit, err := database.GetJSON(ctx, h.redis, cacheKey, &cached)
	if err != nil {
		h.logger.Warn("role cache read failed", map[string]interface{}{"userId": userID, "error": err.Error()})
	}
	if hit {
		return cached, nil
	}

	rows, err := h.db.QueryContext(ctx, `SELECT role, is_active FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, apperrors.NewRoleCheckFailedError(err)
	}
	defer rows.Close()

	var roles []models.UserRole
	for rows.Next() {
		r := models.UserRole{UserID: userID}
		if err := rows.Scan(&r.Role, &r.IsActive); err != nil {
			return nil, apperrors.NewRoleCheckFailedError(err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRoleCheckFailedError(err)
	}

	if len(roles) > 0 {
		if err := database.SetJSON(ctx, h.redis, cacheKey, roles, h.config.CacheTTL); err != nil {
			h.logger.Warn("role cache write failed", map[string]interface{}{"userId": userID, "error": err.Error()})
		}
	}
	return roles, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
