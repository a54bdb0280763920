// internal/workers/scoring/calculate-startup-score/handler.go
package calculatestartupscore

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
	"venture-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "calculate-startup-score"

	weightsCacheKey = "scoring:weights"
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
	jobs   *camunda.JobResponder
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
	if input.Inputs == nil && input.StartupID == "" {
		return nil, apperrors.NewScoringInputInvalidError("startupId or inputs is required")
	}
	if input.SaveScore && input.StartupID == "" {
		return nil, apperrors.NewScoringInputInvalidError("saveScore requires startupId")
	}

	inputs := input.Inputs
	if inputs == nil {
		var err error
		inputs, err = h.loadInputs(ctx, input.StartupID)
		if err != nil {
			return nil, err
		}
	}

	weights, source, err := h.resolveWeights(ctx, input.Weights)
	if err != nil {
		return nil, err
	}

	if !inputs.FundingStage.Known() || !inputs.ProductStage.Known() {
		h.logger.Warn("unknown stage scored as lowest", map[string]interface{}{
			"startupId":    input.StartupID,
			"fundingStage": inputs.FundingStage,
			"productStage": inputs.ProductStage,
		})
	}

	result := scoring.CalculateScore(*inputs, weights)
	metrics.StartupScores.Observe(result.FinalScore)

	if result.WeightsWarning {
		h.logger.Warn("weights do not sum to 100", map[string]interface{}{
			"startupId":  input.StartupID,
			"weightsSum": result.WeightsSum,
			"source":     source,
		})
	}

	output := &Output{
		StartupID:     input.StartupID,
		Result:        result,
		WeightsSource: source,
		ScoredAt:      h.now(),
	}

	if input.SaveScore {
		if err := h.saveScore(ctx, input.StartupID, result.FinalScore, output.ScoredAt); err != nil {
			return nil, err
		}
		output.Saved = true
	}

	h.logger.Info("startup score calculated", map[string]interface{}{
		"startupId":     input.StartupID,
		"finalScore":    result.FinalScore,
		"band":          result.Band,
		"weightsSource": source,
		"saved":         output.Saved,
	})

	return output, nil
}

func inputsCacheKey(startupID string) string {
	return "startup:scoring:" + startupID
}

func (h *Handler) loadInputs(ctx context.Context, startupID string) (*scoring.Inputs, error) {
	key := inputsCacheKey(startupID)
	if h.redis != nil {
		var cached scoring.Inputs
		hit, err := database.GetJSON(ctx, h.redis, key, &cached)
		if err != nil {
			h.logger.Warn("scoring inputs cache read failed", map[string]interface{}{
				"startupId": startupID,
				"error":     err.Error(),
			})
		}
		if hit {
			return &cached, nil
		}
	}

	const query = `
		SELECT founders_experience, founders_startups, founders_exits, team_size,
		       market_size, funding_stage, monthly_revenue, product_stage,
		       pitch_quality, COALESCE(competitive_advantage, '')
		FROM startups
		WHERE id = $1`

	// unset profile fields read as zero so the engine clamps them
	var (
		experience, startups, exits, team, pitch sql.NullInt64
		market, revenue                          sql.NullFloat64
		funding, product                         sql.NullString
		advantage                                string
	)
	err := h.db.QueryRowContext(ctx, query, startupID).Scan(
		&experience, &startups, &exits, &team,
		&market, &funding, &revenue, &product,
		&pitch, &advantage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewStartupNotFoundError(startupID)
	}
	if err != nil {
		return nil, queryError(ctx, "startup_details", err)
	}

	in := scoring.Inputs{
		FoundersExperience:   int(experience.Int64),
		FoundersStartups:     int(startups.Int64),
		FoundersExits:        int(exits.Int64),
		TeamSize:             int(team.Int64),
		MarketSize:           market.Float64,
		FundingStage:         scoring.FundingStage(funding.String),
		MonthlyRevenue:       revenue.Float64,
		ProductStage:         scoring.ProductStage(product.String),
		PitchQuality:         int(pitch.Int64),
		CompetitiveAdvantage: advantage,
	}

	if h.redis != nil {
		if err := database.SetJSON(ctx, h.redis, key, in, h.config.CacheTTL); err != nil {
			h.logger.Warn("scoring inputs cache write failed", map[string]interface{}{
				"startupId": startupID,
				"error":     err.Error(),
			})
		}
	}
	return &in, nil
}

// resolveWeights prefers job weights, then stored weights, then configured defaults.
func (h *Handler) resolveWeights(ctx context.Context, override map[string]int) (scoring.Weights, string, error) {
	if len(override) > 0 {
		w, unknown := h.config.DefaultWeights.Merge(override)
		if len(unknown) > 0 {
			return scoring.Weights{}, "", apperrors.NewScoringInputInvalidError(
				"unknown weight factors: " + strings.Join(unknown, ", "))
		}
		return w, WeightsSourceInput, nil
	}

	if h.redis != nil {
		var cached map[string]int
		hit, err := database.GetJSON(ctx, h.redis, weightsCacheKey, &cached)
		if err != nil {
			h.logger.Warn("weights cache read failed", map[string]interface{}{"error": err.Error()})
		}
		if hit && len(cached) > 0 {
			w, _ := h.config.DefaultWeights.Merge(cached)
			return w, WeightsSourceCache, nil
		}
	}

	stored, err := h.storedWeights(ctx)
	if err != nil {
		h.logger.Warn("stored weights unavailable, using defaults", map[string]interface{}{"error": err.Error()})
		return h.config.DefaultWeights, WeightsSourceDefaults, nil
	}
	if len(stored) == 0 {
		return h.config.DefaultWeights, WeightsSourceDefaults, nil
	}

	if h.redis != nil {
		if err := database.SetJSON(ctx, h.redis, weightsCacheKey, stored, h.config.CacheTTL); err != nil {
			h.logger.Warn("weights cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	w, unknown := h.config.DefaultWeights.Merge(stored)
	if len(unknown) > 0 {
		h.logger.Warn("ignoring unknown stored weight factors", map[string]interface{}{"factors": unknown})
	}
	return w, WeightsSourceDatabase, nil
}

func (h *Handler) storedWeights(ctx context.Context) (map[string]int, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT factor, weight FROM scoring_weights WHERE is_active = true`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var factor string
		var weight int
		if err := rows.Scan(&factor, &weight); err != nil {
			return nil, err
		}
		out[factor] = weight
	}
	return out, rows.Err()
}

func (h *Handler) saveScore(ctx context.Context, startupID string, score float64, at time.Time) error {
	res, err := h.db.ExecContext(ctx,
		`UPDATE startups SET investability_score = $1, scored_at = $2 WHERE id = $3`,
		score, at, startupID)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewStartupNotFoundError(startupID)
	}
	return nil
}

func queryError(ctx context.Context, queryType string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(queryType)
	}
	return apperrors.NewQueryExecutionFailedError(queryType, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
