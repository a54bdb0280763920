// internal/workers/scoring/rank-startups/handler.go
package rankstartups

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"venture-workers/internal/common/camunda"
	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "rank-startups"

type Handler struct {
	config *Config
	logger logger.Logger
	jobs   *camunda.JobResponder
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
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
	weights, unknown := h.config.DefaultWeights.Merge(input.Weights)
	if len(unknown) > 0 {
		return nil, apperrors.NewScoringInputInvalidError("unknown weight factors: " + strings.Join(unknown, ", "))
	}

	ranked := make([]RankedStartup, 0, len(input.Startups))
	warning := false
	for _, c := range input.Startups {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		res := scoring.CalculateScore(c.Inputs, weights)
		warning = warning || res.WeightsWarning
		if res.FinalScore < input.MinScore {
			continue
		}
		ranked = append(ranked, RankedStartup{
			StartupID:    c.ID,
			Name:         c.Name,
			Score:        res.FinalScore,
			DisplayScore: res.DisplayScore,
			Band:         res.Band,
		})
	}

	sortRanked(ranked)

	qualified := len(ranked)
	if limit := clampLimit(input.Limit); len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	h.logger.Info("startups ranked", map[string]interface{}{
		"evaluated": len(input.Startups),
		"qualified": qualified,
		"returned":  len(ranked),
		"minScore":  input.MinScore,
	})

	return &Output{
		Ranked:         ranked,
		TotalEvaluated: len(input.Startups),
		TotalQualified: qualified,
		WeightsWarning: warning,
	}, nil
}

// sortRanked orders by score descending, then name and id so equal scores rank deterministically.
func sortRanked(r []RankedStartup) {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		if r[i].Name != r[j].Name {
			return r[i].Name < r[j].Name
		}
		return r[i].StartupID < r[j].StartupID
	})
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
