// internal/workers/profile/validate-profile-data/handler.go
package validateprofiledata

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"venture-workers/internal/common/camunda"
	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/common/validation"
	"venture-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "validate-profile-data"

//go:embed schemas/*.json
var schemaFS embed.FS

var schemas = map[string]*validation.Schema{
	"startup":  mustLoadSchema("startup"),
	"investor": mustLoadSchema("investor"),
}

func mustLoadSchema(name string) *validation.Schema {
	src, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		panic(err)
	}
	return validation.MustCompileSchema(name, string(src))
}

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

	if !output.IsValid {
		h.jobs.Fail(client, job, apperrors.NewProfileValidationFailedError(summarize(output.ValidationErrors)).
			WithMetadata("validationErrors", output.ValidationErrors))
		return
	}

	h.jobs.Complete(client, job, output)
}

// execute reports invalid data in the output; only unusable input is an error.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	profileType := strings.ToLower(strings.TrimSpace(input.ProfileType))
	schema, ok := schemas[profileType]
	if !ok {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("profileType must be startup or investor, got %q", input.ProfileType))
	}
	if input.ProfileData == nil {
		return nil, apperrors.NewInvalidInputError("profileData is required")
	}

	data := normalize(profileType, input.ProfileData)

	res, err := schema.Validate(data)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	errs := res.Errors
	if profileType == "investor" {
		errs = append(errs, checkTicketRange(data)...)
	}

	output := &Output{
		IsValid:     len(errs) == 0,
		ProfileType: profileType,
	}
	if output.IsValid {
		output.ValidatedData = data
	} else {
		output.ValidationErrors = errs
	}

	h.logger.Info("profile data validated", map[string]interface{}{
		"profileType": profileType,
		"isValid":     output.IsValid,
		"errorCount":  len(errs),
	})
	return output, nil
}

// normalize trims every string and canonicalises stage names so
// "Series A" validates as "series-a".
func normalize(profileType string, in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = trimValue(v)
	}

	if profileType == "startup" {
		if s, ok := out["fundingStage"].(string); ok {
			out["fundingStage"] = string(scoring.FundingStage(s).Normalize())
		}
		if s, ok := out["productStage"].(string); ok {
			out["productStage"] = string(scoring.ProductStage(s).Normalize())
		}
		if s, ok := out["contactEmail"].(string); ok {
			out["contactEmail"] = strings.ToLower(s)
		}
	}
	if profileType == "investor" {
		if stages, ok := out["preferredStages"].([]interface{}); ok {
			for i, st := range stages {
				if s, ok := st.(string); ok {
					stages[i] = string(scoring.FundingStage(s).Normalize())
				}
			}
		}
		if s, ok := out["email"].(string); ok {
			out["email"] = strings.ToLower(s)
		}
	}
	return out
}

func trimValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		items := make([]interface{}, len(t))
		for i, item := range t {
			items[i] = trimValue(item)
		}
		return items
	default:
		return v
	}
}

func checkTicketRange(data map[string]interface{}) []validation.ValidationError {
	lo, okLo := data["ticketSizeMin"].(float64)
	hi, okHi := data["ticketSizeMax"].(float64)
	if okLo && okHi && lo > hi {
		return []validation.ValidationError{{
			Field:   "ticketSizeMax",
			Message: "ticketSizeMax must be greater than or equal to ticketSizeMin",
			Code:    "RANGE",
		}}
	}
	return nil
}

func summarize(errs []validation.ValidationError) string {
	r := validation.ValidationResult{Errors: errs}
	return r.Summary()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
