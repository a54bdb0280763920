// internal/workers/communication/send-newsletter/handler.go
package sendnewsletter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"venture-workers/internal/common/aws"
	"venture-workers/internal/common/camunda"
	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/common/metrics"
	"venture-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const TaskType = "send-newsletter"

const channel = "newsletter"

const (
	investorSubscribers = `SELECT name, email FROM investors WHERE newsletter_opt_in = true AND status = $1`
	startupSubscribers  = `SELECT name, contact_email FROM startups WHERE newsletter_opt_in = true AND status = $1`
)

var audienceQueries = map[string][]string{
	AudienceInvestors: {investorSubscribers},
	AudienceStartups:  {startupSubscribers},
	AudienceAll:       {investorSubscribers, startupSubscribers},
}

type EmailSender interface {
	Send(ctx context.Context, msg aws.Email) (string, error)
}

type Handler struct {
	config *Config
	db     *sql.DB
	email  EmailSender
	logger logger.Logger
	jobs   *camunda.JobResponder
	now    func() time.Time
	newID  func() string
}

func NewHandler(config *Config, db *sql.DB, email EmailSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		email:  email,
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

	if output.RecipientCount > 0 && output.SentCount == 0 {
		h.jobs.Fail(client, job, apperrors.NewNotificationSendFailedError(channel,
			fmt.Errorf("all %d recipients failed", output.RecipientCount)).
			WithMetadata("newsletterId", output.NewsletterID))
		return
	}

	h.jobs.Complete(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	audience := strings.ToLower(strings.TrimSpace(input.Audience))
	if audience == "" {
		audience = AudienceAll
	}
	queries, ok := audienceQueries[audience]
	if !ok {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("audience must be investors, startups or all, got %q", input.Audience))
	}
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.NewInvalidInputError("subject and body are required")
	}

	newsletterID := input.NewsletterID
	if newsletterID == "" {
		newsletterID = h.newID()
	}

	subscribers, err := h.loadSubscribers(ctx, audience, queries)
	if err != nil {
		return nil, err
	}

	results := h.deliver(ctx, input, subscribers)

	output := &Output{
		NewsletterID:     newsletterID,
		Audience:         audience,
		RecipientCount:   len(subscribers),
		FailedRecipients: []string{},
		CompletedAt:      h.now(),
	}
	for i, err := range results {
		if err != nil {
			output.FailedRecipients = append(output.FailedRecipients, subscribers[i].Email)
			continue
		}
		output.SentCount++
	}
	output.FailedCount = len(output.FailedRecipients)

	metrics.NotificationsSent.WithLabelValues(channel, "sent").Add(float64(output.SentCount))
	metrics.NotificationsSent.WithLabelValues(channel, "failed").Add(float64(output.FailedCount))

	h.logger.Info("newsletter delivered", map[string]interface{}{
		"newsletterId":   newsletterID,
		"audience":       audience,
		"recipientCount": output.RecipientCount,
		"sentCount":      output.SentCount,
		"failedCount":    output.FailedCount,
	})

	h.saveNewsletter(ctx, input, output)
	return output, nil
}

// deliver sends to every subscriber with at most Concurrency sends in flight.
// results[i] is the error for subscribers[i].
func (h *Handler) deliver(ctx context.Context, input *Input, subscribers []models.NewsletterSubscriber) []error {
	results := make([]error, len(subscribers))

	var g errgroup.Group
	g.SetLimit(h.concurrency())
	for i, sub := range subscribers {
		g.Go(func() error {
			_, err := h.email.Send(ctx, aws.Email{
				To:       sub.Email,
				Subject:  input.Subject,
				TextBody: personalize(input.Body, sub),
				HTMLBody: personalize(input.HTMLBody, sub),
			})
			if err != nil {
				h.logger.Warn("newsletter send failed", map[string]interface{}{
					"email": sub.Email,
					"error": err.Error(),
				})
			}
			results[i] = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (h *Handler) concurrency() int {
	if h.config.Concurrency < 1 {
		return 1
	}
	return h.config.Concurrency
}

func personalize(text string, sub models.NewsletterSubscriber) string {
	name := sub.Name
	if name == "" {
		name = "there"
	}
	return strings.ReplaceAll(text, "{{name}}", name)
}

// loadSubscribers returns the opted-in approved profiles, one entry per email.
func (h *Handler) loadSubscribers(ctx context.Context, audience string, queries []string) ([]models.NewsletterSubscriber, error) {
	seen := make(map[string]bool)
	subscribers := make([]models.NewsletterSubscriber, 0)

	for _, q := range queries {
		rows, err := h.db.QueryContext(ctx, q, models.ProfileStatusApproved)
		if err != nil {
			return nil, h.queryError(err)
		}
		for rows.Next() {
			var sub models.NewsletterSubscriber
			if err := rows.Scan(&sub.Name, &sub.Email); err != nil {
				rows.Close()
				return nil, h.queryError(err)
			}
			key := strings.ToLower(strings.TrimSpace(sub.Email))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			sub.Audience = audience
			subscribers = append(subscribers, sub)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, h.queryError(err)
		}
	}
	return subscribers, nil
}

func (h *Handler) queryError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError("newsletter_subscribers")
	}
	return apperrors.NewQueryExecutionFailedError("newsletter_subscribers", err)
}

func (h *Handler) saveNewsletter(ctx context.Context, input *Input, output *Output) {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO newsletters (id, subject, audience, recipient_count, sent_count, failed_count, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			recipient_count = EXCLUDED.recipient_count,
			sent_count = EXCLUDED.sent_count,
			failed_count = EXCLUDED.failed_count,
			completed_at = EXCLUDED.completed_at`,
		output.NewsletterID, input.Subject, output.Audience,
		output.RecipientCount, output.SentCount, output.FailedCount, output.CompletedAt,
	)
	if err != nil {
		h.logger.Warn("failed to record newsletter", map[string]interface{}{
			"newsletterId": output.NewsletterID,
			"error":        err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
