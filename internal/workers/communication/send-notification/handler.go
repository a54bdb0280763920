// internal/workers/communication/send-notification/handler.go
package sendnotification

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "send-notification"

// EmailSender is satisfied by *aws.Mailer.
type EmailSender interface {
	Send(ctx context.Context, msg aws.Email) (string, error)
}

// SMSSender is satisfied by *aws.SMSSender.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config *Config
	db     *sql.DB
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
	jobs   *camunda.JobResponder
	now    func() time.Time
	newID  func() string
}

func NewHandler(config *Config, db *sql.DB, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		email:  email,
		sms:    sms,
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

	if output.Status == StatusFailed {
		h.jobs.Fail(client, job, apperrors.NewNotificationSendFailedError(input.NotificationType, errors.New(output.Error)).
			WithMetadata("notificationId", output.NotificationID))
		return
	}

	h.jobs.Complete(client, job, output)
}

// execute reports delivery failure through Output.Status; only bad input and
// recipient lookups are errors.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := normalize(input); err != nil {
		return nil, err
	}
	tmpl := templates[input.NotificationType]

	to, err := h.lookupContact(ctx, input.RecipientType, input.RecipientID)
	if err != nil {
		return nil, err
	}

	vars := map[string]interface{}{"name": to.Name}
	for k, v := range input.Metadata {
		vars[k] = v
	}
	subject := render(tmpl.Subject, vars)
	body := render(tmpl.Body, vars)

	output := &Output{
		NotificationID: h.newID(),
		Status:         StatusDisabled,
		Channels:       []string{},
	}

	var failures []string
	delivered := false

	if h.config.EmailEnabled && h.email != nil {
		id, err := h.email.Send(ctx, aws.Email{To: to.Email, Subject: subject, TextBody: body})
		if err != nil {
			failures = append(failures, err.Error())
			h.record(ChannelEmail, StatusFailed, input, err)
		} else {
			delivered = true
			output.MessageID = id
			output.Channels = append(output.Channels, ChannelEmail)
			h.record(ChannelEmail, StatusSent, input, nil)
		}
	}

	if h.smsWanted(input.Priority) {
		if to.Phone == "" {
			h.logger.Debug("no phone on file, skipping sms", map[string]interface{}{"recipientId": input.RecipientID})
		} else if _, err := h.sms.SendSMS(ctx, to.Phone, subject); err != nil {
			failures = append(failures, err.Error())
			h.record(ChannelSMS, StatusFailed, input, err)
		} else {
			delivered = true
			output.Channels = append(output.Channels, ChannelSMS)
			h.record(ChannelSMS, StatusSent, input, nil)
		}
	}

	switch {
	case delivered:
		output.Status = StatusSent
		sentAt := h.now()
		output.SentAt = &sentAt
	case len(failures) > 0:
		output.Status = StatusFailed
		output.Error = strings.Join(failures, "; ")
	}

	h.saveNotification(ctx, output, input)
	return output, nil
}

func normalize(input *Input) error {
	input.RecipientID = strings.TrimSpace(input.RecipientID)
	input.RecipientType = strings.ToLower(strings.TrimSpace(input.RecipientType))
	input.NotificationType = strings.ToLower(strings.TrimSpace(input.NotificationType))
	input.Priority = strings.ToLower(strings.TrimSpace(input.Priority))
	if input.Priority == "" {
		input.Priority = PriorityNormal
	}

	if input.RecipientID == "" {
		return apperrors.NewInvalidInputError("recipientId is required")
	}
	if input.RecipientType != RecipientInvestor && input.RecipientType != RecipientStartup {
		return apperrors.NewInvalidInputError(fmt.Sprintf("recipientType must be investor or startup, got %q", input.RecipientType))
	}
	if _, ok := templates[input.NotificationType]; !ok {
		return apperrors.NewInvalidInputError(fmt.Sprintf("unknown notificationType %q", input.NotificationType))
	}
	switch input.Priority {
	case PriorityLow, PriorityNormal, PriorityHigh:
	default:
		return apperrors.NewInvalidInputError(fmt.Sprintf("priority must be low, normal or high, got %q", input.Priority))
	}
	return nil
}

func (h *Handler) smsWanted(priority string) bool {
	return h.config.SMSEnabled && h.sms != nil && priority == h.config.SMSPriority
}

func (h *Handler) lookupContact(ctx context.Context, recipientType, id string) (*contact, error) {
	query := `SELECT name, email, COALESCE(phone, '') FROM investors WHERE id = $1`
	if recipientType == RecipientStartup {
		query = `SELECT name, contact_email, COALESCE(contact_phone, '') FROM startups WHERE id = $1`
	}

	var c contact
	err := h.db.QueryRowContext(ctx, query, id).Scan(&c.Name, &c.Email, &c.Phone)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, apperrors.NewResourceNotFoundError(recipientType, fmt.Sprintf("id: %s", id))
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewQueryTimeoutError("notification_recipient")
	case err != nil:
		return nil, apperrors.NewQueryExecutionFailedError("notification_recipient", err)
	}
	return &c, nil
}

func (h *Handler) record(channel, status string, input *Input, err error) {
	metrics.NotificationsSent.WithLabelValues(channel, status).Inc()
	fields := map[string]interface{}{
		"channel":          channel,
		"status":           status,
		"recipientId":      input.RecipientID,
		"notificationType": input.NotificationType,
	}
	if err != nil {
		fields["error"] = err.Error()
		h.logger.Warn("notification delivery failed", fields)
		return
	}
	h.logger.Info("notification delivered", fields)
}

// saveNotification keeps a history row. Delivery already happened, so a
// failed insert is only logged.
func (h *Handler) saveNotification(ctx context.Context, output *Output, input *Input) {
	payload, err := json.Marshal(input.Metadata)
	if err != nil {
		payload = []byte("{}")
	}
	var sentAt sql.NullTime
	if output.SentAt != nil {
		sentAt = sql.NullTime{Time: *output.SentAt, Valid: true}
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, recipient_type, type, channels, status, payload, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		output.NotificationID, input.RecipientID, input.RecipientType, input.NotificationType,
		strings.Join(output.Channels, ","), output.Status, payload, sentAt, h.now(),
	)
	if err != nil {
		h.logger.Warn("failed to record notification", map[string]interface{}{
			"notificationId": output.NotificationID,
			"error":          err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
