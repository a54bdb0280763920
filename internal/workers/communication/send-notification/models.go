package sendnotification

import "time"

const (
	RecipientInvestor = "investor"
	RecipientStartup  = "startup"

	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"

	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"`
	NotificationType string                 `json:"notificationType"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string     `json:"notificationId"`
	Status         string     `json:"status"`
	Channels       []string   `json:"channels"`
	MessageID      string     `json:"messageId,omitempty"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	Error          string     `json:"error,omitempty"`
}

type contact struct {
	Name  string
	Email string
	Phone string
}
