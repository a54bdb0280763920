package sendnewsletter

import "time"

const (
	AudienceInvestors = "investors"
	AudienceStartups  = "startups"
	AudienceAll       = "all"
)

type Input struct {
	NewsletterID string `json:"newsletterId,omitempty"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	HTMLBody     string `json:"htmlBody,omitempty"`
	Audience     string `json:"audience"`
}

type Output struct {
	NewsletterID     string    `json:"newsletterId"`
	Audience         string    `json:"audience"`
	RecipientCount   int       `json:"recipientCount"`
	SentCount        int       `json:"sentCount"`
	FailedCount      int       `json:"failedCount"`
	FailedRecipients []string  `json:"failedRecipients"`
	CompletedAt      time.Time `json:"completedAt"`
}
