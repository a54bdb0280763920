// internal/models/investor.go
package models

import "time"

type Investor struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	Name                string    `json:"name"`
	Firm                string    `json:"firm,omitempty"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone,omitempty"`
	PreferredIndustries []string  `json:"preferredIndustries,omitempty"`
	PreferredStages     []string  `json:"preferredStages,omitempty"`
	TicketSizeMin       float64   `json:"ticketSizeMin,omitempty"`
	TicketSizeMax       float64   `json:"ticketSizeMax,omitempty"`
	Status              string    `json:"status"`
	NewsletterOptIn     bool      `json:"newsletterOptIn"`
	CreatedAt           time.Time `json:"createdAt"`
}
