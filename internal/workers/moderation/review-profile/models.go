// internal/workers/moderation/review-profile/models.go
package reviewprofile

import "time"

const (
	ProfileTypeStartup  = "startup"
	ProfileTypeInvestor = "investor"

	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

type Input struct {
	ProfileType string `json:"profileType"`
	ProfileID   string `json:"profileId"`
	Decision    string `json:"decision"`
	ReviewerID  string `json:"reviewerId"`
	Reason      string `json:"reason,omitempty"`
}

type Output struct {
	ProfileID   string    `json:"profileId"`
	ProfileType string    `json:"profileType"`
	Status      string    `json:"status"`
	ReviewedBy  string    `json:"reviewedBy"`
	ReviewedAt  time.Time `json:"reviewedAt"`
	Indexed     bool      `json:"indexed"`
}
