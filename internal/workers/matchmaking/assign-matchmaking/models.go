// internal/workers/matchmaking/assign-matchmaking/models.go
package assignmatchmaking

import "time"

type Input struct {
	InvestorID string   `json:"investorId"`
	StartupIDs []string `json:"startupIds"`
	AssignedBy string   `json:"assignedBy"`
	Note       string   `json:"note,omitempty"`
}

type Output struct {
	InvestorID     string    `json:"investorId"`
	MatchmakingIDs []string  `json:"matchmakingIds"`
	StartupIDs     []string  `json:"startupIds"`
	AssignedAt     time.Time `json:"assignedAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	VisibleCount   int       `json:"visibleCount"`
}
