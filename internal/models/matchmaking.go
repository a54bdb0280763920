// internal/models/matchmaking.go
package models

import "time"

const (
	MatchmakingStatusActive   = "active"
	MatchmakingStatusArchived = "archived"
)

// Matchmaking pairs one investor with one startup for a limited window.
type Matchmaking struct {
	ID         string     `json:"id"`
	InvestorID string     `json:"investorId"`
	StartupID  string     `json:"startupId"`
	AssignedBy string     `json:"assignedBy"`
	Note       string     `json:"note,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// IsVisible reports whether the investor can still see the pairing at now.
func (m Matchmaking) IsVisible(now time.Time) bool {
	return m.Status == MatchmakingStatusActive && now.Before(m.ExpiresAt)
}

// ExpiryFrom returns the end of a visibility window of days starting at t.
func ExpiryFrom(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
