package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatchmakingVisibility(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := Matchmaking{Status: MatchmakingStatusActive, CreatedAt: created, ExpiresAt: ExpiryFrom(created, 7)}

	assert.Equal(t, time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC), m.ExpiresAt)
	assert.True(t, m.IsVisible(created.Add(6*24*time.Hour)))

	assert.False(t, m.IsVisible(m.ExpiresAt))

	m.Status = MatchmakingStatusArchived
	assert.False(t, m.IsVisible(created))
}

func TestUserRoleSatisfies(t *testing.T) {
	assert.True(t, UserRole{Role: RoleAdmin, IsActive: true}.Satisfies(RoleAdmin))
	assert.True(t, UserRole{Role: RoleAdmin, IsActive: true}.Satisfies(RoleModerator))
	assert.False(t, UserRole{Role: RoleModerator, IsActive: true}.Satisfies(RoleAdmin))
	assert.False(t, UserRole{Role: RoleAdmin, IsActive: false}.Satisfies(RoleAdmin))
	assert.False(t, UserRole{Role: RoleAdmin, IsActive: true}.Satisfies(RoleInvestor))
	assert.True(t, UserRole{Role: RoleInvestor, IsActive: true}.Satisfies(RoleInvestor))
	assert.False(t, UserRole{Role: RoleFounder, IsActive: true}.Satisfies(RoleInvestor))
}

func TestStartupSearchDocument(t *testing.T) {
	score := 61.5
	s := Startup{ID: "st-1", Name: "Acme", FundingStage: "seed", InvestabilityScore: &score, Status: ProfileStatusApproved}
	doc := s.SearchDocument()
	assert.Equal(t, 61.5, doc.Score)
	assert.Equal(t, "seed", doc.FundingStage)

	s.InvestabilityScore = nil
	assert.Zero(t, s.SearchDocument().Score)
}
