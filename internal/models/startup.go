// internal/models/startup.go
package models

import "time"

// Profile moderation states shared by startups and investors.
const (
	ProfileStatusPending  = "pending"
	ProfileStatusApproved = "approved"
	ProfileStatusRejected = "rejected"
)

type Startup struct {
	ID                   string     `json:"id"`
	OwnerID              string     `json:"ownerId"`
	Name                 string     `json:"name"`
	Tagline              string     `json:"tagline,omitempty"`
	Description          string     `json:"description,omitempty"`
	Industry             string     `json:"industry"`
	Location             string     `json:"location,omitempty"`
	Website              string     `json:"website,omitempty"`
	ContactEmail         string     `json:"contactEmail"`
	ContactPhone         string     `json:"contactPhone,omitempty"`
	FoundersExperience   int        `json:"foundersExperience"`
	FoundersStartups     int        `json:"foundersStartups"`
	FoundersExits        int        `json:"foundersExits"`
	TeamSize             int        `json:"teamSize"`
	MarketSize           float64    `json:"marketSize"`
	FundingStage         string     `json:"fundingStage"`
	MonthlyRevenue       float64    `json:"monthlyRevenue"`
	ProductStage         string     `json:"productStage"`
	PitchQuality         int        `json:"pitchQuality"`
	CompetitiveAdvantage string     `json:"competitiveAdvantage,omitempty"`
	InvestabilityScore   *float64   `json:"investabilityScore,omitempty"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"createdAt"`
	ReviewedAt           *time.Time `json:"reviewedAt,omitempty"`
}

// StartupSearchDocument is the shape indexed into the startup browse index.
type StartupSearchDocument struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Tagline      string    `json:"tagline,omitempty"`
	Description  string    `json:"description,omitempty"`
	Industry     string    `json:"industry"`
	Location     string    `json:"location,omitempty"`
	FundingStage string    `json:"funding_stage"`
	ProductStage string    `json:"product_stage"`
	TeamSize     int       `json:"team_size"`
	Score        float64   `json:"score"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// SearchDocument projects s onto the browse index shape.
func (s Startup) SearchDocument() StartupSearchDocument {
	doc := StartupSearchDocument{
		ID:           s.ID,
		Name:         s.Name,
		Tagline:      s.Tagline,
		Description:  s.Description,
		Industry:     s.Industry,
		Location:     s.Location,
		FundingStage: s.FundingStage,
		ProductStage: s.ProductStage,
		TeamSize:     s.TeamSize,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
	}
	if s.InvestabilityScore != nil {
		doc.Score = *s.InvestabilityScore
	}
	return doc
}
