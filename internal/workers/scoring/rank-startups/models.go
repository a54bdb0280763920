// internal/workers/scoring/rank-startups/models.go
package rankstartups

import "venture-workers/internal/scoring"

type Candidate struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Inputs scoring.Inputs `json:"inputs"`
}

type Input struct {
	Startups []Candidate    `json:"startups"`
	Weights  map[string]int `json:"weights,omitempty"`
	MinScore float64        `json:"minScore"`
	Limit    int            `json:"limit"`
}

type RankedStartup struct {
	Rank         int          `json:"rank"`
	StartupID    string       `json:"startupId"`
	Name         string       `json:"name"`
	Score        float64      `json:"score"`
	DisplayScore int          `json:"displayScore"`
	Band         scoring.Band `json:"band"`
}

type Output struct {
	Ranked         []RankedStartup `json:"ranked"`
	TotalEvaluated int             `json:"totalEvaluated"`
	TotalQualified int             `json:"totalQualified"`
	WeightsWarning bool            `json:"weightsWarning"`
}
