// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeStartupDetails       QueryType = "startup_details"
	QueryTypeStartupList          QueryType = "startup_list"
	QueryTypeInvestorProfile      QueryType = "investor_profile"
	QueryTypeInvestorMatchmakings QueryType = "investor_matchmakings"
	QueryTypeScoringWeights       QueryType = "scoring_weights"
)
