// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "venture-workers/internal/models"

type Input struct {
	QueryType  string                 `json:"queryType"`
	StartupID  string                 `json:"startupId,omitempty"`
	InvestorID string                 `json:"investorId,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
	Limit      int                    `json:"limit,omitempty"`
	Offset     int                    `json:"offset,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType
