// internal/workers/matchmaking/expire-matchmaking/models.go
package expirematchmaking

import "time"

type Input struct {
	AsOf string `json:"asOf,omitempty"` // RFC3339, defaults to now
}

type Output struct {
	ArchivedCount int       `json:"archivedCount"`
	ArchivedIDs   []string  `json:"archivedIds"`
	AsOf          time.Time `json:"asOf"`
}
