package queries

import (
	"strings"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params carries the arguments of one named query.
type Params struct {
	StartupID  string
	InvestorID string
	Filters    map[string]interface{}
	Limit      int
	Offset     int
	AsOf       time.Time
}

// String returns a trimmed string filter, or "" when absent or not a string.
func (p Params) String(key string) string {
	v, ok := p.Filters[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Float returns a numeric filter. JSON numbers decode as float64.
func (p Params) Float(key string) (float64, bool) {
	switch v := p.Filters[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Page returns limit and offset clamped to 1..MaxLimit and >= 0.
func (p Params) Page() (int, int) {
	limit := p.Limit
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
