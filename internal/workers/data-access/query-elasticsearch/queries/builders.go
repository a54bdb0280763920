package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"venture-workers/internal/models"
	"venture-workers/internal/scoring"
)

const (
	QueryTypeStartupIndex    = "startup_index"
	QueryTypeRelatedStartups = "related_startups"

	DefaultSize = 20
	MaxSize     = 100
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingStartupID = errors.New("startupId is required")
)

// SearchQuery describes one search against the startup index.
type SearchQuery struct {
	Index     string
	QueryType string
	Filters   map[string]interface{}
	StartupID string
	From      int
	Size      int
}

// Page clamps size to 1..MaxSize (0 means DefaultSize) and from to >= 0.
func (q SearchQuery) Page() (int, int) {
	from, size := q.From, q.Size
	if from < 0 {
		from = 0
	}
	switch {
	case size <= 0:
		size = DefaultSize
	case size > MaxSize:
		size = MaxSize
	}
	return from, size
}

// BuildQuery turns q into a search request.
func BuildQuery(q SearchQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	var body map[string]interface{}
	switch q.QueryType {
	case QueryTypeStartupIndex:
		body = buildStartupSearchQuery(q)
	case QueryTypeRelatedStartups:
		if q.StartupID == "" {
			return nil, ErrMissingStartupID
		}
		body = buildRelatedStartupsQuery(q)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, q.QueryType)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	from, size := q.Page()
	return &esapi.SearchRequest{
		Index:          []string{q.Index},
		Body:           bytes.NewReader(raw),
		From:           &from,
		Size:           &size,
		TrackTotalHits: true,
	}, nil
}

// approvedOnly keeps unmoderated and rejected profiles out of every search.
func approvedOnly() map[string]interface{} {
	return term("status", models.ProfileStatusApproved)
}

func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{"term": map[string]interface{}{field: value}}
}

func buildStartupSearchQuery(q SearchQuery) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{approvedOnly()}

	if keywords := stringFilter(q.Filters, "keywords"); keywords != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "tagline^2", "description"},
				"type":   "best_fields",
			},
		})
	}

	if industry := stringFilter(q.Filters, "industry"); industry != "" {
		filter = append(filter, term("industry", industry))
	}
	if location := stringFilter(q.Filters, "location"); location != "" {
		filter = append(filter, term("location", location))
	}
	if stage := stringFilter(q.Filters, "fundingStage"); stage != "" {
		filter = append(filter, term("funding_stage", string(scoring.FundingStage(stage).Normalize())))
	}
	if stage := stringFilter(q.Filters, "productStage"); stage != "" {
		filter = append(filter, term("product_stage", string(scoring.ProductStage(stage).Normalize())))
	}

	if r, ok := q.Filters["scoreRange"].(map[string]interface{}); ok {
		bounds := map[string]interface{}{}
		if lo, ok := number(r["min"]); ok {
			bounds["gte"] = lo
		}
		if hi, ok := number(r["max"]); ok {
			bounds["lte"] = hi
		}
		if len(bounds) > 0 {
			filter = append(filter, map[string]interface{}{
				"range": map[string]interface{}{"score": bounds},
			})
		}
	}

	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}

	switch stringFilter(q.Filters, "sortBy") {
	case "score":
		query["sort"] = []map[string]interface{}{{"score": "desc"}, {"name.raw": "asc"}}
	case "name":
		query["sort"] = []map[string]interface{}{{"name.raw": "asc"}}
	case "newest":
		query["sort"] = []map[string]interface{}{{"created_at": "desc"}}
	}

	return query
}

func buildRelatedStartupsQuery(q SearchQuery) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"more_like_this": map[string]interface{}{
							"fields": []string{"name", "tagline", "description", "industry"},
							"like": []map[string]interface{}{
								{"_index": q.Index, "_id": q.StartupID},
							},
							"min_term_freq":   1,
							"max_query_terms": 12,
							"min_doc_freq":    1,
							"min_word_length": 3,
						},
					},
				},
				"filter": []interface{}{approvedOnly()},
				"must_not": []interface{}{
					map[string]interface{}{"ids": map[string]interface{}{"values": []string{q.StartupID}}},
				},
			},
		},
	}
}

func stringFilter(filters map[string]interface{}, key string) string {
	s, _ := filters[key].(string)
	return strings.TrimSpace(s)
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
