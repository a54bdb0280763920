package queryelasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/workers/data-access/query-elasticsearch/queries"
)

const searchHits = `{
  "took": 3,
  "hits": {
    "total": {"value": 2, "relation": "eq"},
    "max_score": 4.2,
    "hits": [
      {"_id": "st-1", "_score": 4.2, "_source": {"id": "st-1", "name": "AgriPay", "score": 71.5}},
      {"_id": "st-2", "_score": 1.1, "_source": {"name": "SolarGrid", "score": 58.8}}
    ]
  }
}`

// fakeCluster answers _search requests and keeps the last body it saw.
type fakeCluster struct {
	mu       sync.Mutex
	status   int
	response string
	delay    time.Duration
	lastPath string
	lastBody map[string]interface{}
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.lastPath = r.URL.Path
	raw, _ := io.ReadAll(r.Body)
	f.lastBody = nil
	_ = json.Unmarshal(raw, &f.lastBody)
	status, response, delay := f.status, f.response, f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func setupHandler(t *testing.T, f *fakeCluster) *Handler {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  []string{srv.URL},
		MaxRetries: 1,
	})
	require.NoError(t, err)

	cfg := &Config{Timeout: 5 * time.Second, DefaultIndex: "startups"}
	return NewHandler(cfg, es, logger.NewZapAdapter(zaptest.NewLogger(t)))
}

func TestHandler_Execute_StartupIndex(t *testing.T) {
	f := &fakeCluster{response: searchHits}
	h := setupHandler(t, f)

	output, err := h.Execute(context.Background(), &Input{
		QueryType: queries.QueryTypeStartupIndex,
		Filters: map[string]interface{}{
			"keywords": "payments",
			"industry": "fintech",
		},
		Pagination: Pagination{From: 0, Size: 10},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), output.TotalHits)
	assert.InDelta(t, 4.2, output.MaxScore, 1e-9)
	require.Len(t, output.Data, 2)
	assert.Equal(t, "AgriPay", output.Data[0]["name"])
	assert.Equal(t, "st-2", output.Data[1]["id"], "missing id is filled from _id")

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, "/startups/_search", f.lastPath)
	body, _ := json.Marshal(f.lastBody)
	assert.Contains(t, string(body), `"multi_match"`)
	assert.Contains(t, string(body), `{"term":{"status":"approved"}}`)
	assert.Contains(t, string(body), `{"term":{"industry":"fintech"}}`)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cluster *fakeCluster
		input   *Input
		code    apperrors.ErrorCode
	}{
		{
			name:    "index not found",
			cluster: &fakeCluster{status: http.StatusNotFound, response: `{"error":{"type":"index_not_found_exception","reason":"no such index [missing]"},"status":404}`},
			input:   &Input{IndexName: "missing", QueryType: queries.QueryTypeStartupIndex},
			code:    apperrors.ErrCodeIndexNotFound,
		},
		{
			name:    "bad request",
			cluster: &fakeCluster{status: http.StatusBadRequest, response: `{"error":{"type":"parsing_exception","reason":"unknown query"},"status":400}`},
			input:   &Input{QueryType: queries.QueryTypeStartupIndex},
			code:    apperrors.ErrCodeSearchQueryFailed,
		},
		{
			name:    "unknown query type",
			cluster: &fakeCluster{},
			input:   &Input{QueryType: "franchise_index"},
			code:    apperrors.ErrCodeInvalidQueryType,
		},
		{
			name:    "related without startup",
			cluster: &fakeCluster{},
			input:   &Input{QueryType: queries.QueryTypeRelatedStartups},
			code:    apperrors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupHandler(t, tt.cluster)

			output, err := h.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok, "unexpected error %v", err)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	h := setupHandler(t, &fakeCluster{response: searchHits, delay: 300 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := h.Execute(ctx, &Input{QueryType: queries.QueryTypeStartupIndex})

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSearchTimeout, stdErr.Code)
}

func decodeBody(t *testing.T, q queries.SearchQuery) (map[string]interface{}, int, int) {
	t.Helper()
	req, err := queries.BuildQuery(q)
	require.NoError(t, err)
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body, *req.From, *req.Size
}

func TestBuildQuery_StartupIndexFilters(t *testing.T) {
	body, from, size := decodeBody(t, queries.SearchQuery{
		Index:     "startups",
		QueryType: queries.QueryTypeStartupIndex,
		Filters: map[string]interface{}{
			"fundingStage": "Series A",
			"productStage": "MVP",
			"location":     "Lagos",
			"scoreRange":   map[string]interface{}{"min": 50.0, "max": 90.0},
			"sortBy":       "score",
		},
		From: -5,
		Size: 500,
	})

	assert.Equal(t, 0, from)
	assert.Equal(t, queries.MaxSize, size)

	raw, _ := json.Marshal(body)
	s := string(raw)
	assert.Contains(t, s, `{"match_all":{}}`)
	assert.Contains(t, s, `{"term":{"funding_stage":"series-a"}}`)
	assert.Contains(t, s, `{"term":{"product_stage":"mvp"}}`)
	assert.Contains(t, s, `{"term":{"location":"Lagos"}}`)
	assert.Contains(t, s, `{"range":{"score":{"gte":50,"lte":90}}}`)
	assert.Contains(t, s, `"sort":[{"score":"desc"},{"name.raw":"asc"}]`)
}

func TestBuildQuery_Sorts(t *testing.T) {
	tests := map[string]string{
		"name":   `"sort":[{"name.raw":"asc"}]`,
		"newest": `"sort":[{"created_at":"desc"}]`,
	}
	for sortBy, want := range tests {
		body, _, size := decodeBody(t, queries.SearchQuery{
			Index:     "startups",
			QueryType: queries.QueryTypeStartupIndex,
			Filters:   map[string]interface{}{"sortBy": sortBy},
		})
		raw, _ := json.Marshal(body)
		assert.Contains(t, string(raw), want)
		assert.Equal(t, queries.DefaultSize, size)
	}
}

func TestBuildQuery_RelatedStartups(t *testing.T) {
	body, _, _ := decodeBody(t, queries.SearchQuery{
		Index:     "startups",
		QueryType: queries.QueryTypeRelatedStartups,
		StartupID: "st-9",
	})

	raw, _ := json.Marshal(body)
	s := string(raw)
	assert.Contains(t, s, `"more_like_this"`)
	assert.Contains(t, s, `{"_id":"st-9","_index":"startups"}`)
	assert.Contains(t, s, `"must_not":[{"ids":{"values":["st-9"]}}]`)
	assert.True(t, strings.Contains(s, `{"term":{"status":"approved"}}`))
}

func TestBuildQuery_MissingIndex(t *testing.T) {
	_, err := queries.BuildQuery(queries.SearchQuery{QueryType: queries.QueryTypeStartupIndex})
	assert.ErrorIs(t, err, queries.ErrMissingIndex)
}
