package database

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"venture-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTx_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE startups").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = InTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE startups SET status = 'approved'")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = InTx(context.Background(), db, func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type cached struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestJSONCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	var got cached
	hit, err := GetJSON(ctx, rdb, "startup:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetJSON(ctx, rdb, "startup:1", cached{Name: "Acme", Score: 71}, time.Minute))
	assert.True(t, mr.Exists("startup:1"))
	assert.Equal(t, time.Minute, mr.TTL("startup:1"))

	hit, err = GetJSON(ctx, rdb, "startup:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, cached{Name: "Acme", Score: 71}, got)

	require.NoError(t, mr.Set("startup:2", "not-json"))
	_, err = GetJSON(ctx, rdb, "startup:2", &got)
	assert.Error(t, err)
}

type fakeES struct {
	mu       sync.Mutex
	indices  map[string]bool
	docs     map[string]string
	requests []string
}

func newFakeES(t *testing.T) (*fakeES, *ElasticsearchClient) {
	f := &fakeES{indices: map[string]bool{}, docs: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	return f, client
}

func (f *fakeES) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		if !f.indices[parts[0]] {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && len(parts) == 1:
		f.indices[parts[0]] = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case (r.Method == http.MethodPut || r.Method == http.MethodPost) && len(parts) == 3 && parts[1] == "_doc":
		body, _ := io.ReadAll(r.Body)
		f.docs[parts[2]] = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case r.Method == http.MethodDelete && len(parts) == 3:
		if _, ok := f.docs[parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		delete(f.docs, parts[2])
		_, _ = io.WriteString(w, `{"result":"deleted"}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected request"}`)
	}
}

func TestElasticsearch_EnsureIndex(t *testing.T) {
	f, client := newFakeES(t)
	ctx := context.Background()

	created, err := client.EnsureIndex(ctx, "startups", StartupIndexMapping)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = client.EnsureIndex(ctx, "startups", StartupIndexMapping)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, f.indices["startups"])
}

func TestElasticsearch_IndexAndDeleteDocument(t *testing.T) {
	f, client := newFakeES(t)
	ctx := context.Background()

	require.NoError(t, client.IndexDocument(ctx, "startups", "st-1", map[string]interface{}{"name": "Acme"}))
	assert.JSONEq(t, `{"name":"Acme"}`, f.docs["st-1"])

	require.NoError(t, client.DeleteDocument(ctx, "startups", "st-1"))
	assert.Empty(t, f.docs)

	// already gone
	require.NoError(t, client.DeleteDocument(ctx, "startups", "st-1"))
}

func TestWriteAudit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(sqlmock.AnyArg(), "admin-1", "matchmaking.assigned", "investor", "inv-1", []byte(`{"startups":2}`), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := WriteAudit(context.Background(), db, AuditEntry{
		ActorID:    "admin-1",
		Action:     "matchmaking.assigned",
		EntityType: "investor",
		EntityID:   "inv-1",
		Details:    map[string]interface{}{"startups": 2},
		At:         at,
	})

	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}
