package verifyadminaccess

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, CacheTTL: 5 * time.Minute}
}

func setupHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t)), mock, mr
}

func roleRows(pairs ...interface{}) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"role", "is_active"})
	for i := 0; i+1 < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	return rows
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
}

func TestHandler_Execute_Allowed(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		rows     *sqlmock.Rows
		wantRole string
	}{
		{"admin defaults to admin requirement", &Input{UserID: "u-1"}, roleRows("admin", true), "admin"},
		{"admin satisfies moderator", &Input{UserID: "u-1", RequiredRole: "moderator"}, roleRows("admin", true), "admin"},
		{"second role matches", &Input{UserID: "u-1", RequiredRole: "Moderator"}, roleRows("investor", true, "moderator", true), "moderator"},
		{"investor satisfies itself", &Input{UserID: "u-1", RequiredRole: "investor"}, roleRows("investor", true), "investor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, mr := setupHandler(t)
			mock.ExpectQuery(`SELECT role, is_active FROM user_roles WHERE user_id = \$1`).
				WithArgs("u-1").
				WillReturnRows(tt.rows)

			output, err := h.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			assert.True(t, output.Allowed)
			assert.Equal(t, "u-1", output.UserID)
			assert.Equal(t, tt.wantRole, output.Role)
			assert.True(t, mr.Exists("role:u-1"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_Denied(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
		rows  *sqlmock.Rows
	}{
		{"no roles", &Input{UserID: "u-2"}, roleRows()},
		{"inactive admin", &Input{UserID: "u-2"}, roleRows("admin", false)},
		{"moderator is not admin", &Input{UserID: "u-2"}, roleRows("moderator", true)},
		{"admin does not act as founder", &Input{UserID: "u-2", RequiredRole: "founder"}, roleRows("admin", true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := setupHandler(t)
			mock.ExpectQuery("FROM user_roles").WithArgs("u-2").WillReturnRows(tt.rows)

			output, err := h.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			requireCode(t, err, apperrors.ErrCodeAccessDenied)
		})
	}
}

func TestHandler_Execute_UsesCache(t *testing.T) {
	h, mock, mr := setupHandler(t)

	data, err := json.Marshal([]models.UserRole{{UserID: "u-3", Role: "admin", IsActive: true}})
	require.NoError(t, err)
	require.NoError(t, mr.Set("role:u-3", string(data)))

	output, err := h.Execute(context.Background(), &Input{UserID: "u-3"})

	require.NoError(t, err)
	assert.True(t, output.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EmptyResultNotCached(t *testing.T) {
	h, mock, mr := setupHandler(t)
	mock.ExpectQuery("FROM user_roles").WithArgs("u-4").WillReturnRows(roleRows())

	_, err := h.Execute(context.Background(), &Input{UserID: "u-4"})

	requireCode(t, err, apperrors.ErrCodeAccessDenied)
	assert.False(t, mr.Exists("role:u-4"))
}

func TestHandler_Execute_CacheTTL(t *testing.T) {
	h, mock, mr := setupHandler(t)
	mock.ExpectQuery("FROM user_roles").WithArgs("u-5").WillReturnRows(roleRows("admin", true))

	_, err := h.Execute(context.Background(), &Input{UserID: "u-5"})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, mr.TTL("role:u-5"))
}

func TestHandler_Execute_Errors(t *testing.T) {
	h, mock, _ := setupHandler(t)

	_, err := h.Execute(context.Background(), &Input{UserID: "  "})
	requireCode(t, err, apperrors.ErrCodeInvalidInput)

	mock.ExpectQuery("FROM user_roles").WithArgs("u-6").WillReturnError(errors.New("connection reset by peer"))
	_, err = h.Execute(context.Background(), &Input{UserID: "u-6"})
	requireCode(t, err, apperrors.ErrCodeRoleCheckFailed)

	stdErr, _ := apperrors.AsStandardError(err)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_RedisUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("role:u-7").SetErr(errors.New("dial tcp: connection refused"))

	mock.ExpectQuery("FROM user_roles").WithArgs("u-7").WillReturnRows(roleRows("admin", true))

	h := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))
	output, err := h.Execute(context.Background(), &Input{UserID: "u-7"})

	require.NoError(t, err)
	assert.True(t, output.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadConfig(t *testing.T) {
	c := LoadConfig(nil)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, 5*time.Minute, c.CacheTTL)
}
