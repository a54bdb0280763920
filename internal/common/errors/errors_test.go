package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewMatchmakingLimitExceededError("inv-1", 3)
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "MATCHMAKING_LIMIT_EXCEEDED", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Equal(t, 3, bpmnErr.ErrorVariables["limit"])

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "MATCHMAKING_LIMIT_EXCEEDED", vars["errorCode"])
	assert.Equal(t, "MATCHMAKING_LIMIT_EXCEEDED", vars["originalErrorCode"])
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeQueryExecutionFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeSearchTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeDuplicateMatchmaking))
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeAccessDenied))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantRetry   bool
		wantRetries int
		wantCode    string
	}{
		{"retryable with budget", NewQueryExecutionFailedError("startup_details", fmt.Errorf("conn reset")), 3, true, 2, "QUERY_EXECUTION_FAILED"},
		{"retryable capped by code", NewSearchTimeoutError("startup_index"), 5, true, 2, "SEARCH_TIMEOUT"},
		{"retryable on last attempt throws", NewDatabaseInsertFailedError(fmt.Errorf("boom")), 1, false, 0, "DATABASE_INSERT_FAILED"},
		{"business error throws", NewDuplicateMatchmakingError("inv", "st"), 3, false, 0, "DUPLICATE_MATCHMAKING"},
		{"wrapped standard error", fmt.Errorf("assign: %w", NewAccessDeniedError("u1", "role: viewer")), 3, false, 0, "ACCESS_DENIED"},
		{"plain error is internal", stderrors.New("nil pointer"), 3, false, 0, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.err, tt.jobRetries)
			require.NotNil(t, d.Error)
			assert.Equal(t, tt.wantCode, d.Error.Code)
			assert.Equal(t, tt.wantRetry, d.Retry)
			assert.Equal(t, tt.wantRetries, d.Retries)
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "MATCHMAKING", GetErrorCategory(ErrCodeDuplicateMatchmaking))
	assert.Equal(t, "SCORING", GetErrorCategory(ErrCodeStartupNotFound))
	assert.Equal(t, "MODERATION", GetErrorCategory(ErrCodeProfileAlreadyReviewed))
	assert.Equal(t, "ACCESS", GetErrorCategory(ErrCodeRoleCheckFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeProfileValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
