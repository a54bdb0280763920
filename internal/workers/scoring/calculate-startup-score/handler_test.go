package calculatestartupscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "venture-workers/internal/common/errors"
	"venture-workers/internal/common/logger"
	"venture-workers/internal/scoring"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		CacheTTL:       10 * time.Minute,
		DefaultWeights: scoring.DefaultWeights(),
	}
}

func exampleInputs() *scoring.Inputs {
	return &scoring.Inputs{
		FoundersExperience: 5,
		FoundersStartups:   2,
		FoundersExits:      1,
		TeamSize:           8,
		MarketSize:         1_000_000_000,
		FundingStage:       scoring.StageSeed,
		MonthlyRevenue:     10000,
		ProductStage:       scoring.ProductMVP,
		PitchQuality:       7,
	}
}

func setupHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	h := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h, mock, mr
}

func startupRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"founders_experience", "founders_startups", "founders_exits", "team_size",
		"market_size", "funding_stage", "monthly_revenue", "product_stage",
		"pitch_quality", "competitive_advantage",
	}).AddRow(5, 2, 1, 8, 1_000_000_000.0, "Seed", 10000.0, "MVP", 7, "patents")
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
}

func TestHandler_Execute_ProvidedInputsAndWeights(t *testing.T) {
	h, mock, _ := setupHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		Inputs:  exampleInputs(),
		Weights: map[string]int{"founders": 25},
	})

	require.NoError(t, err)
	assert.InDelta(t, 58.827381, output.FinalScore, 1e-5)
	assert.Equal(t, 59, output.DisplayScore)
	assert.Equal(t, scoring.BandPromising, output.Band)
	assert.Equal(t, WeightsSourceInput, output.WeightsSource)
	assert.Equal(t, fixedNow, output.ScoredAt)
	assert.False(t, output.Saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PrefillsFromDatabase(t *testing.T) {
	h, mock, mr := setupHandler(t)

	mock.ExpectQuery("FROM startups").
		WithArgs("st-1").
		WillReturnRows(startupRow())
	mock.ExpectQuery("FROM scoring_weights").
		WillReturnRows(sqlmock.NewRows([]string{"factor", "weight"}).
			AddRow("founders", 30).
			AddRow("pitch", 5))

	output, err := h.Execute(context.Background(), &Input{StartupID: "st-1"})

	require.NoError(t, err)
	assert.Equal(t, "st-1", output.StartupID)
	assert.Equal(t, WeightsSourceDatabase, output.WeightsSource)
	assert.Equal(t, 30, output.Weights.Founders)
	assert.Equal(t, 5, output.Weights.Pitch)
	assert.Equal(t, 70.0, output.SubScores.Founders)
	assert.Equal(t, 65.0, output.SubScores.Product)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, mr.Exists(inputsCacheKey("st-1")))
	assert.True(t, mr.Exists(weightsCacheKey))
	cached, err := mr.Get(weightsCacheKey)
	require.NoError(t, err)
	var weights map[string]int
	require.NoError(t, json.Unmarshal([]byte(cached), &weights))
	assert.Equal(t, 30, weights["founders"])
}

func TestHandler_Execute_PrefillsIncompleteProfile(t *testing.T) {
	h, mock, mr := setupHandler(t)

	mock.ExpectQuery("FROM startups").
		WithArgs("st-2").
		WillReturnRows(sqlmock.NewRows([]string{
			"founders_experience", "founders_startups", "founders_exits", "team_size",
			"market_size", "funding_stage", "monthly_revenue", "product_stage",
			"pitch_quality", "competitive_advantage",
		}).AddRow(5, 2, 1, 8, nil, nil, nil, "mvp", 7, ""))
	mock.ExpectQuery("FROM scoring_weights").
		WillReturnRows(sqlmock.NewRows([]string{"factor", "weight"}))

	output, err := h.Execute(context.Background(), &Input{StartupID: "st-2"})

	require.NoError(t, err)
	assert.Equal(t, WeightsSourceDefaults, output.WeightsSource)
	assert.Equal(t, 70.0, output.SubScores.Founders)
	assert.Equal(t, 0.0, output.SubScores.Market)
	assert.Equal(t, 0.0, output.SubScores.Funding)
	assert.Equal(t, 65.0, output.SubScores.Product)
	assert.GreaterOrEqual(t, output.FinalScore, 0.0)
	assert.LessOrEqual(t, output.FinalScore, 100.0)
	assert.NoError(t, mock.ExpectationsWereMet())

	cached, err := mr.Get(inputsCacheKey("st-2"))
	require.NoError(t, err)
	var inputs scoring.Inputs
	require.NoError(t, json.Unmarshal([]byte(cached), &inputs))
	assert.Equal(t, scoring.FundingStage(""), inputs.FundingStage)
	assert.Equal(t, 0.0, inputs.MarketSize)
}

func TestHandler_Execute_WarnsOnUnknownStage(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewHandler(createTestConfig(), nil, nil, logger.NewZapAdapter(zap.New(core)))

	inputs := exampleInputs()
	inputs.FundingStage = "series-z"
	output, err := h.Execute(context.Background(), &Input{Inputs: inputs, Weights: map[string]int{"founders": 25}})

	require.NoError(t, err)
	assert.InDelta(t, fundingScoreAt(scoring.StagePreSeed), output.SubScores.Funding, 1e-9)
	assert.Equal(t, 1, logs.FilterMessage("unknown stage scored as lowest").Len())

	logs.TakeAll()
	_, err = h.Execute(context.Background(), &Input{Inputs: exampleInputs(), Weights: map[string]int{"founders": 25}})
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("unknown stage scored as lowest").Len())
}

// fundingScoreAt is the funding sub-score of the example inputs at stage.
func fundingScoreAt(stage scoring.FundingStage) float64 {
	return scoring.FundingScore(stage, exampleInputs().MonthlyRevenue)
}

func TestHandler_Execute_UsesCache(t *testing.T) {
	h, mock, mr := setupHandler(t)

	inputs, _ := json.Marshal(exampleInputs())
	require.NoError(t, mr.Set(inputsCacheKey("st-2"), string(inputs)))
	require.NoError(t, mr.Set(weightsCacheKey, `{"founders":25,"team":15,"market":20,"funding":15,"product":15,"pitch":10}`))

	output, err := h.Execute(context.Background(), &Input{StartupID: "st-2"})

	require.NoError(t, err)
	assert.Equal(t, WeightsSourceCache, output.WeightsSource)
	assert.InDelta(t, 58.827381, output.FinalScore, 1e-5)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_StoredWeightsFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
	}{
		{
			name: "no active rows",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM scoring_weights").
					WillReturnRows(sqlmock.NewRows([]string{"factor", "weight"}))
			},
		},
		{
			name: "query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM scoring_weights").
					WillReturnError(errors.New("relation does not exist"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := setupHandler(t)
			tt.setup(mock)

			output, err := h.Execute(context.Background(), &Input{Inputs: exampleInputs()})

			require.NoError(t, err)
			assert.Equal(t, WeightsSourceDefaults, output.WeightsSource)
			assert.Equal(t, scoring.DefaultWeights(), output.Weights)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_SaveScore(t *testing.T) {
	h, mock, _ := setupHandler(t)

	mock.ExpectExec("UPDATE startups SET investability_score").
		WithArgs(sqlmock.AnyArg(), fixedNow, "st-3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(context.Background(), &Input{
		StartupID: "st-3",
		Inputs:    exampleInputs(),
		Weights:   map[string]int{"pitch": 10},
		SaveScore: true,
	})

	require.NoError(t, err)
	assert.True(t, output.Saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SaveScoreUnknownStartup(t *testing.T) {
	h, mock, _ := setupHandler(t)

	mock.ExpectExec("UPDATE startups SET investability_score").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := h.Execute(context.Background(), &Input{
		StartupID: "missing",
		Inputs:    exampleInputs(),
		Weights:   map[string]int{"pitch": 10},
		SaveScore: true,
	})

	assertCode(t, err, apperrors.ErrCodeStartupNotFound)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
		setup func(mock sqlmock.Sqlmock)
		code  apperrors.ErrorCode
	}{
		{
			name:  "no startup and no inputs",
			input: &Input{},
			code:  apperrors.ErrCodeScoringInputInvalid,
		},
		{
			name:  "save without startup",
			input: &Input{Inputs: exampleInputs(), SaveScore: true},
			code:  apperrors.ErrCodeScoringInputInvalid,
		},
		{
			name:  "unknown weight factor",
			input: &Input{Inputs: exampleInputs(), Weights: map[string]int{"luck": 10}},
			code:  apperrors.ErrCodeScoringInputInvalid,
		},
		{
			name:  "unknown startup",
			input: &Input{StartupID: "nope"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM startups").WithArgs("nope").WillReturnError(sql.ErrNoRows)
			},
			code: apperrors.ErrCodeStartupNotFound,
		},
		{
			name:  "startup query fails",
			input: &Input{StartupID: "st-4"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM startups").WithArgs("st-4").WillReturnError(errors.New("connection reset"))
			},
			code: apperrors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := setupHandler(t)
			if tt.setup != nil {
				tt.setup(mock)
			}

			_, err := h.Execute(context.Background(), tt.input)

			assertCode(t, err, tt.code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RedisUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet(inputsCacheKey("st-5")).SetErr(errors.New("dial tcp: connection refused"))

	mock.ExpectQuery("FROM startups").WithArgs("st-5").WillReturnRows(startupRow())

	h := NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{
		StartupID: "st-5",
		Weights:   map[string]int{"founders": 25},
	})

	require.NoError(t, err)
	assert.InDelta(t, 58.827381, output.FinalScore, 1e-5)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(nil)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, scoring.DefaultWeights(), cfg.DefaultWeights)
}
