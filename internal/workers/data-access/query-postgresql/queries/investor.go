// internal/workers/data-access/query-postgresql/queries/investor.go
package queries

import (
	"context"
	"database/sql"
	"time"

	"venture-workers/internal/models"

	"github.com/lib/pq"
)

const investorColumns = `id, user_id, name, COALESCE(firm, ''), email, COALESCE(phone, ''),
	preferred_industries, preferred_stages, COALESCE(ticket_size_min, 0), COALESCE(ticket_size_max, 0),
	status, newsletter_opt_in, created_at`

const matchmakingColumns = `id, investor_id, startup_id, assigned_by, COALESCE(note, ''),
	status, created_at, expires_at, archived_at`

// GetInvestor loads one investor. It returns sql.ErrNoRows when id is unknown.
func GetInvestor(ctx context.Context, q Querier, id string) (*models.Investor, error) {
	var inv models.Investor
	var industries, stages pq.StringArray

	err := q.QueryRowContext(ctx, `SELECT `+investorColumns+` FROM investors WHERE id = $1`, id).Scan(
		&inv.ID, &inv.UserID, &inv.Name, &inv.Firm, &inv.Email, &inv.Phone,
		&industries, &stages, &inv.TicketSizeMin, &inv.TicketSizeMax,
		&inv.Status, &inv.NewsletterOptIn, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.PreferredIndustries = []string(industries)
	inv.PreferredStages = []string(stages)
	return &inv, nil
}

// VisibleMatchmakings returns the investor's active pairings that have not
// expired at asOf, newest first.
func VisibleMatchmakings(ctx context.Context, q Querier, investorID string, asOf time.Time) ([]models.Matchmaking, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+matchmakingColumns+`
		FROM matchmakings
		WHERE investor_id = $1 AND status = $2 AND expires_at > $3
		ORDER BY created_at DESC`,
		investorID, models.MatchmakingStatusActive, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.Matchmaking, 0)
	for rows.Next() {
		var m models.Matchmaking
		var archivedAt sql.NullTime
		if err := rows.Scan(
			&m.ID, &m.InvestorID, &m.StartupID, &m.AssignedBy, &m.Note,
			&m.Status, &m.CreatedAt, &m.ExpiresAt, &archivedAt,
		); err != nil {
			return nil, err
		}
		if archivedAt.Valid {
			m.ArchivedAt = &archivedAt.Time
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func InvestorProfile(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	if params.InvestorID == "" {
		return nil, 0, 0, missing("investorId")
	}

	start := time.Now()
	inv, err := GetInvestor(ctx, db, params.InvestorID)
	if err != nil {
		return nil, 0, 0, err
	}
	return inv, 1, time.Since(start).Milliseconds(), nil
}

func InvestorMatchmakings(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	if params.InvestorID == "" {
		return nil, 0, 0, missing("investorId")
	}
	asOf := params.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	start := time.Now()
	results, err := VisibleMatchmakings(ctx, db, params.InvestorID, asOf)
	if err != nil {
		return nil, 0, 0, err
	}
	return results, len(results), time.Since(start).Milliseconds(), nil
}

// ScoringWeights returns the active factor weights keyed by factor name.
func ScoringWeights(ctx context.Context, db *sql.DB, _ Params) (interface{}, int, int64, error) {
	start := time.Now()
	rows, err := db.QueryContext(ctx, `SELECT factor, weight FROM scoring_weights WHERE is_active = true ORDER BY factor`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	weights := make(map[string]int)
	for rows.Next() {
		var factor string
		var weight int
		if err := rows.Scan(&factor, &weight); err != nil {
			return nil, 0, 0, err
		}
		weights[factor] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}
	return weights, len(weights), time.Since(start).Milliseconds(), nil
}
