// internal/workers/data-access/query-postgresql/queries/startup.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"venture-workers/internal/models"
)

const startupColumns = `id, owner_id, name, COALESCE(tagline, ''), COALESCE(description, ''),
	industry, COALESCE(location, ''), COALESCE(website, ''), contact_email, COALESCE(contact_phone, ''),
	founders_experience, founders_startups, founders_exits, team_size, market_size,
	funding_stage, monthly_revenue, product_stage, pitch_quality, COALESCE(competitive_advantage, ''),
	investability_score, status, created_at, reviewed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStartup(row rowScanner) (*models.Startup, error) {
	var s models.Startup
	var score sql.NullFloat64
	var reviewedAt sql.NullTime
	// scoring attributes stay NULL until the founder fills them in
	var (
		experience, startups, exits, team, pitch sql.NullInt64
		market, revenue                          sql.NullFloat64
		funding, product                         sql.NullString
	)

	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Tagline, &s.Description,
		&s.Industry, &s.Location, &s.Website, &s.ContactEmail, &s.ContactPhone,
		&experience, &startups, &exits, &team, &market,
		&funding, &revenue, &product, &pitch, &s.CompetitiveAdvantage,
		&score, &s.Status, &s.CreatedAt, &reviewedAt,
	)
	if err != nil {
		return nil, err
	}
	s.FoundersExperience = int(experience.Int64)
	s.FoundersStartups = int(startups.Int64)
	s.FoundersExits = int(exits.Int64)
	s.TeamSize = int(team.Int64)
	s.MarketSize = market.Float64
	s.FundingStage = funding.String
	s.MonthlyRevenue = revenue.Float64
	s.ProductStage = product.String
	s.PitchQuality = int(pitch.Int64)
	if score.Valid {
		s.InvestabilityScore = &score.Float64
	}
	if reviewedAt.Valid {
		s.ReviewedAt = &reviewedAt.Time
	}
	return &s, nil
}

// GetStartup loads one startup. It returns sql.ErrNoRows when id is unknown.
func GetStartup(ctx context.Context, q Querier, id string) (*models.Startup, error) {
	row := q.QueryRowContext(ctx, `SELECT `+startupColumns+` FROM startups WHERE id = $1`, id)
	return scanStartup(row)
}

func StartupDetails(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	if params.StartupID == "" {
		return nil, 0, 0, missing("startupId")
	}

	start := time.Now()
	s, err := GetStartup(ctx, db, params.StartupID)
	if err != nil {
		return nil, 0, 0, err
	}
	return s, 1, time.Since(start).Milliseconds(), nil
}

// StartupList browses startups. Without a status filter only approved
// startups are listed.
func StartupList(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	status := params.String("status")
	if status == "" {
		status = models.ProfileStatusApproved
	}
	add("status = $%d", status)
	if industry := params.String("industry"); industry != "" {
		add("industry = $%d", industry)
	}
	if stage := params.String("fundingStage"); stage != "" {
		add("funding_stage = $%d", stage)
	}
	if minScore, ok := params.Float("minScore"); ok {
		add("investability_score >= $%d", minScore)
	}

	limit, offset := params.Page()
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s FROM startups WHERE %s
		ORDER BY investability_score DESC NULLS LAST, name ASC
		LIMIT $%d OFFSET $%d`,
		startupColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results := make([]*models.Startup, 0, limit)
	for rows.Next() {
		s, err := scanStartup(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}
