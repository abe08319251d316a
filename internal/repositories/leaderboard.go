package repositories

import (
	"context"
	"database/sql"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/query"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

// pointsWindowSpec narrows the points joined into the user leaderboard.
// month only applies together with year.
var pointsWindowSpec = query.MustSpec([]string{"p.created"}, nil,
	query.Filter{Param: "year", Columns: []string{"p.created"}, Op: query.YearOf, Kind: query.Int},
	query.Filter{Param: "month", Columns: []string{"p.created"}, Op: query.MonthOf, Kind: query.Int, Requires: "year"},
)

type LeaderboardRepository struct {
	DB *store.DB
}

// Users pages through active users with a positive score in the window,
// highest score first, ties by ascending id.
func (r LeaderboardRepository) Users(ctx context.Context, in query.Input, p pagination.Params) ([]models.UserRank, int64, error) {
	plan := &query.Plan{
		Select: `u.id, u.username, up.user_avatar, up.title, COALESCE(SUM(p.score), 0) AS total_score,
	(SELECT COUNT(*) FROM website_issue x WHERE x.user_id = u.id AND x.is_hidden = false) AS issue_count`,
		Where:   "u.is_active = true",
		GroupBy: "u.id, u.username, up.user_avatar, up.title",
		Having:  "COALESCE(SUM(p.score), 0) > 0",
		OrderBy: "total_score DESC, u.id ASC",
	}
	window, err := plan.Compile(pointsWindowSpec, in)
	if err != nil {
		return nil, 0, err
	}
	plan.From = `auth_user u
	JOIN website_userprofile up ON u.id = up.user_id
	LEFT JOIN website_points p ON u.id = p.user_id AND ` + window

	return fetchPage(ctx, r.DB, "leaderboard_users", plan, p, func(rows *sql.Rows) (models.UserRank, error) {
		var u models.UserRank
		err := rows.Scan(&u.ID, &u.Username, &u.UserAvatar, &u.Title, &u.TotalScore, &u.IssueCount)
		return u, err
	})
}

// Organizations pages through active organizations with at least one visible
// issue on their domains, most issues first.
func (r LeaderboardRepository) Organizations(ctx context.Context, p pagination.Params) ([]models.OrgRank, int64, error) {
	plan := &query.Plan{
		Select: `o.id, o.name, o.slug, o.logo, o.team_points, COUNT(DISTINCT i.id) AS issue_count,
	(SELECT COUNT(*) FROM website_userprofile x WHERE x.team_id = o.id) AS member_count`,
		From: `website_organization o
	LEFT JOIN website_domain d ON o.id = d.organization_id
	LEFT JOIN website_issue i ON d.id = i.domain_id AND i.is_hidden = false`,
		Where:   "o.is_active = true",
		GroupBy: "o.id, o.name, o.slug, o.logo, o.team_points",
		Having:  "COUNT(DISTINCT i.id) > 0",
		OrderBy: "issue_count DESC, o.id ASC",
	}
	return fetchPage(ctx, r.DB, "leaderboard_organizations", plan, p, func(rows *sql.Rows) (models.OrgRank, error) {
		var o models.OrgRank
		err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Logo, &o.TeamPoints, &o.IssueCount, &o.MemberCount)
		return o, err
	})
}

// MonthlyWinners returns the top scorer of each month of year that had any
// points awarded, ordered by month.
func (r LeaderboardRepository) MonthlyWinners(ctx context.Context, year int) ([]models.MonthlyWinner, error) {
	const q = `WITH monthly AS (
	SELECT EXTRACT(MONTH FROM p.created)::int AS month, u.id, u.username, up.user_avatar,
		COALESCE(SUM(p.score), 0) AS total_score,
		ROW_NUMBER() OVER (
			PARTITION BY EXTRACT(MONTH FROM p.created)
			ORDER BY COALESCE(SUM(p.score), 0) DESC, u.id ASC
		) AS rank_in_month
	FROM website_points p
	JOIN auth_user u ON p.user_id = u.id
	JOIN website_userprofile up ON u.id = up.user_id
	WHERE EXTRACT(YEAR FROM p.created) = $1 AND u.is_active = true
	GROUP BY EXTRACT(MONTH FROM p.created), u.id, u.username, up.user_avatar
)
SELECT month, id, username, user_avatar, total_score
FROM monthly
WHERE rank_in_month = 1
ORDER BY month ASC`
	return store.Select(ctx, r.DB, "leaderboard_monthly", q, []any{year}, func(rows *sql.Rows) (models.MonthlyWinner, error) {
		var w models.MonthlyWinner
		err := rows.Scan(&w.Month, &w.UserID, &w.Username, &w.UserAvatar, &w.TotalScore)
		return w, err
	})
}
