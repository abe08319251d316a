package repositories

import (
	"context"
	"database/sql"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/query"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

// Totals are the single-value platform counters, keyed by their JSON name.
var Totals = []struct {
	Name  string
	Query string
}{
	{"total_issues", `SELECT COUNT(*) FROM website_issue WHERE is_hidden = false`},
	{"total_users", `SELECT COUNT(*) FROM auth_user WHERE is_active = true`},
	{"total_domains", `SELECT COUNT(*) FROM website_domain WHERE is_active = true`},
	{"total_hunts", `SELECT COUNT(*) FROM website_hunt WHERE is_published = true`},
	{"total_organizations", `SELECT COUNT(*) FROM website_organization WHERE is_active = true`},
	{"total_points_awarded", `SELECT COALESCE(SUM(score), 0) FROM website_points`},
	{"issues_this_week", `SELECT COUNT(*) FROM website_issue WHERE created >= NOW() - INTERVAL '7 days' AND is_hidden = false`},
	{"new_users_this_week", `SELECT COUNT(*) FROM auth_user WHERE date_joined >= NOW() - INTERVAL '7 days'`},
}

var activitySpec = query.MustSpec([]string{"created"}, []string{"is_hidden = false"},
	query.Filter{Param: "days", Columns: []string{"created"}, Op: query.WithinDays, Kind: query.Int},
)

type StatsRepository struct {
	DB *store.DB
}

// Total runs the counter at index i of Totals.
func (r StatsRepository) Total(ctx context.Context, i int) (int64, error) {
	return r.DB.Count(ctx, "stats_"+Totals[i].Name, Totals[i].Query)
}

// Activity returns visible issue counts per day, newest day first. The window
// comes from the days parameter of in.
func (r StatsRepository) Activity(ctx context.Context, in query.Input) ([]models.ActivityDay, error) {
	plan := &query.Plan{
		Select:  `to_char(DATE(created), 'YYYY-MM-DD') AS date, COUNT(*) AS issues_count`,
		From:    "website_issue",
		GroupBy: "DATE(created)",
		OrderBy: "DATE(created) DESC",
	}
	where, err := plan.Compile(activitySpec, in)
	if err != nil {
		return nil, err
	}
	plan.Where = where
	q, args := plan.ListSQL()
	return store.Select(ctx, r.DB, "stats_activity", q, args, func(rows *sql.Rows) (models.ActivityDay, error) {
		var d models.ActivityDay
		err := rows.Scan(&d.Date, &d.IssuesCount)
		return d, err
	})
}

func (r StatsRepository) IssuesByLabel(ctx context.Context) ([]models.LabelCount, error) {
	const q = `SELECT label, COUNT(*) AS count
FROM website_issue
WHERE is_hidden = false
GROUP BY label
ORDER BY count DESC, label ASC`
	return store.Select(ctx, r.DB, "stats_labels", q, nil, func(rows *sql.Rows) (models.LabelCount, error) {
		var l models.LabelCount
		if err := rows.Scan(&l.Label, &l.Count); err != nil {
			return l, err
		}
		l.LabelName = models.LabelName(l.Label)
		return l, nil
	})
}

// TopDomains returns up to limit active domains with the most visible issues.
func (r StatsRepository) TopDomains(ctx context.Context, limit int) ([]models.TopDomain, error) {
	const q = `SELECT d.id, d.name, d.url, d.logo, COUNT(i.id) AS issue_count,
	COUNT(CASE WHEN i.status = 'open' THEN 1 END) AS open_issues,
	COUNT(CASE WHEN i.status = 'closed' THEN 1 END) AS closed_issues
FROM website_domain d
JOIN website_issue i ON d.id = i.domain_id
WHERE d.is_active = true AND i.is_hidden = false
GROUP BY d.id, d.name, d.url, d.logo
ORDER BY issue_count DESC, d.id ASC
LIMIT $1`
	return store.Select(ctx, r.DB, "stats_top_domains", q, []any{limit}, func(rows *sql.Rows) (models.TopDomain, error) {
		var d models.TopDomain
		err := rows.Scan(&d.ID, &d.Name, &d.URL, &d.Logo, &d.IssueCount, &d.OpenIssues, &d.ClosedIssues)
		return d, err
	})
}
