package repositories

import (
	"context"
	"database/sql"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/query"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

// ProfileFields are the website_userprofile columns a user may edit.
var ProfileFields = []string{
	"role",
	"description",
	"btc_address",
	"bch_address",
	"eth_address",
	"x_username",
	"linkedin_url",
	"github_url",
	"website_url",
	"discounted_hourly_rate",
}

const profileReturning = `id, user_id, role, description, btc_address, bch_address, eth_address,
	x_username, linkedin_url, github_url, website_url, discounted_hourly_rate, modified`

var pointsSpec = query.MustSpec([]string{"p.user_id"}, nil,
	query.Filter{Param: "id", Columns: []string{"p.user_id"}, Op: query.Equals, Kind: query.Int, Source: query.FromPath},
)

type UserRepository struct {
	DB *store.DB
}

// Get loads the account, its profile row and team. Totals and badges are
// loaded separately.
func (r UserRepository) Get(ctx context.Context, id int64) (models.UserProfile, error) {
	const q = `SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.date_joined,
	up.user_avatar, up.title, up.role, up.description, up.winnings,
	up.btc_address, up.bch_address, up.eth_address, up.visit_count, up.merged_pr_count,
	up.contribution_rank, up.current_streak, up.longest_streak, up.x_username,
	up.linkedin_url, up.github_url, up.website_url, up.discounted_hourly_rate,
	o.id, o.name, o.slug
FROM auth_user u
LEFT JOIN website_userprofile up ON u.id = up.user_id
LEFT JOIN website_organization o ON up.team_id = o.id
WHERE u.id = $1`

	var u models.UserProfile
	found, err := r.DB.Get(ctx, "user_get", q, []any{id},
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.DateJoined,
		&u.UserAvatar, &u.Title, &u.Role, &u.Description, &u.Winnings,
		&u.BTCAddress, &u.BCHAddress, &u.ETHAddress, &u.VisitCount, &u.MergedPRCount,
		&u.ContributionRank, &u.CurrentStreak, &u.LongestStreak, &u.XUsername,
		&u.LinkedinURL, &u.GithubURL, &u.WebsiteURL, &u.DiscountedHourlyRate,
		&u.TeamID, &u.TeamName, &u.TeamSlug,
	)
	if err != nil {
		return models.UserProfile{}, err
	}
	if !found {
		return models.UserProfile{}, domain.NotFoundError{Resource: "User"}
	}
	return u, nil
}

func (r UserRepository) TotalScore(ctx context.Context, id int64) (int64, error) {
	return r.DB.Count(ctx, "user_total_score",
		`SELECT COALESCE(SUM(score), 0) FROM website_points WHERE user_id = $1`, id)
}

func (r UserRepository) IssuesCount(ctx context.Context, id int64) (int64, error) {
	return r.DB.Count(ctx, "user_issues_count",
		`SELECT COUNT(*) FROM website_issue WHERE user_id = $1 AND is_hidden = false`, id)
}

func (r UserRepository) Badges(ctx context.Context, id int64) ([]models.Badge, error) {
	const q = `SELECT b.id, b.title, b.description, b.icon, ub.awarded_at
FROM website_userbadge ub
JOIN website_badge b ON ub.badge_id = b.id
WHERE ub.user_id = $1
ORDER BY ub.awarded_at DESC, b.id ASC`
	return store.Select(ctx, r.DB, "user_badges", q, []any{id}, func(rows *sql.Rows) (models.Badge, error) {
		var b models.Badge
		err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.Icon, &b.AwardedAt)
		return b, err
	})
}

// ProfileID returns the profile row id of an account, reporting false when
// the account has no profile.
func (r UserRepository) ProfileID(ctx context.Context, userID int64) (int64, bool, error) {
	var id int64
	found, err := r.DB.Get(ctx, "user_profile_id",
		`SELECT id FROM website_userprofile WHERE user_id = $1`, []any{userID}, &id)
	return id, found, err
}

// UpdateProfile writes the allow-listed keys of body to the user's profile
// and stamps modified.
func (r UserRepository) UpdateProfile(ctx context.Context, userID int64, body map[string]any) (models.Profile, error) {
	set, err := query.Assignments(ProfileFields, body, 1)
	if err != nil {
		return models.Profile{}, err
	}
	q := `UPDATE website_userprofile SET ` + set.SQL + `, modified = NOW()
WHERE user_id = $` + itoa(set.Next) + `
RETURNING ` + profileReturning
	args := append(set.Args, userID)

	var p models.Profile
	found, err := r.DB.Get(ctx, "user_profile_update", q, args,
		&p.ID, &p.UserID, &p.Role, &p.Description, &p.BTCAddress, &p.BCHAddress, &p.ETHAddress,
		&p.XUsername, &p.LinkedinURL, &p.GithubURL, &p.WebsiteURL, &p.DiscountedHourlyRate, &p.Modified,
	)
	if err != nil {
		return models.Profile{}, err
	}
	if !found {
		return models.Profile{}, domain.NotFoundError{Resource: "User profile"}
	}
	return p, nil
}

// Points returns one page of the user's points history, newest first.
func (r UserRepository) Points(ctx context.Context, userID int64, in query.Input, p pagination.Params) ([]models.PointEntry, int64, error) {
	plan := &query.Plan{
		Select: `p.id, p.score, p.reason, p.created, i.id, i.description, d.id, d.name`,
		From: `website_points p
	LEFT JOIN website_issue i ON p.issue_id = i.id
	LEFT JOIN website_domain d ON p.domain_id = d.id`,
		OrderBy: "p.created DESC, p.id DESC",
	}
	where, err := plan.Compile(pointsSpec, withPathID(in, userID))
	if err != nil {
		return nil, 0, err
	}
	plan.Where = where
	return fetchPage(ctx, r.DB, "user_points", plan, p, func(rows *sql.Rows) (models.PointEntry, error) {
		var e models.PointEntry
		err := rows.Scan(&e.ID, &e.Score, &e.Reason, &e.Created, &e.IssueID, &e.IssueDescription, &e.DomainID, &e.DomainName)
		return e, err
	})
}
