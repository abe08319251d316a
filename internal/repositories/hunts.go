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

const huntColumns = `h.id, h.name, h.description, h.url, h.prize, h.prize_winner, h.prize_runner,
	h.prize_second_runner, h.logo, h.banner, h.plan, h.color, h.created, h.starts_on, h.end_on,
	h.result_published, d.id, d.name, d.url,
	(SELECT COUNT(*) FROM website_issue x WHERE x.hunt_id = h.id AND x.is_hidden = false) AS issue_count`

const huntFrom = `website_hunt h
	JOIN website_domain d ON h.domain_id = d.id`

const huntLeaderboardSize = 10

var huntListSpec = query.MustSpec([]string{"h.starts_on", "h.end_on", "h.name"}, []string{"h.is_published = true"},
	query.Filter{Param: "filter", Columns: []string{"h.starts_on", "h.end_on"}, Op: query.Phase},
	query.Filter{Param: "search", Columns: []string{"h.name"}, Op: query.Contains},
)

type HuntRepository struct {
	DB *store.DB
}

// List pages through published hunts. Hunts that have not ended come first,
// then by end date, newest first.
func (r HuntRepository) List(ctx context.Context, in query.Input, p pagination.Params) ([]models.Hunt, int64, error) {
	plan := &query.Plan{Select: huntColumns, From: huntFrom}
	where, err := plan.Compile(huntListSpec, in)
	if err != nil {
		return nil, 0, err
	}
	plan.Where = where
	plan.OrderBy = "CASE WHEN h.end_on >= " + plan.Bind(in.Now) + " THEN 0 ELSE 1 END, h.end_on DESC, h.id ASC"

	return fetchPage(ctx, r.DB, "hunts_list", plan, p, func(rows *sql.Rows) (models.Hunt, error) {
		var h models.Hunt
		err := rows.Scan(huntDest(&h)...)
		return h, err
	})
}

// Get loads a published hunt.
func (r HuntRepository) Get(ctx context.Context, id int64) (models.HuntDetail, error) {
	q := `SELECT ` + huntColumns + `,
	h.is_published, h.modified, d.logo,
	(SELECT COUNT(DISTINCT x.user_id) FROM website_issue x WHERE x.hunt_id = h.id AND x.is_hidden = false) AS participant_count
FROM ` + huntFrom + `
WHERE h.id = $1 AND h.is_published = true`

	var h models.HuntDetail
	dest := append(huntDest(&h.Hunt), &h.IsPublished, &h.Modified, &h.DomainLogo, &h.ParticipantCount)
	found, err := r.DB.Get(ctx, "hunt_get", q, []any{id}, dest...)
	if err != nil {
		return models.HuntDetail{}, err
	}
	if !found {
		return models.HuntDetail{}, domain.NotFoundError{Resource: "Hunt"}
	}
	return h, nil
}

// Prizes returns a hunt's prizes, largest first.
func (r HuntRepository) Prizes(ctx context.Context, huntID int64) ([]models.Prize, error) {
	const q = `SELECT id, hunt_id, name, value, no_of_eligible_projects, valid_submissions_eligible,
	prize_in_crypto, description, created
FROM website_huntprize
WHERE hunt_id = $1
ORDER BY value DESC, id ASC`
	return store.Select(ctx, r.DB, "hunt_prizes", q, []any{huntID}, func(rows *sql.Rows) (models.Prize, error) {
		var p models.Prize
		err := rows.Scan(&p.ID, &p.HuntID, &p.Name, &p.Value, &p.NoOfEligibleProjects, &p.ValidSubmissionsEligible,
			&p.PrizeInCrypto, &p.Description, &p.Created)
		return p, err
	})
}

// Leaderboard returns the hunt's top reporters in rank order. Rank is left
// for the caller to assign.
func (r HuntRepository) Leaderboard(ctx context.Context, huntID int64) ([]models.HuntLeader, error) {
	const q = `SELECT u.id, u.username, up.user_avatar, COUNT(i.id) AS issue_count, COALESCE(SUM(i.score), 0) AS total_score
FROM website_issue i
JOIN auth_user u ON i.user_id = u.id
JOIN website_userprofile up ON u.id = up.user_id
WHERE i.hunt_id = $1 AND i.is_hidden = false
GROUP BY u.id, u.username, up.user_avatar
ORDER BY total_score DESC, issue_count DESC, u.id ASC
LIMIT $2`
	return store.Select(ctx, r.DB, "hunt_leaderboard", q, []any{huntID, huntLeaderboardSize}, func(rows *sql.Rows) (models.HuntLeader, error) {
		var l models.HuntLeader
		err := rows.Scan(&l.ID, &l.Username, &l.UserAvatar, &l.IssueCount, &l.TotalScore)
		return l, err
	})
}

func huntDest(h *models.Hunt) []any {
	return []any{
		&h.ID, &h.Name, &h.Description, &h.URL, &h.Prize, &h.PrizeWinner, &h.PrizeRunner,
		&h.PrizeSecondRunner, &h.Logo, &h.Banner, &h.Plan, &h.Color, &h.Created, &h.StartsOn, &h.EndOn,
		&h.ResultPublished, &h.DomainID, &h.DomainName, &h.DomainURL, &h.IssueCount,
	}
}
