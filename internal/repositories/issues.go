package repositories

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/query"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

const issueSummaryColumns = `i.id, i.url, i.description, i.label, i.verified, i.score, i.status, i.screenshot,
	i.created, i.modified, i.views, i.rewarded, i.cve_id, i.cve_score,
	u.id, u.username, up.user_avatar, d.id, d.name, d.url, h.id, h.name,
	(SELECT COUNT(*) FROM website_userprofile_issue_upvoted v WHERE v.issue_id = i.id) AS upvotes`

const issueFrom = `website_issue i
	LEFT JOIN auth_user u ON i.user_id = u.id
	LEFT JOIN website_userprofile up ON up.user_id = u.id
	LEFT JOIN website_domain d ON i.domain_id = d.id
	LEFT JOIN website_hunt h ON i.hunt_id = h.id`

const issueOrder = "i.created DESC, i.id DESC"

var issueAllowed = []string{
	"i.id", "i.status", "i.description", "i.url", "i.is_hidden", "i.user_id",
	"i.domain_id", "i.hunt_id", "d.url",
}

var (
	issueListSpec = query.MustSpec(issueAllowed, nil,
		query.Filter{Op: query.VisibleTo, Columns: []string{"i.is_hidden", "i.user_id"}},
		query.Filter{Param: "status", Columns: []string{"i.status"}, Op: query.Equals},
		query.Filter{Param: "domain", Columns: []string{"d.url"}, Op: query.Contains},
		query.Filter{Param: "search", Columns: []string{"i.description", "i.url"}, Op: query.Contains},
	)

	issueDetailSpec = query.MustSpec(issueAllowed, nil,
		query.Filter{Op: query.VisibleTo, Columns: []string{"i.is_hidden", "i.user_id"}},
		query.Filter{Param: "id", Columns: []string{"i.id"}, Op: query.Equals, Kind: query.Int, Source: query.FromPath},
	)

	userIssuesSpec = query.MustSpec(issueAllowed, []string{"i.is_hidden = false"},
		query.Filter{Param: "id", Columns: []string{"i.user_id"}, Op: query.Equals, Kind: query.Int, Source: query.FromPath},
	)

	domainIssuesSpec = query.MustSpec(issueAllowed, []string{"i.is_hidden = false"},
		query.Filter{Param: "id", Columns: []string{"i.domain_id"}, Op: query.Equals, Kind: query.Int, Source: query.FromPath},
		query.Filter{Param: "status", Columns: []string{"i.status"}, Op: query.Equals},
	)

	huntIssuesSpec = query.MustSpec(issueAllowed, []string{"i.is_hidden = false"},
		query.Filter{Param: "id", Columns: []string{"i.hunt_id"}, Op: query.Equals, Kind: query.Int, Source: query.FromPath},
	)
)

// Reaction is a toggleable membership of a user profile on an issue.
type Reaction int

const (
	Upvote Reaction = iota
	Flag
)

func (r Reaction) table() string {
	if r == Flag {
		return "website_userprofile_issue_flaged"
	}
	return "website_userprofile_issue_upvoted"
}

func (r Reaction) String() string {
	if r == Flag {
		return "flag"
	}
	return "upvote"
}

type IssueRepository struct {
	DB *store.DB
}

// List returns one page of issues visible to in.Caller.
func (r IssueRepository) List(ctx context.Context, in query.Input, p pagination.Params) ([]models.IssueSummary, int64, error) {
	return r.page(ctx, "issues_list", issueListSpec, in, p)
}

func (r IssueRepository) ListByUser(ctx context.Context, userID int64, in query.Input, p pagination.Params) ([]models.IssueSummary, int64, error) {
	return r.page(ctx, "issues_by_user", userIssuesSpec, withPathID(in, userID), p)
}

func (r IssueRepository) ListByDomain(ctx context.Context, domainID int64, in query.Input, p pagination.Params) ([]models.IssueSummary, int64, error) {
	return r.page(ctx, "issues_by_domain", domainIssuesSpec, withPathID(in, domainID), p)
}

func (r IssueRepository) ListByHunt(ctx context.Context, huntID int64, in query.Input, p pagination.Params) ([]models.IssueSummary, int64, error) {
	return r.page(ctx, "issues_by_hunt", huntIssuesSpec, withPathID(in, huntID), p)
}

func (r IssueRepository) page(ctx context.Context, op string, spec *query.Spec, in query.Input, p pagination.Params) ([]models.IssueSummary, int64, error) {
	plan := &query.Plan{Select: issueSummaryColumns, From: issueFrom, OrderBy: issueOrder}
	where, err := plan.Compile(spec, in)
	if err != nil {
		return nil, 0, err
	}
	plan.Where = where
	return fetchPage(ctx, r.DB, op, plan, p, scanIssueSummary)
}

// Get loads one issue visible to in.Caller. It returns NotFoundError when the
// issue does not exist or is hidden from the caller.
func (r IssueRepository) Get(ctx context.Context, id int64, in query.Input) (models.IssueDetail, error) {
	plan := &query.Plan{
		Select: issueSummaryColumns + `,
	i.markdown_description, i.user_agent, i.ocr, i.github_url, i.is_hidden,
	u.email, cb.id, cb.username, i.closed_date,
	(SELECT COUNT(*) FROM website_userprofile_issue_flaged f WHERE f.issue_id = i.id) AS flags`,
		From: issueFrom + `
	LEFT JOIN auth_user cb ON i.closed_by_id = cb.id`,
	}
	where, err := plan.Compile(issueDetailSpec, withPathID(in, id))
	if err != nil {
		return models.IssueDetail{}, err
	}
	plan.Where = where
	sqlText, args := plan.ListSQL()

	var d models.IssueDetail
	dest := append(issueSummaryDest(&d.IssueSummary),
		&d.MarkdownDescription, &d.UserAgent, &d.OCR, &d.GithubURL, &d.IsHidden,
		&d.UserEmail, &d.ClosedByID, &d.ClosedByUsername, &d.ClosedDate, &d.Flags,
	)
	found, err := r.DB.Get(ctx, "issue_get", sqlText, args, dest...)
	if err != nil {
		return models.IssueDetail{}, err
	}
	if !found {
		return models.IssueDetail{}, domain.NotFoundError{Resource: "Issue"}
	}
	return d, nil
}

// Visible reports whether the issue exists and is visible to in.Caller.
func (r IssueRepository) Visible(ctx context.Context, id int64, in query.Input) (bool, error) {
	plan := &query.Plan{Select: "1", From: "website_issue i"}
	where, err := plan.Compile(issueDetailSpec, withPathID(in, id))
	if err != nil {
		return false, err
	}
	plan.Where = where
	sqlText, args := plan.ListSQL()
	var one int
	return r.DB.Get(ctx, "issue_visible", sqlText, args, &one)
}

func (r IssueRepository) Screenshots(ctx context.Context, issueID int64) ([]string, error) {
	return store.Select(ctx, r.DB, "issue_screenshots",
		`SELECT image FROM website_issuescreenshot WHERE issue_id = $1 ORDER BY created ASC, id ASC`,
		[]any{issueID},
		func(rows *sql.Rows) (string, error) {
			var s string
			err := rows.Scan(&s)
			return s, err
		})
}

func (r IssueRepository) Tags(ctx context.Context, issueID int64) ([]models.Tag, error) {
	return tagsOf(ctx, r.DB, "issue_id", issueID)
}

// HasReaction reports whether userID's profile holds the reaction on the issue.
func (r IssueRepository) HasReaction(ctx context.Context, kind Reaction, userID, issueID int64) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM ` + kind.table() + ` x
	JOIN website_userprofile up ON up.id = x.userprofile_id
	WHERE up.user_id = $1 AND x.issue_id = $2)`
	var ok bool
	if _, err := r.DB.Get(ctx, "issue_has_"+kind.String(), q, []any{userID, issueID}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Toggle flips the profile's reaction on the issue and reports the new state.
func (r IssueRepository) Toggle(ctx context.Context, kind Reaction, profileID, issueID int64) (bool, error) {
	res, err := r.DB.Exec(ctx, "issue_un"+kind.String(),
		`DELETE FROM `+kind.table()+` WHERE userprofile_id = $1 AND issue_id = $2`,
		profileID, issueID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return false, nil
	}

	if _, err := r.DB.Exec(ctx, "issue_"+kind.String(),
		`INSERT INTO `+kind.table()+` (userprofile_id, issue_id) VALUES ($1, $2)`,
		profileID, issueID); err != nil {
		return false, err
	}
	return true, nil
}

func issueSummaryDest(s *models.IssueSummary) []any {
	return []any{
		&s.ID, &s.URL, &s.Description, &s.Label, &s.Verified, &s.Score, &s.Status, &s.Screenshot,
		&s.Created, &s.Modified, &s.Views, &s.Rewarded, &s.CVEID, &s.CVEScore,
		&s.UserID, &s.UserUsername, &s.UserAvatar, &s.DomainID, &s.DomainName, &s.DomainURL,
		&s.HuntID, &s.HuntName, &s.Upvotes,
	}
}

func scanIssueSummary(rows *sql.Rows) (models.IssueSummary, error) {
	var s models.IssueSummary
	err := rows.Scan(issueSummaryDest(&s)...)
	return s, err
}

// withPathID returns a copy of in carrying id as the path parameter.
func withPathID(in query.Input, id int64) query.Input {
	path := make(map[string]string, len(in.Path)+1)
	for k, v := range in.Path {
		path[k] = v
	}
	path["id"] = strconv.FormatInt(id, 10)
	in.Path = path
	return in
}
