package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/query"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

const organizationColumns = `o.id, o.name, o.slug, o.description, o.logo, o.url, o.email, o.twitter,
	o.created, o.type, o.team_points, o.tagline, o.license, o.categories, o.tech_tags, o.topic_tags,
	(SELECT COUNT(*) FROM website_domain x WHERE x.organization_id = o.id) AS domain_count,
	(SELECT COUNT(*) FROM website_project x WHERE x.organization_id = o.id) AS project_count,
	(SELECT COUNT(*) FROM website_userprofile x WHERE x.team_id = o.id) AS member_count`

var (
	organizationListSpec = query.MustSpec([]string{"o.name", "o.description"}, []string{"o.is_active = true"},
		query.Filter{Param: "search", Columns: []string{"o.name", "o.description"}, Op: query.Contains},
	)

	repositorySpec = query.MustSpec([]string{"r.organization_id"}, nil,
		query.Filter{Param: "id", Columns: []string{"r.organization_id"}, Op: query.Equals, Kind: query.Int, Source: query.FromPath},
	)

	memberSpec = query.MustSpec([]string{"up.team_id"}, nil,
		query.Filter{Param: "id", Columns: []string{"up.team_id"}, Op: query.Equals, Kind: query.Int, Source: query.FromPath},
	)
)

type OrganizationRepository struct {
	DB *store.DB
}

func (r OrganizationRepository) List(ctx context.Context, in query.Input, p pagination.Params) ([]models.Organization, int64, error) {
	plan := &query.Plan{Select: organizationColumns, From: "website_organization o", OrderBy: "o.created DESC, o.id DESC"}
	where, err := plan.Compile(organizationListSpec, in)
	if err != nil {
		return nil, 0, err
	}
	plan.Where = where
	return fetchPage(ctx, r.DB, "organizations_list", plan, p, func(rows *sql.Rows) (models.Organization, error) {
		var o models.Organization
		if err := rows.Scan(organizationDest(&o)...); err != nil {
			return o, err
		}
		normalizeArrays(&o)
		return o, nil
	})
}

func (r OrganizationRepository) Get(ctx context.Context, id int64) (models.OrganizationDetail, error) {
	q := `SELECT ` + organizationColumns + `,
	o.modified, o.is_active, o.source_code, u.id, u.username
FROM website_organization o
LEFT JOIN auth_user u ON o.admin_id = u.id
WHERE o.id = $1`

	var o models.OrganizationDetail
	dest := append(organizationDest(&o.Organization), &o.Modified, &o.IsActive, &o.SourceCode, &o.AdminID, &o.AdminUsername)
	found, err := r.DB.Get(ctx, "organization_get", q, []any{id}, dest...)
	if err != nil {
		return models.OrganizationDetail{}, err
	}
	if !found {
		return models.OrganizationDetail{}, domain.NotFoundError{Resource: "Organization"}
	}
	normalizeArrays(&o.Organization)
	return o, nil
}

func (r OrganizationRepository) Tags(ctx context.Context, id int64) ([]models.Tag, error) {
	return tagsOf(ctx, r.DB, "organization_id", id)
}

func (r OrganizationRepository) Managers(ctx context.Context, id int64) ([]models.UserRef, error) {
	const q = `SELECT u.id, u.username
FROM auth_user u
JOIN website_organization_managers m ON u.id = m.user_id
WHERE m.organization_id = $1
ORDER BY u.id ASC`
	return store.Select(ctx, r.DB, "organization_managers", q, []any{id}, scanUserRef)
}

// Repositories pages through the organization's repositories, most starred
// first.
func (r OrganizationRepository) Repositories(ctx context.Context, id int64, in query.Input, p pagination.Params) ([]models.Repository, int64, error) {
	plan := &query.Plan{
		Select: `r.id, r.name, r.slug, r.github_url, r.description, r.stars, r.forks, r.watchers,
	r.open_issues, r.language, r.homepage, r.topics::text, r.archived, r.disabled,
	r.created, r.modified, r.last_pushed`,
		From:    "website_repo r",
		OrderBy: "r.stars DESC, r.id ASC",
	}
	where, err := plan.Compile(repositorySpec, withPathID(in, id))
	if err != nil {
		return nil, 0, err
	}
	plan.Where = where
	return fetchPage(ctx, r.DB, "organization_repositories", plan, p, func(rows *sql.Rows) (models.Repository, error) {
		var x models.Repository
		err := rows.Scan(&x.ID, &x.Name, &x.Slug, &x.GithubURL, &x.Description, &x.Stars, &x.Forks, &x.Watchers,
			&x.OpenIssues, &x.Language, &x.Homepage, &x.Topics, &x.Archived, &x.Disabled,
			&x.Created, &x.Modified, &x.LastPushed)
		return x, err
	})
}

// Members pages through the organization's members ordered by total points.
// Ranks are assigned by the caller from the page offset.
func (r OrganizationRepository) Members(ctx context.Context, id int64, in query.Input, p pagination.Params) ([]models.Member, int64, error) {
	plan := &query.Plan{
		Select: `u.id, u.username, u.first_name, u.last_name, up.user_avatar, up.title, up.role,
	up.github_url, up.contribution_rank, up.merged_pr_count,
	(SELECT COALESCE(SUM(s.score), 0) FROM website_points s WHERE s.user_id = u.id) AS total_score`,
		From: `auth_user u
	JOIN website_userprofile up ON u.id = up.user_id`,
		OrderBy: "total_score DESC, u.id ASC",
	}
	where, err := plan.Compile(memberSpec, withPathID(in, id))
	if err != nil {
		return nil, 0, err
	}
	plan.Where = where
	return fetchPage(ctx, r.DB, "organization_members", plan, p, func(rows *sql.Rows) (models.Member, error) {
		var m models.Member
		err := rows.Scan(&m.ID, &m.Username, &m.FirstName, &m.LastName, &m.UserAvatar, &m.Title, &m.Role,
			&m.GithubURL, &m.ContributionRank, &m.MergedPRCount, &m.TotalScore)
		return m, err
	})
}

func organizationDest(o *models.Organization) []any {
	return []any{
		&o.ID, &o.Name, &o.Slug, &o.Description, &o.Logo, &o.URL, &o.Email, &o.Twitter,
		&o.Created, &o.Type, &o.TeamPoints, &o.Tagline, &o.License,
		pq.Array(&o.Categories), pq.Array(&o.TechTags), pq.Array(&o.TopicTags),
		&o.DomainCount, &o.ProjectCount, &o.MemberCount,
	}
}

func normalizeArrays(o *models.Organization) {
	for _, s := range []*[]string{&o.Categories, &o.TechTags, &o.TopicTags} {
		if *s == nil {
			*s = []string{}
		}
	}
}
