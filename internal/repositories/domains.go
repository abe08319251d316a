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

const domainColumns = `d.id, d.name, d.url, d.logo, d.webshot, d.email, d.twitter, d.facebook,
	d.created, d.has_security_txt, o.id, o.name, o.slug,
	(SELECT COUNT(*) FROM website_issue x WHERE x.domain_id = d.id AND x.status = 'open' AND x.is_hidden = false) AS open_issues,
	(SELECT COUNT(*) FROM website_issue x WHERE x.domain_id = d.id AND x.status = 'closed' AND x.is_hidden = false) AS closed_issues`

const domainFrom = `website_domain d
	LEFT JOIN website_organization o ON d.organization_id = o.id`

var domainListSpec = query.MustSpec([]string{"d.name", "d.url"}, []string{"d.is_active = true"},
	query.Filter{Param: "search", Columns: []string{"d.name", "d.url"}, Op: query.Contains},
)

type DomainRepository struct {
	DB *store.DB
}

func (r DomainRepository) List(ctx context.Context, in query.Input, p pagination.Params) ([]models.Domain, int64, error) {
	plan := &query.Plan{Select: domainColumns, From: domainFrom, OrderBy: "d.created DESC, d.id DESC"}
	where, err := plan.Compile(domainListSpec, in)
	if err != nil {
		return nil, 0, err
	}
	plan.Where = where
	return fetchPage(ctx, r.DB, "domains_list", plan, p, func(rows *sql.Rows) (models.Domain, error) {
		var d models.Domain
		err := rows.Scan(domainDest(&d)...)
		return d, err
	})
}

func (r DomainRepository) Get(ctx context.Context, id int64) (models.DomainDetail, error) {
	q := `SELECT ` + domainColumns + `,
	d.color, d.github, d.clicks, d.modified, d.is_active, o.url
FROM ` + domainFrom + `
WHERE d.id = $1`

	var d models.DomainDetail
	dest := append(domainDest(&d.Domain), &d.Color, &d.Github, &d.Clicks, &d.Modified, &d.IsActive, &d.OrganizationURL)
	found, err := r.DB.Get(ctx, "domain_get", q, []any{id}, dest...)
	if err != nil {
		return models.DomainDetail{}, err
	}
	if !found {
		return models.DomainDetail{}, domain.NotFoundError{Resource: "Domain"}
	}
	return d, nil
}

// TopTester returns the reporter with the most visible issues on the domain,
// or nil when nobody has reported one.
func (r DomainRepository) TopTester(ctx context.Context, id int64) (*models.TopTester, error) {
	const q = `SELECT u.id, u.username, COUNT(i.id) AS issue_count
FROM website_issue i
JOIN auth_user u ON i.user_id = u.id
WHERE i.domain_id = $1 AND i.is_hidden = false
GROUP BY u.id, u.username
ORDER BY issue_count DESC, u.id ASC
LIMIT 1`

	var t models.TopTester
	found, err := r.DB.Get(ctx, "domain_top_tester", q, []any{id}, &t.ID, &t.Username, &t.IssueCount)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

func (r DomainRepository) Tags(ctx context.Context, id int64) ([]models.Tag, error) {
	return tagsOf(ctx, r.DB, "domain_id", id)
}

func domainDest(d *models.Domain) []any {
	return []any{
		&d.ID, &d.Name, &d.URL, &d.Logo, &d.Webshot, &d.Email, &d.Twitter, &d.Facebook,
		&d.Created, &d.HasSecurityTxt, &d.OrganizationID, &d.OrganizationName, &d.OrganizationSlug,
		&d.OpenIssues, &d.ClosedIssues,
	}
}
