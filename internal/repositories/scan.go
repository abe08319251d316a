package repositories

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

// tagTables lists the join tables that attach tags to a resource, keyed by
// the owning column.
var tagTables = map[string]string{
	"issue_id":        "website_issue_tags",
	"domain_id":       "website_domain_tags",
	"organization_id": "website_organization_tags",
}

func tagsOf(ctx context.Context, db *store.DB, owner string, id int64) ([]models.Tag, error) {
	table := tagTables[owner]
	q := `SELECT t.id, t.name, t.slug FROM website_tag t JOIN ` + table + ` x ON t.id = x.tag_id WHERE x.` + owner + ` = $1 ORDER BY t.name ASC, t.id ASC`
	return store.Select(ctx, db, "tags_"+owner, q, []any{id}, scanTag)
}

func scanTag(rows *sql.Rows) (models.Tag, error) {
	var t models.Tag
	err := rows.Scan(&t.ID, &t.Name, &t.Slug)
	return t, err
}

func scanUserRef(rows *sql.Rows) (models.UserRef, error) {
	var u models.UserRef
	err := rows.Scan(&u.ID, &u.Username)
	return u, err
}

func itoa(n int) string { return strconv.Itoa(n) }
