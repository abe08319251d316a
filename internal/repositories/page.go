package repositories

import (
	"context"
	"database/sql"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/pagination"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/query"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

// fetchPage counts the plan's rows, then loads the requested page. The page
// query is skipped when the offset is already past the total.
func fetchPage[T any](ctx context.Context, db *store.DB, op string, plan *query.Plan, p pagination.Params, scan func(*sql.Rows) (T, error)) ([]T, int64, error) {
	countSQL, countArgs := plan.CountSQL()
	total, err := db.Count(ctx, op+"_count", countSQL, countArgs...)
	if err != nil {
		return nil, 0, err
	}
	if int64(p.Offset()) >= total {
		return []T{}, total, nil
	}

	pageSQL, pageArgs := plan.PageSQL(p.PerPage, p.Offset())
	rows, err := store.Select(ctx, db, op+"_page", pageSQL, pageArgs, scan)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
