package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

const tablesQuery = `SELECT table_name
FROM information_schema.tables
WHERE table_schema = current_schema()
  AND table_name = ANY($1)`

// MissingTables returns the names in tables that do not exist in the current
// schema, in the order given.
func (d *DB) MissingTables(ctx context.Context, tables []string) ([]string, error) {
	found, err := Select(ctx, d, "schema_tables", tablesQuery, []any{pq.Array(tables)}, func(rows *sql.Rows) (string, error) {
		var name string
		err := rows.Scan(&name)
		return name, err
	})
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(found))
	for _, name := range found {
		present[name] = true
	}
	missing := []string{}
	for _, t := range tables {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	return missing, nil
}
