// Package store adapts *sql.DB for the repositories: every statement runs
// behind a circuit breaker, is timed, and fails with domain.StoreError.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/logging"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/metrics"
)

type BreakerConfig struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Failures: 5, Timeout: 30 * time.Second}
}

type DB struct {
	db    *sql.DB
	reads *gobreaker.CircuitBreaker[*sql.Rows]
	execs *gobreaker.CircuitBreaker[sql.Result]
}

func New(db *sql.DB, cfg BreakerConfig) *DB {
	if cfg.Failures == 0 {
		cfg.Failures = DefaultBreakerConfig().Failures
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultBreakerConfig().Timeout
	}
	return &DB{
		db:    db,
		reads: gobreaker.NewCircuitBreaker[*sql.Rows](settings("db_read", cfg)),
		execs: gobreaker.NewCircuitBreaker[sql.Result](settings("db_write", cfg)),
	}
}

func settings(name string, cfg BreakerConfig) gobreaker.Settings {
	metrics.BreakerState.WithLabelValues(name).Set(0)
	return gobreaker.Settings{
		Name:    name,
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}
}

// SQL exposes the underlying pool for health checks and shutdown.
func (d *DB) SQL() *sql.DB { return d.db }

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// Query runs a row-returning statement. op names the statement in metrics
// and errors.
func (d *DB) Query(ctx context.Context, op, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.reads.Execute(func() (*sql.Rows, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
	metrics.RecordQuery(op, time.Since(start), err)
	if err != nil {
		return nil, domain.StoreError{Op: op, Err: err}
	}
	return rows, nil
}

func (d *DB) Exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.execs.Execute(func() (sql.Result, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
	metrics.RecordQuery(op, time.Since(start), err)
	if err != nil {
		return nil, domain.StoreError{Op: op, Err: err}
	}
	return res, nil
}

// Get scans the first row into dest. It reports false when no row matched.
func (d *DB) Get(ctx context.Context, op, query string, args []any, dest ...any) (bool, error) {
	rows, err := d.Query(ctx, op, query, args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return false, domain.StoreError{Op: op, Err: err}
		}
		return false, nil
	}
	if err := rows.Scan(dest...); err != nil {
		return false, domain.StoreError{Op: op, Err: err}
	}
	return true, nil
}

// Count runs a single-value COUNT/SUM query.
func (d *DB) Count(ctx context.Context, op, query string, args ...any) (int64, error) {
	var n sql.NullInt64
	if _, err := d.Get(ctx, op, query, args, &n); err != nil {
		return 0, err
	}
	return n.Int64, nil
}

// Select runs query and calls scan once per row.
func Select[T any](ctx context.Context, d *DB, op, query string, args []any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := d.Query(ctx, op, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, domain.StoreError{Op: op, Err: err}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: op, Err: err}
	}
	return out, nil
}
