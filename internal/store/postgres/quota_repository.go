package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mizanhq/mizan/internal/quota"
)

// QuotaRepository implements quota.Checker against plan_limits and
// usage_counters. Usage is counted per calendar month.
type QuotaRepository struct {
	db *DB
}

// NewQuotaRepository creates a new quota repository
func NewQuotaRepository(db *DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Check returns whether tenantID is within its plan limit for metric.
// A plan with no limit row for the metric is unmetered and always
// allowed.
func (r *QuotaRepository) Check(ctx context.Context, tenantID, metric string) (quota.Result, error) {
	var limit int
	err := r.db.pool.QueryRow(ctx, `
		SELECT pl.monthly_limit
		FROM tenants t
		JOIN plan_limits pl ON pl.plan = t.plan AND pl.metric = $2
		WHERE t.id = $1
	`, tenantID, metric).Scan(&limit)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quota.Result{Allowed: true}, nil
		}
		return quota.Result{}, fmt.Errorf("failed to look up plan limit: %w", err)
	}

	var used int
	err = r.db.pool.QueryRow(ctx, `
		SELECT used FROM usage_counters
		WHERE tenant_id = $1 AND metric = $2 AND period = $3
	`, tenantID, metric, currentPeriod()).Scan(&used)

	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return quota.Result{}, fmt.Errorf("failed to look up usage: %w", err)
	}

	return quota.Result{Allowed: used < limit, Limit: limit, Used: used}, nil
}

// Record increments the usage counter for the current period. Called
// after a metered action succeeds, never before.
func (r *QuotaRepository) Record(ctx context.Context, tenantID, metric string) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO usage_counters (tenant_id, metric, period, used)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, metric, period) DO UPDATE SET used = usage_counters.used + 1
	`, tenantID, metric, currentPeriod())

	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

func currentPeriod() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
