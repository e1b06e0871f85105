package metric

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthtrack/dss/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const metricCols = `id, user_id, metric_type, value, systolic, diastolic, unit, measured_at, created_at`

func scanMetric(row pgx.Row) (*HealthMetric, error) {
	var m HealthMetric
	err := row.Scan(&m.ID, &m.UserID, &m.MetricType, &m.Value, &m.Systolic, &m.Diastolic,
		&m.Unit, &m.MeasuredAt, &m.CreatedAt)
	return &m, err
}

func (r *repoPG) HistorySince(ctx context.Context, userID string, since time.Time) ([]*HealthMetric, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+metricCols+` FROM health_metric
		WHERE user_id = $1 AND measured_at >= $2
		ORDER BY measured_at ASC`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*HealthMetric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
