package symptom

import (
	"context"

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

const symptomCols = `id, user_id, name, canonical_name, severity, start_date, end_date, notes, created_at, updated_at`

func scanSymptom(row pgx.Row) (*Symptom, error) {
	var s Symptom
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.CanonicalName, &s.Severity,
		&s.StartDate, &s.EndDate, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) ListActive(ctx context.Context, userID string) ([]*Symptom, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+symptomCols+` FROM symptom
		WHERE user_id = $1 AND end_date IS NULL
		ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Symptom
	for rows.Next() {
		s, err := scanSymptom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
