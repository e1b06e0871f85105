package dss

import (
	"context"
	"fmt"

	"github.com/google/uuid"
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

// =========== Insight Repository ===========

type insightRepoPG struct{ pool *pgxpool.Pool }

func NewInsightRepoPG(pool *pgxpool.Pool) InsightRepository { return &insightRepoPG{pool: pool} }

func (r *insightRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const insightCols = `id, user_id, message, severity, category, read, created_at, expires_at`

func scanInsight(row pgx.Row) (*Insight, error) {
	var ins Insight
	err := row.Scan(&ins.ID, &ins.UserID, &ins.Message, &ins.Severity, &ins.Category,
		&ins.Read, &ins.CreatedAt, &ins.ExpiresAt)
	return &ins, err
}

func (r *insightRepoPG) Create(ctx context.Context, ins *Insight) error {
	ins.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO health_insight (id, user_id, message, severity, category, read, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ins.ID, ins.UserID, ins.Message, ins.Severity, ins.Category, ins.Read, ins.CreatedAt, ins.ExpiresAt)
	return err
}

func (r *insightRepoPG) GetByID(ctx context.Context, userID string, id uuid.UUID) (*Insight, error) {
	return scanInsight(r.conn(ctx).QueryRow(ctx,
		`SELECT `+insightCols+` FROM health_insight WHERE id = $1 AND user_id = $2`, id, userID))
}

func (r *insightRepoPG) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Insight, int, error) {
	where := `user_id = $1`
	if unreadOnly {
		where += ` AND read = FALSE`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM health_insight WHERE `+where, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+insightCols+` FROM health_insight WHERE `+where+`
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Insight
	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ins)
	}
	return items, total, rows.Err()
}

func (r *insightRepoPG) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM health_insight WHERE user_id = $1 AND read = FALSE`, userID).Scan(&count)
	return count, err
}

func (r *insightRepoPG) MarkRead(ctx context.Context, userID string, id uuid.UUID) (*Insight, error) {
	return scanInsight(r.conn(ctx).QueryRow(ctx, `
		UPDATE health_insight SET read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING `+insightCols, id, userID))
}

func (r *insightRepoPG) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM health_insight WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// =========== Prediction Repository ===========

type predictionRepoPG struct{ pool *pgxpool.Pool }

func NewPredictionRepoPG(pool *pgxpool.Pool) PredictionRepository { return &predictionRepoPG{pool: pool} }

func (r *predictionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const predictionCols = `id, user_id, prediction_type, risk_level, risk_score, basis, algorithm, computed_at, valid_until`

func scanPrediction(row pgx.Row) (*Prediction, error) {
	var p Prediction
	err := row.Scan(&p.ID, &p.UserID, &p.Type, &p.RiskLevel, &p.RiskScore, &p.Basis,
		&p.Algorithm, &p.ComputedAt, &p.ValidUntil)
	return &p, err
}

func (r *predictionRepoPG) Create(ctx context.Context, p *Prediction) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO health_prediction (id, user_id, prediction_type, risk_level, risk_score, basis, algorithm, computed_at, valid_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.UserID, p.Type, p.RiskLevel, p.RiskScore, p.Basis, p.Algorithm, p.ComputedAt, p.ValidUntil)
	return err
}

func (r *predictionRepoPG) List(ctx context.Context, userID string, predType PredictionType, validOnly bool, limit, offset int) ([]*Prediction, int, error) {
	where := `user_id = $1`
	args := []interface{}{userID}
	if predType != "" {
		args = append(args, predType)
		where += fmt.Sprintf(` AND prediction_type = $%d`, len(args))
	}
	if validOnly {
		where += ` AND valid_until > NOW()`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM health_prediction WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT `+predictionCols+` FROM health_prediction WHERE `+where+`
		ORDER BY computed_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *predictionRepoPG) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM health_prediction WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
