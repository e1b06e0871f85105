package dss

import (
	"context"

	"github.com/google/uuid"
)

// InsightRepository persists generated insights. All reads and writes are
// scoped to the owning user; acting on another user's row surfaces as
// not-found.
type InsightRepository interface {
	Create(ctx context.Context, ins *Insight) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*Insight, error)
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*Insight, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) (*Insight, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// PredictionRepository persists risk predictions, scoped like insights.
type PredictionRepository interface {
	Create(ctx context.Context, p *Prediction) error
	List(ctx context.Context, userID string, predType PredictionType, validOnly bool, limit, offset int) ([]*Prediction, int, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}
