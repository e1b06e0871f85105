package metric

import (
	"context"
	"time"
)

// Repository provides read access to a user's metric history.
type Repository interface {
	// HistorySince returns the user's readings measured at or after the
	// given instant, ordered oldest first.
	HistorySince(ctx context.Context, userID string, since time.Time) ([]*HealthMetric, error)
}
