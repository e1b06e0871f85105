package symptom

import "context"

// Repository provides read access to a user's symptom records.
type Repository interface {
	// ListActive returns the user's symptoms with no end date,
	// newest onset first.
	ListActive(ctx context.Context, userID string) ([]*Symptom, error)
}
