package symptom

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades how strongly a symptom presents.
type Severity string

const (
	SeverityMild     Severity = "MILD"
	SeverityModerate Severity = "MODERATE"
	SeveritySevere   Severity = "SEVERE"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Symptom maps to the symptom table. Name holds the user's free-text entry;
// CanonicalName is the normalized vocabulary term assigned at capture time.
// An open EndDate means the symptom is still active.
type Symptom struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"user_id"`
	Name          string     `db:"name" json:"name"`
	CanonicalName string     `db:"canonical_name" json:"canonical_name"`
	Severity      Severity   `db:"severity" json:"severity"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the symptom has no recorded end date.
func (s *Symptom) Active() bool { return s.EndDate == nil }

// DaysActive is the whole number of days since onset, never negative.
func (s *Symptom) DaysActive(now time.Time) int {
	d := int(now.Sub(s.StartDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
