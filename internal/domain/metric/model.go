package metric

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies what a health metric reading measures.
type Type string

const (
	TypeBloodPressure Type = "BLOOD_PRESSURE"
	TypeBloodSugar    Type = "BLOOD_SUGAR"
	TypeWeight        Type = "WEIGHT"
	TypeBMI           Type = "BMI"
	TypeHeartRate     Type = "HEART_RATE"
)

func (t Type) Valid() bool {
	switch t {
	case TypeBloodPressure, TypeBloodSugar, TypeWeight, TypeBMI, TypeHeartRate:
		return true
	}
	return false
}

// HealthMetric maps to the health_metric table. Scalar readings use Value;
// blood pressure readings use Systolic and Diastolic instead.
type HealthMetric struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	MetricType Type      `db:"metric_type" json:"metric_type"`
	Value      *float64  `db:"value" json:"value,omitempty"`
	Systolic   *float64  `db:"systolic" json:"systolic,omitempty"`
	Diastolic  *float64  `db:"diastolic" json:"diastolic,omitempty"`
	Unit       *string   `db:"unit" json:"unit,omitempty"`
	MeasuredAt time.Time `db:"measured_at" json:"measured_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
