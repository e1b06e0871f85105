package dss

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthtrack/dss/internal/domain/symptom"
)

// RiskLevel grades a prediction.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	}
	return false
}

// rank orders risk levels for comparison and for raising a level by one.
func (l RiskLevel) rank() int {
	switch l {
	case RiskModerate:
		return 1
	case RiskHigh:
		return 2
	}
	return 0
}

// raise lifts the level by one band, capped at HIGH.
func (l RiskLevel) raise() RiskLevel {
	switch l {
	case RiskLow:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// PredictionType identifies which risk model produced a prediction.
type PredictionType string

const (
	PredictionHypertension   PredictionType = "HYPERTENSION"
	PredictionDiabetes       PredictionType = "DIABETES"
	PredictionCardiovascular PredictionType = "CARDIOVASCULAR"
	PredictionWeightTrend    PredictionType = "WEIGHT_TREND"
)

func (t PredictionType) Valid() bool {
	switch t {
	case PredictionHypertension, PredictionDiabetes, PredictionCardiovascular, PredictionWeightTrend:
		return true
	}
	return false
}

// InsightSeverity grades a generated insight.
type InsightSeverity string

const (
	InsightLow    InsightSeverity = "LOW"
	InsightMedium InsightSeverity = "MEDIUM"
	InsightHigh   InsightSeverity = "HIGH"
)

// Insight categories.
const (
	CategorySymptomAnalysis = "SYMPTOM_ANALYSIS"
	CategoryRiskPrediction  = "RISK_PREDICTION"
)

// Urgency levels for the analysis response.
const (
	UrgencyLow      = "LOW"
	UrgencyModerate = "MODERATE"
	UrgencyHigh     = "HIGH"
)

// NormalizedSymptom is a symptom record reduced to what the matching
// engine needs. Unknown marks terms absent from every disease definition.
type NormalizedSymptom struct {
	ID         uuid.UUID        `json:"id"`
	Canonical  string           `json:"canonical"`
	Severity   symptom.Severity `json:"severity"`
	DaysActive int              `json:"days_active"`
	Unknown    bool             `json:"unknown"`
}

// MatchResult is one disease candidate produced by the matching engine.
type MatchResult struct {
	DiseaseID               string   `json:"disease_id"`
	Name                    string   `json:"name"`
	MatchScore              float64  `json:"match_score"`
	MatchedSymptoms         []string `json:"matched_symptoms"`
	CriticalSymptomsPresent []string `json:"critical_symptoms_present"`

	// carried for recommendation assembly, not part of the wire shape
	recommendations   []string
	requiresAttention bool
}

// AnalysisResponse is the full symptom analysis result.
type AnalysisResponse struct {
	PossibleDiseases []MatchResult `json:"possible_diseases"`
	UrgencyScore     int           `json:"urgency_score"`
	UrgencyLevel     string        `json:"urgency_level"`
	Recommendations  []string      `json:"recommendations"`
	CriticalSymptoms []string      `json:"critical_symptoms"`
}

// Prediction maps to the health_prediction table.
type Prediction struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"user_id"`
	Type       PredictionType `db:"prediction_type" json:"type"`
	RiskLevel  RiskLevel      `db:"risk_level" json:"risk_level"`
	RiskScore  float64        `db:"risk_score" json:"risk_score"`
	Basis      []string       `db:"basis" json:"basis"`
	Algorithm  string         `db:"algorithm" json:"algorithm"`
	ComputedAt time.Time      `db:"computed_at" json:"computed_at"`
	ValidUntil time.Time      `db:"valid_until" json:"valid_until"`
}

// Valid reports whether the prediction has not yet expired.
func (p *Prediction) Valid(now time.Time) bool { return now.Before(p.ValidUntil) }

// Insight maps to the health_insight table. Rows are append-only except
// the read flag.
type Insight struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Message   string          `db:"message" json:"message"`
	Severity  InsightSeverity `db:"severity" json:"severity"`
	Category  string          `db:"category" json:"category"`
	Read      bool            `db:"read" json:"read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	ExpiresAt time.Time       `db:"expires_at" json:"expires_at"`
}
