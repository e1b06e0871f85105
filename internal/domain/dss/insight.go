package dss

import (
	"fmt"
	"time"
)

// Generated insights stay visible for a week before clients hide them.
const insightTTL = 7 * 24 * time.Hour

var predictionLabels = map[PredictionType]string{
	PredictionHypertension:   "hypertension",
	PredictionDiabetes:       "diabetes",
	PredictionCardiovascular: "cardiovascular disease",
	PredictionWeightTrend:    "weight change",
}

// GenerateInsights turns analysis and prediction outcomes into insight
// rows. One insight is emitted per prediction at MODERATE risk or above,
// and one when the urgency score crosses the urgent-care band. IDs are
// assigned at persistence; given the same inputs and clock the output is
// identical.
func GenerateInsights(matches []MatchResult, urgency UrgencyResult, preds []*Prediction, now time.Time) []*Insight {
	var insights []*Insight

	for _, p := range preds {
		if p.RiskLevel.rank() < RiskModerate.rank() {
			continue
		}
		sev := InsightMedium
		if p.RiskLevel == RiskHigh {
			sev = InsightHigh
		}
		msg := fmt.Sprintf("Elevated %s risk (%s)", predictionLabels[p.Type], p.RiskLevel)
		if len(p.Basis) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, p.Basis[0])
		}
		insights = append(insights, &Insight{
			Message:   msg,
			Severity:  sev,
			Category:  CategoryRiskPrediction,
			CreatedAt: now,
			ExpiresAt: now.Add(insightTTL),
		})
	}

	if urgency.Score >= urgencyUrgentThreshold && len(matches) > 0 {
		top := matches[0]
		insights = append(insights, &Insight{
			Message: fmt.Sprintf("Your current symptoms match %s (%.0f%% match) with urgency %d/100. %s",
				top.Name, top.MatchScore*100, urgency.Score, recUrgent),
			Severity:  InsightHigh,
			Category:  CategorySymptomAnalysis,
			CreatedAt: now,
			ExpiresAt: now.Add(insightTTL),
		})
	}

	return insights
}
