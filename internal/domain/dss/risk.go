package dss

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/healthtrack/dss/internal/domain/metric"
)

// ErrInvalidWindow is returned when the trailing window is not positive.
var ErrInvalidWindow = errors.New("risk window must be a positive number of days")

// A risk model only runs when it has at least this many readings in the
// window. Models with fewer readings are skipped silently.
const minRiskReadings = 3

// Algorithm tags stamped onto persisted predictions.
const (
	algoHypertension   = "hypertension-trend-v1"
	algoDiabetes       = "glucose-threshold-v1"
	algoCardiovascular = "cardiovascular-composite-v1"
	algoWeightTrend    = "weight-trend-v1"
)

// Threshold constants, in the units the metrics are stored in.
const (
	systolicModerate   = 130.0
	systolicHigh       = 140.0
	systolicSlopeLimit = 0.5 // mmHg per day

	glucoseModerate = 100.0
	glucoseHigh     = 126.0

	bmiOverweight = 25.0
	bmiObese      = 30.0

	restingHeartRateHigh = 100.0

	weightChangeModeratePct = 5.0
	weightChangeHighPct     = 10.0

	cardioPointsModerate = 20.0
	cardioPointsHigh     = 40.0
)

// Predictions stay actionable for six months from computation.
func predictionValidUntil(now time.Time) time.Time { return now.AddDate(0, 6, 0) }

type seriesPoint struct {
	t time.Time
	v float64
}

// PredictRisks runs every risk model over the metric history restricted to
// the trailing window and returns one prediction per model that had enough
// readings. The result order is fixed: hypertension, diabetes,
// cardiovascular, weight trend.
func PredictRisks(metrics []*metric.HealthMetric, windowDays int, now time.Time) ([]*Prediction, error) {
	if windowDays <= 0 {
		return nil, ErrInvalidWindow
	}
	windowStart := now.AddDate(0, 0, -windowDays)

	series := map[metric.Type][]seriesPoint{}
	for _, m := range metrics {
		if m.MeasuredAt.Before(windowStart) || m.MeasuredAt.After(now) {
			continue
		}
		switch m.MetricType {
		case metric.TypeBloodPressure:
			if m.Systolic != nil {
				series[metric.TypeBloodPressure] = append(series[metric.TypeBloodPressure], seriesPoint{m.MeasuredAt, *m.Systolic})
			}
		default:
			if m.Value != nil {
				series[m.MetricType] = append(series[m.MetricType], seriesPoint{m.MeasuredAt, *m.Value})
			}
		}
	}
	for _, pts := range series {
		sort.Slice(pts, func(i, j int) bool { return pts[i].t.Before(pts[j].t) })
	}

	var preds []*Prediction
	if p := predictHypertension(series[metric.TypeBloodPressure], now); p != nil {
		preds = append(preds, p)
	}
	if p := predictDiabetes(series[metric.TypeBloodSugar], now); p != nil {
		preds = append(preds, p)
	}
	if p := predictCardiovascular(series, now); p != nil {
		preds = append(preds, p)
	}
	if p := predictWeightTrend(series[metric.TypeWeight], now); p != nil {
		preds = append(preds, p)
	}
	return preds, nil
}

func predictHypertension(systolic []seriesPoint, now time.Time) *Prediction {
	if len(systolic) < minRiskReadings {
		return nil
	}
	m := mean(systolic)
	level := RiskLow
	switch {
	case m >= systolicHigh:
		level = RiskHigh
	case m >= systolicModerate:
		level = RiskModerate
	}
	basis := []string{fmt.Sprintf("mean systolic %.0f mmHg over %d readings", m, len(systolic))}
	if slope := leastSquaresSlope(systolic); slope > systolicSlopeLimit {
		level = level.raise()
		basis = append(basis, fmt.Sprintf("systolic rising %.1f mmHg/day", slope))
	}
	return &Prediction{
		Type:       PredictionHypertension,
		RiskLevel:  level,
		RiskScore:  m,
		Basis:      basis,
		Algorithm:  algoHypertension,
		ComputedAt: now,
		ValidUntil: predictionValidUntil(now),
	}
}

func predictDiabetes(glucose []seriesPoint, now time.Time) *Prediction {
	if len(glucose) < minRiskReadings {
		return nil
	}
	m := mean(glucose)
	level := RiskLow
	switch {
	case m >= glucoseHigh:
		level = RiskHigh
	case m >= glucoseModerate:
		level = RiskModerate
	}
	return &Prediction{
		Type:       PredictionDiabetes,
		RiskLevel:  level,
		RiskScore:  m,
		Basis:      []string{fmt.Sprintf("mean fasting glucose %.0f mg/dL over %d readings", m, len(glucose))},
		Algorithm:  algoDiabetes,
		ComputedAt: now,
		ValidUntil: predictionValidUntil(now),
	}
}

// predictCardiovascular combines the other series into a point total.
// Blood pressure is the anchor signal, so the model is skipped entirely
// without enough readings of it; the other factors only contribute when
// they have enough readings of their own.
func predictCardiovascular(series map[metric.Type][]seriesPoint, now time.Time) *Prediction {
	systolic := series[metric.TypeBloodPressure]
	if len(systolic) < minRiskReadings {
		return nil
	}

	var points float64
	var basis []string

	if m := mean(systolic); m >= systolicHigh {
		points += 25
		basis = append(basis, fmt.Sprintf("elevated blood pressure (mean systolic %.0f mmHg)", m))
	} else if m >= systolicModerate {
		points += 10
		basis = append(basis, fmt.Sprintf("borderline blood pressure (mean systolic %.0f mmHg)", m))
	}

	if bmi := series[metric.TypeBMI]; len(bmi) >= minRiskReadings {
		if m := mean(bmi); m > bmiObese {
			points += 20
			basis = append(basis, fmt.Sprintf("BMI in obese range (mean %.1f)", m))
		} else if m > bmiOverweight {
			points += 10
			basis = append(basis, fmt.Sprintf("BMI in overweight range (mean %.1f)", m))
		}
	}

	if hr := series[metric.TypeHeartRate]; len(hr) >= minRiskReadings {
		if m := mean(hr); m > restingHeartRateHigh {
			points += 15
			basis = append(basis, fmt.Sprintf("elevated resting heart rate (mean %.0f bpm)", m))
		}
	}

	if glucose := series[metric.TypeBloodSugar]; len(glucose) >= minRiskReadings {
		if m := mean(glucose); m >= glucoseHigh {
			points += 10
			basis = append(basis, fmt.Sprintf("elevated fasting glucose (mean %.0f mg/dL)", m))
		}
	}

	level := RiskLow
	switch {
	case points >= cardioPointsHigh:
		level = RiskHigh
	case points >= cardioPointsModerate:
		level = RiskModerate
	}
	if len(basis) == 0 {
		basis = []string{"no elevated cardiovascular factors in the window"}
	}
	return &Prediction{
		Type:       PredictionCardiovascular,
		RiskLevel:  level,
		RiskScore:  points,
		Basis:      basis,
		Algorithm:  algoCardiovascular,
		ComputedAt: now,
		ValidUntil: predictionValidUntil(now),
	}
}

func predictWeightTrend(weights []seriesPoint, now time.Time) *Prediction {
	if len(weights) < minRiskReadings {
		return nil
	}
	first := weights[0]
	last := weights[len(weights)-1]
	if first.v <= 0 {
		return nil
	}
	spanDays := last.t.Sub(first.t).Hours() / 24
	if spanDays <= 0 {
		return nil
	}
	slope := leastSquaresSlope(weights)
	changePct := slope * spanDays / first.v * 100
	abs := math.Abs(changePct)

	level := RiskLow
	switch {
	case abs > weightChangeHighPct:
		level = RiskHigh
	case abs > weightChangeModeratePct:
		level = RiskModerate
	}
	direction := "gained"
	if changePct < 0 {
		direction = "lost"
	}
	return &Prediction{
		Type:       PredictionWeightTrend,
		RiskLevel:  level,
		RiskScore:  abs,
		Basis:      []string{fmt.Sprintf("%s %.1f%% body weight over %d days", direction, abs, int(spanDays))},
		Algorithm:  algoWeightTrend,
		ComputedAt: now,
		ValidUntil: predictionValidUntil(now),
	}
}

func mean(pts []seriesPoint) float64 {
	var sum float64
	for _, p := range pts {
		sum += p.v
	}
	return sum / float64(len(pts))
}

// leastSquaresSlope fits value against days-since-first-reading and
// returns the slope in value units per day. A degenerate series where all
// readings share a timestamp yields zero.
func leastSquaresSlope(pts []seriesPoint) float64 {
	n := float64(len(pts))
	origin := pts[0].t
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range pts {
		x := p.t.Sub(origin).Hours() / 24
		sumX += x
		sumY += p.v
		sumXY += x * p.v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
