package dss

import (
	"math"
	"sort"

	"github.com/healthtrack/dss/internal/domain/symptom"
)

// Urgency scoring weights and bands.
const (
	urgencyBaseWeight       = 60.0
	urgencyCriticalBonus    = 15.0
	urgencyCriticalBonusCap = 30.0
	urgencySevereBonus      = 10.0
	urgencyModerateBonus    = 5.0
	urgencyDurationBonus    = 10.0
	urgencyDurationDays     = 7

	urgencyConsultThreshold = 30
	urgencyUrgentThreshold  = 70

	recommendationScoreFloor = 0.5
)

// Band recommendation texts.
const (
	recSelfCare  = "Self-care at home is appropriate; monitor your symptoms"
	recConsult   = "Schedule a consultation with your doctor in the next few days"
	recUrgent    = "Seek urgent medical care"
	recAttention = "One or more likely conditions need prompt medical attention"
)

// UrgencyResult is the scorer output folded into the analysis response.
type UrgencyResult struct {
	Score            int
	Level            string
	Recommendations  []string
	CriticalSymptoms []string
}

// ScoreUrgency computes the urgency score from match results and the
// normalized symptoms that produced them. The score is the top match
// score scaled to 60 points, plus bonuses for critical symptoms present,
// the worst symptom severity, and symptom duration, clamped to [0,100].
func ScoreUrgency(matches []MatchResult, symptoms []NormalizedSymptom) UrgencyResult {
	var top float64
	criticalSet := map[string]bool{}
	for _, m := range matches {
		if m.MatchScore > top {
			top = m.MatchScore
		}
		for _, cs := range m.CriticalSymptomsPresent {
			criticalSet[cs] = true
		}
	}

	score := top * urgencyBaseWeight

	criticalBonus := float64(len(criticalSet)) * urgencyCriticalBonus
	if criticalBonus > urgencyCriticalBonusCap {
		criticalBonus = urgencyCriticalBonusCap
	}
	score += criticalBonus

	var severityBonus float64
	longRunning := false
	for _, s := range symptoms {
		switch s.Severity {
		case symptom.SeveritySevere:
			severityBonus = urgencySevereBonus
		case symptom.SeverityModerate:
			if severityBonus < urgencyModerateBonus {
				severityBonus = urgencyModerateBonus
			}
		}
		if s.DaysActive >= urgencyDurationDays {
			longRunning = true
		}
	}
	score += severityBonus
	if longRunning {
		score += urgencyDurationBonus
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	final := int(math.Round(score))

	critical := make([]string, 0, len(criticalSet))
	for cs := range criticalSet {
		critical = append(critical, cs)
	}
	sort.Strings(critical)

	return UrgencyResult{
		Score:            final,
		Level:            urgencyLevel(final),
		Recommendations:  buildRecommendations(final, matches),
		CriticalSymptoms: critical,
	}
}

func urgencyLevel(score int) string {
	switch {
	case score >= urgencyUrgentThreshold:
		return UrgencyHigh
	case score >= urgencyConsultThreshold:
		return UrgencyModerate
	default:
		return UrgencyLow
	}
}

func buildRecommendations(score int, matches []MatchResult) []string {
	var recs []string
	switch {
	case score >= urgencyUrgentThreshold:
		recs = append(recs, recUrgent)
	case score >= urgencyConsultThreshold:
		recs = append(recs, recConsult)
	default:
		recs = append(recs, recSelfCare)
	}

	attention := false
	seen := map[string]bool{}
	for _, m := range matches {
		if m.MatchScore < recommendationScoreFloor {
			continue
		}
		if m.requiresAttention {
			attention = true
		}
		for _, r := range m.recommendations {
			if !seen[r] {
				seen[r] = true
				recs = append(recs, r)
			}
		}
	}
	if attention {
		recs = append(recs, recAttention)
	}
	return recs
}
