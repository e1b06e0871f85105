package dss

import "sort"

// Match scores every catalog disease against the normalized symptoms and
// returns the candidates at or above their disease's match threshold,
// ordered by score descending, then critical-symptom count descending,
// then name ascending.
func Match(symptoms []NormalizedSymptom, diseases []DiseaseDefinition) []MatchResult {
	results := []MatchResult{}
	if len(symptoms) == 0 {
		return results
	}

	present := make(map[string]bool, len(symptoms))
	for _, s := range symptoms {
		present[s.Canonical] = true
	}

	for _, d := range diseases {
		var total, matched float64
		var matchedNames []string
		for name, w := range d.SymptomWeights {
			total += w
			if present[name] {
				matched += w
				matchedNames = append(matchedNames, name)
			}
		}
		if total <= 0 || matched == 0 {
			continue
		}
		score := matched / total
		if score > 1 {
			score = 1
		}
		if score < d.MinMatchThreshold {
			continue
		}
		var critical []string
		for _, cs := range d.CriticalSymptoms {
			if present[cs] {
				critical = append(critical, cs)
			}
		}
		sort.Strings(matchedNames)
		sort.Strings(critical)
		results = append(results, MatchResult{
			DiseaseID:               d.DiseaseID,
			Name:                    d.Name,
			MatchScore:              score,
			MatchedSymptoms:         matchedNames,
			CriticalSymptomsPresent: critical,
			recommendations:         d.Recommendations,
			requiresAttention:       d.RequiresImmediateAttention,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		ci, cj := len(results[i].CriticalSymptomsPresent), len(results[j].CriticalSymptomsPresent)
		if ci != cj {
			return ci > cj
		}
		return results[i].Name < results[j].Name
	})
	return results
}
