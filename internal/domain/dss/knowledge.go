package dss

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

//go:embed diseases.json
var embeddedCatalog []byte

const weightSumEpsilon = 1e-6

// DiseaseDefinition is one entry of the static disease catalog.
// SymptomWeights maps canonical symptom names to their contribution;
// weights for a disease sum to 1.0.
type DiseaseDefinition struct {
	DiseaseID                  string             `json:"disease_id"`
	Name                       string             `json:"name"`
	Category                   string             `json:"category"`
	SymptomWeights             map[string]float64 `json:"symptom_weights"`
	CriticalSymptoms           []string           `json:"critical_symptoms"`
	MinMatchThreshold          float64            `json:"min_match_threshold"`
	RequiresImmediateAttention bool               `json:"requires_immediate_attention"`
	Recommendations            []string           `json:"recommendations"`
}

// Catalog is the immutable disease knowledge base. It is built once at
// startup and shared read-only across requests.
type Catalog struct {
	diseases []DiseaseDefinition
	symptoms map[string]bool
}

// LoadEmbeddedCatalog parses and validates the catalog compiled into the
// binary. Any failure here is a build defect, so callers treat it as fatal.
func LoadEmbeddedCatalog() (*Catalog, error) {
	return LoadCatalog(embeddedCatalog)
}

// LoadCatalog parses and validates a JSON disease catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var defs []DiseaseDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse disease catalog: %w", err)
	}
	return NewCatalog(defs)
}

// NewCatalog validates the definitions and returns a catalog with diseases
// ordered by disease_id.
func NewCatalog(defs []DiseaseDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("disease catalog is empty")
	}
	seen := make(map[string]bool, len(defs))
	symptoms := make(map[string]bool)
	for _, d := range defs {
		if d.DiseaseID == "" {
			return nil, fmt.Errorf("disease %q: disease_id is required", d.Name)
		}
		if seen[d.DiseaseID] {
			return nil, fmt.Errorf("disease %s: duplicate disease_id", d.DiseaseID)
		}
		seen[d.DiseaseID] = true
		if d.Name == "" {
			return nil, fmt.Errorf("disease %s: name is required", d.DiseaseID)
		}
		if len(d.SymptomWeights) == 0 {
			return nil, fmt.Errorf("disease %s: symptom_weights is required", d.DiseaseID)
		}
		var sum float64
		for name, w := range d.SymptomWeights {
			if name == "" {
				return nil, fmt.Errorf("disease %s: empty symptom name", d.DiseaseID)
			}
			if w <= 0 || w > 1 {
				return nil, fmt.Errorf("disease %s: weight for %s out of range: %v", d.DiseaseID, name, w)
			}
			sum += w
			symptoms[name] = true
		}
		if math.Abs(sum-1.0) > weightSumEpsilon {
			return nil, fmt.Errorf("disease %s: symptom weights sum to %v, want 1.0", d.DiseaseID, sum)
		}
		if d.MinMatchThreshold < 0 || d.MinMatchThreshold > 1 {
			return nil, fmt.Errorf("disease %s: min_match_threshold out of range: %v", d.DiseaseID, d.MinMatchThreshold)
		}
		for _, cs := range d.CriticalSymptoms {
			if _, ok := d.SymptomWeights[cs]; !ok {
				return nil, fmt.Errorf("disease %s: critical symptom %s has no weight", d.DiseaseID, cs)
			}
		}
	}
	sorted := make([]DiseaseDefinition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DiseaseID < sorted[j].DiseaseID })
	return &Catalog{diseases: sorted, symptoms: symptoms}, nil
}

// Diseases returns the catalog ordered by disease_id. Callers must not
// mutate the returned slice.
func (c *Catalog) Diseases() []DiseaseDefinition { return c.diseases }

// KnownSymptom reports whether any disease weighs the canonical name.
func (c *Catalog) KnownSymptom(canonical string) bool { return c.symptoms[canonical] }
