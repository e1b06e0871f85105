package dss

import (
	"strings"
	"time"

	"github.com/healthtrack/dss/internal/domain/symptom"
)

// Normalize reduces raw symptom records to the form the matching engine
// consumes. Terms the catalog does not recognize are kept and flagged,
// never dropped. Records with no usable name are skipped.
func Normalize(records []*symptom.Symptom, catalog *Catalog, now time.Time) []NormalizedSymptom {
	out := make([]NormalizedSymptom, 0, len(records))
	for _, rec := range records {
		canonical := strings.ToLower(strings.TrimSpace(rec.CanonicalName))
		if canonical == "" {
			canonical = strings.ToLower(strings.TrimSpace(rec.Name))
		}
		if canonical == "" {
			continue
		}
		out = append(out, NormalizedSymptom{
			ID:         rec.ID,
			Canonical:  canonical,
			Severity:   rec.Severity,
			DaysActive: rec.DaysActive(now),
			Unknown:    !catalog.KnownSymptom(canonical),
		})
	}
	return out
}
