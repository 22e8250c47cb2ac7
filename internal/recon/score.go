package recon

import (
	"strings"

	"meibo/internal/domain"
)

// Score computes the weighted match score for one record. Required fields
// weigh 2, all others 1. An empty field earns nothing; a low-confidence field
// earns half its weight; a confident non-empty field earns full weight. Fields
// with no confidence entry default to high when non-empty and low when empty.
// Empty and low-confidence fields are listed in LowFields in schema order.
func (e *Engine) Score(fields domain.FieldValues, confidence domain.ConfidenceMap) domain.QualityInfo {
	totalWeight := 0
	earned := 0.0
	var lowFields []string

	for _, f := range e.schema.Fields() {
		weight := e.schema.Weight(f)
		totalWeight += weight
		val := strings.TrimSpace(fields[f])

		conf, ok := confidence[f]
		if !ok {
			if val != "" {
				conf = domain.ConfidenceHigh
			} else {
				conf = domain.ConfidenceLow
			}
		}

		switch {
		case val == "":
			lowFields = append(lowFields, f)
		case conf == domain.ConfidenceLow:
			earned += float64(weight) * 0.5
			lowFields = append(lowFields, f)
		default:
			earned += float64(weight)
		}
	}

	pct := 0
	if totalWeight > 0 {
		pct = int(earned / float64(totalWeight) * 100)
	}

	var label domain.QualityLabel
	switch {
	case e.IsAcceptable(pct, lowFields):
		label = domain.QualityOK
	case pct >= 60:
		label = domain.QualityNeedsReview
	default:
		label = domain.QualityNeedsReviewLow
	}

	return domain.QualityInfo{Pct: pct, Label: label, LowFields: lowFields}
}

// IsAcceptable reports whether a record scores OK: at least 90% and no required
// field flagged. This predicate is the definition of the OK label; Score uses it
// so the two can never drift apart.
func (e *Engine) IsAcceptable(pct int, lowFields []string) bool {
	if pct < 90 {
		return false
	}
	for _, f := range lowFields {
		if e.schema.IsRequired(f) {
			return false
		}
	}
	return true
}
