// Package badge turns severity counts into a letter grade and renders
// it as an SVG or shields.io endpoint badge for READMEs and CI pages.
package badge

import "sentinel/internal/model"

// Grade computes a letter grade and badge color from finding severity
// counts. Informational findings never lower the grade; only critical,
// high, medium, and low findings count.
func Grade(countsBySeverity map[string]int) (grade string, color string) {
	critical := countsBySeverity[model.SeverityCritical]
	high := countsBySeverity[model.SeverityHigh]
	actionable := 0
	for sev, c := range countsBySeverity {
		if model.NormalizeSeverity(sev) == model.SeverityInfo {
			continue
		}
		actionable += c
	}

	switch {
	case actionable == 0:
		return "A+", "brightgreen"
	case critical == 0 && high == 0:
		return "A", "green"
	case critical == 0 && high <= 3:
		return "B", "yellowgreen"
	case critical == 0:
		return "C", "yellow"
	case critical <= 3:
		return "D", "orange"
	default:
		return "F", "red"
	}
}
