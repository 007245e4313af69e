package model

import (
	"strings"
	"time"
)

// Severity levels, most severe first. Rule files may also use
// warn/warning/moderate, which normalize to medium.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

var severityRank = map[string]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// NormalizeSeverity maps free-form severity strings onto the canonical
// five-level scale. Unknown values degrade to info.
func NormalizeSeverity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return s
	case "warn", "warning", "moderate", "medium-high":
		return SeverityMedium
	default:
		return SeverityInfo
	}
}

// SeverityRank returns the sort rank of a severity (lower = more severe).
// Unknown severities rank below info.
func SeverityRank(s string) int {
	if rank, ok := severityRank[NormalizeSeverity(s)]; ok {
		return rank
	}
	return len(severityRank)
}

// SeverityAtLeast reports whether severity s is at least as severe as
// the threshold. An empty threshold never matches.
func SeverityAtLeast(s, threshold string) bool {
	threshold = strings.ToLower(strings.TrimSpace(threshold))
	if threshold == "" {
		return false
	}
	return SeverityRank(s) <= SeverityRank(threshold)
}

// Finding is one detected match of a rule against a source unit.
// Immutable after creation; the orchestrator owns aggregation.
type Finding struct {
	RuleID      string `json:"rule_id"`
	DetectorID  string `json:"detector_id,omitempty"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line,omitempty"`
	Language    string `json:"language,omitempty"`
	Evidence    string `json:"evidence,omitempty"`
	Remediation string `json:"remediation,omitempty"`
	CWE         string `json:"cwe,omitempty"`

	Suppressed        bool   `json:"suppressed,omitempty"`
	SuppressionReason string `json:"suppression_reason,omitempty"`
	SuppressionSource string `json:"suppression_source,omitempty"`
}

// ScanError kinds. Errors local to one file (or one rule on one file)
// are recorded here instead of aborting the scan.
const (
	ErrorKindRead    = "read"
	ErrorKindTimeout = "timeout"
	ErrorKindPattern = "pattern"
)

type ScanError struct {
	Kind    string `json:"kind"`
	File    string `json:"file,omitempty"`
	RuleID  string `json:"rule_id,omitempty"`
	Message string `json:"message"`
}

// Report is the terminal artifact of one scan invocation.
type Report struct {
	RootPath     string    `json:"root_path"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	DurationMS   int64     `json:"duration_ms"`
	FilesScanned int       `json:"files_scanned"`
	FilesSkipped int       `json:"files_skipped"`
	RuleCount    int       `json:"rule_count"`
	SkippedRules int       `json:"skipped_rules,omitempty"`

	Findings           []Finding `json:"findings"`
	SuppressedFindings []Finding `json:"suppressed_findings,omitempty"`
	Errors             []ScanError `json:"errors,omitempty"`

	CountsBySeverity map[string]int `json:"counts_by_severity"`
	CountsByCategory map[string]int `json:"counts_by_category"`

	// Incomplete marks a scan that was cancelled before visiting every
	// file; the findings collected so far are still valid.
	Incomplete bool `json:"incomplete,omitempty"`
}

// Recount rebuilds the severity and category tallies from the active
// (non-suppressed) findings.
func (r *Report) Recount() {
	r.CountsBySeverity = make(map[string]int, len(severityRank))
	r.CountsByCategory = make(map[string]int, 16)
	for _, f := range r.Findings {
		r.CountsBySeverity[NormalizeSeverity(f.Severity)]++
		cat := strings.ToLower(strings.TrimSpace(f.Category))
		if cat == "" {
			cat = "general"
		}
		r.CountsByCategory[cat]++
	}
}

// HasFindingsAtOrAbove reports whether any active finding meets the
// severity threshold.
func (r *Report) HasFindingsAtOrAbove(threshold string) bool {
	for _, f := range r.Findings {
		if SeverityAtLeast(f.Severity, threshold) {
			return true
		}
	}
	return false
}
