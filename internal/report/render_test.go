package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"sentinel/internal/model"
)

func sampleReport() model.Report {
	r := model.Report{
		RootPath:     "/repo",
		StartedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		CompletedAt:  time.Date(2025, 3, 1, 12, 0, 2, 0, time.UTC),
		DurationMS:   2000,
		FilesScanned: 3,
		FilesSkipped: 1,
		RuleCount:    30,
		Findings: []model.Finding{
			{
				RuleID:      "sql-string-concat",
				DetectorID:  "concat",
				Category:    "injection",
				Severity:    model.SeverityCritical,
				Message:     "SQL built by string concatenation",
				File:        "db.js",
				StartLine:   12,
				EndLine:     12,
				Language:    "javascript",
				Evidence:    `"SELECT * FROM users WHERE id = '" +`,
				Remediation: "Use parameterized queries.",
				CWE:         "CWE-89",
			},
			{
				RuleID:    "debug-enabled",
				Category:  "configuration",
				Severity:  model.SeverityMedium,
				Message:   "Debug mode enabled",
				File:      "config.yaml",
				StartLine: 3,
			},
		},
		Errors: []model.ScanError{
			{Kind: model.ErrorKindRead, File: "locked.js", Message: "permission denied"},
		},
	}
	r.Recount()
	return r
}

func TestParseStyle(t *testing.T) {
	for raw, want := range map[string]Style{
		"text": StyleText, "JSON": StyleJSON, " sarif ": StyleSARIF,
	} {
		got, err := ParseStyle(raw)
		if err != nil {
			t.Fatalf("ParseStyle(%q): %v", raw, err)
		}
		if got != want {
			t.Errorf("ParseStyle(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, err := ParseStyle("xml"); err == nil {
		t.Fatal("unknown style must error")
	}
}

func TestFormatUnknownStyleErrors(t *testing.T) {
	if _, err := Format(sampleReport(), Style("yaml"), false); err == nil {
		t.Fatal("Format with unknown style must error")
	}
}

func TestFormatTextGroupsByCategory(t *testing.T) {
	out := FormatText(sampleReport(), false)

	for _, want := range []string{
		"configuration (1)",
		"injection (1)",
		"[CRITICAL] SQL built by string concatenation",
		"db.js:12",
		"fix: Use parameterized queries.",
		"error (read): locked.js: permission denied",
		"2 finding(s) across 3 file(s) scanned",
		"grade: D",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	// Categories render in alphabetical order.
	if strings.Index(out, "configuration (1)") > strings.Index(out, "injection (1)") {
		t.Error("categories not in alphabetical order")
	}
}

func TestFormatTextCleanReport(t *testing.T) {
	r := model.Report{FilesScanned: 2, RuleCount: 30}
	r.Recount()
	out := FormatText(r, false)
	if !strings.Contains(out, "No findings.") {
		t.Errorf("clean report should say so:\n%s", out)
	}
	if !strings.Contains(out, "grade: A+") {
		t.Errorf("clean report should grade A+:\n%s", out)
	}
}

func TestFormatTextIncompleteNotice(t *testing.T) {
	r := sampleReport()
	r.Incomplete = true
	if !strings.Contains(FormatText(r, false), "scan incomplete") {
		t.Error("incomplete report should carry a notice")
	}
}

func TestFormatJSONRoundTrips(t *testing.T) {
	out, err := FormatJSON(sampleReport())
	if err != nil {
		t.Fatal(err)
	}

	var back model.Report
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(back.Findings) != 2 || back.Findings[0].RuleID != "sql-string-concat" {
		t.Fatalf("round trip lost findings: %+v", back.Findings)
	}
	if back.CountsBySeverity[model.SeverityCritical] != 1 {
		t.Fatalf("counts lost: %+v", back.CountsBySeverity)
	}
}

func TestFormatJSONEmptyFindingsIsArray(t *testing.T) {
	out, err := FormatJSON(model.Report{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"findings": []`) {
		t.Errorf("empty findings must serialize as [], got:\n%s", out)
	}
}

func TestFormatSARIFShape(t *testing.T) {
	out, err := FormatSARIF(sampleReport())
	if err != nil {
		t.Fatal(err)
	}

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &log); err != nil {
		t.Fatalf("sarif output is not valid JSON: %v", err)
	}

	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected sarif envelope: version=%q runs=%d", log.Version, len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "sentinel" {
		t.Errorf("driver name = %q", run.Tool.Driver.Name)
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Errorf("expected 2 rule definitions, got %d", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	first := run.Results[0]
	if first.RuleID != "sql-string-concat" || first.Level != "error" {
		t.Errorf("result = %+v", first)
	}
	loc := first.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "db.js" || loc.Region.StartLine != 12 {
		t.Errorf("location = %+v", loc)
	}
}

func TestSARIFLevelMapping(t *testing.T) {
	tests := map[string]string{
		model.SeverityCritical: "error",
		model.SeverityHigh:     "error",
		model.SeverityMedium:   "warning",
		model.SeverityLow:      "note",
		model.SeverityInfo:     "note",
		"warning":              "warning",
	}
	for sev, want := range tests {
		if got := sarifLevel(sev); got != want {
			t.Errorf("sarifLevel(%q) = %q, want %q", sev, got, want)
		}
	}
}
