package model

import "testing"

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"critical", "critical"},
		{" HIGH ", "high"},
		{"warn", "medium"},
		{"warning", "medium"},
		{"moderate", "medium"},
		{"low", "low"},
		{"", "info"},
		{"bogus", "info"},
	}
	for _, tt := range tests {
		if got := NormalizeSeverity(tt.in); got != tt.want {
			t.Errorf("NormalizeSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeverityAtLeast(t *testing.T) {
	if !SeverityAtLeast("critical", "high") {
		t.Fatal("critical should meet a high threshold")
	}
	if SeverityAtLeast("low", "high") {
		t.Fatal("low should not meet a high threshold")
	}
	if !SeverityAtLeast("high", "high") {
		t.Fatal("threshold is inclusive")
	}
	if SeverityAtLeast("critical", "") {
		t.Fatal("empty threshold never matches")
	}
}

func TestRecountSkipsSuppressedAndNormalizes(t *testing.T) {
	r := Report{
		Findings: []Finding{
			{Severity: "critical", Category: "injection"},
			{Severity: "warn", Category: "Session"},
			{Severity: "high", Category: ""},
		},
		SuppressedFindings: []Finding{
			{Severity: "critical", Category: "injection"},
		},
	}
	r.Recount()

	if r.CountsBySeverity["critical"] != 1 {
		t.Fatalf("critical count = %d, want 1", r.CountsBySeverity["critical"])
	}
	if r.CountsBySeverity["medium"] != 1 {
		t.Fatalf("warn should count as medium, got %d", r.CountsBySeverity["medium"])
	}
	if r.CountsByCategory["session"] != 1 {
		t.Fatalf("category should lowercase, got %v", r.CountsByCategory)
	}
	if r.CountsByCategory["general"] != 1 {
		t.Fatalf("empty category should count as general, got %v", r.CountsByCategory)
	}
}

func TestHasFindingsAtOrAbove(t *testing.T) {
	r := Report{Findings: []Finding{{Severity: "medium"}}}
	if r.HasFindingsAtOrAbove("high") {
		t.Fatal("medium finding should not trip a high threshold")
	}
	if !r.HasFindingsAtOrAbove("medium") {
		t.Fatal("medium finding should trip a medium threshold")
	}
}
