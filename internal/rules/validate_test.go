package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRule_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Rule)
		wantErr string
	}{
		{"missing api version", func(r *Rule) { r.APIVersion = "" }, "api_version"},
		{"wrong api version", func(r *Rule) { r.APIVersion = "sentinel/v0" }, "api_version"},
		{"bad id", func(r *Rule) { r.ID = "Not Valid!" }, "id must match"},
		{"unknown category", func(r *Rule) { r.Category = "astrology" }, "unknown category"},
		{"no languages", func(r *Rule) { r.Languages = nil }, "languages"},
		{"unknown language", func(r *Rule) { r.Languages = []string{"fortran"} }, "unknown language"},
		{"no detectors", func(r *Rule) { r.Detectors = nil }, "detector"},
		{"bad detector kind", func(r *Rule) { r.Detectors[0].Kind = "glob" }, "kind"},
		{"empty pattern", func(r *Rule) { r.Detectors[0].Pattern = "" }, "pattern is required"},
		{"bad unless", func(r *Rule) { r.Detectors[0].Unless = "([" }, "unless"},
		{"negative max matches", func(r *Rule) { r.Detectors[0].MaxMatches = -1 }, "max_matches"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule("sample")
			tt.mutate(&r)
			err := ValidateRule(NormalizeRule(r))
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNormalizeRule_Defaults(t *testing.T) {
	r := NormalizeRule(Rule{
		APIVersion: APIVersion,
		ID:         " SQLI ",
		Category:   " Injection ",
		Severity:   "warn",
		Languages:  []string{"JS", "js", "py"},
	})

	assert.Equal(t, "sqli", r.ID)
	assert.Equal(t, "injection", r.Category)
	assert.Equal(t, "medium", r.Severity)
	assert.Equal(t, StatusEnabled, r.Status)
	assert.Equal(t, SourceCustom, r.Source)
	assert.Equal(t, []string{"javascript", "python"}, r.Languages)
}

func TestAppliesTo(t *testing.T) {
	r := Rule{Languages: []string{"javascript", "python"}}
	assert.True(t, r.AppliesTo("python"))
	assert.False(t, r.AppliesTo("java"))

	wild := Rule{Languages: []string{"*"}}
	assert.True(t, wild.AppliesTo("anything"))
}
