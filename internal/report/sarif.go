package report

import (
	"encoding/json"
	"fmt"

	"sentinel/internal/model"
	"sentinel/internal/version"
)

// SARIF v2.1.0 types — minimal subset for GitHub Code Scanning.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Version        string      `json:"version"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name,omitempty"`
	ShortDescription sarifMessage        `json:"shortDescription,omitempty"`
	DefaultConfig    *sarifDefaultConfig `json:"defaultConfiguration,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID     string           `json:"ruleId"`
	Level      string           `json:"level"`
	Message    sarifMessage     `json:"message"`
	Locations  []sarifLocation  `json:"locations,omitempty"`
	Properties *sarifProperties `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine,omitempty"`
}

type sarifProperties struct {
	Category string `json:"category,omitempty"`
	Severity string `json:"severity,omitempty"`
	CWE      string `json:"cwe,omitempty"`
}

// FormatSARIF renders the findings as a single-run SARIF log.
func FormatSARIF(r model.Report) (string, error) {
	log := buildSARIF(r)
	b, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sarif: %w", err)
	}
	return string(b), nil
}

func buildSARIF(r model.Report) sarifLog {
	seenRules := make(map[string]struct{}, 16)
	var ruleDefs []sarifRule
	results := make([]sarifResult, 0, len(r.Findings))

	for _, f := range r.Findings {
		if _, ok := seenRules[f.RuleID]; !ok {
			seenRules[f.RuleID] = struct{}{}
			ruleDefs = append(ruleDefs, sarifRule{
				ID:               f.RuleID,
				ShortDescription: sarifMessage{Text: f.Message},
				DefaultConfig:    &sarifDefaultConfig{Level: sarifLevel(f.Severity)},
			})
		}

		var region *sarifRegion
		if f.StartLine > 0 {
			region = &sarifRegion{StartLine: f.StartLine, EndLine: f.EndLine}
		}
		results = append(results, sarifResult{
			RuleID:  f.RuleID,
			Level:   sarifLevel(f.Severity),
			Message: sarifMessage{Text: f.Message},
			Locations: []sarifLocation{
				{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: f.File},
						Region:           region,
					},
				},
			},
			Properties: &sarifProperties{
				Category: f.Category,
				Severity: model.NormalizeSeverity(f.Severity),
				CWE:      f.CWE,
			},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "sentinel",
						InformationURI: "https://github.com/sentinel-scan/sentinel",
						Version:        version.Version,
						Rules:          ruleDefs,
					},
				},
				Results: results,
			},
		},
	}
}

// sarifLevel maps the severity scale onto SARIF's error/warning/note.
func sarifLevel(severity string) string {
	switch model.NormalizeSeverity(severity) {
	case model.SeverityCritical, model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
