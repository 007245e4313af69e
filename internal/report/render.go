// Package report converts a scan report into its output styles. All
// formatters are pure: they take the report and return a string, with
// no I/O of their own.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sentinel/internal/badge"
	"sentinel/internal/model"
)

// Style selects an output format.
type Style string

const (
	StyleText  Style = "text"
	StyleJSON  Style = "json"
	StyleSARIF Style = "sarif"
)

// ParseStyle validates a user-supplied style name.
func ParseStyle(raw string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(raw))) {
	case StyleText:
		return StyleText, nil
	case StyleJSON:
		return StyleJSON, nil
	case StyleSARIF:
		return StyleSARIF, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text|json|sarif)", raw)
	}
}

// Format renders the report in the given style. Unknown styles error;
// nothing else does for text output.
func Format(r model.Report, style Style, colorize bool) (string, error) {
	switch style {
	case StyleText:
		return FormatText(r, colorize), nil
	case StyleJSON:
		return FormatJSON(r)
	case StyleSARIF:
		return FormatSARIF(r)
	default:
		return "", fmt.Errorf("unknown format %q", style)
	}
}

// Lipgloss styles for each severity level.
var (
	styleCritical = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9"))
	styleHigh     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleMedium   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	styleLow      = lipgloss.NewStyle().Faint(true)
	styleInfo     = lipgloss.NewStyle().Faint(true)
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleLocation = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleFix      = lipgloss.NewStyle().Faint(true)
)

func severityLabel(sev string, colorize bool) string {
	label := strings.ToUpper(model.NormalizeSeverity(sev))
	if !colorize {
		return label
	}
	switch model.NormalizeSeverity(sev) {
	case model.SeverityCritical:
		return styleCritical.Render(label)
	case model.SeverityHigh:
		return styleHigh.Render(label)
	case model.SeverityMedium:
		return styleMedium.Render(label)
	case model.SeverityLow:
		return styleLow.Render(label)
	default:
		return styleInfo.Render(label)
	}
}

// FormatText renders the category-grouped human view, mirroring how
// the vulnerability catalog groups its material.
func FormatText(r model.Report, colorize bool) string {
	var b strings.Builder

	header := func(s string) string {
		if colorize {
			return styleHeader.Render(s)
		}
		return s
	}
	location := func(s string) string {
		if colorize {
			return styleLocation.Render(s)
		}
		return s
	}
	fix := func(s string) string {
		if colorize {
			return styleFix.Render(s)
		}
		return s
	}

	if len(r.Findings) == 0 {
		b.WriteString("No findings.\n")
	} else {
		byCategory := make(map[string][]model.Finding, len(r.CountsByCategory))
		for _, f := range r.Findings {
			cat := strings.ToLower(strings.TrimSpace(f.Category))
			if cat == "" {
				cat = "general"
			}
			byCategory[cat] = append(byCategory[cat], f)
		}
		categories := make([]string, 0, len(byCategory))
		for cat := range byCategory {
			categories = append(categories, cat)
		}
		sort.Strings(categories)

		for _, cat := range categories {
			group := byCategory[cat]
			b.WriteString(header(fmt.Sprintf("%s (%d)", cat, len(group))))
			b.WriteString("\n")
			for _, f := range group {
				b.WriteString(fmt.Sprintf("  [%s] %s\n", severityLabel(f.Severity, colorize), f.Message))
				b.WriteString(fmt.Sprintf("    %s\n", location(fmt.Sprintf("%s:%d", f.File, f.StartLine))))
				if evidence := flatten(f.Evidence, 120); evidence != "" {
					b.WriteString(fmt.Sprintf("    evidence: %s\n", evidence))
				}
				if rem := flatten(f.Remediation, 200); rem != "" {
					b.WriteString(fmt.Sprintf("    %s\n", fix("fix: "+rem)))
				}
			}
			b.WriteString("\n")
		}
	}

	if len(r.SuppressedFindings) > 0 {
		b.WriteString(fmt.Sprintf("%d finding(s) suppressed.\n", len(r.SuppressedFindings)))
	}
	for _, e := range r.Errors {
		if e.File != "" {
			b.WriteString(fmt.Sprintf("error (%s): %s: %s\n", e.Kind, e.File, e.Message))
		} else {
			b.WriteString(fmt.Sprintf("error (%s): %s\n", e.Kind, e.Message))
		}
	}

	grade, _ := badge.Grade(r.CountsBySeverity)
	b.WriteString(fmt.Sprintf(
		"\n%d finding(s) across %d file(s) scanned (%d skipped, %d rules). grade: %s\n",
		len(r.Findings), r.FilesScanned, r.FilesSkipped, r.RuleCount, grade,
	))
	if r.Incomplete {
		b.WriteString("scan incomplete: cancelled before all files were visited.\n")
	}
	return b.String()
}

// FormatJSON renders the machine-readable view.
func FormatJSON(r model.Report) (string, error) {
	if r.Findings == nil {
		r.Findings = []model.Finding{}
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(b), nil
}

func flatten(s string, max int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
