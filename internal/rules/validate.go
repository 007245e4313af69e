package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"sentinel/internal/lang"
	"sentinel/internal/model"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,63}$`)

// NormalizeRule trims and lowercases identifying fields, normalizes
// language aliases and severities, and fills defaults.
func NormalizeRule(r Rule) Rule {
	r.APIVersion = strings.TrimSpace(r.APIVersion)
	r.ID = strings.ToLower(strings.TrimSpace(r.ID))
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Description = strings.TrimSpace(r.Description)
	r.Severity = model.NormalizeSeverity(r.Severity)
	r.Remediation = strings.TrimSpace(r.Remediation)
	r.CWE = strings.ToUpper(strings.TrimSpace(r.CWE))

	if r.Status == "" {
		r.Status = StatusEnabled
	} else {
		r.Status = Status(strings.ToLower(strings.TrimSpace(string(r.Status))))
	}
	if r.Source == "" {
		r.Source = SourceCustom
	} else {
		r.Source = Source(strings.ToLower(strings.TrimSpace(string(r.Source))))
	}

	langs := make([]string, 0, len(r.Languages))
	seen := make(map[string]struct{}, len(r.Languages))
	for _, l := range r.Languages {
		l = lang.Normalize(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		langs = append(langs, l)
	}
	r.Languages = langs

	detectors := make([]Detector, 0, len(r.Detectors))
	for _, d := range r.Detectors {
		d.ID = strings.ToLower(strings.TrimSpace(d.ID))
		d.Kind = DetectorKind(strings.ToLower(strings.TrimSpace(string(d.Kind))))
		d.Message = strings.TrimSpace(d.Message)
		if strings.TrimSpace(d.Severity) != "" {
			d.Severity = model.NormalizeSeverity(d.Severity)
		}
		d.Remediation = strings.TrimSpace(d.Remediation)
		detectors = append(detectors, d)
	}
	r.Detectors = detectors
	return r
}

// ValidateRule checks a normalized rule. Every detector pattern must
// compile here; a rule that fails validation is rejected at load time
// and never reaches the matcher.
func ValidateRule(r Rule) error {
	var errs []string

	if r.APIVersion == "" {
		errs = append(errs, "api_version is required")
	} else if r.APIVersion != APIVersion {
		errs = append(errs, fmt.Sprintf("api_version must be %q", APIVersion))
	}

	if r.ID == "" {
		errs = append(errs, "id is required")
	} else if !idPattern.MatchString(r.ID) {
		errs = append(errs, "id must match ^[a-z0-9][a-z0-9_-]{1,63}$")
	}

	if r.Category == "" {
		errs = append(errs, "category is required")
	} else if !knownCategory(r.Category) {
		errs = append(errs, fmt.Sprintf("unknown category %q", r.Category))
	}

	switch r.Status {
	case StatusEnabled, StatusDisabled:
	default:
		errs = append(errs, "status must be enabled|disabled")
	}
	switch r.Source {
	case SourceBuiltin, SourceCustom:
	default:
		errs = append(errs, "source must be builtin|custom")
	}

	if len(r.Languages) == 0 {
		errs = append(errs, "languages must not be empty")
	}
	for _, l := range r.Languages {
		if !lang.Known(l) {
			errs = append(errs, fmt.Sprintf("unknown language %q", l))
		}
	}

	if len(r.Detectors) == 0 {
		errs = append(errs, "at least one detector is required")
	}
	seen := make(map[string]struct{}, len(r.Detectors))
	for _, d := range r.Detectors {
		if d.ID == "" {
			errs = append(errs, "detector id is required")
		} else if _, dup := seen[d.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate detector id %q", d.ID))
		} else {
			seen[d.ID] = struct{}{}
		}

		switch d.Kind {
		case DetectorContains:
			if strings.TrimSpace(d.Pattern) == "" {
				errs = append(errs, fmt.Sprintf("detector %q: pattern is required", d.ID))
			}
		case DetectorRegex:
			if strings.TrimSpace(d.Pattern) == "" {
				errs = append(errs, fmt.Sprintf("detector %q: pattern is required", d.ID))
			} else if _, err := regexp.Compile(d.Pattern); err != nil {
				errs = append(errs, fmt.Sprintf("detector %q: invalid pattern: %v", d.ID, err))
			}
		default:
			errs = append(errs, fmt.Sprintf("detector %q: kind must be contains|regex", d.ID))
		}

		if d.Unless != "" {
			if _, err := regexp.Compile(d.Unless); err != nil {
				errs = append(errs, fmt.Sprintf("detector %q: invalid unless pattern: %v", d.ID, err))
			}
		}
		if d.MaxMatches < 0 {
			errs = append(errs, fmt.Sprintf("detector %q: max_matches must be >= 0", d.ID))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func knownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
