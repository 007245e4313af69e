package suppress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sentinel/internal/model"
)

// DefaultPath returns the conventional suppressions file location.
func DefaultPath(root string) string {
	return filepath.Join(root, ".sentinel", "suppressions.yaml")
}

// Load reads suppression entries from a YAML file. A missing file is
// not an error; every entry must carry a reason.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var sf suppressionsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, e := range sf.Suppressions {
		if strings.TrimSpace(e.Reason) == "" {
			return nil, fmt.Errorf("suppression entry %d: reason is required", i+1)
		}
		if e.HasInvalidExpiry() {
			return nil, fmt.Errorf("suppression entry %d: expires %q is not YYYY-MM-DD", i+1, e.Expires)
		}
	}
	return sf.Suppressions, nil
}

// Apply partitions findings into active and suppressed. File entries
// are checked first, then inline annotations; expired entries never
// suppress. Both slices keep the input order.
func Apply(findings []model.Finding, entries []Entry, inline map[string][]Inline) (active, suppressed []model.Finding) {
	now := time.Now().UTC()
	active = make([]model.Finding, 0, len(findings))

	for _, f := range findings {
		if reason := matchEntries(f, entries, now); reason != "" {
			f.Suppressed = true
			f.SuppressionReason = reason
			f.SuppressionSource = "file"
			suppressed = append(suppressed, f)
			continue
		}
		if reason, ok := matchInline(f, inline); ok {
			f.Suppressed = true
			f.SuppressionReason = reason
			f.SuppressionSource = "inline"
			suppressed = append(suppressed, f)
			continue
		}
		active = append(active, f)
	}
	return
}

func matchEntries(f model.Finding, entries []Entry, now time.Time) string {
	for _, e := range entries {
		if e.IsExpired(now) {
			continue
		}
		if entryMatches(f, e) {
			return e.Reason
		}
	}
	return ""
}

// entryMatches requires every populated field of the entry to match.
// Bare wildcards for the rule field are refused as too broad.
func entryMatches(f model.Finding, e Entry) bool {
	if e.Rule == "" && e.Category == "" && e.Severity == "" && e.Files == "" {
		return false
	}
	if e.Rule == "*" {
		return false
	}
	if e.Rule != "" && !matchGlob(e.Rule, f.RuleID) {
		return false
	}
	if e.Category != "" && !strings.EqualFold(strings.TrimSpace(e.Category), strings.TrimSpace(f.Category)) {
		return false
	}
	if e.Severity != "" && model.NormalizeSeverity(e.Severity) != model.NormalizeSeverity(f.Severity) {
		return false
	}
	if e.Files != "" && !matchGlob(e.Files, f.File) {
		return false
	}
	return true
}

// matchInline applies annotations that sit on the finding's line or on
// the line directly above it.
func matchInline(f model.Finding, inline map[string][]Inline) (string, bool) {
	for _, ann := range inline[f.File] {
		if ann.Line != f.StartLine && ann.Line != f.StartLine-1 {
			continue
		}
		if !matchGlob(ann.RuleID, f.RuleID) {
			continue
		}
		reason := ann.Reason
		if reason == "" {
			reason = "inline annotation"
		}
		return reason, true
	}
	return "", false
}

// matchGlob performs case-insensitive filepath.Match globbing with one
// extension: ** crosses path separators.
func matchGlob(pattern, value string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	value = strings.ToLower(strings.TrimSpace(value))
	if pattern == "" {
		return false
	}
	if strings.Contains(pattern, "**") {
		return matchDoublestar(pattern, value)
	}
	matched, _ := filepath.Match(pattern, value)
	return matched
}

func matchDoublestar(pattern, value string) bool {
	parts := strings.SplitN(pattern, "**", 2)
	prefix := parts[0]
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix != "" {
		if !strings.HasPrefix(value, prefix) {
			return false
		}
		value = value[len(prefix):]
	}
	if suffix == "" {
		return true
	}
	for i := 0; i <= len(value); i++ {
		if matched, _ := filepath.Match(suffix, value[i:]); matched {
			return true
		}
	}
	return false
}
