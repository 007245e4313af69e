// Package matcher applies compiled rule detectors to a single source
// unit. Matching holds no shared mutable state, so units and rules may
// be evaluated in any order or in parallel with identical results.
package matcher

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"sentinel/internal/model"
	"sentinel/internal/redact"
	"sentinel/internal/rules"
)

const (
	defaultMaxMatches = 20
	maxEvidenceRunes  = 160
)

// SourceUnit is the in-memory representation of one scanned file.
// Read-only during matching and discarded afterwards.
type SourceUnit struct {
	Path     string
	Language string
	Text     string

	lineOffsets []int
}

// NewSourceUnit builds a unit and precomputes its line index.
func NewSourceUnit(path, language, text string) *SourceUnit {
	u := &SourceUnit{Path: path, Language: language, Text: text}
	u.lineOffsets = append(u.lineOffsets, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			u.lineOffsets = append(u.lineOffsets, i+1)
		}
	}
	return u
}

// LineAt returns the 1-based line number containing the byte offset.
func (u *SourceUnit) LineAt(offset int) int {
	if offset < 0 {
		return 1
	}
	idx := sort.Search(len(u.lineOffsets), func(i int) bool {
		return u.lineOffsets[i] > offset
	})
	return idx
}

type compiledDetector struct {
	detector rules.Detector
	needle   string
	regex    *regexp.Regexp
	unless   *regexp.Regexp
}

// CompiledRule is one rule with its detectors compiled for matching.
type CompiledRule struct {
	Rule      rules.Rule
	detectors []compiledDetector
}

// Compile prepares rules for matching. Rules from a registry always
// compile; a failure here means the caller bypassed load validation.
func Compile(ruleSet []rules.Rule) ([]CompiledRule, error) {
	out := make([]CompiledRule, 0, len(ruleSet))
	for _, r := range ruleSet {
		cr := CompiledRule{Rule: r}
		for _, d := range r.Detectors {
			item := compiledDetector{detector: d}
			switch d.Kind {
			case rules.DetectorContains:
				item.needle = d.Pattern
				if !d.CaseSensitive {
					item.needle = strings.ToLower(d.Pattern)
				}
			case rules.DetectorRegex:
				pattern := d.Pattern
				if !d.CaseSensitive && !strings.HasPrefix(pattern, "(?") {
					pattern = "(?i)" + pattern
				}
				re, err := regexp.Compile(pattern)
				if err != nil {
					return nil, fmt.Errorf("compile detector %q of rule %q: %w", d.ID, r.ID, err)
				}
				item.regex = re
			default:
				return nil, fmt.Errorf("unsupported detector kind %q for %q", d.Kind, d.ID)
			}
			if d.Unless != "" {
				re, err := regexp.Compile(d.Unless)
				if err != nil {
					return nil, fmt.Errorf("compile unless of detector %q: %w", d.ID, err)
				}
				item.unless = re
			}
			cr.detectors = append(cr.detectors, item)
		}
		out = append(out, cr)
	}
	return out, nil
}

// Result carries the findings and per-rule errors for one unit.
type Result struct {
	Findings []model.Finding
	Errors   []model.ScanError
}

// Match evaluates every rule against the unit. A rule that fails on
// this unit is recorded as a pattern error and the remaining rules
// still run; matching never aborts the unit. The context deadline
// bounds each regex evaluation.
func Match(ctx context.Context, unit *SourceUnit, compiled []CompiledRule) Result {
	var res Result
	for _, cr := range compiled {
		if ctx.Err() != nil {
			return res
		}
		findings, err := matchRule(ctx, unit, cr)
		if err != nil {
			res.Errors = append(res.Errors, model.ScanError{
				Kind:    model.ErrorKindPattern,
				File:    unit.Path,
				RuleID:  cr.Rule.ID,
				Message: err.Error(),
			})
			continue
		}
		res.Findings = append(res.Findings, findings...)
	}
	return res
}

func matchRule(ctx context.Context, unit *SourceUnit, cr CompiledRule) ([]model.Finding, error) {
	var findings []model.Finding
	for _, d := range cr.detectors {
		maxMatches := d.detector.MaxMatches
		if maxMatches <= 0 {
			maxMatches = defaultMaxMatches
		}

		ranges, err := detectorMatches(ctx, d, unit.Text, maxMatches)
		if err != nil {
			return nil, err
		}
		for _, pair := range ranges {
			if d.unless != nil && d.unless.MatchString(unit.Text[pair[0]:pair[1]]) {
				continue
			}
			findings = append(findings, buildFinding(cr.Rule, d.detector, unit, pair[0], pair[1]))
		}
	}
	return findings, nil
}

func detectorMatches(ctx context.Context, d compiledDetector, content string, maxMatches int) ([][2]int, error) {
	switch d.detector.Kind {
	case rules.DetectorRegex:
		return regexMatches(ctx, d.regex, content, maxMatches, d.detector.ID)
	case rules.DetectorContains:
		return containsMatches(content, d.needle, d.detector.CaseSensitive, maxMatches), nil
	default:
		return nil, nil
	}
}

// regexMatches runs the match in a goroutine and abandons it when the
// unit's deadline fires. RE2 is linear-time, but very large inputs can
// still overstay a tight per-file budget.
func regexMatches(ctx context.Context, re *regexp.Regexp, content string, maxMatches int, detectorID string) ([][2]int, error) {
	type result struct {
		matches [][2]int
		err     error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("detector %s panicked: %v", detectorID, r)}
			}
		}()
		raw := re.FindAllStringIndex(content, maxMatches)
		out := make([][2]int, 0, len(raw))
		for _, pair := range raw {
			if len(pair) != 2 {
				continue
			}
			out = append(out, [2]int{pair[0], pair[1]})
		}
		ch <- result{matches: out}
	}()

	select {
	case res := <-ch:
		return res.matches, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("detector %s: %w", detectorID, ctx.Err())
	}
}

func containsMatches(content string, needle string, caseSensitive bool, maxMatches int) [][2]int {
	if strings.TrimSpace(needle) == "" || maxMatches <= 0 {
		return nil
	}
	haystack := content
	if !caseSensitive {
		haystack = strings.ToLower(content)
	}
	out := make([][2]int, 0, maxMatches)
	offset := 0
	for len(out) < maxMatches && offset <= len(haystack)-len(needle) {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(needle)
		out = append(out, [2]int{start, end})
		offset = end
	}
	return out
}

func buildFinding(r rules.Rule, d rules.Detector, unit *SourceUnit, start, end int) model.Finding {
	severity := d.Severity
	if severity == "" {
		severity = r.Severity
	}
	message := d.Message
	if message == "" {
		message = r.Name
	}
	if message == "" {
		message = fmt.Sprintf("rule %s matched", r.ID)
	}
	remediation := d.Remediation
	if remediation == "" {
		remediation = r.Remediation
	}

	return model.Finding{
		RuleID:      r.ID,
		DetectorID:  d.ID,
		Category:    r.Category,
		Severity:    model.NormalizeSeverity(severity),
		Message:     message,
		File:        unit.Path,
		StartLine:   unit.LineAt(start),
		EndLine:     unit.LineAt(end - 1),
		Language:    unit.Language,
		Evidence:    evidenceSnippet(unit.Text, start, end),
		Remediation: remediation,
		CWE:         r.CWE,
	}
}

// evidenceSnippet extracts the matched text with a little surrounding
// context, flattened to one line and with secret-looking values masked.
func evidenceSnippet(content string, start, end int) string {
	if start < 0 || end < start || start > len(content) {
		return ""
	}
	if end > len(content) {
		end = len(content)
	}
	left := start - 40
	right := end + 40
	if left < 0 {
		left = 0
	}
	if right > len(content) {
		right = len(content)
	}
	snippet := strings.TrimSpace(content[left:right])
	snippet = strings.ReplaceAll(snippet, "\r", " ")
	snippet = strings.ReplaceAll(snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	if left > 0 {
		snippet = "..." + snippet
	}
	if right < len(content) {
		snippet = snippet + "..."
	}
	snippet = redact.Text(snippet)
	if r := []rune(snippet); len(r) > maxEvidenceRunes {
		snippet = string(r[:maxEvidenceRunes]) + "..."
	}
	return strings.TrimSpace(snippet)
}
