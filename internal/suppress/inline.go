package suppress

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const marker = "sentinel:ignore"

const maxInlineScanBytes = 1 * 1024 * 1024

// ScanInline walks root and collects sentinel:ignore annotations,
// keyed by slash-separated relative path. Unreadable files are skipped;
// the scan pass reports those on its own.
func ScanInline(root string) (map[string][]Inline, error) {
	result := make(map[string][]Inline)

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if base == ".git" || base == "node_modules" || base == "vendor" || base == ".sentinel" {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Size() > maxInlineScanBytes {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		annotations := scanFile(path, rel)
		if len(annotations) > 0 {
			result[rel] = annotations
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func scanFile(absPath, relPath string) []Inline {
	f, err := os.Open(absPath)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var result []Inline
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		ruleID, reason, ok := parseAnnotation(scanner.Text())
		if !ok {
			continue
		}
		result = append(result, Inline{
			RuleID: ruleID,
			Reason: reason,
			File:   relPath,
			Line:   lineNum,
		})
	}
	return result
}

// parseAnnotation extracts the rule ID and optional reason from a line
// containing "sentinel:ignore <rule-id>" or
// "sentinel:ignore <rule-id> -- reason". The annotation may appear
// anywhere in the line, so trailing comments on a flagged line work.
func parseAnnotation(line string) (ruleID, reason string, ok bool) {
	idx := strings.Index(strings.ToLower(line), marker)
	if idx < 0 {
		return "", "", false
	}

	rest := strings.TrimSpace(line[idx+len(marker):])
	rest = strings.TrimSuffix(rest, "*/")
	rest = strings.TrimSuffix(rest, "-->")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", "", false
	}

	if dashIdx := strings.Index(rest, " -- "); dashIdx >= 0 {
		ruleID = strings.TrimSpace(rest[:dashIdx])
		reason = strings.TrimSpace(rest[dashIdx+4:])
	} else {
		// Only the first token names the rule; the remainder is stray
		// comment text.
		fields := strings.Fields(rest)
		ruleID = fields[0]
	}

	// A bare wildcard would silence every rule on the line. Refuse it.
	if ruleID == "" || ruleID == "*" {
		return "", "", false
	}
	return ruleID, reason, true
}
