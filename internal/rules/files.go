package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResolveReadDirs returns the directories searched for custom rule
// files. An explicit dir wins; otherwise the repo-local
// .sentinel/rules (if inside a git repo) and ~/.sentinel/rules are
// searched in order.
func ResolveReadDirs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		dir, err := resolvePath(raw)
		if err != nil {
			return nil, err
		}
		return []string{dir}, nil
	}

	dirs := make([]string, 0, 2)
	repoRoot, err := findRepoRootFromCWD()
	if err != nil {
		return nil, err
	}
	if repoRoot != "" {
		dirs = append(dirs, filepath.Join(repoRoot, ".sentinel", "rules"))
	}

	homeDir, err := resolvePath("~/.sentinel/rules")
	if err != nil {
		return nil, err
	}
	dirs = append(dirs, homeDir)

	return uniquePaths(dirs), nil
}

// RuleFilePath returns the canonical file path for a rule id in dir.
func RuleFilePath(dir string, id string) string {
	return filepath.Join(dir, id+".rule.yaml")
}

// ReadRule loads, normalizes, and validates a single rule file.
// Symlinked rule files are refused.
func ReadRule(path string) (Rule, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Rule{}, fmt.Errorf("read rule %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return Rule{}, fmt.Errorf("refusing symlinked rule file: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Rule{}, fmt.Errorf("read rule %s: %w", path, err)
	}

	var r Rule
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Rule{}, fmt.Errorf("parse rule %s: %w", path, err)
	}

	r = NormalizeRule(r)
	if err := ValidateRule(r); err != nil {
		return Rule{}, fmt.Errorf("invalid rule %s: %w", path, err)
	}
	return r, nil
}

type loadedRule struct {
	rule Rule
	path string
}

// LoadCustomDirs loads every *.rule.yaml / *.rule.yml under the given
// directories. Malformed rules become warnings, not errors; a later
// duplicate of an already-loaded id is skipped with a warning.
func LoadCustomDirs(dirs []string) ([]Rule, []string, error) {
	out := make([]Rule, 0, 16)
	warnings := make([]string, 0, 8)
	seen := make(map[string]string, 16)

	for _, dir := range uniquePaths(dirs) {
		items, itemWarnings, err := loadDirWithPaths(dir)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, itemWarnings...)

		for _, item := range items {
			if loadedFrom, exists := seen[item.rule.ID]; exists {
				warnings = append(warnings, fmt.Sprintf(
					"duplicate rule id %q at %s ignored (already loaded from %s)",
					item.rule.ID,
					item.path,
					loadedFrom,
				))
				continue
			}
			seen[item.rule.ID] = item.path
			out = append(out, item.rule)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, warnings, nil
}

func loadDirWithPaths(dir string) ([]loadedRule, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read rules dir: %w", err)
	}

	out := make([]loadedRule, 0, len(entries))
	warnings := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".rule.yaml") && !strings.HasSuffix(name, ".rule.yml") {
			continue
		}

		path := filepath.Join(dir, name)
		r, loadErr := ReadRule(path)
		if loadErr != nil {
			warnings = append(warnings, loadErr.Error())
			continue
		}

		r.Source = SourceCustom
		out = append(out, loadedRule{rule: r, path: path})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].rule.ID < out[j].rule.ID })
	return out, warnings, nil
}

func resolvePath(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		switch raw {
		case "~":
			raw = home
		case "~/":
			raw = home + string(os.PathSeparator)
		default:
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~/"))
		}
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("resolve rules dir: %w", err)
	}
	return abs, nil
}

func findRepoRootFromCWD() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve cwd: %w", err)
	}
	return findRepoRoot(cwd)
}

func findRepoRoot(start string) (string, error) {
	current, err := filepath.Abs(strings.TrimSpace(start))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	for {
		gitPath := filepath.Join(current, ".git")
		_, statErr := os.Stat(gitPath)
		if statErr == nil {
			return current, nil
		} else if !os.IsNotExist(statErr) {
			return "", fmt.Errorf("read git metadata %s: %w", gitPath, statErr)
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", nil
}

func uniquePaths(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, path := range in {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		path = filepath.Clean(path)
		if _, exists := seen[path]; exists {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out
}
