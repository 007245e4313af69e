package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Registry holds the validated rule set for a run. It is built once,
// indexed by language, and never mutated afterwards; concurrent scans
// may share one registry by reference.
type Registry struct {
	rules   []Rule
	byID    map[string]int
	byLang  map[string][]int
	skipped int
}

// LoadOptions configures registry construction.
type LoadOptions struct {
	// RulesDir overrides the default custom-rule search directories.
	RulesDir string
	// NoCustomRules restricts the registry to the builtin catalog.
	NoCustomRules bool
	// OnlyCategories filters the registry to the given categories.
	OnlyCategories []string
	// Extra rules injected by the caller (tests, embedding programs).
	Extra []Rule
	// Logger receives skip diagnostics. Nil means no logging.
	Logger *zap.SugaredLogger
}

// Load builds a registry from the builtin catalog plus custom rule
// directories. Malformed rules are logged and skipped (partial-failure
// policy); the load fails only when the resulting registry is empty.
func Load(opts LoadOptions) (*Registry, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	candidates := Builtins()
	fileSkipped := 0
	if !opts.NoCustomRules {
		dirs, err := ResolveReadDirs(opts.RulesDir)
		if err != nil {
			return nil, err
		}
		custom, warnings, err := LoadCustomDirs(dirs)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			log.Warnw("rule skipped", "reason", w)
		}
		fileSkipped = len(warnings)
		candidates = append(candidates, custom...)
	}
	candidates = append(candidates, opts.Extra...)

	reg, err := Build(candidates, opts.OnlyCategories, log)
	if err != nil {
		return nil, err
	}
	reg.skipped += fileSkipped
	return reg, nil
}

// Build validates and indexes a candidate rule slice. Exposed so tests
// and embedders can construct registries from in-memory rules.
func Build(candidates []Rule, onlyCategories []string, log *zap.SugaredLogger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	catFilter := make(map[string]struct{}, len(onlyCategories))
	for _, c := range onlyCategories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if !knownCategory(c) {
			return nil, fmt.Errorf("unknown category %q", c)
		}
		catFilter[c] = struct{}{}
	}

	reg := &Registry{
		byID:   make(map[string]int, len(candidates)),
		byLang: make(map[string][]int, 16),
	}

	for _, candidate := range candidates {
		r := NormalizeRule(candidate)
		if err := ValidateRule(r); err != nil {
			reg.skipped++
			log.Warnw("rule skipped", "rule", r.ID, "reason", err.Error())
			continue
		}
		if _, dup := reg.byID[r.ID]; dup {
			reg.skipped++
			log.Warnw("rule skipped", "rule", r.ID, "reason", "duplicate id")
			continue
		}
		if r.Status == StatusDisabled {
			continue
		}
		if len(catFilter) > 0 {
			if _, ok := catFilter[r.Category]; !ok {
				continue
			}
		}

		idx := len(reg.rules)
		reg.rules = append(reg.rules, r)
		reg.byID[r.ID] = idx
		for _, l := range r.Languages {
			reg.byLang[l] = append(reg.byLang[l], idx)
		}
	}

	if len(reg.rules) == 0 {
		return nil, errors.New("rule registry is empty after load")
	}
	return reg, nil
}

// Lookup returns the rules applicable to a language, in registration
// order. Wildcard rules apply to every language.
func (r *Registry) Lookup(language string) []Rule {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil
	}

	indices := make([]int, 0, len(r.byLang[language])+len(r.byLang["*"]))
	indices = append(indices, r.byLang[language]...)
	indices = append(indices, r.byLang["*"]...)

	seen := make(map[int]struct{}, len(indices))
	ordered := make([]int, 0, len(indices))
	for _, idx := range indices {
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		ordered = append(ordered, idx)
	}
	// registration order, not lookup-bucket order
	sort.Ints(ordered)

	out := make([]Rule, 0, len(ordered))
	for _, idx := range ordered {
		out = append(out, r.rules[idx])
	}
	return out
}

// Get returns a rule by id.
func (r *Registry) Get(id string) (Rule, bool) {
	idx, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Rule{}, false
	}
	return r.rules[idx], true
}

// Index returns the registration index of a rule id, or -1. The index
// is the rule-order component of the stable finding sort.
func (r *Registry) Index(id string) int {
	idx, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return -1
	}
	return idx
}

// All returns every registered rule in registration order.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int { return len(r.rules) }

// Skipped returns how many candidate rules were rejected during load.
func (r *Registry) Skipped() int { return r.skipped }
