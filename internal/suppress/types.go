// Package suppress filters accepted findings out of a report, either
// through .sentinel/suppressions.yaml entries or through inline
// sentinel:ignore annotations in source.
package suppress

import "time"

// Entry is one centralized suppression from .sentinel/suppressions.yaml.
// Empty fields are wildcards; an entry with every match field empty
// matches nothing.
type Entry struct {
	ID       string `yaml:"id,omitempty"`
	Rule     string `yaml:"rule,omitempty"`
	Category string `yaml:"category,omitempty"`
	Severity string `yaml:"severity,omitempty"`
	Files    string `yaml:"files,omitempty"`

	Reason  string `yaml:"reason"`
	Author  string `yaml:"author,omitempty"`
	Expires string `yaml:"expires,omitempty"`
}

// IsExpired reports whether the entry's expiry date has passed.
func (e Entry) IsExpired(now time.Time) bool {
	if e.Expires == "" {
		return false
	}
	t, err := time.Parse("2006-01-02", e.Expires)
	if err != nil {
		return false
	}
	return now.After(t)
}

// HasInvalidExpiry reports an expires field that is set but unparseable.
func (e Entry) HasInvalidExpiry() bool {
	if e.Expires == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", e.Expires)
	return err != nil
}

// Inline is one sentinel:ignore annotation found in source. It covers
// findings on its own line and on the line directly below it.
type Inline struct {
	RuleID string
	Reason string
	File   string
	Line   int
}

type suppressionsFile struct {
	Suppressions []Entry `yaml:"suppressions"`
}
