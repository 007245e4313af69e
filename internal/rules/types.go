package rules

import "time"

const APIVersion = "sentinel/v1"

type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceCustom  Source = "custom"
)

type DetectorKind string

const (
	DetectorContains DetectorKind = "contains"
	DetectorRegex    DetectorKind = "regex"
)

// Categories mirrors the documented vulnerability classes, one rule
// cluster per class.
var Categories = []string{
	"authentication",
	"authorization",
	"injection",
	"xml",
	"redos",
	"csrf",
	"deserialization",
	"sensitive_data",
	"memory",
	"error_handling",
	"session",
	"configuration",
	"file_handling",
	"input_validation",
}

// Detector is one concrete pattern within a rule. Kind contains does a
// substring search; kind regex compiles with RE2 semantics. Unless is
// an optional guard regex: candidate matches whose matched text also
// matches the guard are dropped, which is how "call without the safe
// option" rules are expressed without lookahead.
type Detector struct {
	ID            string       `yaml:"id" json:"id"`
	Kind          DetectorKind `yaml:"kind" json:"kind"`
	Pattern       string       `yaml:"pattern" json:"pattern"`
	Unless        string       `yaml:"unless,omitempty" json:"unless,omitempty"`
	CaseSensitive bool         `yaml:"case_sensitive,omitempty" json:"case_sensitive,omitempty"`

	Message     string `yaml:"message,omitempty" json:"message,omitempty"`
	Severity    string `yaml:"severity,omitempty" json:"severity,omitempty"`
	Remediation string `yaml:"remediation,omitempty" json:"remediation,omitempty"`
	MaxMatches  int    `yaml:"max_matches,omitempty" json:"max_matches,omitempty"`
}

// Rule is one named, categorized detector cluster plus remediation
// guidance. Immutable once loaded into a registry.
type Rule struct {
	APIVersion  string     `yaml:"api_version" json:"api_version"`
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name,omitempty" json:"name,omitempty"`
	Category    string     `yaml:"category" json:"category"`
	Status      Status     `yaml:"status,omitempty" json:"status,omitempty"`
	Source      Source     `yaml:"source,omitempty" json:"source,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Severity    string     `yaml:"severity" json:"severity"`
	Remediation string     `yaml:"remediation,omitempty" json:"remediation,omitempty"`
	CWE         string     `yaml:"cwe,omitempty" json:"cwe,omitempty"`
	Languages   []string   `yaml:"languages" json:"languages"`
	Detectors   []Detector `yaml:"detectors" json:"detectors"`
	CreatedAt   time.Time  `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   time.Time  `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// AppliesTo reports whether the rule covers the given language tag.
func (r Rule) AppliesTo(language string) bool {
	for _, l := range r.Languages {
		if l == "*" || l == language {
			return true
		}
	}
	return false
}
