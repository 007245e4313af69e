// Package lang provides language tagging for scanned files by
// inspecting file extensions and well-known file names.
package lang

import (
	"path/filepath"
	"strings"
)

// Wildcard is the language tag that matches every file.
const Wildcard = "*"

// Canonical language tags used by rules and the scanner.
const (
	JavaScript = "javascript"
	TypeScript = "typescript"
	Java       = "java"
	PHP        = "php"
	Python     = "python"
	C          = "c"
	Go         = "go"
	Ruby       = "ruby"
	CSharp     = "csharp"
	Config     = "config"
)

var byExtension = map[string]string{
	".js":    JavaScript,
	".jsx":   JavaScript,
	".mjs":   JavaScript,
	".cjs":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".java":  Java,
	".jsp":   Java,
	".php":   PHP,
	".phtml": PHP,
	".py":    Python,
	".c":     C,
	".h":     C,
	".cc":    C,
	".cpp":   C,
	".hpp":   C,
	".go":    Go,
	".rb":    Ruby,
	".erb":   Ruby,
	".cs":    CSharp,
	".yaml":  Config,
	".yml":   Config,
	".json":  Config,
	".toml":  Config,
	".ini":   Config,
	".env":   Config,
	".xml":   Config,
	".properties": Config,
}

var byName = map[string]string{
	"Dockerfile": Config,
	".env":       Config,
	"web.config": Config,
}

// Detect returns the language tag for a file path, or the empty string
// when the file is not a recognized source or config file.
func Detect(path string) string {
	base := filepath.Base(path)
	if tag, ok := byName[base]; ok {
		return tag
	}
	ext := strings.ToLower(filepath.Ext(base))
	return byExtension[ext]
}

// Known reports whether tag is a canonical language tag or the wildcard.
func Known(tag string) bool {
	if tag == Wildcard {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case JavaScript, TypeScript, Java, PHP, Python, C, Go, Ruby, CSharp, Config:
		return true
	default:
		return false
	}
}

// Normalize lowercases a tag and maps common aliases onto canonical tags.
func Normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch tag {
	case "js", "node", "nodejs":
		return JavaScript
	case "ts":
		return TypeScript
	case "py":
		return Python
	case "c++", "cpp":
		return C
	case "golang":
		return Go
	case "c#", "cs":
		return CSharp
	default:
		return tag
	}
}
