package scan

import (
	"path/filepath"
	"regexp"
	"strings"
)

// globMatch matches a path against a glob supporting ** across
// directory separators and * / ? within a single segment.
func globMatch(glob string, value string) bool {
	glob = strings.TrimSpace(glob)
	if glob == "" {
		return false
	}
	re, err := regexp.Compile(globToRegex(glob))
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	r := []rune(filepath.ToSlash(glob))
	for i := 0; i < len(r); i++ {
		switch r[i] {
		case '*':
			if i+1 < len(r) && r[i+1] == '*' {
				if i+2 < len(r) && r[i+2] == '/' {
					b.WriteString("(?:.*/)?")
					i += 2
					continue
				}
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			b.WriteString("\\")
			b.WriteRune(r[i])
		default:
			b.WriteRune(r[i])
		}
	}
	b.WriteString("$")
	return b.String()
}
