// Package sqlguard classifies SQL statements so the database adapters
// can hold their read-only line without a full parser.
package sqlguard

import (
	"fmt"
	"strings"
	"unicode"
)

// EnsureReadOnly rejects statements the query tool must not run: anything
// that is not a single SELECT or WITH statement. The check strips
// comments, verifies the leading keyword, and refuses stacked statements
// so "SELECT 1; DROP TABLE x" cannot ride along.
func EnsureReadOnly(query string) error {
	stripped := stripComments(query)
	trimmed := strings.TrimSpace(stripped)
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}

	keyword := leadingKeyword(trimmed)
	if keyword != "SELECT" && keyword != "WITH" {
		return fmt.Errorf("only SELECT and WITH statements are allowed, got %s", keyword)
	}

	if hasStackedStatement(trimmed) {
		return fmt.Errorf("multiple statements are not allowed")
	}
	return nil
}

// EnsureWrite rejects reads routed at a write tool, keeping the two
// directions honest about what they execute.
func EnsureWrite(query string) error {
	trimmed := strings.TrimSpace(stripComments(query))
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}
	keyword := leadingKeyword(trimmed)
	if keyword == "SELECT" || keyword == "WITH" {
		return fmt.Errorf("use read_query for SELECT statements")
	}
	return nil
}

func leadingKeyword(s string) string {
	end := 0
	for end < len(s) && !unicode.IsSpace(rune(s[end])) && s[end] != '(' && s[end] != ';' {
		end++
	}
	return strings.ToUpper(s[:end])
}

// stripComments removes -- line comments and /* */ block comments while
// leaving quoted literals alone.
func stripComments(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		switch {
		case s[i] == '\'' || s[i] == '"':
			quote := s[i]
			b.WriteByte(s[i])
			i++
			for i < len(s) {
				b.WriteByte(s[i])
				if s[i] == quote {
					// Doubled quotes stay inside the literal.
					if i+1 < len(s) && s[i+1] == quote {
						i++
						b.WriteByte(s[i])
						i++
						continue
					}
					i++
					break
				}
				i++
			}
		case strings.HasPrefix(s[i:], "--"):
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case strings.HasPrefix(s[i:], "/*"):
			i += 2
			for i < len(s) && !strings.HasPrefix(s[i:], "*/") {
				i++
			}
			if i < len(s) {
				i += 2
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// hasStackedStatement reports whether a semicolon outside quotes is
// followed by more statement text.
func hasStackedStatement(s string) bool {
	for i := 0; i < len(s); {
		switch s[i] {
		case '\'', '"':
			quote := s[i]
			i++
			for i < len(s) {
				if s[i] == quote {
					if i+1 < len(s) && s[i+1] == quote {
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}
		case ';':
			if strings.TrimSpace(s[i+1:]) != "" {
				return true
			}
			i++
		default:
			i++
		}
	}
	return false
}
