package forge

import (
	"fmt"
	"strings"
)

// splitLines breaks content into addressable lines. A trailing newline
// terminates the last line rather than opening an empty one, and is
// reported separately so edits can reproduce the original byte-for-byte.
func splitLines(content string) (lines []string, trailingNewline bool) {
	if content == "" {
		return nil, false
	}
	trailingNewline = strings.HasSuffix(content, "\n")
	if trailingNewline {
		content = strings.TrimSuffix(content, "\n")
	}
	return strings.Split(content, "\n"), trailingNewline
}

func joinLines(lines []string, trailingNewline bool) string {
	if len(lines) == 0 {
		return ""
	}
	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}
	return out
}

// ReplaceLines splices replacement over the 1-based inclusive range
// [start,end]: lines before start and after end are untouched. Inverted
// or out-of-range bounds are rejected, never clamped, and the error names
// the violated constraint so the caller can leave the file unmodified.
func ReplaceLines(content string, start, end int, replacement string) (string, error) {
	lines, trailing := splitLines(content)
	if start < 1 {
		return "", fmt.Errorf("startLine must be at least 1, got %d", start)
	}
	if end < start {
		return "", fmt.Errorf("endLine %d is before startLine %d", end, start)
	}
	if end > len(lines) {
		return "", fmt.Errorf("endLine %d exceeds file length %d", end, len(lines))
	}

	repl, _ := splitLines(replacement)
	out := make([]string, 0, len(lines)-(end-start+1)+len(repl))
	out = append(out, lines[:start-1]...)
	out = append(out, repl...)
	out = append(out, lines[end:]...)
	return joinLines(out, trailing), nil
}

// InsertLines splices insertion immediately after the 1-based line
// afterLine. Zero prepends; anything past end-of-file is rejected.
func InsertLines(content string, afterLine int, insertion string) (string, error) {
	lines, trailing := splitLines(content)
	if afterLine < 0 {
		return "", fmt.Errorf("afterLine must be at least 0, got %d", afterLine)
	}
	if afterLine > len(lines) {
		return "", fmt.Errorf("afterLine %d exceeds file length %d", afterLine, len(lines))
	}

	ins, _ := splitLines(insertion)
	if len(lines) == 0 {
		// Inserting into an empty file establishes its content.
		return joinLines(ins, true), nil
	}
	out := make([]string, 0, len(lines)+len(ins))
	out = append(out, lines[:afterLine]...)
	out = append(out, ins...)
	out = append(out, lines[afterLine:]...)
	return joinLines(out, trailing), nil
}

// NumberLines renders content with 1-based line numbers for section
// editing.
func NumberLines(content string) string {
	lines, _ := splitLines(content)
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%4d\t%s\n", i+1, line)
	}
	return b.String()
}

// CountLines reports the number of addressable lines in content.
func CountLines(content string) int {
	lines, _ := splitLines(content)
	return len(lines)
}
