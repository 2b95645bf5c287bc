package forge

import (
	"strings"
	"testing"
)

const sampleFile = "const a = 1;\nconst b = 2;\nconst c = 3;\nconst d = 4;\n"

func TestReplaceLinesWithOwnContentIsIdentity(t *testing.T) {
	lines := strings.Split(strings.TrimSuffix(sampleFile, "\n"), "\n")

	for start := 1; start <= len(lines); start++ {
		for end := start; end <= len(lines); end++ {
			original := strings.Join(lines[start-1:end], "\n")
			got, err := ReplaceLines(sampleFile, start, end, original)
			if err != nil {
				t.Fatalf("replace [%d,%d]: %v", start, end, err)
			}
			if got != sampleFile {
				t.Fatalf("replace [%d,%d] with own content changed file:\n%q", start, end, got)
			}
		}
	}
}

func TestReplaceLinesSplicesRange(t *testing.T) {
	got, err := ReplaceLines(sampleFile, 2, 3, "const x = 9;")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	want := "const a = 1;\nconst x = 9;\nconst d = 4;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReplaceLinesGrowsAndShrinks(t *testing.T) {
	grown, err := ReplaceLines(sampleFile, 2, 2, "one\ntwo\nthree")
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if CountLines(grown) != 6 {
		t.Fatalf("expected 6 lines after growth, got %d", CountLines(grown))
	}

	shrunk, err := ReplaceLines(sampleFile, 1, 4, "only")
	if err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if shrunk != "only\n" {
		t.Fatalf("got %q", shrunk)
	}
}

func TestReplaceLinesEmptyReplacementDeletes(t *testing.T) {
	got, err := ReplaceLines(sampleFile, 2, 3, "")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	want := "const a = 1;\nconst d = 4;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReplaceLinesRejectsBadRanges(t *testing.T) {
	cases := []struct {
		name       string
		start, end int
	}{
		{"zero start", 0, 2},
		{"negative start", -1, 2},
		{"inverted", 3, 2},
		{"end past eof", 2, 5},
		{"both past eof", 9, 12},
	}
	for _, tc := range cases {
		if _, err := ReplaceLines(sampleFile, tc.start, tc.end, "x"); err == nil {
			t.Fatalf("%s: expected rejection for [%d,%d]", tc.name, tc.start, tc.end)
		}
	}
}

func TestReplaceLinesNoTrailingNewline(t *testing.T) {
	content := "alpha\nbeta"
	got, err := ReplaceLines(content, 2, 2, "gamma")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got != "alpha\ngamma" {
		t.Fatalf("trailing newline invented: %q", got)
	}
}

func TestInsertLinesShiftsSuffix(t *testing.T) {
	insertion := "const i = 0;\nconst j = 0;"
	got, err := InsertLines(sampleFile, 2, insertion)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if CountLines(got) != CountLines(sampleFile)+2 {
		t.Fatalf("line count %d, want %d", CountLines(got), CountLines(sampleFile)+2)
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if lines[0] != "const a = 1;" || lines[1] != "const b = 2;" {
		t.Fatalf("prefix disturbed: %v", lines[:2])
	}
	if lines[2] != "const i = 0;" || lines[3] != "const j = 0;" {
		t.Fatalf("insertion misplaced: %v", lines[2:4])
	}
	if lines[4] != "const c = 3;" || lines[5] != "const d = 4;" {
		t.Fatalf("suffix not shifted intact: %v", lines[4:])
	}
}

func TestInsertLinesAtZeroPrepends(t *testing.T) {
	got, err := InsertLines(sampleFile, 0, "// header")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !strings.HasPrefix(got, "// header\nconst a = 1;") {
		t.Fatalf("prepend failed: %q", got)
	}
}

func TestInsertLinesAtEOFAppends(t *testing.T) {
	got, err := InsertLines(sampleFile, 4, "// footer")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !strings.HasSuffix(got, "const d = 4;\n// footer\n") {
		t.Fatalf("append failed: %q", got)
	}
}

func TestInsertLinesRejectsPastEOF(t *testing.T) {
	if _, err := InsertLines(sampleFile, 5, "x"); err == nil {
		t.Fatalf("expected rejection past end-of-file")
	}
	if _, err := InsertLines(sampleFile, -1, "x"); err == nil {
		t.Fatalf("expected rejection for negative line")
	}
}

func TestInsertLinesIntoEmptyFile(t *testing.T) {
	got, err := InsertLines("", 0, "first")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got != "first\n" {
		t.Fatalf("got %q", got)
	}
	if _, err := InsertLines("", 1, "x"); err == nil {
		t.Fatalf("expected rejection: empty file has no line 1")
	}
}

func TestNumberLines(t *testing.T) {
	out := NumberLines("a\nb\n")
	if !strings.Contains(out, "1\ta") || !strings.Contains(out, "2\tb") {
		t.Fatalf("unexpected numbering:\n%s", out)
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"\n", 1},
	}
	for _, tc := range cases {
		if got := CountLines(tc.content); got != tc.want {
			t.Fatalf("CountLines(%q) = %d, want %d", tc.content, got, tc.want)
		}
	}
}
