package forge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClassifyRun(t *testing.T) {
	cases := []struct {
		name string
		res  capture
		want bool
	}{
		{"clean exit", capture{ExitCode: 0}, true},
		{"stdout only", capture{Stdout: "ready\n", ExitCode: 0}, true},
		{"stderr output", capture{Stderr: "boom\n", ExitCode: 0}, false},
		{"non-zero exit", capture{ExitCode: 1}, false},
		{"killed at deadline, clean stderr", capture{TimedOut: true, ExitCode: -1}, true},
		{"killed at deadline, dirty stderr", capture{TimedOut: true, ExitCode: -1, Stderr: "err"}, false},
		{"whitespace stderr is clean", capture{Stderr: " \n", ExitCode: 0}, true},
	}
	for _, tc := range cases {
		if got := classifyRun(&tc.res); got != tc.want {
			t.Fatalf("%s: classify = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// writeScript drops a shell script with a .js name so the runner can be
// exercised without a Node toolchain: NodeBin is pointed at sh.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adapter.js")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestTryRunCleanExit(t *testing.T) {
	r := Runner{NodeBin: "sh"}
	report, err := r.TryRun(context.Background(), writeScript(t, "echo ready\n"), nil, 5*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Passed || report.TimedOut || report.ExitCode != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !strings.Contains(report.Stdout, "ready") {
		t.Fatalf("stdout not captured: %+v", report)
	}
	if report.RunID == "" {
		t.Fatalf("missing run id")
	}
}

func TestTryRunStderrFails(t *testing.T) {
	r := Runner{NodeBin: "sh"}
	report, err := r.TryRun(context.Background(), writeScript(t, "echo oops >&2\n"), nil, 5*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Passed {
		t.Fatalf("stderr output should fail the run: %+v", report)
	}
}

func TestTryRunNonZeroExitFails(t *testing.T) {
	r := Runner{NodeBin: "sh"}
	report, err := r.TryRun(context.Background(), writeScript(t, "exit 3\n"), nil, 5*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Passed || report.ExitCode != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestTryRunDeadlineKillPasses(t *testing.T) {
	r := Runner{NodeBin: "sh"}
	report, err := r.TryRun(context.Background(), writeScript(t, "sleep 30\n"), nil, 1*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.TimedOut {
		t.Fatalf("expected deadline kill: %+v", report)
	}
	if !report.Passed {
		t.Fatalf("clean long-running server should pass: %+v", report)
	}
}

func TestTryRunEnvOverrides(t *testing.T) {
	r := Runner{NodeBin: "sh"}
	report, err := r.TryRun(context.Background(), writeScript(t, "echo $PROBE_VALUE\n"),
		map[string]string{"PROBE_VALUE": "injected"}, 5*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(report.Stdout, "injected") {
		t.Fatalf("env override missing: %+v", report)
	}
}

func TestTryRunMissingBinary(t *testing.T) {
	r := Runner{NodeBin: "definitely-not-a-binary-xyz"}
	if _, err := r.TryRun(context.Background(), writeScript(t, "echo hi\n"), nil, time.Second); err == nil {
		t.Fatalf("expected spawn error")
	}
}
