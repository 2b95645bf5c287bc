package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultRunTimeout bounds a trial run when the caller does not pick
	// one; MaxRunTimeout caps what a caller may ask for.
	DefaultRunTimeout = 5 * time.Second
	MaxRunTimeout     = 60 * time.Second
)

// capture is the outcome of one bounded subprocess run.
type capture struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// runCapture executes a command with a wall-clock deadline, buffering
// stdout and stderr. A deadline hit kills the process and is reported in
// the capture, not as an error; the returned error covers spawn failures
// only.
func runCapture(ctx context.Context, dir string, timeout time.Duration, env []string, bin string, args ...string) (*capture, error) {
	c := exec.CommandContext(ctx, bin, args...)
	c.Dir = dir
	if env != nil {
		c.Env = env
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("%s: %w", bin, err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Wait() }()

	res := &capture{}
	select {
	case err := <-done:
		res.ExitCode = exitCode(err)
	case <-time.After(timeout):
		_ = c.Process.Kill()
		<-done
		res.TimedOut = true
		res.ExitCode = -1
	case <-ctx.Done():
		_ = c.Process.Kill()
		<-done
		return nil, fmt.Errorf("%s %s: %w", bin, strings.Join(args, " "), ctx.Err())
	}
	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// Runner trial-runs generated adapter files as child processes.
type Runner struct {
	NodeBin string
	TSXBin  string
}

// RunReport is the classified outcome of one trial run. A run errs iff
// anything reached stderr or the process exited non-zero on its own; a
// deadline kill with a clean stderr means the adapter started and stayed
// up, which is a pass for a stdio server.
type RunReport struct {
	RunID    string `json:"run_id"`
	Command  string `json:"command"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	TimedOut bool   `json:"timed_out"`
	Passed   bool   `json:"passed"`
	Duration string `json:"duration"`
}

// TryRun spawns the adapter file for a bounded window and classifies the
// result. The supplied env entries are layered over the inherited
// environment.
func (r Runner) TryRun(ctx context.Context, path string, env map[string]string, timeout time.Duration) (*RunReport, error) {
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	if timeout > MaxRunTimeout {
		timeout = MaxRunTimeout
	}

	bin := r.NodeBin
	if bin == "" {
		bin = "node"
	}
	if strings.EqualFold(filepath.Ext(path), ".ts") {
		bin = r.TSXBin
		if bin == "" {
			bin = "tsx"
		}
	}

	res, err := runCapture(ctx, filepath.Dir(path), timeout, mergedEnv(env), bin, path)
	if err != nil {
		return nil, err
	}
	return &RunReport{
		RunID:    uuid.NewString(),
		Command:  bin + " " + path,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
		Passed:   classifyRun(res),
		Duration: res.Duration.Round(time.Millisecond).String(),
	}, nil
}

func classifyRun(res *capture) bool {
	if strings.TrimSpace(res.Stderr) != "" {
		return false
	}
	if res.TimedOut {
		return true
	}
	return res.ExitCode == 0
}

// mergedEnv layers overrides onto the process environment in a stable
// order.
func mergedEnv(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
