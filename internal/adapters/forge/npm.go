package forge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mcpforge/adapters/internal/logging"
)

const (
	installTimeout = 2 * time.Minute
	probeTimeout   = 15 * time.Second
)

// Installer resolves npm packages into the servers directory, falling
// back to pnpm when npm is absent or fails.
type Installer struct {
	Dir string
	Log logging.Logger
}

// InstallReport describes one install attempt across both managers.
type InstallReport struct {
	Packages     []string `json:"packages"`
	TypePackages []string `json:"type_packages,omitempty"`
	Manager      string   `json:"manager"`
	Output       string   `json:"output,omitempty"`
}

// Install resolves the given packages. With devTypes set, each package is
// probed for a companion @types declaration package and the hits are
// installed as dev dependencies.
func (i *Installer) Install(ctx context.Context, packages []string, devTypes bool) (*InstallReport, error) {
	if len(packages) == 0 {
		return nil, fmt.Errorf("no packages to install")
	}

	manager, out, err := i.installWithFallback(ctx, packages, false)
	if err != nil {
		return nil, err
	}
	report := &InstallReport{Packages: packages, Manager: manager, Output: tail(out, 2000)}

	if devTypes {
		declared := i.probeTypes(ctx, packages)
		if len(declared) > 0 {
			if _, _, err := i.installWithFallback(ctx, declared, true); err != nil {
				// Type declarations are best-effort; the main install
				// already succeeded.
				i.Log.Info("type declaration install failed", "packages", declared, "error", err.Error())
			} else {
				report.TypePackages = declared
			}
		}
	}
	return report, nil
}

// installWithFallback tries npm first and pnpm second, reporting which
// manager succeeded.
func (i *Installer) installWithFallback(ctx context.Context, packages []string, dev bool) (string, string, error) {
	npmArgs := append([]string{"install"}, packages...)
	pnpmArgs := append([]string{"add"}, packages...)
	if dev {
		npmArgs = append(npmArgs, "--save-dev")
		pnpmArgs = append(pnpmArgs, "--save-dev")
	}

	res, npmErr := runCapture(ctx, i.Dir, installTimeout, nil, "npm", npmArgs...)
	if npmErr == nil && res.ExitCode == 0 && !res.TimedOut {
		return "npm", res.Stdout, nil
	}
	npmFailure := describeFailure("npm", res, npmErr)
	i.Log.Debug("npm install failed, trying pnpm", "cause", npmFailure)

	res, pnpmErr := runCapture(ctx, i.Dir, installTimeout, nil, "pnpm", pnpmArgs...)
	if pnpmErr == nil && res.ExitCode == 0 && !res.TimedOut {
		return "pnpm", res.Stdout, nil
	}
	return "", "", fmt.Errorf("install %s failed: %s; pnpm fallback: %s",
		strings.Join(packages, " "), npmFailure, describeFailure("pnpm", res, pnpmErr))
}

// probeTypes asks the registry which packages have a published @types
// companion.
func (i *Installer) probeTypes(ctx context.Context, packages []string) []string {
	var declared []string
	for _, pkg := range packages {
		candidate := typesCandidate(pkg)
		res, err := runCapture(ctx, i.Dir, probeTimeout, nil, "npm", "view", candidate, "version")
		if err != nil || res.ExitCode != 0 || res.TimedOut {
			continue
		}
		if strings.TrimSpace(res.Stdout) != "" {
			declared = append(declared, candidate)
		}
	}
	return declared
}

// typesCandidate maps a package to its DefinitelyTyped name: scoped
// @scope/name becomes @types/scope__name.
func typesCandidate(pkg string) string {
	if strings.HasPrefix(pkg, "@") {
		trimmed := strings.TrimPrefix(pkg, "@")
		return "@types/" + strings.ReplaceAll(trimmed, "/", "__")
	}
	return "@types/" + pkg
}

func describeFailure(bin string, res *capture, err error) string {
	if err != nil {
		return fmt.Sprintf("%s: %v", bin, err)
	}
	if res.TimedOut {
		return fmt.Sprintf("%s timed out after %s", bin, installTimeout)
	}
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	return fmt.Sprintf("%s exited %d: %s", bin, res.ExitCode, tail(msg, 400))
}

func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
