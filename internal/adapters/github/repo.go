package github

import (
	"fmt"
	"regexp"
	"strings"

	vcsurl "github.com/gitsight/go-vcsurl"
)

var shortRepoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*/[A-Za-z0-9._-]+$`)

// ParseRepo accepts "owner/repo" shorthand or any URL form vcsurl
// understands and returns the owner and repository name.
func ParseRepo(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", fmt.Errorf("repository is required")
	}
	if shortRepoPattern.MatchString(s) {
		parts := strings.SplitN(s, "/", 2)
		return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
	}
	info, err := vcsurl.Parse(s)
	if err != nil {
		return "", "", fmt.Errorf("cannot parse repository %q: %w", s, err)
	}
	if info.Username == "" || info.Name == "" {
		return "", "", fmt.Errorf("cannot determine owner and name from %q", s)
	}
	return info.Username, info.Name, nil
}
