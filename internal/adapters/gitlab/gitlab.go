// Package gitlab adapts a GitLab instance as an issue and merge-request
// tracker. A token is always required; self-hosted instances point
// GITLAB_BASE_URL at their API root.
package gitlab

import (
	"fmt"
	"time"

	gl "github.com/xanzy/go-gitlab"
)

func NewClient(token, baseURL string) (*gl.Client, error) {
	opts := []gl.ClientOptionFunc{}
	if baseURL != "" {
		opts = append(opts, gl.WithBaseURL(baseURL))
	}
	client, err := gl.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}
	return client, nil
}

type Project struct {
	ID            int    `json:"id"`
	Path          string `json:"path"`
	Description   string `json:"description,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	OpenIssues    int    `json:"open_issues"`
	Visibility    string `json:"visibility"`
	URL           string `json:"url"`
}

func buildProject(project *gl.Project) Project {
	return Project{
		ID:            project.ID,
		Path:          project.PathWithNamespace,
		Description:   project.Description,
		DefaultBranch: project.DefaultBranch,
		Stars:         project.StarCount,
		Forks:         project.ForksCount,
		OpenIssues:    project.OpenIssuesCount,
		Visibility:    string(project.Visibility),
		URL:           project.WebURL,
	}
}

type Issue struct {
	IID       int       `json:"iid"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Author    string    `json:"author"`
	Labels    []string  `json:"labels,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	URL       string    `json:"url"`
	Body      string    `json:"body,omitempty"`
}

func buildIssue(issue *gl.Issue, withBody bool) Issue {
	out := Issue{
		IID:       issue.IID,
		Title:     issue.Title,
		State:     issue.State,
		Labels:    issue.Labels,
		CreatedAt: timeOrZero(issue.CreatedAt),
		UpdatedAt: timeOrZero(issue.UpdatedAt),
		URL:       issue.WebURL,
	}
	if issue.Author != nil {
		out.Author = issue.Author.Username
	}
	if withBody {
		out.Body = issue.Description
	}
	return out
}

type MergeRequest struct {
	IID          int       `json:"iid"`
	Title        string    `json:"title"`
	State        string    `json:"state"`
	Author       string    `json:"author"`
	SourceBranch string    `json:"source_branch"`
	TargetBranch string    `json:"target_branch"`
	CreatedAt    time.Time `json:"created_at"`
	URL          string    `json:"url"`
	Body         string    `json:"body,omitempty"`
}

func buildMergeRequest(mr *gl.MergeRequest, withBody bool) MergeRequest {
	out := MergeRequest{
		IID:          mr.IID,
		Title:        mr.Title,
		State:        mr.State,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		CreatedAt:    timeOrZero(mr.CreatedAt),
		URL:          mr.WebURL,
	}
	if mr.Author != nil {
		out.Author = mr.Author.Username
	}
	if withBody {
		out.Body = mr.Description
	}
	return out
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
