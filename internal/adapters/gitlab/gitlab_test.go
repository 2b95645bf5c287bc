package gitlab

import (
	"testing"
	"time"

	gl "github.com/xanzy/go-gitlab"
)

func TestBuildIssue(t *testing.T) {
	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	issue := &gl.Issue{
		IID:         5,
		Title:       "pipeline flaky on arm64",
		State:       "opened",
		Labels:      gl.Labels{"ci", "flaky"},
		Author:      &gl.IssueAuthor{Username: "mara"},
		WebURL:      "https://gitlab.example.com/g/p/-/issues/5",
		CreatedAt:   &created,
		Description: "fails one run in five",
	}

	summary := buildIssue(issue, false)
	if summary.IID != 5 || summary.Author != "mara" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Labels) != 2 || summary.Labels[1] != "flaky" {
		t.Errorf("labels = %v", summary.Labels)
	}
	if summary.Body != "" {
		t.Errorf("summary should not carry the description: %q", summary.Body)
	}
	if !summary.CreatedAt.Equal(created) {
		t.Errorf("created = %v, want %v", summary.CreatedAt, created)
	}

	detail := buildIssue(issue, true)
	if detail.Body != "fails one run in five" {
		t.Errorf("detail body = %q", detail.Body)
	}
}

func TestBuildIssueToleratesMissingFields(t *testing.T) {
	summary := buildIssue(&gl.Issue{IID: 1, Title: "bare"}, true)
	if summary.Author != "" {
		t.Errorf("author = %q, want empty", summary.Author)
	}
	if !summary.CreatedAt.IsZero() {
		t.Errorf("created should be zero, got %v", summary.CreatedAt)
	}
}

func TestBuildMergeRequest(t *testing.T) {
	mr := &gl.MergeRequest{
		IID:          12,
		Title:        "add retry to uploader",
		State:        "merged",
		SourceBranch: "feat/retry",
		TargetBranch: "main",
		Author:       &gl.BasicUser{Username: "jon"},
		WebURL:       "https://gitlab.example.com/g/p/-/merge_requests/12",
	}

	summary := buildMergeRequest(mr, false)
	if summary.IID != 12 || summary.State != "merged" || summary.Author != "jon" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.SourceBranch != "feat/retry" || summary.TargetBranch != "main" {
		t.Errorf("branches = %s -> %s", summary.SourceBranch, summary.TargetBranch)
	}
}
