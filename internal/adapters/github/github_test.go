package github

import (
	"testing"
	"time"

	gh "github.com/google/go-github/v66/github"
)

func TestParseRepo(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"short form", "golang/go", "golang", "go", false},
		{"short form with git suffix", "golang/go.git", "golang", "go", false},
		{"short form with dots", "my.org/repo-x", "my.org", "repo-x", false},
		{"https url", "https://github.com/mark3labs/mcp-go", "mark3labs", "mcp-go", false},
		{"https url with git suffix", "https://github.com/golang/go.git", "golang", "go", false},
		{"ssh url", "git@github.com:xanzy/go-gitlab.git", "xanzy", "go-gitlab", false},
		{"empty", "", "", "", true},
		{"single word", "justoneword", "", "", true},
		{"garbage", "not a repo at all!!!", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			owner, repo, err := ParseRepo(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseRepo(%q) = %s/%s, want error", tc.in, owner, repo)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRepo(%q): %v", tc.in, err)
			}
			if owner != tc.wantOwner || repo != tc.wantRepo {
				t.Fatalf("ParseRepo(%q) = %s/%s, want %s/%s", tc.in, owner, repo, tc.wantOwner, tc.wantRepo)
			}
		})
	}
}

func TestBuildIssue(t *testing.T) {
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	issue := &gh.Issue{
		Number:    gh.Int(42),
		Title:     gh.String("adapter crashes on empty config"),
		State:     gh.String("open"),
		User:      &gh.User{Login: gh.String("octocat")},
		Comments:  gh.Int(3),
		Labels:    []*gh.Label{{Name: gh.String("bug")}, {Name: gh.String("p1")}},
		HTMLURL:   gh.String("https://github.com/o/r/issues/42"),
		Body:      gh.String("long description"),
		CreatedAt: &gh.Timestamp{Time: created},
	}

	summary := buildIssue(issue, false)
	if summary.Number != 42 || summary.Author != "octocat" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Labels) != 2 || summary.Labels[0] != "bug" {
		t.Errorf("labels = %v", summary.Labels)
	}
	if summary.Body != "" {
		t.Errorf("summary should not carry the body, got %q", summary.Body)
	}
	if !summary.CreatedAt.Equal(created) {
		t.Errorf("created = %v, want %v", summary.CreatedAt, created)
	}

	detail := buildIssue(issue, true)
	if detail.Body != "long description" {
		t.Errorf("detail body = %q", detail.Body)
	}
}

func TestIssueListSkipsPullRequests(t *testing.T) {
	pr := &gh.Issue{Number: gh.Int(7), PullRequestLinks: &gh.PullRequestLinks{}}
	if !pr.IsPullRequest() {
		t.Fatal("fixture should read as a pull request")
	}
	issue := &gh.Issue{Number: gh.Int(8)}
	if issue.IsPullRequest() {
		t.Fatal("plain issue misread as a pull request")
	}
}

func TestBuildRepo(t *testing.T) {
	repo := &gh.Repository{
		FullName:        gh.String("golang/go"),
		Description:     gh.String("The Go programming language"),
		DefaultBranch:   gh.String("master"),
		Language:        gh.String("Go"),
		StargazersCount: gh.Int(120000),
		ForksCount:      gh.Int(17000),
		OpenIssuesCount: gh.Int(9000),
		Topics:          []string{"language", "compiler"},
		Private:         gh.Bool(false),
		HTMLURL:         gh.String("https://github.com/golang/go"),
	}

	summary := buildRepo(repo)
	if summary.FullName != "golang/go" || summary.Stars != 120000 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Topics) != 2 {
		t.Errorf("topics = %v", summary.Topics)
	}
	if summary.Private {
		t.Error("repo should not be private")
	}
}
