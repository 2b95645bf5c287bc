// Package github adapts the GitHub issue tracker: listing, reading, and
// creating issues and comments, plus repository metadata and search.
// Reads work anonymously; mutations need GITHUB_TOKEN.
package github

import (
	"context"
	"net/http"
	"time"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// NewClient returns an authenticated client when a token is supplied and
// an anonymous one otherwise. Anonymous clients hit much lower rate
// limits but serve read-only calls fine.
func NewClient(token string) *gh.Client {
	if token == "" {
		return gh.NewClient(&http.Client{Timeout: 30 * time.Second})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 30 * time.Second
	return gh.NewClient(tc)
}

type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Author    string    `json:"author"`
	Labels    []string  `json:"labels,omitempty"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	URL       string    `json:"url"`
	Body      string    `json:"body,omitempty"`
}

func buildIssue(issue *gh.Issue, withBody bool) Issue {
	out := Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		State:     issue.GetState(),
		Author:    issue.GetUser().GetLogin(),
		Comments:  issue.GetComments(),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
		URL:       issue.GetHTMLURL(),
	}
	for _, label := range issue.Labels {
		out.Labels = append(out.Labels, label.GetName())
	}
	if withBody {
		out.Body = issue.GetBody()
	}
	return out
}

type Repo struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description,omitempty"`
	DefaultBranch string   `json:"default_branch"`
	Language      string   `json:"language,omitempty"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	OpenIssues    int      `json:"open_issues"`
	Topics        []string `json:"topics,omitempty"`
	Private       bool     `json:"private"`
	URL           string   `json:"url"`
}

func buildRepo(repo *gh.Repository) Repo {
	return Repo{
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		DefaultBranch: repo.GetDefaultBranch(),
		Language:      repo.GetLanguage(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		Topics:        repo.Topics,
		Private:       repo.GetPrivate(),
		URL:           repo.GetHTMLURL(),
	}
}

type Comment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

func buildComment(comment *gh.IssueComment) Comment {
	return Comment{
		ID:        comment.GetID(),
		Author:    comment.GetUser().GetLogin(),
		CreatedAt: comment.GetCreatedAt().Time,
		URL:       comment.GetHTMLURL(),
	}
}
