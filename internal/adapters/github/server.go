package github

import (
	"context"
	"sync"

	gh "github.com/google/go-github/v66/github"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	once   sync.Once
	client *gh.Client
	log    logging.Logger
}

func NewService(log logging.Logger) *Service {
	return &Service{log: log.WithName("github")}
}

func (s *Service) getClient() *gh.Client {
	s.once.Do(func() {
		token := config.GitHubToken()
		s.client = NewClient(token)
		if token == "" {
			s.log.Info("no token configured, serving reads anonymously")
		}
	})
	return s.client
}

func listLimit(req mcp.CallToolRequest) int {
	limit := adapter.IntArg(req, "limit", defaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

func (s *Service) handleListIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoArg, err := req.RequireString("repo")
	if err != nil {
		return adapter.Errorf("repo parameter is required"), nil
	}
	owner, repo, err := ParseRepo(repoArg)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	state := req.GetString("state", "open")

	opts := &gh.IssueListByRepoOptions{
		State:       state,
		ListOptions: gh.ListOptions{PerPage: listLimit(req)},
	}
	issues, _, err := s.getClient().Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		return adapter.Errorf("github: %v", err), nil
	}

	// The issues API interleaves pull requests; this adapter tracks
	// issues only.
	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		out = append(out, buildIssue(issue, false))
	}
	return adapter.TextResult(struct {
		Repo   string  `json:"repo"`
		State  string  `json:"state"`
		Issues []Issue `json:"issues"`
		Total  int     `json:"total"`
	}{owner + "/" + repo, state, out, len(out)}), nil
}

func (s *Service) handleGetIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoArg, err := req.RequireString("repo")
	if err != nil {
		return adapter.Errorf("repo parameter is required"), nil
	}
	owner, repo, err := ParseRepo(repoArg)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	number, err := adapter.RequireInt(req, "number")
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}

	issue, _, err := s.getClient().Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return adapter.Errorf("github: %v", err), nil
	}
	return adapter.TextResult(buildIssue(issue, true)), nil
}

func (s *Service) handleCreateIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoArg, err := req.RequireString("repo")
	if err != nil {
		return adapter.Errorf("repo parameter is required"), nil
	}
	owner, repo, err := ParseRepo(repoArg)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return adapter.Errorf("title parameter is required"), nil
	}

	request := &gh.IssueRequest{Title: gh.String(title)}
	if body := req.GetString("body", ""); body != "" {
		request.Body = gh.String(body)
	}
	if labels := adapter.StringSliceArg(req, "labels"); len(labels) > 0 {
		request.Labels = &labels
	}

	issue, _, err := s.getClient().Issues.Create(ctx, owner, repo, request)
	if err != nil {
		return adapter.Errorf("github: %v", err), nil
	}
	return adapter.TextResult(buildIssue(issue, true)), nil
}

func (s *Service) handleAddComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoArg, err := req.RequireString("repo")
	if err != nil {
		return adapter.Errorf("repo parameter is required"), nil
	}
	owner, repo, err := ParseRepo(repoArg)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	number, err := adapter.RequireInt(req, "number")
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return adapter.Errorf("body parameter is required"), nil
	}

	comment, _, err := s.getClient().Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		return adapter.Errorf("github: %v", err), nil
	}
	return adapter.TextResult(buildComment(comment)), nil
}

func (s *Service) handleSearchIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return adapter.Errorf("query parameter is required"), nil
	}

	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: listLimit(req)}}
	result, _, err := s.getClient().Search.Issues(ctx, query, opts)
	if err != nil {
		return adapter.Errorf("github: %v", err), nil
	}

	out := make([]Issue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		out = append(out, buildIssue(issue, false))
	}
	return adapter.TextResult(struct {
		Query      string  `json:"query"`
		Issues     []Issue `json:"issues"`
		TotalFound int     `json:"total_found"`
	}{query, out, result.GetTotal()}), nil
}

func (s *Service) handleGetRepo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoArg, err := req.RequireString("repo")
	if err != nil {
		return adapter.Errorf("repo parameter is required"), nil
	}
	owner, repo, err := ParseRepo(repoArg)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}

	repository, _, err := s.getClient().Repositories.Get(ctx, owner, repo)
	if err != nil {
		return adapter.Errorf("github: %v", err), nil
	}
	return adapter.TextResult(buildRepo(repository)), nil
}

// New builds the github adapter. Mutating tools require GITHUB_TOKEN;
// read tools fall back to anonymous access.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "github",
		Version:     "1.0.0",
		Description: "Track GitHub issues: list, read, search, create, and comment. Repository arguments accept owner/repo or a full URL.",
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("list_issues",
		mcp.WithDescription("List issues in a repository, newest first. Pull requests are excluded."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository as owner/repo or URL")),
		mcp.WithString("state", mcp.Description("Issue state filter"), mcp.Enum("open", "closed", "all"), mcp.DefaultString("open")),
		mcp.WithNumber("limit", mcp.Description("Maximum issues to return (default: 20, max: 100)")),
	), svc.handleListIssues)

	srv.Handle(mcp.NewTool("get_issue",
		mcp.WithDescription("Fetch one issue with its body."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository as owner/repo or URL")),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Issue number")),
	), svc.handleGetIssue)

	srv.Handle(mcp.NewTool("create_issue",
		mcp.WithDescription("Open a new issue."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository as owner/repo or URL")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Issue title")),
		mcp.WithString("body", mcp.Description("Issue body in Markdown")),
		mcp.WithArray("labels", mcp.Description("Labels to apply"), mcp.WithStringItems()),
	), adapter.RequireEnv(svc.handleCreateIssue, config.KeyGitHubToken))

	srv.Handle(mcp.NewTool("add_comment",
		mcp.WithDescription("Comment on an issue or pull request."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository as owner/repo or URL")),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Issue or PR number")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Comment body in Markdown")),
	), adapter.RequireEnv(svc.handleAddComment, config.KeyGitHubToken))

	srv.Handle(mcp.NewTool("search_issues",
		mcp.WithDescription("Search issues and pull requests with GitHub's search syntax."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, e.g. repo:owner/name is:open label:bug")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return (default: 20, max: 100)")),
	), svc.handleSearchIssues)

	srv.Handle(mcp.NewTool("get_repo",
		mcp.WithDescription("Fetch repository metadata: description, default branch, stars, forks, topics."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository as owner/repo or URL")),
	), svc.handleGetRepo)

	return srv
}
