package gitlab

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	gl "github.com/xanzy/go-gitlab"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	mu     sync.Mutex
	client *gl.Client
	log    logging.Logger
}

func NewService(log logging.Logger) *Service {
	return &Service{log: log.WithName("gitlab")}
}

func (s *Service) getClient() (*gl.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	token := config.GitLabToken()
	if token == "" {
		return nil, fmt.Errorf("GITLAB_TOKEN is not set")
	}
	client, err := NewClient(token, config.GitLabBaseURL())
	if err != nil {
		return nil, err
	}
	s.client = client
	return s.client, nil
}

func listLimit(req mcp.CallToolRequest) int {
	limit := adapter.IntArg(req, "limit", defaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

// stateFilter maps the tool's state argument onto the API's optional
// filter; "all" means no filter at all.
func stateFilter(req mcp.CallToolRequest) *string {
	state := req.GetString("state", "opened")
	if state == "all" {
		return nil
	}
	return gl.Ptr(state)
}

func (s *Service) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}

	opts := &gl.ListProjectsOptions{
		Membership:  gl.Ptr(true),
		ListOptions: gl.ListOptions{PerPage: listLimit(req)},
	}
	if search := req.GetString("search", ""); search != "" {
		opts.Search = gl.Ptr(search)
		opts.Membership = nil
	}

	projects, _, err := client.Projects.ListProjects(opts, gl.WithContext(ctx))
	if err != nil {
		return adapter.Errorf("gitlab: %v", err), nil
	}

	out := make([]Project, 0, len(projects))
	for _, project := range projects {
		out = append(out, buildProject(project))
	}
	return adapter.TextResult(struct {
		Projects []Project `json:"projects"`
		Total    int       `json:"total"`
	}{out, len(out)}), nil
}

func (s *Service) handleListIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return adapter.Errorf("project parameter is required"), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}

	opts := &gl.ListProjectIssuesOptions{
		State:       stateFilter(req),
		ListOptions: gl.ListOptions{PerPage: listLimit(req)},
	}
	issues, _, err := client.Issues.ListProjectIssues(project, opts, gl.WithContext(ctx))
	if err != nil {
		return adapter.Errorf("gitlab: %v", err), nil
	}

	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, buildIssue(issue, false))
	}
	return adapter.TextResult(struct {
		Project string  `json:"project"`
		Issues  []Issue `json:"issues"`
		Total   int     `json:"total"`
	}{project, out, len(out)}), nil
}

func (s *Service) handleGetIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return adapter.Errorf("project parameter is required"), nil
	}
	iid, err := adapter.RequireInt(req, "iid")
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}

	issue, _, err := client.Issues.GetIssue(project, iid, gl.WithContext(ctx))
	if err != nil {
		return adapter.Errorf("gitlab: %v", err), nil
	}
	return adapter.TextResult(buildIssue(issue, true)), nil
}

func (s *Service) handleCreateIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return adapter.Errorf("project parameter is required"), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return adapter.Errorf("title parameter is required"), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}

	opts := &gl.CreateIssueOptions{Title: gl.Ptr(title)}
	if description := req.GetString("description", ""); description != "" {
		opts.Description = gl.Ptr(description)
	}
	issue, _, err := client.Issues.CreateIssue(project, opts, gl.WithContext(ctx))
	if err != nil {
		return adapter.Errorf("gitlab: %v", err), nil
	}
	return adapter.TextResult(buildIssue(issue, true)), nil
}

func (s *Service) handleListMergeRequests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return adapter.Errorf("project parameter is required"), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}

	opts := &gl.ListProjectMergeRequestsOptions{
		State:       stateFilter(req),
		ListOptions: gl.ListOptions{PerPage: listLimit(req)},
	}
	mrs, _, err := client.MergeRequests.ListProjectMergeRequests(project, opts, gl.WithContext(ctx))
	if err != nil {
		return adapter.Errorf("gitlab: %v", err), nil
	}

	out := make([]MergeRequest, 0, len(mrs))
	for _, mr := range mrs {
		out = append(out, buildMergeRequest(mr, false))
	}
	return adapter.TextResult(struct {
		Project       string         `json:"project"`
		MergeRequests []MergeRequest `json:"merge_requests"`
		Total         int            `json:"total"`
	}{project, out, len(out)}), nil
}

func (s *Service) handleGetMergeRequest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return adapter.Errorf("project parameter is required"), nil
	}
	iid, err := adapter.RequireInt(req, "iid")
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}

	mr, _, err := client.MergeRequests.GetMergeRequest(project, iid, &gl.GetMergeRequestsOptions{}, gl.WithContext(ctx))
	if err != nil {
		return adapter.Errorf("gitlab: %v", err), nil
	}
	return adapter.TextResult(buildMergeRequest(mr, true)), nil
}

// New builds the gitlab adapter. Every tool needs GITLAB_TOKEN; set
// GITLAB_BASE_URL for self-hosted instances.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "gitlab",
		Version:     "1.0.0",
		Description: "Track GitLab projects: issues and merge requests. Project arguments accept a numeric id or namespace/project path.",
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("list_projects",
		mcp.WithDescription("List projects you are a member of, or search all visible projects."),
		mcp.WithString("search", mcp.Description("Search term; when set, membership is not required")),
		mcp.WithNumber("limit", mcp.Description("Maximum projects to return (default: 20, max: 100)")),
	), adapter.RequireEnv(svc.handleListProjects, config.KeyGitLabToken))

	srv.Handle(mcp.NewTool("list_issues",
		mcp.WithDescription("List issues in a project."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project id or namespace/project path")),
		mcp.WithString("state", mcp.Description("Issue state filter"), mcp.Enum("opened", "closed", "all"), mcp.DefaultString("opened")),
		mcp.WithNumber("limit", mcp.Description("Maximum issues to return (default: 20, max: 100)")),
	), adapter.RequireEnv(svc.handleListIssues, config.KeyGitLabToken))

	srv.Handle(mcp.NewTool("get_issue",
		mcp.WithDescription("Fetch one issue with its description."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project id or namespace/project path")),
		mcp.WithNumber("iid", mcp.Required(), mcp.Description("Issue iid (per-project number)")),
	), adapter.RequireEnv(svc.handleGetIssue, config.KeyGitLabToken))

	srv.Handle(mcp.NewTool("create_issue",
		mcp.WithDescription("Open a new issue in a project."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project id or namespace/project path")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Issue title")),
		mcp.WithString("description", mcp.Description("Issue description in Markdown")),
	), adapter.RequireEnv(svc.handleCreateIssue, config.KeyGitLabToken))

	srv.Handle(mcp.NewTool("list_merge_requests",
		mcp.WithDescription("List merge requests in a project."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project id or namespace/project path")),
		mcp.WithString("state", mcp.Description("Merge request state filter"), mcp.Enum("opened", "closed", "merged", "all"), mcp.DefaultString("opened")),
		mcp.WithNumber("limit", mcp.Description("Maximum merge requests to return (default: 20, max: 100)")),
	), adapter.RequireEnv(svc.handleListMergeRequests, config.KeyGitLabToken))

	srv.Handle(mcp.NewTool("get_merge_request",
		mcp.WithDescription("Fetch one merge request with its description."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project id or namespace/project path")),
		mcp.WithNumber("iid", mcp.Required(), mcp.Description("Merge request iid (per-project number)")),
	), adapter.RequireEnv(svc.handleGetMergeRequest, config.KeyGitLabToken))

	return srv
}
