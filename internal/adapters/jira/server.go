package jira

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type Service struct {
	mu     sync.Mutex
	client *Client
	log    logging.Logger
}

func NewService(log logging.Logger) *Service {
	return &Service{log: log.WithName("jira")}
}

func (s *Service) getClient() (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	baseURL := config.JiraBaseURL()
	email := config.JiraEmail()
	token := config.JiraAPIToken()
	if baseURL == "" || email == "" || token == "" {
		return nil, fmt.Errorf("JIRA_BASE_URL, JIRA_EMAIL, and JIRA_API_TOKEN must all be set")
	}
	s.client = NewClient(baseURL, email, token)
	return s.client, nil
}

func (s *Service) handleSearchIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jql, err := req.RequireString("jql")
	if err != nil {
		return adapter.Errorf("jql parameter is required"), nil
	}
	limit := adapter.IntArg(req, "limit", defaultSearchLimit)
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	result, err := client.SearchIssues(ctx, jql, limit)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(result), nil
}

func (s *Service) handleGetIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return adapter.Errorf("key parameter is required"), nil
	}
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	issue, err := client.GetIssue(ctx, key)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(issue), nil
}

func (s *Service) handleCreateIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return adapter.Errorf("project parameter is required"), nil
	}
	summary, err := req.RequireString("summary")
	if err != nil {
		return adapter.Errorf("summary parameter is required"), nil
	}
	issueType := req.GetString("issue_type", "")
	description := req.GetString("description", "")

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	created, err := client.CreateIssue(ctx, project, summary, issueType, description)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(created), nil
}

func (s *Service) handleAddComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return adapter.Errorf("key parameter is required"), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return adapter.Errorf("body parameter is required"), nil
	}

	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	comment, err := client.AddComment(ctx, key, body)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(comment), nil
}

func (s *Service) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := s.getClient()
	if err != nil {
		return adapter.Errorf("configuration error: %v", err), nil
	}
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Projects []Project `json:"projects"`
		Total    int       `json:"total"`
	}{projects, len(projects)}), nil
}

var requiredKeys = []string{config.KeyJiraBaseURL, config.KeyJiraEmail, config.KeyJiraAPIToken}

// New builds the jira adapter. Every tool needs the full credential
// triple: base URL, account email, and API token.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "jira",
		Version:     "1.0.0",
		Description: "Track Jira issues: JQL search, read, create, and comment.",
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("search_issues",
		mcp.WithDescription("Search issues with JQL."),
		mcp.WithString("jql", mcp.Required(), mcp.Description("JQL query, e.g. project = OPS AND status = \"In Progress\"")),
		mcp.WithNumber("limit", mcp.Description("Maximum issues to return (default: 20, max: 100)")),
	), adapter.RequireEnv(svc.handleSearchIssues, requiredKeys...))

	srv.Handle(mcp.NewTool("get_issue",
		mcp.WithDescription("Fetch one issue with its description."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Issue key, e.g. OPS-17")),
	), adapter.RequireEnv(svc.handleGetIssue, requiredKeys...))

	srv.Handle(mcp.NewTool("create_issue",
		mcp.WithDescription("Create an issue in a project."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project key, e.g. OPS")),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Issue summary")),
		mcp.WithString("issue_type", mcp.Description("Issue type name (default: Task)")),
		mcp.WithString("description", mcp.Description("Issue description")),
	), adapter.RequireEnv(svc.handleCreateIssue, requiredKeys...))

	srv.Handle(mcp.NewTool("add_comment",
		mcp.WithDescription("Comment on an issue."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Issue key, e.g. OPS-17")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Comment body")),
	), adapter.RequireEnv(svc.handleAddComment, requiredKeys...))

	srv.Handle(mcp.NewTool("list_projects",
		mcp.WithDescription("List projects visible to the configured account."),
	), adapter.RequireEnv(svc.handleListProjects, requiredKeys...))

	return srv
}
