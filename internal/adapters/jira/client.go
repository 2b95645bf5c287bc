// Package jira adapts a Jira instance over its REST v2 API. The client
// stays deliberately thin: requests are plain HTTP with basic auth and
// responses are plucked with gjson instead of mirroring Jira's schema.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const apiPrefix = "/rest/api/2"

type Client struct {
	baseURL string
	email   string
	token   string
	http    *http.Client
}

func NewClient(baseURL, email, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   email,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (gjson.Result, error) {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading jira response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("jira returned %s: %s", resp.Status, snippet(data))
	}
	return gjson.ParseBytes(data), nil
}

// snippet keeps error messages readable when Jira answers with a page
// of HTML or a long error document.
func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}

type Issue struct {
	Key      string   `json:"key"`
	Summary  string   `json:"summary"`
	Status   string   `json:"status,omitempty"`
	Type     string   `json:"type,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Reporter string   `json:"reporter,omitempty"`
	Labels   []string `json:"labels,omitempty"`
	Created  string   `json:"created,omitempty"`
	Updated  string   `json:"updated,omitempty"`
	Body     string   `json:"body,omitempty"`
}

func issueFromJSON(item gjson.Result, withBody bool) Issue {
	issue := Issue{
		Key:      item.Get("key").String(),
		Summary:  item.Get("fields.summary").String(),
		Status:   item.Get("fields.status.name").String(),
		Type:     item.Get("fields.issuetype.name").String(),
		Priority: item.Get("fields.priority.name").String(),
		Assignee: item.Get("fields.assignee.displayName").String(),
		Reporter: item.Get("fields.reporter.displayName").String(),
		Created:  item.Get("fields.created").String(),
		Updated:  item.Get("fields.updated").String(),
	}
	for _, label := range item.Get("fields.labels").Array() {
		issue.Labels = append(issue.Labels, label.String())
	}
	if withBody {
		issue.Body = item.Get("fields.description").String()
	}
	return issue
}

const issueFields = "summary,status,issuetype,priority,assignee,reporter,labels,created,updated"

type SearchResult struct {
	Issues     []Issue `json:"issues"`
	TotalFound int     `json:"total_found"`
}

func (c *Client) SearchIssues(ctx context.Context, jql string, limit int) (*SearchResult, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("maxResults", fmt.Sprint(limit))
	query.Set("fields", issueFields)

	doc, err := c.do(ctx, http.MethodGet, "/search", query, nil)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Issues:     []Issue{},
		TotalFound: int(doc.Get("total").Int()),
	}
	for _, item := range doc.Get("issues").Array() {
		result.Issues = append(result.Issues, issueFromJSON(item, false))
	}
	return result, nil
}

func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	query := url.Values{}
	query.Set("fields", issueFields+",description")

	doc, err := c.do(ctx, http.MethodGet, "/issue/"+url.PathEscape(key), query, nil)
	if err != nil {
		return nil, err
	}
	issue := issueFromJSON(doc, true)
	return &issue, nil
}

type CreatedIssue struct {
	Key string `json:"key"`
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) CreateIssue(ctx context.Context, project, summary, issueType, description string) (*CreatedIssue, error) {
	if issueType == "" {
		issueType = "Task"
	}
	fields := map[string]any{
		"project":   map[string]string{"key": project},
		"summary":   summary,
		"issuetype": map[string]string{"name": issueType},
	}
	if description != "" {
		fields["description"] = description
	}

	doc, err := c.do(ctx, http.MethodPost, "/issue", nil, map[string]any{"fields": fields})
	if err != nil {
		return nil, err
	}
	return &CreatedIssue{
		Key: doc.Get("key").String(),
		ID:  doc.Get("id").String(),
		URL: doc.Get("self").String(),
	}, nil
}

type Comment struct {
	ID      string `json:"id"`
	Author  string `json:"author,omitempty"`
	Created string `json:"created,omitempty"`
}

func (c *Client) AddComment(ctx context.Context, key, body string) (*Comment, error) {
	doc, err := c.do(ctx, http.MethodPost, "/issue/"+url.PathEscape(key)+"/comment", nil, map[string]string{"body": body})
	if err != nil {
		return nil, err
	}
	return &Comment{
		ID:      doc.Get("id").String(),
		Author:  doc.Get("author.displayName").String(),
		Created: doc.Get("created").String(),
	}, nil
}

type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	doc, err := c.do(ctx, http.MethodGet, "/project", nil, nil)
	if err != nil {
		return nil, err
	}

	projects := []Project{}
	for _, item := range doc.Array() {
		projects = append(projects, Project{
			Key:  item.Get("key").String(),
			Name: item.Get("name").String(),
			Type: item.Get("projectTypeKey").String(),
		})
	}
	return projects, nil
}
