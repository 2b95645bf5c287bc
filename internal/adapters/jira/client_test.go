package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, "dev@example.com", "secret-token")
}

func TestSearchIssues(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("jql"); got != "project = OPS" {
			t.Errorf("jql = %q", got)
		}
		if got := r.URL.Query().Get("maxResults"); got != "5" {
			t.Errorf("maxResults = %q", got)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "dev@example.com" || pass != "secret-token" {
			t.Errorf("basic auth = %q/%q (%v)", user, pass, ok)
		}
		w.Write([]byte(`{
			"total": 2,
			"issues": [
				{"key": "OPS-1", "fields": {"summary": "disk full", "status": {"name": "Open"},
				 "issuetype": {"name": "Bug"}, "priority": {"name": "High"},
				 "assignee": {"displayName": "Rika"}, "labels": ["infra"]}},
				{"key": "OPS-2", "fields": {"summary": "renew cert", "status": {"name": "Done"}}}
			]
		}`))
	})

	result, err := client.SearchIssues(context.Background(), "project = OPS", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.TotalFound != 2 || len(result.Issues) != 2 {
		t.Fatalf("result = %+v", result)
	}
	first := result.Issues[0]
	if first.Key != "OPS-1" || first.Status != "Open" || first.Assignee != "Rika" {
		t.Errorf("first issue = %+v", first)
	}
	if len(first.Labels) != 1 || first.Labels[0] != "infra" {
		t.Errorf("labels = %v", first.Labels)
	}
	if first.Body != "" {
		t.Errorf("search results should not carry descriptions: %q", first.Body)
	}
	if result.Issues[1].Priority != "" {
		t.Errorf("missing priority should pluck empty, got %q", result.Issues[1].Priority)
	}
}

func TestGetIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/OPS-17" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if fields := r.URL.Query().Get("fields"); !strings.Contains(fields, "description") {
			t.Errorf("fields should request the description: %q", fields)
		}
		w.Write([]byte(`{"key": "OPS-17", "fields": {"summary": "rotate keys",
			"description": "the full writeup", "reporter": {"displayName": "Sam"}}}`))
	})

	issue, err := client.GetIssue(context.Background(), "OPS-17")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if issue.Key != "OPS-17" || issue.Body != "the full writeup" || issue.Reporter != "Sam" {
		t.Fatalf("issue = %+v", issue)
	}
}

func TestCreateIssueDefaultsType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/2/issue" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			Fields struct {
				Project   struct{ Key string }  `json:"project"`
				Summary   string                `json:"summary"`
				IssueType struct{ Name string } `json:"issuetype"`
			} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Fields.Project.Key != "OPS" || payload.Fields.IssueType.Name != "Task" {
			t.Errorf("payload = %+v", payload.Fields)
		}
		w.Write([]byte(`{"id": "10001", "key": "OPS-42", "self": "https://jira.example.com/rest/api/2/issue/10001"}`))
	})

	created, err := client.CreateIssue(context.Background(), "OPS", "new task", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Key != "OPS-42" || created.ID != "10001" {
		t.Fatalf("created = %+v", created)
	}
}

func TestAddComment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/OPS-17/comment" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload["body"] != "looking into it" {
			t.Errorf("body = %q", payload["body"])
		}
		w.Write([]byte(`{"id": "5001", "author": {"displayName": "Dev"}, "created": "2025-06-01T10:00:00.000+0000"}`))
	})

	comment, err := client.AddComment(context.Background(), "OPS-17", "looking into it")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if comment.ID != "5001" || comment.Author != "Dev" {
		t.Fatalf("comment = %+v", comment)
	}
}

func TestListProjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"key": "OPS", "name": "Operations", "projectTypeKey": "software"},
			{"key": "HR", "name": "People"}
		]`))
	})

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 || projects[0].Key != "OPS" || projects[1].Name != "People" {
		t.Fatalf("projects = %+v", projects)
	}
}

func TestErrorCarriesResponseSnippet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages": ["Field 'projcet' cannot be set"]}`))
	})

	_, err := client.GetIssue(context.Background(), "OPS-1")
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "projcet") {
		t.Fatalf("error should carry status and body: %v", err)
	}
}
