package browser

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

// Service routes every tool call through one Session, so the browser
// process is shared and operations never interleave.
type Service struct {
	session *Session
	log     logging.Logger
}

func NewService(log logging.Logger) *Service {
	session := NewSession(SessionOptions{
		ExecPath:   config.BrowserExecPath(),
		Headless:   config.BrowserHeadless(),
		NavTimeout: time.Duration(config.BrowserNavTimeout()) * time.Second,
		Logger:     log,
	})
	return &Service{session: session, log: log.WithName("browser")}
}

// Close tears down the browser if one is running.
func (s *Service) Close() error {
	if err := s.session.Close(); err != nil {
		// Closing a never-opened session is not a shutdown failure.
		return nil
	}
	return nil
}

func (s *Service) handleNavigate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return adapter.Errorf("url parameter is required"), nil
	}
	info, err := s.session.Navigate(ctx, url)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	s.log.Info("navigated", "url", info.URL)
	return adapter.TextResult(info), nil
}

func (s *Service) handleClick(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := req.RequireString("selector")
	if err != nil {
		return adapter.Errorf("selector parameter is required"), nil
	}
	if err := s.session.Click(ctx, selector); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(map[string]string{"clicked": selector}), nil
}

func (s *Service) handleFill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := req.RequireString("selector")
	if err != nil {
		return adapter.Errorf("selector parameter is required"), nil
	}
	value, err := req.RequireString("value")
	if err != nil {
		return adapter.Errorf("value parameter is required"), nil
	}
	if err := s.session.Fill(ctx, selector, value); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(map[string]string{"filled": selector}), nil
}

func (s *Service) handleText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := req.RequireString("selector")
	if err != nil {
		return adapter.Errorf("selector parameter is required"), nil
	}
	text, err := s.session.Text(ctx, selector)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(text), nil
}

func (s *Service) handleHTML(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector := req.GetString("selector", "")
	html, err := s.session.HTML(ctx, selector)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(html), nil
}

func (s *Service) handleScreenshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fullPage := adapter.BoolArg(req, "full_page", false)
	png, err := s.session.Screenshot(ctx, fullPage)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	encoded := base64.StdEncoding.EncodeToString(png)
	return mcp.NewToolResultImage("screenshot", encoded, "image/png"), nil
}

func (s *Service) handleEvaluate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expression, err := req.RequireString("expression")
	if err != nil {
		return adapter.Errorf("expression parameter is required"), nil
	}
	result, err := s.session.Evaluate(ctx, expression)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(result), nil
}

func (s *Service) handleCloseTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.session.Close(); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult("browser closed"), nil
}

// New builds the browser adapter.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "browser",
		Version:     "1.0.0",
		Description: "Headless browser automation: navigate pages, interact with elements, extract content, and capture screenshots.",
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("navigate",
		mcp.WithDescription("Navigate the browser to a URL and report the final location and title."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to open; https:// is assumed when the scheme is omitted")),
	), svc.handleNavigate)

	srv.Handle(mcp.NewTool("click",
		mcp.WithDescription("Click the first visible element matching a CSS selector."),
		mcp.WithString("selector", mcp.Required(), mcp.Description("CSS selector of the element to click")),
	), svc.handleClick)

	srv.Handle(mcp.NewTool("fill",
		mcp.WithDescription("Set the value of an input or textarea matching a CSS selector."),
		mcp.WithString("selector", mcp.Required(), mcp.Description("CSS selector of the field")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Value to set")),
	), svc.handleFill)

	srv.Handle(mcp.NewTool("text",
		mcp.WithDescription("Return the visible text of the first element matching a CSS selector."),
		mcp.WithString("selector", mcp.Required(), mcp.Description("CSS selector of the element")),
	), svc.handleText)

	srv.Handle(mcp.NewTool("html",
		mcp.WithDescription("Return the outer HTML of an element, or of the whole page when no selector is given."),
		mcp.WithString("selector", mcp.Description("CSS selector of the element (default: the html root)")),
	), svc.handleHTML)

	srv.Handle(mcp.NewTool("screenshot",
		mcp.WithDescription("Capture a PNG screenshot of the current page."),
		mcp.WithBoolean("full_page", mcp.Description("Capture the full scrollable page instead of the viewport")),
	), svc.handleScreenshot)

	srv.Handle(mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a JavaScript expression in the page and return its JSON result."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("JavaScript expression to evaluate")),
	), svc.handleEvaluate)

	srv.Handle(mcp.NewTool("close",
		mcp.WithDescription("Shut down the browser process. The next operation starts a fresh one."),
	), svc.handleCloseTool)

	return srv
}
