// Package browser adapts a headless Chrome instance over chromedp. A
// single Session owns the browser: every operation serializes through
// its mutex, and the browser starts lazily on first use.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mcpforge/adapters/internal/logging"
)

type SessionOptions struct {
	ExecPath   string
	Headless   bool
	NavTimeout time.Duration
	Logger     logging.Logger
}

// Session wraps one browser process. The zero state is closed; Open (or
// the first operation) starts Chrome, Close tears it down. All
// operations hold the mutex for their full duration, so concurrent tool
// calls cannot interleave CDP commands.
type Session struct {
	mu sync.Mutex

	opts        SessionOptions
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	log         logging.Logger
}

func NewSession(opts SessionOptions) *Session {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	return &Session{opts: opts, log: opts.Logger.WithName("session")}
}

// ensure starts the browser if it is not running. Callers must hold mu.
func (s *Session) ensure() error {
	if s.ctx != nil {
		return nil
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", s.opts.Headless))
	if s.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(s.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Run an empty task list to spawn the process now, so startup
	// failures surface here and not inside an unrelated operation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	s.ctx = browserCtx
	s.cancel = cancel
	s.allocCancel = allocCancel
	s.log.Info("browser started", "headless", s.opts.Headless)
	return nil
}

// Open starts the browser eagerly. Operations start it lazily through
// the same path, so calling Open first is optional.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure()
}

// Close shuts the browser down. The session can be reopened afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return fmt.Errorf("browser session is not open")
	}
	s.cancel()
	s.allocCancel()
	s.ctx = nil
	s.cancel = nil
	s.allocCancel = nil
	s.log.Info("browser closed")
	return nil
}

// run executes actions under the session mutex with the configured
// timeout.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensure(); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(opCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// normalizeURL prepends https:// when the caller omits a scheme.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url is required")
	}
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "about:") {
		return raw, nil
	}
	return "https://" + raw, nil
}

type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (s *Session) Navigate(ctx context.Context, url string) (*PageInfo, error) {
	target, err := normalizeURL(url)
	if err != nil {
		return nil, err
	}

	info := &PageInfo{}
	err = s.run(ctx,
		chromedp.Navigate(target),
		chromedp.Location(&info.URL),
		chromedp.Title(&info.Title),
	)
	if err != nil {
		return nil, fmt.Errorf("navigation to %s failed: %w", target, err)
	}
	return info, nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
	if err != nil {
		return fmt.Errorf("click on %q failed: %w", selector, err)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	err := s.run(ctx, chromedp.SetValue(selector, value, chromedp.ByQuery))
	if err != nil {
		return fmt.Errorf("fill of %q failed: %w", selector, err)
	}
	return nil
}

func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	var out string
	err := s.run(ctx, chromedp.Text(selector, &out, chromedp.ByQuery, chromedp.NodeVisible))
	if err != nil {
		return "", fmt.Errorf("reading text of %q failed: %w", selector, err)
	}
	return out, nil
}

func (s *Session) HTML(ctx context.Context, selector string) (string, error) {
	if selector == "" {
		selector = "html"
	}
	var out string
	err := s.run(ctx, chromedp.OuterHTML(selector, &out, chromedp.ByQuery))
	if err != nil {
		return "", fmt.Errorf("reading html of %q failed: %w", selector, err)
	}
	return out, nil
}

func (s *Session) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action
	if fullPage {
		action = chromedp.FullScreenshot(&buf, 90)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := s.run(ctx, action); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

// Evaluate runs a JavaScript expression in the page and returns its
// JSON-encoded result.
func (s *Session) Evaluate(ctx context.Context, expression string) (string, error) {
	var raw json.RawMessage
	err := s.run(ctx, chromedp.Evaluate(expression, &raw))
	if err != nil {
		return "", fmt.Errorf("evaluate failed: %w", err)
	}
	if len(raw) == 0 {
		return "null", nil
	}
	return string(raw), nil
}
