// Package fetch retrieves job postings from the web and reduces them to their
// visible text. Every request passes through an SSRF guard first.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; JobIntel/1.0)"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 5 << 20

const maxRedirects = 5

// Error kinds.
const (
	KindInvalidURL   = "invalid_url"
	KindUnsafeURL    = "unsafe_url"
	KindNetwork      = "network"
	KindHTTPStatus   = "http_status"
	KindEmptyContent = "empty_content"
	KindParse        = "parse"
)

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Kind       string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Page is the extracted visible text of a fetched posting.
type Page struct {
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	Platform  Platform  `json:"platform"`
	FetchedAt time.Time `json:"fetched_at"`
	// FromCache is set on pages served by a CachedFetcher.
	FromCache bool `json:"-"`
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	// MaxRetries is the number of extra attempts after a retryable failure
	// (timeouts, 429 and 5xx). Zero means a single attempt.
	MaxRetries    int
	RetryInterval time.Duration
	// UseBrowser renders pages whose static HTML carries too little text.
	UseBrowser     bool
	BrowserTimeout time.Duration
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:        DefaultTimeout,
		UserAgent:      DefaultUserAgent,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		RetryInterval:  500 * time.Millisecond,
		BrowserTimeout: 30 * time.Second,
	}
}

// Client fetches pages over HTTP.
type Client struct {
	opts   Options
	guard  *Guard
	http   *http.Client
	render renderFunc
	logger *zap.Logger
}

// NewClient creates a client that checks every URL, redirect and dialed
// address against guard.
func NewClient(guard *Guard, opts *Options, logger *zap.Logger) *Client {
	if guard == nil {
		guard = NewGuard(GuardConfig{})
	}
	o := *DefaultOptions()
	if opts != nil {
		o = *opts
		if o.Timeout <= 0 {
			o.Timeout = DefaultTimeout
		}
		if o.UserAgent == "" {
			o.UserAgent = DefaultUserAgent
		}
		if o.MaxBodyBytes <= 0 {
			o.MaxBodyBytes = DefaultMaxBodyBytes
		}
		if o.RetryInterval <= 0 {
			o.RetryInterval = 500 * time.Millisecond
		}
		if o.BrowserTimeout <= 0 {
			o.BrowserTimeout = 30 * time.Second
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := &net.Dialer{
		Timeout: o.Timeout,
		Control: guard.dialControl,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	c := &Client{
		opts:   o,
		guard:  guard,
		render: renderInChrome,
		logger: logger,
	}
	c.http = &http.Client{
		Timeout:   o.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			_, err := guard.Check(req.Context(), req.URL.String())
			return err
		},
	}
	return c
}

// Fetch retrieves urlStr and returns its visible text.
func (c *Client) Fetch(ctx context.Context, urlStr string) (*Page, error) {
	u, err := c.guard.Check(ctx, urlStr)
	if err != nil {
		c.logger.Warn("fetch rejected", zap.String("url", truncate(urlStr, 80)), zap.Error(err))
		return nil, err
	}
	target := u.String()
	start := time.Now()

	html, err := c.get(ctx, target)
	if err != nil {
		c.logger.Warn("fetch failed", zap.String("url", truncate(target, 80)), zap.Error(err))
		return nil, err
	}

	platform := DetectPlatform(target)
	contentSelectors := PlatformContentSelectors(platform)
	noiseSelectors := PlatformNoiseSelectors(platform)

	text, err := ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, &Error{URL: target, Kind: KindParse, Message: "failed to extract text", Cause: err}
	}

	if c.opts.UseBrowser && needsRender(text) {
		c.logger.Debug("content too short, rendering in browser",
			zap.String("url", truncate(target, 80)), zap.Int("chars", len(text)))
		if rendered, ok := c.renderText(ctx, target, contentSelectors, noiseSelectors); ok && len(rendered) > len(text) {
			text = rendered
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, &Error{URL: target, Kind: KindEmptyContent, Message: "no visible text extracted"}
	}

	c.logger.Info("fetched page",
		zap.String("url", truncate(target, 80)),
		zap.String("platform", string(platform)),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)))

	return &Page{
		URL:       target,
		Text:      text,
		Platform:  platform,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// renderText renders target in the browser and extracts its text. A failed
// render, or one that navigated somewhere the Guard refuses, is discarded.
func (c *Client) renderText(ctx context.Context, target string, contentSelectors, noiseSelectors []string) (string, bool) {
	html, finalURL, err := c.render(ctx, target, c.opts.BrowserTimeout, c.logger)
	if err != nil {
		c.logger.Warn("browser rendering failed, using static HTML", zap.Error(err))
		return "", false
	}
	if finalURL != "" && finalURL != target {
		if _, err := c.guard.Check(ctx, finalURL); err != nil {
			c.logger.Warn("browser left the allowed hosts, using static HTML",
				zap.String("final_url", truncate(finalURL, 80)), zap.Error(err))
			return "", false
		}
	}
	text, err := ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", false
	}
	return text, true
}

// get performs the GET with the client's retry policy.
func (c *Client) get(ctx context.Context, target string) (string, error) {
	operation := func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", backoff.Permanent(&Error{URL: target, Kind: KindInvalidURL, Message: "failed to create request", Cause: err})
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8")
		for key, value := range c.opts.Headers {
			req.Header.Set(key, value)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			var guardErr *Error
			if errors.As(err, &guardErr) {
				return "", backoff.Permanent(guardErr)
			}
			fetchErr := &Error{URL: target, Kind: KindNetwork, Message: "HTTP request failed", Cause: err}
			if isTimeout(err) {
				return "", fetchErr
			}
			return "", backoff.Permanent(fetchErr)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			statusErr := &Error{
				URL:        target,
				Kind:       KindHTTPStatus,
				Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
				StatusCode: resp.StatusCode,
			}
			if IsRetryableStatus(resp.StatusCode) {
				return "", statusErr
			}
			return "", backoff.Permanent(statusErr)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
		if err != nil {
			return "", &Error{URL: target, Kind: KindNetwork, Message: "failed to read response body", Cause: err}
		}
		return string(body), nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.opts.RetryInterval
	bo.MaxInterval = 10 * c.opts.RetryInterval

	html, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.opts.MaxRetries+1)))
	if err != nil {
		var fetchErr *Error
		if errors.As(err, &fetchErr) {
			return "", fetchErr
		}
		return "", &Error{URL: target, Kind: KindNetwork, Message: "HTTP request failed", Cause: err}
	}
	return html, nil
}

// IsRetryableStatus reports whether a response status is worth retrying.
func IsRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using contentSelectors.
// If no content selectors match, it falls back to the body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template, iframe, svg, nav, footer, header, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()

	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}
	if mainContent.Length() == 0 {
		mainContent = doc.Selection
	}

	// Block elements become line breaks so headings stay on their own line.
	mainContent.Find("br, p, div, li, h1, h2, h3, h4, h5, h6, tr, section").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(mainContent.Text()), nil
}

// JobPostingSelectors returns selectors optimized for job board pages.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace trims every line and drops blank ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
