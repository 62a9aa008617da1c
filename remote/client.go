package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Client configuration defaults.
const (
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 30 * time.Second

	// MaxRepodataSize bounds the body read for a single document.
	MaxRepodataSize = 512 << 20
)

// Client fetches and validates repodata documents.
type Client struct {
	client *http.Client
	logger *slog.Logger

	// Cache for fetched documents keyed by URL
	cache sync.Map // map[string][]byte

	validateResponses bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithValidation enables or disables shape validation of responses.
func WithValidation(enabled bool) ClientOption {
	return func(c *Client) {
		c.validateResponses = enabled
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the HTTP request timeout.
// Zero or negative values fall back to DefaultRequestTimeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		c.client.Timeout = timeout
	}
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client with pooled connections. Responses are
// validated unless WithValidation(false) is given.
func NewClient(opts ...ClientOption) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	c := &Client{
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
		logger:            slog.New(slog.DiscardHandler),
		validateResponses: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the repodata document at rawURL. Successful results are
// cached by URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if cached, ok := c.cache.Load(rawURL); ok {
		c.logger.Debug("repodata cache hit", "url", rawURL)
		return cached.([]byte), nil
	}

	start := time.Now()
	data, err := c.fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	if c.validateResponses {
		if err := ValidateRepodata(data); err != nil {
			return nil, fmt.Errorf("repodata validation failed for %s: %w", rawURL, err)
		}
	}
	c.logger.Debug("fetched repodata", "url", rawURL, "bytes", len(data), "duration", time.Since(start))

	c.cache.Store(rawURL, data)
	return data, nil
}

// ClearCache removes all cached documents.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// HTTPError is a non-200 response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxRepodataSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxRepodataSize {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxRepodataSize)
	}
	return data, nil
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// RepodataURL returns the repodata.json URL of subdir under channelURL.
func RepodataURL(channelURL, subdir string) string {
	return strings.TrimSuffix(channelURL, "/") + "/" + subdir + "/repodata.json"
}

// subdirPattern matches platform subdirectory names such as noarch,
// linux-64 or osx-arm64.
var subdirPattern = regexp.MustCompile(`^(noarch|[a-z]+-(32|64|aarch64|arm64|armv6l|armv7l|ppc64le|s390x))$`)

// ChannelName derives a channel name from a repodata URL. The platform
// subdirectory is skipped, so
// https://conda.anaconda.org/conda-forge/linux-64/repodata.json names
// conda-forge. Returns "" when the URL has no usable path.
func ChannelName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	dir := path.Dir(strings.TrimSuffix(u.Path, "/"))
	if subdirPattern.MatchString(path.Base(dir)) {
		dir = path.Dir(dir)
	}
	if name := path.Base(dir); name != "/" && name != "." {
		return name
	}
	return ""
}
