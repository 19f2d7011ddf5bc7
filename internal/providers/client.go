package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/telegeo/gateway/internal/metrics"
)

// Config describes one upstream provider endpoint: where it lives, which
// query parameter carries the credential, and the static query defaults
// merged into every request.
type Config struct {
	Name     string
	BaseURL  string
	KeyParam string
	APIKey   string
	Defaults url.Values
	Header   http.Header
}

// Client issues outbound GET requests to upstream providers. It merges the
// provider's static defaults with per-request parameters, injects the
// credential, and records metrics. It never retries and never caches.
type Client struct {
	http    *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewClient(httpClient *http.Client, log *slog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		http:    httpClient,
		log:     log,
		metrics: m,
	}
}

// get performs a single GET against cfg.BaseURL+path. The response body is
// open on success; the caller must close it.
func (c *Client) get(ctx context.Context, cfg Config, path string, params url.Values) (*http.Response, error) {
	merged := url.Values{}
	for key, vals := range cfg.Defaults {
		merged[key] = vals
	}
	for key, vals := range params {
		merged[key] = vals
	}
	if cfg.KeyParam != "" {
		merged.Set(cfg.KeyParam, cfg.APIKey)
	}

	reqURL := fmt.Sprintf("%s%s?%s", cfg.BaseURL, path, merged.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", cfg.Name, err)
	}
	for key, vals := range cfg.Header {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.observe(cfg.Name, resp, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", cfg.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		c.log.ErrorContext(ctx, "upstream returned non-2xx status",
			"provider", cfg.Name, "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%s returned status %d", cfg.Name, resp.StatusCode)
	}

	return resp, nil
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, cfg Config, path string, params url.Values, out any) error {
	resp, err := c.get(ctx, cfg, path, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", cfg.Name, err)
	}
	return nil
}

// GetBytes issues a GET and returns the raw response body together with its
// Content-Type, for binary pass-through.
func (c *Client) GetBytes(ctx context.Context, cfg Config, path string, params url.Values) ([]byte, string, error) {
	resp, err := c.get(ctx, cfg, path, params)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s response: %w", cfg.Name, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) observe(provider string, resp *http.Response, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestSeconds.WithLabelValues(provider).Observe(elapsed.Seconds())
	if err != nil {
		c.metrics.UpstreamErrors.WithLabelValues(provider).Inc()
		return
	}
	c.metrics.UpstreamRequests.WithLabelValues(provider, strconv.Itoa(resp.StatusCode)).Inc()
}
