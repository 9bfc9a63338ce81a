package siapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/metrics"
	"github.com/slok/csflow/internal/model"
)

const (
	// DefaultAPIURL is the default API base URL.
	DefaultAPIURL = "https://app.systeminit.com"

	maxLoggedBody = 2048
)

// ClientConfig is the configuration of the API client.
type ClientConfig struct {
	// APIURL is the base URL of the API.
	APIURL string
	// Token is the bearer token used to authenticate.
	Token string
	// HTTPClient is the HTTP client used for the requests.
	HTTPClient *http.Client
	// UserAgent is sent on every request.
	UserAgent       string
	MetricsRecorder metrics.Recorder
	Logger          log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")

	if c.Token == "" {
		return fmt.Errorf("api token is required")
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	if c.UserAgent == "" {
		c.UserAgent = "csflow"
	}

	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "siapi.Client"})

	return nil
}

// Client is a low level authenticated HTTP client for the API.
//
// Non 2xx responses are returned as *model.RemoteError so callers can inspect the
// response payload, transport failures are wrapped with model.ErrRemote.
type Client struct {
	apiURL    string
	token     string
	userAgent string
	http      *http.Client
	metrics   metrics.Recorder
	logger    log.Logger
}

// NewClient returns a new API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		apiURL:    cfg.APIURL,
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		http:      cfg.HTTPClient,
		metrics:   cfg.MetricsRecorder,
		logger:    cfg.Logger,
	}, nil
}

// Get does a GET request on path and decodes the JSON response on out (if not nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post does a POST request on path with the JSON body (if not nil) and decodes the JSON response on out (if not nil).
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put does a PUT request on path with the JSON body and decodes the JSON response on out (if not nil).
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (err error) {
	start := time.Now()
	statusCode := 0
	defer func() {
		c.metrics.ObserveAPIRequest(ctx, method, statusCode, err == nil, time.Since(start))
	}()

	var reqBody io.Reader
	var reqData []byte
	if body != nil {
		reqData, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(reqData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugf("Request: %s %s %s", method, path, truncate(reqData))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debugf("Error: %s %s: %s", method, path, err)
		return fmt.Errorf("%s %s: %w: %w", method, path, model.ErrRemote, err)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read %s %s response: %w: %w", method, path, model.ErrRemote, err)
	}

	c.logger.Debugf("Response: %d %s %s", resp.StatusCode, http.StatusText(resp.StatusCode), truncate(respData))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.RemoteError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respData),
		}
	}

	if out == nil || len(bytes.TrimSpace(respData)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respData, out); err != nil {
		return fmt.Errorf("could not decode %s %s response: %w: %w", method, path, model.ErrRemote, err)
	}

	return nil
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}
