// Package client talks to the gallery REST API.
//
// Every call is a single request: no retry, no batching. Failures of any kind
// are logged at warn level and surface as a nil or false result, so callers
// only ever branch on "got data" versus "did not".
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/logging"
)

// RequestIDHeader carries a per-call identifier the server echoes into its
// access log.
const RequestIDHeader = "X-Request-ID"

const DefaultProbeTimeout = 2 * time.Second

type ClientConfig struct {
	BaseURL      string
	ProbeTimeout time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

type Client struct {
	config ClientConfig
	base   string
	http   *http.Client
	logger *zap.Logger
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

func NewWithConfig(config ClientConfig) (*Client, error) {
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}

	return &Client{
		config: config,
		base:   strings.TrimRight(u.String(), "/"),
		http:   config.HTTPClient,
		logger: logging.OrNop(config.Logger).Named("client"),
	}, nil
}

func New(baseURL string) (*Client, error) {
	return NewWithConfig(ClientConfig{BaseURL: baseURL})
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string { return c.base }

// Close releases idle keep-alive connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Probe reports whether HEAD /api/artifacts answers 2xx within the probe
// timeout.
func (c *Client) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	if err := c.do(ctx, http.MethodHead, "/api/artifacts", nil, nil); err != nil {
		c.warn(ctx, "probe", err)
		return false
	}
	return true
}

func (c *Client) Health(ctx context.Context) *models.Health {
	var h models.Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		c.warn(ctx, "health", err)
		return nil
	}
	return &h
}

func (c *Client) ListArtifacts(ctx context.Context) []models.Record {
	var out []models.Record
	if err := c.do(ctx, http.MethodGet, "/api/artifacts", nil, &out); err != nil {
		c.warn(ctx, "list artifacts", err)
		return nil
	}
	return out
}

func (c *Client) GetArtifact(ctx context.Context, id string) *models.Record {
	var out models.Record
	if err := c.do(ctx, http.MethodGet, "/api/artifacts/"+url.PathEscape(id), nil, &out); err != nil {
		c.warn(ctx, "get artifact", err, zap.String("artifact_id", id))
		return nil
	}
	return &out
}

func (c *Client) SimilarArtifacts(ctx context.Context, id string, limit int) []models.Record {
	if limit <= 0 {
		limit = 5
	}
	path := "/api/artifacts/" + url.PathEscape(id) + "/similar?limit=" + strconv.Itoa(limit)

	var out []models.Record
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		c.warn(ctx, "similar artifacts", err, zap.String("artifact_id", id))
		return nil
	}
	return out
}

// Explain returns the explanation text, or "" when the call failed.
func (c *Client) Explain(ctx context.Context, id string) string {
	var out models.Explanation
	if err := c.do(ctx, http.MethodGet, "/api/artifacts/"+url.PathEscape(id)+"/explain", nil, &out); err != nil {
		c.warn(ctx, "explain", err, zap.String("artifact_id", id))
		return ""
	}
	return out.Explanation
}

func (c *Client) Compare(ctx context.Context, a, b string) *models.CompareResponse {
	body := models.CompareRequest{Artifact1ID: a, Artifact2ID: b}

	var out models.CompareResponse
	if err := c.do(ctx, http.MethodPost, "/api/compare", body, &out); err != nil {
		c.warn(ctx, "compare", err, zap.String("artifact1_id", a), zap.String("artifact2_id", b))
		return nil
	}
	return &out
}

func (c *Client) Hotspots(ctx context.Context, id string) []models.Hotspot {
	var out []models.Hotspot
	if err := c.do(ctx, http.MethodGet, "/api/hotspots/"+url.PathEscape(id), nil, &out); err != nil {
		c.warn(ctx, "hotspots", err, zap.String("artifact_id", id))
		return nil
	}
	return out
}

func (c *Client) Ask(ctx context.Context, question string) *models.Answer {
	var out models.Answer
	if err := c.do(ctx, http.MethodPost, "/api/ask", models.AskRequest{Question: question}, &out); err != nil {
		c.warn(ctx, "ask", err)
		return nil
	}
	return &out
}

func (c *Client) ExampleQuestions(ctx context.Context) []string {
	var out models.ExampleQuestions
	if err := c.do(ctx, http.MethodGet, "/api/example-questions", nil, &out); err != nil {
		c.warn(ctx, "example questions", err)
		return nil
	}
	return out.Examples
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	if out == nil || method == http.MethodHead {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) warn(ctx context.Context, op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		c.logger.Debug("request cancelled", fields...)
		return
	}
	c.logger.Warn("API unavailable", fields...)
}
