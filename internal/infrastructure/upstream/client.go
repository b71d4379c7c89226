// Package upstream talks to the bowling network REST API that owns users,
// tournaments, teams and media. Responses are relayed verbatim.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/bowling-bff/internal/config"
	"github.com/bowling-bff/internal/domain"
)

const maxResponseBytes = 10 << 20

// Request is one call to the upstream API. Path is relative to the base URL.
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	Body          []byte
}

// Client is a thin HTTP client bound to the upstream base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.UpstreamURL, "/"),
		httpClient: &http.Client{Timeout: cfg.UpstreamTimeout},
	}
}

// Do sends req and returns the upstream status, content type and body.
// Non-2xx statuses are not errors; only transport failures are.
func (c *Client) Do(ctx context.Context, req Request) (*domain.UpstreamResult, error) {
	p, err := cleanPath(req.Path)
	if err != nil {
		return nil, err
	}
	target := c.baseURL + p
	if req.RawQuery != "" {
		target += "?" + req.RawQuery
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if len(req.Body) > 0 {
		ct := req.ContentType
		if ct == "" {
			ct = "application/json"
		}
		httpReq.Header.Set("Content-Type", ct)
	}
	if req.Authorization != "" {
		httpReq.Header.Set("Authorization", req.Authorization)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %v: %w", req.Method, req.Path, err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %v: %w", err, domain.ErrUpstream)
	}
	if len(raw) > maxResponseBytes {
		return nil, fmt.Errorf("%s %s: response exceeds %d bytes: %w", req.Method, req.Path, maxResponseBytes, domain.ErrUpstream)
	}
	return &domain.UpstreamResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}

// PostJSON marshals payload and POSTs it to path.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) (*domain.UpstreamResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal upstream payload: %w", err)
	}
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: raw, ContentType: "application/json"})
}

// cleanPath returns p rooted and cleaned. Paths with ".." segments are
// rejected so a caller cannot climb above the base URL's path prefix.
func cleanPath(p string) (string, error) {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("path %q: %w", p, domain.ErrBadRequest)
		}
	}
	cleaned := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned, nil
}
