// Package client talks to the appointment REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"dentixpro/internal/apperr"
	"dentixpro/internal/logger"
)

// Credentials supplies the bearer token and forgets it when the server
// rejects it.
type Credentials interface {
	Token() string
	Clear() error
}

// BaseClient contains the common HTTP functionality shared by the resource
// clients.
type BaseClient struct {
	BaseURL    string
	HTTPClient *http.Client
	creds      Credentials
	log        *zap.Logger
	timeout    time.Duration
}

type ClientOption func(*BaseClient)

func WithCredentials(c Credentials) ClientOption {
	return func(b *BaseClient) { b.creds = c }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(b *BaseClient) { b.HTTPClient = hc }
}

// WithTimeout bounds every request. Zero leaves only the transport's limits.
// The timeout is applied to a copy of the HTTP client, never the one passed
// to WithHTTPClient.
func WithTimeout(d time.Duration) ClientOption {
	return func(b *BaseClient) { b.timeout = d }
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(b *BaseClient) { b.log = l }
}

func New(baseURL string, opts ...ClientOption) *BaseClient {
	c := &BaseClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.HTTPClient
		hc.Timeout = c.timeout
		c.HTTPClient = &hc
	}
	return c
}

func (c *BaseClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *BaseClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *BaseClient) Put(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *BaseClient) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *BaseClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if tok := c.creds.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %s %s: %v", apperr.ErrNetwork, method, path, err)
		logger.LogAPICall(c.log, method, path, 0, err, time.Since(start))
		return nil, err
	}

	if resp.StatusCode >= 400 {
		apiErr := readAPIError(resp)
		if resp.StatusCode == http.StatusUnauthorized && c.creds != nil {
			// the session is gone before the caller sees the error
			if cerr := c.creds.Clear(); cerr != nil {
				c.log.Warn("clear credentials", zap.Error(cerr))
			}
		}
		logger.LogAPICall(c.log, method, path, resp.StatusCode, apiErr, time.Since(start))
		return nil, apiErr
	}

	logger.LogAPICall(c.log, method, path, resp.StatusCode, nil, time.Since(start))
	return resp, nil
}

// DecodeResponse decodes a JSON body into v and closes it.
func DecodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// discard drains and closes a body whose content is not needed.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
