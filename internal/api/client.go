package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/warga-one/wargaone-go/internal/config"
	"github.com/warga-one/wargaone-go/internal/session"
)

// Error is a non-2xx response from the backend. Message carries the server's
// display shape; callers branch on Status only.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Client issues requests against the backend through a token-attaching
// transport. Every call goes out with the current stored token, and a
// token-bearing 401 clears the store before the error reaches the caller.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a client with the configured base URL and request timeout.
func NewClient(cfg config.Config, store session.Store, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.HTTPTimeout,
			Transport: &sessionTransport{
				store:  store,
				base:   http.DefaultTransport,
				logger: logger,
			},
		},
		logger: logger,
	}
}

// do executes one JSON round trip. Non-2xx responses decode into *Error;
// network failures and timeouts pass through unchanged.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var shape struct {
			Message string `json:"message"`
			Err     string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&shape); err == nil {
			apiErr.Message = shape.Message
			if apiErr.Message == "" {
				apiErr.Message = shape.Err
			}
		}
		c.logger.Warn("request failed", "method", method, "path", path, "status", resp.StatusCode)
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
